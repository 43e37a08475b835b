package repository

import (
	"context"

	"anoa.com/studyhub/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Counters is the like/dislike state of a comment after a toggle.
type Counters struct {
	Likes    int64
	Dislikes int64
}

type ReactionRepository interface {
	// ToggleReaction applies reactionType for userID on commentID and
	// returns the resulting counters and the user's current vote ("" when
	// withdrawn).
	ToggleReaction(ctx context.Context, commentID, userID uuid.UUID, reactionType string) (Counters, string, error)
}

type reactionRepository struct {
	db *gorm.DB
}

func NewReactionRepository(db *gorm.DB) ReactionRepository {
	return &reactionRepository{db: db}
}

// Toggle decides the next vote: the same vote again withdraws it, any
// other vote replaces it. It returns the column deltas to apply.
func Toggle(current, requested string) (next string, deltas map[string]int) {
	deltas = map[string]int{}
	if current != "" {
		deltas[counterColumn(current)]--
	}
	if current == requested {
		return "", deltas
	}
	deltas[counterColumn(requested)]++
	return requested, deltas
}

func counterColumn(reactionType string) string {
	if reactionType == entity.ReactionDislike {
		return "dislikes"
	}
	return "likes"
}

func (r *reactionRepository) ToggleReaction(ctx context.Context, commentID, userID uuid.UUID, reactionType string) (Counters, string, error) {
	var (
		counters Counters
		next     string
	)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Serializes toggles on one comment so counters never drift.
		var comment entity.Comment
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Select("id").First(&comment, "id = ?", commentID).Error; err != nil {
			return err
		}

		// Find with a slice avoids gorm's record-not-found log noise.
		var existing []entity.CommentReaction
		if err := tx.Where("comment_id = ? AND user_id = ?", commentID, userID).Limit(1).Find(&existing).Error; err != nil {
			return err
		}

		current := ""
		if len(existing) > 0 {
			current = existing[0].Type
		}

		var deltas map[string]int
		next, deltas = Toggle(current, reactionType)

		switch {
		case current != "" && next == "":
			if err := tx.Delete(&existing[0]).Error; err != nil {
				return err
			}
		case current != "":
			if err := tx.Model(&existing[0]).Update("type", next).Error; err != nil {
				return err
			}
		default:
			if err := tx.Create(&entity.CommentReaction{CommentID: commentID, UserID: userID, Type: next}).Error; err != nil {
				return err
			}
		}

		updates := map[string]any{}
		for column, delta := range deltas {
			if delta != 0 {
				updates[column] = gorm.Expr(column+" + ?", delta)
			}
		}
		if len(updates) > 0 {
			if err := tx.Model(&entity.Comment{}).Where("id = ?", commentID).UpdateColumns(updates).Error; err != nil {
				return err
			}
		}

		return tx.Model(&entity.Comment{}).
			Select("likes, dislikes").
			Where("id = ?", commentID).
			Take(&counters).Error
	})

	return counters, next, err
}
