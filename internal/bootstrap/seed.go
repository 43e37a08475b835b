package bootstrap

import (
	"fmt"

	"anoa.com/studyhub/internal/entity"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&entity.User{},
		&entity.Topic{},
		&entity.SubTopic{},
		&entity.Blog{},
		&entity.Note{},
		&entity.LeetcodeProblem{},
		&entity.Solution{},
		&entity.ProblemResource{},
		&entity.InterviewResource{},
		&entity.ResourceRating{},
		&entity.Comment{},
		&entity.CommentReaction{},
		&entity.StudyRoom{},
		&entity.StudyRoomMember{},
		&entity.StudyRoomInvitation{},
		&entity.Notification{},
	)
}

// SeedAdmins makes sure every configured external id exists locally with the
// ADMIN role. Users that already exist are promoted in place.
func SeedAdmins(db *gorm.DB, externalIDs []string, log *zap.Logger) error {
	for _, externalID := range externalIDs {
		admin := entity.User{
			ExternalID: externalID,
			Email:      fmt.Sprintf("%s@users.noreply.local", externalID),
			Name:       "Administrator",
			Role:       entity.RoleAdmin,
		}

		err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "external_id"}},
			DoUpdates: clause.Assignments(map[string]any{"role": entity.RoleAdmin}),
		}).Create(&admin).Error
		if err != nil {
			return fmt.Errorf("seed admin %s: %w", externalID, err)
		}

		log.Info("admin ensured", zap.String("external_id", externalID))
	}

	return nil
}
