package repository

import (
	"context"

	"anoa.com/studyhub/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CommentRepository interface {
	Create(ctx context.Context, comment *entity.Comment) error
	Update(ctx context.Context, comment *entity.Comment) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Comment, error)
	// FindByResource returns every live comment of a resource, oldest first.
	FindByResource(ctx context.Context, resourceID uuid.UUID) ([]*entity.Comment, error)
	// DeleteSubtree soft-deletes id and all of its descendants and returns
	// how many comments were removed.
	DeleteSubtree(ctx context.Context, id uuid.UUID) (int64, error)
}

type commentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *entity.Comment) error {
	return r.db.WithContext(ctx).Omit("Author").Create(comment).Error
}

func (r *commentRepository) Update(ctx context.Context, comment *entity.Comment) error {
	return r.db.WithContext(ctx).
		Model(comment).
		Omit("Author").
		Updates(map[string]any{"content": comment.Content, "is_edited": comment.IsEdited}).Error
}

func (r *commentRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Comment, error) {
	var comment entity.Comment
	if err := r.db.WithContext(ctx).Preload("Author").First(&comment, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *commentRepository) FindByResource(ctx context.Context, resourceID uuid.UUID) ([]*entity.Comment, error) {
	var comments []*entity.Comment
	err := r.db.WithContext(ctx).
		Preload("Author").
		Where("resource_id = ?", resourceID).
		Order("created_at ASC, id ASC").
		Find(&comments).Error
	return comments, err
}

func (r *commentRepository) DeleteSubtree(ctx context.Context, id uuid.UUID) (int64, error) {
	var deleted int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var root entity.Comment
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Select("id").First(&root, "id = ?", id).Error; err != nil {
			return err
		}

		ids := []uuid.UUID{root.ID}
		frontier := ids
		for len(frontier) > 0 {
			var children []uuid.UUID
			if err := tx.Model(&entity.Comment{}).Where("parent_id IN ?", frontier).Pluck("id", &children).Error; err != nil {
				return err
			}
			ids = append(ids, children...)
			frontier = children
		}

		res := tx.Where("id IN ?", ids).Delete(&entity.Comment{})
		if res.Error != nil {
			return res.Error
		}
		deleted = res.RowsAffected
		return nil
	})
	return deleted, err
}
