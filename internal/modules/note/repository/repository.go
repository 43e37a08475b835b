package repository

import (
	"context"

	"anoa.com/studyhub/internal/entity"
	"anoa.com/studyhub/pkg/database"
	"anoa.com/studyhub/pkg/dto"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NoteRepository interface {
	Create(ctx context.Context, note *entity.Note) error
	Update(ctx context.Context, note *entity.Note) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Note, error)
	FindAll(ctx context.Context, filter dto.ListFilter, order string) ([]*entity.Note, int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context) (int64, error)
}

type noteRepository struct {
	db *gorm.DB
}

func NewNoteRepository(db *gorm.DB) NoteRepository {
	return &noteRepository{db: db}
}

func (r *noteRepository) Create(ctx context.Context, note *entity.Note) error {
	return r.db.WithContext(ctx).Omit("Author").Create(note).Error
}

func (r *noteRepository) Update(ctx context.Context, note *entity.Note) error {
	return r.db.WithContext(ctx).Omit("Author").Save(note).Error
}

func (r *noteRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Note, error) {
	var note entity.Note
	if err := r.db.WithContext(ctx).Preload("Author").First(&note, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &note, nil
}

func (r *noteRepository) FindAll(ctx context.Context, filter dto.ListFilter, order string) ([]*entity.Note, int64, error) {
	var (
		notes []*entity.Note
		total int64
	)

	query := r.db.WithContext(ctx).Model(&entity.Note{}).Scopes(
		database.Search(filter.Search, "title", "content"),
		database.Equal("category", filter.Category),
		database.HasTag(filter.Tag),
		database.Placement(filter.TopicID, filter.SubTopicID),
	)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Preload("Author").
		Order(order).
		Scopes(database.Paginate(filter.Page, filter.Limit)).
		Find(&notes).Error
	if err != nil {
		return nil, 0, err
	}
	return notes, total, nil
}

func (r *noteRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&entity.Note{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *noteRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Note{}).Count(&count).Error
	return count, err
}
