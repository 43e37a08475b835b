package repository

import (
	"context"

	"anoa.com/studyhub/internal/entity"
	"anoa.com/studyhub/pkg/database"
	"anoa.com/studyhub/pkg/dto"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ResourceRepository interface {
	Create(ctx context.Context, resource *entity.InterviewResource) error
	Update(ctx context.Context, resource *entity.InterviewResource) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.InterviewResource, error)
	FindAll(ctx context.Context, filter dto.ListFilter, order string, includePrivate bool) ([]*entity.InterviewResource, int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
	IncrementViews(ctx context.Context, id uuid.UUID) error
	// IncrementDownloads bumps the counter and returns its new value.
	IncrementDownloads(ctx context.Context, id uuid.UUID) (int64, error)
	// Rate upserts userID's score and recomputes the resource average in one
	// transaction, returning the new average.
	Rate(ctx context.Context, resourceID, userID uuid.UUID, score int) (float64, error)
	Count(ctx context.Context) (int64, error)
}

type resourceRepository struct {
	db *gorm.DB
}

func NewResourceRepository(db *gorm.DB) ResourceRepository {
	return &resourceRepository{db: db}
}

func (r *resourceRepository) Create(ctx context.Context, resource *entity.InterviewResource) error {
	return r.db.WithContext(ctx).Create(resource).Error
}

// Update leaves the counters alone; they only move through atomic increments.
func (r *resourceRepository) Update(ctx context.Context, resource *entity.InterviewResource) error {
	return r.db.WithContext(ctx).Omit("views", "downloads", "rating").Save(resource).Error
}

func (r *resourceRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.InterviewResource, error) {
	var resource entity.InterviewResource
	if err := r.db.WithContext(ctx).First(&resource, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &resource, nil
}

func (r *resourceRepository) FindAll(ctx context.Context, filter dto.ListFilter, order string, includePrivate bool) ([]*entity.InterviewResource, int64, error) {
	var (
		resources []*entity.InterviewResource
		total     int64
	)

	query := r.db.WithContext(ctx).Model(&entity.InterviewResource{}).Scopes(
		database.Search(filter.Search, "title", "description", "content"),
		database.Equal("type", filter.Type),
		database.Equal("category", filter.Category),
		database.Equal("difficulty", filter.Difficulty),
		database.HasTag(filter.Tag),
	)
	if !includePrivate {
		query = query.Where("is_public = ?", true)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Order(order).
		Scopes(database.Paginate(filter.Page, filter.Limit)).
		Find(&resources).Error
	if err != nil {
		return nil, 0, err
	}
	return resources, total, nil
}

func (r *resourceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&entity.InterviewResource{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *resourceRepository) IncrementViews(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&entity.InterviewResource{}).
		Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + ?", 1)).Error
}

func (r *resourceRepository) IncrementDownloads(ctx context.Context, id uuid.UUID) (int64, error) {
	var downloads int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&entity.InterviewResource{}).
			Where("id = ?", id).
			UpdateColumn("downloads", gorm.Expr("downloads + ?", 1))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Model(&entity.InterviewResource{}).Where("id = ?", id).Pluck("downloads", &downloads).Error
	})
	return downloads, err
}

func (r *resourceRepository) Rate(ctx context.Context, resourceID, userID uuid.UUID, score int) (float64, error) {
	var average float64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Serializes raters of the same resource so every average sees all
		// committed scores.
		var locked entity.InterviewResource
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Select("id").First(&locked, "id = ?", resourceID).Error; err != nil {
			return err
		}

		rating := entity.ResourceRating{ResourceID: resourceID, UserID: userID, Score: score}
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "resource_id"}, {Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"score", "updated_at"}),
		}).Create(&rating).Error
		if err != nil {
			return err
		}

		if err := tx.Model(&entity.ResourceRating{}).
			Where("resource_id = ?", resourceID).
			Select("COALESCE(AVG(score), 0)").
			Scan(&average).Error; err != nil {
			return err
		}

		return tx.Model(&entity.InterviewResource{}).
			Where("id = ?", resourceID).
			UpdateColumn("rating", average).Error
	})
	return average, err
}

func (r *resourceRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.InterviewResource{}).Count(&count).Error
	return count, err
}
