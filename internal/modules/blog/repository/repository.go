package repository

import (
	"context"

	"anoa.com/studyhub/internal/entity"
	"anoa.com/studyhub/pkg/database"
	"anoa.com/studyhub/pkg/dto"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BlogRepository interface {
	Create(ctx context.Context, blog *entity.Blog) error
	Update(ctx context.Context, blog *entity.Blog) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Blog, error)
	// FindAll lists blogs visible to viewer: published ones, plus the
	// viewer's own drafts, plus everything for admins.
	FindAll(ctx context.Context, filter dto.ListFilter, order string, viewer *dto.Viewer) ([]*entity.Blog, int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
	IncrementViews(ctx context.Context, id uuid.UUID) error
	CountPublished(ctx context.Context) (int64, error)
}

type blogRepository struct {
	db *gorm.DB
}

func NewBlogRepository(db *gorm.DB) BlogRepository {
	return &blogRepository{db: db}
}

func (r *blogRepository) Create(ctx context.Context, blog *entity.Blog) error {
	return r.db.WithContext(ctx).Omit("Author").Create(blog).Error
}

// Update writes the editable columns. views is left to IncrementViews so a
// concurrent read is never overwritten with a stale count.
func (r *blogRepository) Update(ctx context.Context, blog *entity.Blog) error {
	return r.db.WithContext(ctx).Omit("Author", "views").Save(blog).Error
}

func (r *blogRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Blog, error) {
	var blog entity.Blog
	if err := r.db.WithContext(ctx).Preload("Author").First(&blog, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &blog, nil
}

func (r *blogRepository) FindAll(ctx context.Context, filter dto.ListFilter, order string, viewer *dto.Viewer) ([]*entity.Blog, int64, error) {
	var (
		blogs []*entity.Blog
		total int64
	)

	query := r.db.WithContext(ctx).Model(&entity.Blog{}).Scopes(
		database.Search(filter.Search, "title", "content", "excerpt"),
		database.Equal("category", filter.Category),
		database.HasTag(filter.Tag),
		database.Placement(filter.TopicID, filter.SubTopicID),
	)

	switch {
	case viewer == nil:
		query = query.Where("published = ?", true)
	case !viewer.IsAdmin:
		query = query.Where("(published = ? OR author_id = ?)", true, viewer.ID)
	}

	if filter.Published != nil {
		query = query.Where("published = ?", *filter.Published)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Preload("Author").
		Order(order).
		Scopes(database.Paginate(filter.Page, filter.Limit)).
		Find(&blogs).Error
	if err != nil {
		return nil, 0, err
	}

	return blogs, total, nil
}

func (r *blogRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&entity.Blog{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *blogRepository) IncrementViews(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&entity.Blog{}).
		Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + ?", 1)).Error
}

func (r *blogRepository) CountPublished(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Blog{}).Where("published = ?", true).Count(&count).Error
	return count, err
}
