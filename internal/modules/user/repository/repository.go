package repository

import (
	"context"

	"anoa.com/studyhub/internal/entity"
	"anoa.com/studyhub/pkg/database"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepository interface {
	// InsertIfAbsent inserts user unless its external id is already taken and
	// returns the stored row either way. created reports whether this call inserted it.
	InsertIfAbsent(ctx context.Context, user *entity.User) (stored *entity.User, created bool, err error)
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	FindByExternalID(ctx context.Context, externalID string) (*entity.User, error)
	FindAll(ctx context.Context, search string, offset, limit int) ([]*entity.User, int64, error)
	UpdateRole(ctx context.Context, id uuid.UUID, role entity.Role) error
	Count(ctx context.Context) (int64, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) InsertIfAbsent(ctx context.Context, user *entity.User) (*entity.User, bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "external_id"}},
			DoNothing: true,
		}).
		Create(user)
	if res.Error != nil {
		return nil, false, res.Error
	}
	if res.RowsAffected == 1 {
		return user, true, nil
	}

	existing, err := r.FindByExternalID(ctx, user.ExternalID)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

func (r *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	var user entity.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByExternalID(ctx context.Context, externalID string) (*entity.User, error) {
	var user entity.User
	if err := r.db.WithContext(ctx).Where("external_id = ?", externalID).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindAll(ctx context.Context, search string, offset, limit int) ([]*entity.User, int64, error) {
	var users []*entity.User
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.User{})
	if search != "" {
		like := database.ContainsPattern(search)
		query = query.Where(`(name ILIKE ? ESCAPE '\' OR email ILIKE ? ESCAPE '\')`, like, like)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (r *userRepository) UpdateRole(ctx context.Context, id uuid.UUID, role entity.Role) error {
	res := r.db.WithContext(ctx).Model(&entity.User{}).Where("id = ?", id).Update("role", role)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *userRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.User{}).Count(&count).Error
	return count, err
}
