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

type ProblemRepository interface {
	// Create inserts the problem with its solutions and resources in one
	// transaction.
	Create(ctx context.Context, problem *entity.LeetcodeProblem) error
	// Update saves the problem's own columns and, when asked, replaces the
	// full set of solutions or resources in the same transaction.
	Update(ctx context.Context, problem *entity.LeetcodeProblem, replaceSolutions, replaceResources bool) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.LeetcodeProblem, error)
	FindAll(ctx context.Context, filter dto.ListFilter, order string) ([]*entity.LeetcodeProblem, int64, error)
	ExistsByNumber(ctx context.Context, number int) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context) (int64, error)
}

type problemRepository struct {
	db *gorm.DB
}

func NewProblemRepository(db *gorm.DB) ProblemRepository {
	return &problemRepository{db: db}
}

func byPosition(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

func insertChildren(tx *gorm.DB, problem *entity.LeetcodeProblem, solutions, resources bool) error {
	if solutions && len(problem.Solutions) > 0 {
		for i := range problem.Solutions {
			problem.Solutions[i].ProblemID = problem.ID
		}
		if err := tx.Create(&problem.Solutions).Error; err != nil {
			return err
		}
	}
	if resources && len(problem.Resources) > 0 {
		for i := range problem.Resources {
			problem.Resources[i].ProblemID = problem.ID
		}
		if err := tx.Create(&problem.Resources).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *problemRepository) Create(ctx context.Context, problem *entity.LeetcodeProblem) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(problem).Error; err != nil {
			return err
		}
		return insertChildren(tx, problem, true, true)
	})
}

func (r *problemRepository) Update(ctx context.Context, problem *entity.LeetcodeProblem, replaceSolutions, replaceResources bool) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(problem).Error; err != nil {
			return err
		}

		if replaceSolutions {
			if err := tx.Where("problem_id = ?", problem.ID).Delete(&entity.Solution{}).Error; err != nil {
				return err
			}
		}
		if replaceResources {
			if err := tx.Where("problem_id = ?", problem.ID).Delete(&entity.ProblemResource{}).Error; err != nil {
				return err
			}
		}

		return insertChildren(tx, problem, replaceSolutions, replaceResources)
	})
}

func (r *problemRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.LeetcodeProblem, error) {
	var problem entity.LeetcodeProblem
	err := r.db.WithContext(ctx).
		Preload("Solutions", byPosition).
		Preload("Resources", byPosition).
		First(&problem, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &problem, nil
}

func (r *problemRepository) FindAll(ctx context.Context, filter dto.ListFilter, order string) ([]*entity.LeetcodeProblem, int64, error) {
	var (
		problems []*entity.LeetcodeProblem
		total    int64
	)

	query := r.db.WithContext(ctx).Model(&entity.LeetcodeProblem{}).Scopes(
		database.Search(filter.Search, "title", "description"),
		database.Equal("difficulty", filter.Difficulty),
		database.Equal("category", filter.Category),
		database.HasTag(filter.Tag),
		database.Placement(filter.TopicID, filter.SubTopicID),
	)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Order(order).
		Scopes(database.Paginate(filter.Page, filter.Limit)).
		Find(&problems).Error
	if err != nil {
		return nil, 0, err
	}
	return problems, total, nil
}

func (r *problemRepository) ExistsByNumber(ctx context.Context, number int) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Unscoped().Model(&entity.LeetcodeProblem{}).Where("problem_number = ?", number).Count(&count).Error
	return count > 0, err
}

func (r *problemRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&entity.LeetcodeProblem{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *problemRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.LeetcodeProblem{}).Count(&count).Error
	return count, err
}
