package repository

import (
	"context"

	"anoa.com/studyhub/internal/entity"
	"anoa.com/studyhub/internal/modules/topic/dto"
	"anoa.com/studyhub/pkg/database"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TopicRepository interface {
	CreateTopic(ctx context.Context, topic *entity.Topic) error
	UpdateTopic(ctx context.Context, topic *entity.Topic) error
	FindTopicByID(ctx context.Context, id uuid.UUID) (*entity.Topic, error)
	FindTopicBySlug(ctx context.Context, slug string) (*entity.Topic, error)
	FindAllTopics(ctx context.Context, search string) ([]*entity.Topic, error)
	CountContent(ctx context.Context) (map[uuid.UUID]dto.ContentCounts, error)
	// DeleteTopic removes the topic and its subtopics. Content filed under it
	// is detached, or soft deleted when cascade is set.
	DeleteTopic(ctx context.Context, id uuid.UUID, cascade bool) error

	CreateSubTopic(ctx context.Context, subTopic *entity.SubTopic) error
	UpdateSubTopic(ctx context.Context, subTopic *entity.SubTopic) error
	FindSubTopicByID(ctx context.Context, id uuid.UUID) (*entity.SubTopic, error)
	DeleteSubTopic(ctx context.Context, id uuid.UUID) error
}

type topicRepository struct {
	db *gorm.DB
}

func NewTopicRepository(db *gorm.DB) TopicRepository {
	return &topicRepository{db: db}
}

// filed lists the content tables that may reference a topic.
var filed = []any{&entity.Blog{}, &entity.Note{}, &entity.LeetcodeProblem{}}

func orderedSubTopics(db *gorm.DB) *gorm.DB {
	return db.Order("sort_order ASC, name ASC")
}

func (r *topicRepository) CreateTopic(ctx context.Context, topic *entity.Topic) error {
	return r.db.WithContext(ctx).Omit("SubTopics").Create(topic).Error
}

func (r *topicRepository) UpdateTopic(ctx context.Context, topic *entity.Topic) error {
	return r.db.WithContext(ctx).Omit("SubTopics").Save(topic).Error
}

func (r *topicRepository) FindTopicByID(ctx context.Context, id uuid.UUID) (*entity.Topic, error) {
	var topic entity.Topic
	if err := r.db.WithContext(ctx).Preload("SubTopics", orderedSubTopics).First(&topic, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &topic, nil
}

func (r *topicRepository) FindTopicBySlug(ctx context.Context, slug string) (*entity.Topic, error) {
	var topic entity.Topic
	if err := r.db.WithContext(ctx).Preload("SubTopics", orderedSubTopics).Where("slug = ?", slug).First(&topic).Error; err != nil {
		return nil, err
	}
	return &topic, nil
}

func (r *topicRepository) FindAllTopics(ctx context.Context, search string) ([]*entity.Topic, error) {
	var topics []*entity.Topic
	query := r.db.WithContext(ctx).
		Preload("SubTopics", orderedSubTopics).
		Scopes(database.Search(search, "name"))

	if err := query.Order("sort_order ASC, name ASC").Find(&topics).Error; err != nil {
		return nil, err
	}
	return topics, nil
}

func (r *topicRepository) CountContent(ctx context.Context) (map[uuid.UUID]dto.ContentCounts, error) {
	type row struct {
		TopicID uuid.UUID
		Count   int64
	}

	counts := make(map[uuid.UUID]dto.ContentCounts)
	for i, model := range filed {
		var rows []row
		err := r.db.WithContext(ctx).
			Model(model).
			Select("topic_id, count(*) as count").
			Where("topic_id IS NOT NULL").
			Group("topic_id").
			Scan(&rows).Error
		if err != nil {
			return nil, err
		}

		for _, rw := range rows {
			c := counts[rw.TopicID]
			switch i {
			case 0:
				c.Blogs = rw.Count
			case 1:
				c.Notes = rw.Count
			case 2:
				c.Problems = rw.Count
			}
			counts[rw.TopicID] = c
		}
	}
	return counts, nil
}

func (r *topicRepository) DeleteTopic(ctx context.Context, id uuid.UUID, cascade bool) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range filed {
			var err error
			if cascade {
				err = tx.Where("topic_id = ?", id).Delete(model).Error
			} else {
				err = tx.Model(model).Where("topic_id = ?", id).
					Updates(map[string]any{"topic_id": nil, "sub_topic_id": nil}).Error
			}
			if err != nil {
				return err
			}
		}

		if err := tx.Where("topic_id = ?", id).Delete(&entity.SubTopic{}).Error; err != nil {
			return err
		}

		res := tx.Delete(&entity.Topic{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *topicRepository) CreateSubTopic(ctx context.Context, subTopic *entity.SubTopic) error {
	return r.db.WithContext(ctx).Create(subTopic).Error
}

func (r *topicRepository) UpdateSubTopic(ctx context.Context, subTopic *entity.SubTopic) error {
	return r.db.WithContext(ctx).Save(subTopic).Error
}

func (r *topicRepository) FindSubTopicByID(ctx context.Context, id uuid.UUID) (*entity.SubTopic, error) {
	var subTopic entity.SubTopic
	if err := r.db.WithContext(ctx).First(&subTopic, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &subTopic, nil
}

func (r *topicRepository) DeleteSubTopic(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range filed {
			if err := tx.Model(model).Where("sub_topic_id = ?", id).Update("sub_topic_id", nil).Error; err != nil {
				return err
			}
		}

		res := tx.Delete(&entity.SubTopic{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
