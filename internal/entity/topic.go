package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Topic struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string     `gorm:"size:100;not null" json:"name"`
	Slug        string     `gorm:"size:120;uniqueIndex;not null" json:"slug"`
	Description string     `gorm:"type:text" json:"description"`
	Icon        string     `gorm:"size:100" json:"icon"`
	Order       int        `gorm:"column:sort_order;not null;default:0" json:"order"`
	SubTopics   []SubTopic `gorm:"foreignKey:TopicID;constraint:OnDelete:CASCADE" json:"sub_topics,omitempty"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (t *Topic) BeforeCreate(tx *gorm.DB) (err error) {
	if t.ID == uuid.Nil {
		t.ID, err = uuid.NewV7()
	}
	return
}

// SubTopic slugs are unique within their parent topic only.
type SubTopic struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	TopicID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_sub_topics_topic_slug,priority:1" json:"topic_id"`
	Name        string    `gorm:"size:100;not null" json:"name"`
	Slug        string    `gorm:"size:120;not null;uniqueIndex:idx_sub_topics_topic_slug,priority:2" json:"slug"`
	Description string    `gorm:"type:text" json:"description"`
	Icon        string    `gorm:"size:100" json:"icon"`
	Order       int       `gorm:"column:sort_order;not null;default:0" json:"order"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (s *SubTopic) BeforeCreate(tx *gorm.DB) (err error) {
	if s.ID == uuid.Nil {
		s.ID, err = uuid.NewV7()
	}
	return
}
