package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

type Note struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Title      string         `gorm:"size:255;not null" json:"title"`
	Content    string         `gorm:"type:text;not null" json:"content"`
	Category   string         `gorm:"size:100;index" json:"category"`
	Tags       pq.StringArray `gorm:"type:text[]" json:"tags"`
	ReadTime   int            `gorm:"not null;default:0" json:"read_time"`
	AuthorID   uuid.UUID      `gorm:"type:uuid;not null;index" json:"author_id"`
	Author     User           `gorm:"foreignKey:AuthorID" json:"author"`
	TopicID    *uuid.UUID     `gorm:"type:uuid;index" json:"topic_id"`
	SubTopicID *uuid.UUID     `gorm:"type:uuid;index" json:"sub_topic_id"`
	CreatedAt  time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

func (n *Note) BeforeCreate(tx *gorm.DB) (err error) {
	if n.ID == uuid.Nil {
		n.ID, err = uuid.NewV7()
	}
	return
}
