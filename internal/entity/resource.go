package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

const (
	ResourceTypeCodingQuestion = "coding-question"
	ResourceTypeStudyGuide     = "study-guide"
	ResourceTypeLink           = "link"
	ResourceTypeDocument       = "document"
	ResourceTypeVideo          = "video"
	ResourceTypeExcel          = "excel"
	ResourceTypeImage          = "image"
)

// InterviewResource views and downloads only ever grow; Rating is the
// average of ResourceRating scores.
type InterviewResource struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Title       string         `gorm:"size:255;not null" json:"title"`
	Description string         `gorm:"type:text" json:"description"`
	Content     string         `gorm:"type:text" json:"content"`
	Type        string         `gorm:"size:20;not null;index" json:"type"`
	Category    string         `gorm:"size:100;index" json:"category"`
	Difficulty  string         `gorm:"size:20;index" json:"difficulty"`
	Tags        pq.StringArray `gorm:"type:text[]" json:"tags"`
	URL         *string        `gorm:"type:text" json:"url"`
	FileURL     *string        `gorm:"type:text" json:"file_url"`
	FileName    *string        `gorm:"size:255" json:"file_name"`
	FileSize    *int64         `json:"file_size"`
	Views       int64          `gorm:"not null;default:0" json:"views"`
	Downloads   int64          `gorm:"not null;default:0" json:"downloads"`
	Rating      float64        `gorm:"not null;default:0" json:"rating"`
	IsPremium   bool           `gorm:"not null;default:false" json:"is_premium"`
	IsPublic    bool           `gorm:"not null;index" json:"is_public"`
	CreatedByID *uuid.UUID     `gorm:"type:uuid" json:"created_by_id"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (r *InterviewResource) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == uuid.Nil {
		r.ID, err = uuid.NewV7()
	}
	return
}

type ResourceRating struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ResourceID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_resource_ratings_unique,priority:1" json:"resource_id"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_resource_ratings_unique,priority:2" json:"user_id"`
	Score      int       `gorm:"not null" json:"score"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (r *ResourceRating) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == uuid.Nil {
		r.ID, err = uuid.NewV7()
	}
	return
}
