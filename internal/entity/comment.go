package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Comment is authored either by a registered user (AuthorID) or anonymously
// (AuthorName, optional AuthorEmail), never both.
type Comment struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ResourceID  uuid.UUID      `gorm:"type:uuid;not null;index" json:"resource_id"`
	ParentID    *uuid.UUID     `gorm:"type:uuid;index" json:"parent_id"`
	Content     string         `gorm:"type:text;not null" json:"content"`
	IsEdited    bool           `gorm:"not null;default:false" json:"is_edited"`
	AuthorID    *uuid.UUID     `gorm:"type:uuid;index" json:"author_id"`
	Author      *User          `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	AuthorName  *string        `gorm:"size:100" json:"author_name"`
	AuthorEmail *string        `gorm:"size:255" json:"-"`
	Likes       int64          `gorm:"not null;default:0" json:"likes"`
	Dislikes    int64          `gorm:"not null;default:0" json:"dislikes"`
	CreatedAt   time.Time      `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (c *Comment) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == uuid.Nil {
		c.ID, err = uuid.NewV7()
	}
	return
}

const (
	ReactionLike    = "like"
	ReactionDislike = "dislike"
)

// CommentReaction holds at most one vote per user per comment.
type CommentReaction struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CommentID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_comment_reactions_unique,priority:1" json:"comment_id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_comment_reactions_unique,priority:2" json:"user_id"`
	Type      string    `gorm:"size:10;not null" json:"type"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (r *CommentReaction) TableName() string {
	return "comment_reactions"
}

func (r *CommentReaction) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == uuid.Nil {
		r.ID, err = uuid.NewV7()
	}
	return
}
