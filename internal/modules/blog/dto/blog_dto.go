package dto

import (
	commonDto "anoa.com/studyhub/pkg/dto"
	"github.com/google/uuid"
)

type CreateBlogRequest struct {
	Title      string     `json:"title" binding:"required,max=255"`
	Content    string     `json:"content" binding:"required"`
	Excerpt    string     `json:"excerpt" binding:"max=500"`
	Published  bool       `json:"published"`
	Category   string     `json:"category" binding:"max=100"`
	Tags       []string   `json:"tags" binding:"omitempty,max=20,dive,max=50"`
	CoverImage *string    `json:"cover_image" binding:"omitempty,url"`
	TopicID    *uuid.UUID `json:"topic_id"`
	SubTopicID *uuid.UUID `json:"sub_topic_id"`
}

// UpdateBlogRequest only changes the fields that are present.
type UpdateBlogRequest struct {
	Title      *string    `json:"title" binding:"omitempty,min=1,max=255"`
	Content    *string    `json:"content" binding:"omitempty,min=1"`
	Excerpt    *string    `json:"excerpt" binding:"omitempty,max=500"`
	Published  *bool      `json:"published"`
	Category   *string    `json:"category" binding:"omitempty,max=100"`
	Tags       *[]string  `json:"tags" binding:"omitempty,max=20,dive,max=50"`
	CoverImage *string    `json:"cover_image" binding:"omitempty,url"`
	TopicID    *uuid.UUID `json:"topic_id"`
	SubTopicID *uuid.UUID `json:"sub_topic_id"`

	// ClearPlacement detaches the blog from its topic and subtopic.
	ClearPlacement bool `json:"clear_placement"`
}

type BlogResponse struct {
	ID         uuid.UUID                `json:"id"`
	Title      string                   `json:"title"`
	Content    string                   `json:"content,omitempty"`
	Excerpt    string                   `json:"excerpt"`
	Published  bool                     `json:"published"`
	Category   string                   `json:"category"`
	Tags       []string                 `json:"tags"`
	CoverImage *string                  `json:"cover_image"`
	ReadTime   int                      `json:"read_time"`
	Views      int64                    `json:"views"`
	Author     commonDto.AuthorResponse `json:"author"`
	TopicID    *uuid.UUID               `json:"topic_id"`
	SubTopicID *uuid.UUID               `json:"sub_topic_id"`
	CreatedAt  string                   `json:"created_at"`
	UpdatedAt  string                   `json:"updated_at"`
}
