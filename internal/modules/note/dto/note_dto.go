package dto

import (
	commonDto "anoa.com/studyhub/pkg/dto"
	"github.com/google/uuid"
)

type CreateNoteRequest struct {
	Title      string     `json:"title" binding:"required,max=255"`
	Content    string     `json:"content" binding:"required"`
	Category   string     `json:"category" binding:"max=100"`
	Tags       []string   `json:"tags" binding:"omitempty,max=20,dive,max=50"`
	TopicID    *uuid.UUID `json:"topic_id"`
	SubTopicID *uuid.UUID `json:"sub_topic_id"`
}

type UpdateNoteRequest struct {
	Title      *string    `json:"title" binding:"omitempty,min=1,max=255"`
	Content    *string    `json:"content" binding:"omitempty,min=1"`
	Category   *string    `json:"category" binding:"omitempty,max=100"`
	Tags       *[]string  `json:"tags" binding:"omitempty,max=20,dive,max=50"`
	TopicID    *uuid.UUID `json:"topic_id"`
	SubTopicID *uuid.UUID `json:"sub_topic_id"`

	// ClearPlacement detaches the note from its topic and subtopic.
	ClearPlacement bool `json:"clear_placement"`
}

type NoteResponse struct {
	ID         uuid.UUID                `json:"id"`
	Title      string                   `json:"title"`
	Content    string                   `json:"content"`
	Category   string                   `json:"category"`
	Tags       []string                 `json:"tags"`
	ReadTime   int                      `json:"read_time"`
	Author     commonDto.AuthorResponse `json:"author"`
	TopicID    *uuid.UUID               `json:"topic_id"`
	SubTopicID *uuid.UUID               `json:"sub_topic_id"`
	CreatedAt  string                   `json:"created_at"`
	UpdatedAt  string                   `json:"updated_at"`
}
