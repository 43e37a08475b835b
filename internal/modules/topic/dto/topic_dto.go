package dto

import "github.com/google/uuid"

type CreateTopicRequest struct {
	Name        string `json:"name" binding:"required,max=100"`
	Slug        string `json:"slug" binding:"omitempty,max=120"`
	Description string `json:"description"`
	Icon        string `json:"icon" binding:"max=100"`
	Order       int    `json:"order"`
}

// UpdateTopicRequest only changes the fields that are present.
type UpdateTopicRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=1,max=100"`
	Slug        *string `json:"slug" binding:"omitempty,max=120"`
	Description *string `json:"description"`
	Icon        *string `json:"icon" binding:"omitempty,max=100"`
	Order       *int    `json:"order"`
}

type DeleteTopicQuery struct {
	Cascade bool `form:"cascade"`
}

// ContentCounts is computed per request, never stored.
type ContentCounts struct {
	Blogs    int64 `json:"blogs"`
	Notes    int64 `json:"notes"`
	Problems int64 `json:"problems"`
}

type SubTopicResponse struct {
	ID          uuid.UUID `json:"id"`
	TopicID     uuid.UUID `json:"topic_id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
	Order       int       `json:"order"`
}

type TopicResponse struct {
	ID          uuid.UUID          `json:"id"`
	Name        string             `json:"name"`
	Slug        string             `json:"slug"`
	Description string             `json:"description"`
	Icon        string             `json:"icon"`
	Order       int                `json:"order"`
	SubTopics   []SubTopicResponse `json:"sub_topics"`
	Counts      ContentCounts      `json:"counts"`
}
