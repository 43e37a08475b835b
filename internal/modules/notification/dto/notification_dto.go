package dto

import (
	commonDto "anoa.com/studyhub/pkg/dto"
	"github.com/google/uuid"
)

type NotificationFilter struct {
	Page  int `form:"page" binding:"omitempty,min=1"`
	Limit int `form:"limit" binding:"omitempty,min=1,max=100"`
}

type NotificationResponse struct {
	ID         uuid.UUID                 `json:"id"`
	Type       string                    `json:"type"`
	EntityID   uuid.UUID                 `json:"entity_id"`
	EntityType string                    `json:"entity_type"`
	Message    string                    `json:"message"`
	IsRead     bool                      `json:"is_read"`
	Actor      *commonDto.AuthorResponse `json:"actor,omitempty"`
	CreatedAt  string                    `json:"created_at"`
}
