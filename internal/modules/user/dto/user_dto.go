package dto

import "github.com/google/uuid"

// Identity is what the identity provider tells us about the caller.
type Identity struct {
	ExternalID string
	Email      string
	Name       string
}

type UserResponse struct {
	ID         uuid.UUID `json:"id"`
	ExternalID string    `json:"external_id"`
	Email      string    `json:"email"`
	Name       string    `json:"name"`
	Role       string    `json:"role"`
	CreatedAt  string    `json:"created_at"`
}

type UserFilter struct {
	Search string `form:"search"`
	Page   int    `form:"page" binding:"omitempty,min=1"`
	Limit  int    `form:"limit" binding:"omitempty,min=1,max=100"`
}

type UpdateRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=USER ADMIN"`
}
