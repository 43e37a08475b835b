package dto

import "github.com/google/uuid"

type CreateResourceRequest struct {
	Title       string   `json:"title" binding:"required,max=255"`
	Description string   `json:"description"`
	Content     string   `json:"content"`
	Type        string   `json:"type" binding:"required,oneof=coding-question study-guide link document video excel image"`
	Category    string   `json:"category" binding:"max=100"`
	Difficulty  string   `json:"difficulty" binding:"max=20"`
	Tags        []string `json:"tags" binding:"omitempty,max=20,dive,max=50"`
	URL         *string  `json:"url" binding:"omitempty,url"`
	FileURL     *string  `json:"file_url" binding:"omitempty,url"`
	FileName    *string  `json:"file_name" binding:"omitempty,max=255"`
	FileSize    *int64   `json:"file_size" binding:"omitempty,min=0"`
	IsPremium   bool     `json:"is_premium"`
	IsPublic    *bool    `json:"is_public"`
}

// UpdateResourceRequest changes present fields only. An empty url, file_url
// or file_name and a zero file_size clear the stored value.
type UpdateResourceRequest struct {
	Title       *string   `json:"title" binding:"omitempty,min=1,max=255"`
	Description *string   `json:"description"`
	Content     *string   `json:"content"`
	Type        *string   `json:"type" binding:"omitempty,oneof=coding-question study-guide link document video excel image"`
	Category    *string   `json:"category" binding:"omitempty,max=100"`
	Difficulty  *string   `json:"difficulty" binding:"omitempty,max=20"`
	Tags        *[]string `json:"tags" binding:"omitempty,max=20,dive,max=50"`
	URL         *string   `json:"url" binding:"omitempty,len=0|url"`
	FileURL     *string   `json:"file_url" binding:"omitempty,len=0|url"`
	FileName    *string   `json:"file_name" binding:"omitempty,max=255"`
	FileSize    *int64    `json:"file_size" binding:"omitempty,min=0"`
	IsPremium   *bool     `json:"is_premium"`
	IsPublic    *bool     `json:"is_public"`
}

type RateResourceRequest struct {
	Score int `json:"score" binding:"required,min=1,max=5"`
}

type RatingResponse struct {
	ResourceID uuid.UUID `json:"resource_id"`
	Score      int       `json:"score"`
	Rating     float64   `json:"rating"`
}

type DownloadResponse struct {
	ResourceID uuid.UUID `json:"resource_id"`
	Downloads  int64     `json:"downloads"`
	URL        *string   `json:"url"`
}

type ResourceResponse struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Content     string    `json:"content,omitempty"`
	Type        string    `json:"type"`
	Category    string    `json:"category"`
	Difficulty  string    `json:"difficulty"`
	Tags        []string  `json:"tags"`
	URL         *string   `json:"url"`
	FileURL     *string   `json:"file_url"`
	FileName    *string   `json:"file_name"`
	FileSize    *int64    `json:"file_size"`
	Views       int64     `json:"views"`
	Downloads   int64     `json:"downloads"`
	Rating      float64   `json:"rating"`
	IsPremium   bool      `json:"is_premium"`
	IsPublic    bool      `json:"is_public"`
	CreatedAt   string    `json:"created_at"`
	UpdatedAt   string    `json:"updated_at"`
}
