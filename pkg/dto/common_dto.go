package dto

import (
	"fmt"
	"time"

	"anoa.com/studyhub/pkg/apperror"
	"github.com/google/uuid"
)

const (
	SortNewest         = "newest"
	SortOldest         = "oldest"
	SortMostViewed     = "mostViewed"
	SortMostDownloaded = "mostDownloaded"
	SortHighestRated   = "highestRated"
	SortAlphabetical   = "alphabetical"
)

var sortClauses = map[string]string{
	SortNewest:         "created_at DESC",
	SortOldest:         "created_at ASC",
	SortMostViewed:     "views DESC, created_at DESC",
	SortMostDownloaded: "downloads DESC, created_at DESC",
	SortHighestRated:   "rating DESC, created_at DESC",
	SortAlphabetical:   "LOWER(title) ASC",
}

// OrderClause resolves sort into an ORDER BY expression. An empty sort means
// newest first; a sort outside supported is invalid input.
func OrderClause(sort string, supported ...string) (string, error) {
	if sort == "" {
		sort = SortNewest
	}
	for _, s := range supported {
		if s == sort {
			return sortClauses[s], nil
		}
	}
	return "", fmt.Errorf("unsupported sort %q: %w", sort, apperror.ErrInvalidInput)
}

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// ListFilter is the shared query string shape of every content listing.
type ListFilter struct {
	Search     string `form:"search"`
	Category   string `form:"category"`
	Difficulty string `form:"difficulty"`
	Type       string `form:"type"`
	Tag        string `form:"tag"`
	TopicID    string `form:"topic_id" binding:"omitempty,uuid"`
	SubTopicID string `form:"sub_topic_id" binding:"omitempty,uuid"`
	Published  *bool  `form:"published"`
	Sort       string `form:"sort"`
	Page       int    `form:"page" binding:"omitempty,min=1"`
	Limit      int    `form:"limit" binding:"omitempty,min=1,max=100"`
}

func (f *ListFilter) Normalize() {
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.Limit <= 0 {
		f.Limit = DefaultPageSize
	}
	if f.Limit > MaxPageSize {
		f.Limit = MaxPageSize
	}
}

func (f ListFilter) Offset() int {
	return (f.Page - 1) * f.Limit
}

type PaginationMeta struct {
	CurrentPage int   `json:"current_page"`
	TotalPages  int   `json:"total_pages"`
	TotalItems  int64 `json:"total_items"`
	Limit       int   `json:"limit"`
}

func NewPaginationMeta(page, limit int, total int64) PaginationMeta {
	totalPages := 0
	if limit > 0 {
		totalPages = int(total) / limit
		if int(total)%limit != 0 {
			totalPages++
		}
	}
	return PaginationMeta{
		CurrentPage: page,
		TotalPages:  totalPages,
		TotalItems:  total,
		Limit:       limit,
	}
}

type Paginated[T any] struct {
	Data []T            `json:"data"`
	Meta PaginationMeta `json:"meta"`
}

type AuthorResponse struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// FormatTime renders timestamps the same way across every response.
func FormatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// Viewer identifies the caller of a request. A nil *Viewer is anonymous.
type Viewer struct {
	ID      uuid.UUID
	IsAdmin bool
}

// CanModify reports whether the viewer owns ownerID's content or is an admin.
func (v *Viewer) CanModify(ownerID uuid.UUID) bool {
	return v != nil && (v.IsAdmin || v.ID == ownerID)
}

// Key identifies the viewer for de-duplication, falling back to fallback
// (usually the client IP) for anonymous callers.
func (v *Viewer) Key(fallback string) string {
	if v == nil {
		return fallback
	}
	return v.ID.String()
}
