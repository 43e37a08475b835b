package dto

import (
	"github.com/google/uuid"
)

// CreateCommentRequest names an author only for anonymous posters;
// authenticated callers are identified by their token.
type CreateCommentRequest struct {
	ParentID    *uuid.UUID `json:"parent_id"`
	Content     string     `json:"content" binding:"required,max=10000"`
	AuthorName  *string    `json:"author_name" binding:"omitempty,max=100"`
	AuthorEmail *string    `json:"author_email" binding:"omitempty,email,max=255"`
}

type UpdateCommentRequest struct {
	Content string `json:"content" binding:"required,max=10000"`
}

type CommentAuthor struct {
	ID          *uuid.UUID `json:"id"`
	Name        string     `json:"name"`
	IsAnonymous bool       `json:"is_anonymous"`
}

type CommentResponse struct {
	ID         uuid.UUID         `json:"id"`
	ResourceID uuid.UUID         `json:"resource_id"`
	ParentID   *uuid.UUID        `json:"parent_id"`
	Content    string            `json:"content"`
	IsEdited   bool              `json:"is_edited"`
	Author     CommentAuthor     `json:"author"`
	Likes      int64             `json:"likes"`
	Dislikes   int64             `json:"dislikes"`
	ReplyCount int               `json:"reply_count"`
	Replies    []CommentResponse `json:"replies"`
	CreatedAt  string            `json:"created_at"`
	UpdatedAt  string            `json:"updated_at"`
}
