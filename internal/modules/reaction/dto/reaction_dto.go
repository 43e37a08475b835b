package dto

import "github.com/google/uuid"

type ReactionRequest struct {
	Type string `json:"type" binding:"required,oneof=like dislike"`
}

// ReactionResponse carries the comment's counters after the toggle and the
// caller's current vote, nil when the vote was withdrawn.
type ReactionResponse struct {
	CommentID    uuid.UUID `json:"comment_id"`
	Likes        int64     `json:"likes"`
	Dislikes     int64     `json:"dislikes"`
	UserReaction *string   `json:"user_reaction"`
}
