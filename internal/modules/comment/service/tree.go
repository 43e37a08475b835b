package service

import (
	"sort"

	"anoa.com/studyhub/internal/entity"
	"anoa.com/studyhub/internal/modules/comment/dto"
	"github.com/google/uuid"
)

// buildTree nests comments under their parents. Every level is ordered by
// creation time; comments whose parent is not in the set are dropped.
func buildTree(comments []*entity.Comment) []dto.CommentResponse {
	children := make(map[uuid.UUID][]*entity.Comment, len(comments))
	var roots []*entity.Comment
	for _, c := range comments {
		if c.ParentID == nil {
			roots = append(roots, c)
			continue
		}
		children[*c.ParentID] = append(children[*c.ParentID], c)
	}

	var attach func(level []*entity.Comment) []dto.CommentResponse
	attach = func(level []*entity.Comment) []dto.CommentResponse {
		sort.SliceStable(level, func(i, j int) bool {
			return level[i].CreatedAt.Before(level[j].CreatedAt)
		})
		out := make([]dto.CommentResponse, 0, len(level))
		for _, c := range level {
			resp := toCommentResponse(c)
			resp.Replies = attach(children[c.ID])
			resp.ReplyCount = len(resp.Replies)
			out = append(out, resp)
		}
		return out
	}

	return attach(roots)
}
