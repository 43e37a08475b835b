package reaction

import (
	"context"
	"fmt"

	reactionDto "anoa.com/studyhub/internal/modules/reaction/dto"
	reactionRepo "anoa.com/studyhub/internal/modules/reaction/repository"
	"anoa.com/studyhub/pkg/apperror"
	"anoa.com/studyhub/pkg/database"
	"github.com/google/uuid"
)

type ReactionService interface {
	ReactToComment(ctx context.Context, commentID, userID uuid.UUID, req reactionDto.ReactionRequest) (*reactionDto.ReactionResponse, error)
}

type reactionService struct {
	repo reactionRepo.ReactionRepository
}

func NewReactionService(repo reactionRepo.ReactionRepository) ReactionService {
	return &reactionService{repo: repo}
}

func (s *reactionService) ReactToComment(ctx context.Context, commentID, userID uuid.UUID, req reactionDto.ReactionRequest) (*reactionDto.ReactionResponse, error) {
	counters, current, err := s.repo.ToggleReaction(ctx, commentID, userID, req.Type)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, fmt.Errorf("comment not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}

	resp := &reactionDto.ReactionResponse{
		CommentID: commentID,
		Likes:     counters.Likes,
		Dislikes:  counters.Dislikes,
	}
	if current != "" {
		resp.UserReaction = &current
	}
	return resp, nil
}
