package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"anoa.com/studyhub/internal/entity"
	"anoa.com/studyhub/internal/modules/comment/dto"
	"anoa.com/studyhub/internal/modules/comment/repository"
	notification "anoa.com/studyhub/internal/modules/notification/service"
	"anoa.com/studyhub/pkg/apperror"
	"anoa.com/studyhub/pkg/content"
	"anoa.com/studyhub/pkg/database"
	commonDto "anoa.com/studyhub/pkg/dto"
	"anoa.com/studyhub/pkg/ratelimiter"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const anonCommentAction = "anon_comment"

// ResourceChecker reports whether a resource exists and is visible to viewer.
type ResourceChecker interface {
	Exists(ctx context.Context, id uuid.UUID, viewer *commonDto.Viewer) error
}

type CommentService interface {
	ListComments(ctx context.Context, resourceID uuid.UUID, viewer *commonDto.Viewer) ([]dto.CommentResponse, error)
	CreateComment(ctx context.Context, resourceID uuid.UUID, viewer *commonDto.Viewer, clientIP string, req dto.CreateCommentRequest) (*dto.CommentResponse, error)
	UpdateComment(ctx context.Context, id uuid.UUID, viewer *commonDto.Viewer, req dto.UpdateCommentRequest) (*dto.CommentResponse, error)
	DeleteComment(ctx context.Context, id uuid.UUID, viewer *commonDto.Viewer) error
}

type Options struct {
	// AnonCooldown is the minimum gap between two anonymous comments from
	// the same client IP.
	AnonCooldown time.Duration
}

type commentService struct {
	repo        repository.CommentRepository
	resources   ResourceChecker
	notifier    notification.Notifier
	redisClient *redis.Client
	opts        Options
	log         *zap.Logger
}

func NewCommentService(repo repository.CommentRepository, resources ResourceChecker, notifier notification.Notifier, redisClient *redis.Client, opts Options, log *zap.Logger) CommentService {
	if opts.AnonCooldown <= 0 {
		opts.AnonCooldown = 30 * time.Second
	}
	return &commentService{
		repo:        repo,
		resources:   resources,
		notifier:    notifier,
		redisClient: redisClient,
		opts:        opts,
		log:         log,
	}
}

func (s *commentService) ListComments(ctx context.Context, resourceID uuid.UUID, viewer *commonDto.Viewer) ([]dto.CommentResponse, error) {
	if err := s.resources.Exists(ctx, resourceID, viewer); err != nil {
		return nil, err
	}

	comments, err := s.repo.FindByResource(ctx, resourceID)
	if err != nil {
		return nil, err
	}

	return buildTree(comments), nil
}

func (s *commentService) CreateComment(ctx context.Context, resourceID uuid.UUID, viewer *commonDto.Viewer, clientIP string, req dto.CreateCommentRequest) (*dto.CommentResponse, error) {
	body := content.SanitizeHTML(req.Content)
	if body == "" {
		return nil, apperror.Validation("content is empty")
	}

	comment := &entity.Comment{
		ResourceID: resourceID,
		ParentID:   req.ParentID,
		Content:    body,
	}

	if viewer != nil {
		comment.AuthorID = &viewer.ID
	} else {
		if req.AuthorName == nil || strings.TrimSpace(*req.AuthorName) == "" {
			return nil, apperror.Validation("author_name is required for anonymous comments")
		}
		name := strings.TrimSpace(*req.AuthorName)
		comment.AuthorName = &name
		if req.AuthorEmail != nil && strings.TrimSpace(*req.AuthorEmail) != "" {
			email := strings.TrimSpace(*req.AuthorEmail)
			comment.AuthorEmail = &email
		}
	}

	if err := s.resources.Exists(ctx, resourceID, viewer); err != nil {
		return nil, err
	}

	var parent *entity.Comment
	if req.ParentID != nil {
		var err error
		parent, err = s.repo.FindByID(ctx, *req.ParentID)
		if err != nil {
			if database.IsNotFound(err) {
				return nil, fmt.Errorf("parent comment not found: %w", apperror.ErrNotFound)
			}
			return nil, err
		}
		if parent.ResourceID != resourceID {
			return nil, apperror.Validation("parent comment belongs to another resource")
		}
	}

	if viewer == nil {
		release, err := s.takeAnonSlot(ctx, clientIP)
		if err != nil {
			return nil, err
		}
		if err := s.repo.Create(ctx, comment); err != nil {
			release()
			return nil, err
		}
	} else if err := s.repo.Create(ctx, comment); err != nil {
		return nil, err
	}

	if parent != nil {
		s.notifyReply(ctx, parent, comment, viewer)
	}

	saved, err := s.repo.FindByID(ctx, comment.ID)
	if err != nil {
		return nil, err
	}
	resp := toCommentResponse(saved)
	return &resp, nil
}

// takeAnonSlot claims the per-IP cooldown. The returned func gives the slot
// back when the comment could not be stored.
func (s *commentService) takeAnonSlot(ctx context.Context, clientIP string) (func(), error) {
	allowed, err := ratelimiter.CheckAndSetRateLimit(ctx, s.redisClient, clientIP, anonCommentAction, s.opts.AnonCooldown)
	if err != nil {
		return nil, fmt.Errorf("failed to check rate limit: %w", err)
	}
	if !allowed {
		ttl, _ := ratelimiter.GetRateLimitTTL(ctx, s.redisClient, clientIP, anonCommentAction)
		return nil, &ratelimiter.RateLimitError{
			Message:    fmt.Sprintf("you are commenting too fast. Please wait %.0f seconds", ttl.Seconds()),
			RetryAfter: ttl,
		}
	}
	return func() {
		_ = ratelimiter.ClearRateLimit(ctx, s.redisClient, clientIP, anonCommentAction)
	}, nil
}

func (s *commentService) notifyReply(ctx context.Context, parent, reply *entity.Comment, viewer *commonDto.Viewer) {
	if s.notifier == nil || parent.AuthorID == nil {
		return
	}
	if viewer != nil && viewer.ID == *parent.AuthorID {
		return
	}

	n := &entity.Notification{
		UserID:     *parent.AuthorID,
		EntityID:   reply.ID,
		EntityType: "comment",
		Type:       entity.NotificationCommentReply,
		Message:    "Someone replied to your comment",
	}
	if viewer != nil {
		n.ActorID = &viewer.ID
	} else if reply.AuthorName != nil {
		n.Message = fmt.Sprintf("%s replied to your comment", *reply.AuthorName)
	}

	if err := s.notifier.Notify(ctx, n); err != nil {
		s.log.Warn("failed to notify comment author",
			zap.String("comment_id", reply.ID.String()),
			zap.Error(err))
	}
}

func (s *commentService) findOwned(ctx context.Context, id uuid.UUID, viewer *commonDto.Viewer) (*entity.Comment, error) {
	if viewer == nil {
		return nil, apperror.ErrUnauthorized
	}

	comment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, fmt.Errorf("comment not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}

	if viewer.IsAdmin {
		return comment, nil
	}
	if comment.AuthorID == nil || *comment.AuthorID != viewer.ID {
		return nil, fmt.Errorf("only the author can change this comment: %w", apperror.ErrForbidden)
	}
	return comment, nil
}

func (s *commentService) UpdateComment(ctx context.Context, id uuid.UUID, viewer *commonDto.Viewer, req dto.UpdateCommentRequest) (*dto.CommentResponse, error) {
	comment, err := s.findOwned(ctx, id, viewer)
	if err != nil {
		return nil, err
	}

	body := content.SanitizeHTML(req.Content)
	if body == "" {
		return nil, apperror.Validation("content is empty")
	}

	comment.Content = body
	comment.IsEdited = true
	if err := s.repo.Update(ctx, comment); err != nil {
		return nil, err
	}

	resp := toCommentResponse(comment)
	return &resp, nil
}

func (s *commentService) DeleteComment(ctx context.Context, id uuid.UUID, viewer *commonDto.Viewer) error {
	if _, err := s.findOwned(ctx, id, viewer); err != nil {
		return err
	}

	removed, err := s.repo.DeleteSubtree(ctx, id)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) || database.IsNotFound(err) {
			return fmt.Errorf("comment not found: %w", apperror.ErrNotFound)
		}
		return err
	}

	s.log.Debug("comment subtree deleted", zap.String("comment_id", id.String()), zap.Int64("removed", removed))
	return nil
}

func toCommentResponse(c *entity.Comment) dto.CommentResponse {
	author := dto.CommentAuthor{ID: c.AuthorID}
	switch {
	case c.Author != nil:
		author.Name = c.Author.Name
	case c.AuthorName != nil:
		author.Name = *c.AuthorName
		author.IsAnonymous = true
	default:
		author.Name = "Unknown"
	}

	return dto.CommentResponse{
		ID:         c.ID,
		ResourceID: c.ResourceID,
		ParentID:   c.ParentID,
		Content:    c.Content,
		IsEdited:   c.IsEdited,
		Author:     author,
		Likes:      c.Likes,
		Dislikes:   c.Dislikes,
		Replies:    []dto.CommentResponse{},
		CreatedAt:  commonDto.FormatTime(c.CreatedAt),
		UpdatedAt:  commonDto.FormatTime(c.UpdatedAt),
	}
}
