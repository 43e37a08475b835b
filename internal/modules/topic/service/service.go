package topic

import (
	"context"
	"fmt"
	"strings"

	"anoa.com/studyhub/internal/entity"
	"anoa.com/studyhub/internal/modules/topic/dto"
	"anoa.com/studyhub/internal/modules/topic/repository"
	"anoa.com/studyhub/pkg/apperror"
	"anoa.com/studyhub/pkg/content"
	"anoa.com/studyhub/pkg/database"
	"github.com/google/uuid"
)

type TopicService interface {
	ListTopics(ctx context.Context, search string) ([]dto.TopicResponse, error)
	GetTopic(ctx context.Context, slugOrID string) (*dto.TopicResponse, error)
	CreateTopic(ctx context.Context, req dto.CreateTopicRequest) (*dto.TopicResponse, error)
	UpdateTopic(ctx context.Context, id uuid.UUID, req dto.UpdateTopicRequest) (*dto.TopicResponse, error)
	DeleteTopic(ctx context.Context, id uuid.UUID, cascade bool) error

	CreateSubTopic(ctx context.Context, topicID uuid.UUID, req dto.CreateTopicRequest) (*dto.SubTopicResponse, error)
	UpdateSubTopic(ctx context.Context, id uuid.UUID, req dto.UpdateTopicRequest) (*dto.SubTopicResponse, error)
	DeleteSubTopic(ctx context.Context, id uuid.UUID) error

	// ResolvePlacement checks that content may be filed under topicID and
	// subTopicID. A subtopic alone implies its parent topic.
	ResolvePlacement(ctx context.Context, topicID, subTopicID *uuid.UUID) (*uuid.UUID, *uuid.UUID, error)
}

type topicService struct {
	repo repository.TopicRepository
}

func NewTopicService(repo repository.TopicRepository) TopicService {
	return &topicService{repo: repo}
}

// resolveSlug normalizes an explicit slug, or derives one from name.
func resolveSlug(explicit, name string) (string, error) {
	source := explicit
	if strings.TrimSpace(source) == "" {
		source = name
	}
	slug := content.Slugify(source)
	if slug == "" {
		return "", fmt.Errorf("slug must contain at least one letter or digit: %w", apperror.ErrInvalidInput)
	}
	return slug, nil
}

func (s *topicService) ListTopics(ctx context.Context, search string) ([]dto.TopicResponse, error) {
	topics, err := s.repo.FindAllTopics(ctx, search)
	if err != nil {
		return nil, err
	}

	counts, err := s.repo.CountContent(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.TopicResponse, 0, len(topics))
	for _, t := range topics {
		responses = append(responses, toTopicResponse(t, counts[t.ID]))
	}
	return responses, nil
}

func (s *topicService) GetTopic(ctx context.Context, slugOrID string) (*dto.TopicResponse, error) {
	var (
		t   *entity.Topic
		err error
	)
	if id, parseErr := uuid.Parse(slugOrID); parseErr == nil {
		t, err = s.repo.FindTopicByID(ctx, id)
	} else {
		t, err = s.repo.FindTopicBySlug(ctx, slugOrID)
	}
	if err != nil {
		if database.IsNotFound(err) {
			return nil, fmt.Errorf("topic not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}

	counts, err := s.repo.CountContent(ctx)
	if err != nil {
		return nil, err
	}

	resp := toTopicResponse(t, counts[t.ID])
	return &resp, nil
}

func (s *topicService) CreateTopic(ctx context.Context, req dto.CreateTopicRequest) (*dto.TopicResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("name is required: %w", apperror.ErrInvalidInput)
	}

	slug, err := resolveSlug(req.Slug, name)
	if err != nil {
		return nil, err
	}

	if existing, _ := s.repo.FindTopicBySlug(ctx, slug); existing != nil {
		return nil, fmt.Errorf("topic with slug %q already exists: %w", slug, apperror.ErrConflict)
	}

	t := &entity.Topic{
		Name:        name,
		Slug:        slug,
		Description: req.Description,
		Icon:        req.Icon,
		Order:       req.Order,
	}

	if err := s.repo.CreateTopic(ctx, t); err != nil {
		if database.IsDuplicate(err) {
			return nil, fmt.Errorf("topic with slug %q already exists: %w", slug, apperror.ErrConflict)
		}
		return nil, err
	}

	resp := toTopicResponse(t, dto.ContentCounts{})
	return &resp, nil
}

func (s *topicService) UpdateTopic(ctx context.Context, id uuid.UUID, req dto.UpdateTopicRequest) (*dto.TopicResponse, error) {
	t, err := s.repo.FindTopicByID(ctx, id)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, fmt.Errorf("topic not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}

	if req.Name != nil {
		t.Name = strings.TrimSpace(*req.Name)
		if t.Name == "" {
			return nil, fmt.Errorf("name is required: %w", apperror.ErrInvalidInput)
		}
	}
	if req.Slug != nil {
		slug, err := resolveSlug(*req.Slug, t.Name)
		if err != nil {
			return nil, err
		}
		if slug != t.Slug {
			if existing, _ := s.repo.FindTopicBySlug(ctx, slug); existing != nil && existing.ID != t.ID {
				return nil, fmt.Errorf("topic with slug %q already exists: %w", slug, apperror.ErrConflict)
			}
		}
		t.Slug = slug
	}
	if req.Description != nil {
		t.Description = *req.Description
	}
	if req.Icon != nil {
		t.Icon = *req.Icon
	}
	if req.Order != nil {
		t.Order = *req.Order
	}

	if err := s.repo.UpdateTopic(ctx, t); err != nil {
		if database.IsDuplicate(err) {
			return nil, fmt.Errorf("topic with slug %q already exists: %w", t.Slug, apperror.ErrConflict)
		}
		return nil, err
	}

	return s.GetTopic(ctx, t.ID.String())
}

func (s *topicService) DeleteTopic(ctx context.Context, id uuid.UUID, cascade bool) error {
	if err := s.repo.DeleteTopic(ctx, id, cascade); err != nil {
		if database.IsNotFound(err) {
			return fmt.Errorf("topic not found: %w", apperror.ErrNotFound)
		}
		return err
	}
	return nil
}

func (s *topicService) CreateSubTopic(ctx context.Context, topicID uuid.UUID, req dto.CreateTopicRequest) (*dto.SubTopicResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("name is required: %w", apperror.ErrInvalidInput)
	}

	parent, err := s.repo.FindTopicByID(ctx, topicID)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, fmt.Errorf("parent topic not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}

	slug, err := resolveSlug(req.Slug, name)
	if err != nil {
		return nil, err
	}

	for _, existing := range parent.SubTopics {
		if existing.Slug == slug {
			return nil, fmt.Errorf("subtopic with slug %q already exists in %s: %w", slug, parent.Slug, apperror.ErrConflict)
		}
	}

	sub := &entity.SubTopic{
		TopicID:     parent.ID,
		Name:        name,
		Slug:        slug,
		Description: req.Description,
		Icon:        req.Icon,
		Order:       req.Order,
	}

	if err := s.repo.CreateSubTopic(ctx, sub); err != nil {
		if database.IsDuplicate(err) {
			return nil, fmt.Errorf("subtopic with slug %q already exists in %s: %w", slug, parent.Slug, apperror.ErrConflict)
		}
		return nil, err
	}

	resp := toSubTopicResponse(sub)
	return &resp, nil
}

func (s *topicService) UpdateSubTopic(ctx context.Context, id uuid.UUID, req dto.UpdateTopicRequest) (*dto.SubTopicResponse, error) {
	sub, err := s.repo.FindSubTopicByID(ctx, id)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, fmt.Errorf("subtopic not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}

	if req.Name != nil {
		sub.Name = strings.TrimSpace(*req.Name)
		if sub.Name == "" {
			return nil, fmt.Errorf("name is required: %w", apperror.ErrInvalidInput)
		}
	}
	if req.Slug != nil {
		slug, err := resolveSlug(*req.Slug, sub.Name)
		if err != nil {
			return nil, err
		}
		sub.Slug = slug
	}
	if req.Description != nil {
		sub.Description = *req.Description
	}
	if req.Icon != nil {
		sub.Icon = *req.Icon
	}
	if req.Order != nil {
		sub.Order = *req.Order
	}

	if err := s.repo.UpdateSubTopic(ctx, sub); err != nil {
		if database.IsDuplicate(err) {
			return nil, fmt.Errorf("subtopic with slug %q already exists: %w", sub.Slug, apperror.ErrConflict)
		}
		return nil, err
	}

	resp := toSubTopicResponse(sub)
	return &resp, nil
}

func (s *topicService) DeleteSubTopic(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeleteSubTopic(ctx, id); err != nil {
		if database.IsNotFound(err) {
			return fmt.Errorf("subtopic not found: %w", apperror.ErrNotFound)
		}
		return err
	}
	return nil
}

func (s *topicService) ResolvePlacement(ctx context.Context, topicID, subTopicID *uuid.UUID) (*uuid.UUID, *uuid.UUID, error) {
	if subTopicID != nil {
		sub, err := s.repo.FindSubTopicByID(ctx, *subTopicID)
		if err != nil {
			if database.IsNotFound(err) {
				return nil, nil, fmt.Errorf("subtopic not found: %w", apperror.ErrNotFound)
			}
			return nil, nil, err
		}
		if topicID != nil && *topicID != sub.TopicID {
			return nil, nil, apperror.Validation("subtopic does not belong to the given topic")
		}
		parent := sub.TopicID
		return &parent, subTopicID, nil
	}

	if topicID != nil {
		if _, err := s.repo.FindTopicByID(ctx, *topicID); err != nil {
			if database.IsNotFound(err) {
				return nil, nil, fmt.Errorf("topic not found: %w", apperror.ErrNotFound)
			}
			return nil, nil, err
		}
	}
	return topicID, nil, nil
}

func toTopicResponse(t *entity.Topic, counts dto.ContentCounts) dto.TopicResponse {
	subs := make([]dto.SubTopicResponse, 0, len(t.SubTopics))
	for i := range t.SubTopics {
		subs = append(subs, toSubTopicResponse(&t.SubTopics[i]))
	}

	return dto.TopicResponse{
		ID:          t.ID,
		Name:        t.Name,
		Slug:        t.Slug,
		Description: t.Description,
		Icon:        t.Icon,
		Order:       t.Order,
		SubTopics:   subs,
		Counts:      counts,
	}
}

func toSubTopicResponse(s *entity.SubTopic) dto.SubTopicResponse {
	return dto.SubTopicResponse{
		ID:          s.ID,
		TopicID:     s.TopicID,
		Name:        s.Name,
		Slug:        s.Slug,
		Description: s.Description,
		Icon:        s.Icon,
		Order:       s.Order,
	}
}
