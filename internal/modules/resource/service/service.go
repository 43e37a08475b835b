package service

import (
	"context"
	"fmt"
	"strings"

	"anoa.com/studyhub/internal/entity"
	"anoa.com/studyhub/internal/modules/resource/dto"
	"anoa.com/studyhub/internal/modules/resource/repository"
	searchDto "anoa.com/studyhub/internal/modules/search/dto"
	search "anoa.com/studyhub/internal/modules/search/service"
	view "anoa.com/studyhub/internal/modules/view/service"
	"anoa.com/studyhub/pkg/apperror"
	"anoa.com/studyhub/pkg/content"
	"anoa.com/studyhub/pkg/database"
	commonDto "anoa.com/studyhub/pkg/dto"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var resourceSorts = []string{
	commonDto.SortNewest,
	commonDto.SortOldest,
	commonDto.SortMostViewed,
	commonDto.SortMostDownloaded,
	commonDto.SortHighestRated,
	commonDto.SortAlphabetical,
}

type ResourceService interface {
	ListResources(ctx context.Context, viewer *commonDto.Viewer, filter commonDto.ListFilter) (*commonDto.Paginated[dto.ResourceResponse], error)
	GetResource(ctx context.Context, id uuid.UUID, viewer *commonDto.Viewer, clientKey string) (*dto.ResourceResponse, error)
	CreateResource(ctx context.Context, creatorID uuid.UUID, req dto.CreateResourceRequest) (*dto.ResourceResponse, error)
	UpdateResource(ctx context.Context, id uuid.UUID, req dto.UpdateResourceRequest) (*dto.ResourceResponse, error)
	DeleteResource(ctx context.Context, id uuid.UUID) error
	RecordDownload(ctx context.Context, id uuid.UUID, viewer *commonDto.Viewer, clientKey string) (*dto.DownloadResponse, error)
	RateResource(ctx context.Context, id uuid.UUID, viewer *commonDto.Viewer, score int) (*dto.RatingResponse, error)
	CountResources(ctx context.Context) (int64, error)
	// Exists reports whether id names a resource the viewer may see.
	Exists(ctx context.Context, id uuid.UUID, viewer *commonDto.Viewer) error
}

type resourceService struct {
	repo    repository.ResourceRepository
	views   view.ViewService
	indexer search.Indexer
	log     *zap.Logger
}

func NewResourceService(repo repository.ResourceRepository, views view.ViewService, indexer search.Indexer, log *zap.Logger) ResourceService {
	return &resourceService{
		repo:    repo,
		views:   views,
		indexer: indexer,
		log:     log,
	}
}

func isAdmin(viewer *commonDto.Viewer) bool {
	return viewer != nil && viewer.IsAdmin
}

func (s *resourceService) ListResources(ctx context.Context, viewer *commonDto.Viewer, filter commonDto.ListFilter) (*commonDto.Paginated[dto.ResourceResponse], error) {
	filter.Normalize()
	order, err := commonDto.OrderClause(filter.Sort, resourceSorts...)
	if err != nil {
		return nil, err
	}

	resources, total, err := s.repo.FindAll(ctx, filter, order, isAdmin(viewer))
	if err != nil {
		return nil, err
	}

	data := make([]dto.ResourceResponse, 0, len(resources))
	for _, r := range resources {
		resp := toResourceResponse(r)
		resp.Content = ""
		data = append(data, resp)
	}

	return &commonDto.Paginated[dto.ResourceResponse]{
		Data: data,
		Meta: commonDto.NewPaginationMeta(filter.Page, filter.Limit, total),
	}, nil
}

// findVisible hides non-public resources from everyone but admins.
func (s *resourceService) findVisible(ctx context.Context, id uuid.UUID, viewer *commonDto.Viewer) (*entity.InterviewResource, error) {
	resource, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, fmt.Errorf("resource not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}
	if !resource.IsPublic && !isAdmin(viewer) {
		return nil, fmt.Errorf("resource not found: %w", apperror.ErrNotFound)
	}
	return resource, nil
}

func (s *resourceService) Exists(ctx context.Context, id uuid.UUID, viewer *commonDto.Viewer) error {
	_, err := s.findVisible(ctx, id, viewer)
	return err
}

func (s *resourceService) GetResource(ctx context.Context, id uuid.UUID, viewer *commonDto.Viewer, clientKey string) (*dto.ResourceResponse, error) {
	resource, err := s.findVisible(ctx, id, viewer)
	if err != nil {
		return nil, err
	}

	if s.views != nil && s.views.Register(ctx, view.KindResource, resource.ID, viewer.Key(clientKey)) {
		if err := s.repo.IncrementViews(ctx, resource.ID); err != nil {
			s.log.Warn("failed to increment resource views", zap.String("resource_id", resource.ID.String()), zap.Error(err))
		} else {
			resource.Views++
		}
	}

	resp := toResourceResponse(resource)
	return &resp, nil
}

func (s *resourceService) CreateResource(ctx context.Context, creatorID uuid.UUID, req dto.CreateResourceRequest) (*dto.ResourceResponse, error) {
	resource := &entity.InterviewResource{
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Content:     req.Content,
		Type:        req.Type,
		Category:    strings.TrimSpace(req.Category),
		Difficulty:  strings.TrimSpace(req.Difficulty),
		Tags:        content.NormalizeTags(req.Tags),
		URL:         req.URL,
		FileURL:     req.FileURL,
		FileName:    req.FileName,
		FileSize:    req.FileSize,
		IsPremium:   req.IsPremium,
		IsPublic:    true,
		CreatedByID: &creatorID,
	}
	if req.IsPublic != nil {
		resource.IsPublic = *req.IsPublic
	}

	if resource.Title == "" {
		return nil, apperror.Validation("title is required")
	}
	if err := validateVariant(resource); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, resource); err != nil {
		return nil, err
	}
	s.index(ctx, resource)

	resp := toResourceResponse(resource)
	return &resp, nil
}

func (s *resourceService) UpdateResource(ctx context.Context, id uuid.UUID, req dto.UpdateResourceRequest) (*dto.ResourceResponse, error) {
	resource, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, fmt.Errorf("resource not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}

	if req.Title != nil {
		resource.Title = strings.TrimSpace(*req.Title)
		if resource.Title == "" {
			return nil, apperror.Validation("title is required")
		}
	}
	if req.Description != nil {
		resource.Description = *req.Description
	}
	if req.Content != nil {
		resource.Content = *req.Content
	}
	if req.Type != nil {
		resource.Type = *req.Type
	}
	if req.Category != nil {
		resource.Category = strings.TrimSpace(*req.Category)
	}
	if req.Difficulty != nil {
		resource.Difficulty = strings.TrimSpace(*req.Difficulty)
	}
	if req.Tags != nil {
		resource.Tags = content.NormalizeTags(*req.Tags)
	}
	// An empty string clears an optional field.
	if req.URL != nil {
		resource.URL = emptyToNil(req.URL)
	}
	if req.FileURL != nil {
		resource.FileURL = emptyToNil(req.FileURL)
	}
	if req.FileName != nil {
		resource.FileName = emptyToNil(req.FileName)
	}
	if req.FileSize != nil {
		resource.FileSize = req.FileSize
		if *req.FileSize == 0 {
			resource.FileSize = nil
		}
	}
	// A size only describes an attached file.
	if resource.FileURL == nil {
		resource.FileSize = nil
	}
	if req.IsPremium != nil {
		resource.IsPremium = *req.IsPremium
	}
	if req.IsPublic != nil {
		resource.IsPublic = *req.IsPublic
	}

	if err := validateVariant(resource); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, resource); err != nil {
		return nil, err
	}
	s.index(ctx, resource)

	resp := toResourceResponse(resource)
	return &resp, nil
}

func (s *resourceService) DeleteResource(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if database.IsNotFound(err) {
			return fmt.Errorf("resource not found: %w", apperror.ErrNotFound)
		}
		return err
	}
	if s.indexer != nil {
		s.indexer.Remove(ctx, searchDto.IndexResources, id.String())
	}
	return nil
}

func (s *resourceService) RecordDownload(ctx context.Context, id uuid.UUID, viewer *commonDto.Viewer, clientKey string) (*dto.DownloadResponse, error) {
	resource, err := s.findVisible(ctx, id, viewer)
	if err != nil {
		return nil, err
	}

	link := resource.FileURL
	if link == nil {
		link = resource.URL
	}
	resp := &dto.DownloadResponse{ResourceID: resource.ID, Downloads: resource.Downloads, URL: link}

	if s.views != nil && !s.views.Register(ctx, view.KindDownload, resource.ID, viewer.Key(clientKey)) {
		return resp, nil
	}

	downloads, err := s.repo.IncrementDownloads(ctx, resource.ID)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, fmt.Errorf("resource not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}
	resp.Downloads = downloads
	return resp, nil
}

func (s *resourceService) RateResource(ctx context.Context, id uuid.UUID, viewer *commonDto.Viewer, score int) (*dto.RatingResponse, error) {
	if viewer == nil {
		return nil, apperror.ErrUnauthorized
	}
	if score < 1 || score > 5 {
		return nil, apperror.Validation("score must be between 1 and 5")
	}

	if _, err := s.findVisible(ctx, id, viewer); err != nil {
		return nil, err
	}

	average, err := s.repo.Rate(ctx, id, viewer.ID, score)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, fmt.Errorf("resource not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}

	return &dto.RatingResponse{ResourceID: id, Score: score, Rating: average}, nil
}

func (s *resourceService) CountResources(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}

func (s *resourceService) index(ctx context.Context, r *entity.InterviewResource) {
	if s.indexer == nil {
		return
	}
	s.indexer.Index(ctx, searchDto.IndexResources, searchDto.Document{
		ID:        r.ID.String(),
		Title:     r.Title,
		Content:   r.Description + " " + r.Content,
		Category:  r.Category,
		Tags:      r.Tags,
		Public:    r.IsPublic,
		CreatedAt: r.CreatedAt.Unix(),
	})
}

func emptyToNil(s *string) *string {
	if blank(s) {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}

func toResourceResponse(r *entity.InterviewResource) dto.ResourceResponse {
	tags := []string(r.Tags)
	if tags == nil {
		tags = []string{}
	}
	return dto.ResourceResponse{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Content:     r.Content,
		Type:        r.Type,
		Category:    r.Category,
		Difficulty:  r.Difficulty,
		Tags:        tags,
		URL:         r.URL,
		FileURL:     r.FileURL,
		FileName:    r.FileName,
		FileSize:    r.FileSize,
		Views:       r.Views,
		Downloads:   r.Downloads,
		Rating:      r.Rating,
		IsPremium:   r.IsPremium,
		IsPublic:    r.IsPublic,
		CreatedAt:   commonDto.FormatTime(r.CreatedAt),
		UpdatedAt:   commonDto.FormatTime(r.UpdatedAt),
	}
}
