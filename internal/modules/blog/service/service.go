package service

import (
	"context"
	"fmt"
	"strings"

	"anoa.com/studyhub/internal/entity"
	"anoa.com/studyhub/internal/modules/blog/dto"
	"anoa.com/studyhub/internal/modules/blog/repository"
	searchDto "anoa.com/studyhub/internal/modules/search/dto"
	search "anoa.com/studyhub/internal/modules/search/service"
	view "anoa.com/studyhub/internal/modules/view/service"
	"anoa.com/studyhub/pkg/apperror"
	"anoa.com/studyhub/pkg/content"
	"anoa.com/studyhub/pkg/database"
	commonDto "anoa.com/studyhub/pkg/dto"
	"anoa.com/studyhub/pkg/storage"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var blogSorts = []string{commonDto.SortNewest, commonDto.SortOldest, commonDto.SortMostViewed, commonDto.SortAlphabetical}

type PlacementResolver interface {
	ResolvePlacement(ctx context.Context, topicID, subTopicID *uuid.UUID) (*uuid.UUID, *uuid.UUID, error)
}

type BlogService interface {
	ListBlogs(ctx context.Context, viewer *commonDto.Viewer, filter commonDto.ListFilter) (*commonDto.Paginated[dto.BlogResponse], error)
	GetBlog(ctx context.Context, id uuid.UUID, viewer *commonDto.Viewer, clientKey string) (*dto.BlogResponse, error)
	CreateBlog(ctx context.Context, authorID uuid.UUID, req dto.CreateBlogRequest) (*dto.BlogResponse, error)
	UpdateBlog(ctx context.Context, viewer *commonDto.Viewer, id uuid.UUID, req dto.UpdateBlogRequest) (*dto.BlogResponse, error)
	DeleteBlog(ctx context.Context, viewer *commonDto.Viewer, id uuid.UUID) error
	CountPublished(ctx context.Context) (int64, error)
}

type blogService struct {
	repo      repository.BlogRepository
	placement PlacementResolver
	views     view.ViewService
	indexer   search.Indexer
	storage   storage.FileStorage
	log       *zap.Logger
}

func NewBlogService(repo repository.BlogRepository, placement PlacementResolver, views view.ViewService, indexer search.Indexer, fileStorage storage.FileStorage, log *zap.Logger) BlogService {
	return &blogService{
		repo:      repo,
		placement: placement,
		views:     views,
		indexer:   indexer,
		storage:   fileStorage,
		log:       log,
	}
}

func (s *blogService) ListBlogs(ctx context.Context, viewer *commonDto.Viewer, filter commonDto.ListFilter) (*commonDto.Paginated[dto.BlogResponse], error) {
	filter.Normalize()
	order, err := commonDto.OrderClause(filter.Sort, blogSorts...)
	if err != nil {
		return nil, err
	}

	blogs, total, err := s.repo.FindAll(ctx, filter, order, viewer)
	if err != nil {
		return nil, err
	}

	data := make([]dto.BlogResponse, 0, len(blogs))
	for _, b := range blogs {
		resp := toBlogResponse(b)
		resp.Content = ""
		data = append(data, resp)
	}

	return &commonDto.Paginated[dto.BlogResponse]{
		Data: data,
		Meta: commonDto.NewPaginationMeta(filter.Page, filter.Limit, total),
	}, nil
}

// findVisible hides drafts from everyone but their author and admins.
func (s *blogService) findVisible(ctx context.Context, id uuid.UUID, viewer *commonDto.Viewer) (*entity.Blog, error) {
	blog, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, fmt.Errorf("blog not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}
	if !blog.Published && !viewer.CanModify(blog.AuthorID) {
		return nil, fmt.Errorf("blog not found: %w", apperror.ErrNotFound)
	}
	return blog, nil
}

func (s *blogService) GetBlog(ctx context.Context, id uuid.UUID, viewer *commonDto.Viewer, clientKey string) (*dto.BlogResponse, error) {
	blog, err := s.findVisible(ctx, id, viewer)
	if err != nil {
		return nil, err
	}

	if s.views != nil && s.views.Register(ctx, view.KindBlog, blog.ID, viewer.Key(clientKey)) {
		if err := s.repo.IncrementViews(ctx, blog.ID); err != nil {
			s.log.Warn("failed to increment blog views", zap.String("blog_id", blog.ID.String()), zap.Error(err))
		} else {
			blog.Views++
		}
	}

	resp := toBlogResponse(blog)
	return &resp, nil
}

func (s *blogService) CreateBlog(ctx context.Context, authorID uuid.UUID, req dto.CreateBlogRequest) (*dto.BlogResponse, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, fmt.Errorf("title is required: %w", apperror.ErrInvalidInput)
	}
	if strings.TrimSpace(req.Content) == "" {
		return nil, fmt.Errorf("content is required: %w", apperror.ErrInvalidInput)
	}

	topicID, subTopicID, err := s.placement.ResolvePlacement(ctx, req.TopicID, req.SubTopicID)
	if err != nil {
		return nil, err
	}

	blog := &entity.Blog{
		Title:      title,
		Content:    req.Content,
		Excerpt:    strings.TrimSpace(req.Excerpt),
		Published:  req.Published,
		Category:   strings.TrimSpace(req.Category),
		Tags:       content.NormalizeTags(req.Tags),
		CoverImage: req.CoverImage,
		ReadTime:   content.ReadTime(req.Content),
		AuthorID:   authorID,
		TopicID:    topicID,
		SubTopicID: subTopicID,
	}
	if blog.Excerpt == "" {
		blog.Excerpt = content.Excerpt(blog.Content)
	}

	if err := s.repo.Create(ctx, blog); err != nil {
		return nil, err
	}

	created, err := s.repo.FindByID(ctx, blog.ID)
	if err != nil {
		return nil, err
	}
	s.index(ctx, created)

	resp := toBlogResponse(created)
	return &resp, nil
}

func (s *blogService) UpdateBlog(ctx context.Context, viewer *commonDto.Viewer, id uuid.UUID, req dto.UpdateBlogRequest) (*dto.BlogResponse, error) {
	blog, err := s.findVisible(ctx, id, viewer)
	if err != nil {
		return nil, err
	}
	if !viewer.CanModify(blog.AuthorID) {
		return nil, fmt.Errorf("only the author or an admin can edit this blog: %w", apperror.ErrForbidden)
	}

	if req.Title != nil {
		blog.Title = strings.TrimSpace(*req.Title)
		if blog.Title == "" {
			return nil, fmt.Errorf("title is required: %w", apperror.ErrInvalidInput)
		}
	}
	contentChanged := false
	if req.Content != nil && *req.Content != blog.Content {
		if strings.TrimSpace(*req.Content) == "" {
			return nil, fmt.Errorf("content is required: %w", apperror.ErrInvalidInput)
		}
		blog.Content = *req.Content
		blog.ReadTime = content.ReadTime(blog.Content)
		contentChanged = true
	}
	if req.Excerpt != nil {
		blog.Excerpt = strings.TrimSpace(*req.Excerpt)
	}
	if blog.Excerpt == "" || (contentChanged && req.Excerpt == nil) {
		blog.Excerpt = content.Excerpt(blog.Content)
	}
	if req.Published != nil {
		blog.Published = *req.Published
	}
	if req.Category != nil {
		blog.Category = strings.TrimSpace(*req.Category)
	}
	if req.Tags != nil {
		blog.Tags = content.NormalizeTags(*req.Tags)
	}

	var replacedCover string
	if req.CoverImage != nil {
		if blog.CoverImage != nil && *blog.CoverImage != *req.CoverImage {
			replacedCover = *blog.CoverImage
		}
		blog.CoverImage = req.CoverImage
	}

	switch {
	case req.ClearPlacement:
		if req.TopicID != nil || req.SubTopicID != nil {
			return nil, apperror.Validation("clear_placement cannot be combined with topic_id or sub_topic_id")
		}
		blog.TopicID, blog.SubTopicID = nil, nil
	case req.TopicID != nil || req.SubTopicID != nil:
		topicID, subTopicID, err := s.placement.ResolvePlacement(ctx, req.TopicID, req.SubTopicID)
		if err != nil {
			return nil, err
		}
		blog.TopicID, blog.SubTopicID = topicID, subTopicID
	}

	if err := s.repo.Update(ctx, blog); err != nil {
		return nil, err
	}

	if replacedCover != "" && s.storage != nil {
		if err := s.storage.Delete(ctx, replacedCover); err != nil {
			s.log.Warn("failed to delete replaced cover image", zap.String("url", replacedCover), zap.Error(err))
		}
	}
	s.index(ctx, blog)

	resp := toBlogResponse(blog)
	return &resp, nil
}

func (s *blogService) DeleteBlog(ctx context.Context, viewer *commonDto.Viewer, id uuid.UUID) error {
	blog, err := s.findVisible(ctx, id, viewer)
	if err != nil {
		return err
	}
	if !viewer.CanModify(blog.AuthorID) {
		return fmt.Errorf("only the author or an admin can delete this blog: %w", apperror.ErrForbidden)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if database.IsNotFound(err) {
			return fmt.Errorf("blog not found: %w", apperror.ErrNotFound)
		}
		return err
	}

	if s.indexer != nil {
		s.indexer.Remove(ctx, searchDto.IndexBlogs, id.String())
	}
	return nil
}

func (s *blogService) CountPublished(ctx context.Context) (int64, error) {
	return s.repo.CountPublished(ctx)
}

func (s *blogService) index(ctx context.Context, blog *entity.Blog) {
	if s.indexer == nil {
		return
	}
	s.indexer.Index(ctx, searchDto.IndexBlogs, searchDto.Document{
		ID:        blog.ID.String(),
		Title:     blog.Title,
		Content:   blog.Content,
		Category:  blog.Category,
		Tags:      blog.Tags,
		Public:    blog.Published,
		CreatedAt: blog.CreatedAt.Unix(),
	})
}

func toBlogResponse(b *entity.Blog) dto.BlogResponse {
	tags := []string(b.Tags)
	if tags == nil {
		tags = []string{}
	}
	return dto.BlogResponse{
		ID:         b.ID,
		Title:      b.Title,
		Content:    b.Content,
		Excerpt:    b.Excerpt,
		Published:  b.Published,
		Category:   b.Category,
		Tags:       tags,
		CoverImage: b.CoverImage,
		ReadTime:   b.ReadTime,
		Views:      b.Views,
		Author:     commonDto.AuthorResponse{ID: b.Author.ID, Name: b.Author.Name},
		TopicID:    b.TopicID,
		SubTopicID: b.SubTopicID,
		CreatedAt:  commonDto.FormatTime(b.CreatedAt),
		UpdatedAt:  commonDto.FormatTime(b.UpdatedAt),
	}
}
