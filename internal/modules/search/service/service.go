package service

import (
	"context"
	"encoding/json"
	"fmt"

	"anoa.com/studyhub/internal/modules/search/dto"
	"anoa.com/studyhub/pkg/apperror"
	"anoa.com/studyhub/pkg/content"
	"github.com/meilisearch/meilisearch-go"
	"go.uber.org/zap"
)

// Indexer keeps the search engine in step with content writes. Failures are
// logged and never returned to the writer.
type Indexer interface {
	Index(ctx context.Context, index string, doc dto.Document)
	Remove(ctx context.Context, index string, id string)
}

type SearchService interface {
	Indexer
	Search(ctx context.Context, query dto.SearchQuery) (*dto.SearchResponse, error)
}

type searchService struct {
	client meilisearch.ServiceManager
	log    *zap.Logger
}

// NewSearchService returns a service backed by client. A nil client yields a
// service that drops writes and reports searches as unavailable.
func NewSearchService(client meilisearch.ServiceManager, log *zap.Logger) SearchService {
	s := &searchService{client: client, log: log}
	if client != nil {
		s.initIndexes()
	}
	return s
}

func (s *searchService) initIndexes() {
	filterable := []any{"public", "category", "tags"}
	sortable := []string{"created_at"}

	for _, index := range dto.Indexes {
		if _, err := s.client.Index(index).UpdateFilterableAttributes(&filterable); err != nil {
			s.log.Warn("failed to update filterable attributes", zap.String("index", index), zap.Error(err))
		}
		if _, err := s.client.Index(index).UpdateSortableAttributes(&sortable); err != nil {
			s.log.Warn("failed to update sortable attributes", zap.String("index", index), zap.Error(err))
		}
	}
}

func (s *searchService) Index(ctx context.Context, index string, doc dto.Document) {
	if s.client == nil {
		return
	}

	doc.Content = content.PlainText(doc.Content)
	primaryKey := "id"
	task, err := s.client.Index(index).AddDocuments([]dto.Document{doc}, &primaryKey)
	if err != nil {
		s.log.Warn("failed to index document",
			zap.String("index", index),
			zap.String("id", doc.ID),
			zap.Error(err))
		return
	}
	s.log.Debug("document queued for indexing",
		zap.String("index", index),
		zap.String("id", doc.ID),
		zap.Int64("task_uid", task.TaskUID))
}

func (s *searchService) Remove(ctx context.Context, index string, id string) {
	if s.client == nil {
		return
	}

	if _, err := s.client.Index(index).DeleteDocument(id); err != nil {
		s.log.Warn("failed to remove document",
			zap.String("index", index),
			zap.String("id", id),
			zap.Error(err))
	}
}

type rawHits struct {
	Hits []dto.Document `json:"hits"`
}

func (s *searchService) Search(ctx context.Context, query dto.SearchQuery) (*dto.SearchResponse, error) {
	if s.client == nil {
		return nil, fmt.Errorf("search is not configured: %w", apperror.ErrUnavailable)
	}

	limit := query.Limit
	if limit <= 0 {
		limit = 10
	}

	indexes := dto.Indexes
	if query.Index != "" {
		indexes = []string{query.Index}
	}

	resp := &dto.SearchResponse{Query: query.Q, Hits: []dto.SearchHit{}}
	for _, index := range indexes {
		raw, err := s.client.Index(index).SearchRaw(query.Q, &meilisearch.SearchRequest{
			Limit:  int64(limit),
			Filter: "public = true",
		})
		if err != nil {
			return nil, fmt.Errorf("search %s: %v: %w", index, err, apperror.ErrUnavailable)
		}

		var decoded rawHits
		if err := json.Unmarshal(*raw, &decoded); err != nil {
			return nil, fmt.Errorf("decode %s hits: %w", index, err)
		}

		for _, doc := range decoded.Hits {
			resp.Hits = append(resp.Hits, dto.SearchHit{
				Index:    index,
				ID:       doc.ID,
				Title:    doc.Title,
				Excerpt:  content.Excerpt(doc.Content),
				Category: doc.Category,
				Tags:     doc.Tags,
			})
		}
	}

	return resp, nil
}
