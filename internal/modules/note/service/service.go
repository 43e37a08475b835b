package service

import (
	"context"
	"fmt"
	"strings"

	"anoa.com/studyhub/internal/entity"
	"anoa.com/studyhub/internal/modules/note/dto"
	"anoa.com/studyhub/internal/modules/note/repository"
	searchDto "anoa.com/studyhub/internal/modules/search/dto"
	search "anoa.com/studyhub/internal/modules/search/service"
	"anoa.com/studyhub/pkg/apperror"
	"anoa.com/studyhub/pkg/content"
	"anoa.com/studyhub/pkg/database"
	commonDto "anoa.com/studyhub/pkg/dto"
	"github.com/google/uuid"
)

var noteSorts = []string{commonDto.SortNewest, commonDto.SortOldest, commonDto.SortAlphabetical}

type PlacementResolver interface {
	ResolvePlacement(ctx context.Context, topicID, subTopicID *uuid.UUID) (*uuid.UUID, *uuid.UUID, error)
}

type NoteService interface {
	ListNotes(ctx context.Context, filter commonDto.ListFilter) (*commonDto.Paginated[dto.NoteResponse], error)
	GetNote(ctx context.Context, id uuid.UUID) (*dto.NoteResponse, error)
	CreateNote(ctx context.Context, authorID uuid.UUID, req dto.CreateNoteRequest) (*dto.NoteResponse, error)
	UpdateNote(ctx context.Context, viewer *commonDto.Viewer, id uuid.UUID, req dto.UpdateNoteRequest) (*dto.NoteResponse, error)
	DeleteNote(ctx context.Context, viewer *commonDto.Viewer, id uuid.UUID) error
	CountNotes(ctx context.Context) (int64, error)
}

type noteService struct {
	repo      repository.NoteRepository
	placement PlacementResolver
	indexer   search.Indexer
}

func NewNoteService(repo repository.NoteRepository, placement PlacementResolver, indexer search.Indexer) NoteService {
	return &noteService{repo: repo, placement: placement, indexer: indexer}
}

func (s *noteService) ListNotes(ctx context.Context, filter commonDto.ListFilter) (*commonDto.Paginated[dto.NoteResponse], error) {
	filter.Normalize()
	order, err := commonDto.OrderClause(filter.Sort, noteSorts...)
	if err != nil {
		return nil, err
	}

	notes, total, err := s.repo.FindAll(ctx, filter, order)
	if err != nil {
		return nil, err
	}

	data := make([]dto.NoteResponse, 0, len(notes))
	for _, n := range notes {
		data = append(data, toNoteResponse(n))
	}

	return &commonDto.Paginated[dto.NoteResponse]{
		Data: data,
		Meta: commonDto.NewPaginationMeta(filter.Page, filter.Limit, total),
	}, nil
}

func (s *noteService) find(ctx context.Context, id uuid.UUID) (*entity.Note, error) {
	note, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, fmt.Errorf("note not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}
	return note, nil
}

func (s *noteService) GetNote(ctx context.Context, id uuid.UUID) (*dto.NoteResponse, error) {
	note, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toNoteResponse(note)
	return &resp, nil
}

func (s *noteService) CreateNote(ctx context.Context, authorID uuid.UUID, req dto.CreateNoteRequest) (*dto.NoteResponse, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" || strings.TrimSpace(req.Content) == "" {
		return nil, fmt.Errorf("title and content are required: %w", apperror.ErrInvalidInput)
	}

	topicID, subTopicID, err := s.placement.ResolvePlacement(ctx, req.TopicID, req.SubTopicID)
	if err != nil {
		return nil, err
	}

	note := &entity.Note{
		Title:      title,
		Content:    req.Content,
		Category:   strings.TrimSpace(req.Category),
		Tags:       content.NormalizeTags(req.Tags),
		ReadTime:   content.ReadTime(req.Content),
		AuthorID:   authorID,
		TopicID:    topicID,
		SubTopicID: subTopicID,
	}

	if err := s.repo.Create(ctx, note); err != nil {
		return nil, err
	}

	created, err := s.find(ctx, note.ID)
	if err != nil {
		return nil, err
	}
	s.index(ctx, created)

	resp := toNoteResponse(created)
	return &resp, nil
}

func (s *noteService) UpdateNote(ctx context.Context, viewer *commonDto.Viewer, id uuid.UUID, req dto.UpdateNoteRequest) (*dto.NoteResponse, error) {
	note, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !viewer.CanModify(note.AuthorID) {
		return nil, fmt.Errorf("only the author or an admin can edit this note: %w", apperror.ErrForbidden)
	}

	if req.Title != nil {
		note.Title = strings.TrimSpace(*req.Title)
		if note.Title == "" {
			return nil, fmt.Errorf("title is required: %w", apperror.ErrInvalidInput)
		}
	}
	if req.Content != nil {
		if strings.TrimSpace(*req.Content) == "" {
			return nil, fmt.Errorf("content is required: %w", apperror.ErrInvalidInput)
		}
		note.Content = *req.Content
		note.ReadTime = content.ReadTime(note.Content)
	}
	if req.Category != nil {
		note.Category = strings.TrimSpace(*req.Category)
	}
	if req.Tags != nil {
		note.Tags = content.NormalizeTags(*req.Tags)
	}
	switch {
	case req.ClearPlacement:
		if req.TopicID != nil || req.SubTopicID != nil {
			return nil, apperror.Validation("clear_placement cannot be combined with topic_id or sub_topic_id")
		}
		note.TopicID, note.SubTopicID = nil, nil
	case req.TopicID != nil || req.SubTopicID != nil:
		topicID, subTopicID, err := s.placement.ResolvePlacement(ctx, req.TopicID, req.SubTopicID)
		if err != nil {
			return nil, err
		}
		note.TopicID, note.SubTopicID = topicID, subTopicID
	}

	if err := s.repo.Update(ctx, note); err != nil {
		return nil, err
	}
	s.index(ctx, note)

	resp := toNoteResponse(note)
	return &resp, nil
}

func (s *noteService) DeleteNote(ctx context.Context, viewer *commonDto.Viewer, id uuid.UUID) error {
	note, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if !viewer.CanModify(note.AuthorID) {
		return fmt.Errorf("only the author or an admin can delete this note: %w", apperror.ErrForbidden)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if database.IsNotFound(err) {
			return fmt.Errorf("note not found: %w", apperror.ErrNotFound)
		}
		return err
	}

	if s.indexer != nil {
		s.indexer.Remove(ctx, searchDto.IndexNotes, id.String())
	}
	return nil
}

func (s *noteService) CountNotes(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}

func (s *noteService) index(ctx context.Context, note *entity.Note) {
	if s.indexer == nil {
		return
	}
	s.indexer.Index(ctx, searchDto.IndexNotes, searchDto.Document{
		ID:        note.ID.String(),
		Title:     note.Title,
		Content:   note.Content,
		Category:  note.Category,
		Tags:      note.Tags,
		Public:    true,
		CreatedAt: note.CreatedAt.Unix(),
	})
}

func toNoteResponse(n *entity.Note) dto.NoteResponse {
	tags := []string(n.Tags)
	if tags == nil {
		tags = []string{}
	}
	return dto.NoteResponse{
		ID:         n.ID,
		Title:      n.Title,
		Content:    n.Content,
		Category:   n.Category,
		Tags:       tags,
		ReadTime:   n.ReadTime,
		Author:     commonDto.AuthorResponse{ID: n.Author.ID, Name: n.Author.Name},
		TopicID:    n.TopicID,
		SubTopicID: n.SubTopicID,
		CreatedAt:  commonDto.FormatTime(n.CreatedAt),
		UpdatedAt:  commonDto.FormatTime(n.UpdatedAt),
	}
}
