package service

import (
	"context"
	"fmt"
	"strings"

	"anoa.com/studyhub/internal/entity"
	"anoa.com/studyhub/internal/modules/problem/dto"
	"anoa.com/studyhub/internal/modules/problem/repository"
	searchDto "anoa.com/studyhub/internal/modules/search/dto"
	search "anoa.com/studyhub/internal/modules/search/service"
	"anoa.com/studyhub/pkg/apperror"
	"anoa.com/studyhub/pkg/content"
	"anoa.com/studyhub/pkg/database"
	commonDto "anoa.com/studyhub/pkg/dto"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var problemSorts = []string{commonDto.SortNewest, commonDto.SortOldest, commonDto.SortAlphabetical}

type PlacementResolver interface {
	ResolvePlacement(ctx context.Context, topicID, subTopicID *uuid.UUID) (*uuid.UUID, *uuid.UUID, error)
}

type ProblemService interface {
	ListProblems(ctx context.Context, filter commonDto.ListFilter) (*commonDto.Paginated[dto.ProblemResponse], error)
	GetProblem(ctx context.Context, id uuid.UUID) (*dto.ProblemResponse, error)
	CreateProblem(ctx context.Context, req dto.CreateProblemRequest) (*dto.ProblemResponse, error)
	UpdateProblem(ctx context.Context, id uuid.UUID, req dto.UpdateProblemRequest) (*dto.ProblemResponse, error)
	DeleteProblem(ctx context.Context, id uuid.UUID) error
	BulkImport(ctx context.Context, req dto.BulkImportRequest) (*dto.BulkImportResult, error)
	CountProblems(ctx context.Context) (int64, error)
}

type Options struct {
	// ExclusiveOptimal allows at most one solution per problem to be
	// flagged optimal.
	ExclusiveOptimal bool
}

type problemService struct {
	repo      repository.ProblemRepository
	placement PlacementResolver
	indexer   search.Indexer
	opts      Options
	log       *zap.Logger
}

func NewProblemService(repo repository.ProblemRepository, placement PlacementResolver, indexer search.Indexer, opts Options, log *zap.Logger) ProblemService {
	return &problemService{
		repo:      repo,
		placement: placement,
		indexer:   indexer,
		opts:      opts,
		log:       log,
	}
}

func normalizeDifficulty(d string) (string, error) {
	d = strings.ToUpper(strings.TrimSpace(d))
	switch d {
	case entity.DifficultyEasy, entity.DifficultyMedium, entity.DifficultyHard:
		return d, nil
	}
	return "", apperror.Validation("difficulty must be one of EASY, MEDIUM, HARD")
}

func (s *problemService) ListProblems(ctx context.Context, filter commonDto.ListFilter) (*commonDto.Paginated[dto.ProblemResponse], error) {
	filter.Normalize()
	order, err := commonDto.OrderClause(filter.Sort, problemSorts...)
	if err != nil {
		return nil, err
	}
	if filter.Difficulty != "" {
		if filter.Difficulty, err = normalizeDifficulty(filter.Difficulty); err != nil {
			return nil, err
		}
	}

	problems, total, err := s.repo.FindAll(ctx, filter, order)
	if err != nil {
		return nil, err
	}

	data := make([]dto.ProblemResponse, 0, len(problems))
	for _, p := range problems {
		data = append(data, toProblemResponse(p))
	}

	return &commonDto.Paginated[dto.ProblemResponse]{
		Data: data,
		Meta: commonDto.NewPaginationMeta(filter.Page, filter.Limit, total),
	}, nil
}

func (s *problemService) find(ctx context.Context, id uuid.UUID) (*entity.LeetcodeProblem, error) {
	problem, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, fmt.Errorf("problem not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}
	return problem, nil
}

func (s *problemService) GetProblem(ctx context.Context, id uuid.UUID) (*dto.ProblemResponse, error) {
	problem, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toProblemResponse(problem)
	return &resp, nil
}

func (s *problemService) buildSolutions(inputs []dto.SolutionInput) ([]entity.Solution, error) {
	optimal := 0
	solutions := make([]entity.Solution, 0, len(inputs))
	for i, in := range inputs {
		if strings.TrimSpace(in.Code) == "" || strings.TrimSpace(in.Language) == "" {
			return nil, apperror.Validation(fmt.Sprintf("solution %d needs a language and code", i+1))
		}
		if in.IsOptimal {
			optimal++
		}
		solutions = append(solutions, entity.Solution{
			Position:        i,
			Language:        strings.TrimSpace(in.Language),
			Code:            in.Code,
			Approach:        in.Approach,
			TimeComplexity:  in.TimeComplexity,
			SpaceComplexity: in.SpaceComplexity,
			Explanation:     in.Explanation,
			Notes:           in.Notes,
			IsOptimal:       in.IsOptimal,
		})
	}
	if s.opts.ExclusiveOptimal && optimal > 1 {
		return nil, apperror.Validation("only one solution can be marked optimal")
	}
	return solutions, nil
}

func buildResources(inputs []dto.ResourceInput) ([]entity.ProblemResource, error) {
	resources := make([]entity.ProblemResource, 0, len(inputs))
	for i, in := range inputs {
		switch in.Type {
		case entity.ProblemResourceArticle, entity.ProblemResourceVideo, entity.ProblemResourceDocumentation,
			entity.ProblemResourceDiscussion, entity.ProblemResourceOther:
		default:
			return nil, apperror.Validation(fmt.Sprintf("resource %d has unknown type %q", i+1, in.Type))
		}
		if strings.TrimSpace(in.URL) == "" {
			return nil, apperror.Validation(fmt.Sprintf("resource %d needs a url", i+1))
		}
		resources = append(resources, entity.ProblemResource{
			Position:    i,
			Title:       strings.TrimSpace(in.Title),
			Type:        in.Type,
			URL:         strings.TrimSpace(in.URL),
			Description: in.Description,
		})
	}
	return resources, nil
}

// newProblem validates req and builds the entity without persisting it.
func (s *problemService) newProblem(ctx context.Context, req dto.CreateProblemRequest) (*entity.LeetcodeProblem, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, apperror.Validation("title is required")
	}
	difficulty, err := normalizeDifficulty(req.Difficulty)
	if err != nil {
		return nil, err
	}
	if req.Acceptance < 0 || req.Acceptance > 100 {
		return nil, apperror.Validation("acceptance must be between 0 and 100")
	}

	solutions, err := s.buildSolutions(req.Solutions)
	if err != nil {
		return nil, err
	}
	resources, err := buildResources(req.Resources)
	if err != nil {
		return nil, err
	}

	topicID, subTopicID, err := s.placement.ResolvePlacement(ctx, req.TopicID, req.SubTopicID)
	if err != nil {
		return nil, err
	}

	return &entity.LeetcodeProblem{
		Title:         title,
		Description:   req.Description,
		Difficulty:    difficulty,
		Category:      strings.TrimSpace(req.Category),
		Tags:          content.NormalizeTags(req.Tags),
		Companies:     content.NormalizeTags(req.Companies),
		Hints:         req.Hints,
		Examples:      req.Examples,
		FollowUp:      req.FollowUp,
		LeetcodeURL:   strings.TrimSpace(req.LeetcodeURL),
		ProblemNumber: req.ProblemNumber,
		IsPremium:     req.IsPremium,
		Acceptance:    req.Acceptance,
		TopicID:       topicID,
		SubTopicID:    subTopicID,
		Solutions:     solutions,
		Resources:     resources,
	}, nil
}

func (s *problemService) CreateProblem(ctx context.Context, req dto.CreateProblemRequest) (*dto.ProblemResponse, error) {
	problem, err := s.newProblem(ctx, req)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, problem); err != nil {
		if database.IsDuplicate(err) {
			return nil, fmt.Errorf("problem number %d already exists: %w", derefInt(problem.ProblemNumber), apperror.ErrConflict)
		}
		return nil, err
	}
	s.index(ctx, problem)

	resp := toProblemResponse(problem)
	return &resp, nil
}

func (s *problemService) UpdateProblem(ctx context.Context, id uuid.UUID, req dto.UpdateProblemRequest) (*dto.ProblemResponse, error) {
	problem, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		problem.Title = strings.TrimSpace(*req.Title)
		if problem.Title == "" {
			return nil, apperror.Validation("title is required")
		}
	}
	if req.Description != nil {
		problem.Description = *req.Description
	}
	if req.Difficulty != nil {
		if problem.Difficulty, err = normalizeDifficulty(*req.Difficulty); err != nil {
			return nil, err
		}
	}
	if req.Category != nil {
		problem.Category = strings.TrimSpace(*req.Category)
	}
	if req.Tags != nil {
		problem.Tags = content.NormalizeTags(*req.Tags)
	}
	if req.Companies != nil {
		problem.Companies = content.NormalizeTags(*req.Companies)
	}
	if req.Hints != nil {
		problem.Hints = *req.Hints
	}
	if req.Examples != nil {
		problem.Examples = *req.Examples
	}
	if req.FollowUp != nil {
		problem.FollowUp = *req.FollowUp
	}
	if req.LeetcodeURL != nil {
		problem.LeetcodeURL = strings.TrimSpace(*req.LeetcodeURL)
	}
	if req.ProblemNumber != nil {
		problem.ProblemNumber = req.ProblemNumber
	}
	if req.IsPremium != nil {
		problem.IsPremium = *req.IsPremium
	}
	if req.Acceptance != nil {
		if *req.Acceptance < 0 || *req.Acceptance > 100 {
			return nil, apperror.Validation("acceptance must be between 0 and 100")
		}
		problem.Acceptance = *req.Acceptance
	}
	switch {
	case req.ClearPlacement:
		if req.TopicID != nil || req.SubTopicID != nil {
			return nil, apperror.Validation("clear_placement cannot be combined with topic_id or sub_topic_id")
		}
		problem.TopicID, problem.SubTopicID = nil, nil
	case req.TopicID != nil || req.SubTopicID != nil:
		topicID, subTopicID, err := s.placement.ResolvePlacement(ctx, req.TopicID, req.SubTopicID)
		if err != nil {
			return nil, err
		}
		problem.TopicID, problem.SubTopicID = topicID, subTopicID
	}

	replaceSolutions := req.Solutions != nil
	if replaceSolutions {
		if problem.Solutions, err = s.buildSolutions(*req.Solutions); err != nil {
			return nil, err
		}
	}
	replaceResources := req.Resources != nil
	if replaceResources {
		if problem.Resources, err = buildResources(*req.Resources); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Update(ctx, problem, replaceSolutions, replaceResources); err != nil {
		if database.IsDuplicate(err) {
			return nil, fmt.Errorf("problem number %d already exists: %w", derefInt(problem.ProblemNumber), apperror.ErrConflict)
		}
		return nil, err
	}
	s.index(ctx, problem)

	resp := toProblemResponse(problem)
	return &resp, nil
}

func (s *problemService) DeleteProblem(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if database.IsNotFound(err) {
			return fmt.Errorf("problem not found: %w", apperror.ErrNotFound)
		}
		return err
	}
	if s.indexer != nil {
		s.indexer.Remove(ctx, searchDto.IndexProblems, id.String())
	}
	return nil
}

// BulkImport creates each problem in its own transaction so one bad item
// never rolls back the others.
func (s *problemService) BulkImport(ctx context.Context, req dto.BulkImportRequest) (*dto.BulkImportResult, error) {
	result := &dto.BulkImportResult{
		Created: []dto.BulkImportItem{},
		Skipped: []dto.BulkImportItem{},
		Failed:  []dto.BulkImportItem{},
	}

	for i, item := range req.Problems {
		entry := dto.BulkImportItem{Index: i, Title: item.Title, ProblemNumber: item.ProblemNumber}

		if item.ProblemNumber != nil {
			exists, err := s.repo.ExistsByNumber(ctx, *item.ProblemNumber)
			if err != nil {
				return nil, err
			}
			if exists {
				entry.Reason = fmt.Sprintf("problem number %d already exists", *item.ProblemNumber)
				result.Skipped = append(result.Skipped, entry)
				continue
			}
		}

		problem, err := s.newProblem(ctx, item)
		if err != nil {
			entry.Reason = err.Error()
			result.Failed = append(result.Failed, entry)
			continue
		}

		if err := s.repo.Create(ctx, problem); err != nil {
			if database.IsDuplicate(err) {
				entry.Reason = fmt.Sprintf("problem number %d already exists", derefInt(item.ProblemNumber))
				result.Skipped = append(result.Skipped, entry)
				continue
			}
			s.log.Error("bulk import item failed", zap.Int("index", i), zap.String("title", item.Title), zap.Error(err))
			entry.Reason = "could not be stored"
			result.Failed = append(result.Failed, entry)
			continue
		}

		s.index(ctx, problem)
		id := problem.ID
		entry.ID = &id
		result.Created = append(result.Created, entry)
	}

	s.log.Info("bulk import finished",
		zap.Int("created", len(result.Created)),
		zap.Int("skipped", len(result.Skipped)),
		zap.Int("failed", len(result.Failed)))
	return result, nil
}

func (s *problemService) CountProblems(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}

func (s *problemService) index(ctx context.Context, p *entity.LeetcodeProblem) {
	if s.indexer == nil {
		return
	}
	s.indexer.Index(ctx, searchDto.IndexProblems, searchDto.Document{
		ID:        p.ID.String(),
		Title:     p.Title,
		Content:   p.Description,
		Category:  p.Category,
		Tags:      p.Tags,
		Public:    true,
		CreatedAt: p.CreatedAt.Unix(),
	})
}

func derefInt(n *int) int {
	if n == nil {
		return 0
	}
	return *n
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func toProblemResponse(p *entity.LeetcodeProblem) dto.ProblemResponse {
	examples := []entity.ProblemExample(p.Examples)
	if examples == nil {
		examples = []entity.ProblemExample{}
	}

	resp := dto.ProblemResponse{
		ID:            p.ID,
		Title:         p.Title,
		Description:   p.Description,
		Difficulty:    p.Difficulty,
		Category:      p.Category,
		Tags:          orEmpty(p.Tags),
		Companies:     orEmpty(p.Companies),
		Hints:         orEmpty(p.Hints),
		Examples:      examples,
		FollowUp:      p.FollowUp,
		LeetcodeURL:   p.LeetcodeURL,
		ProblemNumber: p.ProblemNumber,
		IsPremium:     p.IsPremium,
		Acceptance:    p.Acceptance,
		TopicID:       p.TopicID,
		SubTopicID:    p.SubTopicID,
		CreatedAt:     commonDto.FormatTime(p.CreatedAt),
		UpdatedAt:     commonDto.FormatTime(p.UpdatedAt),
		Solutions:     make([]dto.SolutionResponse, 0, len(p.Solutions)),
		Resources:     make([]dto.ResourceResponse, 0, len(p.Resources)),
	}

	for _, sol := range p.Solutions {
		resp.Solutions = append(resp.Solutions, dto.SolutionResponse{
			ID:              sol.ID,
			Language:        sol.Language,
			Code:            sol.Code,
			Approach:        sol.Approach,
			TimeComplexity:  sol.TimeComplexity,
			SpaceComplexity: sol.SpaceComplexity,
			Explanation:     sol.Explanation,
			Notes:           sol.Notes,
			IsOptimal:       sol.IsOptimal,
		})
	}
	for _, res := range p.Resources {
		resp.Resources = append(resp.Resources, dto.ResourceResponse{
			ID:          res.ID,
			Title:       res.Title,
			Type:        res.Type,
			URL:         res.URL,
			Description: res.Description,
		})
	}
	return resp
}
