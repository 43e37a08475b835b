package service

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"testing"

	"anoa.com/studyhub/internal/entity"
	"anoa.com/studyhub/internal/modules/problem/dto"
	"anoa.com/studyhub/pkg/apperror"
	commonDto "anoa.com/studyhub/pkg/dto"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fakeProblemRepo struct {
	problems map[uuid.UUID]*entity.LeetcodeProblem
}

func newFakeProblemRepo() *fakeProblemRepo {
	return &fakeProblemRepo{problems: map[uuid.UUID]*entity.LeetcodeProblem{}}
}

func (f *fakeProblemRepo) numberTaken(n *int, except uuid.UUID) bool {
	if n == nil {
		return false
	}
	for id, p := range f.problems {
		if id != except && p.ProblemNumber != nil && *p.ProblemNumber == *n {
			return true
		}
	}
	return false
}

func clone(p *entity.LeetcodeProblem) *entity.LeetcodeProblem {
	cp := *p
	cp.Solutions = append([]entity.Solution(nil), p.Solutions...)
	cp.Resources = append([]entity.ProblemResource(nil), p.Resources...)
	return &cp
}

func (f *fakeProblemRepo) Create(ctx context.Context, p *entity.LeetcodeProblem) error {
	if f.numberTaken(p.ProblemNumber, uuid.Nil) {
		return gorm.ErrDuplicatedKey
	}
	p.ID = uuid.New()
	for i := range p.Solutions {
		p.Solutions[i].ID = uuid.New()
		p.Solutions[i].ProblemID = p.ID
	}
	for i := range p.Resources {
		p.Resources[i].ID = uuid.New()
		p.Resources[i].ProblemID = p.ID
	}
	f.problems[p.ID] = clone(p)
	return nil
}

func (f *fakeProblemRepo) Update(ctx context.Context, p *entity.LeetcodeProblem, replaceSolutions, replaceResources bool) error {
	if f.numberTaken(p.ProblemNumber, p.ID) {
		return gorm.ErrDuplicatedKey
	}
	stored := f.problems[p.ID]
	next := clone(p)
	if !replaceSolutions {
		next.Solutions = stored.Solutions
	}
	if !replaceResources {
		next.Resources = stored.Resources
	}
	f.problems[p.ID] = next
	return nil
}

func (f *fakeProblemRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.LeetcodeProblem, error) {
	p, ok := f.problems[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := clone(p)
	sort.Slice(cp.Solutions, func(i, j int) bool { return cp.Solutions[i].Position < cp.Solutions[j].Position })
	return cp, nil
}

func (f *fakeProblemRepo) FindAll(ctx context.Context, filter commonDto.ListFilter, order string) ([]*entity.LeetcodeProblem, int64, error) {
	var out []*entity.LeetcodeProblem
	for _, p := range f.problems {
		if filter.Difficulty == "" || p.Difficulty == filter.Difficulty {
			out = append(out, clone(p))
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeProblemRepo) ExistsByNumber(ctx context.Context, number int) (bool, error) {
	return f.numberTaken(&number, uuid.Nil), nil
}

func (f *fakeProblemRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := f.problems[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.problems, id)
	return nil
}

func (f *fakeProblemRepo) Count(ctx context.Context) (int64, error) {
	return int64(len(f.problems)), nil
}

type noPlacement struct{}

func (noPlacement) ResolvePlacement(ctx context.Context, topicID, subTopicID *uuid.UUID) (*uuid.UUID, *uuid.UUID, error) {
	return topicID, subTopicID, nil
}

func newService(repo *fakeProblemRepo, exclusive bool) ProblemService {
	return NewProblemService(repo, noPlacement{}, nil, Options{ExclusiveOptimal: exclusive}, zap.NewNop())
}

func intPtr(n int) *int { return &n }

func twoSum() dto.CreateProblemRequest {
	return dto.CreateProblemRequest{
		Title:         "Two Sum",
		Difficulty:    "easy",
		ProblemNumber: intPtr(1),
		Examples:      []entity.ProblemExample{{Input: "[2,7,11,15], 9", Output: "[0,1]"}},
		Solutions: []dto.SolutionInput{
			{Language: "go", Code: "// brute force", TimeComplexity: "O(n^2)"},
			{Language: "go", Code: "// hash map", TimeComplexity: "O(n)", IsOptimal: true},
		},
		Resources: []dto.ResourceInput{
			{Title: "Editorial", Type: entity.ProblemResourceArticle, URL: "https://leetcode.com/problems/two-sum/editorial/"},
		},
	}
}

func TestProblemRoundTripKeepsOrder(t *testing.T) {
	svc := newService(newFakeProblemRepo(), false)
	ctx := context.Background()

	created, err := svc.CreateProblem(ctx, twoSum())
	require.NoError(t, err)
	assert.Equal(t, entity.DifficultyEasy, created.Difficulty)

	got, err := svc.GetProblem(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, got.Solutions, 2)
	assert.Equal(t, "// brute force", got.Solutions[0].Code)
	assert.Equal(t, "// hash map", got.Solutions[1].Code)
	assert.True(t, got.Solutions[1].IsOptimal)
	require.Len(t, got.Resources, 1)
	assert.Equal(t, "Editorial", got.Resources[0].Title)
	assert.Equal(t, "[0,1]", got.Examples[0].Output)
}

func TestOptimalSolutionPolicy(t *testing.T) {
	req := twoSum()
	req.Solutions[0].IsOptimal = true

	_, err := newService(newFakeProblemRepo(), false).CreateProblem(context.Background(), req)
	assert.NoError(t, err)

	_, err = newService(newFakeProblemRepo(), true).CreateProblem(context.Background(), req)
	assert.True(t, errors.Is(err, apperror.ErrInvalidInput))
}

func TestCreateProblemValidation(t *testing.T) {
	svc := newService(newFakeProblemRepo(), false)
	ctx := context.Background()

	bad := twoSum()
	bad.Difficulty = "impossible"
	_, err := svc.CreateProblem(ctx, bad)
	assert.True(t, errors.Is(err, apperror.ErrInvalidInput))

	bad = twoSum()
	bad.Resources[0].Type = "podcast"
	_, err = svc.CreateProblem(ctx, bad)
	assert.True(t, errors.Is(err, apperror.ErrInvalidInput))

	_, err = svc.CreateProblem(ctx, twoSum())
	require.NoError(t, err)
	_, err = svc.CreateProblem(ctx, twoSum())
	assert.True(t, errors.Is(err, apperror.ErrConflict))
}

func TestUpdateProblemReplacesChildren(t *testing.T) {
	repo := newFakeProblemRepo()
	svc := newService(repo, false)
	ctx := context.Background()

	created, err := svc.CreateProblem(ctx, twoSum())
	require.NoError(t, err)

	title := "Two Sum II"
	updated, err := svc.UpdateProblem(ctx, created.ID, dto.UpdateProblemRequest{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Two Sum II", updated.Title)

	got, err := svc.GetProblem(ctx, created.ID)
	require.NoError(t, err)
	assert.Len(t, got.Solutions, 2, "absent solutions keep the stored set")

	solutions := []dto.SolutionInput{{Language: "python", Code: "pass"}}
	_, err = svc.UpdateProblem(ctx, created.ID, dto.UpdateProblemRequest{Solutions: &solutions})
	require.NoError(t, err)

	got, err = svc.GetProblem(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, got.Solutions, 1)
	assert.Equal(t, "python", got.Solutions[0].Language)
	assert.Len(t, got.Resources, 1)

	_, err = svc.UpdateProblem(ctx, uuid.New(), dto.UpdateProblemRequest{Title: &title})
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}

func TestBulkImport(t *testing.T) {
	repo := newFakeProblemRepo()
	svc := newService(repo, false)
	ctx := context.Background()

	_, err := svc.CreateProblem(ctx, twoSum())
	require.NoError(t, err)

	invalid := twoSum()
	invalid.ProblemNumber = intPtr(3)
	invalid.Difficulty = ""

	result, err := svc.BulkImport(ctx, dto.BulkImportRequest{Problems: []dto.CreateProblemRequest{
		twoSum(),
		{Title: "Add Two Numbers", Difficulty: "MEDIUM", ProblemNumber: intPtr(2)},
		invalid,
		{Title: "Add Two Numbers again", Difficulty: "MEDIUM", ProblemNumber: intPtr(2)},
		{Title: "Unnumbered", Difficulty: "HARD"},
	}})
	require.NoError(t, err)

	require.Len(t, result.Created, 2)
	assert.Equal(t, 1, result.Created[0].Index)
	assert.NotNil(t, result.Created[0].ID)
	assert.Equal(t, 4, result.Created[1].Index)

	require.Len(t, result.Skipped, 2)
	assert.Equal(t, 0, result.Skipped[0].Index)
	assert.Equal(t, 3, result.Skipped[1].Index)

	require.Len(t, result.Failed, 1)
	assert.Equal(t, 2, result.Failed[0].Index)
	assert.NotEmpty(t, result.Failed[0].Reason)

	count, err := svc.CountProblems(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}

func TestListProblemsNormalizesDifficulty(t *testing.T) {
	svc := newService(newFakeProblemRepo(), false)
	ctx := context.Background()

	_, err := svc.CreateProblem(ctx, twoSum())
	require.NoError(t, err)

	page, err := svc.ListProblems(ctx, commonDto.ListFilter{Difficulty: "Easy"})
	require.NoError(t, err)
	assert.Len(t, page.Data, 1)

	_, err = svc.ListProblems(ctx, commonDto.ListFilter{Sort: commonDto.SortMostViewed})
	assert.True(t, errors.Is(err, apperror.ErrInvalidInput))
}

func TestUpdateProblemClearsPlacement(t *testing.T) {
	repo := newFakeProblemRepo()
	svc := newService(repo, false)
	ctx := context.Background()

	req := twoSum()
	topicID := uuid.New()
	req.TopicID = &topicID
	created, err := svc.CreateProblem(ctx, req)
	require.NoError(t, err)
	require.NotNil(t, created.TopicID)

	_, err = svc.UpdateProblem(ctx, created.ID, dto.UpdateProblemRequest{ClearPlacement: true, TopicID: &topicID})
	assert.True(t, errors.Is(err, apperror.ErrInvalidInput))

	updated, err := svc.UpdateProblem(ctx, created.ID, dto.UpdateProblemRequest{ClearPlacement: true})
	require.NoError(t, err)
	assert.Nil(t, updated.TopicID)
	assert.Nil(t, repo.problems[created.ID].TopicID)
}

func TestProblemResponseListsEmptyChildren(t *testing.T) {
	svc := newService(newFakeProblemRepo(), false)

	req := twoSum()
	req.Solutions = nil
	req.Resources = nil
	req.ProblemNumber = intPtr(2)
	created, err := svc.CreateProblem(context.Background(), req)
	require.NoError(t, err)

	body, err := json.Marshal(created)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"solutions":[]`)
	assert.Contains(t, string(body), `"resources":[]`)
}
