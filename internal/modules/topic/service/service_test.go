package topic

import (
	"context"
	"errors"
	"testing"

	"anoa.com/studyhub/internal/entity"
	"anoa.com/studyhub/internal/modules/topic/dto"
	"anoa.com/studyhub/pkg/apperror"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeTopicRepo struct {
	topics    map[uuid.UUID]*entity.Topic
	subTopics map[uuid.UUID]*entity.SubTopic
	counts    map[uuid.UUID]dto.ContentCounts
	deleted   map[uuid.UUID]bool
	cascaded  bool
}

func newFakeTopicRepo() *fakeTopicRepo {
	return &fakeTopicRepo{
		topics:    map[uuid.UUID]*entity.Topic{},
		subTopics: map[uuid.UUID]*entity.SubTopic{},
		counts:    map[uuid.UUID]dto.ContentCounts{},
		deleted:   map[uuid.UUID]bool{},
	}
}

func (f *fakeTopicRepo) withSubs(t *entity.Topic) *entity.Topic {
	cp := *t
	cp.SubTopics = nil
	for _, s := range f.subTopics {
		if s.TopicID == t.ID {
			cp.SubTopics = append(cp.SubTopics, *s)
		}
	}
	return &cp
}

func (f *fakeTopicRepo) CreateTopic(ctx context.Context, t *entity.Topic) error {
	for _, existing := range f.topics {
		if existing.Slug == t.Slug {
			return gorm.ErrDuplicatedKey
		}
	}
	t.ID = uuid.New()
	cp := *t
	f.topics[t.ID] = &cp
	return nil
}

func (f *fakeTopicRepo) UpdateTopic(ctx context.Context, t *entity.Topic) error {
	cp := *t
	f.topics[t.ID] = &cp
	return nil
}

func (f *fakeTopicRepo) FindTopicByID(ctx context.Context, id uuid.UUID) (*entity.Topic, error) {
	if t, ok := f.topics[id]; ok {
		return f.withSubs(t), nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeTopicRepo) FindTopicBySlug(ctx context.Context, slug string) (*entity.Topic, error) {
	for _, t := range f.topics {
		if t.Slug == slug {
			return f.withSubs(t), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeTopicRepo) FindAllTopics(ctx context.Context, search string) ([]*entity.Topic, error) {
	var out []*entity.Topic
	for _, t := range f.topics {
		out = append(out, f.withSubs(t))
	}
	return out, nil
}

func (f *fakeTopicRepo) CountContent(ctx context.Context) (map[uuid.UUID]dto.ContentCounts, error) {
	return f.counts, nil
}

func (f *fakeTopicRepo) DeleteTopic(ctx context.Context, id uuid.UUID, cascade bool) error {
	if _, ok := f.topics[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.topics, id)
	f.deleted[id] = true
	f.cascaded = cascade
	return nil
}

func (f *fakeTopicRepo) CreateSubTopic(ctx context.Context, s *entity.SubTopic) error {
	for _, existing := range f.subTopics {
		if existing.TopicID == s.TopicID && existing.Slug == s.Slug {
			return gorm.ErrDuplicatedKey
		}
	}
	s.ID = uuid.New()
	cp := *s
	f.subTopics[s.ID] = &cp
	return nil
}

func (f *fakeTopicRepo) UpdateSubTopic(ctx context.Context, s *entity.SubTopic) error {
	cp := *s
	f.subTopics[s.ID] = &cp
	return nil
}

func (f *fakeTopicRepo) FindSubTopicByID(ctx context.Context, id uuid.UUID) (*entity.SubTopic, error) {
	if s, ok := f.subTopics[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeTopicRepo) DeleteSubTopic(ctx context.Context, id uuid.UUID) error {
	if _, ok := f.subTopics[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.subTopics, id)
	return nil
}

func TestCreateTopicDerivesSlug(t *testing.T) {
	svc := NewTopicService(newFakeTopicRepo())

	resp, err := svc.CreateTopic(context.Background(), dto.CreateTopicRequest{Name: "System Design!"})
	require.NoError(t, err)
	assert.Equal(t, "system-design", resp.Slug)
	assert.Equal(t, "System Design!", resp.Name)
}

func TestCreateTopicExplicitSlugIsNormalized(t *testing.T) {
	svc := NewTopicService(newFakeTopicRepo())

	resp, err := svc.CreateTopic(context.Background(), dto.CreateTopicRequest{Name: "Graphs", Slug: "Graph Theory 101"})
	require.NoError(t, err)
	assert.Equal(t, "graph-theory-101", resp.Slug)
}

func TestCreateTopicSlugCollision(t *testing.T) {
	svc := NewTopicService(newFakeTopicRepo())
	ctx := context.Background()

	_, err := svc.CreateTopic(ctx, dto.CreateTopicRequest{Name: "Arrays"})
	require.NoError(t, err)

	_, err = svc.CreateTopic(ctx, dto.CreateTopicRequest{Name: "arrays!!"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperror.ErrConflict))
}

func TestCreateTopicRejectsEmptySlug(t *testing.T) {
	svc := NewTopicService(newFakeTopicRepo())

	_, err := svc.CreateTopic(context.Background(), dto.CreateTopicRequest{Name: "???"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperror.ErrInvalidInput))
}

func TestSubTopicSlugScopedPerTopic(t *testing.T) {
	svc := NewTopicService(newFakeTopicRepo())
	ctx := context.Background()

	algos, err := svc.CreateTopic(ctx, dto.CreateTopicRequest{Name: "Algorithms"})
	require.NoError(t, err)
	ds, err := svc.CreateTopic(ctx, dto.CreateTopicRequest{Name: "Data Structures"})
	require.NoError(t, err)

	_, err = svc.CreateSubTopic(ctx, algos.ID, dto.CreateTopicRequest{Name: "Basics"})
	require.NoError(t, err)
	_, err = svc.CreateSubTopic(ctx, ds.ID, dto.CreateTopicRequest{Name: "Basics"})
	require.NoError(t, err, "same slug under a different topic is allowed")

	_, err = svc.CreateSubTopic(ctx, algos.ID, dto.CreateTopicRequest{Name: "basics"})
	assert.True(t, errors.Is(err, apperror.ErrConflict))
}

func TestCreateSubTopicMissingParent(t *testing.T) {
	svc := NewTopicService(newFakeTopicRepo())

	_, err := svc.CreateSubTopic(context.Background(), uuid.New(), dto.CreateTopicRequest{Name: "Orphan"})
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}

func TestListTopicsIncludesCounts(t *testing.T) {
	repo := newFakeTopicRepo()
	svc := NewTopicService(repo)
	ctx := context.Background()

	created, err := svc.CreateTopic(ctx, dto.CreateTopicRequest{Name: "Trees"})
	require.NoError(t, err)
	_, err = svc.CreateSubTopic(ctx, created.ID, dto.CreateTopicRequest{Name: "BST"})
	require.NoError(t, err)
	repo.counts[created.ID] = dto.ContentCounts{Blogs: 2, Notes: 1, Problems: 5}

	topics, err := svc.ListTopics(ctx, "")
	require.NoError(t, err)
	require.Len(t, topics, 1)
	assert.Equal(t, dto.ContentCounts{Blogs: 2, Notes: 1, Problems: 5}, topics[0].Counts)
	require.Len(t, topics[0].SubTopics, 1)
	assert.Equal(t, "bst", topics[0].SubTopics[0].Slug)
}

func TestGetTopicBySlugOrID(t *testing.T) {
	svc := NewTopicService(newFakeTopicRepo())
	ctx := context.Background()

	created, err := svc.CreateTopic(ctx, dto.CreateTopicRequest{Name: "Heaps"})
	require.NoError(t, err)

	bySlug, err := svc.GetTopic(ctx, "heaps")
	require.NoError(t, err)
	byID, err := svc.GetTopic(ctx, created.ID.String())
	require.NoError(t, err)
	assert.Equal(t, bySlug.ID, byID.ID)

	_, err = svc.GetTopic(ctx, "missing")
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}

func TestUpdateTopicPartial(t *testing.T) {
	svc := NewTopicService(newFakeTopicRepo())
	ctx := context.Background()

	created, err := svc.CreateTopic(ctx, dto.CreateTopicRequest{Name: "Sorting", Description: "keep me"})
	require.NoError(t, err)

	order := 3
	updated, err := svc.UpdateTopic(ctx, created.ID, dto.UpdateTopicRequest{Order: &order})
	require.NoError(t, err)
	assert.Equal(t, 3, updated.Order)
	assert.Equal(t, "keep me", updated.Description)
	assert.Equal(t, "sorting", updated.Slug)

	blank := "   "
	_, err = svc.UpdateTopic(ctx, created.ID, dto.UpdateTopicRequest{Name: &blank})
	assert.True(t, errors.Is(err, apperror.ErrInvalidInput))
}

func TestDeleteTopic(t *testing.T) {
	repo := newFakeTopicRepo()
	svc := NewTopicService(repo)
	ctx := context.Background()

	created, err := svc.CreateTopic(ctx, dto.CreateTopicRequest{Name: "Tries"})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteTopic(ctx, created.ID, false))
	assert.True(t, repo.deleted[created.ID])
	assert.False(t, repo.cascaded)

	err = svc.DeleteTopic(ctx, created.ID, false)
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}

func TestResolvePlacement(t *testing.T) {
	svc := NewTopicService(newFakeTopicRepo())
	ctx := context.Background()

	graphs, err := svc.CreateTopic(ctx, dto.CreateTopicRequest{Name: "Graphs"})
	require.NoError(t, err)
	other, err := svc.CreateTopic(ctx, dto.CreateTopicRequest{Name: "Strings"})
	require.NoError(t, err)
	bfs, err := svc.CreateSubTopic(ctx, graphs.ID, dto.CreateTopicRequest{Name: "BFS"})
	require.NoError(t, err)

	topicID, subID, err := svc.ResolvePlacement(ctx, nil, &bfs.ID)
	require.NoError(t, err)
	assert.Equal(t, graphs.ID, *topicID)
	assert.Equal(t, bfs.ID, *subID)

	_, _, err = svc.ResolvePlacement(ctx, &other.ID, &bfs.ID)
	assert.True(t, errors.Is(err, apperror.ErrInvalidInput))

	missing := uuid.New()
	_, _, err = svc.ResolvePlacement(ctx, &missing, nil)
	assert.True(t, errors.Is(err, apperror.ErrNotFound))

	topicID, subID, err = svc.ResolvePlacement(ctx, nil, nil)
	require.NoError(t, err)
	assert.Nil(t, topicID)
	assert.Nil(t, subID)
}
