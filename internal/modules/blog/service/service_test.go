package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"anoa.com/studyhub/internal/entity"
	"anoa.com/studyhub/internal/modules/blog/dto"
	searchDto "anoa.com/studyhub/internal/modules/search/dto"
	"anoa.com/studyhub/pkg/apperror"
	commonDto "anoa.com/studyhub/pkg/dto"
	"anoa.com/studyhub/pkg/storage"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fakeBlogRepo struct {
	blogs map[uuid.UUID]*entity.Blog
}

func newFakeBlogRepo() *fakeBlogRepo {
	return &fakeBlogRepo{blogs: map[uuid.UUID]*entity.Blog{}}
}

func (f *fakeBlogRepo) Create(ctx context.Context, b *entity.Blog) error {
	b.ID = uuid.New()
	b.CreatedAt = time.Now()
	b.UpdatedAt = b.CreatedAt
	cp := *b
	f.blogs[b.ID] = &cp
	return nil
}

func (f *fakeBlogRepo) Update(ctx context.Context, b *entity.Blog) error {
	cp := *b
	f.blogs[b.ID] = &cp
	return nil
}

func (f *fakeBlogRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Blog, error) {
	b, ok := f.blogs[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *b
	cp.Author = entity.User{ID: b.AuthorID, Name: "Author"}
	return &cp, nil
}

func (f *fakeBlogRepo) FindAll(ctx context.Context, filter commonDto.ListFilter, order string, viewer *commonDto.Viewer) ([]*entity.Blog, int64, error) {
	var out []*entity.Blog
	for _, b := range f.blogs {
		if b.Published || viewer.CanModify(b.AuthorID) {
			cp := *b
			out = append(out, &cp)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeBlogRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := f.blogs[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.blogs, id)
	return nil
}

func (f *fakeBlogRepo) IncrementViews(ctx context.Context, id uuid.UUID) error {
	f.blogs[id].Views++
	return nil
}

func (f *fakeBlogRepo) CountPublished(ctx context.Context) (int64, error) {
	var n int64
	for _, b := range f.blogs {
		if b.Published {
			n++
		}
	}
	return n, nil
}

type noPlacement struct{}

func (noPlacement) ResolvePlacement(ctx context.Context, topicID, subTopicID *uuid.UUID) (*uuid.UUID, *uuid.UUID, error) {
	return topicID, subTopicID, nil
}

type onceViews struct {
	seen map[string]bool
}

func (v *onceViews) Register(ctx context.Context, kind string, id uuid.UUID, viewer string) bool {
	k := kind + id.String() + viewer
	if v.seen[k] {
		return false
	}
	v.seen[k] = true
	return true
}

type recordingIndexer struct {
	indexed map[string]searchDto.Document
	removed []string
}

func (r *recordingIndexer) Index(ctx context.Context, index string, doc searchDto.Document) {
	r.indexed[index+":"+doc.ID] = doc
}

func (r *recordingIndexer) Remove(ctx context.Context, index string, id string) {
	r.removed = append(r.removed, index+":"+id)
}

type recordingStorage struct {
	deleted []string
}

func (s *recordingStorage) Upload(ctx context.Context, r io.ReadSeeker, folder, fileName string) (*storage.UploadResult, error) {
	return nil, errors.New("not used")
}

func (s *recordingStorage) Delete(ctx context.Context, fileURL string) error {
	s.deleted = append(s.deleted, fileURL)
	return nil
}

type fixture struct {
	svc     BlogService
	repo    *fakeBlogRepo
	indexer *recordingIndexer
	storage *recordingStorage
}

func newFixture() fixture {
	repo := newFakeBlogRepo()
	indexer := &recordingIndexer{indexed: map[string]searchDto.Document{}}
	store := &recordingStorage{}
	svc := NewBlogService(repo, noPlacement{}, &onceViews{seen: map[string]bool{}}, indexer, store, zap.NewNop())
	return fixture{svc: svc, repo: repo, indexer: indexer, storage: store}
}

func TestCreateBlogComputesDerivedFields(t *testing.T) {
	f := newFixture()
	author := uuid.New()

	resp, err := f.svc.CreateBlog(context.Background(), author, dto.CreateBlogRequest{
		Title:   "  Two minute read ",
		Content: strings.Repeat("word ", 400),
		Tags:    []string{"go", " go", ""},
	})
	require.NoError(t, err)

	assert.Equal(t, "Two minute read", resp.Title)
	assert.Equal(t, 2, resp.ReadTime)
	assert.NotEmpty(t, resp.Excerpt)
	assert.Equal(t, []string{"go"}, resp.Tags)
	assert.Equal(t, author, resp.Author.ID)

	doc, ok := f.indexer.indexed[searchDto.IndexBlogs+":"+resp.ID.String()]
	require.True(t, ok)
	assert.False(t, doc.Public)
}

func TestDraftVisibility(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	author := uuid.New()

	draft, err := f.svc.CreateBlog(ctx, author, dto.CreateBlogRequest{Title: "Draft", Content: "secret"})
	require.NoError(t, err)

	_, err = f.svc.GetBlog(ctx, draft.ID, nil, "1.1.1.1")
	assert.True(t, errors.Is(err, apperror.ErrNotFound))

	_, err = f.svc.GetBlog(ctx, draft.ID, &commonDto.Viewer{ID: uuid.New()}, "1.1.1.1")
	assert.True(t, errors.Is(err, apperror.ErrNotFound))

	_, err = f.svc.GetBlog(ctx, draft.ID, &commonDto.Viewer{ID: author}, "1.1.1.1")
	assert.NoError(t, err)

	_, err = f.svc.GetBlog(ctx, draft.ID, &commonDto.Viewer{ID: uuid.New(), IsAdmin: true}, "1.1.1.1")
	assert.NoError(t, err)

	list, err := f.svc.ListBlogs(ctx, nil, commonDto.ListFilter{})
	require.NoError(t, err)
	assert.Empty(t, list.Data)
}

func TestGetBlogCountsViewOncePerViewer(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	b, err := f.svc.CreateBlog(ctx, uuid.New(), dto.CreateBlogRequest{Title: "Public", Content: "hello", Published: true})
	require.NoError(t, err)

	first, err := f.svc.GetBlog(ctx, b.ID, nil, "1.1.1.1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.Views)

	again, err := f.svc.GetBlog(ctx, b.ID, nil, "1.1.1.1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), again.Views)

	other, err := f.svc.GetBlog(ctx, b.ID, nil, "2.2.2.2")
	require.NoError(t, err)
	assert.Equal(t, int64(2), other.Views)
}

func TestUpdateBlog(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	author := uuid.New()
	oldCover := "https://res.cloudinary.com/demo/image/upload/v1/old.png"

	b, err := f.svc.CreateBlog(ctx, author, dto.CreateBlogRequest{Title: "T", Content: "short", Published: true, CoverImage: &oldCover})
	require.NoError(t, err)
	assert.Equal(t, 1, b.ReadTime)

	longer := strings.Repeat("word ", 601)
	_, err = f.svc.UpdateBlog(ctx, &commonDto.Viewer{ID: uuid.New()}, b.ID, dto.UpdateBlogRequest{Content: &longer})
	assert.True(t, errors.Is(err, apperror.ErrForbidden))

	newCover := "https://res.cloudinary.com/demo/image/upload/v2/new.png"
	updated, err := f.svc.UpdateBlog(ctx, &commonDto.Viewer{ID: author}, b.ID, dto.UpdateBlogRequest{Content: &longer, CoverImage: &newCover})
	require.NoError(t, err)
	assert.Equal(t, 4, updated.ReadTime)
	assert.Equal(t, []string{oldCover}, f.storage.deleted)
	assert.Equal(t, newCover, *updated.CoverImage)
}

func TestDeleteBlog(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	author := uuid.New()

	b, err := f.svc.CreateBlog(ctx, author, dto.CreateBlogRequest{Title: "T", Content: "body", Published: true})
	require.NoError(t, err)

	err = f.svc.DeleteBlog(ctx, nil, b.ID)
	assert.True(t, errors.Is(err, apperror.ErrForbidden))

	require.NoError(t, f.svc.DeleteBlog(ctx, &commonDto.Viewer{ID: uuid.New(), IsAdmin: true}, b.ID))
	assert.Equal(t, []string{searchDto.IndexBlogs + ":" + b.ID.String()}, f.indexer.removed)

	err = f.svc.DeleteBlog(ctx, &commonDto.Viewer{ID: author}, b.ID)
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}

func TestListBlogsRejectsUnsupportedSort(t *testing.T) {
	f := newFixture()

	_, err := f.svc.ListBlogs(context.Background(), nil, commonDto.ListFilter{Sort: commonDto.SortMostDownloaded})
	assert.True(t, errors.Is(err, apperror.ErrInvalidInput))
}

func TestUpdateBlogClearsPlacement(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	author := &commonDto.Viewer{ID: uuid.New()}
	topicID, subTopicID := uuid.New(), uuid.New()

	b, err := f.svc.CreateBlog(ctx, author.ID, dto.CreateBlogRequest{Title: "T", Content: "c", TopicID: &topicID, SubTopicID: &subTopicID})
	require.NoError(t, err)
	require.NotNil(t, b.TopicID)

	_, err = f.svc.UpdateBlog(ctx, author, b.ID, dto.UpdateBlogRequest{ClearPlacement: true, TopicID: &topicID})
	assert.True(t, errors.Is(err, apperror.ErrInvalidInput))

	updated, err := f.svc.UpdateBlog(ctx, author, b.ID, dto.UpdateBlogRequest{ClearPlacement: true})
	require.NoError(t, err)
	assert.Nil(t, updated.TopicID)
	assert.Nil(t, updated.SubTopicID)
	assert.Nil(t, f.repo.blogs[b.ID].TopicID)
}
