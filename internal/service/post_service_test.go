package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"inkwell/internal/models"
	"inkwell/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// postRepoStub is a stub for repository.PostRepository.
type postRepoStub struct {
	createFn      func(context.Context, *models.Post) error
	getByIDFn     func(context.Context, uint) (*models.Post, error)
	listFn        func(context.Context, repository.PostFilter, int, int) ([]*models.Post, error)
	countFn       func(context.Context) (int64, error)
	updateFn      func(context.Context, *models.Post) error
	deleteFn      func(context.Context, uint) error
	taggedUsersFn func(context.Context, uint) ([]*models.User, error)
	taggedPostsFn func(context.Context, uint) ([]*models.Post, error)
}

func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	return s.createFn(ctx, post)
}
func (s *postRepoStub) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	return s.getByIDFn(ctx, id)
}
func (s *postRepoStub) List(ctx context.Context, filter repository.PostFilter, limit, offset int) ([]*models.Post, error) {
	return s.listFn(ctx, filter, limit, offset)
}
func (s *postRepoStub) Count(ctx context.Context) (int64, error) {
	return s.countFn(ctx)
}
func (s *postRepoStub) Update(ctx context.Context, post *models.Post) error {
	return s.updateFn(ctx, post)
}
func (s *postRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}
func (s *postRepoStub) TaggedUsers(ctx context.Context, postID uint) ([]*models.User, error) {
	return s.taggedUsersFn(ctx, postID)
}
func (s *postRepoStub) TaggedPosts(ctx context.Context, userID uint) ([]*models.Post, error) {
	return s.taggedPostsFn(ctx, userID)
}

func noopPostRepo() *postRepoStub {
	return &postRepoStub{
		createFn:      func(_ context.Context, _ *models.Post) error { return nil },
		getByIDFn:     func(_ context.Context, id uint) (*models.Post, error) { return &models.Post{ID: id}, nil },
		listFn:        func(_ context.Context, _ repository.PostFilter, _, _ int) ([]*models.Post, error) { return nil, nil },
		countFn:       func(_ context.Context) (int64, error) { return 0, nil },
		updateFn:      func(_ context.Context, _ *models.Post) error { return nil },
		deleteFn:      func(_ context.Context, _ uint) error { return nil },
		taggedUsersFn: func(_ context.Context, _ uint) ([]*models.User, error) { return nil, nil },
		taggedPostsFn: func(_ context.Context, _ uint) ([]*models.Post, error) { return nil, nil },
	}
}

// likeRepoStub is a stub for repository.LikeRepository.
type likeRepoStub struct {
	isLikedFn func(context.Context, uint, models.LikeTarget, uint) (bool, error)
	likeFn    func(context.Context, uint, models.LikeTarget, uint) error
	unlikeFn  func(context.Context, uint, models.LikeTarget, uint) error
	countFn   func(context.Context, models.LikeTarget, uint) (int64, error)
}

func (s *likeRepoStub) IsLiked(ctx context.Context, userID uint, kind models.LikeTarget, targetID uint) (bool, error) {
	return s.isLikedFn(ctx, userID, kind, targetID)
}
func (s *likeRepoStub) Like(ctx context.Context, userID uint, kind models.LikeTarget, targetID uint) error {
	return s.likeFn(ctx, userID, kind, targetID)
}
func (s *likeRepoStub) Unlike(ctx context.Context, userID uint, kind models.LikeTarget, targetID uint) error {
	return s.unlikeFn(ctx, userID, kind, targetID)
}
func (s *likeRepoStub) CountForTarget(ctx context.Context, kind models.LikeTarget, targetID uint) (int64, error) {
	return s.countFn(ctx, kind, targetID)
}

func noopLikeRepo() *likeRepoStub {
	return &likeRepoStub{
		isLikedFn: func(_ context.Context, _ uint, _ models.LikeTarget, _ uint) (bool, error) { return false, nil },
		likeFn:    func(_ context.Context, _ uint, _ models.LikeTarget, _ uint) error { return nil },
		unlikeFn:  func(_ context.Context, _ uint, _ models.LikeTarget, _ uint) error { return nil },
		countFn:   func(_ context.Context, _ models.LikeTarget, _ uint) (int64, error) { return 0, nil },
	}
}

// blobStoreStub is a stub for BlobStore.
type blobStoreStub struct {
	saveFn   func(string, []byte, time.Time) (string, error)
	deleteFn func(string) error
	deleted  []string
}

func (s *blobStoreStub) Save(filename string, content []byte, now time.Time) (string, error) {
	return s.saveFn(filename, content, now)
}
func (s *blobStoreStub) Delete(rel string) error {
	s.deleted = append(s.deleted, rel)
	if s.deleteFn != nil {
		return s.deleteFn(rel)
	}
	return nil
}

func noopBlobStore() *blobStoreStub {
	return &blobStoreStub{
		saveFn: func(filename string, _ []byte, _ time.Time) (string, error) {
			return "uploads/images/2026/08/30/" + filename, nil
		},
	}
}

// assertValidationError asserts that err is an AppError with code VALIDATION_ERROR.
func assertValidationError(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
}

// assertUnauthorizedError asserts that err is an AppError with code UNAUTHORIZED.
func assertUnauthorizedError(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, "UNAUTHORIZED", appErr.Code)
}

func TestPostService_CreatePost_Validation(t *testing.T) {
	t.Parallel()
	svc := NewPostService(noopPostRepo(), noopLikeRepo(), noopBlobStore(), nil)
	ctx := context.Background()

	tests := []struct {
		name  string
		title string
		body  string
	}{
		{"Missing Title", "", "body"},
		{"Blank Title", "   ", "body"},
		{"Title Too Long", strings.Repeat("t", 101), "body"},
		{"Title Too Long Multibyte", strings.Repeat("ä", 101), "body"},
		{"Missing Body", "title", ""},
		{"Body Too Long", "title", strings.Repeat("b", 256)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreatePost(ctx, CreatePostInput{AuthorID: 1, Title: tt.title, Body: tt.body})
			assertValidationError(t, err)
		})
	}
}

func TestPostService_CreatePost_LimitsCountCharacters(t *testing.T) {
	t.Parallel()
	// 100 two-byte runes exceed 100 bytes but fit the 100-character limit.
	svc := NewPostService(noopPostRepo(), noopLikeRepo(), noopBlobStore(), nil)
	_, err := svc.CreatePost(context.Background(), CreatePostInput{
		AuthorID: 1,
		Title:    strings.Repeat("ä", 100),
		Body:     strings.Repeat("ß", 255),
	})
	assert.NoError(t, err)
}

func TestPostService_CreatePost_WithImage(t *testing.T) {
	t.Parallel()
	var created *models.Post
	repo := noopPostRepo()
	repo.createFn = func(_ context.Context, post *models.Post) error {
		post.ID = 42
		created = post
		return nil
	}
	repo.getByIDFn = func(_ context.Context, id uint) (*models.Post, error) {
		return created, nil
	}
	blobs := noopBlobStore()

	svc := NewPostService(repo, noopLikeRepo(), blobs, nil)
	post, err := svc.CreatePost(context.Background(), CreatePostInput{
		AuthorID: 1,
		Title:    "With image",
		Body:     "body",
		Image:    &ImageUpload{Filename: "pic.png", Content: []byte("png")},
	})
	require.NoError(t, err)
	assert.Equal(t, "uploads/images/2026/08/30/pic.png", post.ImagePath)
	assert.Empty(t, blobs.deleted, "create must never delete blobs")
}

func TestPostService_CreatePost_SafeDefaultsTrue(t *testing.T) {
	t.Parallel()
	repo := noopPostRepo()
	var created *models.Post
	repo.createFn = func(_ context.Context, post *models.Post) error {
		created = post
		return nil
	}

	svc := NewPostService(repo, noopLikeRepo(), noopBlobStore(), nil)
	_, err := svc.CreatePost(context.Background(), CreatePostInput{AuthorID: 1, Title: "t", Body: "b"})
	require.NoError(t, err)
	assert.True(t, created.Safe)

	unsafe := false
	_, err = svc.CreatePost(context.Background(), CreatePostInput{AuthorID: 1, Title: "t", Body: "b", Safe: &unsafe})
	require.NoError(t, err)
	assert.False(t, created.Safe)
}

func TestPostService_UpdatePost_Ownership(t *testing.T) {
	t.Parallel()
	repo := noopPostRepo()
	repo.getByIDFn = func(_ context.Context, id uint) (*models.Post, error) {
		return &models.Post{ID: id, Title: "t", Body: "b", AuthorID: 7}, nil
	}

	svc := NewPostService(repo, noopLikeRepo(), noopBlobStore(), nil)
	title := "hijacked"
	_, err := svc.UpdatePost(context.Background(), UpdatePostInput{UserID: 8, PostID: 1, Title: &title})
	assertUnauthorizedError(t, err)
}

func TestPostService_UpdatePost_ReplacesImage(t *testing.T) {
	t.Parallel()
	repo := noopPostRepo()
	stored := &models.Post{ID: 1, Title: "t", Body: "b", AuthorID: 7, ImagePath: "uploads/images/2026/01/01/old.png"}
	repo.getByIDFn = func(_ context.Context, _ uint) (*models.Post, error) {
		clone := *stored
		return &clone, nil
	}
	repo.updateFn = func(_ context.Context, post *models.Post) error {
		stored = post
		return nil
	}
	blobs := noopBlobStore()

	svc := NewPostService(repo, noopLikeRepo(), blobs, nil)
	post, err := svc.UpdatePost(context.Background(), UpdatePostInput{
		UserID: 7,
		PostID: 1,
		Image:  &ImageUpload{Filename: "new.png", Content: []byte("png")},
	})
	require.NoError(t, err)
	assert.Equal(t, "uploads/images/2026/08/30/new.png", post.ImagePath)
	assert.Equal(t, []string{"uploads/images/2026/01/01/old.png"}, blobs.deleted)
}

func TestPostService_UpdatePost_ClearsImage(t *testing.T) {
	t.Parallel()
	repo := noopPostRepo()
	stored := &models.Post{ID: 1, Title: "t", Body: "b", AuthorID: 7, ImagePath: "uploads/images/2026/01/01/old.png"}
	repo.getByIDFn = func(_ context.Context, _ uint) (*models.Post, error) {
		clone := *stored
		return &clone, nil
	}
	repo.updateFn = func(_ context.Context, post *models.Post) error {
		stored = post
		return nil
	}
	blobs := noopBlobStore()

	svc := NewPostService(repo, noopLikeRepo(), blobs, nil)
	post, err := svc.UpdatePost(context.Background(), UpdatePostInput{
		UserID:      7,
		PostID:      1,
		RemoveImage: true,
	})
	require.NoError(t, err)
	assert.Empty(t, post.ImagePath)
	assert.Equal(t, []string{"uploads/images/2026/01/01/old.png"}, blobs.deleted)

	// Clearing an imageless post is a no-op.
	blobs.deleted = nil
	_, err = svc.UpdatePost(context.Background(), UpdatePostInput{UserID: 7, PostID: 1, RemoveImage: true})
	require.NoError(t, err)
	assert.Empty(t, blobs.deleted)
}

func TestPostService_UpdatePost_NoImageKeepsBlob(t *testing.T) {
	t.Parallel()
	repo := noopPostRepo()
	repo.getByIDFn = func(_ context.Context, id uint) (*models.Post, error) {
		return &models.Post{ID: id, Title: "t", Body: "b", AuthorID: 7, ImagePath: "uploads/images/2026/01/01/old.png"}, nil
	}
	blobs := noopBlobStore()

	svc := NewPostService(repo, noopLikeRepo(), blobs, nil)
	title := "renamed"
	_, err := svc.UpdatePost(context.Background(), UpdatePostInput{UserID: 7, PostID: 1, Title: &title})
	require.NoError(t, err)
	assert.Empty(t, blobs.deleted)
}

func TestPostService_UpdatePost_BlobCleanupFailureIsSwallowed(t *testing.T) {
	t.Parallel()
	repo := noopPostRepo()
	repo.getByIDFn = func(_ context.Context, id uint) (*models.Post, error) {
		return &models.Post{ID: id, Title: "t", Body: "b", AuthorID: 7, ImagePath: "uploads/images/2026/01/01/old.png"}, nil
	}
	blobs := noopBlobStore()
	blobs.deleteFn = func(string) error { return errors.New("disk gone") }

	svc := NewPostService(repo, noopLikeRepo(), blobs, nil)
	_, err := svc.UpdatePost(context.Background(), UpdatePostInput{
		UserID: 7,
		PostID: 1,
		Image:  &ImageUpload{Filename: "new.png", Content: []byte("png")},
	})
	assert.NoError(t, err, "a failed blob removal must not fail the update")
}

func TestPostService_DeletePost(t *testing.T) {
	t.Parallel()
	repo := noopPostRepo()
	repo.getByIDFn = func(_ context.Context, id uint) (*models.Post, error) {
		return &models.Post{ID: id, AuthorID: 7, ImagePath: "uploads/images/2026/01/01/pic.png"}, nil
	}
	deleted := false
	repo.deleteFn = func(_ context.Context, _ uint) error {
		deleted = true
		return nil
	}
	blobs := noopBlobStore()

	svc := NewPostService(repo, noopLikeRepo(), blobs, nil)

	err := svc.DeletePost(context.Background(), DeletePostInput{UserID: 8, PostID: 1})
	assertUnauthorizedError(t, err)
	assert.False(t, deleted)

	require.NoError(t, svc.DeletePost(context.Background(), DeletePostInput{UserID: 7, PostID: 1}))
	assert.True(t, deleted)
	assert.Equal(t, []string{"uploads/images/2026/01/01/pic.png"}, blobs.deleted)
}

func TestPostService_DeletePost_RowBeforeBlob(t *testing.T) {
	t.Parallel()
	repo := noopPostRepo()
	repo.getByIDFn = func(_ context.Context, id uint) (*models.Post, error) {
		return &models.Post{ID: id, AuthorID: 7, ImagePath: "uploads/images/2026/01/01/pic.png"}, nil
	}
	repo.deleteFn = func(_ context.Context, _ uint) error { return errors.New("db down") }
	blobs := noopBlobStore()

	svc := NewPostService(repo, noopLikeRepo(), blobs, nil)
	err := svc.DeletePost(context.Background(), DeletePostInput{UserID: 7, PostID: 1})
	assert.Error(t, err)
	assert.Empty(t, blobs.deleted, "blob must survive when the row deletion fails")
}

func TestPostService_ToggleLike(t *testing.T) {
	t.Parallel()
	likes := noopLikeRepo()
	liked := false
	likes.isLikedFn = func(_ context.Context, _ uint, _ models.LikeTarget, _ uint) (bool, error) {
		return liked, nil
	}
	likes.likeFn = func(_ context.Context, _ uint, _ models.LikeTarget, _ uint) error {
		liked = true
		return nil
	}
	likes.unlikeFn = func(_ context.Context, _ uint, _ models.LikeTarget, _ uint) error {
		liked = false
		return nil
	}

	svc := NewPostService(noopPostRepo(), likes, noopBlobStore(), nil)
	ctx := context.Background()

	status, err := svc.ToggleLike(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, "liked", status)

	status, err = svc.ToggleLike(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, "unliked", status)
}

func TestPostService_ToggleLike_RaceConvergesOnLiked(t *testing.T) {
	t.Parallel()
	likes := noopLikeRepo()
	likes.likeFn = func(_ context.Context, _ uint, _ models.LikeTarget, _ uint) error {
		return gorm.ErrDuplicatedKey
	}

	svc := NewPostService(noopPostRepo(), likes, noopBlobStore(), nil)
	status, err := svc.ToggleLike(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.Equal(t, "liked", status)
}

func TestPostService_ToggleLike_MissingPost(t *testing.T) {
	t.Parallel()
	repo := noopPostRepo()
	repo.getByIDFn = func(_ context.Context, _ uint) (*models.Post, error) {
		return nil, gorm.ErrRecordNotFound
	}

	svc := NewPostService(repo, noopLikeRepo(), noopBlobStore(), nil)
	_, err := svc.ToggleLike(context.Background(), 1, 99)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
