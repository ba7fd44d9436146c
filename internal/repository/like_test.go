package repository

import (
	"context"
	"errors"
	"testing"

	"inkwell/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestLikeRepository_Toggle(t *testing.T) {
	db := setupTestDB(t)
	repo := NewLikeRepository(db)
	ctx := context.Background()

	user := createTestUser(t, db, "liker")
	author := createTestUser(t, db, "writer")
	post := &models.Post{Title: "Likeable", Body: "body", AuthorID: author.ID}
	require.NoError(t, db.Create(post).Error)

	liked, err := repo.IsLiked(ctx, user.ID, models.LikeTargetPost, post.ID)
	require.NoError(t, err)
	assert.False(t, liked)

	require.NoError(t, repo.Like(ctx, user.ID, models.LikeTargetPost, post.ID))

	liked, err = repo.IsLiked(ctx, user.ID, models.LikeTargetPost, post.ID)
	require.NoError(t, err)
	assert.True(t, liked)

	require.NoError(t, repo.Unlike(ctx, user.ID, models.LikeTargetPost, post.ID))

	liked, err = repo.IsLiked(ctx, user.ID, models.LikeTargetPost, post.ID)
	require.NoError(t, err)
	assert.False(t, liked)
}

func TestLikeRepository_DuplicateIsConflict(t *testing.T) {
	db := setupTestDB(t)
	repo := NewLikeRepository(db)
	ctx := context.Background()

	user := createTestUser(t, db, "liker")
	require.NoError(t, repo.Like(ctx, user.ID, models.LikeTargetComment, 7))

	err := repo.Like(ctx, user.ID, models.LikeTargetComment, 7)
	assert.True(t, errors.Is(err, gorm.ErrDuplicatedKey), "expected duplicated key, got %v", err)
}

func TestLikeRepository_KindsAreDistinct(t *testing.T) {
	db := setupTestDB(t)
	repo := NewLikeRepository(db)
	ctx := context.Background()

	user := createTestUser(t, db, "liker")
	require.NoError(t, repo.Like(ctx, user.ID, models.LikeTargetPost, 3))
	require.NoError(t, repo.Like(ctx, user.ID, models.LikeTargetComment, 3))

	count, err := repo.CountForTarget(ctx, models.LikeTargetPost, 3)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	count, err = repo.CountForTarget(ctx, models.LikeTargetComment, 3)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestLikeRepository_CountForTarget(t *testing.T) {
	db := setupTestDB(t)
	repo := NewLikeRepository(db)
	ctx := context.Background()

	a := createTestUser(t, db, "a")
	b := createTestUser(t, db, "b")

	require.NoError(t, repo.Like(ctx, a.ID, models.LikeTargetPost, 1))
	require.NoError(t, repo.Like(ctx, b.ID, models.LikeTargetPost, 1))

	count, err := repo.CountForTarget(ctx, models.LikeTargetPost, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)
}
