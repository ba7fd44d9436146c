package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"inkwell/internal/cache"
	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/repository"

	"gorm.io/gorm"
)

// BlobStore is the slice of the image store the post flows need.
type BlobStore interface {
	Save(filename string, content []byte, now time.Time) (string, error)
	Delete(rel string) error
}

type PostService struct {
	postRepo repository.PostRepository
	likeRepo repository.LikeRepository
	images   BlobStore
	visits   *cache.VisitCounter
}

// ImageUpload carries a decoded multipart file from the handler layer.
type ImageUpload struct {
	Filename string
	Content  []byte
}

type CreatePostInput struct {
	AuthorID uint
	Title    string
	Body     string
	Safe     *bool
	Image    *ImageUpload
}

type UpdatePostInput struct {
	UserID uint
	PostID uint
	Title  *string
	Body   *string
	Safe   *bool
	// Image replaces the stored blob when set. RemoveImage clears the
	// reference instead; it is ignored when Image is also set.
	Image       *ImageUpload
	RemoveImage bool
}

type DeletePostInput struct {
	UserID uint
	PostID uint
}

func NewPostService(
	postRepo repository.PostRepository,
	likeRepo repository.LikeRepository,
	images BlobStore,
	visits *cache.VisitCounter,
) *PostService {
	return &PostService{
		postRepo: postRepo,
		likeRepo: likeRepo,
		images:   images,
		visits:   visits,
	}
}

const (
	maxTitleLen = 100
	maxBodyLen  = 255
)

func validatePostFields(title, body string) error {
	fields := map[string]string{}
	if strings.TrimSpace(title) == "" {
		fields["title"] = "Title is required"
	} else if utf8.RuneCountInString(title) > maxTitleLen {
		fields["title"] = "Title too long (max 100 characters)"
	}
	if strings.TrimSpace(body) == "" {
		fields["body"] = "Body is required"
	} else if utf8.RuneCountInString(body) > maxBodyLen {
		fields["body"] = "Body too long (max 255 characters)"
	}
	if len(fields) > 0 {
		return models.NewFieldValidationError(fields)
	}
	return nil
}

// CreatePost stores the optional image first, then the row. A create never
// deletes an existing blob; only replacement and deletion do.
func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	if err := validatePostFields(in.Title, in.Body); err != nil {
		return nil, err
	}

	imagePath := ""
	if in.Image != nil {
		path, err := s.images.Save(in.Image.Filename, in.Image.Content, time.Now())
		if err != nil {
			return nil, err
		}
		imagePath = path
	}

	safe := true
	if in.Safe != nil {
		safe = *in.Safe
	}

	post := &models.Post{
		Title:     in.Title,
		Body:      in.Body,
		AuthorID:  in.AuthorID,
		ImagePath: imagePath,
		Safe:      safe,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}

	return s.postRepo.GetByID(ctx, post.ID)
}

func (s *PostService) ListPosts(ctx context.Context, filter repository.PostFilter, limit, offset int) ([]*models.Post, error) {
	return s.postRepo.List(ctx, filter, limit, offset)
}

// GetPost fetches the post with its computed details and attaches the visit
// count from the counter store. Counting the visit itself is the caller's
// decision, not a side effect of every read.
func (s *PostService) GetPost(ctx context.Context, id uint) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.visits != nil {
		post.VisitsCount = s.visits.Count(ctx, post.ID)
	}
	return post, nil
}

// RecordVisit bumps the post's visit counter. Failures are absorbed inside
// the counter so a read never depends on the counter store being up.
func (s *PostService) RecordVisit(ctx context.Context, postID uint) {
	if s.visits != nil {
		s.visits.Increment(ctx, postID)
	}
}

// UpdatePost applies the partial update and runs the image replacement
// protocol: the new blob is stored before the row is written, and the old
// blob is removed only after the row points at the new one.
func (s *PostService) UpdatePost(ctx context.Context, in UpdatePostInput) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, in.PostID)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != in.UserID {
		return nil, models.NewUnauthorizedError("You can only update your own posts")
	}

	title := post.Title
	body := post.Body
	if in.Title != nil {
		title = *in.Title
	}
	if in.Body != nil {
		body = *in.Body
	}
	if err := validatePostFields(title, body); err != nil {
		return nil, err
	}
	post.Title = title
	post.Body = body
	if in.Safe != nil {
		post.Safe = *in.Safe
	}

	oldImage := post.ImagePath
	switch {
	case in.Image != nil:
		path, err := s.images.Save(in.Image.Filename, in.Image.Content, time.Now())
		if err != nil {
			return nil, err
		}
		post.ImagePath = path
	case in.RemoveImage:
		post.ImagePath = ""
	}

	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}

	// Covers both replacement and clearing; a same-path update deletes nothing.
	if oldImage != "" && oldImage != post.ImagePath {
		if err := s.images.Delete(oldImage); err != nil {
			middleware.Logger.WarnContext(ctx, "failed to remove replaced image",
				"path", oldImage, "post_id", post.ID, "error", err)
		}
	}

	return s.postRepo.GetByID(ctx, post.ID)
}

// DeletePost removes the row (with its comments, tags and likes) and then
// the image blob. A failed blob removal is logged, never surfaced: the post
// is already gone and the request should say so.
func (s *PostService) DeletePost(ctx context.Context, in DeletePostInput) error {
	post, err := s.postRepo.GetByID(ctx, in.PostID)
	if err != nil {
		return err
	}
	if post.AuthorID != in.UserID {
		return models.NewUnauthorizedError("You can only delete your own posts")
	}

	if err := s.postRepo.Delete(ctx, in.PostID); err != nil {
		return err
	}

	if post.ImagePath != "" {
		if err := s.images.Delete(post.ImagePath); err != nil {
			middleware.Logger.WarnContext(ctx, "failed to remove image of deleted post",
				"path", post.ImagePath, "post_id", post.ID, "error", err)
		}
	}
	return nil
}

// ToggleLike flips the user's like on the post and reports the resulting
// state as "liked" or "unliked".
func (s *PostService) ToggleLike(ctx context.Context, userID, postID uint) (string, error) {
	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		return "", err
	}
	return toggleLike(ctx, s.likeRepo, userID, models.LikeTargetPost, postID)
}

func (s *PostService) TaggedUsers(ctx context.Context, postID uint) ([]*models.User, error) {
	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		return nil, err
	}
	return s.postRepo.TaggedUsers(ctx, postID)
}

func (s *PostService) TaggedPosts(ctx context.Context, userID uint) ([]*models.Post, error) {
	return s.postRepo.TaggedPosts(ctx, userID)
}

// toggleLike is shared between post and comment toggles. A concurrent
// double-like trips the unique index; both requests still converge on the
// liked state, so the loser reports it too.
func toggleLike(ctx context.Context, likes repository.LikeRepository, userID uint, kind models.LikeTarget, targetID uint) (string, error) {
	liked, err := likes.IsLiked(ctx, userID, kind, targetID)
	if err != nil {
		return "", err
	}

	if liked {
		if err := likes.Unlike(ctx, userID, kind, targetID); err != nil {
			return "", err
		}
		return "unliked", nil
	}

	if err := likes.Like(ctx, userID, kind, targetID); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return "liked", nil
		}
		return "", err
	}
	return "liked", nil
}
