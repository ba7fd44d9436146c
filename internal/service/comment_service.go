package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"inkwell/internal/models"
	"inkwell/internal/repository"
)

type CommentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
	likeRepo    repository.LikeRepository
}

type CreateCommentInput struct {
	UserID uint
	PostID uint
	Body   string
}

type UpdateCommentInput struct {
	UserID    uint
	CommentID uint
	Body      string
}

type DeleteCommentInput struct {
	UserID    uint
	CommentID uint
}

func NewCommentService(
	commentRepo repository.CommentRepository,
	postRepo repository.PostRepository,
	likeRepo repository.LikeRepository,
) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		postRepo:    postRepo,
		likeRepo:    likeRepo,
	}
}

const maxCommentLen = 255

func validateCommentBody(body string) error {
	if strings.TrimSpace(body) == "" {
		return models.NewValidationError("Body is required")
	}
	if utf8.RuneCountInString(body) > maxCommentLen {
		return models.NewValidationError("Comment too long (max 255 characters)")
	}
	return nil
}

func (s *CommentService) CreateComment(ctx context.Context, in CreateCommentInput) (*models.Comment, error) {
	if _, err := s.postRepo.GetByID(ctx, in.PostID); err != nil {
		return nil, err
	}
	if err := validateCommentBody(in.Body); err != nil {
		return nil, err
	}

	userID := in.UserID
	comment := &models.Comment{
		Body:     in.Body,
		AuthorID: &userID,
		PostID:   in.PostID,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}

	return s.commentRepo.GetByID(ctx, comment.ID)
}

func (s *CommentService) GetComment(ctx context.Context, id uint) (*models.Comment, error) {
	return s.commentRepo.GetByID(ctx, id)
}

func (s *CommentService) ListComments(ctx context.Context, limit, offset int) ([]*models.Comment, error) {
	return s.commentRepo.List(ctx, limit, offset)
}

func (s *CommentService) ListByPost(ctx context.Context, postID uint) ([]*models.Comment, error) {
	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		return nil, err
	}
	return s.commentRepo.ListByPost(ctx, postID)
}

func (s *CommentService) UpdateComment(ctx context.Context, in UpdateCommentInput) (*models.Comment, error) {
	comment, err := s.commentRepo.GetByID(ctx, in.CommentID)
	if err != nil {
		return nil, err
	}

	// An orphaned comment has no owner left to edit it.
	if comment.AuthorID == nil || *comment.AuthorID != in.UserID {
		return nil, models.NewUnauthorizedError("You can only update your own comments")
	}
	if err := validateCommentBody(in.Body); err != nil {
		return nil, err
	}

	comment.Body = in.Body
	if err := s.commentRepo.Update(ctx, comment); err != nil {
		return nil, err
	}

	return s.commentRepo.GetByID(ctx, comment.ID)
}

func (s *CommentService) DeleteComment(ctx context.Context, in DeleteCommentInput) error {
	comment, err := s.commentRepo.GetByID(ctx, in.CommentID)
	if err != nil {
		return err
	}

	if comment.AuthorID == nil || *comment.AuthorID != in.UserID {
		return models.NewUnauthorizedError("You can only delete your own comments")
	}

	return s.commentRepo.Delete(ctx, in.CommentID)
}

// ToggleLike flips the user's like on the comment and reports the resulting
// state as "liked" or "unliked".
func (s *CommentService) ToggleLike(ctx context.Context, userID, commentID uint) (string, error) {
	if _, err := s.commentRepo.GetByID(ctx, commentID); err != nil {
		return "", err
	}
	return toggleLike(ctx, s.likeRepo, userID, models.LikeTargetComment, commentID)
}
