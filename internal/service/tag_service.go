package service

import (
	"context"

	"inkwell/internal/models"
	"inkwell/internal/repository"
)

type TagService struct {
	tagRepo  repository.UserTagRepository
	userRepo repository.UserRepository
	postRepo repository.PostRepository
}

type CreateTagInput struct {
	UserID uint
	PostID uint
}

func NewTagService(
	tagRepo repository.UserTagRepository,
	userRepo repository.UserRepository,
	postRepo repository.PostRepository,
) *TagService {
	return &TagService{
		tagRepo:  tagRepo,
		userRepo: userRepo,
		postRepo: postRepo,
	}
}

// CreateTag records a mention of a user on a post. Both sides must exist;
// tags are append-only through the API and disappear with either side.
func (s *TagService) CreateTag(ctx context.Context, in CreateTagInput) (*models.UserTag, error) {
	if in.UserID == 0 {
		return nil, models.NewValidationError("user_id is required")
	}
	if in.PostID == 0 {
		return nil, models.NewValidationError("post_id is required")
	}

	if _, err := s.userRepo.GetByID(ctx, in.UserID); err != nil {
		return nil, err
	}
	if _, err := s.postRepo.GetByID(ctx, in.PostID); err != nil {
		return nil, err
	}

	tag := &models.UserTag{
		UserID: in.UserID,
		PostID: in.PostID,
	}
	if err := s.tagRepo.Create(ctx, tag); err != nil {
		return nil, err
	}

	return s.tagRepo.GetByID(ctx, tag.ID)
}
