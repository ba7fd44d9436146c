package repository

import (
	"context"

	"inkwell/internal/models"

	"gorm.io/gorm"
)

// UserTagRepository defines interface for tag operations. Tags are
// create-only through the API; they disappear with either side.
type UserTagRepository interface {
	Create(ctx context.Context, tag *models.UserTag) error
	GetByID(ctx context.Context, id uint) (*models.UserTag, error)
}

type userTagRepository struct {
	db *gorm.DB
}

// NewUserTagRepository creates a new UserTagRepository
func NewUserTagRepository(db *gorm.DB) UserTagRepository {
	return &userTagRepository{db: db}
}

func (r *userTagRepository) Create(ctx context.Context, tag *models.UserTag) error {
	return r.db.WithContext(ctx).Create(tag).Error
}

func (r *userTagRepository) GetByID(ctx context.Context, id uint) (*models.UserTag, error) {
	var tag models.UserTag
	if err := r.db.WithContext(ctx).
		Preload("User").
		First(&tag, id).Error; err != nil {
		return nil, err
	}
	return &tag, nil
}
