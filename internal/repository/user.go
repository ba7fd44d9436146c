package repository

import (
	"context"
	"errors"

	"inkwell/internal/models"

	"gorm.io/gorm"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Delete(ctx context.Context, id uint) (removedImagePaths []string, err error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByUsername returns (nil, nil) when no such user exists.
func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByEmail returns (nil, nil) when no such user exists.
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Delete removes the user and applies the per-entity cascade rules in one
// transaction: the user's posts go away (with their comments, tags and
// likes), comments the user wrote on other posts survive with a nulled
// author, and every like or tag involving the user disappears. The image
// paths of the removed posts are returned so the caller can clean up blobs
// after the transaction commits.
func (r *userRepository) Delete(ctx context.Context, id uint) ([]string, error) {
	var imagePaths []string

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var postIDs []uint
		if err := tx.Model(&models.Post{}).
			Where("author_id = ?", id).
			Pluck("id", &postIDs).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.Post{}).
			Where("author_id = ? AND image_path <> ''", id).
			Pluck("image_path", &imagePaths).Error; err != nil {
			return err
		}

		if len(postIDs) > 0 {
			var commentIDs []uint
			if err := tx.Model(&models.Comment{}).
				Where("post_id IN ?", postIDs).
				Pluck("id", &commentIDs).Error; err != nil {
				return err
			}
			if len(commentIDs) > 0 {
				if err := tx.Where("target_kind = ? AND target_id IN ?", models.LikeTargetComment, commentIDs).
					Delete(&models.Like{}).Error; err != nil {
					return err
				}
			}
			if err := tx.Where("target_kind = ? AND target_id IN ?", models.LikeTargetPost, postIDs).
				Delete(&models.Like{}).Error; err != nil {
				return err
			}
			if err := tx.Where("post_id IN ?", postIDs).Delete(&models.Comment{}).Error; err != nil {
				return err
			}
			if err := tx.Where("post_id IN ?", postIDs).Delete(&models.UserTag{}).Error; err != nil {
				return err
			}
		}

		// Comments the user wrote elsewhere survive authorless.
		if err := tx.Model(&models.Comment{}).
			Where("author_id = ?", id).
			Update("author_id", nil).Error; err != nil {
			return err
		}

		if err := tx.Where("user_id = ?", id).Delete(&models.Like{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.UserTag{}).Error; err != nil {
			return err
		}
		if err := tx.Where("author_id = ?", id).Delete(&models.Post{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.User{}, id).Error
	})
	if err != nil {
		return nil, err
	}

	return imagePaths, nil
}
