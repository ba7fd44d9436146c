package repository

import (
	"context"

	"inkwell/internal/models"

	"gorm.io/gorm"
)

// LikeRepository defines interface for like operations on posts and comments.
type LikeRepository interface {
	IsLiked(ctx context.Context, userID uint, kind models.LikeTarget, targetID uint) (bool, error)
	Like(ctx context.Context, userID uint, kind models.LikeTarget, targetID uint) error
	Unlike(ctx context.Context, userID uint, kind models.LikeTarget, targetID uint) error
	CountForTarget(ctx context.Context, kind models.LikeTarget, targetID uint) (int64, error)
}

type likeRepository struct {
	db *gorm.DB
}

// NewLikeRepository creates a new LikeRepository
func NewLikeRepository(db *gorm.DB) LikeRepository {
	return &likeRepository{db: db}
}

func (r *likeRepository) IsLiked(ctx context.Context, userID uint, kind models.LikeTarget, targetID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("user_id = ? AND target_kind = ? AND target_id = ?", userID, kind, targetID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Like inserts the row; the unique index on (user, kind, target) turns a
// racing second insert into gorm.ErrDuplicatedKey for the caller to map.
func (r *likeRepository) Like(ctx context.Context, userID uint, kind models.LikeTarget, targetID uint) error {
	like := models.Like{
		UserID:     userID,
		TargetKind: kind,
		TargetID:   targetID,
	}
	return r.db.WithContext(ctx).Create(&like).Error
}

func (r *likeRepository) Unlike(ctx context.Context, userID uint, kind models.LikeTarget, targetID uint) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND target_kind = ? AND target_id = ?", userID, kind, targetID).
		Delete(&models.Like{}).Error
}

func (r *likeRepository) CountForTarget(ctx context.Context, kind models.LikeTarget, targetID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("target_kind = ? AND target_id = ?", kind, targetID).
		Count(&count).Error
	return count, err
}
