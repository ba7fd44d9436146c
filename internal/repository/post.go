// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"

	"inkwell/internal/models"

	"gorm.io/gorm"
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	List(ctx context.Context, filter PostFilter, limit, offset int) ([]*models.Post, error)
	Count(ctx context.Context) (int64, error)
	Update(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id uint) error
	TaggedUsers(ctx context.Context, postID uint) ([]*models.User, error)
	TaggedPosts(ctx context.Context, userID uint) ([]*models.Post, error)
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

// applyDetails selects the computed columns alongside posts.* in a single
// query and joins the author for username predicates. The comment, tag and
// last-tag values are recomputed on every read, never cached on the row.
func (r *postRepository) applyDetails(db *gorm.DB) *gorm.DB {
	return db.Model(&models.Post{}).
		Select("posts.*, " +
			"(SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id) AS comments_count, " +
			"(SELECT COUNT(*) FROM user_tags WHERE user_tags.post_id = posts.id) AS tagged_count, " +
			"(SELECT MAX(user_tags.created_at) FROM user_tags WHERE user_tags.post_id = posts.id) AS last_tag_date").
		Joins("JOIN users ON users.id = posts.author_id")
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).Create(post).Error
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	err := r.applyDetails(r.db.WithContext(ctx)).
		Preload("Author").
		Where("posts.id = ?", id).
		First(&post).Error
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) List(ctx context.Context, filter PostFilter, limit, offset int) ([]*models.Post, error) {
	var posts []*models.Post
	err := filter.Apply(r.applyDetails(r.db.WithContext(ctx))).
		Preload("Author").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	return posts, err
}

func (r *postRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Post{}).Count(&count).Error
	return count, err
}

func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).Save(post).Error
}

// Delete removes the post row together with everything hanging off it:
// comments (and their likes), tags, and likes on the post itself. Likes
// carry no foreign key to their target, so their cleanup has to ride in
// the same transaction as the row deletion.
func (r *postRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var commentIDs []uint
		if err := tx.Model(&models.Comment{}).
			Where("post_id = ?", id).
			Pluck("id", &commentIDs).Error; err != nil {
			return err
		}
		if len(commentIDs) > 0 {
			if err := tx.Where("target_kind = ? AND target_id IN ?", models.LikeTargetComment, commentIDs).
				Delete(&models.Like{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("target_kind = ? AND target_id = ?", models.LikeTargetPost, id).
			Delete(&models.Like{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.UserTag{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Post{}, id).Error
	})
}

func (r *postRepository) TaggedUsers(ctx context.Context, postID uint) ([]*models.User, error) {
	var users []*models.User
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Joins("JOIN user_tags ON user_tags.user_id = users.id").
		Where("user_tags.post_id = ?", postID).
		Order("users.id").
		Find(&users).Error
	return users, err
}

func (r *postRepository) TaggedPosts(ctx context.Context, userID uint) ([]*models.Post, error) {
	var posts []*models.Post
	err := r.applyDetails(r.db.WithContext(ctx)).
		Preload("Author").
		Joins("JOIN user_tags ut ON ut.post_id = posts.id").
		Where("ut.user_id = ?", userID).
		Order("posts.id").
		Find(&posts).Error
	return posts, err
}
