package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/feed-system/social-api/internal/models"
	"gorm.io/gorm"
)

const newestFirst = "posts.created_at DESC, posts.id DESC"

type PostRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) *PostRepository {
	return &PostRepository{db: db}
}

func orderedHashtags(db *gorm.DB) *gorm.DB {
	return db.Order("hashtags.id ASC")
}

func (r *PostRepository) withRelations(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Author").
		Preload("Hashtags", orderedHashtags)
}

// Create inserts the post and its hashtag links. Hashtags must already exist.
func (r *PostRepository) Create(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Omit("Hashtags.*").Create(post).Error; err != nil {
		return fmt.Errorf("failed to create post: %w", err)
	}
	return nil
}

func (r *PostRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := r.withRelations(ctx).First(&post, "posts.id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get post: %w", err)
	}
	return &post, nil
}

func (r *PostRepository) List(ctx context.Context, offset, limit int) ([]*models.Post, error) {
	var posts []*models.Post
	if err := r.withRelations(ctx).
		Order(newestFirst).
		Offset(offset).
		Limit(limit).
		Find(&posts).Error; err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	return posts, nil
}

func (r *PostRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Post{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count posts: %w", err)
	}
	return count, nil
}

func (r *PostRepository) GetByAuthorIDs(ctx context.Context, authorIDs []uint, offset, limit int) ([]*models.Post, error) {
	var posts []*models.Post
	if err := r.withRelations(ctx).
		Where("posts.author_id IN ?", authorIDs).
		Order(newestFirst).
		Offset(offset).
		Limit(limit).
		Find(&posts).Error; err != nil {
		return nil, fmt.Errorf("failed to get posts by authors: %w", err)
	}
	return posts, nil
}

func (r *PostRepository) CountByAuthorIDs(ctx context.Context, authorIDs []uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("author_id IN ?", authorIDs).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count posts by authors: %w", err)
	}
	return count, nil
}

func (r *PostRepository) GetByHashtagID(ctx context.Context, hashtagID uint, offset, limit int) ([]*models.Post, error) {
	var posts []*models.Post
	if err := r.withRelations(ctx).
		Select("posts.*").
		Joins("JOIN post_hashtags ON post_hashtags.post_id = posts.id").
		Where("post_hashtags.hashtag_id = ?", hashtagID).
		Order(newestFirst).
		Offset(offset).
		Limit(limit).
		Find(&posts).Error; err != nil {
		return nil, fmt.Errorf("failed to get posts by hashtag: %w", err)
	}
	return posts, nil
}

func (r *PostRepository) CountByHashtagID(ctx context.Context, hashtagID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Joins("JOIN post_hashtags ON post_hashtags.post_id = posts.id").
		Where("post_hashtags.hashtag_id = ?", hashtagID).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count posts by hashtag: %w", err)
	}
	return count, nil
}

func (r *PostRepository) UpdateContent(ctx context.Context, post *models.Post, content string) error {
	if err := r.db.WithContext(ctx).
		Model(post).
		Update("content", content).Error; err != nil {
		return fmt.Errorf("failed to update post: %w", err)
	}
	return nil
}

// ReplaceHashtags makes hashtags the post's complete tag set.
func (r *PostRepository) ReplaceHashtags(ctx context.Context, post *models.Post, hashtags []models.Hashtag) error {
	if err := r.db.WithContext(ctx).
		Model(post).
		Association("Hashtags").
		Replace(hashtags); err != nil {
		return fmt.Errorf("failed to replace hashtags: %w", err)
	}
	return nil
}

// Delete removes the post together with its likes and hashtag links.
func (r *PostRepository) Delete(ctx context.Context, id uint) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("post_id = ?", id).Delete(&models.Like{}).Error; err != nil {
		return fmt.Errorf("failed to delete likes: %w", err)
	}
	if err := db.Exec("DELETE FROM post_hashtags WHERE post_id = ?", id).Error; err != nil {
		return fmt.Errorf("failed to delete hashtag links: %w", err)
	}
	if err := db.Delete(&models.Post{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}
	return nil
}
