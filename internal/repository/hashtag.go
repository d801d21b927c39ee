package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/feed-system/social-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type HashtagRepository struct {
	db *gorm.DB
}

func NewHashtagRepository(db *gorm.DB) *HashtagRepository {
	return &HashtagRepository{db: db}
}

func (r *HashtagRepository) GetByTag(ctx context.Context, tag string) (*models.Hashtag, error) {
	var hashtag models.Hashtag
	if err := r.db.WithContext(ctx).First(&hashtag, "tag = ?", tag).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get hashtag: %w", err)
	}
	return &hashtag, nil
}

// FindOrCreate inserts the tag if absent and returns the stored row. A
// concurrent insert of the same tag is absorbed by the unique index.
func (r *HashtagRepository) FindOrCreate(ctx context.Context, tag string) (*models.Hashtag, error) {
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "tag"}}, DoNothing: true}).
		Create(&models.Hashtag{Tag: tag}).Error; err != nil {
		return nil, fmt.Errorf("failed to create hashtag: %w", err)
	}

	hashtag, err := r.GetByTag(ctx, tag)
	if err != nil {
		return nil, err
	}
	if hashtag == nil {
		return nil, fmt.Errorf("hashtag %q missing after insert", tag)
	}
	return hashtag, nil
}

func (r *HashtagRepository) FindOrCreateAll(ctx context.Context, tags []string) ([]models.Hashtag, error) {
	hashtags := make([]models.Hashtag, 0, len(tags))
	for _, tag := range tags {
		hashtag, err := r.FindOrCreate(ctx, tag)
		if err != nil {
			return nil, err
		}
		hashtags = append(hashtags, *hashtag)
	}
	return hashtags, nil
}
