package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/feed-system/social-api/internal/models"
	"gorm.io/gorm"
)

// ActivityFilter narrows one user's activity log. Empty Types means every
// type; nil bounds are open.
type ActivityFilter struct {
	UserID    uint
	Types     []models.ActivityType
	Since     *time.Time
	Until     *time.Time
	Ascending bool
	Offset    int
	Limit     int
}

type ActivityRepository struct {
	db *gorm.DB
}

func NewActivityRepository(db *gorm.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

func (r *ActivityRepository) Create(ctx context.Context, activity *models.Activity) error {
	if err := r.db.WithContext(ctx).Create(activity).Error; err != nil {
		return fmt.Errorf("failed to create activity: %w", err)
	}
	return nil
}

func (r *ActivityRepository) scope(ctx context.Context, f ActivityFilter) *gorm.DB {
	db := r.db.WithContext(ctx).Model(&models.Activity{}).Where("user_id = ?", f.UserID)
	if len(f.Types) > 0 {
		db = db.Where("type IN ?", f.Types)
	}
	if f.Since != nil {
		db = db.Where("created_at >= ?", f.Since.UTC())
	}
	if f.Until != nil {
		db = db.Where("created_at <= ?", f.Until.UTC())
	}
	return db
}

// Find returns one page of matching activities and the total match count.
func (r *ActivityRepository) Find(ctx context.Context, f ActivityFilter) ([]*models.Activity, int64, error) {
	var total int64
	if err := r.scope(ctx, f).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count activities: %w", err)
	}

	order := "created_at DESC, id DESC"
	if f.Ascending {
		order = "created_at ASC, id ASC"
	}

	var activities []*models.Activity
	if err := r.scope(ctx, f).
		Order(order).
		Offset(f.Offset).
		Limit(f.Limit).
		Find(&activities).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to get activities: %w", err)
	}
	return activities, total, nil
}
