package services

import (
	"context"
	"errors"

	"github.com/feed-system/social-api/internal/apperror"
	"github.com/feed-system/social-api/internal/auth"
	"github.com/feed-system/social-api/internal/models"
	"github.com/feed-system/social-api/internal/repository"
	"github.com/feed-system/social-api/pkg/logger"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type LikeService struct {
	store      *repository.Store
	activities *ActivityService
	logger     *logger.Logger
}

func NewLikeService(store *repository.Store, activities *ActivityService, logger *logger.Logger) *LikeService {
	return &LikeService{
		store:      store,
		activities: activities,
		logger:     logger,
	}
}

func (s *LikeService) LikePost(ctx context.Context, principal auth.Principal, postID uint) (*PostResponse, error) {
	var post *models.Post
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		var err error
		post, err = s.lookup(ctx, tx, principal.UserID, postID)
		if err != nil {
			return err
		}

		liked, err := tx.Likes.IsLiked(ctx, principal.UserID, postID)
		if err != nil {
			return apperror.Internal("Error liking post", err)
		}
		if liked {
			return apperror.Conflict("User has already liked this post")
		}

		if err := tx.Likes.Create(ctx, &models.Like{UserID: principal.UserID, PostID: postID}); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperror.Conflict("User has already liked this post")
			}
			return apperror.Internal("Error liking post", err)
		}

		_, err = s.activities.Record(ctx, tx, principal.UserID, models.ActivityPostLiked, models.PostReference{PostID: postID})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"user_id": principal.UserID,
		"post_id": postID,
	}).Info("Post liked successfully")
	return s.format(ctx, post)
}

// UnlikePost is idempotent: removing a like that does not exist succeeds.
func (s *LikeService) UnlikePost(ctx context.Context, principal auth.Principal, postID uint) (*PostResponse, error) {
	var post *models.Post
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		var err error
		post, err = s.lookup(ctx, tx, principal.UserID, postID)
		if err != nil {
			return err
		}
		if _, err := tx.Likes.Delete(ctx, principal.UserID, postID); err != nil {
			return apperror.Internal("Error unliking post", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"user_id": principal.UserID,
		"post_id": postID,
	}).Info("Post unliked successfully")
	return s.format(ctx, post)
}

func (s *LikeService) lookup(ctx context.Context, tx *repository.Store, userID, postID uint) (*models.Post, error) {
	user, err := tx.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, apperror.Internal("Error fetching user", err)
	}
	if user == nil {
		return nil, apperror.NotFound("User not found")
	}

	post, err := tx.Posts.GetByID(ctx, postID)
	if err != nil {
		return nil, apperror.Internal("Error fetching post", err)
	}
	if post == nil {
		return nil, apperror.NotFound("Post not found")
	}
	return post, nil
}

func (s *LikeService) format(ctx context.Context, post *models.Post) (*PostResponse, error) {
	formatted, err := formatOne(ctx, s.store.Likes, post)
	if err != nil {
		return nil, apperror.Internal("Error formatting post", err)
	}
	return formatted, nil
}
