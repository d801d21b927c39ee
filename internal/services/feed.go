package services

import (
	"context"

	"github.com/feed-system/social-api/internal/apperror"
	"github.com/feed-system/social-api/internal/models"
	"github.com/feed-system/social-api/internal/repository"
	"github.com/feed-system/social-api/pkg/logger"
)

// FeedService assembles a user's feed at read time from the posts of the
// users they currently follow. Nothing is precomputed or cached.
type FeedService struct {
	store  *repository.Store
	logger *logger.Logger
}

func NewFeedService(store *repository.Store, logger *logger.Logger) *FeedService {
	return &FeedService{
		store:  store,
		logger: logger,
	}
}

func (s *FeedService) GetFeed(ctx context.Context, userID uint, offset, limit int) (*PostPage, error) {
	followingIDs, err := s.store.Follows.FollowingIDs(ctx, userID)
	if err != nil {
		return nil, apperror.Internal("Error fetching feed", err)
	}
	if len(followingIDs) == 0 {
		return &PostPage{
			Posts:      []PostResponse{},
			Pagination: models.NewPagination(0, 0, limit, offset),
		}, nil
	}

	posts, err := s.store.Posts.GetByAuthorIDs(ctx, followingIDs, offset, limit)
	if err != nil {
		return nil, apperror.Internal("Error fetching feed", err)
	}
	total, err := s.store.Posts.CountByAuthorIDs(ctx, followingIDs)
	if err != nil {
		return nil, apperror.Internal("Error fetching feed", err)
	}

	formatted, err := formatPosts(ctx, s.store.Likes, posts)
	if err != nil {
		return nil, apperror.Internal("Error fetching feed", err)
	}

	s.logger.WithField("user_id", userID).Debug("Feed assembled")
	return &PostPage{
		Posts:      formatted,
		Pagination: models.NewPagination(total, len(posts), limit, offset),
	}, nil
}
