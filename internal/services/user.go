package services

import (
	"context"
	"errors"
	"time"

	"github.com/feed-system/social-api/internal/apperror"
	"github.com/feed-system/social-api/internal/auth"
	"github.com/feed-system/social-api/internal/models"
	"github.com/feed-system/social-api/internal/repository"
	"github.com/feed-system/social-api/pkg/logger"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type UserService struct {
	store      *repository.Store
	activities *ActivityService
	logger     *logger.Logger
}

func NewUserService(store *repository.Store, activities *ActivityService, logger *logger.Logger) *UserService {
	return &UserService{
		store:      store,
		activities: activities,
		logger:     logger,
	}
}

type UserPage struct {
	Users      []*models.User    `json:"users"`
	Pagination models.Pagination `json:"pagination"`
}

type FollowersPage struct {
	Followers  []*models.User    `json:"followers"`
	Pagination models.Pagination `json:"pagination"`
}

type FollowingPage struct {
	Following  []*models.User    `json:"following"`
	Pagination models.Pagination `json:"pagination"`
}

func (s *UserService) List(ctx context.Context, offset, limit int) (*UserPage, error) {
	users, err := s.store.Users.List(ctx, offset, limit)
	if err != nil {
		return nil, apperror.Internal("Error fetching users", err)
	}
	total, err := s.store.Users.Count(ctx)
	if err != nil {
		return nil, apperror.Internal("Error fetching users", err)
	}
	return &UserPage{
		Users:      nonNilUsers(users),
		Pagination: models.NewPagination(total, len(users), limit, offset),
	}, nil
}

func (s *UserService) GetByID(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.store.Users.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.Internal("Error fetching user", err)
	}
	if user == nil {
		return nil, apperror.NotFound("User not found")
	}
	return user, nil
}

// Follow opens a new edge from the caller to targetID and records the
// transition for both users in one transaction.
func (s *UserService) Follow(ctx context.Context, principal auth.Principal, targetID uint) error {
	if principal.UserID == targetID {
		return apperror.Validation("Cannot follow yourself")
	}

	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		existing, err := tx.Follows.GetActive(ctx, principal.UserID, targetID)
		if err != nil {
			return apperror.Internal("Error following user", err)
		}
		if existing != nil {
			return apperror.Conflict("Already following this user")
		}

		follower, err := tx.Users.GetByID(ctx, principal.UserID)
		if err != nil {
			return apperror.Internal("Error following user", err)
		}
		following, err := tx.Users.GetByID(ctx, targetID)
		if err != nil {
			return apperror.Internal("Error following user", err)
		}
		if follower == nil || following == nil {
			return apperror.NotFound("User not found")
		}

		if err := tx.Follows.Create(ctx, &models.Follow{FollowerID: follower.ID, FollowingID: following.ID}); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperror.Conflict("Already following this user")
			}
			return apperror.Internal("Error following user", err)
		}

		if _, err := s.activities.Record(ctx, tx, follower.ID, models.ActivityUserFollowed, models.UserReference{UserID: following.ID}); err != nil {
			return err
		}
		_, err = s.activities.Record(ctx, tx, following.ID, models.ActivityFollowedBy, models.UserReference{UserID: follower.ID})
		return err
	})
	if err != nil {
		return err
	}

	s.logger.WithFields(logrus.Fields{
		"follower_id":  principal.UserID,
		"following_id": targetID,
	}).Info("User followed successfully")
	return nil
}

// Unfollow closes the active edge. The closed row stays as history.
func (s *UserService) Unfollow(ctx context.Context, principal auth.Principal, targetID uint) error {
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		follow, err := tx.Follows.GetActive(ctx, principal.UserID, targetID)
		if err != nil {
			return apperror.Internal("Error unfollowing user", err)
		}
		if follow == nil {
			return apperror.Validation("Not following this user")
		}

		if err := tx.Follows.Close(ctx, follow, time.Now().UTC()); err != nil {
			return apperror.Internal("Error unfollowing user", err)
		}

		if _, err := s.activities.Record(ctx, tx, follow.FollowerID, models.ActivityUserUnfollowed, models.UserReference{UserID: follow.FollowingID}); err != nil {
			return err
		}
		_, err = s.activities.Record(ctx, tx, follow.FollowingID, models.ActivityUnfollowedBy, models.UserReference{UserID: follow.FollowerID})
		return err
	})
	if err != nil {
		return err
	}

	s.logger.WithFields(logrus.Fields{
		"follower_id":  principal.UserID,
		"following_id": targetID,
	}).Info("User unfollowed successfully")
	return nil
}

func (s *UserService) Followers(ctx context.Context, userID uint, offset, limit int) (*FollowersPage, error) {
	users, err := s.store.Follows.GetFollowers(ctx, userID, offset, limit)
	if err != nil {
		return nil, apperror.Internal("Error fetching followers", err)
	}
	total, err := s.store.Follows.CountFollowers(ctx, userID)
	if err != nil {
		return nil, apperror.Internal("Error fetching followers", err)
	}
	return &FollowersPage{
		Followers:  nonNilUsers(users),
		Pagination: models.NewPagination(total, len(users), limit, offset),
	}, nil
}

func (s *UserService) Following(ctx context.Context, userID uint, offset, limit int) (*FollowingPage, error) {
	users, err := s.store.Follows.GetFollowing(ctx, userID, offset, limit)
	if err != nil {
		return nil, apperror.Internal("Error fetching following", err)
	}
	total, err := s.store.Follows.CountFollowing(ctx, userID)
	if err != nil {
		return nil, apperror.Internal("Error fetching following", err)
	}
	return &FollowingPage{
		Following:  nonNilUsers(users),
		Pagination: models.NewPagination(total, len(users), limit, offset),
	}, nil
}

func (s *UserService) Activity(ctx context.Context, userID uint, q ActivityQuery) (*ActivityPage, error) {
	return s.activities.History(ctx, userID, q)
}

func nonNilUsers(users []*models.User) []*models.User {
	if users == nil {
		return []*models.User{}
	}
	return users
}
