package services

import (
	"context"
	"errors"

	"github.com/feed-system/social-api/internal/apperror"
	"github.com/feed-system/social-api/internal/auth"
	"github.com/feed-system/social-api/internal/models"
	"github.com/feed-system/social-api/internal/repository"
	"github.com/feed-system/social-api/pkg/logger"
	"gorm.io/gorm"
)

type AuthService struct {
	store       *repository.Store
	tokens      *auth.TokenManager
	revocations *auth.RevocationStore
	logger      *logger.Logger
}

func NewAuthService(store *repository.Store, tokens *auth.TokenManager, revocations *auth.RevocationStore, logger *logger.Logger) *AuthService {
	return &AuthService{
		store:       store,
		tokens:      tokens,
		revocations: revocations,
		logger:      logger,
	}
}

type RegisterRequest struct {
	FirstName string `json:"firstName" binding:"required,min=2,max=255"`
	LastName  string `json:"lastName" binding:"required,min=2,max=255"`
	Email     string `json:"email" binding:"required,email,max=255"`
	Password  string `json:"password" binding:"required,min=8,max=16"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=8,max=16"`
}

type AuthResult struct {
	Token string
	User  *models.User
}

func (s *AuthService) Register(ctx context.Context, req *RegisterRequest) (*AuthResult, error) {
	existing, err := s.store.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, apperror.Internal("Error registering user", err)
	}
	if existing != nil {
		return nil, apperror.Conflict("Email already exists")
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, apperror.Internal("Error registering user", err)
	}

	user := &models.User{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  hashed,
	}
	if err := s.store.Users.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperror.Conflict("Email already exists")
		}
		return nil, apperror.Internal("Error registering user", err)
	}

	token, _, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return nil, apperror.Internal("Error registering user", err)
	}

	s.logger.WithField("user_id", user.ID).Info("User registered successfully")
	return &AuthResult{Token: token, User: user}, nil
}

func (s *AuthService) Login(ctx context.Context, req *LoginRequest) (*AuthResult, error) {
	user, err := s.store.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, apperror.Internal("Error logging in", err)
	}
	if user == nil {
		return nil, apperror.NotFound("User not found")
	}
	if !auth.CheckPassword(user.Password, req.Password) {
		return nil, apperror.Unauthorized("Invalid credentials")
	}

	token, _, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return nil, apperror.Internal("Error logging in", err)
	}

	s.logger.WithField("user_id", user.ID).Info("User logged in successfully")
	return &AuthResult{Token: token, User: user}, nil
}

// DeleteAccount removes the caller and all of their data, then revokes the
// token that authorized the request.
func (s *AuthService) DeleteAccount(ctx context.Context, principal auth.Principal) error {
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		user, err := tx.Users.GetByID(ctx, principal.UserID)
		if err != nil {
			return apperror.Internal("Error deleting user", err)
		}
		if user == nil {
			return apperror.NotFound("User not found")
		}
		if err := tx.Users.Delete(ctx, user.ID); err != nil {
			return apperror.Internal("Error deleting user", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if err := s.revocations.Revoke(ctx, principal.TokenID, principal.ExpiresAt); err != nil {
		s.logger.WithError(err).WithField("user_id", principal.UserID).Warn("Failed to revoke token of deleted user")
	}

	s.logger.WithField("user_id", principal.UserID).Info("User deleted successfully")
	return nil
}
