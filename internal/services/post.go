package services

import (
	"context"
	"strings"

	"github.com/feed-system/social-api/internal/apperror"
	"github.com/feed-system/social-api/internal/auth"
	"github.com/feed-system/social-api/internal/models"
	"github.com/feed-system/social-api/internal/repository"
	"github.com/feed-system/social-api/pkg/logger"
	"github.com/sirupsen/logrus"
)

// MaxPublicPageSize bounds the unauthenticated post listing.
const MaxPublicPageSize = 10

type PostService struct {
	store      *repository.Store
	activities *ActivityService
	logger     *logger.Logger
}

func NewPostService(store *repository.Store, activities *ActivityService, logger *logger.Logger) *PostService {
	return &PostService{
		store:      store,
		activities: activities,
		logger:     logger,
	}
}

type CreatePostRequest struct {
	Content  string   `json:"content" binding:"required,min=2,max=3000"`
	Hashtags []string `json:"hashtags" binding:"omitempty,dive,max=50"`
}

// UpdatePostRequest leaves fields that are absent untouched. A present
// hashtags array, even an empty one, replaces the post's tags.
type UpdatePostRequest struct {
	Content  *string  `json:"content" binding:"omitempty,min=2,max=3000"`
	Hashtags []string `json:"hashtags" binding:"omitempty,dive,max=50"`
}

func (s *PostService) List(ctx context.Context, offset, limit int) (*PostPage, error) {
	if limit > MaxPublicPageSize {
		limit = MaxPublicPageSize
	}

	posts, err := s.store.Posts.List(ctx, offset, limit)
	if err != nil {
		return nil, apperror.Internal("Error fetching posts", err)
	}
	total, err := s.store.Posts.Count(ctx)
	if err != nil {
		return nil, apperror.Internal("Error fetching posts", err)
	}
	return s.page(ctx, posts, total, limit, offset)
}

func (s *PostService) GetByID(ctx context.Context, id uint) (*PostResponse, error) {
	post, err := s.store.Posts.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.Internal("Error fetching post", err)
	}
	if post == nil {
		return nil, apperror.NotFound("Post not found")
	}
	return s.format(ctx, post)
}

func (s *PostService) ByHashtag(ctx context.Context, tag string, offset, limit int) (*PostPage, error) {
	hashtag, err := s.store.Hashtags.GetByTag(ctx, tag)
	if err != nil {
		return nil, apperror.Internal("Error fetching posts by hashtag", err)
	}
	if hashtag == nil {
		return nil, apperror.NotFound("Hashtag not found")
	}

	posts, err := s.store.Posts.GetByHashtagID(ctx, hashtag.ID, offset, limit)
	if err != nil {
		return nil, apperror.Internal("Error fetching posts by hashtag", err)
	}
	total, err := s.store.Posts.CountByHashtagID(ctx, hashtag.ID)
	if err != nil {
		return nil, apperror.Internal("Error fetching posts by hashtag", err)
	}
	return s.page(ctx, posts, total, limit, offset)
}

func (s *PostService) Create(ctx context.Context, principal auth.Principal, req *CreatePostRequest) (*PostResponse, error) {
	var postID uint
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		author, err := tx.Users.GetByID(ctx, principal.UserID)
		if err != nil {
			return apperror.Internal("Error creating post", err)
		}
		if author == nil {
			return apperror.NotFound("User not found")
		}

		hashtags, err := tx.Hashtags.FindOrCreateAll(ctx, NormalizeHashtags(req.Hashtags))
		if err != nil {
			return apperror.Internal("Error creating post", err)
		}

		post := &models.Post{AuthorID: author.ID, Content: req.Content, Hashtags: hashtags}
		if err := tx.Posts.Create(ctx, post); err != nil {
			return apperror.Internal("Error creating post", err)
		}
		postID = post.ID

		_, err = s.activities.Record(ctx, tx, author.ID, models.ActivityPostCreated, models.PostReference{PostID: post.ID})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"user_id": principal.UserID,
		"post_id": postID,
	}).Info("Post created successfully")
	return s.GetByID(ctx, postID)
}

func (s *PostService) Update(ctx context.Context, principal auth.Principal, id uint, req *UpdatePostRequest) (*PostResponse, error) {
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		post, err := s.ownedPost(ctx, tx, principal, id)
		if err != nil {
			return err
		}

		if req.Content != nil {
			if err := tx.Posts.UpdateContent(ctx, post, *req.Content); err != nil {
				return apperror.Internal("Error updating post", err)
			}
		}
		if req.Hashtags != nil {
			hashtags, err := tx.Hashtags.FindOrCreateAll(ctx, NormalizeHashtags(req.Hashtags))
			if err != nil {
				return apperror.Internal("Error updating post", err)
			}
			if err := tx.Posts.ReplaceHashtags(ctx, post, hashtags); err != nil {
				return apperror.Internal("Error updating post", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"user_id": principal.UserID,
		"post_id": id,
	}).Info("Post updated successfully")
	return s.GetByID(ctx, id)
}

// Delete removes the post with its likes and tag links and records the
// deletion for the author.
func (s *PostService) Delete(ctx context.Context, principal auth.Principal, id uint) error {
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		post, err := s.ownedPost(ctx, tx, principal, id)
		if err != nil {
			return err
		}
		if err := tx.Posts.Delete(ctx, post.ID); err != nil {
			return apperror.Internal("Error deleting post", err)
		}
		_, err = s.activities.Record(ctx, tx, post.AuthorID, models.ActivityPostDeleted, models.PostReference{PostID: post.ID})
		return err
	})
	if err != nil {
		return err
	}

	s.logger.WithFields(logrus.Fields{
		"user_id": principal.UserID,
		"post_id": id,
	}).Info("Post deleted successfully")
	return nil
}

func (s *PostService) ownedPost(ctx context.Context, tx *repository.Store, principal auth.Principal, id uint) (*models.Post, error) {
	post, err := tx.Posts.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.Internal("Error fetching post", err)
	}
	if post == nil {
		return nil, apperror.NotFound("Post not found")
	}
	if post.AuthorID != principal.UserID {
		return nil, apperror.Forbidden("You can only modify your own posts")
	}
	return post, nil
}

func (s *PostService) format(ctx context.Context, post *models.Post) (*PostResponse, error) {
	formatted, err := formatOne(ctx, s.store.Likes, post)
	if err != nil {
		return nil, apperror.Internal("Error formatting post", err)
	}
	return formatted, nil
}

func (s *PostService) page(ctx context.Context, posts []*models.Post, total int64, limit, offset int) (*PostPage, error) {
	formatted, err := formatPosts(ctx, s.store.Likes, posts)
	if err != nil {
		return nil, apperror.Internal("Error formatting posts", err)
	}
	return &PostPage{
		Posts:      formatted,
		Pagination: models.NewPagination(total, len(posts), limit, offset),
	}, nil
}

// NormalizeHashtags trims tags, drops blanks and removes duplicates while
// keeping first-seen order. Tags are case-sensitive.
func NormalizeHashtags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	result := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		result = append(result, tag)
	}
	return result
}
