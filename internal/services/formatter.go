package services

import (
	"context"
	"fmt"
	"time"

	"github.com/feed-system/social-api/internal/models"
	"github.com/feed-system/social-api/internal/repository"
)

type AuthorResponse struct {
	ID        uint   `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

type PostResponse struct {
	ID        uint           `json:"id"`
	Content   string         `json:"content"`
	CreatedAt time.Time      `json:"createdAt"`
	Author    AuthorResponse `json:"author"`
	LikeCount int64          `json:"likeCount"`
	Hashtags  []string       `json:"hashtags"`
}

type PostPage struct {
	Posts      []PostResponse    `json:"posts"`
	Pagination models.Pagination `json:"pagination"`
}

type ActivityResponse struct {
	ID        uint                `json:"id"`
	Type      models.ActivityType `json:"type"`
	Action    string              `json:"action"`
	CreatedAt time.Time           `json:"createdAt"`
}

func FormatPost(post *models.Post, likeCount int64) PostResponse {
	tags := make([]string, 0, len(post.Hashtags))
	for _, h := range post.Hashtags {
		tags = append(tags, h.Tag)
	}
	return PostResponse{
		ID:        post.ID,
		Content:   post.Content,
		CreatedAt: post.CreatedAt,
		Author: AuthorResponse{
			ID:        post.Author.ID,
			FirstName: post.Author.FirstName,
			LastName:  post.Author.LastName,
			Email:     post.Author.Email,
		},
		LikeCount: likeCount,
		Hashtags:  tags,
	}
}

// formatPosts loads like counts for the whole page with one query.
func formatPosts(ctx context.Context, likes *repository.LikeRepository, posts []*models.Post) ([]PostResponse, error) {
	ids := make([]uint, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}
	counts, err := likes.CountByPostIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	result := make([]PostResponse, len(posts))
	for i, p := range posts {
		result[i] = FormatPost(p, counts[p.ID])
	}
	return result, nil
}

func formatOne(ctx context.Context, likes *repository.LikeRepository, post *models.Post) (*PostResponse, error) {
	formatted, err := formatPosts(ctx, likes, []*models.Post{post})
	if err != nil {
		return nil, err
	}
	return &formatted[0], nil
}

// FormatActivities renders each activity as a sentence from the owner's
// point of view. users holds the counterparts of follow-type activities.
func FormatActivities(activities []*models.Activity, users map[uint]*models.User) []ActivityResponse {
	result := make([]ActivityResponse, len(activities))
	for i, a := range activities {
		result[i] = ActivityResponse{
			ID:        a.ID,
			Type:      a.Type,
			Action:    describeActivity(a, users),
			CreatedAt: a.CreatedAt,
		}
	}
	return result
}

func describeActivity(a *models.Activity, users map[uint]*models.User) string {
	name := func(fallback string) string {
		if u, ok := users[a.ReferenceID]; ok && a.ReferenceKind == models.ReferenceKindUser {
			return u.FirstName
		}
		return fallback
	}

	switch a.Type {
	case models.ActivityPostCreated:
		return fmt.Sprintf("You created post %d", a.ReferenceID)
	case models.ActivityPostDeleted:
		return fmt.Sprintf("You deleted post %d", a.ReferenceID)
	case models.ActivityPostLiked:
		return fmt.Sprintf("You liked post %d", a.ReferenceID)
	case models.ActivityUserFollowed:
		return "You started following " + name("a user")
	case models.ActivityUserUnfollowed:
		return "You unfollowed " + name("a user")
	case models.ActivityFollowedBy:
		return name("Someone") + " started following you"
	case models.ActivityUnfollowedBy:
		return name("Someone") + " unfollowed you"
	default:
		return "Unknown activity"
	}
}
