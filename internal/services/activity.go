package services

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/feed-system/social-api/internal/apperror"
	"github.com/feed-system/social-api/internal/models"
	"github.com/feed-system/social-api/internal/repository"
	"github.com/feed-system/social-api/pkg/logger"
	"github.com/feed-system/social-api/pkg/queue"
	"github.com/google/uuid"
)

var eventTypes = map[models.ActivityType]queue.EventType{
	models.ActivityPostCreated:    queue.EventPostCreated,
	models.ActivityPostDeleted:    queue.EventPostDeleted,
	models.ActivityPostLiked:      queue.EventPostLiked,
	models.ActivityUserFollowed:   queue.EventUserFollowed,
	models.ActivityUserUnfollowed: queue.EventUserUnfollowed,
	models.ActivityFollowedBy:     queue.EventFollowedBy,
	models.ActivityUnfollowedBy:   queue.EventUnfollowedBy,
}

var activityTypeGroups = map[string][]models.ActivityType{
	"post": {models.ActivityPostCreated, models.ActivityPostDeleted},
	"like": {models.ActivityPostLiked},
	"follow": {
		models.ActivityUserFollowed,
		models.ActivityUserUnfollowed,
		models.ActivityFollowedBy,
		models.ActivityUnfollowedBy,
	},
}

// ActivityService appends to the activity log and answers history queries.
type ActivityService struct {
	store       *repository.Store
	outboxTopic string
	logger      *logger.Logger
}

// NewActivityService returns a service that also writes an outbox event for
// every recorded activity when outboxTopic is non-empty.
func NewActivityService(store *repository.Store, outboxTopic string, logger *logger.Logger) *ActivityService {
	return &ActivityService{
		store:       store,
		outboxTopic: outboxTopic,
		logger:      logger,
	}
}

// Record must be called with the caller's transaction so the activity and
// its outbox event commit together with the change they describe.
func (s *ActivityService) Record(ctx context.Context, tx *repository.Store, userID uint, activityType models.ActivityType, ref models.Reference) (*models.Activity, error) {
	activity, err := models.NewActivity(userID, activityType, ref)
	if err != nil {
		return nil, apperror.Internal("Failed to record activity", err)
	}
	if err := tx.Activities.Create(ctx, activity); err != nil {
		return nil, apperror.Internal("Failed to record activity", err)
	}

	if s.outboxTopic == "" {
		return activity, nil
	}

	eventID := uuid.New()
	event := queue.Event{
		ID:        eventID.String(),
		Type:      eventTypes[activityType],
		Timestamp: activity.CreatedAt,
		Data: queue.ActivityEventData{
			ActivityID:    activity.ID,
			UserID:        userID,
			ReferenceKind: string(activity.ReferenceKind),
			ReferenceID:   activity.ReferenceID,
		},
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, apperror.Internal("Failed to record activity", err)
	}
	if err := tx.Outbox.Create(ctx, &models.OutboxEvent{
		ID:        eventID,
		Topic:     s.outboxTopic,
		EventKey:  strconv.FormatUint(uint64(userID), 10),
		EventType: string(event.Type),
		Payload:   string(payload),
	}); err != nil {
		return nil, apperror.Internal("Failed to record activity", err)
	}
	return activity, nil
}

type ActivityQuery struct {
	Type      string
	StartDate string
	EndDate   string
	Sort      string
	Limit     int
	Offset    int
}

type ActivityPage struct {
	Activities []ActivityResponse `json:"activities"`
	Pagination models.Pagination  `json:"pagination"`
}

// History returns one page of the user's own activity stream.
func (s *ActivityService) History(ctx context.Context, userID uint, q ActivityQuery) (*ActivityPage, error) {
	since, err := parseTimeBound(q.StartDate, false)
	if err != nil {
		return nil, apperror.Validation("Invalid startDate")
	}
	until, err := parseTimeBound(q.EndDate, true)
	if err != nil {
		return nil, apperror.Validation("Invalid endDate")
	}

	filter := repository.ActivityFilter{
		UserID:    userID,
		Types:     activityTypeGroups[strings.ToLower(q.Type)],
		Since:     since,
		Until:     until,
		Ascending: q.Sort == "asc",
		Offset:    q.Offset,
		Limit:     q.Limit,
	}

	activities, total, err := s.store.Activities.Find(ctx, filter)
	if err != nil {
		return nil, apperror.Internal("Error fetching user activity", err)
	}

	var refIDs []uint
	for _, a := range activities {
		if ref, ok := a.Reference().(models.UserReference); ok {
			refIDs = append(refIDs, ref.UserID)
		}
	}
	users, err := s.store.Users.GetByIDs(ctx, refIDs)
	if err != nil {
		return nil, apperror.Internal("Error fetching user activity", err)
	}

	return &ActivityPage{
		Activities: FormatActivities(activities, users),
		Pagination: models.NewPagination(total, len(activities), q.Limit, q.Offset),
	}, nil
}

// parseTimeBound accepts RFC 3339 timestamps or plain dates. A plain date
// used as an upper bound covers the whole day.
func parseTimeBound(value string, endOfDay bool) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return &t, nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil, err
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}
