package models

import (
	"fmt"
	"time"
)

type ActivityType string

const (
	ActivityPostCreated    ActivityType = "POST_CREATED"
	ActivityPostDeleted    ActivityType = "POST_DELETED"
	ActivityPostLiked      ActivityType = "POST_LIKED"
	ActivityUserFollowed   ActivityType = "USER_FOLLOWED"
	ActivityUserUnfollowed ActivityType = "USER_UNFOLLOWED"
	ActivityFollowedBy     ActivityType = "FOLLOWED_BY"
	ActivityUnfollowedBy   ActivityType = "UNFOLLOWED_BY"
)

// AllActivityTypes lists every type in declaration order.
var AllActivityTypes = []ActivityType{
	ActivityPostCreated,
	ActivityPostDeleted,
	ActivityPostLiked,
	ActivityUserFollowed,
	ActivityUserUnfollowed,
	ActivityFollowedBy,
	ActivityUnfollowedBy,
}

// ReferenceKind reports which reference variant the type carries.
func (t ActivityType) ReferenceKind() ReferenceKind {
	switch t {
	case ActivityPostCreated, ActivityPostDeleted, ActivityPostLiked:
		return ReferenceKindPost
	case ActivityUserFollowed, ActivityUserUnfollowed, ActivityFollowedBy, ActivityUnfollowedBy:
		return ReferenceKindUser
	default:
		return ""
	}
}

type ReferenceKind string

const (
	ReferenceKindPost ReferenceKind = "post"
	ReferenceKindUser ReferenceKind = "user"
)

// Reference is what an activity points at: either a post or another user.
type Reference interface {
	Kind() ReferenceKind
	ID() uint
	isReference()
}

type PostReference struct {
	PostID uint
}

func (r PostReference) Kind() ReferenceKind { return ReferenceKindPost }
func (r PostReference) ID() uint            { return r.PostID }
func (PostReference) isReference()          {}

type UserReference struct {
	UserID uint
}

func (r UserReference) Kind() ReferenceKind { return ReferenceKindUser }
func (r UserReference) ID() uint            { return r.UserID }
func (UserReference) isReference()          {}

// Activity is an append-only log row. Rows are never updated or deleted
// except by the cascade that removes their owner.
type Activity struct {
	ID            uint          `json:"id" gorm:"primaryKey"`
	UserID        uint          `json:"userId" gorm:"not null;index:idx_activities_user_created,priority:1"`
	Type          ActivityType  `json:"type" gorm:"type:varchar(32);not null"`
	ReferenceKind ReferenceKind `json:"referenceKind" gorm:"type:varchar(16);not null"`
	ReferenceID   uint          `json:"referenceId" gorm:"not null"`
	CreatedAt     time.Time     `json:"createdAt" gorm:"index:idx_activities_user_created,priority:2"`

	User User `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// NewActivity checks that ref is the variant the type requires.
func NewActivity(userID uint, activityType ActivityType, ref Reference) (*Activity, error) {
	if ref == nil {
		return nil, fmt.Errorf("activity %s requires a reference", activityType)
	}
	want := activityType.ReferenceKind()
	if want == "" {
		return nil, fmt.Errorf("unknown activity type %q", activityType)
	}
	if ref.Kind() != want {
		return nil, fmt.Errorf("activity %s requires a %s reference, got %s", activityType, want, ref.Kind())
	}
	return &Activity{
		UserID:        userID,
		Type:          activityType,
		ReferenceKind: ref.Kind(),
		ReferenceID:   ref.ID(),
	}, nil
}

func (a *Activity) Reference() Reference {
	if a.ReferenceKind == ReferenceKindUser {
		return UserReference{UserID: a.ReferenceID}
	}
	return PostReference{PostID: a.ReferenceID}
}

func (Activity) TableName() string {
	return "activities"
}
