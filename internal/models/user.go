package models

import "time"

type User struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	FirstName string    `json:"firstName" gorm:"type:varchar(255);not null"`
	LastName  string    `json:"lastName" gorm:"type:varchar(255);not null"`
	Email     string    `json:"email" gorm:"type:varchar(255);uniqueIndex;not null"`
	Password  string    `json:"-" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Follow is one interval of a follow relationship. UnfollowedAt == nil marks
// the active edge; at most one active edge exists per (follower, following).
type Follow struct {
	ID           uint       `json:"id" gorm:"primaryKey"`
	FollowerID   uint       `json:"followerId" gorm:"not null;index;uniqueIndex:idx_follows_active,where:unfollowed_at IS NULL"`
	FollowingID  uint       `json:"followingId" gorm:"not null;index;uniqueIndex:idx_follows_active,where:unfollowed_at IS NULL"`
	FollowedAt   time.Time  `json:"followedAt" gorm:"autoCreateTime"`
	UnfollowedAt *time.Time `json:"unfollowedAt"`

	Follower  User `json:"-" gorm:"foreignKey:FollowerID;constraint:OnDelete:CASCADE"`
	Following User `json:"-" gorm:"foreignKey:FollowingID;constraint:OnDelete:CASCADE"`
}

func (f *Follow) Active() bool {
	return f.UnfollowedAt == nil
}

func (User) TableName() string {
	return "users"
}

func (Follow) TableName() string {
	return "follows"
}
