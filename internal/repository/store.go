package repository

import (
	"context"

	"gorm.io/gorm"
)

// Store groups the repositories that share one *gorm.DB. Inside
// Transaction every repository on the tx Store runs in the same
// database transaction.
type Store struct {
	db *gorm.DB

	Users      *UserRepository
	Posts      *PostRepository
	Hashtags   *HashtagRepository
	Likes      *LikeRepository
	Follows    *FollowRepository
	Activities *ActivityRepository
	Outbox     *OutboxRepository
}

func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:         db,
		Users:      NewUserRepository(db),
		Posts:      NewPostRepository(db),
		Hashtags:   NewHashtagRepository(db),
		Likes:      NewLikeRepository(db),
		Follows:    NewFollowRepository(db),
		Activities: NewActivityRepository(db),
		Outbox:     NewOutboxRepository(db),
	}
}

// Transaction commits when fn returns nil and rolls back otherwise.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}
