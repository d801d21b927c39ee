package models

import (
	"time"

	"github.com/google/uuid"
)

// OutboxEvent is written in the same transaction as the change it describes
// and published to Kafka later by the relay worker.
type OutboxEvent struct {
	ID          uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	Topic       string     `json:"topic" gorm:"type:varchar(255);not null"`
	EventKey    string     `json:"event_key" gorm:"type:varchar(255)"`
	EventType   string     `json:"event_type" gorm:"type:varchar(64);not null"`
	Payload     string     `json:"payload" gorm:"type:text;not null"`
	CreatedAt   time.Time  `json:"created_at" gorm:"index"`
	PublishedAt *time.Time `json:"published_at" gorm:"index"`
}

func (OutboxEvent) TableName() string {
	return "outbox_events"
}
