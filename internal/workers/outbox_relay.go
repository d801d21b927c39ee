package workers

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/feed-system/social-api/internal/models"
	"github.com/feed-system/social-api/internal/repository"
	"github.com/feed-system/social-api/pkg/logger"
	"github.com/feed-system/social-api/pkg/queue"
	"github.com/google/uuid"
)

type Publisher interface {
	PublishBatch(ctx context.Context, messages []queue.Message) error
}

// OutboxRelay forwards committed outbox rows to the broker. Rows stay
// unpublished when the broker rejects a batch and are retried next tick,
// so delivery is at-least-once.
type OutboxRelay struct {
	store     *repository.Store
	publisher Publisher
	interval  time.Duration
	batchSize int
	logger    *logger.Logger
	now       func() time.Time

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewOutboxRelay(store *repository.Store, publisher Publisher, interval time.Duration, batchSize int, logger *logger.Logger) *OutboxRelay {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	if batchSize <= 0 {
		batchSize = 100
	}
	return &OutboxRelay{
		store:     store,
		publisher: publisher,
		interval:  interval,
		batchSize: batchSize,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Start polls until ctx is cancelled or Stop is called.
func (r *OutboxRelay) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	r.mu.Lock()
	r.cancel = cancel
	r.done = done
	r.mu.Unlock()

	defer close(done)

	r.logger.WithFields(map[string]interface{}{
		"interval":   r.interval.String(),
		"batch_size": r.batchSize,
	}).Info("Starting outbox relay")

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("Outbox relay stopped")
			return
		case <-ticker.C:
			for {
				n, err := r.RelayOnce(ctx)
				if err != nil {
					r.logger.WithError(err).Warn("Outbox relay batch failed")
					break
				}
				// drain backlog without waiting for the next tick
				if n < r.batchSize || ctx.Err() != nil {
					break
				}
			}
		}
	}
}

func (r *OutboxRelay) Stop() {
	r.mu.Lock()
	cancel, done := r.cancel, r.done
	r.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// RelayOnce publishes one batch of pending events and returns how many
// were marked published.
func (r *OutboxRelay) RelayOnce(ctx context.Context) (int, error) {
	events, err := r.store.Outbox.GetUnpublished(ctx, r.batchSize)
	if err != nil {
		return 0, err
	}
	if len(events) == 0 {
		return 0, nil
	}

	if err := r.publisher.PublishBatch(ctx, toMessages(events)); err != nil {
		return 0, err
	}

	ids := make([]uuid.UUID, len(events))
	for i, e := range events {
		ids[i] = e.ID
	}
	if err := r.store.Outbox.MarkPublished(ctx, ids, r.now()); err != nil {
		return 0, err
	}

	r.logger.WithField("count", len(events)).Debug("Relayed outbox events")
	return len(events), nil
}

func toMessages(events []*models.OutboxEvent) []queue.Message {
	messages := make([]queue.Message, len(events))
	for i, e := range events {
		messages[i] = queue.Message{
			Key:   e.EventKey,
			Value: json.RawMessage(e.Payload),
			Topic: e.Topic,
		}
	}
	return messages
}
