package workers

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/feed-system/social-api/internal/config"
	"github.com/feed-system/social-api/internal/models"
	"github.com/feed-system/social-api/internal/repository"
	"github.com/feed-system/social-api/pkg/logger"
	"github.com/feed-system/social-api/pkg/queue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gormlogger "gorm.io/gorm/logger"
)

type fakePublisher struct {
	mu      sync.Mutex
	err     error
	batches [][]queue.Message
}

func (p *fakePublisher) PublishBatch(_ context.Context, messages []queue.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.batches = append(p.batches, messages)
	return nil
}

func (p *fakePublisher) published() []queue.Message {
	p.mu.Lock()
	defer p.mu.Unlock()
	var all []queue.Message
	for _, b := range p.batches {
		all = append(all, b...)
	}
	return all
}

func newTestStore(t *testing.T) *repository.Store {
	t.Helper()
	db, err := repository.NewDatabase(&config.DatabaseConfig{Driver: "sqlite", Path: ":memory:"}, gormlogger.Silent)
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate())
	t.Cleanup(func() { _ = db.Close() })
	return repository.NewStore(db.DB)
}

func seedEvents(t *testing.T, store *repository.Store, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		payload, err := json.Marshal(queue.Event{ID: "evt", Type: queue.EventPostCreated, Data: queue.ActivityEventData{UserID: 1, ReferenceKind: "post", ReferenceID: uint(i + 1)}})
		require.NoError(t, err)
		require.NoError(t, store.Outbox.Create(context.Background(), &models.OutboxEvent{
			Topic:     "activity-events",
			EventKey:  "1",
			EventType: string(queue.EventPostCreated),
			Payload:   string(payload),
		}))
	}
}

func TestRelayOnce_PublishesAndMarks(t *testing.T) {
	store := newTestStore(t)
	seedEvents(t, store, 3)
	pub := &fakePublisher{}
	relay := NewOutboxRelay(store, pub, time.Second, 2, logger.Discard())

	n, err := relay.RelayOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = relay.RelayOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = relay.RelayOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)

	msgs := pub.published()
	require.Len(t, msgs, 3)
	assert.Equal(t, "1", msgs[0].Key)
	raw, ok := msgs[0].Value.(json.RawMessage)
	require.True(t, ok)
	assert.Contains(t, string(raw), `"type":"post_created"`)

	pending, err := store.Outbox.GetUnpublished(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestRelayOnce_LeavesRowsOnPublishFailure(t *testing.T) {
	store := newTestStore(t)
	seedEvents(t, store, 2)
	pub := &fakePublisher{err: errors.New("broker down")}
	relay := NewOutboxRelay(store, pub, time.Second, 10, logger.Discard())

	_, err := relay.RelayOnce(context.Background())
	assert.Error(t, err)

	pending, err := store.Outbox.GetUnpublished(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, pending, 2)

	pub.mu.Lock()
	pub.err = nil
	pub.mu.Unlock()

	n, err := relay.RelayOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestStart_DrainsUntilStopped(t *testing.T) {
	store := newTestStore(t)
	seedEvents(t, store, 5)
	pub := &fakePublisher{}
	relay := NewOutboxRelay(store, pub, 10*time.Millisecond, 2, logger.Discard())

	stopped := make(chan struct{})
	go func() {
		relay.Start(context.Background())
		close(stopped)
	}()

	assert.Eventually(t, func() bool { return len(pub.published()) == 5 }, 2*time.Second, 10*time.Millisecond)

	relay.Stop()
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("relay did not stop")
	}
}

func TestStop_BeforeStartIsNoop(t *testing.T) {
	relay := NewOutboxRelay(newTestStore(t), &fakePublisher{}, 0, 0, logger.Discard())
	relay.Stop()
	assert.Equal(t, 2*time.Second, relay.interval)
	assert.Equal(t, 100, relay.batchSize)
}
