package tasks

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"panchayat/internal/queue"
)

type fakeStore struct {
	expiredAt time.Time
	purgedAt  time.Time
	removed   []string
	removeErr error
}

func (f *fakeStore) DeactivateExpired(_ context.Context, now time.Time) (int64, error) {
	f.expiredAt = now
	return 2, nil
}

func (f *fakeStore) PurgeExpiredResetTokens(_ context.Context, now time.Time) (int64, error) {
	f.purgedAt = now
	return 1, nil
}

func (f *fakeStore) RemoveObject(_ context.Context, key string) error {
	if f.removeErr != nil {
		return f.removeErr
	}
	f.removed = append(f.removed, key)
	return nil
}

func newTestProcessor(store *fakeStore, now time.Time) *Processor {
	p := NewProcessor(store, store, store, zerolog.New(io.Discard))
	p.now = func() time.Time { return now }
	return p
}

func TestHandleDispatch(t *testing.T) {
	now := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	store := &fakeStore{}
	p := newTestProcessor(store, now)
	ctx := context.Background()

	require.NoError(t, p.Handle(ctx, redis.XMessage{ID: "1-0", Values: map[string]interface{}{"type": queue.TaskPollExpiry}}))
	assert.Equal(t, now, store.expiredAt)

	require.NoError(t, p.Handle(ctx, redis.XMessage{ID: "2-0", Values: map[string]interface{}{"type": queue.TaskResetPurge}}))
	assert.Equal(t, now, store.purgedAt)

	require.NoError(t, p.Handle(ctx, redis.XMessage{ID: "3-0", Values: map[string]interface{}{
		"type":      queue.TaskObjectCleanup,
		"objectKey": "gallery/2026/05/a.jpg",
	}}))
	assert.Equal(t, []string{"gallery/2026/05/a.jpg"}, store.removed)
}

func TestHandleUnknownAndEmpty(t *testing.T) {
	store := &fakeStore{}
	p := newTestProcessor(store, time.Now())

	assert.NoError(t, p.Handle(context.Background(), redis.XMessage{ID: "1-0", Values: map[string]interface{}{"type": "nsfw"}}))
	assert.NoError(t, p.Handle(context.Background(), redis.XMessage{ID: "2-0", Values: map[string]interface{}{"type": queue.TaskObjectCleanup}}))
	assert.Empty(t, store.removed)
}

func TestHandleCleanupFailureIsReturned(t *testing.T) {
	store := &fakeStore{removeErr: errors.New("minio unavailable")}
	p := newTestProcessor(store, time.Now())

	err := p.Handle(context.Background(), redis.XMessage{ID: "1-0", Values: map[string]interface{}{
		"type":      queue.TaskObjectCleanup,
		"objectKey": "documents/x.pdf",
	}})
	assert.ErrorContains(t, err, "minio unavailable")
}
