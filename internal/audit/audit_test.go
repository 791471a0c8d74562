package audit

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"securekyc/internal/models"
)

func TestRingFeedNewestFirstAndBounded(t *testing.T) {
	ctx := context.Background()
	f := NewRingFeed(3)
	for i := 1; i <= 5; i++ {
		require.NoError(t, f.Emit(ctx, models.AuditEvent{ID: fmt.Sprint(i)}))
	}

	got, err := f.List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "5", got[0].ID)
	assert.Equal(t, "3", got[2].ID)
}

func TestRingFeedDefaultCapacity(t *testing.T) {
	ctx := context.Background()
	f := NewRingFeed(0)
	for i := 0; i < Capacity+10; i++ {
		require.NoError(t, f.Emit(ctx, models.AuditEvent{}))
	}
	got, err := f.List(ctx)
	require.NoError(t, err)
	assert.Len(t, got, Capacity)
}

type failingFeed struct{ RingFeed }

func (*failingFeed) Emit(context.Context, models.AuditEvent) error {
	return errors.New("feed down")
}

func TestEmitterSwallowsFeedErrors(t *testing.T) {
	e := NewEmitter(&failingFeed{}, zap.NewNop())
	assert.NotPanics(t, func() {
		e.Emit(context.Background(), models.EventInfo, "t", "m", "s", nil)
	})
}

func TestEmitterBuildsEvent(t *testing.T) {
	feed := NewRingFeed(10)
	e := NewEmitter(feed, nil)
	fixed := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	e.now = func() time.Time { return fixed }

	e.Emit(context.Background(), models.EventSuccess, "KYC Approved", "KYC 42 approved", "Backoffice",
		map[string]any{"record_id": "42"})

	got, err := e.List(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.NotEmpty(t, got[0].ID)
	assert.Equal(t, models.EventSuccess, got[0].Type)
	assert.Equal(t, "KYC Approved", got[0].Title)
	assert.Equal(t, "Backoffice", got[0].Source)
	assert.Equal(t, fixed, got[0].Timestamp)
	assert.Equal(t, "42", got[0].Meta["record_id"])
}

func newMiniRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisFeedTrimsAndOrders(t *testing.T) {
	ctx := context.Background()
	_, client := newMiniRedis(t)
	f := NewRedisFeed(client, "", zap.NewNop())
	f.cap = 2

	for i := 1; i <= 3; i++ {
		require.NoError(t, f.Emit(ctx, models.AuditEvent{ID: fmt.Sprint(i), Title: "KYC Submission"}))
	}

	got, err := f.List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "3", got[0].ID)
	assert.Equal(t, "2", got[1].ID)

	n, err := client.LLen(ctx, DefaultKey).Result()
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
}

func TestRedisFeedSkipsMalformedEntries(t *testing.T) {
	ctx := context.Background()
	_, client := newMiniRedis(t)
	f := NewRedisFeed(client, "audit:test", zap.NewNop())

	require.NoError(t, f.Emit(ctx, models.AuditEvent{ID: "ok"}))
	require.NoError(t, client.LPush(ctx, "audit:test", "{not json").Err())

	got, err := f.List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "ok", got[0].ID)
}

func TestOpenFeed(t *testing.T) {
	ctx := context.Background()
	log := zap.NewNop()

	assert.IsType(t, &RingFeed{}, OpenFeed(ctx, "", DefaultKey, log))
	assert.IsType(t, &RingFeed{}, OpenFeed(ctx, "::not a url", DefaultKey, log))

	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	f := OpenFeed(ctx, "redis://"+mr.Addr(), DefaultKey, log)
	require.IsType(t, &RedisFeed{}, f)
	_ = f.(*RedisFeed).Close()
}
