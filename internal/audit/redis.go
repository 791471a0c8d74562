package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"securekyc/internal/models"
)

// DefaultKey is the Redis list holding the trail.
const DefaultKey = "securekyc:audit"

// RedisFeed stores the trail in a capped Redis list so every instance of
// the service shares it.
type RedisFeed struct {
	client *redis.Client
	key    string
	cap    int
	log    *zap.Logger
}

// NewRedisFeed wraps an existing client.
func NewRedisFeed(client *redis.Client, key string, log *zap.Logger) *RedisFeed {
	if key == "" {
		key = DefaultKey
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &RedisFeed{client: client, key: key, cap: Capacity, log: log}
}

func (f *RedisFeed) Emit(ctx context.Context, evt models.AuditEvent) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}
	pipe := f.client.TxPipeline()
	pipe.LPush(ctx, f.key, payload)
	pipe.LTrim(ctx, f.key, 0, int64(f.cap-1))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis audit push: %w", err)
	}
	return nil
}

func (f *RedisFeed) List(ctx context.Context) ([]models.AuditEvent, error) {
	raw, err := f.client.LRange(ctx, f.key, 0, int64(f.cap-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis audit range: %w", err)
	}
	out := make([]models.AuditEvent, 0, len(raw))
	for _, item := range raw {
		var evt models.AuditEvent
		if err := json.Unmarshal([]byte(item), &evt); err != nil {
			f.log.Warn("skipping malformed audit entry", zap.Error(err))
			continue
		}
		out = append(out, evt)
	}
	return out, nil
}

// Close closes the client.
func (f *RedisFeed) Close() error {
	return f.client.Close()
}

// OpenFeed picks the feed once at startup: Redis when redisURL is set and
// answers PING, otherwise an in-memory ring.
func OpenFeed(ctx context.Context, redisURL, key string, log *zap.Logger) Feed {
	if redisURL == "" {
		log.Info("REDIS_URL not set, using in-memory audit trail")
		return NewRingFeed(Capacity)
	}
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Warn("invalid REDIS_URL, using in-memory audit trail", zap.Error(err))
		return NewRingFeed(Capacity)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		log.Warn("redis unavailable, using in-memory audit trail", zap.Error(err))
		_ = client.Close()
		return NewRingFeed(Capacity)
	}
	log.Info("audit trail backed by redis", zap.String("key", key))
	return NewRedisFeed(client, key, log)
}
