package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"bookshelf/src/internal/bookmeta"
	"bookshelf/src/internal/lookup"
)

// KeyPrefix namespaces lookup entries in Redis.
const KeyPrefix = "shelf:lookup:"

// Redis stores JSON-encoded results with a TTL. Redis failures are logged
// and treated as misses so a cache outage never fails a lookup.
type Redis struct {
	counters
	rdb    redis.Cmdable
	ttl    time.Duration
	logger *slog.Logger
}

// NewRedis wraps an existing client. A non-positive ttl stores without expiry.
func NewRedis(rdb redis.Cmdable, ttl time.Duration, logger *slog.Logger) *Redis {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Redis{rdb: rdb, ttl: ttl, logger: logger}
}

// DialRedis connects to addr and verifies the server with PING.
func DialRedis(ctx context.Context, addr string, ttl time.Duration, logger *slog.Logger) (*Redis, *redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, nil, err
	}
	return NewRedis(rdb, ttl, logger), rdb, nil
}

func redisKey(k lookup.Key) string { return KeyPrefix + k.String() }

func (c *Redis) Get(ctx context.Context, k lookup.Key) ([]bookmeta.BookRecord, bool) {
	b, err := c.rdb.Get(ctx, redisKey(k)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.WarnContext(ctx, "redis cache read failed", "key", k.String(), "err", err)
		}
		c.record(false)
		return nil, false
	}
	recs, err := decodeRecords(b)
	if err != nil {
		c.logger.WarnContext(ctx, "redis cache entry unreadable", "key", k.String(), "err", err)
		c.record(false)
		return nil, false
	}
	c.record(true)
	return recs, true
}

func (c *Redis) Put(ctx context.Context, k lookup.Key, recs []bookmeta.BookRecord) {
	b, err := encodeRecords(recs)
	if err != nil {
		c.logger.WarnContext(ctx, "redis cache encode failed", "key", k.String(), "err", err)
		return
	}
	if err := c.rdb.Set(ctx, redisKey(k), b, c.ttl).Err(); err != nil {
		c.logger.WarnContext(ctx, "redis cache write failed", "key", k.String(), "err", err)
	}
}

func encodeRecords(recs []bookmeta.BookRecord) ([]byte, error) {
	if recs == nil {
		recs = []bookmeta.BookRecord{}
	}
	return json.Marshal(recs)
}

func decodeRecords(b []byte) ([]bookmeta.BookRecord, error) {
	var recs []bookmeta.BookRecord
	if err := json.Unmarshal(b, &recs); err != nil {
		return nil, err
	}
	if recs == nil {
		recs = []bookmeta.BookRecord{}
	}
	return recs, nil
}
