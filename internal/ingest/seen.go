package ingest

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/rushnews/newsstream/pkg/logger"
)

// SeenChecker answers whether an article URL was already processed
// recently, so repeat runs skip refetching it.
type SeenChecker interface {
	Seen(ctx context.Context, url string) bool
}

// RedisSeen marks URLs in Redis with a TTL. SetNX makes check and mark
// one operation; the entry expiring means the article gets refetched,
// which the server-side upsert absorbs.
type RedisSeen struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisSeen(rdb *redis.Client) *RedisSeen {
	return &RedisSeen{rdb: rdb, ttl: 24 * time.Hour}
}

func (r *RedisSeen) Seen(ctx context.Context, url string) bool {
	sum := sha1.Sum([]byte(url))
	key := "ingest:seen:" + hex.EncodeToString(sum[:])

	set, err := r.rdb.SetNX(ctx, key, 1, r.ttl).Result()
	if err != nil {
		// Redis being down must never stall ingestion.
		logger.Warn("seen check failed", zap.Error(err))
		return false
	}
	return !set
}
