package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/Pratiikpy/irys-confession-board/internal/domain"
)

const (
	trendingCachePrefix = "trending_cache:"
	trendingCacheTTL    = 5 * time.Minute
)

// TrendingCache caches ranked trending feeds per timeframe. Trending scores
// only drift as posts age, so a short TTL keeps the feed fresh enough while
// sparing the database a full-candidate scan on every request.
type TrendingCache struct {
	rdb goredis.Cmdable
}

func NewTrendingCache(rdb goredis.Cmdable) *TrendingCache {
	return &TrendingCache{rdb: rdb}
}

// Get returns the cached feed for a timeframe, or (nil, nil) on a miss.
// Redis errors and corrupt entries are treated as misses.
func (c *TrendingCache) Get(ctx context.Context, timeframe string, limit int) ([]domain.Post, error) {
	data, err := c.rdb.Get(ctx, trendingKey(timeframe, limit)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		slog.Warn("Trending cache GET failed, falling through to database",
			"timeframe", timeframe, "error", err)
		return nil, nil
	}

	var posts []domain.Post
	if err := json.Unmarshal(data, &posts); err != nil {
		slog.Warn("Failed to unmarshal cached trending feed",
			"timeframe", timeframe, "error", err)
		return nil, nil
	}
	return posts, nil
}

// Set stores a ranked feed for a timeframe (best-effort).
func (c *TrendingCache) Set(ctx context.Context, timeframe string, limit int, posts []domain.Post) {
	encoded, err := json.Marshal(posts)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, trendingKey(timeframe, limit), encoded, trendingCacheTTL).Err(); err != nil {
		slog.Warn("Failed to populate trending cache",
			"timeframe", timeframe, "error", err)
	}
}

func trendingKey(timeframe string, limit int) string {
	return fmt.Sprintf("%s%s:%d", trendingCachePrefix, timeframe, limit)
}
