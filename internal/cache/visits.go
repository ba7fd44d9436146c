package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"inkwell/internal/middleware"

	"github.com/redis/go-redis/v9"
)

// VisitKey returns the counter-store key for a post's visit counter.
func VisitKey(postID uint) string {
	return fmt.Sprintf("post:%d:visits", postID)
}

// VisitCounter counts successful reads of post detail pages in Redis.
//
// All operations are best-effort: a missing key reads as zero and store
// failures are logged, never surfaced, so the counter can never fail a
// request. Increments use the store's atomic INCR, which is the only
// concurrency control needed.
type VisitCounter struct {
	rdb *redis.Client
}

// NewVisitCounter wraps the given Redis client. A nil client yields a
// counter that reads zero and drops increments.
func NewVisitCounter(rdb *redis.Client) *VisitCounter {
	return &VisitCounter{rdb: rdb}
}

// Increment adds one visit to the post's counter.
func (v *VisitCounter) Increment(ctx context.Context, postID uint) {
	if v == nil || v.rdb == nil {
		return
	}
	if err := v.rdb.Incr(ctx, VisitKey(postID)).Err(); err != nil {
		middleware.Logger.WarnContext(ctx, "visit counter increment failed",
			"post_id", postID, "error", err)
		return
	}
	middleware.VisitIncrements.Inc()
}

// Count returns the post's visit count; absent keys and store failures read as zero.
func (v *VisitCounter) Count(ctx context.Context, postID uint) int64 {
	if v == nil || v.rdb == nil {
		return 0
	}
	s, err := v.rdb.Get(ctx, VisitKey(postID)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			middleware.Logger.WarnContext(ctx, "visit counter read failed",
				"post_id", postID, "error", err)
		}
		return 0
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		middleware.Logger.WarnContext(ctx, "visit counter holds non-numeric value",
			"post_id", postID, "value", s)
		return 0
	}
	return n
}
