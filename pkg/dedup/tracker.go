package dedup

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix  = "subpar:seen:"
	DefaultTTL  = 24 * time.Hour
)

// Tracker counts how many times each response hash has been seen.
type Tracker struct {
	Client redis.Cmdable
	TTL    time.Duration
}

func NewTracker(client redis.Cmdable) *Tracker {
	return &Tracker{Client: client, TTL: DefaultTTL}
}

func key(hash uuid.UUID) string {
	return keyPrefix + hash.String()
}

// Observe records one sighting of hash and returns the total so far, including this one.
func (t *Tracker) Observe(ctx context.Context, hash uuid.UUID) (int64, error) {
	var incr *redis.IntCmd

	_, err := t.Client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key(hash))
		pipe.Expire(ctx, key(hash), t.TTL)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("observe %s: %w", hash, err)
	}

	return incr.Val(), nil
}
