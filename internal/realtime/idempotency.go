package realtime

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// IdempotencyGuard claims request keys so that a resubmitted mutation (for
// example a double-clicked comment form) is applied exactly once. After the
// mutation commits, its result id is stored under the key so a replay can
// return the original result instead of failing.
type IdempotencyGuard interface {
	// Claim reserves the key. first is true when the caller holds the
	// reservation; otherwise stored carries the value a previous call
	// recorded with Store (empty while that call is still in flight).
	Claim(ctx context.Context, key string) (first bool, stored string, err error)
	// Store records the mutation result under a claimed key.
	Store(ctx context.Context, key, value string) error
}

type redisIdempotencyGuard struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisIdempotencyGuard builds a guard over redis SET NX.
func NewRedisIdempotencyGuard(client *redis.Client, ttl time.Duration) IdempotencyGuard {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &redisIdempotencyGuard{client: client, ttl: ttl}
}

func (g *redisIdempotencyGuard) Claim(ctx context.Context, key string) (bool, string, error) {
	if g.client == nil {
		return true, "", nil
	}
	first, err := g.client.SetNX(ctx, "idem:"+key, "", g.ttl).Result()
	if err != nil {
		return false, "", err
	}
	if first {
		return true, "", nil
	}
	stored, err := g.client.Get(ctx, "idem:"+key).Result()
	if err != nil && err != redis.Nil {
		return false, "", err
	}
	return false, stored, nil
}

func (g *redisIdempotencyGuard) Store(ctx context.Context, key, value string) error {
	if g.client == nil {
		return nil
	}
	return g.client.Set(ctx, "idem:"+key, value, redis.KeepTTL).Err()
}
