package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Throttle admits one action per key per window.
type Throttle struct {
	client *redis.Client
	prefix string
}

func NewThrottle(client *redis.Client, prefix string) *Throttle {
	return &Throttle{client: client, prefix: prefix}
}

// Allow reports whether the action for key may run now and, if so, opens a new window.
func (t *Throttle) Allow(ctx context.Context, key string, window time.Duration) (bool, error) {
	ok, err := t.client.SetNX(ctx, t.prefix+key, "1", window).Result()
	if err != nil {
		return false, fmt.Errorf("throttle %s: %w", key, err)
	}
	return ok, nil
}
