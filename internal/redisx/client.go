package redisx

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

func New(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
}

// Dedup remembers processed ids per service for TTL.
type Dedup struct {
	RDB     *redis.Client
	Service string
	TTL     time.Duration
}

// FirstSeen atomically marks id as processed and reports whether this call
// was the first to do so.
func (d *Dedup) FirstSeen(ctx context.Context, id string) (bool, error) {
	ttl := d.TTL
	if ttl == 0 {
		ttl = TTLDedup
	}
	return d.RDB.SetNX(ctx, fmt.Sprintf(KeyDedup, d.Service, id), "1", ttl).Result()
}

// Forget drops the mark so a failed message can be processed again.
func (d *Dedup) Forget(ctx context.Context, id string) error {
	return d.RDB.Del(ctx, fmt.Sprintf(KeyDedup, d.Service, id)).Err()
}
