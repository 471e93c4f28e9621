// Package bancache stores permanent-ban flags in Redis so request
// middleware can reject a banned user without a database round trip.
package bancache

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

type Cache struct {
	rdb *redis.Client
}

func New(rdb *redis.Client) *Cache {
	return &Cache{rdb: rdb}
}

func banKey(userID string) string {
	return "ban:" + userID
}

// SetBanned flags the user. No TTL: permanent bans never expire.
func (c *Cache) SetBanned(ctx context.Context, userID string) error {
	return c.rdb.Set(ctx, banKey(userID), "1", 0).Err()
}

func (c *Cache) IsBanned(ctx context.Context, userID string) (bool, error) {
	_, err := c.rdb.Get(ctx, banKey(userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
