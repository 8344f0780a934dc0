package redis

import (
	"context"
	"errors"
	"time"

	"github.com/ikkim/replydesk-backend/pkg/logger"
	"github.com/redis/go-redis/v9"
)

// incrementBelowScript increments KEYS[1] only while it is below ARGV[1].
// Returns the new value, or -1 when the limit was already reached.
var incrementBelowScript = redis.NewScript(`
local current = tonumber(redis.call('GET', KEYS[1]) or '0')
if current >= tonumber(ARGV[1]) then
  return -1
end
current = redis.call('INCR', KEYS[1])
if current == 1 then
  redis.call('EXPIRE', KEYS[1], ARGV[2])
end
return current
`)

// decrementScript never takes the counter below zero.
var decrementScript = redis.NewScript(`
local current = tonumber(redis.call('GET', KEYS[1]) or '0')
if current > 0 then
  return redis.call('DECR', KEYS[1])
end
return 0
`)

// Counter is an atomic bounded counter stored in Redis.
type Counter struct {
	client *redis.Client
}

func NewCounter(client *redis.Client) *Counter {
	return &Counter{client: client}
}

// IncrementBelow adds one to key unless it already holds limit or more.
// ttl is applied when the key is created.
func (c *Counter) IncrementBelow(ctx context.Context, key string, limit int64, ttl time.Duration) (int64, bool, error) {
	res, err := incrementBelowScript.Run(ctx, c.client, []string{key}, limit, int64(ttl.Seconds())).Int64()
	if err != nil {
		logger.Error("Failed to increment counter", err, map[string]interface{}{
			"key": key,
		})
		return 0, false, err
	}
	if res < 0 {
		return limit, false, nil
	}
	return res, true, nil
}

// Decrement takes one off key, stopping at zero.
func (c *Counter) Decrement(ctx context.Context, key string) error {
	if err := decrementScript.Run(ctx, c.client, []string{key}).Err(); err != nil {
		logger.Error("Failed to decrement counter", err, map[string]interface{}{
			"key": key,
		})
		return err
	}
	return nil
}

// Get returns the counter value; a missing key reads as zero.
func (c *Counter) Get(ctx context.Context, key string) (int64, error) {
	val, err := c.client.Get(ctx, key).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return val, err
}
