package redis

import (
	"context"
	"fmt"
	"net"

	"github.com/ikkim/replydesk-backend/config"
	"github.com/ikkim/replydesk-backend/pkg/logger"
	"github.com/redis/go-redis/v9"
)

var client *redis.Client

// newClient builds a client sized for short quota scripts: small pool, tight
// read/write deadlines so a slow Redis fails the reservation instead of the request hanging.
func newClient(cfg *config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         net.JoinHostPort(cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})
}

// Init connects the quota counter store and verifies it answers.
func Init(cfg *config.RedisConfig) error {
	c := newClient(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.DialTimeout)
	defer cancel()

	if err := c.Ping(ctx).Err(); err != nil {
		c.Close()
		logger.Error("Quota store unreachable", err, map[string]interface{}{
			"addr": c.Options().Addr,
			"db":   cfg.DB,
		})
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	client = c
	logger.Info("Quota store connected", map[string]interface{}{
		"addr":      c.Options().Addr,
		"db":        cfg.DB,
		"pool_size": cfg.PoolSize,
	})
	return nil
}

// GetClient returns the Redis client instance
func GetClient() *redis.Client {
	return client
}

func Close() error {
	if client == nil {
		return nil
	}
	err := client.Close()
	client = nil
	return err
}
