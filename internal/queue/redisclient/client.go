package redisclient

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

type Client struct {
	redisdb *redis.Client
}

type Config struct {
	Addr     string
	Password string
	DB       int
}

func New(cfg Config) *Client {
	redisdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})

	return &Client{redisdb: redisdb}
}

// Ping checks redis connectivity.
func (c *Client) Ping(ctx context.Context) error {
	return c.redisdb.Ping(ctx).Err()
}

func (c *Client) Close() error {
	return c.redisdb.Close()
}

// Claim takes a short-lived ownership mark for key. It returns true only for
// the first caller inside the TTL window, which is what keeps several worker
// replicas from delivering the same reminder.
func (c *Client) Claim(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return c.redisdb.SetNX(ctx, key, "1", ttl).Result()
}

// Release drops a claim, used when delivery failed and a retry should be
// possible before the TTL runs out.
func (c *Client) Release(ctx context.Context, key string) error {
	return c.redisdb.Del(ctx, key).Err()
}
