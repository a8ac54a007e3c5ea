package redis

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/playmatatu/snooker/internal/config"
)

// Options builds client options from REDIS_URL and the pool settings.
// Settings left at zero keep whatever the URL or go-redis defaults chose.
func Options(cfg *config.Config) (*redis.Options, error) {
	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	if cfg.RedisPoolSize > 0 {
		opt.PoolSize = cfg.RedisPoolSize
	}
	if cfg.RedisDialTimeout > 0 {
		opt.DialTimeout = cfg.RedisDialTimeout
	}
	if cfg.RedisIOTimeout > 0 {
		opt.ReadTimeout = cfg.RedisIOTimeout
		opt.WriteTimeout = cfg.RedisIOTimeout
	}
	return opt, nil
}

// Connect opens a client for table event fan-out and state snapshots and
// pings it once. The ping is bounded by the dial timeout.
func Connect(cfg *config.Config) (*redis.Client, error) {
	opt, err := Options(cfg)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), opt.DialTimeout+time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}

	log.Printf("[REDIS] Connected to %s (db=%d pool=%d)", opt.Addr, opt.DB, opt.PoolSize)
	return client, nil
}
