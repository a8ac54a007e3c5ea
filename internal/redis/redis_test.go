package redis

import (
	"testing"
	"time"

	"github.com/playmatatu/snooker/internal/config"
)

func TestOptionsFromConfig(t *testing.T) {
	cfg := &config.Config{
		RedisURL:         "redis://:secret@cache.internal:6380/2",
		RedisPoolSize:    7,
		RedisDialTimeout: 300 * time.Millisecond,
		RedisIOTimeout:   150 * time.Millisecond,
	}
	opt, err := Options(cfg)
	if err != nil {
		t.Fatalf("Options failed: %v", err)
	}
	if opt.Addr != "cache.internal:6380" || opt.DB != 2 || opt.Password != "secret" {
		t.Errorf("URL not applied: addr=%s db=%d", opt.Addr, opt.DB)
	}
	if opt.PoolSize != 7 {
		t.Errorf("PoolSize = %d, want 7", opt.PoolSize)
	}
	if opt.DialTimeout != 300*time.Millisecond {
		t.Errorf("DialTimeout = %s", opt.DialTimeout)
	}
	if opt.ReadTimeout != 150*time.Millisecond || opt.WriteTimeout != 150*time.Millisecond {
		t.Errorf("io timeouts = %s/%s", opt.ReadTimeout, opt.WriteTimeout)
	}
}

func TestOptionsKeepsURLDefaults(t *testing.T) {
	opt, err := Options(&config.Config{RedisURL: "redis://localhost:6379/0?dial_timeout=4s"})
	if err != nil {
		t.Fatalf("Options failed: %v", err)
	}
	if opt.DialTimeout != 4*time.Second {
		t.Errorf("DialTimeout = %s, want 4s from the URL", opt.DialTimeout)
	}
	if opt.PoolSize != 0 {
		t.Errorf("PoolSize = %d, want go-redis default", opt.PoolSize)
	}
}

func TestOptionsRejectsBadURL(t *testing.T) {
	if _, err := Options(&config.Config{RedisURL: "http://localhost:6379"}); err == nil {
		t.Error("expected an error for a non-redis scheme")
	}
	if _, err := Connect(&config.Config{RedisURL: "::"}); err == nil {
		t.Error("Connect should fail on an unparsable URL")
	}
}
