package config

import (
	"crypto/tls"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Fallbacks for a RedisConfig built in code rather than loaded from env.
const (
	defaultRedisDialTimeout = 5 * time.Second
	defaultRedisIOTimeout   = 3 * time.Second
	defaultRedisIdleTime    = 30 * time.Minute
	defaultRedisLifetime    = time.Hour
)

// RedisOptions turns cfg into client options. REDIS_URL, when set, supplies
// the address, credentials, database and TLS mode; the pool and timeout
// settings always come from cfg.
//
// Realtime writes hold one pooled connection per WATCH transaction, so the
// pool timeout follows the read timeout to let contended writers queue.
func RedisOptions(cfg *RedisConfig) (*redis.Options, error) {
	opts := &redis.Options{
		Addr:     cfg.GetAddr(),
		Password: cfg.Password,
		DB:       cfg.Database,
	}
	if cfg.URL != "" {
		parsed, err := redis.ParseURL(cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
		}
		opts = parsed
	} else if cfg.EnableTLS {
		opts.TLSConfig = &tls.Config{ServerName: cfg.Host, MinVersion: tls.VersionTLS12}
	}

	opts.MaxRetries = cfg.MaxRetries
	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns
	opts.DialTimeout = orDefault(cfg.DialTimeout, defaultRedisDialTimeout)
	opts.ReadTimeout = orDefault(cfg.ReadTimeout, defaultRedisIOTimeout)
	opts.WriteTimeout = orDefault(cfg.WriteTimeout, defaultRedisIOTimeout)
	opts.PoolTimeout = opts.ReadTimeout + time.Second
	opts.ConnMaxIdleTime = orDefault(cfg.ConnMaxIdleTime, defaultRedisIdleTime)
	opts.ConnMaxLifetime = orDefault(cfg.ConnMaxLifetime, defaultRedisLifetime)
	return opts, nil
}

// NewRedisClient creates a Redis client from cfg
func NewRedisClient(cfg *RedisConfig) (*redis.Client, error) {
	opts, err := RedisOptions(cfg)
	if err != nil {
		return nil, err
	}
	return redis.NewClient(opts), nil
}

func orDefault(d, fallback time.Duration) time.Duration {
	if d <= 0 {
		return fallback
	}
	return d
}
