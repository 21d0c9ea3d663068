package config

// Redis backs the response cache and the distributed rate limiter. If the
// server cannot be reached at startup NewRedisClient returns nil and callers
// degrade: caching is skipped and rate limiting falls back to an in-process
// limiter.

import (
	"context"
	"crypto/tls"
	"os"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// RedisConfig holds connection settings read from REDIS_* variables.
type RedisConfig struct {
	Addr        string
	Password    string
	DB          int
	TLS         bool
	PingTimeout time.Duration
	PingBudget  time.Duration // total time spent retrying the startup ping
}

// LoadRedisConfig reads REDIS_HOST/REDIS_PORT (or REDIS_ADDR), REDIS_PASSWORD,
// REDIS_DB and REDIS_TLS.
func LoadRedisConfig() RedisConfig {
	addr := os.Getenv("REDIS_ADDR")
	if host, port := os.Getenv("REDIS_HOST"), os.Getenv("REDIS_PORT"); host != "" && port != "" {
		addr = host + ":" + port
	}
	if addr == "" {
		addr = "localhost:6379"
	}
	tlsEnv := os.Getenv("REDIS_TLS")
	return RedisConfig{
		Addr:        addr,
		Password:    os.Getenv("REDIS_PASSWORD"),
		DB:          envInt("REDIS_DB", 0),
		TLS:         strings.EqualFold(tlsEnv, "true") || tlsEnv == "1",
		PingTimeout: envDur("REDIS_PING_TIMEOUT", 2*time.Second),
		PingBudget:  envDur("REDIS_CONNECT_BUDGET", 5*time.Second),
	}
}

// NewRedisClient connects using LoadRedisConfig. The returned client is nil
// if the server did not answer a ping within the retry budget.
func NewRedisClient() *redis.Client {
	return NewRedisClientWith(LoadRedisConfig())
}

func NewRedisClientWith(rc RedisConfig) *redis.Client {
	var tlsConf *tls.Config
	if rc.TLS {
		tlsConf = &tls.Config{InsecureSkipVerify: true}
	}
	client := redis.NewClient(&redis.Options{
		Addr:      rc.Addr,
		Password:  rc.Password,
		DB:        rc.DB,
		TLSConfig: tlsConf,
	})

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 200 * time.Millisecond
	b.MaxElapsedTime = rc.PingBudget
	ping := func() error {
		ctx, cancel := context.WithTimeout(context.Background(), rc.PingTimeout)
		defer cancel()
		return client.Ping(ctx).Err()
	}
	notify := func(err error, next time.Duration) {
		log.Debug().Err(err).Dur("retry_in", next).Str("addr", rc.Addr).Msg("redis ping failed")
	}
	if err := backoff.RetryNotify(ping, b, notify); err != nil {
		log.Warn().Err(err).Str("addr", rc.Addr).Msg("redis unavailable, cache and distributed rate limit disabled")
		_ = client.Close()
		return nil
	}
	return client
}
