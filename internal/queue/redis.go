/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// DefaultRedisTTL bounds how long an abandoned run's queue lingers.
const DefaultRedisTTL = 24 * time.Hour

// RedisConfig contains Redis connection configuration.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Key      string
	TTL      time.Duration
}

// Redis keeps the section queue in a Redis list so that several processes can
// share one section order. LPOP provides the atomic pop.
type Redis struct {
	client *redis.Client
	key    string
	ttl    time.Duration
	logger zerolog.Logger
}

// NewRedis connects to Redis and verifies the connection.
func NewRedis(ctx context.Context, cfg RedisConfig, logger zerolog.Logger) (*Redis, error) {
	if cfg.Key == "" {
		return nil, errors.New("redis queue key must be set")
	}
	if cfg.TTL < time.Second {
		cfg.TTL = DefaultRedisTTL
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &Redis{
		client: client,
		key:    cfg.Key,
		ttl:    cfg.TTL,
		logger: logger.With().Str("component", "section_queue").Str("key", cfg.Key).Logger(),
	}, nil
}

// fillScript pushes ARGV[2..] onto an absent list and sets its TTL to
// ARGV[1] seconds. A list that still holds sections belongs to a run in
// progress and is left alone. Redis drops a list once it is drained, so the
// next run fills a fresh one.
var fillScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 1 then
	return 0
end
for i = 2, #ARGV do
	redis.call('RPUSH', KEYS[1], ARGV[i])
end
redis.call('EXPIRE', KEYS[1], ARGV[1])
return 1
`)

// Fill pushes sections unless another process is still consuming the queue.
// The check and the push are one atomic step.
func (q *Redis) Fill(ctx context.Context, sections []string) error {
	if len(sections) == 0 {
		return nil
	}

	args := make([]any, 0, len(sections)+1)
	args = append(args, int64(q.ttl/time.Second))
	for _, s := range sections {
		args = append(args, s)
	}

	filled, err := fillScript.Run(ctx, q.client, []string{q.key}, args...).Int()
	if err != nil {
		return fmt.Errorf("fill queue: %w", err)
	}
	if filled == 0 {
		q.logger.Info().Msg("joining section queue filled by another process")
		return nil
	}

	q.logger.Debug().Int("sections", len(sections)).Msg("section queue filled")
	return nil
}

// Pop removes the head of the list. An empty or missing list is not an error.
func (q *Redis) Pop(ctx context.Context) (string, bool, error) {
	section, err := q.client.LPop(ctx, q.key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("pop section: %w", err)
	}
	return section, true, nil
}

// Len returns the number of sections left.
func (q *Redis) Len(ctx context.Context) (int, error) {
	n, err := q.client.LLen(ctx, q.key).Result()
	if err != nil {
		return 0, fmt.Errorf("queue length: %w", err)
	}
	return int(n), nil
}

// Close releases the Redis connection.
func (q *Redis) Close() error {
	return q.client.Close()
}
