package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-tools/internal/config"
)

// streamMaxLen caps the audit stream; trimming is approximate.
const streamMaxLen = 10000

// Redis wraps the go-redis client. Client is nil when REDIS_ADDR is unset.
type Redis struct {
	Client *redis.Client
	stream string
}

// NewRedis connects to Redis using the provided configuration.
func NewRedis(cfg config.RedisConfig, logger *zap.Logger) *Redis {
	if cfg.Addr == "" {
		logger.Warn("REDIS_ADDR not provided; audit stream disabled")
		return &Redis{stream: cfg.Stream}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		logger.Warn("unable to reach redis", zap.Error(err))
	} else {
		logger.Info("connected to redis")
	}

	return &Redis{Client: client, stream: cfg.Stream}
}

// NewRedisWithClient wraps an existing client.
func NewRedisWithClient(client *redis.Client, stream string) *Redis {
	return &Redis{Client: client, stream: stream}
}

// Enabled reports whether a client is configured.
func (r *Redis) Enabled() bool {
	return r != nil && r.Client != nil
}

// PublishEvent appends one JSON encoded event to the audit stream.
func (r *Redis) PublishEvent(ctx context.Context, eventType string, event any) error {
	if !r.Enabled() {
		return nil
	}
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal stream event: %w", err)
	}
	return r.Client.XAdd(ctx, &redis.XAddArgs{
		Stream: r.stream,
		MaxLen: streamMaxLen,
		Approx: true,
		Values: map[string]any{"type": eventType, "event": string(body)},
	}).Err()
}

// Close closes the client.
func (r *Redis) Close() {
	if r.Enabled() {
		_ = r.Client.Close()
	}
}

// Ping verifies Redis connectivity.
func (r *Redis) Ping(ctx context.Context) error {
	if !r.Enabled() {
		return errors.New("redis client not configured")
	}
	return r.Client.Ping(ctx).Err()
}
