package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mansoorceksport/fitcoach/internal/domain"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	stateKeyPrefix = "state:"
	quoteKey       = "quote:motivation"
)

var ErrCacheMiss = errors.New("cache miss")

// RedisCacheRepository implements domain.CacheRepository using Redis
type RedisCacheRepository struct {
	client *redis.Client
}

// NewRedisCacheRepository creates a new Redis cache repository
func NewRedisCacheRepository(client *redis.Client) *RedisCacheRepository {
	return &RedisCacheRepository{
		client: client,
	}
}

// GetState retrieves a cached client state. A miss returns nil, nil.
func (r *RedisCacheRepository) GetState(ctx context.Context, namespace string) (*domain.AppState, error) {
	var blob domain.PersistedState
	if err := r.Get(ctx, stateKeyPrefix+namespace, &blob); err != nil {
		if errors.Is(err, ErrCacheMiss) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get cached state: %w", err)
	}
	return &blob.State, nil
}

// SetState caches a client state with TTL, using the same blob shape as the durable store
func (r *RedisCacheRepository) SetState(ctx context.Context, namespace string, state domain.AppState, ttl time.Duration) error {
	if err := r.Set(ctx, stateKeyPrefix+namespace, domain.PersistedState{State: state}, ttl); err != nil {
		return fmt.Errorf("failed to cache state: %w", err)
	}
	return nil
}

// InvalidateState removes a cached client state
func (r *RedisCacheRepository) InvalidateState(ctx context.Context, namespace string) error {
	return r.Delete(ctx, stateKeyPrefix+namespace)
}

// GetQuote retrieves the cached motivational quote. A miss returns "", nil.
func (r *RedisCacheRepository) GetQuote(ctx context.Context) (string, error) {
	data, err := r.client.Get(ctx, quoteKey).Result()
	if err != nil {
		if err == redis.Nil {
			return "", nil // Cache miss
		}
		return "", fmt.Errorf("failed to get cached quote: %w", err)
	}
	return data, nil
}

// SetQuote caches the motivational quote with TTL
func (r *RedisCacheRepository) SetQuote(ctx context.Context, quote string, ttl time.Duration) error {
	if err := r.client.Set(ctx, quoteKey, quote, ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache quote: %w", err)
	}
	return nil
}

// =============================================================================
// Generic Cache Operations with OpenTelemetry Tracing
// =============================================================================

// Get retrieves a value from cache by key with OTel tracing
func (r *RedisCacheRepository) Get(ctx context.Context, key string, dest interface{}) error {
	tracer := otel.Tracer("redis")
	ctx, span := tracer.Start(ctx, "redis.Get",
		trace.WithAttributes(attribute.String("cache.key", key)),
	)
	defer span.End()

	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			span.SetAttributes(attribute.String("cache.result", "miss"))
			return ErrCacheMiss
		}
		span.RecordError(err)
		return fmt.Errorf("redis get error: %w", err)
	}

	span.SetAttributes(attribute.String("cache.result", "hit"))
	if err := json.Unmarshal(data, dest); err != nil {
		span.RecordError(err)
		return fmt.Errorf("unmarshal error: %w", err)
	}

	return nil
}

// Set stores a value in cache with TTL and OTel tracing
func (r *RedisCacheRepository) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	tracer := otel.Tracer("redis")
	ctx, span := tracer.Start(ctx, "redis.Set",
		trace.WithAttributes(
			attribute.String("cache.key", key),
			attribute.Int64("cache.ttl_seconds", int64(ttl.Seconds())),
		),
	)
	defer span.End()

	data, err := json.Marshal(value)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("marshal error: %w", err)
	}

	if err := r.client.Set(ctx, key, data, ttl).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("redis set error: %w", err)
	}

	return nil
}

// Delete removes keys from cache with OTel tracing
func (r *RedisCacheRepository) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	tracer := otel.Tracer("redis")
	ctx, span := tracer.Start(ctx, "redis.Delete",
		trace.WithAttributes(attribute.Int("cache.key_count", len(keys))),
	)
	defer span.End()

	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("redis delete error: %w", err)
	}

	return nil
}
