package repository

import (
	"context"
	"log"
	"time"

	"github.com/mansoorceksport/fitcoach/internal/domain"
)

const stateCacheTTL = 30 * time.Minute

// CachedStateRepository wraps a durable state repository with Redis caching
type CachedStateRepository struct {
	durable domain.StateRepository
	cache   domain.CacheRepository
}

// NewCachedStateRepository creates a new cached state repository
func NewCachedStateRepository(durable domain.StateRepository, cache domain.CacheRepository) *CachedStateRepository {
	return &CachedStateRepository{
		durable: durable,
		cache:   cache,
	}
}

// Load reads through the cache
func (r *CachedStateRepository) Load(ctx context.Context, namespace string) (*domain.AppState, error) {
	// Try cache first
	if cached, err := r.cache.GetState(ctx, namespace); err == nil && cached != nil {
		return cached, nil
	}

	// Cache miss - fetch from the durable store
	state, err := r.durable.Load(ctx, namespace)
	if err != nil || state == nil {
		return state, err
	}

	// Store in cache (ignore cache errors)
	_ = r.cache.SetState(ctx, namespace, *state, stateCacheTTL)

	return state, nil
}

// Save writes to the durable store, then refreshes the cache
func (r *CachedStateRepository) Save(ctx context.Context, namespace string, state domain.AppState) error {
	if err := r.durable.Save(ctx, namespace, state); err != nil {
		// The cached copy may now be ahead of or behind the durable one
		_ = r.cache.InvalidateState(ctx, namespace)
		return err
	}

	if err := r.cache.SetState(ctx, namespace, state, stateCacheTTL); err != nil {
		log.Printf("Warning: failed to refresh state cache %s: %v", namespace, err)
		_ = r.cache.InvalidateState(ctx, namespace)
	}
	return nil
}
