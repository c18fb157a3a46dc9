package store

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/mansoorceksport/fitcoach/internal/domain"
	"golang.org/x/sync/singleflight"
)

const (
	loadTimeout        = 10 * time.Second
	DefaultIdleTimeout = 30 * time.Minute
)

type entry struct {
	store    *Store
	refs     int
	lastUsed time.Time
}

// Registry lazily opens one Store per namespace. Stores are reference counted
// while requests use them and closed once they have been idle for the idle
// timeout.
type Registry struct {
	repository  domain.StateRepository
	opts        []Option
	idleTimeout time.Duration
	now         func() time.Time

	mu      sync.Mutex
	entries map[string]*entry
	loads   singleflight.Group
}

// RegistryOption configures a Registry
type RegistryOption func(*Registry)

// WithStoreOptions applies opts to every store the registry opens
func WithStoreOptions(opts ...Option) RegistryOption {
	return func(r *Registry) {
		r.opts = append(r.opts, opts...)
	}
}

// WithIdleTimeout sets how long an unused store stays open
func WithIdleTimeout(d time.Duration) RegistryOption {
	return func(r *Registry) {
		r.idleTimeout = d
	}
}

// WithRegistryClock overrides the clock used for idle tracking
func WithRegistryClock(now func() time.Time) RegistryOption {
	return func(r *Registry) {
		r.now = now
	}
}

// NewRegistry creates a registry backed by the given repository
func NewRegistry(repository domain.StateRepository, opts ...RegistryOption) *Registry {
	r := &Registry{
		repository:  repository,
		idleTimeout: DefaultIdleTimeout,
		now:         time.Now,
		entries:     make(map[string]*entry),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Acquire returns the store for namespace, opening it on first use. The
// store stays open at least until release is called. Loading is detached from
// ctx cancellation so an aborted request cannot poison the store, and
// concurrent callers share one load.
func (r *Registry) Acquire(ctx context.Context, namespace string) (*Store, func(), error) {
	if s, ok := r.retain(namespace); ok {
		return s, r.releaser(namespace, s), nil
	}

	_, err, _ := r.loads.Do(namespace, func() (interface{}, error) {
		if _, ok := r.peek(namespace); ok {
			return nil, nil
		}

		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), loadTimeout)
		defer cancel()

		s, err := Open(loadCtx, namespace, r.repository, r.opts...)
		if err != nil {
			return nil, err
		}

		r.mu.Lock()
		r.entries[namespace] = &entry{store: s, lastUsed: r.now()}
		r.mu.Unlock()
		return nil, nil
	})
	if err != nil {
		return nil, nil, err
	}

	s, ok := r.retain(namespace)
	if !ok {
		// evicted between load and retain; open again
		return r.Acquire(ctx, namespace)
	}
	return s, r.releaser(namespace, s), nil
}

func (r *Registry) peek(namespace string) (*Store, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[namespace]
	if !ok {
		return nil, false
	}
	return e.store, true
}

func (r *Registry) retain(namespace string) (*Store, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[namespace]
	if !ok {
		return nil, false
	}
	e.refs++
	e.lastUsed = r.now()
	return e.store, true
}

func (r *Registry) releaser(namespace string, s *Store) func() {
	var once sync.Once
	return func() {
		once.Do(func() {
			r.mu.Lock()
			defer r.mu.Unlock()
			if e, ok := r.entries[namespace]; ok && e.store == s {
				e.refs--
				e.lastUsed = r.now()
			}
		})
	}
}

// Len returns the number of open stores
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// EvictIdle closes stores nobody holds that have been idle longer than the
// idle timeout. It returns the number of stores closed.
func (r *Registry) EvictIdle(ctx context.Context) int {
	cutoff := r.now().Add(-r.idleTimeout)

	r.mu.Lock()
	var idle []*Store
	for namespace, e := range r.entries {
		if e.refs == 0 && e.lastUsed.Before(cutoff) {
			idle = append(idle, e.store)
			delete(r.entries, namespace)
		}
	}
	r.mu.Unlock()

	for _, s := range idle {
		if err := s.Close(ctx); err != nil {
			log.Printf("Warning: failed to flush evicted state %s: %v", s.Namespace(), err)
		}
	}
	return len(idle)
}

// RunEviction calls EvictIdle every interval until ctx is done
func (r *Registry) RunEviction(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			flushCtx, cancel := context.WithTimeout(context.Background(), persistTimeout)
			if n := r.EvictIdle(flushCtx); n > 0 {
				log.Printf("Evicted %d idle session stores", n)
			}
			cancel()
		}
	}
}

// Close flushes and closes every open store
func (r *Registry) Close(ctx context.Context) error {
	r.mu.Lock()
	entries := r.entries
	r.entries = make(map[string]*entry)
	r.mu.Unlock()

	var errs []error
	for _, e := range entries {
		if err := e.store.Close(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
