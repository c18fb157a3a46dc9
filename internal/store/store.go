package store

import (
	"context"
	"crypto/rand"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/mansoorceksport/fitcoach/internal/domain"
	"github.com/oklog/ulid/v2"
)

const persistTimeout = 10 * time.Second

// RequestToken identifies one plan request. Only the newest token may commit.
type RequestToken uint64

// Store is the application-state container for one namespace. Mutations update
// the in-memory state under a lock and are persisted asynchronously.
type Store struct {
	namespace  string
	repository domain.StateRepository
	now        func() time.Time

	mu       sync.RWMutex
	state    domain.AppState
	version  uint64
	requests RequestToken
	closed   bool

	// saveMu serializes saves so an older snapshot never overwrites a newer one
	saveMu    sync.Mutex
	persisted uint64

	kick chan struct{}
	done chan struct{}
}

// Option configures a Store
type Option func(*Store)

// WithClock overrides the clock used for savedAt timestamps
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// Open loads the namespace from the repository and starts the persistence worker.
// Missing or corrupt state falls back to defaults. A failed load returns an
// error instead, so a transient outage never overwrites stored history.
func Open(ctx context.Context, namespace string, repository domain.StateRepository, opts ...Option) (*Store, error) {
	state := domain.DefaultState()
	if repository != nil {
		loaded, err := repository.Load(ctx, namespace)
		if err != nil {
			return nil, fmt.Errorf("failed to load state %s: %w", namespace, err)
		}
		if loaded != nil {
			if err := loaded.ValidatePlans(); err != nil {
				log.Printf("Warning: stored state %s is corrupt, using defaults: %v", namespace, err)
			} else {
				state = loaded.Clone()
			}
		}
	}

	s := &Store{
		namespace:  namespace,
		repository: repository,
		now:        time.Now,
		state:      state,
		kick:       make(chan struct{}, 1),
		done:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	go s.run()
	return s, nil
}

// Namespace returns the storage key of the store
func (s *Store) Namespace() string {
	return s.namespace
}

// Snapshot returns a deep copy of the whole state
func (s *Store) Snapshot() domain.AppState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// UserData returns a copy of the current profile, or nil
func (s *Store) UserData() *domain.UserProfile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state.UserData == nil {
		return nil
	}
	profile := *s.state.UserData
	return &profile
}

// FitnessPlan returns a copy of the current plan, or nil
func (s *Store) FitnessPlan() *domain.FitnessPlan {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.FitnessPlan.Clone()
}

// DarkMode reports the theme
func (s *Store) DarkMode() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.DarkMode
}

// SavedPlans returns a copy of the saved-plan history, oldest first
func (s *Store) SavedPlans() []domain.SavedPlanEntry {
	return s.Snapshot().SavedPlans
}

// SetUserData replaces the profile
func (s *Store) SetUserData(profile *domain.UserProfile) {
	s.mutate(func(st *domain.AppState) error {
		if profile == nil {
			st.UserData = nil
			return nil
		}
		p := *profile
		st.UserData = &p
		return nil
	})
}

// SetFitnessPlan replaces the plan
func (s *Store) SetFitnessPlan(plan *domain.FitnessPlan) {
	s.mutate(func(st *domain.AppState) error {
		st.FitnessPlan = plan.Clone()
		return nil
	})
}

// SetDarkMode sets the theme
func (s *Store) SetDarkMode(dark bool) {
	s.mutate(func(st *domain.AppState) error {
		st.DarkMode = dark
		return nil
	})
}

// ToggleDarkMode flips the theme and returns the new value
func (s *Store) ToggleDarkMode() bool {
	var dark bool
	s.mutate(func(st *domain.AppState) error {
		st.DarkMode = !st.DarkMode
		dark = st.DarkMode
		return nil
	})
	return dark
}

// ClearPlan drops the current profile and plan; saved plans are kept
func (s *Store) ClearPlan() {
	s.mutate(func(st *domain.AppState) error {
		st.UserData = nil
		st.FitnessPlan = nil
		return nil
	})
}

// Replace swaps the whole state, e.g. when importing a blob
func (s *Store) Replace(state domain.AppState) error {
	if err := state.Validate(); err != nil {
		return err
	}
	return s.mutate(func(st *domain.AppState) error {
		*st = state.Clone()
		if st.SavedPlans == nil {
			st.SavedPlans = []domain.SavedPlanEntry{}
		}
		return nil
	})
}

// SavePlan appends a snapshot of the profile and plan with a store-assigned
// timestamp. The profile must pass validation.
func (s *Store) SavePlan(profile domain.UserProfile, plan *domain.FitnessPlan) (domain.SavedPlanEntry, error) {
	if plan == nil {
		return domain.SavedPlanEntry{}, domain.ErrNoActivePlan
	}
	if err := profile.Validate(); err != nil {
		return domain.SavedPlanEntry{}, err
	}

	var entry domain.SavedPlanEntry
	err := s.mutate(func(st *domain.AppState) error {
		savedAt := s.now().UTC()
		entry = domain.SavedPlanEntry{
			ID:          ulid.MustNew(ulid.Timestamp(savedAt), rand.Reader).String(),
			UserData:    profile,
			FitnessPlan: plan.Clone(),
			SavedAt:     savedAt,
		}
		st.SavedPlans = append(st.SavedPlans, entry)
		return nil
	})
	entry.FitnessPlan = entry.FitnessPlan.Clone()
	return entry, err
}

// SaveCurrent saves the current profile and plan
func (s *Store) SaveCurrent() (domain.SavedPlanEntry, error) {
	s.mu.RLock()
	profile, plan := s.state.UserData, s.state.FitnessPlan
	s.mu.RUnlock()

	if profile == nil || plan == nil {
		return domain.SavedPlanEntry{}, domain.ErrNoActivePlan
	}
	return s.SavePlan(*profile, plan)
}

// DeleteSavedPlan removes the entry at index
func (s *Store) DeleteSavedPlan(index int) error {
	return s.mutate(func(st *domain.AppState) error {
		if index < 0 || index >= len(st.SavedPlans) {
			return fmt.Errorf("%w: %d", domain.ErrIndexOutOfRange, index)
		}
		st.SavedPlans = append(st.SavedPlans[:index:index], st.SavedPlans[index+1:]...)
		return nil
	})
}

// LoadSavedPlan makes the saved entry at index the current profile and plan
func (s *Store) LoadSavedPlan(index int) (domain.SavedPlanEntry, error) {
	var entry domain.SavedPlanEntry
	err := s.mutate(func(st *domain.AppState) error {
		if index < 0 || index >= len(st.SavedPlans) {
			return fmt.Errorf("%w: %d", domain.ErrIndexOutOfRange, index)
		}
		entry = st.SavedPlans[index]
		profile := entry.UserData
		st.UserData = &profile
		st.FitnessPlan = entry.FitnessPlan.Clone()
		return nil
	})
	entry.FitnessPlan = entry.FitnessPlan.Clone()
	return entry, err
}

// BeginRequest starts a plan request and supersedes any request in flight
func (s *Store) BeginRequest() RequestToken {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests++
	return s.requests
}

// CommitPlan stores the plan only if token is still the newest request
func (s *Store) CommitPlan(token RequestToken, plan *domain.FitnessPlan) error {
	return s.mutate(func(st *domain.AppState) error {
		if token != s.requests {
			return domain.ErrSuperseded
		}
		st.FitnessPlan = plan.Clone()
		return nil
	})
}

// Flush persists the current state synchronously
func (s *Store) Flush(ctx context.Context) error {
	return s.persist(ctx)
}

// Close stops the persistence worker and flushes pending changes
func (s *Store) Close(ctx context.Context) error {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.kick)
	}
	s.mu.Unlock()

	<-s.done
	return s.persist(ctx)
}

// mutate applies fn under the write lock. The change is scheduled for
// persistence only when fn succeeds. After Close only Flush persists.
func (s *Store) mutate(fn func(st *domain.AppState) error) error {
	s.mu.Lock()
	if err := fn(&s.state); err != nil {
		s.mu.Unlock()
		return err
	}
	s.version++
	if !s.closed {
		select {
		case s.kick <- struct{}{}:
		default:
			// a save is already pending and will pick up this change
		}
	}
	s.mu.Unlock()
	return nil
}

func (s *Store) run() {
	defer close(s.done)
	for range s.kick {
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		if err := s.persist(ctx); err != nil {
			log.Printf("Warning: failed to persist state %s: %v", s.namespace, err)
		}
		cancel()
	}
}

func (s *Store) persist(ctx context.Context) error {
	if s.repository == nil {
		return nil
	}

	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	s.mu.RLock()
	version := s.version
	snapshot := s.state.Clone()
	s.mu.RUnlock()

	if version == s.persisted {
		return nil
	}

	if err := s.repository.Save(ctx, s.namespace, snapshot); err != nil {
		return err
	}
	s.persisted = version
	return nil
}
