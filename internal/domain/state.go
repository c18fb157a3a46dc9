package domain

import (
	"context"
	"time"
)

// StorageNamespace is the fixed key every persisted state lives under
const StorageNamespace = "fitness-coach-storage"

// SavedPlanEntry is a timestamped snapshot of a profile and its plan
type SavedPlanEntry struct {
	ID          string       `json:"id" bson:"id"`
	UserData    UserProfile  `json:"userData" bson:"user_data"`
	FitnessPlan *FitnessPlan `json:"fitnessPlan" bson:"fitness_plan"`
	SavedAt     time.Time    `json:"savedAt" bson:"saved_at"`
}

// AppState is everything a client session keeps between visits
type AppState struct {
	UserData    *UserProfile     `json:"userData" bson:"user_data"`
	FitnessPlan *FitnessPlan     `json:"fitnessPlan" bson:"fitness_plan"`
	DarkMode    bool             `json:"darkMode" bson:"dark_mode"`
	SavedPlans  []SavedPlanEntry `json:"savedPlans" bson:"saved_plans"`
}

// PersistedState is the stored blob: {"state": {...}}
type PersistedState struct {
	State AppState `json:"state" bson:"state"`
}

// DefaultState is the state of a fresh session: no plan, no history, light theme
func DefaultState() AppState {
	return AppState{SavedPlans: []SavedPlanEntry{}}
}

// Clone returns a deep copy of the state
func (s AppState) Clone() AppState {
	out := AppState{
		FitnessPlan: s.FitnessPlan.Clone(),
		DarkMode:    s.DarkMode,
		SavedPlans:  make([]SavedPlanEntry, len(s.SavedPlans)),
	}
	if s.UserData != nil {
		profile := *s.UserData
		out.UserData = &profile
	}
	for i, entry := range s.SavedPlans {
		entry.FitnessPlan = entry.FitnessPlan.Clone()
		out.SavedPlans[i] = entry
	}
	return out
}

// Validate checks a state imported from outside the process: its plans and
// every profile it carries.
func (s AppState) Validate() error {
	if s.UserData != nil {
		if err := s.UserData.Validate(); err != nil {
			return err
		}
	}
	for _, entry := range s.SavedPlans {
		if err := entry.UserData.Validate(); err != nil {
			return err
		}
	}
	return s.ValidatePlans()
}

// ValidatePlans checks only the plan structure. Stored state is loaded with
// this check so that older blobs are not discarded for their profiles.
func (s AppState) ValidatePlans() error {
	if s.FitnessPlan != nil {
		if err := s.FitnessPlan.Validate(); err != nil {
			return err
		}
	}
	for _, entry := range s.SavedPlans {
		if entry.FitnessPlan == nil {
			return ErrNoActivePlan
		}
		if err := entry.FitnessPlan.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// StateRepository is the durable storage adapter behind the state store
type StateRepository interface {
	// Load returns the stored state for a namespace, or nil if nothing is stored
	Load(ctx context.Context, namespace string) (*AppState, error)

	// Save replaces the stored state for a namespace
	Save(ctx context.Context, namespace string, state AppState) error
}

// TextModel is a generative text endpoint invoked with a single prompt
type TextModel interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// PlanGenerator turns a profile into a validated plan
type PlanGenerator interface {
	Generate(ctx context.Context, profile UserProfile) (*FitnessPlan, error)
}

// ImageGenerator produces a data-URI image for a short label
type ImageGenerator interface {
	Generate(ctx context.Context, label string) (string, error)
}

// CacheRepository defines the caching operations used by the services
type CacheRepository interface {
	GetState(ctx context.Context, namespace string) (*AppState, error)
	SetState(ctx context.Context, namespace string, state AppState, ttl time.Duration) error
	InvalidateState(ctx context.Context, namespace string) error

	GetQuote(ctx context.Context) (string, error)
	SetQuote(ctx context.Context, quote string, ttl time.Duration) error
}

// FileRepository defines the interface for file storage operations
type FileRepository interface {
	// Upload saves a file and returns its access URL
	Upload(ctx context.Context, file []byte, filename string, contentType string) (string, error)
}
