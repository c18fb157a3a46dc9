package speech

import (
	"context"
	"strings"
	"sync"

	"github.com/mansoorceksport/fitcoach/internal/domain"
)

// Voice is a synthesis voice offered by an engine
type Voice struct {
	Name string
	Lang string
}

// Options tune an utterance. 1 is the engine default for each field.
type Options struct {
	Rate   float64
	Pitch  float64
	Volume float64
}

// DefaultOptions slows speech slightly for workout instructions
var DefaultOptions = Options{Rate: 0.9, Pitch: 1, Volume: 1}

// Engine is a platform speech-synthesis capability
type Engine interface {
	Voices(ctx context.Context) ([]Voice, error)

	// Speak blocks until the utterance finishes, fails, or ctx is cancelled
	Speak(ctx context.Context, text string, voice *Voice, opts Options) error
}

// Speaker plays one utterance at a time. Starting a new utterance cancels the
// one in progress.
type Speaker struct {
	engine Engine
	opts   Options

	mu     sync.Mutex
	cancel context.CancelFunc
	seq    uint64

	// playing is held while the engine speaks
	playing sync.Mutex
}

// NewSpeaker creates a speaker. engine may be nil when the platform has none.
func NewSpeaker(engine Engine) *Speaker {
	return &Speaker{engine: engine, opts: DefaultOptions}
}

// Speak cancels any utterance in progress and speaks text, blocking until
// completion. An interrupted utterance returns the context error.
func (s *Speaker) Speak(ctx context.Context, text string) error {
	if s.engine == nil {
		return domain.ErrUnsupportedCapability
	}

	ctx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.cancel = cancel
	s.seq++
	seq := s.seq
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		if s.seq == seq {
			s.cancel = nil
		}
		s.mu.Unlock()
		cancel()
	}()

	// Wait for the cancelled utterance to release the engine
	s.playing.Lock()
	defer s.playing.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	var voice *Voice
	if voices, err := s.engine.Voices(ctx); err == nil {
		voice = PickVoice(voices)
	}

	return s.engine.Speak(ctx, text, voice, s.opts)
}

// Stop cancels the utterance in progress, if any
func (s *Speaker) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// PickVoice prefers an English voice whose name contains "Google" or
// "Enhanced". It returns nil when none qualifies.
func PickVoice(voices []Voice) *Voice {
	for i := range voices {
		v := voices[i]
		if !strings.HasPrefix(strings.ToLower(v.Lang), "en") {
			continue
		}
		if strings.Contains(v.Name, "Google") || strings.Contains(v.Name, "Enhanced") {
			return &v
		}
	}
	return nil
}
