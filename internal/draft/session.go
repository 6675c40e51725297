package draft

import (
	"fmt"
	"sync"
	"time"

	"draft-assistant/internal/scoring"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Result is the derived evaluation of one snapshot. It is never persisted.
type Result struct {
	StateVersion     uint64                   `json:"state_version"`
	TableGeneration  uint64                   `json:"table_generation"`
	Recommendations  []scoring.Recommendation `json:"recommendations"`
	WinRate          *scoring.TeamWinRate     `json:"win_rate"`
	PlayerDataLoaded bool                     `json:"player_data_loaded"`
	// PlayerDataAt is the fetch time of the player data used, zero without it.
	PlayerDataAt     time.Time                `json:"player_data_at"`
	ComputedAt       time.Time                `json:"computed_at"`
}

// SamePlayerData reports whether r was computed from the player data
// identified by loaded and fetchedAt.
func (r *Result) SamePlayerData(loaded bool, fetchedAt time.Time) bool {
	return r.PlayerDataLoaded == loaded && r.PlayerDataAt.Equal(fetchedAt)
}

// newerThan orders results of one session. At equal state and table the
// later computation wins when it saw different player data.
func (r *Result) newerThan(other *Result) bool {
	if r.StateVersion != other.StateVersion {
		return r.StateVersion > other.StateVersion
	}
	if r.TableGeneration != other.TableGeneration {
		return r.TableGeneration > other.TableGeneration
	}
	return !r.SamePlayerData(other.PlayerDataLoaded, other.PlayerDataAt)
}

type Session struct {
	ID        string
	CreatedAt time.Time

	mu     sync.Mutex
	state  State
	result *Result
}

func NewSession() (*Session, error) {
	id, err := gonanoid.New()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session id: %w", err)
	}
	return &Session{ID: id, CreatedAt: time.Now()}, nil
}

// Mutate applies fn under the session lock and returns the resulting snapshot.
// A failed mutation leaves the state untouched.
func (s *Session) Mutate(fn func(*State) error) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.state
	if err := fn(&next); err != nil {
		return s.state.Snapshot(), err
	}
	s.state = next
	return s.state.Snapshot(), nil
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Snapshot()
}

func (s *Session) Slots(side Side) []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Slots(side)
}

// Publish stores r unless it was computed for a superseded snapshot or an
// equal-or-newer result is already stored. It reports whether r was kept.
func (s *Session) Publish(r Result) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r.StateVersion != s.state.Version() {
		return false
	}
	if s.result != nil && !r.newerThan(s.result) {
		return false
	}
	s.result = &r
	return true
}

// Result returns the latest published result if it still matches the current
// state, or nil when a recompute is due.
func (s *Session) Result() *Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.result == nil || s.result.StateVersion != s.state.Version() {
		return nil
	}
	r := *s.result
	return &r
}
