// Package lines estimates spreads and totals when no bookmaker line exists,
// using remembered per-team lines and a league rolling average.
package lines

import (
	"context"
	"sync"
	"time"

	"github.com/okian/nbapicks/internal/domain/types"
)

// Entry is the most recent line seen for one team.
type Entry struct {
	SpreadAbs  *float64         `json:"spreadAbs,omitempty"`
	Total      *float64         `json:"total,omitempty"`
	ObservedAt time.Time        `json:"observedAt"`
	Source     types.LineSource `json:"source"`
}

// League is the rolling league-wide average from the latest real samples.
type League struct {
	SpreadAbs   *float64  `json:"spreadAbs,omitempty"`
	Total       *float64  `json:"total,omitempty"`
	SampleCount int       `json:"sampleCount"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Store persists estimator state. Implementations need not be durable.
type Store interface {
	Team(ctx context.Context, name string) (Entry, bool, error)
	PutTeam(ctx context.Context, name string, e Entry) error
	League(ctx context.Context) (League, bool, error)
	PutLeague(ctx context.Context, l League) error
	Len(ctx context.Context) int
	Reset(ctx context.Context) error
}

// MemoryStore keeps state in process. Entries older than ttl are treated
// as absent; ttl <= 0 keeps them forever.
type MemoryStore struct {
	mu     sync.RWMutex
	ttl    time.Duration
	now    func() time.Time
	teams  map[string]Entry
	league *League
}

// NewMemoryStore creates an in-process store.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{ttl: ttl, now: time.Now, teams: make(map[string]Entry)}
}

func (s *MemoryStore) expired(at time.Time) bool {
	return s.ttl > 0 && s.now().Sub(at) > s.ttl
}

func (s *MemoryStore) Team(_ context.Context, name string) (Entry, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.teams[name]
	if !ok || s.expired(e.ObservedAt) {
		return Entry{}, false, nil
	}
	return e, true, nil
}

func (s *MemoryStore) PutTeam(_ context.Context, name string, e Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.teams[name] = e
	return nil
}

func (s *MemoryStore) League(_ context.Context) (League, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.league == nil || s.expired(s.league.UpdatedAt) {
		return League{}, false, nil
	}
	return *s.league, true, nil
}

func (s *MemoryStore) PutLeague(_ context.Context, l League) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.league = &l
	return nil
}

func (s *MemoryStore) Len(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.teams)
}

func (s *MemoryStore) Reset(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.teams = make(map[string]Entry)
	s.league = nil
	return nil
}

// NopStore remembers nothing, so every estimate falls back to defaults.
type NopStore struct{}

func (NopStore) Team(context.Context, string) (Entry, bool, error) { return Entry{}, false, nil }
func (NopStore) PutTeam(context.Context, string, Entry) error       { return nil }
func (NopStore) League(context.Context) (League, bool, error)       { return League{}, false, nil }
func (NopStore) PutLeague(context.Context, League) error            { return nil }
func (NopStore) Len(context.Context) int                            { return 0 }
func (NopStore) Reset(context.Context) error                        { return nil }
