package repository

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore implements EntitlementStore and HistoryStore in process.
// State is lost on restart.
type MemoryStore struct {
	cfg config

	mu      sync.RWMutex
	subs    map[string]Subscription
	usage   map[string]int
	history map[string][]HistoryEntry
}

var (
	_ EntitlementStore = (*MemoryStore)(nil)
	_ HistoryStore     = (*MemoryStore)(nil)
)

// NewMemoryStore creates an empty store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &MemoryStore{
		cfg:     cfg,
		subs:    make(map[string]Subscription),
		usage:   make(map[string]int),
		history: make(map[string][]HistoryEntry),
	}
}

func usageKey(userID, day string) string { return userID + "|" + day }

// Subscription returns the user's subscription.
func (m *MemoryStore) Subscription(_ context.Context, userID string) (Subscription, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.subs[userID]
	if !ok {
		return Subscription{}, ErrNotFound
	}
	return s, nil
}

// UpsertSubscription stores s, stamping UpdatedAt.
func (m *MemoryStore) UpsertSubscription(_ context.Context, s Subscription) error {
	s.UpdatedAt = m.cfg.now().UTC()
	m.mu.Lock()
	m.subs[s.UserID] = s
	m.mu.Unlock()
	return nil
}

// IncrementUsage bumps the daily counter.
func (m *MemoryStore) IncrementUsage(_ context.Context, userID, day string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := usageKey(userID, day)
	m.usage[k]++
	return m.usage[k], nil
}

// Usage reads the daily counter.
func (m *MemoryStore) Usage(_ context.Context, userID, day string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.usage[usageKey(userID, day)], nil
}

// ListHistory returns the user's entries newest first.
func (m *MemoryStore) ListHistory(_ context.Context, userID string, limit int) ([]HistoryEntry, error) {
	if limit < 1 || limit > MaxHistoryLimit {
		return nil, ErrInvalidLimit
	}
	m.mu.RLock()
	src := m.history[userID]
	out := make([]HistoryEntry, len(src))
	copy(out, src)
	m.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// SaveHistory validates and stores e with a new id and creation time.
func (m *MemoryStore) SaveHistory(_ context.Context, e HistoryEntry) (HistoryEntry, error) {
	if err := e.Validate(); err != nil {
		return HistoryEntry{}, err
	}
	e.ID = m.cfg.newID()
	e.CreatedAt = m.cfg.now().UTC()
	e.Payload = append([]byte(nil), e.Payload...)
	m.mu.Lock()
	m.history[e.UserID] = append(m.history[e.UserID], e)
	m.mu.Unlock()
	return e, nil
}

// DeleteHistory removes one of the user's entries.
func (m *MemoryStore) DeleteHistory(_ context.Context, userID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := m.history[userID]
	for i, e := range list {
		if e.ID == id {
			m.history[userID] = append(list[:i:i], list[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}
