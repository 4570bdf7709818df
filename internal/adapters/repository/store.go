// Package repository persists subscriptions, daily usage counters and saved
// pick history.
package repository

import (
	"context"
	"encoding/json"
	"regexp"
	"time"
)

// History list bounds.
const (
	DefaultHistoryLimit = 20
	MaxHistoryLimit     = 200
)

// Subscription is a user's paid-tier record.
type Subscription struct {
	UserID    string     `json:"userId"`
	Active    bool       `json:"active"`
	ExpiresAt *time.Time `json:"expiresAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// IsPaid reports whether the subscription is active and unexpired at now.
// A missing expiry never expires.
func (s Subscription) IsPaid(now time.Time) bool {
	return s.Active && (s.ExpiresAt == nil || s.ExpiresAt.After(now))
}

// HistoryEntry is one saved recommendation snapshot.
type HistoryEntry struct {
	ID        string          `json:"id"`
	UserID    string          `json:"-"`
	Date      string          `json:"date"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"createdAt"`
}

var compactDate = regexp.MustCompile(`^\d{8}$`)

// Validate checks the date form and that the payload is a JSON object.
func (e HistoryEntry) Validate() error {
	if e.UserID == "" || !compactDate.MatchString(e.Date) {
		return ErrInvalidEntry
	}
	var obj map[string]json.RawMessage
	if len(e.Payload) == 0 || json.Unmarshal(e.Payload, &obj) != nil || obj == nil {
		return ErrInvalidEntry
	}
	return nil
}

// EntitlementStore provides subscription and usage state.
type EntitlementStore interface {
	// Subscription returns ErrNotFound when the user has none.
	Subscription(ctx context.Context, userID string) (Subscription, error)
	UpsertSubscription(ctx context.Context, s Subscription) error
	// IncrementUsage bumps the counter for user and day and returns the new value.
	IncrementUsage(ctx context.Context, userID, day string) (int, error)
	Usage(ctx context.Context, userID, day string) (int, error)
}

// HistoryStore provides saved pick history.
type HistoryStore interface {
	// ListHistory returns newest first. limit must be within [1, MaxHistoryLimit].
	ListHistory(ctx context.Context, userID string, limit int) ([]HistoryEntry, error)
	SaveHistory(ctx context.Context, e HistoryEntry) (HistoryEntry, error)
	// DeleteHistory returns ErrNotFound when no entry of the user has id.
	DeleteHistory(ctx context.Context, userID, id string) error
}

// ClampLimit applies the default and bounds to a requested limit.
func ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultHistoryLimit
	case limit > MaxHistoryLimit:
		return MaxHistoryLimit
	}
	return limit
}
