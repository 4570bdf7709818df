package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/okian/nbapicks/internal/adapters/repository"
	"github.com/okian/nbapicks/internal/domain/calendar"
	"github.com/okian/nbapicks/pkg/logger"
	"github.com/okian/nbapicks/pkg/metrics"
)

// Feature is a gated capability.
type Feature string

const (
	FeatureRecommendations Feature = "recommendations"
	FeatureAnalysis        Feature = "analysis"
	FeatureRecentForm      Feature = "recent_form"
)

// SubscriptionStatus is the caller-facing subscription view.
type SubscriptionStatus struct {
	IsPaid    bool       `json:"isPaid"`
	Active    bool       `json:"active"`
	ExpiresAt *time.Time `json:"expiresAt"`
}

// Authorize checks that userID may use f. Paid users may use everything;
// others get a daily allowance of single-game analyses.
func (s *Service) Authorize(ctx context.Context, userID string, f Feature) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		metrics.RecordEntitlementDenied("unauthorized")
		return ErrUnauthorized
	}
	paid, err := s.isPaid(ctx, userID)
	if err != nil {
		return err
	}
	if paid {
		return nil
	}
	if f != FeatureAnalysis || s.freeDailyLimit == 0 {
		metrics.RecordEntitlementDenied("payment_required")
		return ErrPaymentRequired
	}
	day := s.today().Compact()
	n, err := s.entitlements.IncrementUsage(ctx, userID, day)
	if err != nil {
		return fmt.Errorf("record usage: %w", err)
	}
	if n > s.freeDailyLimit {
		metrics.RecordEntitlementDenied("daily_limit")
		s.logger.Debug(ctx, "free limit reached", logger.String("user", userID), logger.Int("count", n))
		return ErrDailyLimit
	}
	return nil
}

func (s *Service) isPaid(ctx context.Context, userID string) (bool, error) {
	sub, err := s.entitlements.Subscription(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("load subscription: %w", err)
	}
	return sub.IsPaid(s.now()), nil
}

// SubscriptionStatus reports the caller's subscription.
func (s *Service) SubscriptionStatus(ctx context.Context, userID string) (SubscriptionStatus, error) {
	if strings.TrimSpace(userID) == "" {
		return SubscriptionStatus{}, ErrUnauthorized
	}
	sub, err := s.entitlements.Subscription(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return SubscriptionStatus{}, nil
	}
	if err != nil {
		return SubscriptionStatus{}, fmt.Errorf("load subscription: %w", err)
	}
	return SubscriptionStatus{IsPaid: sub.IsPaid(s.now()), Active: sub.Active, ExpiresAt: sub.ExpiresAt}, nil
}

// ActivateSubscription grants the caller a paid subscription for the
// activation period starting now.
func (s *Service) ActivateSubscription(ctx context.Context, userID string) (SubscriptionStatus, error) {
	if strings.TrimSpace(userID) == "" {
		return SubscriptionStatus{}, ErrUnauthorized
	}
	exp := s.now().UTC().AddDate(0, 0, s.activationDays)
	if err := s.entitlements.UpsertSubscription(ctx, repository.Subscription{UserID: userID, Active: true, ExpiresAt: &exp}); err != nil {
		return SubscriptionStatus{}, fmt.Errorf("activate subscription: %w", err)
	}
	s.logger.Info(ctx, "subscription activated", logger.String("user", userID), logger.Any("expiresAt", exp))
	return SubscriptionStatus{IsPaid: true, Active: true, ExpiresAt: &exp}, nil
}

// ListHistory returns the caller's saved picks, newest first. limit is
// clamped to the store bounds.
func (s *Service) ListHistory(ctx context.Context, userID string, limit int) ([]repository.HistoryEntry, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrUnauthorized
	}
	items, err := s.history.ListHistory(ctx, userID, repository.ClampLimit(limit))
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []repository.HistoryEntry{}
	}
	return items, nil
}

// SaveHistory stores a pick snapshot for the caller. date accepts either
// calendar form and is stored compact.
func (s *Service) SaveHistory(ctx context.Context, userID, date string, payload json.RawMessage) (repository.HistoryEntry, error) {
	if strings.TrimSpace(userID) == "" {
		return repository.HistoryEntry{}, ErrUnauthorized
	}
	d, err := calendar.Parse(date)
	if err != nil {
		return repository.HistoryEntry{}, fmt.Errorf("%w: %w", repository.ErrInvalidEntry, err)
	}
	return s.history.SaveHistory(ctx, repository.HistoryEntry{UserID: userID, Date: d.Compact(), Payload: payload})
}

// DeleteHistory removes one of the caller's saved snapshots.
func (s *Service) DeleteHistory(ctx context.Context, userID, id string) error {
	if strings.TrimSpace(userID) == "" {
		return ErrUnauthorized
	}
	return s.history.DeleteHistory(ctx, userID, id)
}
