package service

import "errors"

// Sentinel kinds surfaced to the HTTP layer.
var (
	ErrNoScheduleSource = errors.New("no schedule source available")
	ErrGameNotFound     = errors.New("game not found")
	ErrUnknownTeam      = errors.New("unknown team")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrPaymentRequired  = errors.New("subscription required")
	ErrDailyLimit       = errors.New("daily free limit reached")
)
