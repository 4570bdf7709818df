package probe

import "errors"

var (
	// ErrRequestFailed is returned when the server answers with ok=false.
	ErrRequestFailed = errors.New("request failed")
	// ErrUnhealthy is returned when the health check does not pass.
	ErrUnhealthy = errors.New("service unhealthy")
	// ErrViolations is returned when any probed day broke an output rule.
	ErrViolations = errors.New("output rule violations")
)
