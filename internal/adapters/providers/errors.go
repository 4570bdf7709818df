package providers

import (
	"errors"
	"fmt"
)

// ErrUpstreamUnavailable marks a failed or timed out upstream call.
var ErrUpstreamUnavailable = errors.New("upstream unavailable")

// ErrDecode is returned when an upstream body is not the expected JSON.
var ErrDecode = errors.New("decode upstream response")

// excerptLimit bounds the upstream body kept for operator diagnostics.
const excerptLimit = 200

// UpstreamError describes a non-success upstream response.
type UpstreamError struct {
	Provider string
	Status   int
	Excerpt  string
	Err      error
}

func (e *UpstreamError) Error() string {
	switch {
	case e.Status != 0:
		return fmt.Sprintf("%s: status %d: %s", e.Provider, e.Status, e.Excerpt)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Provider, e.Err)
	}
	return e.Provider + ": " + ErrUpstreamUnavailable.Error()
}

// Is makes every UpstreamError match ErrUpstreamUnavailable.
func (e *UpstreamError) Is(target error) bool {
	return target == ErrUpstreamUnavailable
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// Excerpt trims s to the diagnostic limit.
func Excerpt(s string) string {
	r := []rune(s)
	if len(r) <= excerptLimit {
		return s
	}
	return string(r[:excerptLimit])
}
