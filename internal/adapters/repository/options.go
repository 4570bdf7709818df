package repository

import (
	"time"

	"github.com/google/uuid"
)

type config struct {
	now   func() time.Time
	newID func() string
}

func defaultConfig() config {
	return config{now: time.Now, newID: func() string { return uuid.NewString() }}
}

// Option applies a configuration option to a store.
type Option func(*config)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *config) {
		if now != nil {
			c.now = now
		}
	}
}

// WithIDGenerator overrides history id generation.
func WithIDGenerator(gen func() string) Option {
	return func(c *config) {
		if gen != nil {
			c.newID = gen
		}
	}
}
