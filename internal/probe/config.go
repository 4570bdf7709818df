package probe

import (
	"time"

	"github.com/okian/nbapicks/internal/domain/calendar"
	"github.com/okian/nbapicks/internal/domain/model"
)

// Config holds configuration for a probe run
type Config struct {
	BaseURL string        // Base URL of the service
	From    calendar.Date // First date probed
	To      calendar.Date // Last date probed, inclusive
	PerType int           // Expected maximum picks per type
	UserID  string        // Sent as X-User-ID; must hold a paid subscription
	Workers int           // Number of concurrent requests
	Timeout time.Duration // HTTP request timeout
	LogFile string        // Log file for probe output
	Verbose bool          // Log every pick
}

// Dates expands the configured range. An inverted range yields nothing.
func (c *Config) Dates() []calendar.Date {
	var out []calendar.Date
	for d := c.From; !c.To.Before(d); d = d.AddDays(1) {
		out = append(out, d)
	}
	return out
}

// DayReport is the outcome of probing one date.
type DayReport struct {
	Date       calendar.Date
	Result     *model.Recommendations
	Violations []Violation
	Err        error
}

// Stats holds probe statistics
type Stats struct {
	DatesProbed   int
	DatesFailed   int
	DatesWithNote int
	GamesSeen     int
	PicksSeen     int
	Violations    int
	StartTime     time.Time
	EndTime       time.Time
	Duration      time.Duration
}
