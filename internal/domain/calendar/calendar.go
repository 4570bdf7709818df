// Package calendar handles civil dates in the service's target timezone.
package calendar

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidDate is returned when a date parameter is neither YYYYMMDD nor YYYY-MM-DD.
var ErrInvalidDate = errors.New("invalid date")

const (
	compactLayout = "20060102"
	isoLayout     = "2006-01-02"
)

// Date is a calendar day without a time of day.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// Parse accepts "20250101" or "2025-01-01".
func Parse(s string) (Date, error) {
	s = strings.TrimSpace(s)
	var layout string
	switch len(s) {
	case len(compactLayout):
		layout = compactLayout
	case len(isoLayout):
		layout = isoLayout
	default:
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	t, err := time.Parse(layout, s)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Of(t, time.UTC), nil
}

// Of returns the date of t as observed in loc.
func Of(t time.Time, loc *time.Location) Date {
	y, m, d := t.In(loc).Date()
	return Date{Year: y, Month: m, Day: d}
}

// Today returns the current date in loc.
func Today(loc *time.Location) Date {
	return Of(time.Now(), loc)
}

// AddDays shifts the date by n days.
func (d Date) AddDays(n int) Date {
	return Of(time.Date(d.Year, d.Month, d.Day+n, 12, 0, 0, 0, time.UTC), time.UTC)
}

// Compact renders YYYYMMDD.
func (d Date) Compact() string {
	return fmt.Sprintf("%04d%02d%02d", d.Year, int(d.Month), d.Day)
}

// ISO renders YYYY-MM-DD.
func (d Date) ISO() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

func (d Date) String() string { return d.ISO() }

// IsZero reports whether d is the zero value.
func (d Date) IsZero() bool { return d == Date{} }

// Equal reports whether both dates name the same day.
func (d Date) Equal(o Date) bool { return d == o }

// Before reports whether d falls on an earlier day than o.
func (d Date) Before(o Date) bool {
	if d.Year != o.Year {
		return d.Year < o.Year
	}
	if d.Month != o.Month {
		return d.Month < o.Month
	}
	return d.Day < o.Day
}

// Start returns midnight of d in loc.
func (d Date) Start(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

// MarshalText renders the compact form used on the wire.
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.Compact()), nil
}

// UnmarshalText accepts either supported form.
func (d *Date) UnmarshalText(b []byte) error {
	parsed, err := Parse(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
