// Package nbaofficial reads the league schedule published on the NBA CDN.
package nbaofficial

import (
	"context"
	"strings"
	"time"

	"github.com/okian/nbapicks/internal/adapters/providers"
	"github.com/okian/nbapicks/internal/domain/calendar"
	"github.com/okian/nbapicks/internal/domain/extract"
	"github.com/okian/nbapicks/internal/domain/schedule"
)

// Name is the provider tag carried by games from this source.
const Name = "nbaofficial"

// Client fetches the full season schedule and slices out one date.
type Client struct {
	fetcher *providers.Fetcher
	url     string
	loc     *time.Location
}

// New creates a client. loc is the timezone calendar dates are read in.
func New(url string, loc *time.Location, opts ...providers.Option) *Client {
	if loc == nil {
		loc = time.UTC
	}
	return &Client{fetcher: providers.NewFetcher(Name, opts...), url: url, loc: loc}
}

// Name implements the schedule source contract.
func (c *Client) Name() string { return Name }

type payload struct {
	LeagueSchedule *season `json:"leagueSchedule"`
	Schedule       *season `json:"schedule"`
	GameDates      []day   `json:"gameDates"`
}

type season struct {
	GameDates []day `json:"gameDates"`
	Dates     []day `json:"dates"`
}

type day struct {
	GameDate    string           `json:"gameDate"`
	GameDateEst string           `json:"gameDateEst"`
	Games       []extract.Record `json:"games"`
}

func (p payload) days() []day {
	for _, s := range []*season{p.LeagueSchedule, p.Schedule} {
		if s == nil {
			continue
		}
		if len(s.GameDates) > 0 {
			return s.GameDates
		}
		if len(s.Dates) > 0 {
			return s.Dates
		}
	}
	return p.GameDates
}

// GamesForDate returns raw game records for date. Buckets are matched on
// gameDate first, then gameDateEst, then every game is scanned by its
// start time in the client's timezone.
func (c *Client) GamesForDate(ctx context.Context, date calendar.Date) ([]extract.Record, error) {
	var p payload
	if _, err := c.fetcher.GetJSON(ctx, c.url, &p); err != nil {
		return nil, err
	}
	return selectDate(p.days(), date, c.loc), nil
}

// selectDate applies the three-stage date filter.
func selectDate(days []day, date calendar.Date, loc *time.Location) []extract.Record {
	if games := bucket(days, date, func(d day) string { return d.GameDate }); len(games) > 0 {
		return games
	}
	if games := bucket(days, date, func(d day) string { return d.GameDateEst }); len(games) > 0 {
		return games
	}
	var out []extract.Record
	for _, d := range days {
		for _, g := range d.Games {
			if t := schedule.StartTimeRule.Time(g); t != nil && calendar.Of(*t, loc) == date {
				out = append(out, g)
			}
		}
	}
	return out
}

func bucket(days []day, date calendar.Date, field func(day) string) []extract.Record {
	var out []extract.Record
	for _, d := range days {
		if got, ok := leadingDate(field(d)); ok && got == date {
			out = append(out, d.Games...)
		}
	}
	return out
}

// leadingDate reads the first ten characters as YYYY-MM-DD or MM/DD/YYYY.
func leadingDate(s string) (calendar.Date, bool) {
	s = strings.TrimSpace(s)
	if len(s) < 10 {
		return calendar.Date{}, false
	}
	head := s[:10]
	if d, err := calendar.Parse(head); err == nil {
		return d, true
	}
	if t, err := time.Parse("01/02/2006", head); err == nil {
		return calendar.Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}, true
	}
	return calendar.Date{}, false
}
