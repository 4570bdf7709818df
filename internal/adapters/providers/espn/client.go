// Package espn reads the ESPN site API: the daily scoreboard as a secondary
// schedule source and team schedules for recent form.
package espn

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/okian/nbapicks/internal/adapters/providers"
	"github.com/okian/nbapicks/internal/domain/calendar"
	"github.com/okian/nbapicks/internal/domain/extract"
	"github.com/okian/nbapicks/internal/domain/model"
	"github.com/okian/nbapicks/internal/domain/team"
)

// Name is the provider tag carried by games from this source.
const Name = "espn"

var abbrRule = extract.NewRule("abbreviation", "abbreviation")

// Client handles ESPN API requests.
type Client struct {
	fetcher *providers.Fetcher
	baseURL string
	loc     *time.Location
}

// New creates a client. loc is the timezone calendar dates are read in.
func New(baseURL string, loc *time.Location, opts ...providers.Option) *Client {
	if loc == nil {
		loc = time.UTC
	}
	return &Client{fetcher: providers.NewFetcher(Name, opts...), baseURL: baseURL, loc: loc}
}

// Name implements the schedule source contract.
func (c *Client) Name() string { return Name }

type scoreboard struct {
	Events []event `json:"events"`
}

type event struct {
	ID           string         `json:"id"`
	Date         string         `json:"date"`
	Status       extract.Record `json:"status"`
	Competitions []competition  `json:"competitions"`
}

type competition struct {
	Status      extract.Record `json:"status"`
	Competitors []competitor   `json:"competitors"`
}

type competitor struct {
	HomeAway string         `json:"homeAway"`
	Winner   *bool          `json:"winner"`
	Score    any            `json:"score"`
	Team     extract.Record `json:"team"`
}

func (c competitor) points() (int, bool) {
	v := c.Score
	if m, ok := v.(map[string]any); ok {
		v = m["value"]
		if v == nil {
			v = m["displayValue"]
		}
	}
	f, ok := extract.AsFloat(v)
	return int(f), ok
}

func (e event) sides() (home, away *competitor) {
	if len(e.Competitions) == 0 {
		return nil, nil
	}
	for i := range e.Competitions[0].Competitors {
		cp := &e.Competitions[0].Competitors[i]
		switch cp.HomeAway {
		case "home":
			home = cp
		case "away":
			away = cp
		}
	}
	return home, away
}

// GamesForDate returns raw game records whose start falls on date in the
// client's timezone. ESPN keys its scoreboard by US date, so the previous
// day is fetched as well.
func (c *Client) GamesForDate(ctx context.Context, date calendar.Date) ([]extract.Record, error) {
	seen := make(map[string]struct{})
	var out []extract.Record
	for _, d := range []calendar.Date{date.AddDays(-1), date} {
		var sb scoreboard
		if _, err := c.fetcher.GetJSON(ctx, c.baseURL+"/scoreboard?dates="+d.Compact(), &sb); err != nil {
			return nil, err
		}
		for _, ev := range sb.Events {
			if _, dup := seen[ev.ID]; dup || ev.ID == "" {
				continue
			}
			start, ok := extract.AsTime(ev.Date)
			if !ok || calendar.Of(start, c.loc) != date {
				continue
			}
			seen[ev.ID] = struct{}{}
			out = append(out, flatten(ev))
		}
	}
	return out, nil
}

// flatten reshapes an event into the flat record the schedule normalizer
// reads.
func flatten(ev event) extract.Record {
	r := extract.Record{"id": ev.ID, "date": ev.Date}
	if ev.Status != nil {
		r["status"] = ev.Status
	} else if len(ev.Competitions) > 0 && ev.Competitions[0].Status != nil {
		r["status"] = ev.Competitions[0].Status
	}
	home, away := ev.sides()
	if home != nil {
		r["homeTeam"] = home.Team
	}
	if away != nil {
		r["awayTeam"] = away.Team
	}
	return r
}

type teamSchedule struct {
	Events []event `json:"events"`
}

// RecentResults returns up to n completed games for the team, newest
// first. The team is addressed by its abbreviation.
func (c *Client) RecentResults(ctx context.Context, t model.Team, n int) ([]model.GameResult, error) {
	code := t.Abbreviation
	if code == "" {
		code = team.Tricode(t.DisplayName)
	}
	if code == "" {
		return nil, fmt.Errorf("%s: team %q has no abbreviation", Name, t.DisplayName)
	}
	var ts teamSchedule
	u := c.baseURL + "/teams/" + url.PathEscape(espnCode(code)) + "/schedule"
	if _, err := c.fetcher.GetJSON(ctx, u, &ts); err != nil {
		return nil, err
	}
	results := completedResults(ts.Events, code)
	if n > 0 && len(results) > n {
		results = results[:n]
	}
	return results, nil
}

// completedResults extracts completed games for the team identified by
// code, newest first. Games without both scores are skipped.
func completedResults(events []event, code string) []model.GameResult {
	want := team.Canonical(code)
	var out []model.GameResult
	for _, ev := range events {
		if len(ev.Competitions) == 0 || !completed(ev) {
			continue
		}
		var mine, theirs *competitor
		for i := range ev.Competitions[0].Competitors {
			cp := &ev.Competitions[0].Competitors[i]
			abbr, _ := abbrRule.String(cp.Team)
			if team.Canonical(abbr) == want {
				mine = cp
			} else {
				theirs = cp
			}
		}
		if mine == nil || theirs == nil {
			continue
		}
		pf, ok1 := mine.points()
		pa, ok2 := theirs.points()
		if !ok1 || !ok2 {
			continue
		}
		played, _ := extract.AsTime(ev.Date)
		opp, _ := abbrRule.String(theirs.Team)
		out = append(out, model.GameResult{
			PointsFor:     pf,
			PointsAgainst: pa,
			Won:           pf > pa,
			PlayedAt:      played,
			Opponent:      opp,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].PlayedAt.After(out[j].PlayedAt) })
	return out
}

func completed(ev event) bool {
	for _, st := range []extract.Record{ev.Competitions[0].Status, ev.Status} {
		if v, ok := extract.Lookup(st, "type.completed"); ok {
			if b, ok := v.(bool); ok {
				return b
			}
		}
	}
	return false
}

// espnCode maps league tricodes to the short forms ESPN uses in URLs.
func espnCode(tricode string) string {
	switch team.Canonical(tricode) {
	case "GSW":
		return "gs"
	case "NOP":
		return "no"
	case "NYK":
		return "ny"
	case "SAS":
		return "sa"
	case "UTA":
		return "utah"
	case "WAS":
		return "wsh"
	}
	return strings.ToLower(team.Canonical(tricode))
}
