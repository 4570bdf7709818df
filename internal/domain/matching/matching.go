// Package matching joins schedule games to odds events by an unordered
// team-pair key, breaking ties by nearest start time.
package matching

import (
	"time"

	"github.com/okian/nbapicks/internal/domain/model"
	"github.com/okian/nbapicks/internal/domain/team"
)

// MaxDelta is the largest start-time difference still accepted as a match.
const MaxDelta = 24 * time.Hour

// NormalizeName lowercases a team name and strips punctuation so that
// "L.A. Lakers" and "la lakers" compare equal.
func NormalizeName(name string) string {
	return team.NormalizeName(name)
}

// Key builds the ordered pair key for two team names.
func Key(home, away string) string {
	return team.NameKey(home) + "__" + team.NameKey(away)
}

// PairKey builds the ordered pair key for two resolved teams.
func PairKey(home, away model.Team) string {
	return team.Key(home) + "__" + team.Key(away)
}

// Buckets maps pair keys to the odds events sharing them. Every event is
// indexed under both orderings.
type Buckets map[string][]*model.MarketOdds

// BuildBuckets indexes events in input order.
func BuildBuckets(events []model.MarketOdds) Buckets {
	b := make(Buckets, len(events)*2)
	for i := range events {
		ev := &events[i]
		home, away := sides(ev)
		k1 := PairKey(home, away)
		k2 := PairKey(away, home)
		b[k1] = append(b[k1], ev)
		if k2 != k1 {
			b[k2] = append(b[k2], ev)
		}
	}
	return b
}

// sides returns the resolved teams of an event, resolving the raw names
// for events built without them.
func sides(ev *model.MarketOdds) (model.Team, model.Team) {
	home, away := ev.Home, ev.Away
	if home.DisplayName == "" {
		home = team.FromMarketName(ev.HomeTeam)
	}
	if away.DisplayName == "" {
		away = team.FromMarketName(ev.AwayTeam)
	}
	return home, away
}

// Candidates returns the events whose teams share the game's identity key.
func (b Buckets) Candidates(g model.Game) []*model.MarketOdds {
	return b[PairKey(g.Home, g.Away)]
}

// Match returns the candidate closest in time to the game start. When the
// start is unknown the first candidate wins. A closest candidate more than
// MaxDelta away, or one without a commence time, is no match.
func Match(g model.Game, b Buckets) (*model.MarketOdds, bool) {
	cands := b.Candidates(g)
	if len(cands) == 0 {
		return nil, false
	}
	if g.StartTimeUTC == nil {
		return cands[0], true
	}
	var best *model.MarketOdds
	var bestDelta time.Duration
	for _, c := range cands {
		if c.CommenceTime == nil {
			continue
		}
		d := c.CommenceTime.Sub(*g.StartTimeUTC).Abs()
		if best == nil || d < bestDelta {
			best, bestDelta = c, d
		}
	}
	if best == nil || bestDelta > MaxDelta {
		return nil, false
	}
	return best, true
}
