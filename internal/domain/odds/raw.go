// Package odds turns bookmaker quote lists into one canonical line per
// event, either from the best single bookmaker or a consensus median.
package odds

import (
	"strings"
	"time"

	"github.com/okian/nbapicks/internal/domain/extract"
)

// Market keys used by the odds feed.
const (
	MarketH2H     = "h2h"
	MarketSpreads = "spreads"
	MarketTotals  = "totals"
)

// EstimatedKey and EstimatedTitle identify the synthetic bookmaker.
const (
	EstimatedKey   = "estimated"
	EstimatedTitle = "ESTIMATED"
	ConsensusTitle = "CONSENSUS"
)

// Outcome is one priced selection within a market.
type Outcome struct {
	Name  string   `json:"name"`
	Price float64  `json:"price"`
	Point *float64 `json:"point,omitempty"`
}

// MarketMeta annotates synthetic markets.
type MarketMeta struct {
	Provider     string `json:"provider"`
	SourceDetail string `json:"sourceDetail"`
}

// Market is one market quoted by a bookmaker.
type Market struct {
	Key        string      `json:"key"`
	LastUpdate string      `json:"last_update,omitempty"`
	Outcomes   []Outcome   `json:"outcomes"`
	Meta       *MarketMeta `json:"_meta,omitempty"`
}

// Bookmaker is one bookmaker's quotes for an event.
type Bookmaker struct {
	Key        string   `json:"key"`
	Title      string   `json:"title"`
	LastUpdate string   `json:"last_update,omitempty"`
	Markets    []Market `json:"markets"`
}

// Event is one game as delivered by the odds feed.
type Event struct {
	ID           string      `json:"id"`
	SportKey     string      `json:"sport_key,omitempty"`
	CommenceTime string      `json:"commence_time"`
	HomeTeam     string      `json:"home_team"`
	AwayTeam     string      `json:"away_team"`
	Bookmakers   []Bookmaker `json:"bookmakers"`
}

// Commence parses the commence time, nil when absent or malformed.
func (e Event) Commence() *time.Time {
	if t, ok := extract.AsTime(e.CommenceTime); ok {
		return &t
	}
	return nil
}

// IsEstimated reports whether the bookmaker is the synthetic one.
func (b Bookmaker) IsEstimated() bool {
	return b.Key == EstimatedKey || strings.EqualFold(b.Title, EstimatedTitle)
}

// Name prefers the title.
func (b Bookmaker) Name() string {
	if b.Title != "" {
		return b.Title
	}
	return b.Key
}

// Market returns the market with key that has at least one outcome.
func (b Bookmaker) Market(key string) (Market, bool) {
	for _, m := range b.Markets {
		if m.Key == key && len(m.Outcomes) > 0 {
			return m, true
		}
	}
	return Market{}, false
}

// Outcome returns the outcome whose name equals name exactly.
func (m Market) Outcome(name string) (Outcome, bool) {
	for _, o := range m.Outcomes {
		if o.Name == name {
			return o, true
		}
	}
	return Outcome{}, false
}

// marketKeys counts the distinct supported market keys offered.
func (b Bookmaker) marketKeys() int {
	seen := map[string]struct{}{}
	for _, m := range b.Markets {
		switch m.Key {
		case MarketH2H, MarketSpreads, MarketTotals:
			if len(m.Outcomes) > 0 {
				seen[m.Key] = struct{}{}
			}
		}
	}
	return len(seen)
}

// HasMarket reports whether any real bookmaker quotes key.
func (e Event) HasMarket(key string) bool {
	for _, b := range e.Bookmakers {
		if b.IsEstimated() {
			continue
		}
		if _, ok := b.Market(key); ok {
			return true
		}
	}
	return false
}
