package model

import (
	"time"

	"github.com/okian/nbapicks/internal/domain/types"
)

// SpreadLine is a point spread from the home and away perspective.
type SpreadLine struct {
	HomePoint float64          `json:"homePoint"`
	AwayPoint float64          `json:"awayPoint"`
	HomePrice *float64         `json:"homePrice,omitempty"`
	AwayPrice *float64         `json:"awayPrice,omitempty"`
	Provider  string           `json:"provider"`
	Source    types.LineSource `json:"source"`
	// Detail names the estimate basis for estimated lines.
	Detail string `json:"sourceDetail,omitempty"`
}

// TotalLine is a combined points line.
type TotalLine struct {
	Point      float64          `json:"point"`
	OverPrice  *float64         `json:"overPrice,omitempty"`
	UnderPrice *float64         `json:"underPrice,omitempty"`
	Provider   string           `json:"provider"`
	Source     types.LineSource `json:"source"`
	Detail     string           `json:"sourceDetail,omitempty"`
}

// Moneyline carries American prices for each side.
type Moneyline struct {
	HomePrice float64 `json:"homePrice"`
	AwayPrice float64 `json:"awayPrice"`
	Provider  string  `json:"provider"`
}

// MarketOdds is the canonical odds view of one event.
type MarketOdds struct {
	EventID      string      `json:"eventId"`
	HomeTeam     string      `json:"homeTeam"`
	AwayTeam     string      `json:"awayTeam"`
	Home         Team        `json:"home"`
	Away         Team        `json:"away"`
	CommenceTime *time.Time  `json:"commenceTime"`
	Spread       *SpreadLine `json:"spread,omitempty"`
	Total        *TotalLine  `json:"total,omitempty"`
	Moneyline    *Moneyline  `json:"moneyline,omitempty"`
	// Bookmaker is the picked bookmaker reference.
	Bookmaker string `json:"bookmaker"`
}

// HasMarketLine reports whether spread or total is present.
func (m *MarketOdds) HasMarketLine() bool {
	return m != nil && (m.Spread != nil || m.Total != nil)
}
