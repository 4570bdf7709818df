package model

import (
	"time"

	"github.com/okian/nbapicks/internal/domain/calendar"
	"github.com/okian/nbapicks/internal/domain/types"
)

// CandidatePick is one scored pick. It is not mutated after creation.
type CandidatePick struct {
	GameID            string           `json:"gameId"`
	Type              types.PickType   `json:"type"`
	Side              types.Side       `json:"side"`
	Line              *float64         `json:"line,omitempty"`
	Price             *float64         `json:"price,omitempty"`
	ModelProbability  float64          `json:"modelProbability"`
	MarketProbability float64          `json:"marketProbability"`
	EdgePercent       float64          `json:"edgePercent"`
	Confidence        int              `json:"confidence"`
	Provider          string           `json:"provider"`
	LineSource        types.LineSource `json:"lineSource,omitempty"`
	Home              string           `json:"home"`
	Away              string           `json:"away"`
	StartTimeUTC      *time.Time       `json:"startTimeUtc,omitempty"`
	Reason            string           `json:"reason"`
}

// Projection holds the expected-value model outputs for one game.
type Projection struct {
	ExpectedHome   float64 `json:"expectedHome"`
	ExpectedAway   float64 `json:"expectedAway"`
	ExpectedMargin float64 `json:"expectedMargin"`
	ExpectedTotal  float64 `json:"expectedTotal"`
	SampleSize     int     `json:"sampleSize"`
}

// AnalysisResult is the full per-game analysis.
type AnalysisResult struct {
	Game       Game            `json:"game"`
	HomeForm   TeamRecentForm  `json:"homeForm"`
	AwayForm   TeamRecentForm  `json:"awayForm"`
	Odds       *MarketOdds     `json:"odds,omitempty"`
	Projection *Projection     `json:"projection,omitempty"`
	Picks      []CandidatePick `json:"picks"`
	Note       string          `json:"note,omitempty"`
}

// RecommendationMeta describes where the data behind a recommendation came from.
type RecommendationMeta struct {
	ScheduleProvider string     `json:"scheduleProvider"`
	OddsSource       string     `json:"oddsSource"`
	OddsFetchedAt    *time.Time `json:"oddsFetchedAt,omitempty"`
	OddsError        string     `json:"oddsError,omitempty"`
	RolledForward    bool       `json:"rolledForward"`
	OddsMode         string     `json:"oddsMode"`
}

// Recommendations is the ranked output for one day.
type Recommendations struct {
	Date           calendar.Date      `json:"date"`
	TotalGames     int                `json:"totalGames"`
	CandidateCount int                `json:"candidateCount"`
	Picks          []CandidatePick    `json:"picks"`
	Note           string             `json:"note,omitempty"`
	Meta           RecommendationMeta `json:"meta"`
}
