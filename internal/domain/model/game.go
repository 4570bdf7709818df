// Package model contains domain models passed between layers.
package model

import (
	"time"

	"github.com/okian/nbapicks/internal/domain/calendar"
	"github.com/okian/nbapicks/internal/domain/types"
)

// Team is the canonical team identity.
type Team struct {
	ID           string `json:"id"`
	Abbreviation string `json:"abbreviation"`
	DisplayName  string `json:"displayName"`
	LogoRef      string `json:"logo,omitempty"`
}

// Game is one scheduled game in canonical form.
type Game struct {
	GameID       string           `json:"gameId"`
	Date         calendar.Date    `json:"date"`
	StartTimeUTC *time.Time       `json:"startTimeUtc"`
	Status       types.GameStatus `json:"status"`
	StatusText   string           `json:"statusText"`
	Analyzable   bool             `json:"analyzable"`
	Home         Team             `json:"home"`
	Away         Team             `json:"away"`
	Provider     string           `json:"provider"`
}

// GameResult is one completed game from a team's perspective.
type GameResult struct {
	PointsFor     int       `json:"pointsFor"`
	PointsAgainst int       `json:"pointsAgainst"`
	Won           bool      `json:"won"`
	PlayedAt      time.Time `json:"playedAt"`
	Opponent      string    `json:"opponent,omitempty"`
}

// TeamRecentForm aggregates a team's last completed games.
type TeamRecentForm struct {
	TeamID        string `json:"teamId"`
	GamesPlayed   int    `json:"gamesPlayed"`
	Wins          int    `json:"wins"`
	Losses        int    `json:"losses"`
	PointsFor     int    `json:"totalPointsFor"`
	PointsAgainst int    `json:"totalPointsAgainst"`
}

// AvgFor returns average points scored, zero without games.
func (f TeamRecentForm) AvgFor() float64 {
	if f.GamesPlayed == 0 {
		return 0
	}
	return float64(f.PointsFor) / float64(f.GamesPlayed)
}

// AvgAgainst returns average points allowed, zero without games.
func (f TeamRecentForm) AvgAgainst() float64 {
	if f.GamesPlayed == 0 {
		return 0
	}
	return float64(f.PointsAgainst) / float64(f.GamesPlayed)
}
