// Package types contains the enums shared across the pick pipeline.
package types

import "strings"

// PickType is the betting market a pick targets.
type PickType string

const (
	PickML     PickType = "ML"
	PickSpread PickType = "SPREAD"
	PickTotal  PickType = "TOTAL"
)

// PickTypes lists pick types in selector order.
var PickTypes = []PickType{PickML, PickSpread, PickTotal}

// Side is the selection within a market.
type Side string

const (
	SideHome  Side = "HOME"
	SideAway  Side = "AWAY"
	SideOver  Side = "OVER"
	SideUnder Side = "UNDER"
)

// GameStatus is the canonical game lifecycle state.
type GameStatus string

const (
	StatusScheduled  GameStatus = "SCHEDULED"
	StatusInProgress GameStatus = "IN_PROGRESS"
	StatusFinal      GameStatus = "FINAL"
	StatusPostponed  GameStatus = "POSTPONED"
	StatusCancelled  GameStatus = "CANCELLED"
	StatusSuspended  GameStatus = "SUSPENDED"
	StatusAbandoned  GameStatus = "ABANDONED"
	StatusUnknown    GameStatus = "UNKNOWN"
)

// Terminal reports whether the status ends analysis for the game.
func (s GameStatus) Terminal() bool {
	switch s {
	case StatusFinal, StatusPostponed, StatusCancelled, StatusSuspended, StatusAbandoned:
		return true
	}
	return false
}

// LineSource tells whether a line came from a bookmaker or the estimator.
type LineSource string

const (
	SourceReal      LineSource = "REAL"
	SourceEstimated LineSource = "ESTIMATED"
)

// OddsMode selects how one line is derived from several bookmakers.
type OddsMode string

const (
	ModeBest      OddsMode = "best"
	ModeConsensus OddsMode = "consensus"
)

// ParseOddsMode defaults to ModeBest.
func ParseOddsMode(s string) OddsMode {
	if strings.EqualFold(strings.TrimSpace(s), string(ModeConsensus)) {
		return ModeConsensus
	}
	return ModeBest
}
