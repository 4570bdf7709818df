// Package schedule converts raw schedule records from any provider into
// canonical games.
package schedule

import (
	"strings"

	"github.com/okian/nbapicks/internal/domain/calendar"
	"github.com/okian/nbapicks/internal/domain/extract"
	"github.com/okian/nbapicks/internal/domain/model"
	"github.com/okian/nbapicks/internal/domain/team"
	"github.com/okian/nbapicks/internal/domain/types"
)

// Extraction rules, highest priority first.
var (
	GameIDRule = extract.NewRule("gameId",
		"gameId", "id", "game_id", "gameCode", "gamecode", "gameCodeId", "gameCodeID", "gameKey", "game_key")

	StartTimeRule = extract.NewRule("startTimeUtc",
		"startTimeUTC", "startTimeUtc", "gameTimeUTC", "gameTimeUtc", "utcTime", "startTime",
		"dateTimeUTC", "gameDateTimeUTC", "gameDateTimeUtc", "commence_time", "commenceTime", "date")

	StatusTextRule = extract.NewRule("statusText",
		"gameStatusText", "statusText", "status.type.description", "status.type.name", "status")

	StatusNumRule = extract.NewRule("statusNum", "gameStatus", "statusNum")

	HomeRule = extract.NewRule("home", "homeTeam", "home", "teams.home")
	AwayRule = extract.NewRule("away", "awayTeam", "away", "teams.away")
)

// blocked status fragments. Matching is case-insensitive containment, so
// "cancelled", "Postponed" and "PPD" are all caught.
var blocked = []string{"final", "cancel", "postpone", "ppd", "suspend", "abandon", "forfeit", "complete"}

// IsAnalyzable reports whether a status text leaves the game open for
// analysis. Anything not on the block list is analyzable, including
// unknown or untranslated status strings.
func IsAnalyzable(statusText string) bool {
	s := strings.ToLower(statusText)
	for _, b := range blocked {
		if strings.Contains(s, b) {
			return false
		}
	}
	return true
}

// ClassifyText maps free status text to a GameStatus.
func ClassifyText(statusText string) types.GameStatus {
	s := strings.ToLower(strings.TrimSpace(statusText))
	switch {
	case s == "":
		return types.StatusUnknown
	case strings.Contains(s, "final"), strings.Contains(s, "complete"), strings.Contains(s, "forfeit"):
		return types.StatusFinal
	case strings.Contains(s, "cancel"):
		return types.StatusCancelled
	case strings.Contains(s, "postpone"), strings.Contains(s, "ppd"):
		return types.StatusPostponed
	case strings.Contains(s, "suspend"):
		return types.StatusSuspended
	case strings.Contains(s, "abandon"):
		return types.StatusAbandoned
	case containsAny(s, "scheduled", " et", " pm", " am", "status_pre"):
		return types.StatusScheduled
	case containsAny(s, "qtr", "half", "progress", "overtime", " ot", "live", "status_in"):
		return types.StatusInProgress
	}
	return types.StatusUnknown
}

func containsAny(s string, parts ...string) bool {
	for _, p := range parts {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}

// statusFromNumber follows the NBA CDN convention 1/2/3.
func statusFromNumber(n float64) (types.GameStatus, bool) {
	switch int(n) {
	case 1:
		return types.StatusScheduled, true
	case 2:
		return types.StatusInProgress, true
	case 3:
		return types.StatusFinal, true
	}
	return "", false
}

// Normalize converts raw records to games, keeping provider order. Records
// without a game id are dropped.
func Normalize(records []extract.Record, date calendar.Date, provider string) []model.Game {
	games := make([]model.Game, 0, len(records))
	for _, r := range records {
		g, ok := NormalizeOne(r, date, provider)
		if !ok {
			continue
		}
		games = append(games, g)
	}
	return games
}

// NormalizeOne converts a single record. ok is false when the record has no
// usable game id.
func NormalizeOne(r extract.Record, date calendar.Date, provider string) (model.Game, bool) {
	id, _ := GameIDRule.String(r)
	if id == "" {
		return model.Game{}, false
	}
	text, _ := StatusTextRule.String(r)
	status := ClassifyText(text)
	if n, ok := StatusNumRule.Float(r); ok {
		if s, ok := statusFromNumber(n); ok {
			status = s
		}
	}
	return model.Game{
		GameID:       id,
		Date:         date,
		StartTimeUTC: StartTimeRule.Time(r),
		Status:       status,
		StatusText:   text,
		Analyzable:   !status.Terminal() && IsAnalyzable(text),
		Home:         team.Resolve(side(r, HomeRule, "home")),
		Away:         team.Resolve(side(r, AwayRule, "away")),
		Provider:     provider,
	}, true
}

// side returns the nested team object, or a synthetic one assembled from
// game-level fields such as homeTeamId and homeTricode.
func side(r extract.Record, rule extract.Rule, prefix string) extract.Record {
	if obj := rule.Object(r); obj != nil {
		return obj
	}
	flat := extract.Record{}
	for _, f := range []struct{ src, dst string }{
		{prefix + "TeamId", "teamId"},
		{prefix + "Id", "teamId"},
		{prefix + "Tricode", "teamTricode"},
		{prefix + "TeamTricode", "teamTricode"},
		{prefix + "Abbr", "abbreviation"},
		{prefix + "TeamName", "teamName"},
		{prefix + "Name", "teamName"},
		{prefix + "_team", "displayName"},
	} {
		if v, ok := r[f.src]; ok && v != nil {
			if _, set := flat[f.dst]; !set {
				flat[f.dst] = v
			}
		}
	}
	if len(flat) == 0 {
		return nil
	}
	return flat
}

// Analyzable filters games open for analysis.
func Analyzable(games []model.Game) []model.Game {
	out := make([]model.Game, 0, len(games))
	for _, g := range games {
		if g.Analyzable {
			out = append(out, g)
		}
	}
	return out
}

// Find returns the game with id.
func Find(games []model.Game, id string) (model.Game, bool) {
	for _, g := range games {
		if g.GameID == id {
			return g, true
		}
	}
	return model.Game{}, false
}
