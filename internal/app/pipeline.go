package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/okian/nbapicks/internal/adapters/cache"
	"github.com/okian/nbapicks/internal/adapters/providers"
	"github.com/okian/nbapicks/internal/adapters/providers/oddsapi"
	"github.com/okian/nbapicks/internal/adapters/worker"
	"github.com/okian/nbapicks/internal/domain/calendar"
	"github.com/okian/nbapicks/internal/domain/extract"
	"github.com/okian/nbapicks/internal/domain/matching"
	"github.com/okian/nbapicks/internal/domain/model"
	"github.com/okian/nbapicks/internal/domain/schedule"
	"github.com/okian/nbapicks/internal/domain/scoring"
	"github.com/okian/nbapicks/internal/domain/selection"
	"github.com/okian/nbapicks/internal/domain/team"
	"github.com/okian/nbapicks/pkg/logger"
	"github.com/okian/nbapicks/pkg/metrics"
)

// Notes attached to valid but empty results.
const (
	NoteNoGames         = "no analyzable games for this date"
	NoteNoForm          = "not enough recent games to project this matchup"
	NoteNotAnalyzable   = "game is no longer open for analysis"
	NoteOddsUnavailable = "odds unavailable; only moneyline picks were considered"
)

// GamesResult is a normalized schedule for one date.
type GamesResult struct {
	Date     calendar.Date `json:"date"`
	Provider string        `json:"provider"`
	Count    int           `json:"count"`
	Games    []model.Game  `json:"games"`
}

// OddsResult is the normalized odds board with snapshot provenance.
type OddsResult struct {
	Source    cache.Source       `json:"source"`
	FetchedAt *time.Time         `json:"fetchedAt,omitempty"`
	Error     string             `json:"error,omitempty"`
	Usage     oddsapi.Usage      `json:"usage"`
	Mode      string             `json:"mode"`
	Count     int                `json:"count"`
	Events    []model.MarketOdds `json:"events"`
}

// RecentFormResult is a team's aggregated recent form with its games.
type RecentFormResult struct {
	Team    model.Team           `json:"team"`
	Form    model.TeamRecentForm `json:"form"`
	Results []model.GameResult   `json:"results"`
}

// board is the odds view shared by every game in one request.
type board struct {
	result    OddsResult
	buckets   matching.Buckets
	available bool
}

// Recommendations ranks picks across every analyzable game on a date. An
// empty dateParam means today in the service timezone and rolls forward one
// day when today has nothing to analyze.
func (s *Service) Recommendations(ctx context.Context, dateParam string) (model.Recommendations, error) {
	start := time.Now()
	date, explicit, err := s.resolveDate(dateParam)
	if err != nil {
		return model.Recommendations{}, err
	}

	games, provider, err := s.loadGames(ctx, date)
	if err != nil {
		metrics.RecordRecommendations("error")
		return model.Recommendations{}, err
	}
	analyzable := schedule.Analyzable(games)
	rolled := false
	if !explicit && len(analyzable) == 0 {
		next := date.AddDays(1)
		nextGames, nextProvider, err := s.loadGames(ctx, next)
		switch {
		case err != nil:
			s.logger.Warn(ctx, "roll forward failed", logger.String("date", next.Compact()), logger.Error(err))
		case len(schedule.Analyzable(nextGames)) > 0:
			date, games, provider, rolled = next, nextGames, nextProvider, true
			analyzable = schedule.Analyzable(games)
		}
	}

	out := model.Recommendations{
		Date:       date,
		TotalGames: len(analyzable),
		Picks:      []model.CandidatePick{},
		Meta: model.RecommendationMeta{
			ScheduleProvider: provider,
			RolledForward:    rolled,
			OddsMode:         string(s.normalizer.Mode()),
		},
	}
	if len(analyzable) == 0 {
		out.Note = NoteNoGames
		metrics.RecordRecommendations("empty")
		return out, nil
	}

	b := s.loadBoard(ctx)
	out.Meta.OddsSource = string(b.result.Source)
	out.Meta.OddsFetchedAt = b.result.FetchedAt
	out.Meta.OddsError = b.result.Error
	if !b.available {
		out.Note = NoteOddsUnavailable
	}

	results := worker.Map(ctx, s.pool, analyzable, func(ctx context.Context, g model.Game) (model.AnalysisResult, error) {
		return s.analyze(ctx, g, b), nil
	})
	var pool []model.CandidatePick
	for i, r := range results {
		if r.Err != nil {
			metrics.RecordAnalysisError()
			s.logger.Warn(ctx, "game analysis failed", logger.String("gameId", analyzable[i].GameID), logger.Error(r.Err))
			continue
		}
		pool = append(pool, r.Value.Picks...)
	}
	pool = selection.BestPerGameType(pool)
	for _, p := range pool {
		metrics.RecordCandidatePick(string(p.Type))
	}
	out.CandidateCount = len(pool)
	out.Picks = s.selector.Select(pool)
	metrics.RecordRecommendations("ok")

	s.logger.Info(ctx, "recommendations built",
		logger.String("date", date.Compact()),
		logger.String("provider", provider),
		logger.Int("games", len(analyzable)),
		logger.Int("candidates", out.CandidateCount),
		logger.Int("picks", len(out.Picks)),
		logger.Bool("rolledForward", rolled),
		logger.Duration("took", time.Since(start)),
	)
	return out, nil
}

// AnalyzeGame returns the detailed analysis of one game. A game missing on a
// date other than today is looked up in today's schedule.
func (s *Service) AnalyzeGame(ctx context.Context, gameID, dateParam string) (model.AnalysisResult, error) {
	gameID = strings.TrimSpace(gameID)
	if gameID == "" {
		return model.AnalysisResult{}, ErrGameNotFound
	}
	date, _, err := s.resolveDate(dateParam)
	if err != nil {
		return model.AnalysisResult{}, err
	}
	games, _, err := s.loadGames(ctx, date)
	if err != nil {
		return model.AnalysisResult{}, err
	}
	g, ok := schedule.Find(games, gameID)
	if today := s.today(); !ok && !date.Equal(today) {
		if todays, _, err := s.loadGames(ctx, today); err == nil {
			g, ok = schedule.Find(todays, gameID)
		}
	}
	if !ok {
		return model.AnalysisResult{}, fmt.Errorf("%w: %s", ErrGameNotFound, gameID)
	}
	if !g.Analyzable {
		return model.AnalysisResult{Game: g, Picks: []model.CandidatePick{}, Note: NoteNotAnalyzable}, nil
	}
	res := s.analyze(ctx, g, s.loadBoard(ctx))
	return res, nil
}

// Games lists the normalized schedule for a date.
func (s *Service) Games(ctx context.Context, dateParam string) (GamesResult, error) {
	date, _, err := s.resolveDate(dateParam)
	if err != nil {
		return GamesResult{}, err
	}
	games, provider, err := s.loadGames(ctx, date)
	if err != nil {
		return GamesResult{}, err
	}
	if games == nil {
		games = []model.Game{}
	}
	return GamesResult{Date: date, Provider: provider, Count: len(games), Games: games}, nil
}

// Odds returns the normalized odds board.
func (s *Service) Odds(ctx context.Context) OddsResult {
	return s.loadBoard(ctx).result
}

// RecentForm aggregates a team's recent completed games. teamID is a
// tricode or a provider short code.
func (s *Service) RecentForm(ctx context.Context, teamID string) (RecentFormResult, error) {
	code := team.Canonical(teamID)
	name := team.FullName(code)
	if name == "" {
		return RecentFormResult{}, fmt.Errorf("%w: %q", ErrUnknownTeam, teamID)
	}
	t := model.Team{ID: code, Abbreviation: code, DisplayName: name}
	results := s.recentResults(ctx, t)
	if results == nil {
		results = []model.GameResult{}
	}
	return RecentFormResult{
		Team:    t,
		Form:    scoring.FormFromResults(code, results, s.recentGames),
		Results: results,
	}, nil
}

func (s *Service) resolveDate(param string) (date calendar.Date, explicit bool, err error) {
	if strings.TrimSpace(param) == "" {
		return s.today(), false, nil
	}
	d, err := calendar.Parse(param)
	if err != nil {
		return calendar.Date{}, false, err
	}
	return d, true, nil
}

// loadGames tries schedule sources in order and returns the first that
// answers, serving cached responses when fresh.
func (s *Service) loadGames(ctx context.Context, date calendar.Date) ([]model.Game, string, error) {
	errs := make([]error, 0, len(s.schedules))
	for _, src := range s.schedules {
		key := "schedule:" + src.Name() + ":" + date.Compact()
		res := s.scheduleCache.Get(ctx, key, func(ctx context.Context) ([]extract.Record, error) {
			return src.GamesForDate(ctx, date)
		})
		if res.Source == cache.SourceFallback {
			s.logger.Warn(ctx, "schedule source failed",
				logger.String("provider", src.Name()),
				logger.String("date", date.Compact()),
				logger.Error(res.Err),
			)
			errs = append(errs, fmt.Errorf("%s: %w", src.Name(), res.Err))
			continue
		}
		if res.Err != nil {
			s.logger.Warn(ctx, "serving stale schedule",
				logger.String("provider", src.Name()),
				logger.Error(res.Err),
			)
		}
		return schedule.Normalize(res.Value, date, src.Name()), src.Name(), nil
	}
	if len(errs) == 0 {
		return nil, "", ErrNoScheduleSource
	}
	return nil, "", fmt.Errorf("%w: %w", ErrNoScheduleSource, errors.Join(errs...))
}

// loadBoard reads the odds snapshot through the cache and normalizes it.
// Estimation state is updated on every call from the snapshot's real lines.
func (s *Service) loadBoard(ctx context.Context) board {
	b := board{result: OddsResult{Mode: string(s.normalizer.Mode()), Events: []model.MarketOdds{}}}
	if s.odds == nil {
		b.result.Source = cache.SourceFallback
		b.result.Error = "odds source not configured"
		return b
	}
	res := s.oddsCache.Get(ctx, s.odds.CacheKey(), s.odds.Fetch)
	b.result.Source = res.Source
	b.available = res.Source != cache.SourceFallback
	if b.available {
		at := res.FetchedAt.UTC()
		if !res.Value.FetchedAt.IsZero() {
			at = res.Value.FetchedAt.UTC()
		}
		b.result.FetchedAt = &at
	}
	if res.Err != nil {
		b.result.Error = publicMessage(res.Err)
		if errors.Is(res.Err, oddsapi.ErrMissingAPIKey) {
			s.logger.Debug(ctx, "odds api key missing")
		} else {
			s.logger.Warn(ctx, "odds fetch failed", logger.String("source", string(res.Source)), logger.Error(res.Err))
		}
	}
	b.result.Usage = res.Value.Usage
	markets := s.normalizer.NormalizeAll(ctx, res.Value.Events)
	b.result.Events = markets
	b.result.Count = len(markets)
	b.buckets = matching.BuildBuckets(markets)
	return b
}

// analyze scores one game against the board. Form failures degrade to an
// empty form so the game simply yields no picks.
func (s *Service) analyze(ctx context.Context, g model.Game, b board) model.AnalysisResult {
	start := time.Now()
	defer func() { metrics.RecordAnalysisLatency(time.Since(start)) }()

	res := model.AnalysisResult{Game: g, Picks: []model.CandidatePick{}}
	if b.available {
		if m, ok := matching.Match(g, b.buckets); ok {
			metrics.RecordMatch("matched")
			res.Odds = m
		} else if s.estimateUnmatched {
			metrics.RecordMatch("estimated")
			est := s.normalizer.Estimated(ctx, team.MarketName(g.Home), team.MarketName(g.Away), g.StartTimeUTC)
			res.Odds = &est
		} else {
			metrics.RecordMatch("unmatched")
		}
	}

	homeResults := s.recentResults(ctx, g.Home)
	awayResults := s.recentResults(ctx, g.Away)
	res.HomeForm = scoring.FormFromResults(teamKey(g.Home), homeResults, s.recentGames)
	res.AwayForm = scoring.FormFromResults(teamKey(g.Away), awayResults, s.recentGames)

	proj, picks := s.scorer.Score(scoring.Input{Game: g, HomeForm: res.HomeForm, AwayForm: res.AwayForm, Odds: res.Odds})
	res.Projection = proj
	if proj == nil {
		res.Note = NoteNoForm
	}
	if len(picks) > 0 {
		res.Picks = picks
	}
	s.logger.Debug(ctx, "game analyzed",
		logger.String("gameId", g.GameID),
		logger.Bool("odds", res.Odds != nil),
		logger.Int("picks", len(res.Picks)),
	)
	return res
}

func (s *Service) recentResults(ctx context.Context, t model.Team) []model.GameResult {
	if s.form == nil {
		return nil
	}
	results, err := s.form.RecentResults(ctx, t, s.recentGames)
	if err != nil {
		s.logger.Warn(ctx, "recent form unavailable",
			logger.String("team", t.DisplayName),
			logger.Error(err),
		)
		return nil
	}
	return results
}

func teamKey(t model.Team) string {
	if t.Abbreviation != "" {
		return t.Abbreviation
	}
	if t.ID != "" {
		return t.ID
	}
	return t.DisplayName
}

// publicMessage describes an upstream failure without its response body.
func publicMessage(err error) string {
	var ue *providers.UpstreamError
	switch {
	case errors.As(err, &ue) && ue.Status != 0:
		return fmt.Sprintf("%s returned status %d", ue.Provider, ue.Status)
	case errors.As(err, &ue):
		return ue.Provider + " unavailable"
	case errors.Is(err, oddsapi.ErrMissingAPIKey):
		return err.Error()
	}
	return providers.ErrUpstreamUnavailable.Error()
}
