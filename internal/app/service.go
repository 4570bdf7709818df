// Package service orchestrates schedule, odds and form sources into pick
// recommendations and guards them with subscription entitlements.
package service

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/okian/nbapicks/internal/adapters/cache"
	"github.com/okian/nbapicks/internal/adapters/providers/oddsapi"
	"github.com/okian/nbapicks/internal/adapters/repository"
	"github.com/okian/nbapicks/internal/adapters/worker"
	"github.com/okian/nbapicks/internal/domain/calendar"
	"github.com/okian/nbapicks/internal/domain/extract"
	"github.com/okian/nbapicks/internal/domain/lines"
	"github.com/okian/nbapicks/internal/domain/model"
	"github.com/okian/nbapicks/internal/domain/odds"
	"github.com/okian/nbapicks/internal/domain/scoring"
	"github.com/okian/nbapicks/internal/domain/selection"
	"github.com/okian/nbapicks/internal/domain/types"
	"github.com/okian/nbapicks/pkg/logger"
)

// ScheduleSource returns raw game records for a date. Sources are tried in
// order until one succeeds.
type ScheduleSource interface {
	Name() string
	GamesForDate(ctx context.Context, date calendar.Date) ([]extract.Record, error)
}

// OddsSource returns a league-wide odds snapshot.
type OddsSource interface {
	CacheKey() string
	Fetch(ctx context.Context) (oddsapi.Snapshot, error)
}

// FormSource returns a team's most recent completed games, newest first.
type FormSource interface {
	RecentResults(ctx context.Context, t model.Team, n int) ([]model.GameResult, error)
}

const (
	defaultActivationDays = 30
	defaultFreeDailyLimit = 1
)

// Service implements the API dependencies for the pick dashboard.
type Service struct {
	mu      sync.RWMutex
	started bool

	// Sources
	schedules []ScheduleSource
	odds      OddsSource
	form      FormSource

	// Pipeline
	estimator  *lines.Estimator
	normalizer *odds.Normalizer
	scorer     *scoring.Scorer
	selector   *selection.Selector
	pool       *worker.Pool
	oddsMode   types.OddsMode
	priority   []string

	// Caches
	cacheStore    cache.Store
	scheduleFresh time.Duration
	scheduleStale time.Duration
	oddsFresh     time.Duration
	oddsStale     time.Duration
	scheduleCache *cache.ReadThrough[[]extract.Record]
	oddsCache     *cache.ReadThrough[oddsapi.Snapshot]

	// Accounts
	entitlements   repository.EntitlementStore
	history        repository.HistoryStore
	freeDailyLimit int
	activationDays int

	// Configuration
	loc               *time.Location
	now               func() time.Time
	recentGames       int
	estimateUnmatched bool
	closers           []io.Closer

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithScheduleSources sets schedule sources in fallback order.
func WithScheduleSources(sources ...ScheduleSource) Option {
	return func(s *Service) {
		s.schedules = append([]ScheduleSource(nil), sources...)
	}
}

// WithOddsSource sets the odds source. Without one only moneyline picks are produced.
func WithOddsSource(src OddsSource) Option {
	return func(s *Service) { s.odds = src }
}

// WithFormSource sets the recent-form source.
func WithFormSource(src FormSource) Option {
	return func(s *Service) { s.form = src }
}

// WithEstimator sets the line estimator shared with the odds normalizer.
func WithEstimator(e *lines.Estimator) Option {
	return func(s *Service) {
		if e != nil {
			s.estimator = e
		}
	}
}

// WithOddsMode selects best-bookmaker or consensus lines.
func WithOddsMode(mode types.OddsMode, priority []string) Option {
	return func(s *Service) {
		s.oddsMode = mode
		s.priority = append([]string(nil), priority...)
	}
}

// WithScorer sets the scorer.
func WithScorer(sc *scoring.Scorer) Option {
	return func(s *Service) {
		if sc != nil {
			s.scorer = sc
		}
	}
}

// WithPicksPerType sets how many picks of each type are recommended.
func WithPicksPerType(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.selector = selection.NewSelector(selection.WithPerType(n))
		}
	}
}

// WithConcurrency bounds per-game analyses running at once.
func WithConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.pool = worker.NewPool(n, worker.WithName("analysis"))
		}
	}
}

// WithCacheStore sets the response cache backend.
func WithCacheStore(store cache.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.cacheStore = store
		}
	}
}

// WithScheduleTTL sets fresh and stale windows for schedule responses.
func WithScheduleTTL(fresh, stale time.Duration) Option {
	return func(s *Service) {
		if fresh > 0 {
			s.scheduleFresh, s.scheduleStale = fresh, stale
		}
	}
}

// WithOddsTTL sets fresh and stale windows for odds snapshots.
func WithOddsTTL(fresh, stale time.Duration) Option {
	return func(s *Service) {
		if fresh > 0 {
			s.oddsFresh, s.oddsStale = fresh, stale
		}
	}
}

// WithEntitlementStore sets subscription and usage storage.
func WithEntitlementStore(store repository.EntitlementStore) Option {
	return func(s *Service) {
		if store != nil {
			s.entitlements = store
		}
	}
}

// WithHistoryStore sets pick history storage.
func WithHistoryStore(store repository.HistoryStore) Option {
	return func(s *Service) {
		if store != nil {
			s.history = store
		}
	}
}

// WithFreeDailyLimit sets single-game analyses allowed per day for unpaid users.
// Zero disables the free tier.
func WithFreeDailyLimit(n int) Option {
	return func(s *Service) {
		if n >= 0 {
			s.freeDailyLimit = n
		}
	}
}

// WithLocation sets the timezone defining "today".
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithRecentGames sets how many completed games form a team's recent form.
func WithRecentGames(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.recentGames = n
		}
	}
}

// WithEstimateUnmatched gives games without any odds event an estimated line.
func WithEstimateUnmatched(on bool) Option {
	return func(s *Service) { s.estimateUnmatched = on }
}

// WithCloser registers a resource closed by Stop.
func WithCloser(c io.Closer) Option {
	return func(s *Service) {
		if c != nil {
			s.closers = append(s.closers, c)
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a Service. Unset collaborators default to in-memory
// implementations.
func New(opts ...Option) *Service {
	s := &Service{
		scorer:            scoring.NewScorer(),
		selector:          selection.NewSelector(),
		pool:              worker.NewPool(worker.DefaultSize, worker.WithName("analysis")),
		scheduleFresh:     time.Minute,
		scheduleStale:     10 * time.Minute,
		oddsFresh:         30 * time.Minute,
		oddsStale:         6 * time.Hour,
		oddsMode:          types.ModeBest,
		freeDailyLimit:    defaultFreeDailyLimit,
		activationDays:    defaultActivationDays,
		loc:               time.UTC,
		now:               time.Now,
		recentGames:       scoring.DefaultRecentGames,
		estimateUnmatched: true,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}
	if s.estimator == nil {
		s.estimator = lines.NewEstimator(lines.NewMemoryStore(0), lines.StandardDefaults(), lines.WithLogger(s.logger))
	}
	s.normalizer = odds.NewNormalizer(s.oddsMode, s.priority, s.estimator)
	if s.cacheStore == nil {
		s.cacheStore = cache.NewMemoryStore(s.now)
	}
	s.scheduleCache = cache.NewReadThrough[[]extract.Record](s.cacheStore, "schedule", s.scheduleFresh, s.scheduleStale,
		cache.WithClock(s.now), cache.WithLogger(s.logger))
	s.oddsCache = cache.NewReadThrough[oddsapi.Snapshot](s.cacheStore, "odds", s.oddsFresh, s.oddsStale,
		cache.WithClock(s.now), cache.WithLogger(s.logger))
	if s.entitlements == nil || s.history == nil {
		mem := repository.NewMemoryStore(repository.WithClock(s.now))
		if s.entitlements == nil {
			s.entitlements = mem
		}
		if s.history == nil {
			s.history = mem
		}
	}
	return s
}

// Start marks the service ready and logs its configuration.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	names := make([]string, 0, len(s.schedules))
	for _, src := range s.schedules {
		names = append(names, src.Name())
	}
	s.started = true
	s.logger.Info(ctx, "pick service started",
		logger.Any("scheduleProviders", names),
		logger.Bool("odds", s.odds != nil),
		logger.String("oddsMode", string(s.normalizer.Mode())),
		logger.Int("concurrency", s.pool.Size()),
		logger.Int("picksPerType", s.selector.PerType()),
		logger.String("timezone", s.loc.String()),
	)
	return nil
}

// Stop releases registered resources.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	ctx := context.Background()
	for _, c := range s.closers {
		if err := c.Close(); err != nil {
			s.logger.Warn(ctx, "close failed", logger.Error(err))
		}
	}
	s.closers = nil
	s.started = false
	s.logger.Info(ctx, "pick service stopped")
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.schedules))
	for _, src := range s.schedules {
		names = append(names, src.Name())
	}
	return map[string]any{
		"started":           s.started,
		"scheduleProviders": names,
		"oddsConfigured":    s.odds != nil,
		"oddsMode":          string(s.normalizer.Mode()),
		"concurrency":       s.pool.Size(),
		"picksPerType":      s.selector.PerType(),
		"recentGames":       s.recentGames,
		"timezone":          s.loc.String(),
		"lineHistorySize":   s.estimator.Size(context.Background()),
		"today":             s.today().Compact(),
	}
}

func (s *Service) today() calendar.Date {
	return calendar.Of(s.now(), s.loc)
}
