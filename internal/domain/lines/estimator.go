package lines

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/okian/nbapicks/internal/domain/team"
	"github.com/okian/nbapicks/internal/domain/types"
	"github.com/okian/nbapicks/pkg/logger"
	"github.com/okian/nbapicks/pkg/metrics"
)

// Basis names where an estimated value came from.
const (
	BasisTeams   = "teams"
	BasisHome    = "home"
	BasisAway    = "away"
	BasisLeague  = "league"
	BasisDefault = "default"
)

// Defaults are used when neither team nor league history exists.
type Defaults struct {
	SpreadAbs float64
	Total     float64
	Price     float64
}

// StandardDefaults are typical NBA values: a 2.5 point spread, a 224 point
// total and a -110 price.
func StandardDefaults() Defaults {
	return Defaults{SpreadAbs: 2.5, Total: 224, Price: -110}
}

// Sample is one event's real lines observed in a fetch.
type Sample struct {
	Home      string
	Away      string
	SpreadAbs *float64
	Total     *float64
}

// Estimate is a synthesized line rounded to the nearest half point.
type Estimate struct {
	SpreadAbs   float64
	Total       float64
	Price       float64
	SpreadBasis string
	TotalBasis  string
}

// Detail renders the basis for display, e.g. "spread:teams total:league".
func (e Estimate) Detail() string {
	return "spread:" + e.SpreadBasis + " total:" + e.TotalBasis
}

// Estimator owns the read-modify-write sequences over a Store. Its methods
// are safe for concurrent use.
type Estimator struct {
	mu       sync.Mutex
	store    Store
	defaults Defaults
	now      func() time.Time
	logger   logger.Logger
}

// Option configures an Estimator.
type Option func(*Estimator)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(e *Estimator) {
		if now != nil {
			e.now = now
		}
	}
}

// WithLogger sets the logger used for store failures.
func WithLogger(l logger.Logger) Option {
	return func(e *Estimator) {
		if l != nil {
			e.logger = l
		}
	}
}

// NewEstimator builds an estimator over store. A nil store behaves like NopStore.
func NewEstimator(store Store, defaults Defaults, opts ...Option) *Estimator {
	if store == nil {
		store = NopStore{}
	}
	e := &Estimator{store: store, defaults: defaults, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Key is the storage key for a team name. It is the same identity key the
// matcher uses, so spelling variants share one history entry.
func Key(name string) string {
	return team.NameKey(name)
}

// Observe records the real lines of one fetch. The league average is
// recomputed from this fetch's samples and left untouched when the fetch
// has none. Team entries become Real, overwriting any Estimated entry.
func (e *Estimator) Observe(ctx context.Context, samples []Sample) {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.now()
	var spreads, totals []decimal.Decimal
	for _, s := range samples {
		s.SpreadAbs = positive(s.SpreadAbs)
		s.Total = positive(s.Total)
		if s.SpreadAbs == nil && s.Total == nil {
			continue
		}
		if s.SpreadAbs != nil {
			spreads = append(spreads, decimal.NewFromFloat(*s.SpreadAbs))
		}
		if s.Total != nil {
			totals = append(totals, decimal.NewFromFloat(*s.Total))
		}
		for _, name := range []string{s.Home, s.Away} {
			e.mergeReal(ctx, name, s, now)
		}
	}
	if count := max(len(spreads), len(totals)); count > 0 {
		prev, _, err := e.store.League(ctx)
		e.warn(ctx, "league read", err)
		l := League{SpreadAbs: prev.SpreadAbs, Total: prev.Total, SampleCount: count, UpdatedAt: now}
		if v, ok := average(spreads); ok {
			l.SpreadAbs = &v
		}
		if v, ok := average(totals); ok {
			l.Total = &v
		}
		e.warn(ctx, "league write", e.store.PutLeague(ctx, l))
	}
	metrics.UpdateLineHistorySize(e.store.Len(ctx))
}

func (e *Estimator) mergeReal(ctx context.Context, name string, s Sample, now time.Time) {
	key := Key(name)
	if key == "" {
		return
	}
	prev, ok, err := e.store.Team(ctx, key)
	e.warn(ctx, "team read", err)
	next := Entry{ObservedAt: now, Source: types.SourceReal}
	if ok {
		next.SpreadAbs, next.Total = prev.SpreadAbs, prev.Total
	}
	if s.SpreadAbs != nil {
		v := *s.SpreadAbs
		next.SpreadAbs = &v
	}
	if s.Total != nil {
		v := *s.Total
		next.Total = &v
	}
	e.warn(ctx, "team write", e.store.PutTeam(ctx, key, next))
}

// Estimate returns a line for the pair without recording it.
func (e *Estimator) Estimate(ctx context.Context, home, away string) Estimate {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.estimate(ctx, home, away)
}

// EstimateAndRecord estimates a line and remembers the requested parts of
// it for both teams as Estimated. A team whose current entry is Real keeps it.
func (e *Estimator) EstimateAndRecord(ctx context.Context, home, away string, spread, total bool) Estimate {
	e.mu.Lock()
	defer e.mu.Unlock()

	est := e.estimate(ctx, home, away)
	now := e.now()
	for _, name := range []string{home, away} {
		key := Key(name)
		if key == "" {
			continue
		}
		prev, ok, err := e.store.Team(ctx, key)
		e.warn(ctx, "team read", err)
		if ok && prev.Source == types.SourceReal {
			continue
		}
		next := Entry{ObservedAt: now, Source: types.SourceEstimated}
		if ok {
			next.SpreadAbs, next.Total = prev.SpreadAbs, prev.Total
		}
		if spread {
			v := est.SpreadAbs
			next.SpreadAbs = &v
		}
		if total {
			v := est.Total
			next.Total = &v
		}
		e.warn(ctx, "team write", e.store.PutTeam(ctx, key, next))
	}
	metrics.RecordEstimatedLine(est.SpreadBasis)
	return est
}

func (e *Estimator) estimate(ctx context.Context, home, away string) Estimate {
	h, hok, err := e.store.Team(ctx, Key(home))
	e.warn(ctx, "team read", err)
	a, aok, err := e.store.Team(ctx, Key(away))
	e.warn(ctx, "team read", err)
	l, lok, err := e.store.League(ctx)
	e.warn(ctx, "league read", err)

	pick := func(hv, av, lv *float64, def float64) (float64, string) {
		switch {
		case hv != nil && av != nil:
			v, _ := average([]decimal.Decimal{decimal.NewFromFloat(*hv), decimal.NewFromFloat(*av)})
			return v, BasisTeams
		case hv != nil:
			return *hv, BasisHome
		case av != nil:
			return *av, BasisAway
		case lv != nil:
			return *lv, BasisLeague
		}
		return def, BasisDefault
	}

	var hs, ht, as, at, ls, lt *float64
	if hok {
		hs, ht = h.SpreadAbs, h.Total
	}
	if aok {
		as, at = a.SpreadAbs, a.Total
	}
	if lok {
		ls, lt = l.SpreadAbs, l.Total
	}
	spread, sb := pick(hs, as, ls, e.defaults.SpreadAbs)
	total, tb := pick(ht, at, lt, e.defaults.Total)
	return Estimate{
		SpreadAbs:   RoundHalf(spread),
		Total:       RoundHalf(total),
		Price:       e.defaults.Price,
		SpreadBasis: sb,
		TotalBasis:  tb,
	}
}

// Reset clears remembered state.
func (e *Estimator) Reset(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.Reset(ctx)
}

// Size returns the number of remembered teams.
func (e *Estimator) Size(ctx context.Context) int {
	return e.store.Len(ctx)
}

func (e *Estimator) warn(ctx context.Context, op string, err error) {
	if err != nil && e.logger != nil {
		e.logger.Warn(ctx, "line store failure", logger.String("op", op), logger.Error(err))
	}
}

// RoundHalf rounds to the nearest half point, halves away from zero.
func RoundHalf(v float64) float64 {
	two := decimal.NewFromInt(2)
	return decimal.NewFromFloat(v).Mul(two).Round(0).Div(two).InexactFloat64()
}

func positive(v *float64) *float64 {
	if v == nil || *v <= 0 {
		return nil
	}
	return v
}

func average(vals []decimal.Decimal) (float64, bool) {
	if len(vals) == 0 {
		return 0, false
	}
	return decimal.Avg(vals[0], vals[1:]...).InexactFloat64(), true
}
