package cache

import (
	"context"
	"encoding/json"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/okian/nbapicks/pkg/logger"
	"github.com/okian/nbapicks/pkg/metrics"
)

// Source tells where a read-through value came from.
type Source string

const (
	SourceLive     Source = "live"
	SourceCache    Source = "cache"
	SourceStale    Source = "stale-cache"
	SourceFallback Source = "fallback"
)

// Result is a value with its provenance. Err carries the load failure for
// stale and fallback results.
type Result[T any] struct {
	Value     T
	Source    Source
	FetchedAt time.Time
	Err       error
}

type envelope[T any] struct {
	Value    T         `json:"value"`
	StoredAt time.Time `json:"storedAt"`
}

// ReadThrough serves values younger than the fresh window from the store,
// loads otherwise, and falls back to values younger than the stale window
// when loading fails. Concurrent misses on one key share a single load.
type ReadThrough[T any] struct {
	store  Store
	family string
	fresh  time.Duration
	stale  time.Duration
	now    func() time.Time
	logger logger.Logger
	group  singleflight.Group
}

// RTOption configures a ReadThrough.
type RTOption func(*rtOptions)

type rtOptions struct {
	now    func() time.Time
	logger logger.Logger
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) RTOption {
	return func(o *rtOptions) {
		if now != nil {
			o.now = now
		}
	}
}

// WithLogger sets the logger used for store failures.
func WithLogger(l logger.Logger) RTOption {
	return func(o *rtOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// NewReadThrough creates a read-through cache. family labels metrics.
// stale is raised to fresh when smaller.
func NewReadThrough[T any](store Store, family string, fresh, stale time.Duration, opts ...RTOption) *ReadThrough[T] {
	o := rtOptions{now: time.Now, logger: logger.Nop()}
	for _, opt := range opts {
		opt(&o)
	}
	if stale < fresh {
		stale = fresh
	}
	return &ReadThrough[T]{store: store, family: family, fresh: fresh, stale: stale, now: o.now, logger: o.logger}
}

// Get returns the cached value for key or loads it.
func (r *ReadThrough[T]) Get(ctx context.Context, key string, load func(context.Context) (T, error)) Result[T] {
	cached, hit := r.read(ctx, key)
	now := r.now()
	if hit && now.Sub(cached.StoredAt) <= r.fresh {
		return r.result(Result[T]{Value: cached.Value, Source: SourceCache, FetchedAt: cached.StoredAt})
	}

	shared, err, _ := r.group.Do(key, func() (any, error) {
		v, err := load(ctx)
		if err == nil {
			r.write(ctx, key, envelope[T]{Value: v, StoredAt: now})
		}
		return v, err
	})
	if err == nil {
		v, _ := shared.(T)
		return r.result(Result[T]{Value: v, Source: SourceLive, FetchedAt: now})
	}
	if hit && now.Sub(cached.StoredAt) <= r.stale {
		return r.result(Result[T]{Value: cached.Value, Source: SourceStale, FetchedAt: cached.StoredAt, Err: err})
	}
	var zero T
	return r.result(Result[T]{Value: zero, Source: SourceFallback, FetchedAt: now, Err: err})
}

// Invalidate drops key.
func (r *ReadThrough[T]) Invalidate(ctx context.Context, key string) error {
	return r.store.Delete(ctx, key)
}

func (r *ReadThrough[T]) result(res Result[T]) Result[T] {
	metrics.RecordCacheLookup(r.family, string(res.Source))
	return res
}

func (r *ReadThrough[T]) read(ctx context.Context, key string) (envelope[T], bool) {
	var env envelope[T]
	b, ok, err := r.store.Get(ctx, key)
	if err != nil {
		r.logger.Warn(ctx, "cache read failed", logger.String("family", r.family), logger.Error(err))
		return env, false
	}
	if !ok {
		return env, false
	}
	if err := json.Unmarshal(b, &env); err != nil {
		r.logger.Warn(ctx, "cache entry corrupt", logger.String("family", r.family), logger.Error(err))
		return env, false
	}
	return env, true
}

func (r *ReadThrough[T]) write(ctx context.Context, key string, env envelope[T]) {
	b, err := json.Marshal(env)
	if err != nil {
		r.logger.Warn(ctx, "cache encode failed", logger.String("family", r.family), logger.Error(err))
		return
	}
	if err := r.store.Set(ctx, key, b, r.stale); err != nil {
		r.logger.Warn(ctx, "cache write failed", logger.String("family", r.family), logger.Error(err))
	}
}
