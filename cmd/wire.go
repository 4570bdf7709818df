package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/okian/nbapicks/internal/adapters/cache"
	"github.com/okian/nbapicks/internal/adapters/providers"
	"github.com/okian/nbapicks/internal/adapters/providers/espn"
	"github.com/okian/nbapicks/internal/adapters/providers/nbaofficial"
	"github.com/okian/nbapicks/internal/adapters/providers/oddsapi"
	"github.com/okian/nbapicks/internal/adapters/repository"
	app "github.com/okian/nbapicks/internal/app"
	"github.com/okian/nbapicks/internal/config"
	"github.com/okian/nbapicks/internal/domain/lines"
	"github.com/okian/nbapicks/internal/domain/types"
	"github.com/okian/nbapicks/pkg/logger"
)

const (
	redisPrefix      = "picks:"
	redisPingTimeout = 5 * time.Second
)

// build assembles the service from configuration. Redis and PostgreSQL are
// used only when configured; otherwise in-memory stores back the service.
// Connections opened before a failure are closed before it returns.
func build(ctx context.Context, cfg *config.Config, log logger.Logger) (_ *app.Service, err error) {
	var opened []io.Closer
	defer func() {
		if err != nil {
			for _, c := range opened {
				_ = c.Close()
			}
		}
	}()

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone: %w", err)
	}
	fetchOpts := []providers.Option{providers.WithTimeout(cfg.FetchTimeout())}

	espnClient := espn.New(cfg.ESPNBaseURL, loc, fetchOpts...)
	sources, err := scheduleSources(cfg, loc, espnClient, fetchOpts)
	if err != nil {
		return nil, err
	}

	opts := []app.Option{
		app.WithLogger(log.Named("service")),
		app.WithLocation(loc),
		app.WithScheduleSources(sources...),
		app.WithOddsSource(oddsapi.New(cfg.OddsAPIURL, cfg.OddsAPIKey, cfg.OddsRegions, cfg.OddsMarkets, fetchOpts...)),
		app.WithFormSource(espnClient),
		app.WithOddsMode(types.ParseOddsMode(cfg.OddsMode), cfg.BookmakerOrder),
		app.WithScheduleTTL(cfg.ScheduleCacheTTL, cfg.ScheduleStaleTTL),
		app.WithOddsTTL(cfg.OddsCacheTTL, cfg.OddsStaleTTL),
		app.WithConcurrency(cfg.AnalysisConcurrency),
		app.WithPicksPerType(cfg.PicksPerType),
		app.WithRecentGames(cfg.RecentGames),
		app.WithEstimateUnmatched(cfg.EstimateUnmatched),
		app.WithFreeDailyLimit(cfg.FreeDailyLimit),
	}

	defaults := lines.Defaults{SpreadAbs: cfg.EstDefaultSpreadAbs, Total: cfg.EstDefaultTotal, Price: float64(cfg.EstDefaultPrice)}
	var lineStore lines.Store = lines.NewMemoryStore(cfg.LineHistoryTTL)
	if cfg.RedisURL != "" {
		client, err := openRedis(ctx, cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		opened = append(opened, client)
		lineStore = cache.NewRedisLineStore(client, redisPrefix+"lines:", cfg.LineHistoryTTL)
		opts = append(opts, app.WithCacheStore(cache.NewRedisStore(client, redisPrefix+"cache:")), app.WithCloser(client))
		log.Info(ctx, "using redis for caches and line history")
	}
	opts = append(opts, app.WithEstimator(lines.NewEstimator(lineStore, defaults, lines.WithLogger(log.Named("lines")))))

	if cfg.DatabaseDSN != "" {
		db, err := repository.OpenPostgres(ctx, cfg.DatabaseDSN)
		if err != nil {
			return nil, err
		}
		opened = append(opened, db)
		store := repository.NewPostgresStore(db)
		if err := store.Migrate(ctx); err != nil {
			return nil, err
		}
		opts = append(opts, app.WithEntitlementStore(store), app.WithHistoryStore(store), app.WithCloser(store))
		log.Info(ctx, "using postgres for subscriptions and history")
	}

	return app.New(opts...), nil
}

func scheduleSources(cfg *config.Config, loc *time.Location, espnClient *espn.Client, fetchOpts []providers.Option) ([]app.ScheduleSource, error) {
	out := make([]app.ScheduleSource, 0, len(cfg.ScheduleProviders))
	for _, name := range cfg.ScheduleProviders {
		switch name {
		case nbaofficial.Name:
			out = append(out, nbaofficial.New(cfg.NBAScheduleURL, loc, fetchOpts...))
		case espn.Name:
			out = append(out, espnClient)
		default:
			return nil, fmt.Errorf("%w: unknown schedule provider %q", config.ErrInvalidConfig, name)
		}
	}
	return out, nil
}

func openRedis(ctx context.Context, url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opt)
	pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}
