package config

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	envPrefix  = "PICKS_"
	envConfig  = "PICKS_CONFIG"
	maxWorkers = 32
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if PICKS_CONFIG is set
//  3. env (prefix PICKS_)
func Load(_ context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv(envConfig); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	// PICKS_ODDS_CACHE_TTL -> odds_cache_ttl. Keys stay flat so underscores
	// match the koanf tags on the struct. PICKS_CONFIG is not a key.
	envProvider := env.ProviderWithValue(envPrefix, ".", func(key, value string) (string, any) {
		if key == envConfig {
			return "", nil
		}
		key = strings.TrimPrefix(strings.ToLower(key), strings.ToLower(envPrefix))
		if _, ok := listKeys[key]; ok {
			return key, splitList(value)
		}
		return key, value
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// listKeys are comma separated when given through the environment.
var listKeys = map[string]struct{}{
	"schedule_providers": {},
	"bookmaker_priority": {},
	"cors_origins":       {},
}

func splitList(v string) []string {
	out := []string{}
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.FetchTimeoutMS <= 0:
		return fmt.Errorf("%w: fetch_timeout_ms must be positive", ErrInvalidConfig)
	case c.AnalysisConcurrency < 1 || c.AnalysisConcurrency > maxWorkers:
		return fmt.Errorf("%w: analysis_concurrency must be within 1..%d", ErrInvalidConfig, maxWorkers)
	case c.PicksPerType < 1:
		return fmt.Errorf("%w: picks_per_type must be positive", ErrInvalidConfig)
	case c.RecentGames < 1:
		return fmt.Errorf("%w: recent_games must be positive", ErrInvalidConfig)
	case c.EstDefaultSpreadAbs < 0 || c.EstDefaultTotal <= 0:
		return fmt.Errorf("%w: estimate defaults must be positive", ErrInvalidConfig)
	case c.OddsStaleTTL < c.OddsCacheTTL || c.ScheduleStaleTTL < c.ScheduleCacheTTL:
		return fmt.Errorf("%w: stale ttl must not be shorter than fresh ttl", ErrInvalidConfig)
	case len(c.ScheduleProviders) == 0:
		return fmt.Errorf("%w: schedule_providers must not be empty", ErrInvalidConfig)
	}
	switch c.OddsMode {
	case "best", "consensus":
	default:
		return fmt.Errorf("%w: odds_mode must be best or consensus", ErrInvalidConfig)
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("%w: timezone %q: %w", ErrInvalidConfig, c.Timezone, err)
	}
	return nil
}
