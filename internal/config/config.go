// Package config defines service configuration and its loading layers.
package config

import (
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// Timezone is the IANA zone that defines "today" for schedules and quotas.
	Timezone string `koanf:"timezone"`

	// FetchTimeoutMS bounds every single upstream call.
	FetchTimeoutMS int `koanf:"fetch_timeout_ms"`

	// ScheduleProviders lists schedule sources in fallback order.
	ScheduleProviders []string `koanf:"schedule_providers"`
	NBAScheduleURL    string   `koanf:"nba_schedule_url"`
	ESPNBaseURL       string   `koanf:"espn_base_url"`

	OddsAPIURL     string   `koanf:"odds_api_url"`
	OddsAPIKey     string   `koanf:"odds_api_key"`
	OddsRegions    string   `koanf:"odds_regions"`
	OddsMarkets    string   `koanf:"odds_markets"`
	OddsMode       string   `koanf:"odds_mode"`
	BookmakerOrder []string `koanf:"bookmaker_priority"`

	OddsCacheTTL     time.Duration `koanf:"odds_cache_ttl"`
	OddsStaleTTL     time.Duration `koanf:"odds_stale_ttl"`
	ScheduleCacheTTL time.Duration `koanf:"schedule_cache_ttl"`
	ScheduleStaleTTL time.Duration `koanf:"schedule_stale_ttl"`

	// Line estimation defaults, used when no history exists.
	EstDefaultSpreadAbs float64       `koanf:"est_default_spread_abs"`
	EstDefaultTotal     float64       `koanf:"est_default_total"`
	EstDefaultPrice     int           `koanf:"est_default_price"`
	LineHistoryTTL      time.Duration `koanf:"line_history_ttl"`
	// EstimateUnmatched gives schedule games with no odds event an estimated line.
	EstimateUnmatched bool `koanf:"estimate_unmatched"`

	AnalysisConcurrency int `koanf:"analysis_concurrency"`
	PicksPerType        int `koanf:"picks_per_type"`
	RecentGames         int `koanf:"recent_games"`

	// RedisURL enables the redis cache and line history when set.
	RedisURL string `koanf:"redis_url"`
	// DatabaseDSN enables PostgreSQL entitlement and history storage when set.
	DatabaseDSN string `koanf:"database_dsn"`

	FreeDailyLimit int      `koanf:"free_daily_limit"`
	CORSOrigins    []string `koanf:"cors_origins"`
	AdminEnabled   bool     `koanf:"admin_enabled"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		LogFormat:           "text",
		Addr:                ":9080",
		Timezone:            "Asia/Seoul",
		FetchTimeoutMS:      8000,
		ScheduleProviders:   []string{"nbaofficial", "espn"},
		NBAScheduleURL:      "https://cdn.nba.com/static/json/staticData/scheduleLeagueV2_1.json",
		ESPNBaseURL:         "https://site.api.espn.com/apis/site/v2/sports/basketball/nba",
		OddsAPIURL:          "https://api.the-odds-api.com/v4/sports/basketball_nba/odds",
		OddsRegions:         "us",
		OddsMarkets:         "h2h,spreads,totals",
		OddsMode:            "best",
		BookmakerOrder:      []string{"draftkings", "fanduel", "betmgm", "caesars"},
		OddsCacheTTL:        30 * time.Minute,
		OddsStaleTTL:        6 * time.Hour,
		ScheduleCacheTTL:    60 * time.Second,
		ScheduleStaleTTL:    10 * time.Minute,
		EstDefaultSpreadAbs: 2.5,
		EstDefaultTotal:     224,
		EstDefaultPrice:     -110,
		LineHistoryTTL:      7 * 24 * time.Hour,
		EstimateUnmatched:   true,
		AnalysisConcurrency: 4,
		PicksPerType:        3,
		RecentGames:         10,
		FreeDailyLimit:      1,
		CORSOrigins:         []string{"*"},
	}
}

// FetchTimeout returns FetchTimeoutMS as a duration.
func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.FetchTimeoutMS) * time.Millisecond
}
