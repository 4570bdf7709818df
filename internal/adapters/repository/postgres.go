package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq" // postgres driver

	"github.com/okian/nbapicks/pkg/metrics"
)

const backendPostgres = "postgres"

// Schema creates the tables used by PostgresStore.
const Schema = `
CREATE TABLE IF NOT EXISTS subscriptions (
	user_id    TEXT PRIMARY KEY,
	active     BOOLEAN NOT NULL DEFAULT FALSE,
	expires_at TIMESTAMPTZ,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE TABLE IF NOT EXISTS daily_usage (
	user_id TEXT NOT NULL,
	day     TEXT NOT NULL,
	count   INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (user_id, day)
);
CREATE TABLE IF NOT EXISTS pick_history (
	id         TEXT PRIMARY KEY,
	user_id    TEXT NOT NULL,
	date       TEXT NOT NULL,
	payload    JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS pick_history_user_created ON pick_history (user_id, created_at DESC);
`

// PostgresStore implements EntitlementStore and HistoryStore on PostgreSQL.
type PostgresStore struct {
	db  *sql.DB
	cfg config
}

var (
	_ EntitlementStore = (*PostgresStore)(nil)
	_ HistoryStore     = (*PostgresStore)(nil)
)

// OpenPostgres opens and pings a database with a bounded connection pool.
func OpenPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

// NewPostgresStore wraps db.
func NewPostgresStore(db *sql.DB, opts ...Option) *PostgresStore {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &PostgresStore{db: db, cfg: cfg}
}

// Migrate creates missing tables.
func (p *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := p.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// Ping checks connectivity.
func (p *PostgresStore) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

// Close closes the pool.
func (p *PostgresStore) Close() error {
	return p.db.Close()
}

func observe(op string, start time.Time, err *error) {
	metrics.RecordRepositoryQuery(backendPostgres, op, time.Since(start), *err)
}

// Subscription returns the user's subscription.
func (p *PostgresStore) Subscription(ctx context.Context, userID string) (s Subscription, err error) {
	defer observe("subscription", time.Now(), &err)
	var expires sql.NullTime
	err = p.db.QueryRowContext(ctx,
		`SELECT user_id, active, expires_at, updated_at FROM subscriptions WHERE user_id = $1`, userID,
	).Scan(&s.UserID, &s.Active, &expires, &s.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Subscription{}, ErrNotFound
	}
	if err != nil {
		return Subscription{}, fmt.Errorf("query subscription: %w", err)
	}
	if expires.Valid {
		t := expires.Time.UTC()
		s.ExpiresAt = &t
	}
	return s, nil
}

// UpsertSubscription inserts or replaces the user's subscription.
func (p *PostgresStore) UpsertSubscription(ctx context.Context, s Subscription) (err error) {
	defer observe("upsert_subscription", time.Now(), &err)
	var expires any
	if s.ExpiresAt != nil {
		expires = s.ExpiresAt.UTC()
	}
	_, err = p.db.ExecContext(ctx, `
		INSERT INTO subscriptions (user_id, active, expires_at, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE
		SET active = EXCLUDED.active, expires_at = EXCLUDED.expires_at, updated_at = EXCLUDED.updated_at`,
		s.UserID, s.Active, expires, p.cfg.now().UTC())
	if err != nil {
		return fmt.Errorf("upsert subscription: %w", err)
	}
	return nil
}

// IncrementUsage bumps the daily counter atomically.
func (p *PostgresStore) IncrementUsage(ctx context.Context, userID, day string) (n int, err error) {
	defer observe("increment_usage", time.Now(), &err)
	err = p.db.QueryRowContext(ctx, `
		INSERT INTO daily_usage (user_id, day, count) VALUES ($1, $2, 1)
		ON CONFLICT (user_id, day) DO UPDATE SET count = daily_usage.count + 1
		RETURNING count`, userID, day).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("increment usage: %w", err)
	}
	return n, nil
}

// Usage reads the daily counter, zero when absent.
func (p *PostgresStore) Usage(ctx context.Context, userID, day string) (n int, err error) {
	defer observe("usage", time.Now(), &err)
	err = p.db.QueryRowContext(ctx,
		`SELECT count FROM daily_usage WHERE user_id = $1 AND day = $2`, userID, day).Scan(&n)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("query usage: %w", err)
	}
	return n, nil
}

// ListHistory returns the user's entries newest first.
func (p *PostgresStore) ListHistory(ctx context.Context, userID string, limit int) (out []HistoryEntry, err error) {
	if limit < 1 || limit > MaxHistoryLimit {
		return nil, ErrInvalidLimit
	}
	defer observe("list_history", time.Now(), &err)
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, user_id, date, payload, created_at FROM pick_history
		WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var e HistoryEntry
		var payload []byte
		if err = rows.Scan(&e.ID, &e.UserID, &e.Date, &payload, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		e.Payload = payload
		e.CreatedAt = e.CreatedAt.UTC()
		out = append(out, e)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history: %w", err)
	}
	return out, nil
}

// SaveHistory validates and inserts e.
func (p *PostgresStore) SaveHistory(ctx context.Context, e HistoryEntry) (_ HistoryEntry, err error) {
	if err := e.Validate(); err != nil {
		return HistoryEntry{}, err
	}
	defer observe("save_history", time.Now(), &err)
	e.ID = p.cfg.newID()
	e.CreatedAt = p.cfg.now().UTC()
	_, err = p.db.ExecContext(ctx,
		`INSERT INTO pick_history (id, user_id, date, payload, created_at) VALUES ($1, $2, $3, $4, $5)`,
		e.ID, e.UserID, e.Date, []byte(e.Payload), e.CreatedAt)
	if err != nil {
		return HistoryEntry{}, fmt.Errorf("insert history: %w", err)
	}
	return e, nil
}

// DeleteHistory removes one of the user's entries.
func (p *PostgresStore) DeleteHistory(ctx context.Context, userID, id string) (err error) {
	defer observe("delete_history", time.Now(), &err)
	res, err := p.db.ExecContext(ctx, `DELETE FROM pick_history WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete history: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete history: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
