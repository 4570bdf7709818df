package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/okian/nbapicks/internal/domain/lines"
)

const scanBatch = 200

// RedisLineStore keeps line history in Redis so it survives restarts and
// is shared by replicas. Team entries expire after ttl; the league average
// does not expire.
type RedisLineStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

var _ lines.Store = (*RedisLineStore)(nil)

// NewRedisLineStore creates a store under prefix.
func NewRedisLineStore(client *redis.Client, prefix string, ttl time.Duration) *RedisLineStore {
	return &RedisLineStore{client: client, prefix: prefix, ttl: ttl}
}

func (s *RedisLineStore) teamKey(name string) string { return s.prefix + "team:" + name }
func (s *RedisLineStore) leagueKey() string         { return s.prefix + "league" }

func (s *RedisLineStore) get(ctx context.Context, key string, out any) (bool, error) {
	b, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis get %s: %w", key, err)
	}
	if err := json.Unmarshal(b, out); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func (s *RedisLineStore) put(ctx context.Context, key string, v any, ttl time.Duration) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if ttl < 0 {
		ttl = 0
	}
	if err := s.client.Set(ctx, key, b, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Team reads one team entry.
func (s *RedisLineStore) Team(ctx context.Context, name string) (lines.Entry, bool, error) {
	var e lines.Entry
	ok, err := s.get(ctx, s.teamKey(name), &e)
	return e, ok, err
}

// PutTeam writes one team entry.
func (s *RedisLineStore) PutTeam(ctx context.Context, name string, e lines.Entry) error {
	return s.put(ctx, s.teamKey(name), e, s.ttl)
}

// League reads the league average.
func (s *RedisLineStore) League(ctx context.Context) (lines.League, bool, error) {
	var l lines.League
	ok, err := s.get(ctx, s.leagueKey(), &l)
	return l, ok, err
}

// PutLeague writes the league average.
func (s *RedisLineStore) PutLeague(ctx context.Context, l lines.League) error {
	return s.put(ctx, s.leagueKey(), l, 0)
}

func (s *RedisLineStore) teamKeys(ctx context.Context) ([]string, error) {
	var keys []string
	iter := s.client.Scan(ctx, 0, s.prefix+"team:*", scanBatch).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("redis scan: %w", err)
	}
	return keys, nil
}

// Len counts remembered teams; scan failures count as zero.
func (s *RedisLineStore) Len(ctx context.Context) int {
	keys, err := s.teamKeys(ctx)
	if err != nil {
		return 0
	}
	return len(keys)
}

// Reset deletes every team entry and the league average.
func (s *RedisLineStore) Reset(ctx context.Context) error {
	keys, err := s.teamKeys(ctx)
	if err != nil {
		return err
	}
	keys = append(keys, s.leagueKey())
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
