// Package cache stores budget snapshots in redis.
//
// Invalidation increments a generation counter that is part of every
// snapshot key, so all snapshots are dropped at once without scanning
// keys. Old generations expire with their TTL.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/envelope-zero/tracker/internal/budget"
	"github.com/envelope-zero/tracker/internal/types"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// DefaultTTL is how long snapshots are kept.
const DefaultTTL = 10 * time.Minute

// Snapshots is a budget.Cache backed by redis.
//
// Redis errors are logged and treated as cache misses.
type Snapshots struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// New returns a snapshot cache using client. Keys start with prefix.
func New(client *redis.Client, prefix string, ttl time.Duration) *Snapshots {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	return &Snapshots{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

// Connect opens a redis client for the URL and verifies the connection.
func Connect(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return client, nil
}

func (s *Snapshots) generationKey() string {
	return s.prefix + "generation"
}

func (s *Snapshots) key(ctx context.Context, month types.Month) (string, error) {
	generation, err := s.client.Get(ctx, s.generationKey()).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return "", err
	}

	return fmt.Sprintf("%ssnapshot:%d:%s", s.prefix, generation, month), nil
}

// Get returns the cached snapshot for the month.
func (s *Snapshots) Get(ctx context.Context, month types.Month) (budget.Snapshot, bool) {
	key, err := s.key(ctx, month)
	if err != nil {
		log.Warn().Err(err).Str("month", month.String()).Msg("snapshot cache unavailable")
		return budget.Snapshot{}, false
	}

	data, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return budget.Snapshot{}, false
	} else if err != nil {
		log.Warn().Err(err).Str("month", month.String()).Msg("snapshot cache unavailable")
		return budget.Snapshot{}, false
	}

	var snapshot budget.Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("dropping unreadable snapshot")
		s.client.Del(ctx, key)
		return budget.Snapshot{}, false
	}

	return snapshot, true
}

// Set caches the snapshot.
func (s *Snapshots) Set(ctx context.Context, snapshot budget.Snapshot) {
	key, err := s.key(ctx, snapshot.Month)
	if err != nil {
		log.Warn().Err(err).Str("month", snapshot.Month.String()).Msg("snapshot cache unavailable")
		return
	}

	data, err := json.Marshal(snapshot)
	if err != nil {
		log.Error().Err(err).Str("month", snapshot.Month.String()).Msg("snapshot could not be encoded")
		return
	}

	if err := s.client.Set(ctx, key, data, s.ttl).Err(); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("snapshot could not be cached")
	}
}

// Invalidate drops all cached snapshots.
func (s *Snapshots) Invalidate(ctx context.Context) {
	if err := s.client.Incr(ctx, s.generationKey()).Err(); err != nil {
		log.Error().Err(err).Msg("snapshot cache could not be invalidated")
	}
}
