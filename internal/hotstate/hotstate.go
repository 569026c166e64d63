// Package hotstate wraps the Redis-backed advisory cache that sits in front
// of ledgerstore. Every value it holds is a reconstructible projection of a
// PostgreSQL row; a cache miss or a stale key only ever costs a slower path
// back to ledgerstore, never incorrect ledger state.
package hotstate

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"
)

// Store is the Redis client used by auth (API key lookups) and the credit
// gate (the cumulative in-flight list per spec.md §4.4).
type Store struct {
	rdb *redis.Client
	log zerolog.Logger
}

// Open mirrors the teacher's ledger package: a single redis.Client, pinged
// once at startup so a bad address fails fast instead of on first use.
func Open(addr string, logger zerolog.Logger) (*Store, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     50,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Store{rdb: rdb, log: logger.With().Str("component", "hotstate").Logger()}, nil
}

func (s *Store) Close() error { return s.rdb.Close() }

// Client exposes the underlying Redis client. No package in this tree calls
// it; every hot-state operation goes through the Store methods below.
func (s *Store) Client() *redis.Client { return s.rdb }

// GetAPIKeyOwner resolves a hashed API key to a user id without touching
// PostgreSQL. Empty string, nil error means cache miss.
func (s *Store) GetAPIKeyOwner(ctx context.Context, keyHash string) (string, error) {
	val, err := s.rdb.Get(ctx, apiKeyCacheKey(keyHash)).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get api key owner: %w", err)
	}
	return val, nil
}

// SetAPIKeyOwner populates the cache after a PostgreSQL fallback lookup.
func (s *Store) SetAPIKeyOwner(ctx context.Context, keyHash, userID string, ttl time.Duration) error {
	if err := s.rdb.Set(ctx, apiKeyCacheKey(keyHash), userID, ttl).Err(); err != nil {
		return fmt.Errorf("set api key owner: %w", err)
	}
	return nil
}

// DeleteAPIKeyOwner evicts a revoked key immediately instead of waiting out its TTL.
func (s *Store) DeleteAPIKeyOwner(ctx context.Context, keyHash string) error {
	if err := s.rdb.Del(ctx, apiKeyCacheKey(keyHash)).Err(); err != nil {
		return fmt.Errorf("delete api key owner: %w", err)
	}
	return nil
}

func apiKeyCacheKey(keyHash string) string {
	return "apikey:" + keyHash
}

// CumulativeGateKey builds the key spec.md §4.4 describes: the live account
// and user balances are embedded in the key itself, so a balance change
// naturally starts a fresh list instead of requiring any invalidation. Old
// keys are intentionally left to expire on their own TTL rather than pruned
// (see DESIGN.md Open Question on stale cumulative-gate keys).
func CumulativeGateKey(userID string, accountBalance, userBalance string) string {
	return fmt.Sprintf("user:%s_main_balance:%s_app_balance:%s", userID, accountBalance, userBalance)
}

// RPushInFlight appends "submissionID:cost" to the cumulative gate list and
// returns the new list length, mirroring the RPUSH used for point-check plus
// cumulative-check ordering.
func (s *Store) RPushInFlight(ctx context.Context, key, submissionID, cost string) (int64, error) {
	member := submissionID + ":" + cost
	n, err := s.rdb.RPush(ctx, key, member).Result()
	if err != nil {
		return 0, fmt.Errorf("rpush in-flight member: %w", err)
	}
	s.rdb.Expire(ctx, key, 30*time.Minute)
	return n, nil
}

// LRangeInFlight returns every "submissionID:cost" member currently queued
// under key, oldest first, for the cumulative sum check.
func (s *Store) LRangeInFlight(ctx context.Context, key string) ([]string, error) {
	vals, err := s.rdb.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("lrange in-flight: %w", err)
	}
	return vals, nil
}

// RemoveInFlight removes one "submissionID:cost" member from a cumulative
// gate list. Not called on the normal submission path: internal/creditengine
// Release is a no-op, since the gate key embeds the balances it was computed
// against and stale keys age out via the list's TTL rather than pruning.
// Kept for admin tooling that needs to force a key clean during incident
// response.
func (s *Store) RemoveInFlight(ctx context.Context, key, submissionID, cost string) error {
	member := submissionID + ":" + cost
	if err := s.rdb.LRem(ctx, key, 1, member).Err(); err != nil {
		return fmt.Errorf("lrem in-flight member: %w", err)
	}
	return nil
}

// ScanKeysWithPrefix lists every cumulative-gate key for a user, across every
// stale balance snapshot still resident in Redis. Used by the admin CLI's
// integrity check, adapted from the teacher's sync verifier.
func (s *Store) ScanKeysWithPrefix(ctx context.Context, prefix string) ([]string, error) {
	var out []string
	iter := s.rdb.Scan(ctx, 0, prefix+"*", 1000).Iterator()
	for iter.Next(ctx) {
		out = append(out, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scan keys: %w", err)
	}
	return out, nil
}

// UserCumulativeKeyPrefix builds the scan prefix for every balance-snapshot
// variant of a user's cumulative gate key.
func UserCumulativeKeyPrefix(userID string) string {
	return "user:" + userID + "_main_balance:"
}

// IsCumulativeGateKey reports whether key has the shape CumulativeGateKey
// produces. The admin CLI's verify-gate command does not call it; it relies
// on the UserCumulativeKeyPrefix scan instead.
func IsCumulativeGateKey(key string) bool {
	return strings.HasPrefix(key, "user:") && strings.Contains(key, "_main_balance:")
}
