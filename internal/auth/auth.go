// Package auth resolves an inbound request's API key to a user id. Every
// lookup checks internal/hotstate first and only falls back to
// internal/ledgerstore on a cache miss, populating the cache afterward so
// subsequent requests on the same key stay off PostgreSQL.
package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/availproject/turbo-gateway/internal/hotstate"
	"github.com/availproject/turbo-gateway/internal/ledgerstore"
)

// apiKeyCacheTTL bounds how long a hot-state hit is trusted before the next
// request re-verifies against PostgreSQL; a revoked key is evicted
// explicitly by Store.DeleteAPIKeyOwner, so this is a safety net, not the
// primary invalidation path.
const apiKeyCacheTTL = 10 * time.Minute

type contextKey int

const userIDContextKey contextKey = iota

// ErrMissingAPIKey is returned when no X-API-Key header is present.
var ErrMissingAPIKey = errors.New("auth: missing X-API-Key header")

// ErrUnknownAPIKey is returned when the key does not resolve to a user in
// either the cache or PostgreSQL.
var ErrUnknownAPIKey = errors.New("auth: unknown API key")

// Authenticator resolves API keys to user ids.
type Authenticator struct {
	hot   *hotstate.Store
	store *ledgerstore.Store
	log   zerolog.Logger
}

func New(hot *hotstate.Store, store *ledgerstore.Store, logger zerolog.Logger) *Authenticator {
	return &Authenticator{hot: hot, store: store, log: logger.With().Str("component", "auth").Logger()}
}

// hashKey never stores or logs a raw API key, only its digest, matching the
// teacher's token-hashing convention for credential material.
func hashKey(rawKey string) string {
	sum := sha256.Sum256([]byte(rawKey))
	return hex.EncodeToString(sum[:])
}

// Resolve maps a raw API key to its owning user id.
func (a *Authenticator) Resolve(ctx context.Context, rawKey string) (string, error) {
	if rawKey == "" {
		return "", ErrMissingAPIKey
	}

	keyHash := hashKey(rawKey)

	userID, err := a.hot.GetAPIKeyOwner(ctx, keyHash)
	if err != nil {
		a.log.Warn().Err(err).Msg("hot-state lookup failed, falling back to ledgerstore")
	}
	if userID != "" {
		return userID, nil
	}

	userID, err = a.store.ReadAPIKey(ctx, keyHash)
	if err != nil {
		return "", err
	}
	if userID == "" {
		return "", ErrUnknownAPIKey
	}

	if cacheErr := a.hot.SetAPIKeyOwner(ctx, keyHash, userID, apiKeyCacheTTL); cacheErr != nil {
		a.log.Warn().Err(cacheErr).Msg("failed to populate hot-state cache after ledgerstore fallback")
	}

	return userID, nil
}

// Middleware authenticates every request via the X-API-Key header and
// injects the resolved user id into the request context, or rejects with
// 401 on failure.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rawKey := strings.TrimSpace(r.Header.Get("X-API-Key"))

		userID, err := a.Resolve(r.Context(), rawKey)
		if err != nil {
			http.Error(w, err.Error(), http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), userIDContextKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// UserIDFromContext retrieves the user id injected by Middleware.
func UserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userIDContextKey).(string)
	return userID, ok
}

// ContextWithUserID injects a resolved user id into ctx using the same key
// Middleware uses, for callers (the REST bridge) that resolve the API key
// themselves before calling into the gRPC service layer in-process.
func ContextWithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDContextKey, userID)
}
