package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"selfie/utils"

	"github.com/redis/go-redis/v9"
)

// TokenBlacklist remembers revoked token ids until their natural expiry.
// A nil *TokenBlacklist is valid and never reports a token as revoked.
type TokenBlacklist struct {
	client *redis.Client
}

func NewTokenBlacklist(client *redis.Client) *TokenBlacklist {
	if client == nil {
		return nil
	}
	return &TokenBlacklist{client: client}
}

func blacklistKey(jti string) string {
	return fmt.Sprintf("blacklist:%s", jti)
}

func sessionBlacklistKey(sessionID string) string {
	return fmt.Sprintf("blacklist:session:%s", sessionID)
}

// Revoke stores jti until expiresAt. Already expired tokens are skipped.
func (tb *TokenBlacklist) Revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	if tb == nil || jti == "" {
		return nil
	}

	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}

	if err := tb.client.Set(ctx, blacklistKey(jti), "1", ttl).Err(); err != nil {
		utils.TrackCacheOperation("blacklist_set", false)
		return fmt.Errorf("failed to blacklist token in Redis: %v", err)
	}
	utils.TokenUsage.WithLabelValues(TokenTypeAccess, "revoked").Inc()
	return nil
}

// RevokeSession rejects every access token of sessionID for ttl, which should
// be the access token lifetime.
func (tb *TokenBlacklist) RevokeSession(ctx context.Context, ttl time.Duration, sessionIDs ...string) error {
	if tb == nil || ttl <= 0 || len(sessionIDs) == 0 {
		return nil
	}

	pipe := tb.client.Pipeline()
	for _, id := range sessionIDs {
		pipe.Set(ctx, sessionBlacklistKey(id), "1", ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to blacklist sessions in Redis: %v", err)
	}
	return nil
}

// IsRevoked checks the token id and its session in one round trip. It fails
// open on Redis errors; refresh still checks the session record.
func (tb *TokenBlacklist) IsRevoked(ctx context.Context, jti, sessionID string) bool {
	if tb == nil || jti == "" {
		return false
	}

	pipe := tb.client.Pipeline()
	tokenCmd := pipe.Exists(ctx, blacklistKey(jti))
	sessionCmd := pipe.Exists(ctx, sessionBlacklistKey(sessionID))
	if _, err := pipe.Exec(ctx); err != nil {
		slog.Warn("token blacklist lookup failed", "error", err)
		return false
	}

	revoked := tokenCmd.Val() > 0 || sessionCmd.Val() > 0
	utils.TrackCacheOperation("blacklist", revoked)
	return revoked
}

func (tb *TokenBlacklist) IsConnected(ctx context.Context) bool {
	if tb == nil || tb.client == nil {
		return false
	}
	return tb.client.Ping(ctx).Err() == nil
}
