package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"selfie/model"
	"selfie/utils"

	"github.com/redis/go-redis/v9"
)

// SessionCache keeps hot sessions in Redis so token refresh avoids a Mongo
// round trip. A nil *SessionCache behaves as a permanent miss.
type SessionCache struct {
	client *redis.Client
}

func NewSessionCache(client *redis.Client) *SessionCache {
	if client == nil {
		return nil
	}
	return &SessionCache{client: client}
}

func sessionKey(sessionID string) string {
	return fmt.Sprintf("session:%s", sessionID)
}

// SetSession caches a session until it expires.
func (sc *SessionCache) SetSession(ctx context.Context, session *model.Session) error {
	if sc == nil {
		return nil
	}
	if session == nil {
		return fmt.Errorf("cannot cache nil session")
	}

	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 || !session.IsActive {
		return sc.DeleteSession(ctx, session.SessionID)
	}

	// RefreshJTI is hidden from JSON, so it rides in a wrapper.
	data, err := json.Marshal(cachedSession{Session: session, RefreshJTI: session.RefreshJTI})
	if err != nil {
		return fmt.Errorf("failed to marshal session: %v", err)
	}

	if err := sc.client.Set(ctx, sessionKey(session.SessionID), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache session: %v", err)
	}
	return nil
}

type cachedSession struct {
	Session    *model.Session `json:"session"`
	RefreshJTI string         `json:"refresh_jti"`
}

// GetSession returns (nil, nil) on a miss.
func (sc *SessionCache) GetSession(ctx context.Context, sessionID string) (*model.Session, error) {
	if sc == nil {
		return nil, nil
	}
	if sessionID == "" {
		return nil, fmt.Errorf("sessionID cannot be empty")
	}

	data, err := sc.client.Get(ctx, sessionKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		utils.TrackCacheOperation("session", false)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session from cache: %v", err)
	}

	var entry cachedSession
	if err := json.Unmarshal(data, &entry); err != nil || entry.Session == nil {
		return nil, fmt.Errorf("failed to unmarshal session: %v", err)
	}
	entry.Session.RefreshJTI = entry.RefreshJTI

	if time.Now().After(entry.Session.ExpiresAt) {
		_ = sc.DeleteSession(ctx, sessionID)
		return nil, nil
	}

	utils.TrackCacheOperation("session", true)
	return entry.Session, nil
}

func (sc *SessionCache) DeleteSession(ctx context.Context, sessionIDs ...string) error {
	if sc == nil || len(sessionIDs) == 0 {
		return nil
	}

	keys := make([]string, 0, len(sessionIDs))
	for _, id := range sessionIDs {
		keys = append(keys, sessionKey(id))
	}
	if err := sc.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to delete session from cache: %v", err)
	}
	return nil
}
