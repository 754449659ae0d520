package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ReminderLedger records which reminders were already delivered so a
// reminder inside an overlapping window is sent once.
type ReminderLedger struct {
	client *redis.Client
	ttl    time.Duration

	mu    sync.Mutex
	local map[string]time.Time
}

// NewReminderLedger uses Redis when client is non-nil, else an in-process map.
func NewReminderLedger(client *redis.Client, ttl time.Duration) *ReminderLedger {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &ReminderLedger{client: client, ttl: ttl, local: make(map[string]time.Time)}
}

func ReminderKey(userID, itemID string, at time.Time) string {
	return fmt.Sprintf("reminder:%s:%s:%d", userID, itemID, at.Unix())
}

// Claim reports true the first time key is seen within the ttl.
func (l *ReminderLedger) Claim(ctx context.Context, key string) (bool, error) {
	if l.client != nil {
		ok, err := l.client.SetNX(ctx, key, "1", l.ttl).Result()
		if err != nil {
			return false, fmt.Errorf("failed to record reminder: %w", err)
		}
		return ok, nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	for k, exp := range l.local {
		if now.After(exp) {
			delete(l.local, k)
		}
	}
	if _, seen := l.local[key]; seen {
		return false, nil
	}
	l.local[key] = now.Add(l.ttl)
	return true, nil
}
