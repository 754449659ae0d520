package testutils

import (
	"context"
	"sync"
	"time"

	"selfie/model"
	"selfie/services"
)

// SentPush records one delivery attempt made through PushSender.
type SentPush struct {
	Kind     string
	Endpoint string
	Message  services.PushMessage
}

// PushSender records messages instead of delivering them. Endpoints listed
// in Gone answer with model.ErrSubscriptionGone.
type PushSender struct {
	mu       sync.Mutex
	Disabled bool
	Key      string
	Gone     map[string]bool
	Sent     []SentPush
}

func NewPushSender() *PushSender {
	return &PushSender{Key: "test-public-key", Gone: make(map[string]bool)}
}

func (p *PushSender) Enabled() bool     { return !p.Disabled }
func (p *PushSender) PublicKey() string { return p.Key }

func (p *PushSender) Send(_ context.Context, kind string, sub model.PushSubscription, msg services.PushMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Gone[sub.Endpoint] {
		return model.ErrSubscriptionGone
	}
	p.Sent = append(p.Sent, SentPush{Kind: kind, Endpoint: sub.Endpoint, Message: msg})
	return nil
}

func (p *PushSender) Deliveries() []SentPush {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]SentPush(nil), p.Sent...)
}

// Revoker keeps revoked token and session ids in memory.
type Revoker struct {
	mu       sync.Mutex
	Tokens   map[string]time.Time
	Sessions map[string]bool
}

func NewRevoker() *Revoker {
	return &Revoker{Tokens: make(map[string]time.Time), Sessions: make(map[string]bool)}
}

func (r *Revoker) Revoke(_ context.Context, jti string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Tokens[jti] = expiresAt
	return nil
}

func (r *Revoker) RevokeSession(_ context.Context, _ time.Duration, sessionIDs ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range sessionIDs {
		r.Sessions[id] = true
	}
	return nil
}

func (r *Revoker) SessionRevoked(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.Sessions[id]
}

func (r *Revoker) TokenRevoked(jti string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.Tokens[jti]
	return ok
}
