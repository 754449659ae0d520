package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"selfie/model"
	"selfie/services"
)

type PushService struct {
	users  UserRepository
	sender PushSender
	now    Clock
}

func NewPushService(users UserRepository, sender PushSender, now Clock) *PushService {
	if now == nil {
		now = time.Now
	}
	return &PushService{users: users, sender: sender, now: now}
}

// PublicKey returns the VAPID key browsers subscribe with.
func (s *PushService) PublicKey() (string, error) {
	if s.sender == nil || !s.sender.Enabled() {
		return "", model.ErrPushNotConfigured
	}
	return s.sender.PublicKey(), nil
}

func (s *PushService) Subscribe(ctx context.Context, userID string, sub model.PushSubscription) error {
	u, err := url.Parse(sub.Endpoint)
	if err != nil || u.Scheme != "https" || u.Host == "" {
		return model.NewValidationError("endpoint", "must be an https URL")
	}
	if strings.TrimSpace(sub.Keys.P256dh) == "" || strings.TrimSpace(sub.Keys.Auth) == "" {
		return model.NewValidationError("keys", "p256dh and auth are required")
	}
	sub.CreatedAt = s.now().UTC()
	return s.users.AddPushSubscription(ctx, userID, sub)
}

func (s *PushService) Unsubscribe(ctx context.Context, userID, endpoint string) error {
	if endpoint == "" {
		return model.NewValidationError("endpoint", "is required")
	}
	return s.users.RemovePushSubscription(ctx, userID, endpoint)
}

// SendTest pushes a sample notification to every device of the user and
// returns how many deliveries succeeded.
func (s *PushService) SendTest(ctx context.Context, userID string) (int, error) {
	if s.sender == nil || !s.sender.Enabled() {
		return 0, model.ErrPushNotConfigured
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return 0, err
	}
	if len(user.PushSubscriptions) == 0 {
		return 0, model.NewValidationError("subscriptions", "no devices subscribed")
	}
	return s.Notify(ctx, user, "test", services.PushMessage{
		Title: "Selfie",
		Body:  "Notifications are working.",
		Tag:   "test",
	}), nil
}

// Notify delivers msg to every subscription of user, dropping the ones the
// push service reports as gone.
func (s *PushService) Notify(ctx context.Context, user *model.User, kind string, msg services.PushMessage) int {
	sent := 0
	for _, sub := range user.PushSubscriptions {
		err := s.sender.Send(ctx, kind, sub, msg)
		switch {
		case err == nil:
			sent++
		case errors.Is(err, model.ErrSubscriptionGone):
			if err := s.users.RemovePushSubscription(ctx, user.UserID, sub.Endpoint); err != nil {
				slog.Warn("failed to drop stale push subscription", "user_id", user.UserID, "error", err)
			} else {
				slog.Info("dropped stale push subscription", "user_id", user.UserID)
			}
		default:
			slog.Warn("push delivery failed", "user_id", user.UserID, "kind", kind, "error", err)
		}
	}
	return sent
}

// describeOccurrence formats a reminder body such as "Standup at 09:30 (in 15 min)".
func describeOccurrence(title string, start time.Time, lead time.Duration) string {
	if lead <= 0 {
		return fmt.Sprintf("%s starts now", title)
	}
	return fmt.Sprintf("%s at %s (in %d min)", title, start.UTC().Format("15:04"), int(lead.Minutes()))
}
