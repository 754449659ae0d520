package usecase

import (
	"context"
	"errors"
	"testing"

	"selfie/model"
	"selfie/testutils"
)

func subscription(endpoint string) model.PushSubscription {
	return model.PushSubscription{
		Endpoint: endpoint,
		Keys:     model.PushKeys{P256dh: "p256dh-key", Auth: "auth-secret"},
	}
}

func TestPushService_Subscribe(t *testing.T) {
	ctx := context.Background()
	users := testutils.NewUserRepo()
	alice := seedUsers(t, users, "alice")["alice"]
	svc := NewPushService(users, testutils.NewPushSender(), nil)

	bad := []model.PushSubscription{
		subscription("http://push.example.com/1"),
		subscription("not a url"),
		{Endpoint: "https://push.example.com/1"},
	}
	for _, sub := range bad {
		if err := svc.Subscribe(ctx, alice.UserID, sub); !model.IsValidation(err) {
			t.Errorf("Subscribe(%q) error = %v, want validation error", sub.Endpoint, err)
		}
	}

	for i := 0; i < 2; i++ {
		if err := svc.Subscribe(ctx, alice.UserID, subscription("https://push.example.com/1")); err != nil {
			t.Fatalf("Subscribe() error = %v", err)
		}
	}
	user, _ := users.FindByID(ctx, alice.UserID)
	if len(user.PushSubscriptions) != 1 {
		t.Errorf("re-subscribing duplicated the endpoint: %d", len(user.PushSubscriptions))
	}

	if err := svc.Unsubscribe(ctx, alice.UserID, "https://push.example.com/1"); err != nil {
		t.Fatalf("Unsubscribe() error = %v", err)
	}
	user, _ = users.FindByID(ctx, alice.UserID)
	if len(user.PushSubscriptions) != 0 {
		t.Errorf("subscription left after Unsubscribe: %+v", user.PushSubscriptions)
	}
}

func TestPushService_SendTestDropsGone(t *testing.T) {
	ctx := context.Background()
	users := testutils.NewUserRepo()
	alice := seedUsers(t, users, "alice")["alice"]
	sender := testutils.NewPushSender()
	sender.Gone["https://push.example.com/stale"] = true
	svc := NewPushService(users, sender, nil)

	if _, err := svc.SendTest(ctx, alice.UserID); !model.IsValidation(err) {
		t.Errorf("SendTest() without devices error = %v", err)
	}

	for _, ep := range []string{"https://push.example.com/live", "https://push.example.com/stale"} {
		if err := svc.Subscribe(ctx, alice.UserID, subscription(ep)); err != nil {
			t.Fatal(err)
		}
	}
	sent, err := svc.SendTest(ctx, alice.UserID)
	if err != nil || sent != 1 {
		t.Fatalf("SendTest() = %d, %v; want 1", sent, err)
	}
	user, _ := users.FindByID(ctx, alice.UserID)
	if len(user.PushSubscriptions) != 1 || user.PushSubscriptions[0].Endpoint != "https://push.example.com/live" {
		t.Errorf("stale subscription not dropped: %+v", user.PushSubscriptions)
	}
	if d := sender.Deliveries(); len(d) != 1 || d[0].Kind != "test" {
		t.Errorf("deliveries = %+v", d)
	}
}

func TestPushService_Disabled(t *testing.T) {
	sender := testutils.NewPushSender()
	sender.Disabled = true
	svc := NewPushService(testutils.NewUserRepo(), sender, nil)

	if _, err := svc.PublicKey(); !errors.Is(err, model.ErrPushNotConfigured) {
		t.Errorf("PublicKey() error = %v", err)
	}
	if _, err := svc.SendTest(context.Background(), "someone"); !errors.Is(err, model.ErrPushNotConfigured) {
		t.Errorf("SendTest() error = %v", err)
	}
}
