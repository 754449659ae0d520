package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"selfie/config"
	"selfie/model"
	"selfie/utils"

	webpush "github.com/SherClockHolmes/webpush-go"
	"github.com/doyensec/safeurl"
)

// PushMessage is the JSON payload delivered to the service worker.
type PushMessage struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	URL   string `json:"url,omitempty"`
	Tag   string `json:"tag,omitempty"`
}

// PushSender delivers Web Push notifications signed with the server VAPID keys.
type PushSender struct {
	cfg    config.PushConfig
	client *http.Client
}

// NewPushSender builds a sender. When client is nil, deliveries go through an
// SSRF-guarded client that refuses private and loopback endpoints.
func NewPushSender(cfg config.PushConfig, client *http.Client) *PushSender {
	if client == nil {
		client = NewSafeHTTPClient(cfg.Timeout)
	}
	return &PushSender{cfg: cfg, client: client}
}

// NewSafeHTTPClient returns a client restricted to public http(s) hosts on
// the standard ports.
func NewSafeHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	cfg := safeurl.GetConfigBuilder().
		SetTimeout(timeout).
		SetAllowedSchemes("http", "https").
		SetAllowedPorts(80, 443).
		Build()
	return safeurl.Client(cfg).Client
}

func (p *PushSender) Enabled() bool {
	return p != nil && p.cfg.Enabled()
}

func (p *PushSender) PublicKey() string {
	if p == nil {
		return ""
	}
	return p.cfg.VAPIDPublicKey
}

// Send delivers msg to a single subscription. A 404 or 410 from the push
// service yields model.ErrSubscriptionGone so the caller can drop it.
func (p *PushSender) Send(ctx context.Context, kind string, sub model.PushSubscription, msg PushMessage) error {
	if !p.Enabled() {
		return model.ErrPushNotConfigured
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to encode push payload: %w", err)
	}

	resp, err := webpush.SendNotificationWithContext(ctx, payload, &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			Auth:   sub.Keys.Auth,
			P256dh: sub.Keys.P256dh,
		},
	}, &webpush.Options{
		HTTPClient:      p.client,
		Subscriber:      p.cfg.Subscriber,
		VAPIDPublicKey:  p.cfg.VAPIDPublicKey,
		VAPIDPrivateKey: p.cfg.VAPIDPrivateKey,
		TTL:             p.cfg.TTL,
		Urgency:         webpush.UrgencyNormal,
	})
	if err != nil {
		utils.TrackPushDelivery(kind, "error")
		return fmt.Errorf("push delivery failed: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		utils.TrackPushDelivery(kind, "gone")
		return model.ErrSubscriptionGone
	case resp.StatusCode >= 300:
		utils.TrackPushDelivery(kind, "rejected")
		return fmt.Errorf("push service responded with status %d", resp.StatusCode)
	}

	utils.TrackPushDelivery(kind, "sent")
	return nil
}
