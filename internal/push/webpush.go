package push

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	webpush "github.com/SherClockHolmes/webpush-go"
	"github.com/matheus3301/guftagu/internal/config"
	"github.com/matheus3301/guftagu/internal/model"
	"go.uber.org/zap"
)

// ErrNotConfigured is returned by NewWebPush when the push section lacks a
// subscription or VAPID keys.
var ErrNotConfigured = errors.New("web push not configured")

// WebPush delivers notifications to a single browser push subscription
// using VAPID authentication.
type WebPush struct {
	sub    *webpush.Subscription
	opts   webpush.Options
	logger *zap.Logger
}

// message is the JSON body the service worker receives.
type message struct {
	ID     string `json:"id"`
	Type   string `json:"type"`
	Title  string `json:"title"`
	Body   string `json:"body"`
	ChatID string `json:"chatId,omitempty"`
	Avatar string `json:"avatar,omitempty"`
}

// NewWebPush builds a notifier from the [push] config section.
func NewWebPush(cfg config.Push, client *http.Client, logger *zap.Logger) (*WebPush, error) {
	if !cfg.Enabled() {
		return nil, ErrNotConfigured
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	opts := webpush.Options{
		Subscriber:      cfg.Subscriber,
		VAPIDPublicKey:  cfg.VAPIDPublicKey,
		VAPIDPrivateKey: cfg.VAPIDPrivateKey,
		TTL:             cfg.TTL,
		Urgency:         webpush.UrgencyNormal,
	}
	if client != nil {
		opts.HTTPClient = client
	}
	return &WebPush{
		sub: &webpush.Subscription{
			Endpoint: cfg.Endpoint,
			Keys:     webpush.Keys{P256dh: cfg.P256dh, Auth: cfg.Auth},
		},
		opts:   opts,
		logger: logger,
	}, nil
}

// Deliver encrypts and posts the notification to the push service.
func (w *WebPush) Deliver(ctx context.Context, n model.Notification) error {
	body, err := json.Marshal(message{
		ID:     n.ID,
		Type:   string(n.Type),
		Title:  n.Title,
		Body:   n.Body,
		ChatID: n.ChatID,
		Avatar: n.Avatar,
	})
	if err != nil {
		return fmt.Errorf("encode push message: %w", err)
	}

	opts := w.opts
	resp, err := webpush.SendNotificationWithContext(ctx, body, w.sub, &opts)
	if err != nil {
		return fmt.Errorf("send push: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= http.StatusMultipleChoices {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("push service returned %d: %s", resp.StatusCode, detail)
	}
	w.logger.Debug("push delivered", zap.String("notification_id", n.ID), zap.Int("status", resp.StatusCode))
	return nil
}
