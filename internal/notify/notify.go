// Package notify delivers refresh notifications to the log and to
// optional push endpoints.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/mmcdole/datapass/internal/config"
	"github.com/mmcdole/datapass/internal/domain"
)

// Notifier logs every notification and, when enabled, posts it to the
// configured webhook and ntfy endpoints.
type Notifier struct {
	cfg    config.NotificationsConfig
	client *http.Client
	logger *slog.Logger
}

// New returns a Notifier with the given config
func New(cfg config.NotificationsConfig, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{
		cfg:    cfg,
		client: &http.Client{Timeout: 5 * time.Second},
		logger: logger,
	}
}

func (n *Notifier) Notify(ctx context.Context, note domain.Notification) {
	n.logger.Info("notification", "widget", note.WidgetID, "kind", string(note.Kind), "message", note.Message)
	if !n.cfg.Enabled {
		return
	}
	if n.cfg.Webhook != "" {
		n.sendWebhook(ctx, note)
	}
	if n.cfg.NtfyURL != "" {
		n.sendNtfy(ctx, note)
	}
}

type webhookPayload struct {
	Widget    int    `json:"widget"`
	Kind      string `json:"kind"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

func (n *Notifier) sendWebhook(ctx context.Context, note domain.Notification) {
	n.post(ctx, n.cfg.Webhook, webhookPayload{
		Widget:    note.WidgetID,
		Kind:      string(note.Kind),
		Message:   note.Message,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

type ntfyPayload struct {
	Title    string   `json:"title"`
	Message  string   `json:"message"`
	Priority int      `json:"priority"`
	Tags     []string `json:"tags"`
}

func (n *Notifier) sendNtfy(ctx context.Context, note domain.Notification) {
	priority, tag := 3, "signal_strength"
	switch note.Kind {
	case domain.NotifyVolumeUsedUp:
		priority, tag = 4, "warning"
	case domain.NotifyFail, domain.NotifyFailWiFi, domain.NotifyFailNoConnection:
		priority, tag = 3, "x"
	}
	n.post(ctx, n.cfg.NtfyURL, ntfyPayload{
		Title:    "datapass",
		Message:  note.Message,
		Priority: priority,
		Tags:     []string{tag},
	})
}

func (n *Notifier) post(ctx context.Context, url string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		n.logger.Warn("notification request invalid", "url", url, "error", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := n.client.Do(req)
	if err != nil {
		n.logger.Warn("notification post failed", "url", url, "error", err)
		return
	}
	resp.Body.Close()
}

// Fanout delivers each notification to every Notifier in order
type Fanout []domain.Notifier

func (f Fanout) Notify(ctx context.Context, note domain.Notification) {
	for _, n := range f {
		n.Notify(ctx, note)
	}
}
