package alerts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Alerter is the side channel for failures that warrant human attention.
// Implementations must be fire-and-forget: an alert that cannot be delivered
// is logged and dropped, never surfaced to the caller.
type Alerter interface {
	AlertCriticalError(ctx context.Context, err error, title string, context map[string]string)
}

// WebhookAlerter posts alerts to a Slack-compatible incoming webhook URL.
type WebhookAlerter struct {
	url    string
	client *http.Client
	logger *zap.Logger
}

// NewWebhookAlerter creates an alerter for the given incoming webhook URL.
func NewWebhookAlerter(url string, logger *zap.Logger) *WebhookAlerter {
	return &WebhookAlerter{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
		logger: logger,
	}
}

func (a *WebhookAlerter) AlertCriticalError(ctx context.Context, err error, title string, fields map[string]string) {
	if a.url == "" {
		a.logger.Warn("critical alert dropped, no alert webhook configured", zap.String("title", title))
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, ":rotating_light: *%s*\n%v", title, err)
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&sb, "\n• %s: %s", k, fields[k])
	}

	body, mErr := json.Marshal(map[string]string{"text": sb.String()})
	if mErr != nil {
		a.logger.Error("failed to encode alert payload", zap.Error(mErr))
		return
	}

	req, rErr := http.NewRequestWithContext(ctx, http.MethodPost, a.url, bytes.NewReader(body))
	if rErr != nil {
		a.logger.Error("failed to build alert request", zap.Error(rErr))
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, dErr := a.client.Do(req)
	if dErr != nil {
		a.logger.Error("failed to deliver critical alert", zap.String("title", title), zap.Error(dErr))
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		a.logger.Error("alert webhook rejected payload",
			zap.String("title", title),
			zap.Int("status", resp.StatusCode),
		)
	}
}

// NopAlerter discards all alerts. Used when no alert channel is configured
// and in tests.
type NopAlerter struct{}

func (NopAlerter) AlertCriticalError(ctx context.Context, err error, title string, fields map[string]string) {
}
