// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package notify posts job completion events to a workflow webhook.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/pdiddy/research-agent/internal/httputil"
	"github.com/pdiddy/research-agent/pkg/types"
)

const defaultTimeout = 30 * time.Second

// Payload is the body sent to the webhook.
type Payload struct {
	JobID          string    `json:"job_id"`
	DocumentURL    string    `json:"document_url"`
	ReportTitle    string    `json:"report_title"`
	Query          string    `json:"query"`
	CreatedAt      time.Time `json:"created_at"`
	UserID         string    `json:"user_id,omitempty"`
	CitationsCount int       `json:"citations_count"`
	Summary        string    `json:"summary"`
}

// Webhook delivers payloads to URL, authenticating with APIKey as a bearer
// token when set.
type Webhook struct {
	URL        string
	APIKey     string
	Client     *http.Client
	MaxRetries int
}

// NewWebhook returns a notifier for cfg.
func NewWebhook(cfg types.WebhookConfig) *Webhook {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Webhook{
		URL:    cfg.URL,
		APIKey: cfg.APIKey,
		Client: &http.Client{Timeout: timeout},
	}
}

// Configured reports whether a webhook URL is set.
func (w *Webhook) Configured() bool {
	return w != nil && w.URL != ""
}

// Notify posts p and returns the decoded JSON response. Non-JSON responses
// are reported as {"status": <code>}. Non-2xx statuses are errors.
func (w *Webhook) Notify(ctx context.Context, p Payload) (map[string]any, error) {
	if !w.Configured() {
		return nil, fmt.Errorf("webhook is not configured")
	}

	body, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encoding webhook payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.URL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if w.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+w.APIKey)
	}

	client := w.Client
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	resp, err := httputil.DoWithRetry(ctx, client, req, w.MaxRetries)
	if err != nil {
		return nil, fmt.Errorf("calling webhook: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("reading webhook response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("webhook returned HTTP %d: %s", resp.StatusCode, truncate(string(raw), 200))
	}

	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil || decoded == nil {
		return map[string]any{"status": resp.StatusCode}, nil
	}
	return decoded, nil
}

// truncate keeps at most max runes of s.
func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max]) + "..."
}
