// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/research-agent/internal/httputil"
	"github.com/pdiddy/research-agent/pkg/types"
)

func init() {
	httputil.RetryBaseDelay = time.Millisecond
}

func TestNotify(t *testing.T) {
	var got map[string]any
	var auth string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"received":true,"run_id":"abc"}`))
	}))
	defer ts.Close()

	wh := NewWebhook(types.WebhookConfig{URL: ts.URL, APIKey: "hook-key"})
	created := time.Date(2026, 3, 9, 12, 0, 0, 0, time.UTC)
	resp, err := wh.Notify(context.Background(), Payload{
		JobID:          "job-1",
		DocumentURL:    "http://localhost:8000/documents/x.md",
		ReportTitle:    "Title",
		Query:          "quantum computing",
		CreatedAt:      created,
		CitationsCount: 3,
		Summary:        "Summary.",
	})
	require.NoError(t, err)

	assert.Equal(t, map[string]any{"received": true, "run_id": "abc"}, resp)
	assert.Equal(t, "Bearer hook-key", auth)
	assert.Equal(t, "job-1", got["job_id"])
	assert.Equal(t, "Title", got["report_title"])
	assert.Equal(t, float64(3), got["citations_count"])
	assert.Equal(t, "2026-03-09T12:00:00Z", got["created_at"])
	assert.NotContains(t, got, "user_id")
}

func TestNotifyNonJSONResponse(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte("ok"))
	}))
	defer ts.Close()

	wh := NewWebhook(types.WebhookConfig{URL: ts.URL})
	resp, err := wh.Notify(context.Background(), Payload{JobID: "j"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"status": http.StatusAccepted}, resp)
}

func TestNotifyErrors(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadRequest)
	}))
	defer ts.Close()

	_, err := NewWebhook(types.WebhookConfig{URL: ts.URL}).Notify(context.Background(), Payload{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 400")

	unconfigured := NewWebhook(types.WebhookConfig{})
	assert.False(t, unconfigured.Configured())
	_, err = unconfigured.Notify(context.Background(), Payload{})
	assert.Error(t, err)
}

func TestNotifyRetriesTransientFailures(t *testing.T) {
	calls := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	defer ts.Close()

	_, err := NewWebhook(types.WebhookConfig{URL: ts.URL}).Notify(context.Background(), Payload{})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestTruncateKeepsRunesWhole(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 10, "short"},
		{"abcdef", 3, "abc..."},
		{"ééééé", 2, "éé..."},
		{"日本語テキスト", 3, "日本語..."},
	}
	for _, tt := range tests {
		got := truncate(tt.in, tt.max)
		assert.Equal(t, tt.want, got)
		assert.True(t, utf8.ValidString(got), "truncate(%q, %d) produced invalid UTF-8", tt.in, tt.max)
	}
}

func TestNotifyErrorBodyIsValidUTF8(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(strings.Repeat("é", 300)))
	}))
	defer ts.Close()

	_, err := NewWebhook(types.WebhookConfig{URL: ts.URL}).Notify(context.Background(), Payload{})
	require.Error(t, err)
	assert.True(t, utf8.ValidString(err.Error()))
	assert.Contains(t, err.Error(), strings.Repeat("é", 200)+"...")
}
