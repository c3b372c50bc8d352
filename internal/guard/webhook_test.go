package guard

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func webhookServer(t *testing.T, status int, body string, seen *WebhookRequest) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.Header.Get("X-Approval-Token"))
		if seen != nil {
			assert.NoError(t, json.NewDecoder(r.Body).Decode(seen))
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestWebhook_Decisions(t *testing.T) {
	cases := []struct {
		name    string
		status  int
		body    string
		allowed bool
		reason  string
		wantErr bool
	}{
		{name: "approve", status: http.StatusOK, body: `{"decision":"approve"}`, allowed: true, reason: "approved"},
		{name: "deny", status: http.StatusOK, body: `{"decision":"deny","reason":"over credit limit"}`, reason: "over credit limit"},
		{name: "error", status: http.StatusOK, body: `{"decision":"error"}`, reason: "approver error"},
		{name: "status", status: http.StatusBadGateway, body: "down", reason: "approver status 502: down"},
		{name: "garbage", status: http.StatusOK, body: "{", reason: "invalid approver response", wantErr: true},
		{name: "unknown", status: http.StatusOK, body: `{"decision":"maybe"}`, reason: "unknown approver decision", wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := webhookServer(t, tc.status, tc.body, nil)
			w := Webhook{URL: srv.URL, Headers: map[string]string{"X-Approval-Token": "secret"}, Timeout: time.Second}

			decision, err := w.Approve(context.Background(), Request{Tool: "cobros"})
			if tc.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tc.allowed, decision.Allowed)
			assert.Equal(t, tc.reason, decision.Reason)
			assert.Equal(t, "webhook", decision.Source)
		})
	}
}

func TestWebhook_RedactsPayload(t *testing.T) {
	var seen WebhookRequest
	srv := webhookServer(t, http.StatusOK, `{"decision":"approve"}`, &seen)
	w := Webhook{URL: srv.URL, Headers: map[string]string{"X-Approval-Token": "secret"}}

	_, err := w.Approve(context.Background(), Request{
		Tool:          "cobros",
		CorrelationID: "c-1",
		Arguments:     map[string]any{"customer": "100001", "password": "hunter2"},
	})
	require.NoError(t, err)
	assert.Equal(t, "cobros", seen.Tool)
	assert.Equal(t, "c-1", seen.CorrelationID)
	assert.Equal(t, "100001", seen.Arguments["customer"])
	assert.NotEqual(t, "hunter2", seen.Arguments["password"])
}

func TestWebhook_SkipsOtherTools(t *testing.T) {
	w := Webhook{URL: "http://127.0.0.1:1", Tools: []string{"cobros"}}

	decision, err := w.Approve(context.Background(), Request{Tool: "fbl5n"})
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
}

func TestWebhook_EmptyURL(t *testing.T) {
	decision, err := Webhook{}.Approve(context.Background(), Request{Tool: "cobros"})
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
}
