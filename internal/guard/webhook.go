package guard

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/codex-k8s/sapsim-mcp-server/internal/security"
)

// Webhook decisions.
const (
	DecisionApprove = "approve"
	DecisionDeny    = "deny"
	DecisionError   = "error"
)

// Webhook asks an external HTTP endpoint to approve tool calls, for example a
// payment release workflow in front of cobros.
type Webhook struct {
	// URL is the approver endpoint.
	URL string
	// Method overrides the HTTP method.
	Method string
	// Headers adds HTTP headers.
	Headers map[string]string
	// Timeout is the HTTP timeout.
	Timeout time.Duration
	// Tools limits approval to these tools; empty means every tool.
	Tools []string
	// Client overrides the HTTP client.
	Client *http.Client
}

// WebhookRequest is the payload posted to the webhook.
type WebhookRequest struct {
	CorrelationID string         `json:"correlation_id"`
	Tool          string         `json:"tool"`
	Arguments     map[string]any `json:"arguments"`
}

// WebhookResponse is the body expected from the webhook.
type WebhookResponse struct {
	Decision string `json:"decision"`
	Reason   string `json:"reason,omitempty"`
}

// Name implements Approver.
func (w Webhook) Name() string { return "webhook" }

// Approve implements Approver. Transport failures deny the call.
func (w Webhook) Approve(ctx context.Context, req Request) (Decision, error) {
	if len(w.Tools) > 0 && !slices.Contains(w.Tools, req.Tool) {
		return Decision{Allowed: true, Reason: "approval not required", Source: w.Name()}, nil
	}
	if w.URL == "" {
		return w.deny("approver url is empty"), nil
	}

	body, err := json.Marshal(WebhookRequest{
		CorrelationID: req.CorrelationID,
		Tool:          req.Tool,
		Arguments:     security.RedactArguments(req.Arguments),
	})
	if err != nil {
		return w.deny("failed to encode request"), fmt.Errorf("encode approval request: %w", err)
	}

	method := w.Method
	if method == "" {
		method = http.MethodPost
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, w.URL, bytes.NewReader(body))
	if err != nil {
		return w.deny("failed to build request"), fmt.Errorf("build approval request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	for key, value := range w.Headers {
		httpReq.Header.Set(key, value)
	}

	client := w.Client
	if client == nil {
		client = &http.Client{Timeout: w.Timeout}
	}
	resp, err := client.Do(httpReq)
	if err != nil {
		return w.deny("approver request failed"), fmt.Errorf("approval request: %w", err)
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return w.deny(fmt.Sprintf("approver status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))), nil
	}

	var parsed WebhookResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return w.deny("invalid approver response"), fmt.Errorf("decode approval response: %w", err)
	}

	switch decision := strings.ToLower(strings.TrimSpace(parsed.Decision)); decision {
	case DecisionApprove:
		return Decision{Allowed: true, Reason: orDefault(parsed.Reason, "approved"), Source: w.Name()}, nil
	case DecisionDeny:
		return w.deny(orDefault(parsed.Reason, "denied")), nil
	case DecisionError:
		return w.deny(orDefault(parsed.Reason, "approver error")), nil
	default:
		return w.deny("unknown approver decision"), fmt.Errorf("unknown approver decision: %q", decision)
	}
}

func (w Webhook) deny(reason string) Decision {
	return Decision{Reason: reason, Source: w.Name()}
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
