package guard

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codex-k8s/sapsim-mcp-server/internal/templates"
)

type stubApprover struct {
	name     string
	decision Decision
	err      error
	calls    int
}

func (s *stubApprover) Name() string { return s.name }

func (s *stubApprover) Approve(context.Context, Request) (Decision, error) {
	s.calls++
	return s.decision, s.err
}

var _ Approver = Chain{}

func TestChain_Nested(t *testing.T) {
	inner := Chain{&stubApprover{name: "inner", decision: Decision{Reason: "blocked"}}}
	var outer Approver = Chain{&stubApprover{name: "allow", decision: Decision{Allowed: true}}, inner}

	decision, err := outer.Approve(context.Background(), Request{Tool: "cobros"})
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.Equal(t, "inner", decision.Source)
	assert.Equal(t, "chain", outer.Name())
}

func TestChain(t *testing.T) {
	allow := &stubApprover{name: "allow", decision: Decision{Allowed: true}}
	deny := &stubApprover{name: "deny", decision: Decision{Reason: "no"}}
	after := &stubApprover{name: "after", decision: Decision{Allowed: true}}

	decision, err := Chain{allow, deny, after}.Approve(context.Background(), Request{Tool: "cobros"})
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.Equal(t, "deny", decision.Source)
	assert.Zero(t, after.calls)

	decision, err = Chain{}.Approve(context.Background(), Request{})
	require.NoError(t, err)
	assert.True(t, decision.Allowed)

	boom := errors.New("boom")
	decision, err = Chain{&stubApprover{name: "broken", err: boom}}.Approve(context.Background(), Request{})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, "broken", decision.Source)
}

func TestLimits_MaxTotalPerTool(t *testing.T) {
	l, err := NewLimits(LimitsConfig{MaxTotal: 2}, nil)
	require.NoError(t, err)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		d, err := l.Approve(ctx, Request{Tool: "cobros"})
		require.NoError(t, err)
		assert.True(t, d.Allowed)
	}
	d, _ := l.Approve(ctx, Request{Tool: "cobros"})
	assert.False(t, d.Allowed)
	assert.Equal(t, "Maximum number of calls exceeded", d.Reason)

	d, _ = l.Approve(ctx, Request{Tool: "fbl5n"})
	assert.True(t, d.Allowed)
}

func TestLimits_RatePerMinute(t *testing.T) {
	l, err := NewLimits(LimitsConfig{RatePerMinute: 1}, nil)
	require.NoError(t, err)

	d, _ := l.Approve(context.Background(), Request{Tool: "fbl5n"})
	assert.True(t, d.Allowed)
	d, _ = l.Approve(context.Background(), Request{Tool: "fbl5n"})
	assert.False(t, d.Allowed)
	assert.Equal(t, "Rate limit exceeded", d.Reason)
}

func TestLimits_Fields(t *testing.T) {
	messages, err := templates.Load("en")
	require.NoError(t, err)
	l, err := NewLimits(LimitsConfig{Fields: map[string]FieldPolicy{
		"customer": {Regex: `\d+`, MinLength: 6, MaxLength: 6},
	}}, messages)
	require.NoError(t, err)

	cases := []struct {
		value   any
		allowed bool
		reason  string
	}{
		{value: "123456", allowed: true},
		{value: "123", reason: "Field customer must be at least 6 characters"},
		{value: "1234567", reason: "Field customer must be at most 6 characters"},
		{value: "12345a", reason: "Field customer does not match required format"},
		{value: 42, allowed: true},
	}
	for _, tc := range cases {
		d, err := l.Approve(context.Background(), Request{Tool: "cobros", Arguments: map[string]any{"customer": tc.value}})
		require.NoError(t, err)
		assert.Equal(t, tc.allowed, d.Allowed, "%v", tc.value)
		assert.Equal(t, tc.reason, d.Reason, "%v", tc.value)
	}
}

func TestNewLimits_InvalidRegex(t *testing.T) {
	_, err := NewLimits(LimitsConfig{Fields: map[string]FieldPolicy{"customer": {Regex: "("}}}, nil)
	assert.ErrorContains(t, err, "field customer regex")
}
