package guard

import (
	"context"
	"fmt"
	"regexp"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/codex-k8s/sapsim-mcp-server/internal/templates"
)

// FieldPolicy constrains a string argument.
type FieldPolicy struct {
	// Regex must match the whole value when set.
	Regex string
	// MinLength is the minimum length; zero disables the check.
	MinLength int
	// MaxLength is the maximum length; zero disables the check.
	MaxLength int
}

// LimitsConfig configures Limits.
type LimitsConfig struct {
	// RatePerMinute caps calls per tool per minute; zero disables it.
	RatePerMinute int
	// MaxTotal caps calls per tool for the process lifetime; zero disables it.
	MaxTotal int
	// Fields maps argument names to policies.
	Fields map[string]FieldPolicy
}

type toolUsage struct {
	calls   int
	limiter *rate.Limiter
}

// Limits throttles tool calls and checks argument formats.
type Limits struct {
	cfg      LimitsConfig
	patterns map[string]*regexp.Regexp
	messages templates.Renderer

	mu    sync.Mutex
	usage map[string]*toolUsage
}

// NewLimits compiles field patterns and returns a Limits approver.
func NewLimits(cfg LimitsConfig, messages templates.Renderer) (*Limits, error) {
	patterns := make(map[string]*regexp.Regexp, len(cfg.Fields))
	for field, policy := range cfg.Fields {
		if policy.Regex == "" {
			continue
		}
		re, err := regexp.Compile("^(?:" + policy.Regex + ")$")
		if err != nil {
			return nil, fmt.Errorf("field %s regex: %w", field, err)
		}
		patterns[field] = re
	}
	return &Limits{
		cfg:      cfg,
		patterns: patterns,
		messages: messages,
		usage:    make(map[string]*toolUsage),
	}, nil
}

// Name implements Approver.
func (l *Limits) Name() string { return "limits" }

// Approve implements Approver.
func (l *Limits) Approve(_ context.Context, req Request) (Decision, error) {
	if reason := l.checkFields(req.Arguments); reason != "" {
		return Decision{Reason: reason, Source: l.Name()}, nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	usage := l.usage[req.Tool]
	if usage == nil {
		usage = &toolUsage{}
		if l.cfg.RatePerMinute > 0 {
			usage.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(l.cfg.RatePerMinute)), l.cfg.RatePerMinute)
		}
		l.usage[req.Tool] = usage
	}
	if l.cfg.MaxTotal > 0 && usage.calls >= l.cfg.MaxTotal {
		return Decision{Reason: l.render("limits.max_total", nil, "Maximum number of calls exceeded"), Source: l.Name()}, nil
	}
	if usage.limiter != nil && !usage.limiter.Allow() {
		return Decision{Reason: l.render("limits.rate_limit", nil, "Rate limit exceeded"), Source: l.Name()}, nil
	}
	usage.calls++
	return Decision{Allowed: true, Source: l.Name()}, nil
}

func (l *Limits) checkFields(args map[string]any) string {
	for field, policy := range l.cfg.Fields {
		value, ok := args[field].(string)
		if !ok || value == "" {
			continue
		}
		data := map[string]any{"Field": field, "MinLength": policy.MinLength, "MaxLength": policy.MaxLength}
		switch {
		case policy.MinLength > 0 && len(value) < policy.MinLength:
			return l.render("limits.field_min_length", data, fmt.Sprintf("Field %s is too short", field))
		case policy.MaxLength > 0 && len(value) > policy.MaxLength:
			return l.render("limits.field_max_length", data, fmt.Sprintf("Field %s is too long", field))
		}
		if re := l.patterns[field]; re != nil && !re.MatchString(value) {
			return l.render("limits.field_regex", data, fmt.Sprintf("Field %s does not match required format", field))
		}
	}
	return ""
}

func (l *Limits) render(key string, data map[string]any, fallback string) string {
	return templates.RenderOr(l.messages, key, data, fallback)
}
