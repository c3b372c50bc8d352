package dsl

import (
	"fmt"
	"net/url"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/codex-k8s/sapsim-mcp-server/internal/constants"
)

var (
	companyCodePattern = regexp.MustCompile(`^\d{4}$`)
	currencyPattern    = regexp.MustCompile(`^[A-Z]{3}$`)
)

// Validate applies defaults and verifies required fields.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}
	normalizeConfig(cfg)

	if cfg.Server.Name == "" {
		return fmt.Errorf("server.name is required")
	}
	if cfg.Server.Version == "" {
		return fmt.Errorf("server.version is required")
	}
	switch cfg.Server.Transport {
	case constants.TransportHTTP, constants.TransportStdio:
	default:
		return fmt.Errorf("server.transport must be http or stdio")
	}
	if !strings.HasPrefix(cfg.Server.HTTP.Path, "/") {
		return fmt.Errorf("server.http.path must start with /")
	}
	durations := map[string]string{
		"server.shutdown_timeout":      cfg.Server.ShutdownTimeout,
		"server.http.read_timeout":     cfg.Server.HTTP.ReadTimeout,
		"server.http.write_timeout":    cfg.Server.HTTP.WriteTimeout,
		"server.http.idle_timeout":     cfg.Server.HTTP.IdleTimeout,
		"server.idempotency_cache.ttl": cfg.Server.Idempotency.TTL,
		"simulator.processing_delay":   cfg.Simulator.ProcessingDelay,
		"gui.dispatch_timeout":         cfg.GUI.DispatchTimeout,
		"gui.hold":                     cfg.GUI.Hold,
		"approval.timeout":             cfg.Approval.Timeout,
	}
	for field, value := range durations {
		if err := checkDuration(field, value); err != nil {
			return err
		}
	}

	if cfg.Server.Idempotency.Enabled {
		if cfg.Server.Idempotency.MaxEntries < 0 {
			return fmt.Errorf("server.idempotency_cache.max_entries must be >= 0")
		}
		switch cfg.Server.Idempotency.KeyStrategy {
		case constants.CacheKeyStrategyAuto, constants.CacheKeyStrategyCorrelationID, constants.CacheKeyStrategyArgumentsHash:
		default:
			return fmt.Errorf("server.idempotency_cache.key_strategy must be auto, correlation_id, or arguments_hash")
		}
	}

	if !companyCodePattern.MatchString(cfg.Simulator.CompanyCode) {
		return fmt.Errorf("simulator.company_code must be 4 digits")
	}
	if !currencyPattern.MatchString(cfg.Simulator.Currency) {
		return fmt.Errorf("simulator.currency must be a 3 letter ISO code")
	}

	switch cfg.GUI.Mode {
	case constants.GUIModeAuto, constants.GUIModeGUI, constants.GUIModeHeadless:
	default:
		return fmt.Errorf("gui.mode must be auto, gui or headless")
	}

	if cfg.Limits.RatePerMinute < 0 || cfg.Limits.MaxTotal < 0 {
		return fmt.Errorf("limits.rate_per_minute and limits.max_total must be >= 0")
	}
	for field, policy := range cfg.Limits.Fields {
		if policy.MinLength < 0 || policy.MaxLength < 0 {
			return fmt.Errorf("limits.fields.%s lengths must be >= 0", field)
		}
		if policy.MaxLength > 0 && policy.MinLength > policy.MaxLength {
			return fmt.Errorf("limits.fields.%s.min_length exceeds max_length", field)
		}
		if policy.Regex != "" {
			if _, err := regexp.Compile(policy.Regex); err != nil {
				return fmt.Errorf("limits.fields.%s.regex is invalid: %w", field, err)
			}
		}
	}

	if cfg.Approval.URL != "" {
		parsed, err := url.Parse(cfg.Approval.URL)
		if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
			return fmt.Errorf("approval.url must be an absolute http(s) url")
		}
		for _, name := range cfg.Approval.Tools {
			if !slices.Contains(constants.ToolNames, name) {
				return fmt.Errorf("approval.tools: unknown tool %s", name)
			}
		}
	}

	for name, tool := range cfg.Tools {
		if !slices.Contains(constants.ToolNames, name) {
			return fmt.Errorf("tools.%s: unknown tool", name)
		}
		if err := checkDuration("tools."+name+".timeout", tool.Timeout); err != nil {
			return err
		}
	}

	resourceURIs := map[string]struct{}{constants.ExecutionsURI: {}}
	for i, res := range cfg.Resources {
		if res.URI == "" {
			return fmt.Errorf("resources[%d].uri is required", i)
		}
		if _, exists := resourceURIs[res.URI]; exists {
			return fmt.Errorf("duplicate resource uri: %s", res.URI)
		}
		resourceURIs[res.URI] = struct{}{}
	}

	return nil
}

func checkDuration(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("%s is invalid: %w", field, err)
	}
	if parsed < 0 {
		return fmt.Errorf("%s must not be negative", field)
	}
	return nil
}
