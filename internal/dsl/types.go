package dsl

// Config is the top-level YAML configuration.
type Config struct {
	// Server describes the MCP server settings.
	Server ServerConfig `yaml:"server"`
	// Simulator configures the simulated SAP system.
	Simulator SimulatorConfig `yaml:"simulator"`
	// GUI configures the visual layer.
	GUI GUIConfig `yaml:"gui"`
	// Limits throttles tool calls.
	Limits LimitsConfig `yaml:"limits"`
	// Approval asks an external webhook before selected tools run.
	Approval ApprovalConfig `yaml:"approval"`
	// Tools overrides tool metadata by tool name.
	Tools map[string]ToolConfig `yaml:"tools"`
	// Resources lists static resources.
	Resources []ResourceConfig `yaml:"resources"`
}

// ServerConfig defines MCP server settings.
type ServerConfig struct {
	// Name is the MCP server name.
	Name string `yaml:"name"`
	// Version is the MCP server version.
	Version string `yaml:"version"`
	// Transport selects the server transport ("http" or "stdio").
	Transport string `yaml:"transport"`
	// ShutdownTimeout overrides graceful shutdown duration.
	ShutdownTimeout string `yaml:"shutdown_timeout"`
	// Idempotency configures cobros response replay.
	Idempotency IdempotencyConfig `yaml:"idempotency_cache"`
	// HTTP configures HTTP transport.
	HTTP HTTPConfig `yaml:"http"`
}

// HTTPConfig configures the HTTP transport.
type HTTPConfig struct {
	// Listen is the HTTP listen address.
	Listen string `yaml:"listen"`
	// Path is the MCP HTTP endpoint path.
	Path string `yaml:"path"`
	// ReadTimeout limits request read time.
	ReadTimeout string `yaml:"read_timeout"`
	// WriteTimeout limits response write time.
	WriteTimeout string `yaml:"write_timeout"`
	// IdleTimeout controls idle connections.
	IdleTimeout string `yaml:"idle_timeout"`
	// Stateless disables session tracking.
	Stateless bool `yaml:"stateless"`
}

// IdempotencyConfig configures response caching for repeated tool calls.
type IdempotencyConfig struct {
	// Enabled toggles idempotency caching.
	Enabled bool `yaml:"enabled"`
	// TTL controls how long cached responses are kept.
	TTL string `yaml:"ttl"`
	// MaxEntries limits the cache size.
	MaxEntries int `yaml:"max_entries"`
	// KeyStrategy selects cache key strategy (correlation_id, arguments_hash, auto).
	KeyStrategy string `yaml:"key_strategy"`
}

// SimulatorConfig configures the simulated SAP system.
type SimulatorConfig struct {
	// CompanyCode is the default 4 digit company code.
	CompanyCode string `yaml:"company_code"`
	// Currency is the posting currency of payments.
	Currency string `yaml:"currency"`
	// User is printed in report headers.
	User string `yaml:"user"`
	// Client is the SAP client printed in report headers.
	Client string `yaml:"client"`
	// Seed fixes payment document numbering; zero seeds from the clock.
	Seed uint64 `yaml:"seed"`
	// ProcessingDelay simulates transaction runtime.
	ProcessingDelay string `yaml:"processing_delay"`
}

// GUIConfig configures the visual layer.
type GUIConfig struct {
	// Mode is auto, gui or headless.
	Mode string `yaml:"mode"`
	// DispatchTimeout bounds waiting for the UI goroutine.
	DispatchTimeout string `yaml:"dispatch_timeout"`
	// Hold keeps the final window on screen.
	Hold string `yaml:"hold"`
}

// LimitsConfig throttles tool calls.
type LimitsConfig struct {
	// RatePerMinute caps calls per tool per minute.
	RatePerMinute int `yaml:"rate_per_minute"`
	// MaxTotal caps calls per tool for the process lifetime.
	MaxTotal int `yaml:"max_total"`
	// Fields constrains string arguments by name.
	Fields map[string]FieldPolicy `yaml:"fields"`
}

// FieldPolicy defines validation rules for a string argument.
type FieldPolicy struct {
	// Regex must match the whole value.
	Regex string `yaml:"regex"`
	// MinLength sets string minimum length.
	MinLength int `yaml:"min_length"`
	// MaxLength sets string maximum length.
	MaxLength int `yaml:"max_length"`
}

// ApprovalConfig configures the approval webhook.
type ApprovalConfig struct {
	// URL is the webhook endpoint; empty disables approval.
	URL string `yaml:"url"`
	// Method overrides the HTTP method (POST by default).
	Method string `yaml:"method"`
	// Headers are added to every webhook request.
	Headers map[string]string `yaml:"headers"`
	// Timeout bounds a single webhook call.
	Timeout string `yaml:"timeout"`
	// Tools lists the tools that need approval; empty means cobros only.
	Tools []string `yaml:"tools"`
}

// ToolConfig overrides metadata of a built-in tool.
type ToolConfig struct {
	// Disabled hides the tool.
	Disabled bool `yaml:"disabled"`
	// Title is the human-friendly tool title.
	Title string `yaml:"title"`
	// Description explains the tool for the agent.
	Description string `yaml:"description"`
	// Timeout bounds a single call.
	Timeout string `yaml:"timeout"`
	// TimeoutMessage is returned on timeout.
	TimeoutMessage string `yaml:"timeout_message"`
	// Annotations provides optional tool hints.
	Annotations *ToolAnnotationsConfig `yaml:"annotations,omitempty"`
}

// ToolAnnotationsConfig defines tool behavior hints.
type ToolAnnotationsConfig struct {
	// ReadOnlyHint indicates a read-only tool.
	ReadOnlyHint bool `yaml:"read_only_hint,omitempty"`
	// DestructiveHint indicates the tool may be destructive.
	DestructiveHint *bool `yaml:"destructive_hint,omitempty"`
	// IdempotentHint indicates repeated calls have no additional effect.
	IdempotentHint bool `yaml:"idempotent_hint,omitempty"`
	// OpenWorldHint indicates interaction with external entities.
	OpenWorldHint *bool `yaml:"open_world_hint,omitempty"`
}

// ResourceConfig declares a static MCP resource.
type ResourceConfig struct {
	// Name is a human-friendly resource name.
	Name string `yaml:"name"`
	// URI is the resource identifier.
	URI string `yaml:"uri"`
	// Description explains the resource.
	Description string `yaml:"description"`
	// MIMEType sets the content type.
	MIMEType string `yaml:"mime_type"`
	// Text is the static resource content.
	Text string `yaml:"text"`
}
