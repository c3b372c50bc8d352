package constants

// Tool names exposed by the server.
const (
	ToolFBL5N      = "fbl5n"
	ToolCobros     = "cobros"
	ToolTextToJSON = "text_to_json"
	ToolScript     = "sap_script"
)

// ToolNames lists every tool in registration order.
var ToolNames = []string{ToolFBL5N, ToolCobros, ToolTextToJSON, ToolScript}

// ExecutionsURI is the resource exposing the execution journal.
const ExecutionsURI = "sapsim://executions"

// Server transports.
const (
	TransportHTTP  = "http"
	TransportStdio = "stdio"
)

// GUI modes.
const (
	GUIModeAuto     = "auto"
	GUIModeGUI      = "gui"
	GUIModeHeadless = "headless"
)

// Idempotency cache key strategies.
const (
	CacheKeyStrategyAuto          = "auto"
	CacheKeyStrategyCorrelationID = "correlation_id"
	CacheKeyStrategyArgumentsHash = "arguments_hash"
)
