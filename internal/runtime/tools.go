package runtime

import (
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/codex-k8s/sapsim-mcp-server/internal/constants"
	"github.com/codex-k8s/sapsim-mcp-server/internal/convert"
	"github.com/codex-k8s/sapsim-mcp-server/internal/dsl"
	"github.com/codex-k8s/sapsim-mcp-server/internal/protocol"
	"github.com/codex-k8s/sapsim-mcp-server/internal/timeutil"
	"github.com/codex-k8s/sapsim-mcp-server/internal/tools"
)

const (
	defaultToolTimeout    = 2 * time.Minute
	defaultTimeoutMessage = "tool execution timed out"
)

// toolSettings is the effective metadata of a registered tool.
type toolSettings struct {
	name           string
	title          string
	description    string
	timeout        time.Duration
	timeoutMessage string
	annotations    *mcp.ToolAnnotations
}

func (s toolSettings) tool() *mcp.Tool {
	return &mcp.Tool{
		Name:        s.name,
		Title:       s.title,
		Description: s.description,
		Annotations: s.annotations,
	}
}

func boolPtr(v bool) *bool { return &v }

var builtinTools = map[string]toolSettings{
	constants.ToolFBL5N: {
		title:       "FBL5N customer line items",
		description: "Query the open items of a customer with transaction FBL5N. Returns the items and an SAP style text export.",
		annotations: &mcp.ToolAnnotations{ReadOnlyHint: true, IdempotentHint: true, OpenWorldHint: boolPtr(false)},
	},
	constants.ToolCobros: {
		title:       "F-28 incoming payment",
		description: "Post an incoming payment against an open customer document with transaction F-28.",
		annotations: &mcp.ToolAnnotations{DestructiveHint: boolPtr(false), OpenWorldHint: boolPtr(false)},
	},
	constants.ToolTextToJSON: {
		title:       "SAP text to JSON",
		description: "Convert an FBL5N or F-28 report printed by SAP GUI back into structured JSON with a summary and next actions.",
		annotations: &mcp.ToolAnnotations{ReadOnlyHint: true, IdempotentHint: true, OpenWorldHint: boolPtr(false)},
	},
	constants.ToolScript: {
		title:       "SAP GUI scripting",
		description: "Run Scripting API calls (start_transaction, set_text, get_text, press, close) against a simulated SAP session.",
		annotations: &mcp.ToolAnnotations{OpenWorldHint: boolPtr(false)},
	},
}

func mergeSettings(name string, override dsl.ToolConfig) toolSettings {
	settings := builtinTools[name]
	settings.name = name
	settings.timeout = timeutil.ParseDurationOrDefault(override.Timeout, defaultToolTimeout)
	settings.timeoutMessage = defaultTimeoutMessage
	if msg := strings.TrimSpace(override.TimeoutMessage); msg != "" {
		settings.timeoutMessage = msg
	}
	if title := strings.TrimSpace(override.Title); title != "" {
		settings.title = title
	}
	if desc := strings.TrimSpace(override.Description); desc != "" {
		settings.description = desc
	}
	if a := override.Annotations; a != nil {
		settings.annotations = &mcp.ToolAnnotations{
			ReadOnlyHint:    a.ReadOnlyHint,
			DestructiveHint: a.DestructiveHint,
			IdempotentHint:  a.IdempotentHint,
			OpenWorldHint:   a.OpenWorldHint,
		}
	}
	return settings
}

func now() string { return time.Now().Format(time.RFC3339) }

func failPayment(in tools.CobrosInput, reason string) protocol.PaymentResponse {
	return protocol.PaymentResponse{
		Status:        protocol.StatusError,
		Message:       reason,
		Error:         reason,
		Timestamp:     now(),
		ToolType:      protocol.ToolTypePayment,
		ExecutionTime: timeutil.FormatElapsed(0),
		AutoMode:      protocol.ModeHeadless,
		CorrelationID: in.CorrelationID,
	}
}

func failQuery(in tools.FBL5NInput, reason string) protocol.QueryResponse {
	return protocol.QueryResponse{
		Status:        protocol.StatusError,
		Message:       reason,
		Error:         reason,
		Items:         []protocol.LineItem{},
		Timestamp:     now(),
		ToolType:      protocol.ToolTypeQuery,
		ExecutionTime: timeutil.FormatElapsed(0),
		AutoMode:      protocol.ModeHeadless,
		CorrelationID: in.CorrelationID,
	}
}

func failConversion(in tools.TextInput, reason string) convert.Result {
	return convert.Result{
		TransactionType:  in.TransactionType,
		ConversionStatus: convert.StatusError,
		Status:           protocol.StatusError,
		Message:          reason,
		Error:            reason,
		Items:            []protocol.LineItem{},
		ConvertedAt:      now(),
		ToolType:         protocol.ToolTypeConversion,
		ExecutionTime:    timeutil.FormatElapsed(0),
		CorrelationID:    in.CorrelationID,
	}
}

func failScript(in tools.ScriptInput, reason string) tools.ScriptResponse {
	return tools.ScriptResponse{
		Status:        protocol.StatusError,
		Message:       reason,
		Error:         reason,
		Steps:         []tools.StepResult{},
		ToolType:      protocol.ToolTypeScript,
		ExecutionTime: timeutil.FormatElapsed(0),
		CorrelationID: in.CorrelationID,
	}
}
