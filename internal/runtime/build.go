// Package runtime registers the SAP simulator tools on an MCP server.
package runtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/codex-k8s/sapsim-mcp-server/internal/audit"
	"github.com/codex-k8s/sapsim-mcp-server/internal/constants"
	"github.com/codex-k8s/sapsim-mcp-server/internal/dsl"
	"github.com/codex-k8s/sapsim-mcp-server/internal/guard"
	"github.com/codex-k8s/sapsim-mcp-server/internal/idempotency"
	"github.com/codex-k8s/sapsim-mcp-server/internal/protocol"
	"github.com/codex-k8s/sapsim-mcp-server/internal/security"
	"github.com/codex-k8s/sapsim-mcp-server/internal/timeutil"
	"github.com/codex-k8s/sapsim-mcp-server/internal/tools"
)

// Builder constructs an MCP server from the DSL config.
type Builder struct {
	// Logger is used for structured logging.
	Logger *slog.Logger
	// Journal records executions and guard decisions.
	Journal *audit.Journal
	// Toolkit runs the tools.
	Toolkit *tools.Toolkit
	// Guard approves calls before they run; nil allows everything.
	Guard guard.Approver
	// Cache replays cobros responses; nil disables replay.
	Cache *idempotency.Cache[protocol.PaymentResponse]
	// CacheKeyStrategy selects how cache keys are computed.
	CacheKeyStrategy string
}

// callInfo carries per-call metadata into tool runners.
type callInfo struct {
	tool          string
	correlationID string
	providedID    bool
}

// input is implemented by every tool input.
type input[T any] interface {
	Arguments() map[string]any
	Correlation() string
	WithCorrelation(id string) T
}

// Build creates an MCP server with tools and resources.
func (b Builder) Build(cfg *dsl.Config) (*mcp.Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}
	if b.Toolkit == nil {
		return nil, fmt.Errorf("toolkit is nil")
	}
	if b.Logger == nil {
		b.Logger = slog.New(slog.DiscardHandler)
	}

	server := mcp.NewServer(&mcp.Implementation{
		Name:    cfg.Server.Name,
		Version: cfg.Server.Version,
	}, nil)

	b.addResources(server, cfg.Resources)

	if settings, ok := b.enabled(cfg, constants.ToolFBL5N); ok {
		register(b, server, settings, b.Toolkit.FBL5N, failQuery)
	}
	if settings, ok := b.enabled(cfg, constants.ToolCobros); ok {
		register(b, server, settings, b.cobros, failPayment)
	}
	if settings, ok := b.enabled(cfg, constants.ToolTextToJSON); ok {
		register(b, server, settings, b.Toolkit.TextToJSON, failConversion)
	}
	if settings, ok := b.enabled(cfg, constants.ToolScript); ok {
		register(b, server, settings, b.Toolkit.Script, failScript)
	}
	return server, nil
}

func (b Builder) enabled(cfg *dsl.Config, name string) (toolSettings, bool) {
	override := cfg.Tools[name]
	if override.Disabled {
		b.Logger.Info("tool disabled by config", "tool", name)
		return toolSettings{}, false
	}
	return mergeSettings(name, override), true
}

func (b Builder) addResources(server *mcp.Server, resources []dsl.ResourceConfig) {
	for _, res := range resources {
		resource := res
		server.AddResource(&mcp.Resource{
			Name:        resource.Name,
			URI:         resource.URI,
			Description: resource.Description,
			MIMEType:    resource.MIMEType,
		}, func(_ context.Context, _ *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
			return &mcp.ReadResourceResult{
				Contents: []*mcp.ResourceContents{
					{URI: resource.URI, MIMEType: resource.MIMEType, Text: resource.Text},
				},
			}, nil
		})
	}

	server.AddResource(&mcp.Resource{
		Name:        "executions",
		URI:         constants.ExecutionsURI,
		Description: "Execution log of all tool calls in this process",
		MIMEType:    "application/json",
	}, func(_ context.Context, _ *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		entries := b.Journal.Entries()
		if entries == nil {
			entries = []audit.Entry{}
		}
		data, err := json.Marshal(entries)
		if err != nil {
			return nil, fmt.Errorf("encode executions: %w", err)
		}
		return &mcp.ReadResourceResult{
			Contents: []*mcp.ResourceContents{
				{URI: constants.ExecutionsURI, MIMEType: "application/json", Text: string(data)},
			},
		}, nil
	})
}

func register[In input[In], Out any](b Builder, server *mcp.Server, settings toolSettings,
	run func(context.Context, In) Out, fail func(In, string) Out) {

	mcp.AddTool(server, settings.tool(), func(ctx context.Context, _ *mcp.CallToolRequest, in In) (*mcp.CallToolResult, Out, error) {
		call := callInfo{tool: settings.name, correlationID: in.Correlation(), providedID: in.Correlation() != ""}
		if !call.providedID {
			call.correlationID = uuid.NewString()
		}
		in = in.WithCorrelation(call.correlationID)
		args := in.Arguments()

		b.Logger.Info("tool call", "tool", call.tool, "correlation_id", call.correlationID, "args", security.RedactArguments(args))
		start := time.Now()

		if reason, denied := b.approve(ctx, call, args); denied {
			b.record(ctx, call, args, start, reason)
			return nil, fail(in, reason), nil
		}

		ctxTool := ctx
		if settings.timeout > 0 {
			var cancel context.CancelFunc
			ctxTool, cancel = context.WithTimeout(ctx, settings.timeout)
			defer cancel()
		}

		out := run(withCall(ctxTool, call), in)
		if errors.Is(ctxTool.Err(), context.DeadlineExceeded) {
			b.Logger.Warn("tool timeout", "tool", call.tool, "correlation_id", call.correlationID, "timeout", settings.timeout)
			return nil, fail(in, settings.timeoutMessage), nil
		}

		b.Logger.Info("tool finished", "tool", call.tool, "correlation_id", call.correlationID, "elapsed", timeutil.FormatElapsed(time.Since(start)))
		return nil, out, nil
	})
}

func (b Builder) approve(ctx context.Context, call callInfo, args map[string]any) (string, bool) {
	if b.Guard == nil {
		return "", false
	}
	decision, err := b.Guard.Approve(ctx, guard.Request{Tool: call.tool, Arguments: args, CorrelationID: call.correlationID})
	if err != nil {
		decision.Allowed = false
		if decision.Reason == "" {
			decision.Reason = err.Error()
		}
	}
	b.Journal.Decide(ctx, audit.Decision{
		Tool:          call.tool,
		CorrelationID: call.correlationID,
		Allowed:       decision.Allowed,
		Source:        decision.Source,
		Reason:        decision.Reason,
	})
	return decision.Reason, !decision.Allowed
}

// record journals a call that never reached the toolkit.
func (b Builder) record(ctx context.Context, call callInfo, args map[string]any, start time.Time, reason string) {
	b.Journal.Record(ctx, audit.Entry{
		Tool:          call.tool,
		Timestamp:     start.Format(time.RFC3339),
		CorrelationID: call.correlationID,
		Input:         args,
		Output:        audit.Output{Status: protocol.StatusError, Message: reason},
		ExecutionTime: timeutil.FormatElapsed(time.Since(start)),
	})
}

// cobros replays the stored response of a repeated call instead of posting a
// second payment document.
func (b Builder) cobros(ctx context.Context, in tools.CobrosInput) protocol.PaymentResponse {
	call, _ := callFrom(ctx)
	if b.Cache == nil {
		return b.Toolkit.Cobros(ctx, in)
	}
	key, err := buildCacheKey(call.tool, call.correlationID, call.providedID, in.Arguments(), b.CacheKeyStrategy)
	if err != nil {
		b.Logger.Warn("cache key build failed", "tool", call.tool, "error", err)
		return b.Toolkit.Cobros(ctx, in)
	}
	resp, hit := b.Cache.Do(key, func() (protocol.PaymentResponse, bool) {
		resp := b.Toolkit.Cobros(ctx, in)
		return resp, resp.Status == protocol.StatusSuccess
	})
	if hit {
		b.Logger.Info("tool cache hit", "tool", call.tool, "correlation_id", call.correlationID)
		resp.CorrelationID = call.correlationID
	}
	return resp
}

type callKey struct{}

func withCall(ctx context.Context, call callInfo) context.Context {
	return context.WithValue(ctx, callKey{}, call)
}

func callFrom(ctx context.Context) (callInfo, bool) {
	call, ok := ctx.Value(callKey{}).(callInfo)
	return call, ok
}
