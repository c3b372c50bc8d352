// Package tools wraps the transaction simulators as agent tools.
package tools

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/codex-k8s/sapsim-mcp-server/internal/audit"
	"github.com/codex-k8s/sapsim-mcp-server/internal/constants"
	"github.com/codex-k8s/sapsim-mcp-server/internal/convert"
	"github.com/codex-k8s/sapsim-mcp-server/internal/export"
	"github.com/codex-k8s/sapsim-mcp-server/internal/gui"
	"github.com/codex-k8s/sapsim-mcp-server/internal/protocol"
	"github.com/codex-k8s/sapsim-mcp-server/internal/sap"
	"github.com/codex-k8s/sapsim-mcp-server/internal/scripting"
	"github.com/codex-k8s/sapsim-mcp-server/internal/templates"
	"github.com/codex-k8s/sapsim-mcp-server/internal/timeutil"
)

// Tool names.
const (
	NameFBL5N      = constants.ToolFBL5N
	NameCobros     = constants.ToolCobros
	NameTextToJSON = constants.ToolTextToJSON
	NameScript     = constants.ToolScript
)

// Options configures a Toolkit.
type Options struct {
	// Core runs the simulated transactions.
	Core *sap.Core
	// Messages localizes texts.
	Messages templates.Renderer
	// Launcher shows results in the visual layer; nil disables it.
	Launcher *gui.Launcher
	// Journal records every call; nil disables recording.
	Journal *audit.Journal
	// Export renders report texts.
	Export export.Generator
	// Logger receives warnings about the visual layer.
	Logger *slog.Logger
}

// Toolkit exposes fbl5n, cobros, text_to_json and sap_script.
// Calls are safe for concurrent use; sap_script steps share one session.
type Toolkit struct {
	core      *sap.Core
	messages  templates.Renderer
	launcher  *gui.Launcher
	journal   *audit.Journal
	export    export.Generator
	converter convert.Converter
	logger    *slog.Logger

	scriptMu sync.Mutex
	session  *scripting.Session
}

// New creates a Toolkit.
func New(opts Options) *Toolkit {
	if opts.Core == nil {
		opts.Core = sap.New(sap.Options{Messages: opts.Messages})
	}
	if opts.Export.Now == nil {
		opts.Export.Now = opts.Core.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Toolkit{
		core:      opts.Core,
		messages:  opts.Messages,
		launcher:  opts.Launcher,
		journal:   opts.Journal,
		export:    opts.Export,
		converter: convert.Converter{Now: opts.Core.Now},
		logger:    logger,
	}
}

// Go runs fn in its own goroutine and delivers the result on the returned channel.
func Go[T any](ctx context.Context, fn func(context.Context) T) <-chan T {
	out := make(chan T, 1)
	go func() {
		out <- fn(ctx)
	}()
	return out
}

// guiAllowed downgrades a with_gui request when the visual layer cannot render from ctx.
func (t *Toolkit) guiAllowed(ctx context.Context, tool, correlationID string, requested bool) (bool, *protocol.GUIData) {
	if !requested {
		return false, nil
	}
	if t.launcher.Ready(ctx) {
		return true, nil
	}
	t.logger.Warn("GUI unsafe on current thread, running headless", "tool", tool, "correlation_id", correlationID)
	return false, t.launcher.Skipped()
}

func (t *Toolkit) record(ctx context.Context, entry audit.Entry, start time.Time) string {
	elapsed := timeutil.FormatElapsed(time.Since(start))
	entry.Timestamp = start.Format(time.RFC3339)
	entry.ExecutionTime = elapsed
	t.journal.Record(ctx, entry)
	return elapsed
}

func ensureCorrelationID(id string) string {
	if id != "" {
		return id
	}
	return uuid.NewString()
}

func modeOf(withGUI bool) string {
	if withGUI {
		return protocol.ModeGUI
	}
	return protocol.ModeHeadless
}

func (t *Toolkit) textExport(sapOutput string) protocol.TextExport {
	return protocol.TextExport{
		SAPOutput:        sapOutput,
		ClipboardContent: t.export.Clipboard(sapOutput),
		ExportAvailable:  true,
	}
}
