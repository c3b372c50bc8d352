package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	goruntime "runtime"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/codex-k8s/sapsim-mcp-server/configs"
	"github.com/codex-k8s/sapsim-mcp-server/internal/app"
	"github.com/codex-k8s/sapsim-mcp-server/internal/audit"
	"github.com/codex-k8s/sapsim-mcp-server/internal/config"
	"github.com/codex-k8s/sapsim-mcp-server/internal/constants"
	"github.com/codex-k8s/sapsim-mcp-server/internal/dsl"
	"github.com/codex-k8s/sapsim-mcp-server/internal/export"
	"github.com/codex-k8s/sapsim-mcp-server/internal/guard"
	"github.com/codex-k8s/sapsim-mcp-server/internal/gui"
	"github.com/codex-k8s/sapsim-mcp-server/internal/idempotency"
	"github.com/codex-k8s/sapsim-mcp-server/internal/log"
	"github.com/codex-k8s/sapsim-mcp-server/internal/protocol"
	"github.com/codex-k8s/sapsim-mcp-server/internal/render"
	"github.com/codex-k8s/sapsim-mcp-server/internal/runtime"
	"github.com/codex-k8s/sapsim-mcp-server/internal/sap"
	"github.com/codex-k8s/sapsim-mcp-server/internal/templates"
	"github.com/codex-k8s/sapsim-mcp-server/internal/timeutil"
	"github.com/codex-k8s/sapsim-mcp-server/internal/tools"
)

// The GUI dispatcher, when enabled, owns the main thread.
func init() { goruntime.LockOSThread() }

func main() {
	embeddedConfig := flag.String("embedded-config", "", "Use embedded config from configs/ (filename)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	logger := log.New(cfg.LogLevel)

	dslCfg, err := loadDSL(cfg, *embeddedConfig)
	if err != nil {
		logger.Error("load config failed", "error", err)
		os.Exit(1)
	}
	if cfg.GUIMode != "" {
		dslCfg.GUI.Mode = cfg.GUIMode
	}

	messages, err := templates.Load(cfg.Lang)
	if err != nil {
		logger.Error("load templates failed", "error", err)
		os.Exit(1)
	}

	core := sap.New(sap.Options{
		CompanyCode:     dslCfg.Simulator.CompanyCode,
		Currency:        dslCfg.Simulator.Currency,
		Seed:            dslCfg.Simulator.Seed,
		ProcessingDelay: timeutil.ParseDurationOrDefault(dslCfg.Simulator.ProcessingDelay, 0),
		Messages:        messages,
	})

	var dispatcher *gui.Dispatcher
	if dslCfg.GUI.Mode == constants.GUIModeGUI {
		dispatcher = gui.NewDispatcher(timeutil.ParseDurationOrDefault(dslCfg.GUI.DispatchTimeout, gui.DefaultDispatchTimeout))
	}
	launcher := &gui.Launcher{
		Probe:      gui.ProbeFor(dslCfg.GUI.Mode, os.Stderr),
		Dispatcher: dispatcher,
		Presenter:  gui.NewPresenter(os.Stderr),
		Hold:       timeutil.ParseDurationOrDefault(dslCfg.GUI.Hold, 0),
		Messages:   messages,
	}

	journal := audit.NewJournal(logger)
	limits, err := guard.NewLimits(guard.LimitsConfig{
		RatePerMinute: dslCfg.Limits.RatePerMinute,
		MaxTotal:      dslCfg.Limits.MaxTotal,
		Fields:        fieldPolicies(dslCfg.Limits.Fields),
	}, messages)
	if err != nil {
		logger.Error("invalid limits", "error", err)
		os.Exit(1)
	}

	chain := guard.Chain{limits}
	if dslCfg.Approval.URL != "" {
		chain = append(chain, guard.Webhook{
			URL:     dslCfg.Approval.URL,
			Method:  dslCfg.Approval.Method,
			Headers: dslCfg.Approval.Headers,
			Timeout: timeutil.ParseDurationOrDefault(dslCfg.Approval.Timeout, 10*time.Second),
			Tools:   dslCfg.Approval.Tools,
		})
	}

	var cache *idempotency.Cache[protocol.PaymentResponse]
	if dslCfg.Server.Idempotency.Enabled {
		ttl, err := time.ParseDuration(dslCfg.Server.Idempotency.TTL)
		if err != nil {
			logger.Error("invalid idempotency ttl", "error", err)
			os.Exit(1)
		}
		cache = idempotency.NewCache[protocol.PaymentResponse](ttl, dslCfg.Server.Idempotency.MaxEntries)
	}

	builder := runtime.Builder{
		Logger:  logger,
		Journal: journal,
		Toolkit: tools.New(tools.Options{
			Core:     core,
			Messages: messages,
			Launcher: launcher,
			Journal:  journal,
			Export: export.Generator{
				User:   dslCfg.Simulator.User,
				Client: dslCfg.Simulator.Client,
			},
			Logger: logger,
		}),
		Guard:            chain,
		Cache:            cache,
		CacheKeyStrategy: dslCfg.Server.Idempotency.KeyStrategy,
	}
	server, err := builder.Build(dslCfg)
	if err != nil {
		logger.Error("build server failed", "error", err)
		os.Exit(1)
	}

	baseCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, syscall.SIGHUP)
	go func() {
		sig := <-sigCh
		logger.Warn("shutdown requested", "signal", sig.String())
		cancel()
	}()

	logger.Info("starting server", "transport", dslCfg.Server.Transport, "gui_mode", dslCfg.GUI.Mode, "lang", messages.Lang())

	serve := func() error {
		if dslCfg.Server.Transport == constants.TransportStdio {
			return server.Run(baseCtx, &mcp.StdioTransport{})
		}
		return runHTTP(baseCtx, cfg, dslCfg, server, logger)
	}

	if dispatcher == nil {
		if err := serve(); err != nil {
			logger.Error("runtime error", "error", err)
			os.Exit(1)
		}
		logger.Info("server stopped", "executions", journal.Len())
		return
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- serve()
		dispatcher.Close()
	}()
	if err := dispatcher.Run(baseCtx); err != nil {
		logger.Warn("GUI dispatcher stopped", "error", err)
	}
	cancel()
	if err := <-errCh; err != nil {
		logger.Error("runtime error", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped", "executions", journal.Len())
}

func loadDSL(cfg config.Config, embedded string) (*dsl.Config, error) {
	var (
		rendered []byte
		err      error
	)
	switch {
	case embedded != "":
		raw, loadErr := configs.Load(embedded)
		if loadErr != nil {
			return nil, loadErr
		}
		rendered, err = render.RenderBytes(embedded, raw)
	case cfg.ConfigPath != "":
		rendered, err = render.RenderFile(cfg.ConfigPath)
	default:
		raw, loadErr := configs.Load(configs.Default)
		if loadErr != nil {
			return nil, loadErr
		}
		rendered, err = render.RenderBytes(configs.Default, raw)
	}
	if err != nil {
		return nil, fmt.Errorf("render config: %w", err)
	}
	return dsl.Load(rendered)
}

func fieldPolicies(fields map[string]dsl.FieldPolicy) map[string]guard.FieldPolicy {
	out := make(map[string]guard.FieldPolicy, len(fields))
	for name, policy := range fields {
		out[name] = guard.FieldPolicy{Regex: policy.Regex, MinLength: policy.MinLength, MaxLength: policy.MaxLength}
	}
	return out
}

func runHTTP(ctx context.Context, envCfg config.Config, dslCfg *dsl.Config, server *mcp.Server, logger *slog.Logger) error {
	handler := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return server
	}, &mcp.StreamableHTTPOptions{
		Stateless: dslCfg.Server.HTTP.Stateless,
	})

	application, err := app.New(ctx, dslCfg.Server, handler, logger, app.Options{ShutdownTimeout: envCfg.ShutdownTimeout})
	if err != nil {
		return err
	}
	return application.Run(ctx)
}
