package dsl

import (
	"strings"

	"github.com/codex-k8s/sapsim-mcp-server/internal/constants"
)

func normalizeConfig(cfg *Config) {
	cfg.Server.Transport = lowerTrim(cfg.Server.Transport)
	if cfg.Server.Transport == "" {
		cfg.Server.Transport = constants.TransportHTTP
	}
	if strings.TrimSpace(cfg.Server.HTTP.Listen) == "" {
		cfg.Server.HTTP.Listen = ":8080"
	}
	if cfg.Server.HTTP.Path == "" {
		cfg.Server.HTTP.Path = "/mcp"
	}

	idem := &cfg.Server.Idempotency
	idem.KeyStrategy = lowerTrim(idem.KeyStrategy)
	if idem.Enabled {
		if idem.TTL == "" {
			idem.TTL = "1h"
		}
		if idem.MaxEntries == 0 {
			idem.MaxEntries = 1000
		}
		if idem.KeyStrategy == "" {
			idem.KeyStrategy = constants.CacheKeyStrategyAuto
		}
	}

	sim := &cfg.Simulator
	sim.CompanyCode = strings.TrimSpace(sim.CompanyCode)
	if sim.CompanyCode == "" {
		sim.CompanyCode = "1000"
	}
	sim.Currency = strings.ToUpper(strings.TrimSpace(sim.Currency))
	if sim.Currency == "" {
		sim.Currency = "EUR"
	}
	if sim.User == "" {
		sim.User = "SAPUSER"
	}
	if sim.Client == "" {
		sim.Client = "100"
	}

	cfg.GUI.Mode = lowerTrim(cfg.GUI.Mode)
	if cfg.GUI.Mode == "" {
		cfg.GUI.Mode = constants.GUIModeAuto
	}
	if cfg.GUI.DispatchTimeout == "" {
		cfg.GUI.DispatchTimeout = "30s"
	}

	approval := &cfg.Approval
	approval.URL = strings.TrimSpace(approval.URL)
	if approval.URL != "" {
		approval.Method = strings.ToUpper(strings.TrimSpace(approval.Method))
		if approval.Method == "" {
			approval.Method = "POST"
		}
		if approval.Timeout == "" {
			approval.Timeout = "10s"
		}
		if len(approval.Tools) == 0 {
			approval.Tools = []string{constants.ToolCobros}
		}
		for i, name := range approval.Tools {
			approval.Tools[i] = lowerTrim(name)
		}
	}

	if len(cfg.Tools) > 0 {
		tools := make(map[string]ToolConfig, len(cfg.Tools))
		for name, tool := range cfg.Tools {
			tools[lowerTrim(name)] = tool
		}
		cfg.Tools = tools
	}
}

func lowerTrim(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
