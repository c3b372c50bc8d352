package dsl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codex-k8s/sapsim-mcp-server/configs"
	"github.com/codex-k8s/sapsim-mcp-server/internal/render"
)

const minimal = `
server:
  name: sapsim
  version: 1.0.0
`

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load([]byte(minimal))

	require.NoError(t, err)
	assert.Equal(t, "http", cfg.Server.Transport)
	assert.Equal(t, ":8080", cfg.Server.HTTP.Listen)
	assert.Equal(t, "/mcp", cfg.Server.HTTP.Path)
	assert.Equal(t, "1000", cfg.Simulator.CompanyCode)
	assert.Equal(t, "EUR", cfg.Simulator.Currency)
	assert.Equal(t, "SAPUSER", cfg.Simulator.User)
	assert.Equal(t, "auto", cfg.GUI.Mode)
	assert.Equal(t, "30s", cfg.GUI.DispatchTimeout)
	assert.False(t, cfg.Server.Idempotency.Enabled)
}

func TestLoad_EmbeddedDefault(t *testing.T) {
	raw, err := configs.Load(configs.Default)
	require.NoError(t, err)
	rendered, err := render.Render(configs.Default, raw, func(string) (string, bool) { return "", false })
	require.NoError(t, err)

	cfg, err := Load(rendered)

	require.NoError(t, err)
	assert.Equal(t, "stdio", cfg.Server.Transport)
	assert.Equal(t, "correlation_id", cfg.Server.Idempotency.KeyStrategy)
	assert.Equal(t, "1000", cfg.Simulator.CompanyCode)
	assert.Contains(t, cfg.Tools, "cobros")
	require.Len(t, cfg.Resources, 1)
	assert.Equal(t, "sapsim://docs/transactions", cfg.Resources[0].URI)
	assert.Equal(t, `\d{6}`, cfg.Limits.Fields["customer"].Regex)
}

func TestLoad_Errors(t *testing.T) {
	cases := map[string]string{
		"unknown field":       minimal + "extra: true\n",
		"missing name":        "server: {version: 1}\n",
		"bad transport":       minimal + "  transport: grpc\n",
		"bad company code":    minimal + "simulator: {company_code: '10'}\n",
		"bad currency":        minimal + "simulator: {currency: euro}\n",
		"bad gui mode":        minimal + "gui: {mode: window}\n",
		"bad duration":        minimal + "gui: {hold: forever}\n",
		"unknown tool":        minimal + "tools: {va01: {title: x}}\n",
		"reserved resource":   minimal + "resources: [{uri: 'sapsim://executions'}]\n",
		"bad field regex":     minimal + "limits: {fields: {customer: {regex: '('}}}\n",
		"bad key strategy":    minimal + "  idempotency_cache: {enabled: true, key_strategy: random}\n",
		"negative rate limit": minimal + "limits: {rate_per_minute: -1}\n",
		"relative approval":   minimal + "approval: {url: /approve}\n",
		"approval tool":       minimal + "approval: {url: 'http://localhost/a', tools: [va01]}\n",
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load([]byte(raw))
			assert.Error(t, err)
		})
	}
}

func TestValidate_ApprovalDefaults(t *testing.T) {
	cfg, err := Load([]byte(minimal + "approval: {url: ' https://approver.local/hook '}\n"))

	require.NoError(t, err)
	assert.Equal(t, "https://approver.local/hook", cfg.Approval.URL)
	assert.Equal(t, "POST", cfg.Approval.Method)
	assert.Equal(t, "10s", cfg.Approval.Timeout)
	assert.Equal(t, []string{"cobros"}, cfg.Approval.Tools)
}

func TestValidate_NormalizesToolNames(t *testing.T) {
	cfg := &Config{
		Server: ServerConfig{Name: "x", Version: "1", Transport: " STDIO "},
		Tools:  map[string]ToolConfig{" Cobros ": {Title: "Pay"}},
	}
	require.NoError(t, Validate(cfg))
	assert.Equal(t, "stdio", cfg.Server.Transport)
	assert.Equal(t, "Pay", cfg.Tools["cobros"].Title)
	assert.Error(t, Validate(nil))
}
