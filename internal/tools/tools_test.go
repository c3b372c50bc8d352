package tools

import (
	"bytes"
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codex-k8s/sapsim-mcp-server/internal/audit"
	"github.com/codex-k8s/sapsim-mcp-server/internal/convert"
	"github.com/codex-k8s/sapsim-mcp-server/internal/gui"
	"github.com/codex-k8s/sapsim-mcp-server/internal/protocol"
	"github.com/codex-k8s/sapsim-mcp-server/internal/sap"
	"github.com/codex-k8s/sapsim-mcp-server/internal/scripting"
)

var fixedNow = time.Date(2025, 8, 25, 9, 30, 0, 0, time.UTC)

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("display gone") }

func newToolkit(t *testing.T, launcher *gui.Launcher) (*Toolkit, *audit.Journal) {
	t.Helper()
	journal := audit.NewJournal(nil)
	kit := New(Options{
		Core:     sap.New(sap.Options{Seed: 7, Now: func() time.Time { return fixedNow }}),
		Launcher: launcher,
		Journal:  journal,
	})
	return kit, journal
}

func TestCobros_Success(t *testing.T) {
	kit, journal := newToolkit(t, nil)

	resp := kit.Cobros(context.Background(), CobrosInput{Customer: "123456", DocNum: "1800000789", Amount: "1250.75"})

	require.Equal(t, protocol.StatusSuccess, resp.Status, resp.Message)
	doc, err := strconv.Atoi(resp.PaymentDocument)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, doc, 1400000000)
	assert.LessOrEqual(t, doc, 1499999999)
	assert.Equal(t, "1800000789", resp.ClearedDocument)
	assert.Equal(t, "1250.75", resp.Amount)
	assert.Equal(t, protocol.ToolTypePayment, resp.ToolType)
	assert.Equal(t, protocol.ModeHeadless, resp.AutoMode)
	assert.False(t, resp.GUILaunched)
	assert.Nil(t, resp.GUIData)
	assert.Regexp(t, `^\d+\.\d{2}s$`, resp.ExecutionTime)
	assert.NotEmpty(t, resp.CorrelationID)

	require.True(t, resp.TextExport.ExportAvailable)
	assert.Contains(t, resp.TextExport.SAPOutput, "Payment Document: "+resp.PaymentDocument)
	assert.Contains(t, resp.TextExport.ClipboardContent, "[SAP CLIPBOARD EXPORT - 20250825_093000]")

	entries := journal.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, NameCobros, entries[0].Tool)
	assert.Equal(t, resp.CorrelationID, entries[0].CorrelationID)
	assert.Equal(t, protocol.StatusSuccess, entries[0].Output.Status)
	assert.Contains(t, entries[0].Output.DataSummary, resp.PaymentDocument)
	assert.Equal(t, "123456", entries[0].Input["customer"])
}

func TestCobros_InvalidInput(t *testing.T) {
	kit, journal := newToolkit(t, nil)

	resp := kit.Cobros(context.Background(), CobrosInput{State: map[string]any{"step": "pay"}})

	assert.Equal(t, protocol.StatusError, resp.Status)
	assert.Contains(t, resp.Message, "invalid")
	assert.Empty(t, resp.PaymentDocument)
	assert.False(t, resp.TextExport.ExportAvailable)
	require.Equal(t, 1, journal.Len())
	assert.Equal(t, "pay", journal.Entries()[0].State["step"])
}

func TestCobros_GUI(t *testing.T) {
	input := CobrosInput{Customer: "123456", DocNum: "1800000789", Amount: "10", WithGUI: true}

	t.Run("downgraded when probe unsafe", func(t *testing.T) {
		kit, _ := newToolkit(t, &gui.Launcher{Probe: gui.StaticProbe(false), Presenter: gui.NewPresenter(&bytes.Buffer{})})
		resp := kit.Cobros(context.Background(), input)
		assert.Equal(t, protocol.StatusSuccess, resp.Status)
		assert.False(t, resp.GUILaunched)
		assert.Equal(t, protocol.ModeHeadless, resp.AutoMode)
		require.NotNil(t, resp.GUIData)
		assert.Equal(t, protocol.GUIStatusSkipped, resp.GUIData.Status)
	})

	t.Run("no launcher", func(t *testing.T) {
		kit, _ := newToolkit(t, nil)
		resp := kit.Cobros(context.Background(), input)
		assert.Equal(t, protocol.StatusSuccess, resp.Status)
		require.NotNil(t, resp.GUIData)
		assert.Equal(t, protocol.GUIStatusSkipped, resp.GUIData.Status)
	})

	t.Run("rendered", func(t *testing.T) {
		var out bytes.Buffer
		kit, _ := newToolkit(t, &gui.Launcher{Probe: gui.StaticProbe(true), Presenter: gui.NewPresenter(&out)})
		resp := kit.Cobros(context.Background(), input)
		assert.Equal(t, protocol.StatusSuccess, resp.Status)
		assert.True(t, resp.GUILaunched)
		assert.Equal(t, protocol.ModeGUI, resp.AutoMode)
		require.NotNil(t, resp.GUIData)
		assert.Equal(t, protocol.GUIStatusCompleted, resp.GUIData.Status)
		assert.Equal(t, resp.PaymentDocument, resp.GUIData.DocumentGenerated)
		assert.Contains(t, out.String(), "Payment Simulator (F-28)")
	})

	t.Run("render failure keeps result", func(t *testing.T) {
		kit, _ := newToolkit(t, &gui.Launcher{Probe: gui.StaticProbe(true), Presenter: gui.NewPresenter(failingWriter{})})
		resp := kit.Cobros(context.Background(), input)
		assert.Equal(t, protocol.StatusSuccess, resp.Status)
		assert.NotEmpty(t, resp.PaymentDocument)
		require.NotNil(t, resp.GUIData)
		assert.Equal(t, protocol.GUIStatusError, resp.GUIData.Status)
		assert.Contains(t, resp.GUIData.Error, "display gone")
	})
}

func TestFBL5N(t *testing.T) {
	kit, journal := newToolkit(t, &gui.Launcher{Probe: gui.StaticProbe(true), Presenter: gui.NewPresenter(&bytes.Buffer{})})

	first := kit.FBL5N(context.Background(), FBL5NInput{CustomerID: "123456", WithGUI: true, CorrelationID: "corr-1"})
	second := kit.FBL5N(context.Background(), FBL5NInput{CustomerID: "123456"})

	require.Equal(t, protocol.StatusSuccess, first.Status)
	assert.Equal(t, first.Items, second.Items)
	assert.Equal(t, "corr-1", first.CorrelationID)
	assert.Equal(t, "1000", first.CompanyCode)
	assert.Equal(t, len(first.Items), first.ItemsCount)
	assert.True(t, first.TextExport.ExportAvailable)
	require.NotNil(t, first.GUIData)
	assert.Equal(t, first.ItemsCount, first.GUIData.ItemsDisplayed)
	assert.Equal(t, protocol.ToolTypeQuery, first.ToolType)
	assert.Equal(t, 2, journal.Len())

	bad := kit.FBL5N(context.Background(), FBL5NInput{CustomerID: "12"})
	assert.Equal(t, protocol.StatusError, bad.Status)
	assert.NotNil(t, bad.Items)
	assert.Empty(t, bad.Items)
	assert.Contains(t, bad.Message, "invalid customer ID")
}

func TestTextToJSON(t *testing.T) {
	kit, journal := newToolkit(t, nil)
	query := kit.FBL5N(context.Background(), FBL5NInput{CustomerID: "654321"})
	require.Equal(t, protocol.StatusSuccess, query.Status)

	res := kit.TextToJSON(context.Background(), TextInput{Text: query.TextExport.SAPOutput, TransactionType: "FBL5N"})
	assert.Equal(t, convert.StatusSuccess, res.ConversionStatus)
	assert.Equal(t, query.Items, res.Items)
	assert.Equal(t, protocol.ToolTypeConversion, res.ToolType)
	assert.Regexp(t, `^\d+\.\d{2}s$`, res.ExecutionTime)

	unsupported := kit.TextToJSON(context.Background(), TextInput{Text: "x", TransactionType: "VA01"})
	assert.Equal(t, convert.StatusError, unsupported.ConversionStatus)
	assert.Equal(t, protocol.StatusError, unsupported.Status)
	assert.Equal(t, "unsupported transaction type: VA01", unsupported.Error)
	assert.Equal(t, 3, journal.Len())
}

func TestScript(t *testing.T) {
	kit, _ := newToolkit(t, nil)

	resp := kit.Script(context.Background(), ScriptInput{Steps: []ScriptStep{
		{Action: ActionStartTransaction, Target: "F-28"},
		{Action: ActionSetText, Target: scripting.F28Customer, Value: "123456"},
		{Action: ActionSetText, Target: scripting.F28DocNum, Value: "1800000789"},
		{Action: ActionSetText, Target: scripting.F28Amount, Value: "99.90"},
		{Action: ActionGetText, Target: scripting.F28Company},
		{Action: ActionPress, Target: scripting.F28BtnSubmit},
	}})

	require.Equal(t, protocol.StatusSuccess, resp.Status, resp.Error)
	assert.Equal(t, "/app/con[0]/ses[0]", resp.SessionID)
	assert.Equal(t, protocol.TransactionF28, resp.Transaction)
	require.Len(t, resp.Steps, 6)
	assert.Equal(t, "1000", resp.Steps[4].Value)
	assert.Contains(t, resp.StatusBar, "Success: Document 14")
	assert.Equal(t, resp.StatusBar, resp.Steps[5].Value)

	next := kit.Script(context.Background(), ScriptInput{Steps: []ScriptStep{
		{Action: ActionGetText, Target: scripting.F28Customer},
	}})
	require.Equal(t, protocol.StatusSuccess, next.Status)
	assert.Equal(t, "", next.Steps[0].Value)
}

func TestScript_StopsOnNotFound(t *testing.T) {
	kit, journal := newToolkit(t, nil)

	resp := kit.Script(context.Background(), ScriptInput{Steps: []ScriptStep{
		{Action: ActionStartTransaction, Target: "FBL5N"},
		{Action: ActionSetText, Target: "-MISSING-", Value: "x"},
		{Action: ActionPress, Target: scripting.FBL5NBtnExecute},
	}})

	assert.Equal(t, protocol.StatusError, resp.Status)
	assert.Equal(t, "-MISSING- not found", resp.Error)
	assert.Equal(t, "Element -MISSING- not found", resp.Message)
	require.Len(t, resp.Steps, 2)
	assert.Equal(t, protocol.StatusError, resp.Steps[1].Status)
	assert.Equal(t, protocol.StatusError, journal.Entries()[0].Output.Status)

	unknown := kit.Script(context.Background(), ScriptInput{Steps: []ScriptStep{{Action: "double_click"}}})
	assert.Equal(t, protocol.StatusError, unknown.Status)
	assert.Contains(t, unknown.Error, "unknown script action")
}

func TestGo(t *testing.T) {
	kit, _ := newToolkit(t, nil)

	payment := Go(context.Background(), func(ctx context.Context) protocol.PaymentResponse {
		return kit.Cobros(ctx, CobrosInput{Customer: "123456", DocNum: "1", Amount: "1"})
	})
	query := Go(context.Background(), func(ctx context.Context) protocol.QueryResponse {
		return kit.FBL5N(ctx, FBL5NInput{CustomerID: "123456"})
	})

	assert.Equal(t, protocol.StatusSuccess, (<-payment).Status)
	assert.Equal(t, protocol.StatusSuccess, (<-query).Status)
}
