package tools

import (
	"context"
	"fmt"
	"time"

	"github.com/codex-k8s/sapsim-mcp-server/internal/audit"
	"github.com/codex-k8s/sapsim-mcp-server/internal/gui"
	"github.com/codex-k8s/sapsim-mcp-server/internal/protocol"
	"github.com/codex-k8s/sapsim-mcp-server/internal/sap"
)

// CobrosInput are the arguments of the cobros tool.
type CobrosInput struct {
	Customer      string         `json:"customer" jsonschema:"6 digit customer account (bill-to)"`
	DocNum        string         `json:"doc_num" jsonschema:"numeric document number of the open item to clear"`
	Amount        string         `json:"amount" jsonschema:"positive payment amount, e.g. 1250.75"`
	WithGUI       bool           `json:"with_gui,omitempty" jsonschema:"show the F-28 window while posting"`
	State         map[string]any `json:"state,omitempty" jsonschema:"caller workflow state recorded in the execution log"`
	CorrelationID string         `json:"correlation_id,omitempty" jsonschema:"repeat a call with the same id to replay its response"`
}

// Arguments returns the call arguments keyed by JSON name.
func (in CobrosInput) Arguments() map[string]any {
	return map[string]any{
		"customer": in.Customer,
		"doc_num":  in.DocNum,
		"amount":   in.Amount,
		"with_gui": in.WithGUI,
	}
}

// FBL5NInput are the arguments of the fbl5n tool.
type FBL5NInput struct {
	CustomerID    string         `json:"customer_id" jsonschema:"6 digit customer account"`
	CompanyCode   string         `json:"company_code,omitempty" jsonschema:"4 digit company code; defaults to the configured one"`
	WithGUI       bool           `json:"with_gui,omitempty" jsonschema:"show the FBL5N window with the result table"`
	State         map[string]any `json:"state,omitempty" jsonschema:"caller workflow state recorded in the execution log"`
	CorrelationID string         `json:"correlation_id,omitempty" jsonschema:"correlation id echoed in the response"`
}

// Arguments returns the call arguments keyed by JSON name.
func (in FBL5NInput) Arguments() map[string]any {
	return map[string]any{
		"customer_id":  in.CustomerID,
		"company_code": in.CompanyCode,
		"with_gui":     in.WithGUI,
	}
}

// Cobros posts an incoming payment with F-28.
func (t *Toolkit) Cobros(ctx context.Context, in CobrosInput) protocol.PaymentResponse {
	start := time.Now()
	correlationID := ensureCorrelationID(in.CorrelationID)
	withGUI, guiData := t.guiAllowed(ctx, NameCobros, correlationID, in.WithGUI)

	res := t.core.ProcessPayment(ctx, sap.PaymentRequest{
		Customer: in.Customer,
		DocNum:   in.DocNum,
		Amount:   in.Amount,
	})

	resp := protocol.NewPaymentResponse(res)
	resp.CorrelationID = correlationID
	resp.AutoMode = modeOf(withGUI)
	resp.GUILaunched = withGUI
	resp.GUIData = guiData
	if res.Status == protocol.StatusSuccess {
		resp.TextExport = t.textExport(t.export.F28(res))
	}
	if withGUI {
		resp.GUIData = t.launcher.Payment(ctx, gui.PaymentForm{
			Date:        t.core.Now().Format(sap.DateLayout),
			CompanyCode: t.core.CompanyCode(),
			Amount:      in.Amount,
			Customer:    in.Customer,
			DocNum:      in.DocNum,
		}, res)
		t.logGUI(NameCobros, correlationID, resp.GUIData)
	}

	summary := ""
	if res.PaymentDocument != "" {
		summary = fmt.Sprintf("payment_document=%s cleared_document=%s", res.PaymentDocument, res.ClearedDocument)
	}
	resp.ExecutionTime = t.record(ctx, audit.Entry{
		Tool:          NameCobros,
		CorrelationID: correlationID,
		Input:         in.Arguments(),
		Output:        audit.Output{Status: resp.Status, Message: resp.Message, DataSummary: summary},
		State:         in.State,
	}, start)
	return resp
}

// FBL5N lists the open items of a customer.
func (t *Toolkit) FBL5N(ctx context.Context, in FBL5NInput) protocol.QueryResponse {
	start := time.Now()
	correlationID := ensureCorrelationID(in.CorrelationID)
	withGUI, guiData := t.guiAllowed(ctx, NameFBL5N, correlationID, in.WithGUI)

	res := t.core.QueryOpenItems(ctx, sap.QueryRequest{CustomerID: in.CustomerID, CompanyCode: in.CompanyCode})

	resp := protocol.NewQueryResponse(res)
	resp.CorrelationID = correlationID
	resp.AutoMode = modeOf(withGUI)
	resp.GUILaunched = withGUI
	resp.GUIData = guiData
	if res.Status == protocol.StatusSuccess {
		resp.TextExport = t.textExport(t.export.FBL5N(res))
	}
	if withGUI {
		company := in.CompanyCode
		if company == "" {
			company = t.core.CompanyCode()
		}
		resp.GUIData = t.launcher.Query(ctx, gui.QueryForm{Customer: in.CustomerID, CompanyCode: company}, res)
		t.logGUI(NameFBL5N, correlationID, resp.GUIData)
	}

	resp.ExecutionTime = t.record(ctx, audit.Entry{
		Tool:          NameFBL5N,
		CorrelationID: correlationID,
		Input:         in.Arguments(),
		Output:        audit.Output{Status: resp.Status, Message: resp.Message, DataSummary: fmt.Sprintf("items=%d", resp.ItemsCount)},
		State:         in.State,
	}, start)
	return resp
}

func (t *Toolkit) logGUI(tool, correlationID string, data *protocol.GUIData) {
	if data == nil || data.Status != protocol.GUIStatusError {
		return
	}
	t.logger.Warn("GUI rendering failed", "tool", tool, "correlation_id", correlationID, "error", data.Error)
}
