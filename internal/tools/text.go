package tools

import (
	"context"
	"fmt"
	"time"

	"github.com/codex-k8s/sapsim-mcp-server/internal/audit"
	"github.com/codex-k8s/sapsim-mcp-server/internal/convert"
	"github.com/codex-k8s/sapsim-mcp-server/internal/protocol"
	"github.com/codex-k8s/sapsim-mcp-server/internal/templates"
)

// TextInput are the arguments of the text_to_json tool.
type TextInput struct {
	Text            string         `json:"text" jsonschema:"report text as printed or copied from SAP GUI"`
	TransactionType string         `json:"transaction_type" jsonschema:"fbl5n or f28"`
	State           map[string]any `json:"state,omitempty" jsonschema:"caller workflow state recorded in the execution log"`
	CorrelationID   string         `json:"correlation_id,omitempty" jsonschema:"correlation id echoed in the response"`
}

// Arguments returns the call arguments keyed by JSON name. The text is
// shortened to keep the journal small.
func (in TextInput) Arguments() map[string]any {
	return map[string]any{
		"text":             convert.Preview(in.Text, 200),
		"transaction_type": in.TransactionType,
	}
}

// TextToJSON converts an SAP report back into structured data.
func (t *Toolkit) TextToJSON(ctx context.Context, in TextInput) convert.Result {
	start := time.Now()
	correlationID := ensureCorrelationID(in.CorrelationID)

	res, err := t.converter.Convert(in.Text, in.TransactionType)
	if err != nil {
		message := templates.RenderOr(t.messages, "conversion.unsupported", map[string]any{"Type": in.TransactionType}, err.Error())
		res = convert.Result{
			TransactionType:  in.TransactionType,
			ConversionStatus: convert.StatusError,
			Status:           protocol.StatusError,
			Message:          message,
			Error:            err.Error(),
			Items:            []protocol.LineItem{},
			ConvertedAt:      t.core.Now().Format(time.RFC3339),
		}
	}
	res.ToolType = protocol.ToolTypeConversion
	res.CorrelationID = correlationID

	summary := fmt.Sprintf("items=%d", res.ItemsCount)
	if res.Payment != nil {
		summary = "payment_document=" + res.Payment.PaymentDocument
	}
	res.ExecutionTime = t.record(ctx, audit.Entry{
		Tool:          NameTextToJSON,
		CorrelationID: correlationID,
		Input:         in.Arguments(),
		Output:        audit.Output{Status: res.Status, Message: res.Message, DataSummary: summary},
		State:         in.State,
	}, start)
	return res
}
