package gui

import (
	"context"
	"fmt"
	"time"

	"github.com/codex-k8s/sapsim-mcp-server/internal/protocol"
	"github.com/codex-k8s/sapsim-mcp-server/internal/scripting"
	"github.com/codex-k8s/sapsim-mcp-server/internal/templates"
)

// PaymentForm holds the F-28 values typed by the user.
type PaymentForm struct {
	Date        string
	CompanyCode string
	Amount      string
	Customer    string
	DocNum      string
}

// QueryForm holds the FBL5N selection values.
type QueryForm struct {
	Customer    string
	CompanyCode string
}

// Launcher replays transaction results as GUI windows.
type Launcher struct {
	// Probe guards rendering outside the dispatcher.
	Probe Probe
	// Dispatcher, when set, receives all drawing work.
	Dispatcher *Dispatcher
	// Presenter draws the windows.
	Presenter *Presenter
	// Hold keeps the final frame on screen.
	Hold time.Duration
	// Messages localizes screen texts.
	Messages templates.Renderer
}

// Ready reports whether GUI output can be produced for ctx.
func (l *Launcher) Ready(ctx context.Context) bool {
	if l == nil || l.Presenter == nil {
		return false
	}
	if l.Dispatcher != nil {
		return true
	}
	return l.Probe != nil && l.Probe.Safe(ctx)
}

// Skipped returns the GUIData of a run that did not render.
func (l *Launcher) Skipped() *protocol.GUIData {
	var messages templates.Renderer
	if l != nil {
		messages = l.Messages
	}
	return &protocol.GUIData{
		Status:         protocol.GUIStatusSkipped,
		Reason:         templates.RenderOr(messages, "gui.unsafe", nil, "GUI unsafe on current thread"),
		Recommendation: templates.RenderOr(messages, "gui.recommendation", nil, "Use with_gui=false for headless operation"),
	}
}

// Payment shows the F-28 window being filled and posted.
func (l *Launcher) Payment(ctx context.Context, form PaymentForm, res protocol.PaymentResult) *protocol.GUIData {
	base := Window{Title: "Payment Simulator (F-28)", Transaction: protocol.TransactionF28}
	filled := base
	filled.Fields = paymentFields(form)
	filled.Status = templates.RenderOr(l.Messages, "screen.processing", nil, "Processing payment...")

	final := base
	finalForm := form
	if res.Status == protocol.StatusSuccess {
		finalForm.Amount, finalForm.Customer, finalForm.DocNum = "", "", ""
		final.Status = templates.RenderOr(l.Messages, "screen.f28.success",
			map[string]any{"Document": res.PaymentDocument, "CompanyCode": res.CompanyCode},
			fmt.Sprintf("Success: Document %s posted in company code %s.", res.PaymentDocument, res.CompanyCode))
	} else {
		final.Status = templates.RenderOr(l.Messages, "screen.error", map[string]any{"Reason": res.Error}, "Error: "+res.Error)
	}
	final.Fields = paymentFields(finalForm)

	data := l.show(ctx, filled, final)
	if data.Status == protocol.GUIStatusCompleted {
		data.DocumentGenerated = res.PaymentDocument
		data.FinalValues = map[string]string{
			scripting.F28Date:     finalForm.Date,
			scripting.F28Company:  finalForm.CompanyCode,
			scripting.F28Amount:   finalForm.Amount,
			scripting.F28Customer: finalForm.Customer,
			scripting.F28DocNum:   finalForm.DocNum,
			scripting.StatusBarID: final.Status,
		}
	}
	return data
}

// Query shows the FBL5N window with the result table.
func (l *Launcher) Query(ctx context.Context, form QueryForm, res protocol.QueryResult) *protocol.GUIData {
	base := Window{
		Title:       "Customer Line Items (FBL5N)",
		Transaction: protocol.TransactionFBL5N,
		Fields: []Field{
			{Label: "Customer ID", Value: form.Customer},
			{Label: "Company Code", Value: form.CompanyCode},
			{Label: "Open Items Only", Value: "[X]"},
			{Label: "Execute Query", Button: true},
			{Label: "Clear", Button: true},
		},
		Headers: scripting.LineItemHeaders,
	}
	executing := base
	executing.Status = templates.RenderOr(l.Messages, "screen.executing", nil, "Executing query...")

	final := base
	if res.Status == protocol.StatusSuccess {
		final.Rows = make([][]string, 0, len(res.Items))
		for _, item := range res.Items {
			final.Rows = append(final.Rows, []string{item.Document, item.DocType, item.Date, item.Amount, item.Currency, item.Status})
		}
		final.Status = templates.RenderOr(l.Messages, "screen.fbl5n.success",
			map[string]any{"Count": len(res.Items), "Customer": res.CustomerID},
			fmt.Sprintf("Success: Found %d items for customer %s", len(res.Items), res.CustomerID))
	} else {
		final.Status = templates.RenderOr(l.Messages, "screen.error", map[string]any{"Reason": res.Error}, "Error: "+res.Error)
	}

	data := l.show(ctx, executing, final)
	if data.Status == protocol.GUIStatusCompleted {
		data.ItemsDisplayed = len(final.Rows)
		data.FinalValues = map[string]string{
			scripting.FBL5NCustomer: form.Customer,
			scripting.FBL5NCompany:  form.CompanyCode,
			scripting.StatusBarID:   final.Status,
		}
	}
	return data
}

func (l *Launcher) show(ctx context.Context, frames ...Window) *protocol.GUIData {
	if !l.Ready(ctx) {
		return l.Skipped()
	}
	start := time.Now()
	draw := func(ctx context.Context) error {
		for _, w := range frames {
			if err := l.Presenter.Draw(ctx, w); err != nil {
				return err
			}
		}
		return l.hold(ctx)
	}

	var err error
	if l.Dispatcher != nil {
		err = l.Dispatcher.Do(ctx, draw)
	} else {
		err = draw(ctx)
	}
	if err != nil {
		return &protocol.GUIData{Status: protocol.GUIStatusError, Error: err.Error()}
	}
	return &protocol.GUIData{
		Status:         protocol.GUIStatusCompleted,
		ProcessingTime: fmt.Sprintf("%.2fs", time.Since(start).Seconds()),
	}
}

func (l *Launcher) hold(ctx context.Context) error {
	if l.Hold <= 0 {
		return nil
	}
	timer := time.NewTimer(l.Hold)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func paymentFields(form PaymentForm) []Field {
	return []Field{
		{Label: "Document date", Value: form.Date},
		{Label: "Company code", Value: form.CompanyCode},
		{Label: "Amount", Value: form.Amount},
		{Label: "Customer (Bill-to)", Value: form.Customer},
		{Label: "Document number", Value: form.DocNum},
		{Label: "Process Payment", Button: true},
	}
}
