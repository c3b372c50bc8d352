package scripting

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/codex-k8s/sapsim-mcp-server/internal/protocol"
	"github.com/codex-k8s/sapsim-mcp-server/internal/sap"
	"github.com/codex-k8s/sapsim-mcp-server/internal/templates"
)

// F-28 element ids.
const (
	F28Date      = "-DATE-"
	F28Company   = "-COMPANY-"
	F28Amount    = "-AMOUNT-"
	F28Customer  = "-CUSTOMER-"
	F28DocNum    = "-DOC_NUM-"
	F28BtnSubmit = "-BTN_PROCESS-"
)

// FBL5N element ids.
const (
	FBL5NCustomer   = "-CUSTOMER_ID-"
	FBL5NCompany    = "-COMPANY_CODE-"
	FBL5NDateFrom   = "-DATE_FROM-"
	FBL5NDateTo     = "-DATE_TO-"
	FBL5NOpenOnly   = "-OPEN_ONLY-"
	FBL5NAllItems   = "-ALL_ITEMS-"
	FBL5NBtnExecute = "-BTN_EXECUTE-"
	FBL5NBtnClear   = "-BTN_CLEAR-"
	FBL5NTable      = "-TABLE-"
)

// LineItemHeaders are the FBL5N result table columns.
var LineItemHeaders = []string{"Document", "Doc Type", "Date", "Amount", "Currency", "Status"}

type fieldSpec struct {
	id        string
	label     string
	kind      Kind
	initial   string
	initialFn func(*Session) string
	headers   []string
	action    Action
}

type screen struct {
	code   string
	title  string
	fields []fieldSpec
}

func lookupScreen(code string) (screen, bool) {
	switch strings.ToUpper(strings.TrimPrefix(strings.TrimSpace(code), "/n")) {
	case "F-28", "F28":
		return f28Screen(), true
	case "FBL5N":
		return fbl5nScreen(), true
	default:
		return screen{}, false
	}
}

func today(s *Session) string {
	return s.core.Now().Format(sap.DateLayout)
}

func ready(s *Session) string {
	return templates.RenderOr(s.messages, "screen.ready", nil, "Ready")
}

func f28Screen() screen {
	return screen{
		code:  protocol.TransactionF28,
		title: "Payment Simulator (F-28)",
		fields: []fieldSpec{
			{id: F28Date, label: "Document date", kind: KindField, initialFn: today},
			{id: F28Company, label: "Company code", kind: KindField, initialFn: func(s *Session) string { return s.core.CompanyCode() }},
			{id: F28Amount, label: "Amount", kind: KindField},
			{id: F28Customer, label: "Customer (Bill-to)", kind: KindField},
			{id: F28DocNum, label: "Document number", kind: KindField},
			{id: F28BtnSubmit, label: "Process Payment", kind: KindButton, action: processPayment},
			{id: StatusBarID, label: "Status", kind: KindLabel},
		},
	}
}

func fbl5nScreen() screen {
	return screen{
		code:  protocol.TransactionFBL5N,
		title: "Customer Line Items (FBL5N)",
		fields: []fieldSpec{
			{id: FBL5NCustomer, label: "Customer ID", kind: KindField},
			{id: FBL5NCompany, label: "Company Code", kind: KindField, initialFn: func(s *Session) string { return s.core.CompanyCode() }},
			{id: FBL5NDateFrom, label: "Date From", kind: KindField},
			{id: FBL5NDateTo, label: "Date To", kind: KindField},
			{id: FBL5NOpenOnly, label: "Open Items Only", kind: KindCheckbox, initial: Checked},
			{id: FBL5NAllItems, label: "All Line Items", kind: KindCheckbox},
			{id: FBL5NBtnExecute, label: "Execute Query", kind: KindButton, action: executeQuery},
			{id: FBL5NBtnClear, label: "Clear", kind: KindButton, action: clearQuery},
			{id: FBL5NTable, label: "Results", kind: KindTable, headers: LineItemHeaders},
			{id: StatusBarID, label: "Status", kind: KindLabel, initialFn: ready},
		},
	}
}

func processPayment(ctx context.Context, s *Session) error {
	s.setStatus("screen.processing", nil, "Processing payment...")

	res := s.core.ProcessPayment(ctx, sap.PaymentRequest{
		Customer: s.text(F28Customer),
		DocNum:   s.text(F28DocNum),
		Amount:   s.text(F28Amount),
	})
	s.lastPayment = &res

	if res.Status != protocol.StatusSuccess {
		s.setStatus("screen.error", map[string]any{"Reason": res.Error}, "Error: "+res.Error)
		return nil
	}
	s.setStatus("screen.f28.success", map[string]any{"Document": res.PaymentDocument, "CompanyCode": res.CompanyCode},
		fmt.Sprintf("Success: Document %s posted in company code %s.", res.PaymentDocument, res.CompanyCode))
	s.setText(F28Customer, "")
	s.setText(F28DocNum, "")
	s.setText(F28Amount, "")
	return nil
}

func executeQuery(ctx context.Context, s *Session) error {
	s.setStatus("screen.executing", nil, "Executing query...")

	customer := strings.TrimSpace(s.text(FBL5NCustomer))
	res := s.core.QueryOpenItems(ctx, sap.QueryRequest{
		CustomerID:  customer,
		CompanyCode: s.text(FBL5NCompany),
	})
	s.lastQuery = &res

	if res.Status != protocol.StatusSuccess {
		s.setStatus("screen.error", map[string]any{"Reason": res.Error}, "Error: "+res.Error)
		return nil
	}

	items, err := filterByDate(res.Items, s.text(FBL5NDateFrom), s.text(FBL5NDateTo))
	if err != nil {
		s.setStatus("screen.error", map[string]any{"Reason": err.Error()}, "Error: "+err.Error())
		return nil
	}
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		rows = append(rows, []string{item.Document, item.DocType, item.Date, item.Amount, item.Currency, item.Status})
	}
	if table, ok := s.elements[FBL5NTable]; ok {
		table.setRows(rows)
	}
	s.setStatus("screen.fbl5n.success", map[string]any{"Count": len(rows), "Customer": customer},
		fmt.Sprintf("Success: Found %d items for customer %s", len(rows), customer))
	return nil
}

func clearQuery(_ context.Context, s *Session) error {
	if table, ok := s.elements[FBL5NTable]; ok {
		table.setRows(nil)
	}
	s.setText(FBL5NCustomer, "")
	s.setStatus("screen.ready", nil, "Ready")
	s.lastQuery = nil
	return nil
}

// filterByDate keeps items dated within [from, to]; empty bounds are open.
func filterByDate(items []protocol.LineItem, from, to string) ([]protocol.LineItem, error) {
	lower, err := parseBound("date from", from)
	if err != nil {
		return nil, err
	}
	upper, err := parseBound("date to", to)
	if err != nil {
		return nil, err
	}
	if lower.IsZero() && upper.IsZero() {
		return items, nil
	}
	out := make([]protocol.LineItem, 0, len(items))
	for _, item := range items {
		date, err := time.Parse(sap.DateLayout, item.Date)
		if err != nil {
			continue
		}
		if !lower.IsZero() && date.Before(lower) {
			continue
		}
		if !upper.IsZero() && date.After(upper) {
			continue
		}
		out = append(out, item)
	}
	return out, nil
}

func parseBound(name, value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, nil
	}
	parsed, err := time.Parse(sap.DateLayout, value)
	if err != nil {
		return time.Time{}, &sap.InputValidationError{Field: name, Value: value, Detail: "expected dd.mm.yyyy"}
	}
	return parsed, nil
}
