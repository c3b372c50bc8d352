package protocol

import "strings"

// Transaction result statuses.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Execution modes reported by the thread-safety probe.
const (
	ModeGUI      = "gui"
	ModeHeadless = "headless"
)

// Tool types attached to every tool response.
const (
	ToolTypePayment    = "payment_processing"
	ToolTypeQuery      = "customer_query"
	ToolTypeConversion = "text_conversion"
	ToolTypeScript     = "gui_script"
)

// Transaction codes understood by the simulator.
const (
	TransactionF28   = "F-28"
	TransactionFBL5N = "FBL5N"
)

// Line item clearing statuses.
const (
	ItemOpen          = "Open"
	ItemPartiallyPaid = "Partially Paid"
	ItemOverdue       = "Overdue"
)

// IsOpenStatus reports whether a line item still carries an open balance.
// Partially paid and overdue items are open.
func IsOpenStatus(status string) bool {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "open", "partially paid", "overdue":
		return true
	}
	return false
}

// LineItem is a single customer line item returned by FBL5N.
type LineItem struct {
	// Document is the 10 digit accounting document number.
	Document string `json:"document"`
	// DocType is the document type label (Invoice, Credit Memo, ...).
	DocType string `json:"doc_type"`
	// Date is the document date formatted as dd.mm.yyyy.
	Date string `json:"date"`
	// Amount is the signed amount with two decimals.
	Amount string `json:"amount"`
	// Currency is the ISO currency code.
	Currency string `json:"currency"`
	// Status is the clearing status (Open, Partially Paid, Overdue).
	Status string `json:"status"`
}

// PaymentResult is the outcome of an F-28 incoming payment posting.
type PaymentResult struct {
	Status          string `json:"status"`
	Message         string `json:"message"`
	Error           string `json:"error,omitempty"`
	PaymentDocument string `json:"payment_document,omitempty"`
	CustomerID      string `json:"customer_id,omitempty"`
	ClearedDocument string `json:"cleared_document,omitempty"`
	Amount          string `json:"amount,omitempty"`
	Currency        string `json:"currency,omitempty"`
	CompanyCode     string `json:"company_code,omitempty"`
	PostingDate     string `json:"posting_date,omitempty"`
	Timestamp       string `json:"timestamp"`
}

// QueryResult is the outcome of an FBL5N open items query.
type QueryResult struct {
	Status      string     `json:"status"`
	Message     string     `json:"message"`
	Error       string     `json:"error,omitempty"`
	CustomerID  string     `json:"customer_id,omitempty"`
	CompanyCode string     `json:"company_code,omitempty"`
	ItemsCount  int        `json:"items_count"`
	Items       []LineItem `json:"items"`
	QueryDate   string     `json:"query_date,omitempty"`
	Timestamp   string     `json:"timestamp"`
}

// TextExport carries the SAP-like report generated for a transaction.
type TextExport struct {
	// SAPOutput is the report as printed by the transaction.
	SAPOutput string `json:"sap_output,omitempty"`
	// ClipboardContent is the report as it would be copied from the GUI.
	ClipboardContent string `json:"clipboard_content,omitempty"`
	// ExportAvailable reports whether a report was generated.
	ExportAvailable bool `json:"export_available"`
}

// GUIData describes what happened in the visual layer.
type GUIData struct {
	Status            string            `json:"gui_status"`
	Reason            string            `json:"reason,omitempty"`
	Error             string            `json:"error,omitempty"`
	Recommendation    string            `json:"recommendation,omitempty"`
	ProcessingTime    string            `json:"processing_time,omitempty"`
	DocumentGenerated string            `json:"document_generated,omitempty"`
	ItemsDisplayed    int               `json:"items_displayed,omitempty"`
	FinalValues       map[string]string `json:"final_values,omitempty"`
}

// GUI statuses reported in GUIData.
const (
	GUIStatusCompleted = "completed"
	GUIStatusSkipped   = "skipped"
	GUIStatusError     = "error"
)
