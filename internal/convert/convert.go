// Package convert parses SAP-like report text back into structured results.
package convert

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/codex-k8s/sapsim-mcp-server/internal/protocol"
)

// Supported transaction types.
const (
	TypeFBL5N = "fbl5n"
	TypeF28   = "f28"
)

// Conversion statuses.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

const rawPreviewLimit = 500

var (
	itemLine         = regexp.MustCompile(`^(\d{10})[ \t]+(\S+(?:[ \t]\S+)*?)[ \t]+(\d{2}\.\d{2}\.\d{4})[ \t]+(-?\d+(?:,\d{3})*\.\d{2})[ \t]+([A-Z]{3})[ \t]+(\S+(?:[ \t]\S+)*)[ \t]*$`)
	customerLine     = regexp.MustCompile(`Customer(?: ID)?[.: \t]+(\d{6})`)
	totalItemsLine   = regexp.MustCompile(`Total Items Found\.*:[ \t]*(\d+)`)
	paymentDocLine   = regexp.MustCompile(`Payment Document:[ \t]*(\d{10})`)
	clearedDocLine   = regexp.MustCompile(`Document Number\.*:[ \t]*(\d+)`)
	amountPostedLine = regexp.MustCompile(`Amount Posted\.*:[ \t]*(-?\d+(?:,\d{3})*(?:\.\d+)?)[ \t]+([A-Z]{3})`)
	statusLine       = regexp.MustCompile(`(?m)^Status:[ \t]*([A-Za-z]+)(?:[ \t]*-[ \t]*(.*))?$`)
	companyCodeLine  = regexp.MustCompile(`Company Code\.*:[ \t]*(\d{4})`)
)

// Summary aggregates FBL5N line items.
type Summary struct {
	TotalItems  int      `json:"total_items"`
	OpenItems   int      `json:"open_items"`
	TotalAmount float64  `json:"total_amount"`
	OpenAmount  float64  `json:"open_amount"`
	Currencies  []string `json:"currencies"`
	// TotalsByCurrency sums amounts per currency; TotalAmount mixes them.
	TotalsByCurrency map[string]float64 `json:"totals_by_currency"`
}

// Analysis holds hints derived from FBL5N line items.
type Analysis struct {
	HasOverdueItems       bool               `json:"has_overdue_items"`
	LargestOpenItem       *protocol.LineItem `json:"largest_open_item,omitempty"`
	PaymentRecommendation string             `json:"payment_recommendation"`
}

// Payment holds F-28 posting details.
type Payment struct {
	PaymentDocument string  `json:"payment_document,omitempty"`
	ClearedDocument string  `json:"cleared_document,omitempty"`
	Amount          float64 `json:"amount"`
	Currency        string  `json:"currency"`
	Status          string  `json:"status"`
	IsSuccessful    bool    `json:"is_successful"`
}

// Result is the structured form of a report.
type Result struct {
	TransactionType  string              `json:"transaction_type"`
	ConversionStatus string              `json:"conversion_status"`
	Status           string              `json:"status"`
	Message          string              `json:"message"`
	Error            string              `json:"error,omitempty"`
	CustomerID       string              `json:"customer_id,omitempty"`
	CompanyCode      string              `json:"company_code,omitempty"`
	ItemsCount       int                 `json:"items_count"`
	Items            []protocol.LineItem `json:"items"`
	Summary          *Summary            `json:"summary,omitempty"`
	Analysis         *Analysis           `json:"analysis,omitempty"`
	Payment          *Payment            `json:"payment_details,omitempty"`
	NextActions      []string            `json:"next_actions,omitempty"`
	RawText          string              `json:"raw_text,omitempty"`
	ConvertedAt      string              `json:"converted_at"`
	ToolType         string              `json:"tool_type,omitempty"`
	ExecutionTime    string              `json:"execution_time,omitempty"`
	CorrelationID    string              `json:"correlation_id,omitempty"`
}

// Converter turns report text into Results.
type Converter struct {
	// Now overrides the clock.
	Now func() time.Time
}

// Convert dispatches on transactionType (fbl5n or f28, case insensitive).
func (c Converter) Convert(text, transactionType string) (Result, error) {
	switch normalizeType(transactionType) {
	case TypeFBL5N:
		return c.FBL5N(text), nil
	case TypeF28:
		return c.F28(text), nil
	default:
		return Result{}, fmt.Errorf("unsupported transaction type: %s", transactionType)
	}
}

// FBL5N parses a customer line item list.
func (c Converter) FBL5N(text string) Result {
	res := Result{
		TransactionType: "FBL5N",
		CustomerID:      "Unknown",
		Items:           []protocol.LineItem{},
		ConvertedAt:     c.now().Format(time.RFC3339),
	}
	if strings.TrimSpace(text) == "" {
		return failed(res, text, "empty report text")
	}
	if m := customerLine.FindStringSubmatch(text); m != nil {
		res.CustomerID = m[1]
	}
	if m := companyCodeLine.FindStringSubmatch(text); m != nil {
		res.CompanyCode = m[1]
	}

	total, open := decimal.Zero, decimal.Zero
	totals := map[string]decimal.Decimal{}
	summary := &Summary{Currencies: []string{}, TotalsByCurrency: map[string]float64{}}
	analysis := &Analysis{PaymentRecommendation: "All items current"}
	var largest decimal.Decimal

	for _, line := range strings.Split(text, "\n") {
		m := itemLine.FindStringSubmatch(strings.TrimRight(line, "\r"))
		if m == nil {
			continue
		}
		amount, err := decimal.NewFromString(strings.ReplaceAll(m[4], ",", ""))
		if err != nil {
			continue
		}
		item := protocol.LineItem{
			Document: m[1],
			DocType:  strings.TrimSpace(m[2]),
			Date:     m[3],
			Amount:   amount.StringFixed(2),
			Currency: m[5],
			Status:   strings.TrimSpace(m[6]),
		}
		res.Items = append(res.Items, item)
		total = total.Add(amount)
		if _, seen := totals[item.Currency]; !seen {
			summary.Currencies = append(summary.Currencies, item.Currency)
		}
		totals[item.Currency] = totals[item.Currency].Add(amount)
		if strings.EqualFold(item.Status, "overdue") {
			analysis.HasOverdueItems = true
		}
		if protocol.IsOpenStatus(item.Status) {
			summary.OpenItems++
			open = open.Add(amount)
			if analysis.LargestOpenItem == nil || amount.GreaterThan(largest) {
				largestItem := item
				analysis.LargestOpenItem = &largestItem
				largest = amount
			}
		}
	}
	if analysis.HasOverdueItems {
		analysis.PaymentRecommendation = "Process oldest overdue items first"
	}

	summary.TotalItems = len(res.Items)
	if m := totalItemsLine.FindStringSubmatch(text); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			summary.TotalItems = n
		}
	}
	summary.TotalAmount = total.Round(2).InexactFloat64()
	summary.OpenAmount = open.Round(2).InexactFloat64()
	for currency, sum := range totals {
		summary.TotalsByCurrency[currency] = sum.Round(2).InexactFloat64()
	}

	res.ItemsCount = len(res.Items)
	res.Summary = summary
	res.Analysis = analysis
	res.ConversionStatus = StatusSuccess
	res.Status = protocol.StatusSuccess
	res.Message = fmt.Sprintf("Parsed %d line items for customer %s", res.ItemsCount, res.CustomerID)
	return res
}

// F28 parses a payment posting log.
func (c Converter) F28(text string) Result {
	res := Result{
		TransactionType: "F-28",
		CustomerID:      "Unknown",
		Items:           []protocol.LineItem{},
		ConvertedAt:     c.now().Format(time.RFC3339),
	}
	if strings.TrimSpace(text) == "" {
		return failed(res, text, "empty report text")
	}
	if m := customerLine.FindStringSubmatch(text); m != nil {
		res.CustomerID = m[1]
	}
	if m := companyCodeLine.FindStringSubmatch(text); m != nil {
		res.CompanyCode = m[1]
	}

	payment := &Payment{Currency: "EUR", Status: "Unknown"}
	if m := paymentDocLine.FindStringSubmatch(text); m != nil {
		payment.PaymentDocument = m[1]
	}
	if m := clearedDocLine.FindStringSubmatch(text); m != nil {
		payment.ClearedDocument = m[1]
	}
	if m := amountPostedLine.FindStringSubmatch(text); m != nil {
		if amount, err := decimal.NewFromString(strings.ReplaceAll(m[1], ",", "")); err == nil {
			payment.Amount = amount.Round(2).InexactFloat64()
		}
		payment.Currency = m[2]
	}
	if m := statusLine.FindStringSubmatch(text); m != nil {
		payment.Status = m[1]
	}
	payment.IsSuccessful = strings.EqualFold(payment.Status, "success") || payment.PaymentDocument != ""

	res.Payment = payment
	res.ConversionStatus = StatusSuccess
	if payment.IsSuccessful {
		res.Status = protocol.StatusSuccess
		res.Message = fmt.Sprintf("Payment document %s cleared %s", payment.PaymentDocument, payment.ClearedDocument)
		res.NextActions = []string{"Verify posting in customer account", "Update customer communication"}
	} else {
		res.Status = protocol.StatusError
		res.Message = "No posted payment document found in report"
		res.NextActions = []string{"Review error and retry", "Escalate to SAP administrator"}
	}
	return res
}

func (c Converter) now() time.Time {
	if c.Now == nil {
		return time.Now()
	}
	return c.Now()
}

func failed(res Result, text, reason string) Result {
	res.ConversionStatus = StatusError
	res.Status = protocol.StatusError
	res.Message = "Text conversion failed: " + reason
	res.Error = reason
	res.RawText = Preview(text, rawPreviewLimit)
	return res
}

// Preview truncates text to limit bytes, marking the cut with an ellipsis.
func Preview(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	return text[:limit] + "..."
}

func normalizeType(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	return strings.ReplaceAll(value, "-", "")
}
