// Package export renders transaction results the way SAP GUI prints and copies them.
package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/codex-k8s/sapsim-mcp-server/internal/protocol"
	"github.com/codex-k8s/sapsim-mcp-server/internal/sap"
)

// Rule is the report separator line.
var Rule = strings.Repeat("=", 80)

// Generator renders SAP-like report text.
type Generator struct {
	// User is printed in report headers.
	User string
	// Client is the SAP client number.
	Client string
	// Now overrides the clock.
	Now func() time.Time
}

func (g Generator) now() time.Time {
	if g.Now == nil {
		return time.Now()
	}
	return g.Now()
}

func (g Generator) user() string {
	if g.User == "" {
		return "SAPUSER"
	}
	return g.User
}

func (g Generator) client() string {
	if g.Client == "" {
		return "100"
	}
	return g.Client
}

// FBL5N renders the customer line items list of a successful query.
func (g Generator) FBL5N(res protocol.QueryResult) string {
	now := g.now()
	date := now.Format(sap.DateLayout)

	var b strings.Builder
	b.WriteString(Rule + "\n")
	b.WriteString(center("Customer Line Items - FBL5N", 80) + "\n")
	b.WriteString(Rule + "\n")
	fmt.Fprintf(&b, "%-58s%s\n", "Run Date: "+date, "Time: "+now.Format(sap.TimeLayout))
	fmt.Fprintf(&b, "%-58s%s\n", "User: "+g.user(), "Client: "+g.client())
	fmt.Fprintf(&b, "%-58s%s\n", "Company Code: "+res.CompanyCode, "Customer: "+res.CustomerID)
	b.WriteString("\nSelection Criteria:\n")
	fmt.Fprintf(&b, "  Company Code........: %s\n", res.CompanyCode)
	fmt.Fprintf(&b, "  Customer............: %s\n", res.CustomerID)
	b.WriteString("  Open Items Only.....: X\n")
	fmt.Fprintf(&b, "  Date From...........: %s\n", now.AddDate(0, 0, -90).Format(sap.DateLayout))
	fmt.Fprintf(&b, "  Date To.............: %s\n", date)
	b.WriteString("\n" + Rule + "\n")
	b.WriteString("Document    Doc Type      Date        Amount        Curr  Status\n")
	b.WriteString(Rule + "\n")

	totals := map[string]decimal.Decimal{}
	var currencies []string
	open := 0
	for _, item := range res.Items {
		amount, err := decimal.NewFromString(item.Amount)
		if err != nil {
			amount = decimal.Zero
		}
		if _, seen := totals[item.Currency]; !seen {
			currencies = append(currencies, item.Currency)
		}
		totals[item.Currency] = totals[item.Currency].Add(amount)
		if protocol.IsOpenStatus(item.Status) {
			open++
		}
		fmt.Fprintf(&b, "%s  %-12s  %s  %12s  %s   %s\n",
			item.Document, item.DocType, item.Date, FormatAmount(amount), item.Currency, item.Status)
	}

	b.WriteString("\n" + Rule + "\n")
	b.WriteString("Summary:\n")
	fmt.Fprintf(&b, "  Total Items Found...: %d\n", len(res.Items))
	if len(currencies) == 0 {
		fmt.Fprintf(&b, "  Total Amount........: %12s\n", FormatAmount(decimal.Zero))
	}
	for _, currency := range currencies {
		fmt.Fprintf(&b, "  Total Amount........: %12s %s\n", FormatAmount(totals[currency]), currency)
	}
	fmt.Fprintf(&b, "  Open Items..........: %d\n", open)
	b.WriteString("\nReport Generation Complete.\n")
	b.WriteString(Rule)
	return b.String()
}

// F28 renders the posting log of a successful payment.
func (g Generator) F28(res protocol.PaymentResult) string {
	now := g.now()
	date := now.Format(sap.DateLayout)
	clock := now.Format(sap.TimeLayout)
	amount := res.Amount + " " + res.Currency

	var b strings.Builder
	b.WriteString(Rule + "\n")
	b.WriteString(center("Payment Processing - F-28", 80) + "\n")
	b.WriteString(Rule + "\n")
	fmt.Fprintf(&b, "%-57s%s\n", "Processing Date: "+date, "Time: "+clock)
	fmt.Fprintf(&b, "%-57s%s\n", "User: "+g.user(), "Session: 001")
	fmt.Fprintf(&b, "%-57s%s\n", "Company Code: "+res.CompanyCode, "Customer: "+res.CustomerID)
	b.WriteString("\nPayment Header:\n")
	fmt.Fprintf(&b, "  Document Date.......: %s\n", date)
	fmt.Fprintf(&b, "  Posting Date........: %s\n", res.PostingDate)
	fmt.Fprintf(&b, "  Company Code........: %s\n", res.CompanyCode)
	b.WriteString("  Document Type.......: DZ (Payment)\n")
	fmt.Fprintf(&b, "  Reference...........: AUTO_PAYMENT_%s\n", res.PaymentDocument)
	b.WriteString("\nCustomer Information:\n")
	fmt.Fprintf(&b, "  Customer ID.........: %s\n", res.CustomerID)
	b.WriteString("  Customer Name.......: Customer Demo Ltd.\n")
	b.WriteString("  Payment Terms.......: Net 30\n")
	b.WriteString("\nDocument Selection:\n")
	fmt.Fprintf(&b, "  Document Number.....: %s\n", res.ClearedDocument)
	fmt.Fprintf(&b, "  Amount..............: %s\n", amount)
	b.WriteString("  Document Type.......: Invoice\n")
	b.WriteString("  Status..............: Open → Cleared\n")
	b.WriteString("\n" + Rule + "\n")
	b.WriteString("PAYMENT PROCESSING RESULTS:\n")
	b.WriteString(Rule + "\n\n")
	for _, check := range []string{"Document Validation", "Customer Check", "Amount Verification", "Posting Authorization"} {
		fmt.Fprintf(&b, "✓ %s: PASSED\n", check)
	}
	fmt.Fprintf(&b, "\nPayment Document: %s\n", res.PaymentDocument)
	b.WriteString("Status: SUCCESS - Document posted successfully\n")
	b.WriteString("\nCleared Items:\n")
	fmt.Fprintf(&b, "  %s ................. %s\n", res.ClearedDocument, amount)
	b.WriteString("\nNew Documents Created:\n")
	fmt.Fprintf(&b, "  %s ................. %s (Payment)\n", res.PaymentDocument, amount)
	b.WriteString("\nAccount Postings:\n")
	fmt.Fprintf(&b, "  Customer Account %s ......... CREDIT %s\n", res.CustomerID, amount)
	fmt.Fprintf(&b, "  Bank Clearing Account .................. DEBIT  %s\n", amount)
	b.WriteString("\n" + Rule + "\n")
	b.WriteString("Processing Summary:\n")
	b.WriteString("  Documents Processed.: 1\n")
	fmt.Fprintf(&b, "  Amount Posted.......: %s\n", amount)
	b.WriteString("  Status..............: SUCCESS\n")
	fmt.Fprintf(&b, "\nTransaction Complete: %s\n", clock)
	b.WriteString(Rule)
	return b.String()
}

// Clipboard returns text as copied from the GUI: separators dropped, check
// marks replaced and a clipboard header prepended.
func (g Generator) Clipboard(text string) string {
	body := strings.ReplaceAll(text, Rule, "")
	body = strings.ReplaceAll(body, "✓", "[OK]")
	header := fmt.Sprintf("[SAP CLIPBOARD EXPORT - %s]\n[Source: SAP GUI Transaction Export]\n[Format: Plain Text]\n\n",
		g.now().Format("20060102_150405"))
	return header + body
}

// FormatAmount formats d with two decimals and thousands separators.
func FormatAmount(d decimal.Decimal) string {
	fixed := d.Abs().StringFixed(2)
	intPart, frac, _ := strings.Cut(fixed, ".")

	var grouped strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			grouped.WriteByte(',')
		}
		grouped.WriteRune(r)
	}
	sign := ""
	if d.IsNegative() {
		sign = "-"
	}
	return sign + grouped.String() + "." + frac
}

func center(s string, width int) string {
	pad := (width - len(s)) / 2
	if pad <= 0 {
		return s
	}
	return strings.Repeat(" ", pad) + s
}
