package sap

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/codex-k8s/sapsim-mcp-server/internal/protocol"
)

// Payment documents are numbered in this range, as in the DZ number range of a demo client.
const (
	paymentDocMin = 1400000000
	paymentDocMax = 1499999999
)

// PaymentRequest holds the F-28 input fields.
type PaymentRequest struct {
	// Customer is the 6 digit bill-to customer.
	Customer string `json:"customer" validate:"required,number,len=6"`
	// DocNum is the open item document to clear.
	DocNum string `json:"doc_num" validate:"required,number"`
	// Amount is the incoming payment amount.
	Amount string `json:"amount" validate:"required"`
}

// ProcessPayment posts a simulated incoming payment that clears DocNum.
func (c *Core) ProcessPayment(ctx context.Context, req PaymentRequest) protocol.PaymentResult {
	req.Customer = strings.TrimSpace(req.Customer)
	req.DocNum = strings.TrimSpace(req.DocNum)

	if err := c.check(req); err != nil {
		return c.paymentError(err)
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		return c.paymentError(err)
	}
	if err := c.wait(ctx); err != nil {
		return c.paymentError(err)
	}

	doc := strconv.Itoa(paymentDocMin + c.intN(paymentDocMax-paymentDocMin+1))
	now := c.now()
	return protocol.PaymentResult{
		Status: protocol.StatusSuccess,
		Message: c.render("payment.success", map[string]any{"Document": doc, "CompanyCode": c.companyCode},
			fmt.Sprintf("Payment processed successfully. Document %s posted in company %s", doc, c.companyCode)),
		PaymentDocument: doc,
		CustomerID:      req.Customer,
		ClearedDocument: req.DocNum,
		Amount:          amount.StringFixed(2),
		Currency:        c.currency,
		CompanyCode:     c.companyCode,
		PostingDate:     now.Format(DateLayout),
		Timestamp:       now.Format(TimestampLayout),
	}
}

func (c *Core) paymentError(err error) protocol.PaymentResult {
	return protocol.PaymentResult{
		Status:    protocol.StatusError,
		Message:   c.render("payment.failed", map[string]any{"Reason": err.Error()}, "Payment processing failed: "+err.Error()),
		Error:     err.Error(),
		Timestamp: c.now().Format(TimestampLayout),
	}
}
