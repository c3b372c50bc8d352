package sap

import (
	"context"
	"fmt"
	"hash/fnv"
	"math/rand/v2"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/codex-k8s/sapsim-mcp-server/internal/protocol"
)

var (
	docTypes   = []string{"Invoice", "Credit Memo", "Payment", "Debit Memo"}
	currencies = []string{"EUR", "USD", "GBP"}
	statuses   = []string{protocol.ItemOpen, protocol.ItemPartiallyPaid, protocol.ItemOverdue}
)

// QueryRequest holds the FBL5N selection criteria.
type QueryRequest struct {
	// CustomerID is the 6 digit customer account.
	CustomerID string `json:"customer_id" validate:"required,number,len=6"`
	// CompanyCode restricts the query; empty means the default company code.
	CompanyCode string `json:"company_code" validate:"omitempty,number,len=4"`
}

// QueryOpenItems lists the open items of a customer. Items are derived from the
// customer and company code, so repeated queries return the same documents.
func (c *Core) QueryOpenItems(ctx context.Context, req QueryRequest) protocol.QueryResult {
	req.CustomerID = strings.TrimSpace(req.CustomerID)
	req.CompanyCode = strings.TrimSpace(req.CompanyCode)

	if err := c.check(req); err != nil {
		return c.queryError(err)
	}
	if req.CompanyCode == "" {
		req.CompanyCode = c.companyCode
	}
	if err := c.wait(ctx); err != nil {
		return c.queryError(err)
	}

	items := c.sampleItems(req.CustomerID, req.CompanyCode)
	now := c.now()
	return protocol.QueryResult{
		Status: protocol.StatusSuccess,
		Message: c.render("query.success", map[string]any{"Count": len(items), "Customer": req.CustomerID},
			fmt.Sprintf("Found %d open items for customer %s", len(items), req.CustomerID)),
		CustomerID:  req.CustomerID,
		CompanyCode: req.CompanyCode,
		ItemsCount:  len(items),
		Items:       items,
		QueryDate:   now.Format(DateLayout),
		Timestamp:   now.Format(TimestampLayout),
	}
}

func (c *Core) sampleItems(customerID, companyCode string) []protocol.LineItem {
	h := fnv.New64a()
	_, _ = h.Write([]byte(customerID + "/" + companyCode))
	seed := h.Sum64()
	rng := rand.New(rand.NewPCG(seed, ^seed))

	today := c.now()
	count := 3 + rng.IntN(6)
	items := make([]protocol.LineItem, 0, count)
	for range count {
		docType := docTypes[rng.IntN(len(docTypes))]
		daysAgo := 1 + rng.IntN(90)

		var amount decimal.Decimal
		if docType == "Credit Memo" {
			amount = decimal.NewFromInt(int64(100 + rng.IntN(4901))).Neg()
		} else {
			amount = decimal.NewFromInt(int64(500 + rng.IntN(9501)))
		}

		items = append(items, protocol.LineItem{
			Document: fmt.Sprintf("180000%04d", 1000+rng.IntN(9000)),
			DocType:  docType,
			Date:     today.AddDate(0, 0, -daysAgo).Format(DateLayout),
			Amount:   amount.StringFixed(2),
			Currency: currencies[rng.IntN(len(currencies))],
			Status:   statuses[rng.IntN(len(statuses))],
		})
	}
	return items
}

func (c *Core) queryError(err error) protocol.QueryResult {
	return protocol.QueryResult{
		Status:    protocol.StatusError,
		Message:   c.render("query.failed", map[string]any{"Reason": err.Error()}, "Customer query failed: "+err.Error()),
		Error:     err.Error(),
		Items:     []protocol.LineItem{},
		Timestamp: c.now().Format(TimestampLayout),
	}
}
