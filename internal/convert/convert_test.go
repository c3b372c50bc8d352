package convert

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codex-k8s/sapsim-mcp-server/internal/export"
	"github.com/codex-k8s/sapsim-mcp-server/internal/protocol"
)

var fixedNow = time.Date(2025, 8, 25, 8, 0, 0, 0, time.UTC)

func sampleItems() []protocol.LineItem {
	return []protocol.LineItem{
		{Document: "1800001234", DocType: "Invoice", Date: "01.08.2025", Amount: "10500.00", Currency: "EUR", Status: "Open"},
		{Document: "1800005678", DocType: "Credit Memo", Date: "02.08.2025", Amount: "-200.00", Currency: "USD", Status: "Partially Paid"},
		{Document: "1800009999", DocType: "Debit Memo", Date: "03.07.2025", Amount: "750.00", Currency: "EUR", Status: "Overdue"},
	}
}

func TestConverter_FBL5NRoundTrip(t *testing.T) {
	gen := export.Generator{Now: func() time.Time { return fixedNow }}
	text := gen.FBL5N(protocol.QueryResult{CustomerID: "123456", CompanyCode: "1000", Items: sampleItems()})

	res := Converter{Now: func() time.Time { return fixedNow }}.FBL5N(text)

	require.Equal(t, StatusSuccess, res.ConversionStatus)
	assert.Equal(t, protocol.StatusSuccess, res.Status)
	assert.Equal(t, "123456", res.CustomerID)
	assert.Equal(t, "1000", res.CompanyCode)
	assert.Equal(t, sampleItems(), res.Items)
	assert.Equal(t, 3, res.ItemsCount)

	require.NotNil(t, res.Summary)
	assert.Equal(t, 3, res.Summary.TotalItems)
	assert.Equal(t, 3, res.Summary.OpenItems)
	assert.InDelta(t, 11050.00, res.Summary.TotalAmount, 0.001)
	assert.ElementsMatch(t, []string{"EUR", "USD"}, res.Summary.Currencies)
	assert.Equal(t, map[string]float64{"EUR": 11250.00, "USD": -200.00}, res.Summary.TotalsByCurrency)
	assert.Contains(t, text, "Open Items..........: 3")

	require.NotNil(t, res.Analysis)
	assert.True(t, res.Analysis.HasOverdueItems)
	assert.Equal(t, "Process oldest overdue items first", res.Analysis.PaymentRecommendation)
	require.NotNil(t, res.Analysis.LargestOpenItem)
	assert.Equal(t, "1800001234", res.Analysis.LargestOpenItem.Document)
}

func TestConverter_F28RoundTrip(t *testing.T) {
	gen := export.Generator{Now: func() time.Time { return fixedNow }}
	text := gen.Clipboard(gen.F28(protocol.PaymentResult{
		PaymentDocument: "1411111111",
		CustomerID:      "123456",
		ClearedDocument: "1800000789",
		Amount:          "1250.75",
		Currency:        "EUR",
		CompanyCode:     "1000",
		PostingDate:     "25.08.2025",
	}))

	res, err := Converter{}.Convert(text, "F-28")

	require.NoError(t, err)
	assert.Equal(t, "F-28", res.TransactionType)
	assert.Equal(t, protocol.StatusSuccess, res.Status)
	assert.Equal(t, "123456", res.CustomerID)
	require.NotNil(t, res.Payment)
	assert.Equal(t, "1411111111", res.Payment.PaymentDocument)
	assert.Equal(t, "1800000789", res.Payment.ClearedDocument)
	assert.InDelta(t, 1250.75, res.Payment.Amount, 0.001)
	assert.Equal(t, "EUR", res.Payment.Currency)
	assert.Equal(t, "SUCCESS", res.Payment.Status)
	assert.True(t, res.Payment.IsSuccessful)
	assert.Len(t, res.NextActions, 2)
}

func TestConverter_F28WithoutPosting(t *testing.T) {
	res := Converter{}.F28("Status: FAILED - posting blocked\nCustomer: 654321\n")

	assert.Equal(t, StatusSuccess, res.ConversionStatus)
	assert.Equal(t, protocol.StatusError, res.Status)
	assert.Equal(t, "654321", res.CustomerID)
	assert.False(t, res.Payment.IsSuccessful)
	assert.Equal(t, "Review error and retry", res.NextActions[0])
}

func TestConverter_EmptyAndUnsupported(t *testing.T) {
	res := Converter{}.FBL5N("   ")
	assert.Equal(t, StatusError, res.ConversionStatus)
	assert.NotNil(t, res.Items)

	_, err := Converter{}.Convert("text", "VA01")
	assert.EqualError(t, err, "unsupported transaction type: VA01")
}

func TestConverter_FBL5NFreeText(t *testing.T) {
	res := Converter{}.FBL5N("Customer 111222\nnothing tabular here\n")

	assert.Equal(t, StatusSuccess, res.ConversionStatus)
	assert.Equal(t, "111222", res.CustomerID)
	assert.Empty(t, res.Items)
	assert.Nil(t, res.Analysis.LargestOpenItem)
	assert.Equal(t, "All items current", res.Analysis.PaymentRecommendation)
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "abc", Preview("abc", 5))
	assert.Equal(t, "ab...", Preview("abcdef", 2))
}
