package protocol

// PaymentResponse is returned by the cobros tool.
type PaymentResponse struct {
	Status          string     `json:"status"`
	Message         string     `json:"message"`
	Error           string     `json:"error,omitempty"`
	PaymentDocument string     `json:"payment_document,omitempty"`
	CustomerID      string     `json:"customer_id,omitempty"`
	ClearedDocument string     `json:"cleared_document,omitempty"`
	Amount          string     `json:"amount,omitempty"`
	Currency        string     `json:"currency,omitempty"`
	CompanyCode     string     `json:"company_code,omitempty"`
	PostingDate     string     `json:"posting_date,omitempty"`
	Timestamp       string     `json:"timestamp"`
	GUILaunched     bool       `json:"gui_launched"`
	GUIData         *GUIData   `json:"gui_data,omitempty"`
	TextExport      TextExport `json:"text_export"`
	ToolType        string     `json:"tool_type"`
	ExecutionTime   string     `json:"execution_time"`
	AutoMode        string     `json:"auto_mode"`
	CorrelationID   string     `json:"correlation_id"`
}

// QueryResponse is returned by the fbl5n tool.
type QueryResponse struct {
	Status        string     `json:"status"`
	Message       string     `json:"message"`
	Error         string     `json:"error,omitempty"`
	CustomerID    string     `json:"customer_id,omitempty"`
	CompanyCode   string     `json:"company_code,omitempty"`
	ItemsCount    int        `json:"items_count"`
	Items         []LineItem `json:"items"`
	QueryDate     string     `json:"query_date,omitempty"`
	Timestamp     string     `json:"timestamp"`
	GUILaunched   bool       `json:"gui_launched"`
	GUIData       *GUIData   `json:"gui_data,omitempty"`
	TextExport    TextExport `json:"text_export"`
	ToolType      string     `json:"tool_type"`
	ExecutionTime string     `json:"execution_time"`
	AutoMode      string     `json:"auto_mode"`
	CorrelationID string     `json:"correlation_id"`
}

// NewPaymentResponse copies a simulator result into a tool response.
func NewPaymentResponse(res PaymentResult) PaymentResponse {
	return PaymentResponse{
		Status:          res.Status,
		Message:         res.Message,
		Error:           res.Error,
		PaymentDocument: res.PaymentDocument,
		CustomerID:      res.CustomerID,
		ClearedDocument: res.ClearedDocument,
		Amount:          res.Amount,
		Currency:        res.Currency,
		CompanyCode:     res.CompanyCode,
		PostingDate:     res.PostingDate,
		Timestamp:       res.Timestamp,
		ToolType:        ToolTypePayment,
	}
}

// NewQueryResponse copies a simulator result into a tool response.
func NewQueryResponse(res QueryResult) QueryResponse {
	items := res.Items
	if items == nil {
		items = []LineItem{}
	}
	return QueryResponse{
		Status:      res.Status,
		Message:     res.Message,
		Error:       res.Error,
		CustomerID:  res.CustomerID,
		CompanyCode: res.CompanyCode,
		ItemsCount:  res.ItemsCount,
		Items:       items,
		QueryDate:   res.QueryDate,
		Timestamp:   res.Timestamp,
		ToolType:    ToolTypeQuery,
	}
}
