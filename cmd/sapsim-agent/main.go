// Command sapsim-agent clears the first open invoice of a customer through the
// simulated SAP GUI: it lists items with FBL5N and posts the payment with F-28.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	goruntime "runtime"
	"syscall"

	"github.com/shopspring/decimal"

	"github.com/codex-k8s/sapsim-mcp-server/internal/config"
	"github.com/codex-k8s/sapsim-mcp-server/internal/gui"
	"github.com/codex-k8s/sapsim-mcp-server/internal/log"
	"github.com/codex-k8s/sapsim-mcp-server/internal/protocol"
	"github.com/codex-k8s/sapsim-mcp-server/internal/sap"
	"github.com/codex-k8s/sapsim-mcp-server/internal/scripting"
	"github.com/codex-k8s/sapsim-mcp-server/internal/templates"
)

func init() { goruntime.LockOSThread() }

type options struct {
	customer    string
	companyCode string
	system      string
	headless    bool
}

// openItem is a row of the FBL5N table picked for payment.
type openItem struct {
	document string
	amount   decimal.Decimal
	currency string
}

var errNothingToPay = errors.New("no open invoice found")

func main() {
	var opts options
	flag.StringVar(&opts.customer, "customer", "100001", "Customer account to clear")
	flag.StringVar(&opts.companyCode, "company-code", "1000", "Company code")
	flag.StringVar(&opts.system, "system", "SIM - Simulated ERP", "Connection description")
	flag.BoolVar(&opts.headless, "headless", false, "Do not draw SAP GUI windows")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}
	logger := log.New(cfg.LogLevel)

	messages, err := templates.Load(cfg.Lang)
	if err != nil {
		logger.Error("load templates failed", "error", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	app := scripting.NewApplication(sap.New(sap.Options{CompanyCode: opts.companyCode, Messages: messages}), messages)
	conn, err := app.GetScriptingEngine().OpenConnection(opts.system)
	if err != nil {
		logger.Error("open connection failed", "error", err)
		os.Exit(1)
	}
	defer conn.Close()
	session, err := conn.Children(0)
	if err != nil {
		logger.Error("open session failed", "error", err)
		os.Exit(1)
	}

	if opts.headless || cfg.GUIMode == protocol.ModeHeadless {
		if err := run(ctx, session, opts, logger); err != nil {
			logger.Error("agent failed", "error", err)
			os.Exit(1)
		}
		return
	}

	dispatcher := gui.NewDispatcher(gui.DefaultDispatchTimeout)
	gui.NewPresenter(os.Stderr).Attach(session, dispatcher, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- run(ctx, session, opts, logger)
		dispatcher.Close()
	}()
	if err := dispatcher.Run(ctx); err != nil {
		logger.Warn("GUI dispatcher stopped", "error", err)
	}
	if err := <-errCh; err != nil {
		logger.Error("agent failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, session *scripting.Session, opts options, logger *slog.Logger) error {
	item, err := findOpenInvoice(ctx, session, opts)
	if err != nil {
		return err
	}
	logger.Info("open invoice selected", "customer", opts.customer, "document", item.document, "amount", item.amount.StringFixed(2), "currency", item.currency)

	res, err := postPayment(ctx, session, opts, item)
	if err != nil {
		return err
	}
	if res.Status != protocol.StatusSuccess {
		return fmt.Errorf("payment rejected: %s", res.Error)
	}
	logger.Info("payment posted", "payment_document", res.PaymentDocument, "cleared_document", res.ClearedDocument, "status_bar", session.StatusMessage())
	return nil
}

func findOpenInvoice(ctx context.Context, session *scripting.Session, opts options) (openItem, error) {
	if err := session.StartTransaction(protocol.TransactionFBL5N); err != nil {
		return openItem{}, err
	}
	if err := setText(session, scripting.FBL5NCustomer, opts.customer); err != nil {
		return openItem{}, err
	}
	if err := setText(session, scripting.FBL5NCompany, opts.companyCode); err != nil {
		return openItem{}, err
	}
	if err := press(ctx, session, scripting.FBL5NBtnExecute); err != nil {
		return openItem{}, err
	}
	if res, ok := session.LastQuery(); ok && res.Status != protocol.StatusSuccess {
		return openItem{}, fmt.Errorf("query failed: %s", res.Error)
	}

	table, err := session.FindByID(scripting.FBL5NTable)
	if err != nil {
		return openItem{}, err
	}
	for _, row := range table.Rows() {
		// Document, Doc Type, Date, Amount, Currency, Status
		if len(row) < 6 || row[1] != "Invoice" || row[5] == "Paid" {
			continue
		}
		amount, err := decimal.NewFromString(row[3])
		if err != nil || !amount.IsPositive() {
			continue
		}
		return openItem{document: row[0], amount: amount, currency: row[4]}, nil
	}
	return openItem{}, errNothingToPay
}

func postPayment(ctx context.Context, session *scripting.Session, opts options, item openItem) (protocol.PaymentResult, error) {
	if err := session.StartTransaction(protocol.TransactionF28); err != nil {
		return protocol.PaymentResult{}, err
	}
	values := []struct{ id, value string }{
		{scripting.F28Company, opts.companyCode},
		{scripting.F28Customer, opts.customer},
		{scripting.F28DocNum, item.document},
		{scripting.F28Amount, item.amount.StringFixed(2)},
	}
	for _, v := range values {
		if err := setText(session, v.id, v.value); err != nil {
			return protocol.PaymentResult{}, err
		}
	}
	if err := press(ctx, session, scripting.F28BtnSubmit); err != nil {
		return protocol.PaymentResult{}, err
	}
	res, ok := session.LastPayment()
	if !ok {
		return protocol.PaymentResult{}, fmt.Errorf("no payment result on %s", session.Transaction())
	}
	return res, nil
}

func setText(session *scripting.Session, id, value string) error {
	el, err := session.FindByID(id)
	if err != nil {
		return err
	}
	el.SetText(value)
	return nil
}

func press(ctx context.Context, session *scripting.Session, id string) error {
	el, err := session.FindByID(id)
	if err != nil {
		return err
	}
	return el.PressContext(ctx)
}
