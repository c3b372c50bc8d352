package sap

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/codex-k8s/sapsim-mcp-server/internal/templates"
)

// Date layouts used by SAP GUI screens and reports.
const (
	DateLayout      = "02.01.2006"
	TimeLayout      = "15:04:05"
	TimestampLayout = time.RFC3339
)

// Options configures a Core.
type Options struct {
	// CompanyCode is the default company code (Buchungskreis).
	CompanyCode string
	// Currency is the posting currency for payments.
	Currency string
	// Seed seeds payment document numbering; zero picks a time based seed.
	Seed uint64
	// ProcessingDelay simulates transaction runtime.
	ProcessingDelay time.Duration
	// Messages renders localized result messages.
	Messages templates.Renderer
	// Now overrides the clock.
	Now func() time.Time
}

// Core simulates F-28 and FBL5N without any GUI dependency.
// It keeps no ledger: every result is synthesized from the request.
type Core struct {
	companyCode string
	currency    string
	delay       time.Duration
	messages    templates.Renderer
	now         func() time.Time
	validate    *validator.Validate

	mu  sync.Mutex
	rng *rand.Rand
}

// New builds a Core with defaults for empty options.
func New(opts Options) *Core {
	if opts.CompanyCode == "" {
		opts.CompanyCode = "1000"
	}
	if opts.Currency == "" {
		opts.Currency = "EUR"
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	seed := opts.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &Core{
		companyCode: opts.CompanyCode,
		currency:    opts.Currency,
		delay:       opts.ProcessingDelay,
		messages:    opts.Messages,
		now:         opts.Now,
		validate:    newValidator(),
		rng:         rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

// CompanyCode returns the default company code.
func (c *Core) CompanyCode() string {
	return c.companyCode
}

// Now returns the simulator clock.
func (c *Core) Now() time.Time {
	return c.now()
}

func (c *Core) wait(ctx context.Context) error {
	if c.delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(c.delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (c *Core) intN(n int) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rng.IntN(n)
}

func (c *Core) render(key string, data map[string]any, fallback string) string {
	return templates.RenderOr(c.messages, key, data, fallback)
}
