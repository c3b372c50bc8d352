// Package gui decides whether screens may be drawn and draws them.
package gui

import (
	"context"
	"os"
	"runtime"

	"github.com/mattn/go-isatty"

	"github.com/codex-k8s/sapsim-mcp-server/internal/protocol"
)

// Probe reports whether the calling context may render GUI output.
type Probe interface {
	// Safe returns true only when rendering from ctx is known to be permitted.
	Safe(ctx context.Context) bool
}

type ownerKey struct{}

// WithOwner marks ctx as running on the UI-owning goroutine.
func WithOwner(ctx context.Context) context.Context {
	return context.WithValue(ctx, ownerKey{}, true)
}

// IsOwner reports whether ctx was marked by WithOwner.
func IsOwner(ctx context.Context) bool {
	if ctx == nil {
		return false
	}
	owner, _ := ctx.Value(ownerKey{}).(bool)
	return owner
}

// StaticProbe always answers with its own value.
type StaticProbe bool

// Safe implements Probe.
func (p StaticProbe) Safe(context.Context) bool { return bool(p) }

// OwnerProbe treats owner contexts as safe. Other contexts are safe only on
// platforms without main thread affinity when a render surface is attached.
type OwnerProbe struct {
	// GOOS overrides runtime.GOOS.
	GOOS string
	// Surface reports whether a render surface is attached.
	Surface func() bool
}

// NewOwnerProbe returns an OwnerProbe that renders to out when out is a terminal.
func NewOwnerProbe(out *os.File) *OwnerProbe {
	return &OwnerProbe{Surface: func() bool { return IsTerminal(out) }}
}

// Safe implements Probe.
func (p *OwnerProbe) Safe(ctx context.Context) bool {
	if IsOwner(ctx) {
		return true
	}
	if p == nil || p.Surface == nil {
		return false
	}
	goos := p.GOOS
	if goos == "" {
		goos = runtime.GOOS
	}
	// AppKit aborts the process when touched off the main thread.
	if goos == "darwin" {
		return false
	}
	return p.Surface()
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Mode returns the execution mode chosen by p for ctx.
func Mode(ctx context.Context, p Probe) string {
	if p != nil && p.Safe(ctx) {
		return protocol.ModeGUI
	}
	return protocol.ModeHeadless
}

// ProbeFor maps a configured GUI mode to a Probe. Unknown modes probe the
// platform like "auto".
func ProbeFor(mode string, out *os.File) Probe {
	switch mode {
	case protocol.ModeGUI:
		return StaticProbe(true)
	case protocol.ModeHeadless:
		return StaticProbe(false)
	default:
		return NewOwnerProbe(out)
	}
}
