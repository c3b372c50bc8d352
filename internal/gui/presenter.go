package gui

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/codex-k8s/sapsim-mcp-server/internal/scripting"
)

const windowWidth = 78

// Field is one labelled control of a Window.
type Field struct {
	Label  string
	Value  string
	Button bool
}

// Window is a point-in-time view of an SAP screen.
type Window struct {
	Title       string
	Transaction string
	Fields      []Field
	Headers     []string
	Rows        [][]string
	Status      string
}

// SessionWindow snapshots the current window of s.
// It must run on the goroutine that owns s.
func SessionWindow(s *scripting.Session) Window {
	w := Window{Title: s.Title(), Transaction: s.Transaction()}
	for _, elem := range s.Elements() {
		switch {
		case elem.ID() == scripting.StatusBarID:
			w.Status = elem.Text()
		case elem.Kind() == scripting.KindTable:
			w.Headers = elem.Headers()
			w.Rows = elem.Rows()
		case elem.Kind() == scripting.KindButton:
			w.Fields = append(w.Fields, Field{Label: elem.Label(), Button: true})
		case elem.Kind() == scripting.KindCheckbox:
			mark := "[ ]"
			if elem.Selected() {
				mark = "[X]"
			}
			w.Fields = append(w.Fields, Field{Label: elem.Label(), Value: mark})
		default:
			w.Fields = append(w.Fields, Field{Label: elem.Label(), Value: elem.Text()})
		}
	}
	return w
}

// Presenter draws Windows as boxed terminal frames.
type Presenter struct {
	mu  sync.Mutex
	out io.Writer

	frame  lipgloss.Style
	title  lipgloss.Style
	label  lipgloss.Style
	value  lipgloss.Style
	button lipgloss.Style
	status lipgloss.Style
}

// NewPresenter creates a Presenter writing to out.
func NewPresenter(out io.Writer) *Presenter {
	r := lipgloss.NewRenderer(out)
	return &Presenter{
		out:    out,
		frame:  r.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1).Width(windowWidth),
		title:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("24")).Padding(0, 1),
		label:  r.NewStyle().Width(20),
		value:  r.NewStyle().Border(lipgloss.NormalBorder(), false, false, true, false).Width(30),
		button: r.NewStyle().Border(lipgloss.NormalBorder()).Padding(0, 1),
		status: r.NewStyle().Italic(true).Foreground(lipgloss.Color("244")),
	}
}

// Render returns the frame for w without drawing it.
func (p *Presenter) Render(w Window) string {
	parts := []string{p.title.Render(strings.TrimSpace(w.Title + "  " + w.Transaction))}

	var buttons []string
	for _, f := range w.Fields {
		if f.Button {
			buttons = append(buttons, p.button.Render(f.Label))
			continue
		}
		parts = append(parts, lipgloss.JoinHorizontal(lipgloss.Bottom, p.label.Render(f.Label+":"), p.value.Render(f.Value)))
	}
	if len(buttons) > 0 {
		parts = append(parts, lipgloss.JoinHorizontal(lipgloss.Top, buttons...))
	}
	if len(w.Headers) > 0 {
		t := table.New().
			Border(lipgloss.NormalBorder()).
			Headers(w.Headers...).
			Rows(w.Rows...)
		parts = append(parts, t.String())
	}
	parts = append(parts, p.status.Render(w.Status))
	return p.frame.Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

// Draw writes the frame for w. Callers must hold a UI-owning context.
func (p *Presenter) Draw(ctx context.Context, w Window) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, err := fmt.Fprintln(p.out, p.Render(w)); err != nil {
		return fmt.Errorf("draw %s: %w", w.Transaction, err)
	}
	return nil
}

// Attach redraws s through d after every window change. Snapshots are taken
// on the goroutine mutating s; drawing happens on the dispatcher.
func (p *Presenter) Attach(s *scripting.Session, d *Dispatcher, logger *slog.Logger) {
	s.Observe(func(ev scripting.Event) {
		w := SessionWindow(s)
		err := d.Do(context.Background(), func(ctx context.Context) error {
			return p.Draw(ctx, w)
		})
		if err != nil && logger != nil {
			logger.Warn("GUI redraw failed", "session", ev.SessionID, "element", ev.ElementID, "error", err)
		}
	})
}
