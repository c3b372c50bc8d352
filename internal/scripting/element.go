package scripting

import (
	"context"
	"errors"
	"fmt"

	"github.com/codex-k8s/sapsim-mcp-server/internal/sap"
)

// Kind is the control type of an Element.
type Kind string

// Element kinds.
const (
	KindField    Kind = "field"
	KindLabel    Kind = "label"
	KindButton   Kind = "button"
	KindCheckbox Kind = "checkbox"
	KindTable    Kind = "table"
)

// Checked is the text value of a selected checkbox, as in SAP GUI.
const Checked = "X"

// Action runs when a button is pressed.
type Action func(ctx context.Context, s *Session) error

// Element is an addressable control of a Session window.
type Element struct {
	id      string
	kind    Kind
	label   string
	text    string
	headers []string
	rows    [][]string
	action  Action
	session *Session
}

// ID returns the element identifier used with FindByID.
func (e *Element) ID() string { return e.id }

// Kind returns the control type.
func (e *Element) Kind() Kind { return e.kind }

// Label returns the caption shown next to the control.
func (e *Element) Label() string { return e.label }

// Text returns the current value.
func (e *Element) Text() string { return e.text }

// SetText replaces the current value.
func (e *Element) SetText(value string) {
	e.text = value
	e.session.notify(e.id)
}

// Selected reports whether a checkbox is ticked.
func (e *Element) Selected() bool { return e.kind == KindCheckbox && e.text == Checked }

// Headers returns the column headings of a table.
func (e *Element) Headers() []string {
	return append([]string(nil), e.headers...)
}

// Rows returns a copy of the table rows.
func (e *Element) Rows() [][]string {
	out := make([][]string, len(e.rows))
	for i, row := range e.rows {
		out[i] = append([]string(nil), row...)
	}
	return out
}

func (e *Element) setRows(rows [][]string) {
	e.rows = rows
	e.session.notify(e.id)
}

// Press triggers the bound action of a button.
func (e *Element) Press() error {
	return e.PressContext(context.Background())
}

// PressContext triggers the bound action with ctx passed to the simulator.
func (e *Element) PressContext(ctx context.Context) error {
	if e.kind != KindButton {
		return &sap.InputValidationError{Field: e.id, Value: string(e.kind), Detail: "element is not a button"}
	}
	if e.action == nil {
		return nil
	}
	if err := e.action(ctx, e.session); err != nil {
		return fmt.Errorf("press %s: %w", e.id, err)
	}
	return nil
}

// NotFoundError reports an unknown element, session or transaction identifier.
type NotFoundError struct {
	// ID is the identifier that was looked up.
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.ID)
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}
