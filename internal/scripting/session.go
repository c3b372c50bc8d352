package scripting

import (
	"fmt"
	"strings"

	"github.com/codex-k8s/sapsim-mcp-server/internal/protocol"
	"github.com/codex-k8s/sapsim-mcp-server/internal/sap"
	"github.com/codex-k8s/sapsim-mcp-server/internal/templates"
)

// StatusBarID is the element holding the status bar message on every screen.
const StatusBarID = "-STATUS-"

// Event describes a change of a session window.
type Event struct {
	// SessionID identifies the session.
	SessionID string
	// Transaction is the active transaction code.
	Transaction string
	// ElementID is the changed element; empty when the whole window changed.
	ElementID string
}

// Observer receives session change events.
type Observer func(Event)

// Session is a simulated SAP GUI session holding the elements of one window.
// It is not safe for concurrent use; callers serialize access.
type Session struct {
	id          string
	core        *sap.Core
	messages    templates.Renderer
	transaction string
	title       string
	elements    map[string]*Element
	order       []string
	observers   []Observer
	lastPayment *protocol.PaymentResult
	lastQuery   *protocol.QueryResult
}

func newSession(id string, core *sap.Core, messages templates.Renderer) *Session {
	return &Session{
		id:       id,
		core:     core,
		messages: messages,
		elements: map[string]*Element{},
	}
}

// ID returns the session path, e.g. /app/con[0]/ses[0].
func (s *Session) ID() string { return s.id }

// Transaction returns the active transaction code.
func (s *Session) Transaction() string { return s.transaction }

// Title returns the window title.
func (s *Session) Title() string { return s.title }

// FindByID returns the element registered under id.
func (s *Session) FindByID(id string) (*Element, error) {
	elem, ok := s.elements[id]
	if !ok {
		return nil, &NotFoundError{ID: id}
	}
	return elem, nil
}

// Elements returns the window elements in layout order.
func (s *Session) Elements() []*Element {
	out := make([]*Element, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.elements[id])
	}
	return out
}

// StatusMessage returns the status bar text.
func (s *Session) StatusMessage() string {
	if elem, ok := s.elements[StatusBarID]; ok {
		return elem.text
	}
	return ""
}

// LastPayment returns the result of the last F-28 posting in this session.
func (s *Session) LastPayment() (protocol.PaymentResult, bool) {
	if s.lastPayment == nil {
		return protocol.PaymentResult{}, false
	}
	return *s.lastPayment, true
}

// LastQuery returns the result of the last FBL5N query in this session.
func (s *Session) LastQuery() (protocol.QueryResult, bool) {
	if s.lastQuery == nil {
		return protocol.QueryResult{}, false
	}
	return *s.lastQuery, true
}

// Observe registers fn for window change events.
func (s *Session) Observe(fn Observer) {
	if fn != nil {
		s.observers = append(s.observers, fn)
	}
}

// StartTransaction replaces the current window with the screen of code.
func (s *Session) StartTransaction(code string) error {
	layout, ok := lookupScreen(code)
	if !ok {
		return &NotFoundError{ID: "transaction " + code}
	}
	elements, order, err := s.build(layout)
	if err != nil {
		return fmt.Errorf("start transaction %s: %w", layout.code, err)
	}
	s.transaction = layout.code
	s.title = layout.title
	s.elements = elements
	s.order = order
	s.lastPayment = nil
	s.lastQuery = nil
	s.notify("")
	return nil
}

// Close discards the window elements.
func (s *Session) Close() {
	s.transaction = ""
	s.title = ""
	s.elements = map[string]*Element{}
	s.order = nil
	s.notify("")
}

func (s *Session) build(layout screen) (map[string]*Element, []string, error) {
	elements := make(map[string]*Element, len(layout.fields))
	order := make([]string, 0, len(layout.fields))
	for _, def := range layout.fields {
		if strings.TrimSpace(def.id) == "" {
			return nil, nil, fmt.Errorf("element id is empty")
		}
		if _, exists := elements[def.id]; exists {
			return nil, nil, fmt.Errorf("duplicate element id %s", def.id)
		}
		initial := def.initial
		if def.initialFn != nil {
			initial = def.initialFn(s)
		}
		elements[def.id] = &Element{
			id:      def.id,
			kind:    def.kind,
			label:   def.label,
			text:    initial,
			headers: def.headers,
			action:  def.action,
			session: s,
		}
		order = append(order, def.id)
	}
	return elements, order, nil
}

func (s *Session) notify(elementID string) {
	if len(s.observers) == 0 {
		return
	}
	ev := Event{SessionID: s.id, Transaction: s.transaction, ElementID: elementID}
	for _, fn := range s.observers {
		fn(ev)
	}
}

// text reads an element value, returning "" for unknown ids.
func (s *Session) text(id string) string {
	if elem, ok := s.elements[id]; ok {
		return elem.text
	}
	return ""
}

func (s *Session) setText(id, value string) {
	if elem, ok := s.elements[id]; ok {
		elem.SetText(value)
	}
}

func (s *Session) setStatus(key string, data map[string]any, fallback string) {
	s.setText(StatusBarID, templates.RenderOr(s.messages, key, data, fallback))
}
