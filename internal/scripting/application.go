package scripting

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/codex-k8s/sapsim-mcp-server/internal/sap"
	"github.com/codex-k8s/sapsim-mcp-server/internal/templates"
)

// Application mirrors the SapGui scripting object.
type Application struct {
	core        *sap.Core
	messages    templates.Renderer
	connections []*Connection
}

// NewApplication returns a scripting application backed by core.
func NewApplication(core *sap.Core, messages templates.Renderer) *Application {
	return &Application{core: core, messages: messages}
}

// GetScriptingEngine returns the application itself, as SapGui does for mocks.
func (a *Application) GetScriptingEngine() *Application {
	return a
}

// OpenConnection opens a simulated connection described by description
// (a system name or connection string). Every connection owns one session.
func (a *Application) OpenConnection(description string) (*Connection, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, &sap.InputValidationError{Field: "connection", Value: description, Detail: "value is required"}
	}
	index := len(a.connections)
	conn := &Connection{
		id:          uuid.NewString(),
		description: description,
		session:     newSession(fmt.Sprintf("/app/con[%d]/ses[0]", index), a.core, a.messages),
	}
	a.connections = append(a.connections, conn)
	return conn, nil
}

// Children returns the connection at index.
func (a *Application) Children(index int) (*Connection, error) {
	if index < 0 || index >= len(a.connections) {
		return nil, &NotFoundError{ID: fmt.Sprintf("/app/con[%d]", index)}
	}
	return a.connections[index], nil
}

// Connection mirrors a GuiConnection with a single session.
type Connection struct {
	id          string
	description string
	session     *Session
}

// ID returns the connection identifier.
func (c *Connection) ID() string { return c.id }

// Description returns the description passed to OpenConnection.
func (c *Connection) Description() string { return c.description }

// Children returns the session at index; only index 0 exists.
func (c *Connection) Children(index int) (*Session, error) {
	if index != 0 || c.session == nil {
		return nil, &NotFoundError{ID: fmt.Sprintf("ses[%d]", index)}
	}
	return c.session, nil
}

// Close discards the session window.
func (c *Connection) Close() {
	if c.session != nil {
		c.session.Close()
	}
}
