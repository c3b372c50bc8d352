package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/codex-k8s/sapsim-mcp-server/internal/audit"
	"github.com/codex-k8s/sapsim-mcp-server/internal/protocol"
	"github.com/codex-k8s/sapsim-mcp-server/internal/scripting"
	"github.com/codex-k8s/sapsim-mcp-server/internal/templates"
)

// Script step actions.
const (
	ActionStartTransaction = "start_transaction"
	ActionSetText          = "set_text"
	ActionGetText          = "get_text"
	ActionPress            = "press"
	ActionClose            = "close"
)

// ScriptStep is one Scripting API call.
type ScriptStep struct {
	Action string `json:"action" jsonschema:"start_transaction, set_text, get_text, press or close"`
	Target string `json:"target,omitempty" jsonschema:"transaction code for start_transaction, element id otherwise (e.g. -CUSTOMER-)"`
	Value  string `json:"value,omitempty" jsonschema:"text for set_text"`
}

// ScriptInput are the arguments of the sap_script tool.
type ScriptInput struct {
	Steps         []ScriptStep `json:"steps" jsonschema:"calls executed in order against the shared session"`
	CorrelationID string       `json:"correlation_id,omitempty" jsonschema:"correlation id echoed in the response"`
}

// Arguments returns the call arguments keyed by JSON name.
func (in ScriptInput) Arguments() map[string]any {
	steps := make([]any, 0, len(in.Steps))
	for _, step := range in.Steps {
		steps = append(steps, map[string]any{"action": step.Action, "target": step.Target, "value": step.Value})
	}
	return map[string]any{"steps": steps}
}

// StepResult reports one executed step.
type StepResult struct {
	Action string `json:"action"`
	Target string `json:"target,omitempty"`
	Value  string `json:"value,omitempty"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// ScriptResponse is returned by the sap_script tool.
type ScriptResponse struct {
	Status        string       `json:"status"`
	Message       string       `json:"message"`
	Error         string       `json:"error,omitempty"`
	SessionID     string       `json:"session_id"`
	Transaction   string       `json:"transaction,omitempty"`
	StatusBar     string       `json:"status_bar,omitempty"`
	Steps         []StepResult `json:"steps"`
	Rows          [][]string   `json:"rows,omitempty"`
	ToolType      string       `json:"tool_type"`
	ExecutionTime string       `json:"execution_time"`
	CorrelationID string       `json:"correlation_id"`
}

// Script runs steps against the shared scripting session. The first failing
// step stops the script.
func (t *Toolkit) Script(ctx context.Context, in ScriptInput) ScriptResponse {
	start := time.Now()
	resp := ScriptResponse{
		Status:        protocol.StatusSuccess,
		Steps:         make([]StepResult, 0, len(in.Steps)),
		ToolType:      protocol.ToolTypeScript,
		CorrelationID: ensureCorrelationID(in.CorrelationID),
	}

	t.scriptMu.Lock()
	session, err := t.scriptSession()
	if err == nil {
		resp.SessionID = session.ID()
		for _, step := range in.Steps {
			result, stepErr := t.runStep(ctx, session, step)
			resp.Steps = append(resp.Steps, result)
			if stepErr != nil {
				err = stepErr
				break
			}
		}
		resp.Transaction = session.Transaction()
		resp.StatusBar = session.StatusMessage()
		if table, findErr := session.FindByID(scripting.FBL5NTable); findErr == nil {
			resp.Rows = table.Rows()
		}
	}
	t.scriptMu.Unlock()

	if err != nil {
		resp.Status = protocol.StatusError
		resp.Error = err.Error()
		resp.Message = t.scriptError(err)
	} else {
		resp.Message = fmt.Sprintf("Executed %d steps", len(resp.Steps))
	}

	resp.ExecutionTime = t.record(ctx, audit.Entry{
		Tool:          NameScript,
		CorrelationID: resp.CorrelationID,
		Input:         in.Arguments(),
		Output:        audit.Output{Status: resp.Status, Message: resp.Message, DataSummary: fmt.Sprintf("steps=%d", len(resp.Steps))},
	}, start)
	return resp
}

func (t *Toolkit) scriptSession() (*scripting.Session, error) {
	if t.session != nil {
		return t.session, nil
	}
	conn, err := scripting.NewApplication(t.core, t.messages).GetScriptingEngine().OpenConnection("sapsim")
	if err != nil {
		return nil, fmt.Errorf("open connection: %w", err)
	}
	session, err := conn.Children(0)
	if err != nil {
		return nil, fmt.Errorf("open session: %w", err)
	}
	t.session = session
	return session, nil
}

func (t *Toolkit) runStep(ctx context.Context, session *scripting.Session, step ScriptStep) (StepResult, error) {
	result := StepResult{Action: step.Action, Target: step.Target, Status: protocol.StatusSuccess}
	err := t.applyStep(ctx, session, step, &result)
	if err != nil {
		result.Status = protocol.StatusError
		result.Error = err.Error()
	}
	return result, err
}

func (t *Toolkit) applyStep(ctx context.Context, session *scripting.Session, step ScriptStep, result *StepResult) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	action := strings.ToLower(strings.TrimSpace(step.Action))
	switch action {
	case ActionStartTransaction:
		return session.StartTransaction(step.Target)
	case ActionClose:
		session.Close()
		return nil
	case ActionSetText, ActionGetText, ActionPress:
	default:
		return fmt.Errorf("unknown script action %q", step.Action)
	}

	elem, err := session.FindByID(step.Target)
	if err != nil {
		return err
	}
	switch action {
	case ActionSetText:
		elem.SetText(step.Value)
		result.Value = step.Value
	case ActionGetText:
		result.Value = elem.Text()
	case ActionPress:
		if err := elem.PressContext(ctx); err != nil {
			return err
		}
		result.Value = session.StatusMessage()
	}
	return nil
}

func (t *Toolkit) scriptError(err error) string {
	var notFound *scripting.NotFoundError
	if errors.As(err, &notFound) {
		return templates.RenderOr(t.messages, "script.not_found", map[string]any{"ID": notFound.ID}, "Element "+notFound.ID+" not found")
	}
	return err.Error()
}
