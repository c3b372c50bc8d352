// Package audit keeps the execution journal of tool calls.
package audit

import (
	"context"
	"log/slog"
	"maps"
	"sync"
)

// Output summarizes a tool result.
type Output struct {
	// Status is success or error.
	Status string `json:"status"`
	// Message is the human readable result.
	Message string `json:"message"`
	// DataSummary is a short description of the returned data.
	DataSummary string `json:"data_summary,omitempty"`
}

// Entry is one execution log record.
type Entry struct {
	// Tool is the tool name.
	Tool string `json:"tool"`
	// Timestamp is the call start time (RFC3339).
	Timestamp string `json:"timestamp"`
	// CorrelationID links the entry with the tool response.
	CorrelationID string `json:"correlation_id,omitempty"`
	// Input holds the call arguments.
	Input map[string]any `json:"input"`
	// Output summarizes the result.
	Output Output `json:"output"`
	// State is the caller supplied workflow state, passed through unchanged.
	State map[string]any `json:"state,omitempty"`
	// ExecutionTime is the elapsed time formatted as "0.00s".
	ExecutionTime string `json:"execution_time"`
}

// Decision is a guard verdict for a tool call.
type Decision struct {
	Tool          string
	CorrelationID string
	Allowed       bool
	Source        string
	Reason        string
}

// Journal is an append-only in-memory execution log mirrored to slog.
type Journal struct {
	logger *slog.Logger

	mu      sync.RWMutex
	entries []Entry
}

// NewJournal returns an empty Journal. logger may be nil.
func NewJournal(logger *slog.Logger) *Journal {
	return &Journal{logger: logger}
}

// Record appends entry.
func (j *Journal) Record(ctx context.Context, entry Entry) {
	if j == nil {
		return
	}
	entry = clone(entry)

	j.mu.Lock()
	j.entries = append(j.entries, entry)
	j.mu.Unlock()

	if j.logger != nil {
		j.logger.InfoContext(ctx, "execution",
			"tool", entry.Tool,
			"correlation_id", entry.CorrelationID,
			"status", entry.Output.Status,
			"elapsed", entry.ExecutionTime,
			"summary", entry.Output.DataSummary,
		)
	}
}

// Decide logs a guard decision.
func (j *Journal) Decide(ctx context.Context, d Decision) {
	if j == nil || j.logger == nil {
		return
	}
	level := slog.LevelInfo
	if !d.Allowed {
		level = slog.LevelWarn
	}
	j.logger.Log(ctx, level, "guard decision",
		"tool", d.Tool,
		"correlation_id", d.CorrelationID,
		"allowed", d.Allowed,
		"source", d.Source,
		"reason", d.Reason,
	)
}

// Entries returns a copy of all entries in recording order.
func (j *Journal) Entries() []Entry {
	if j == nil {
		return nil
	}
	j.mu.RLock()
	defer j.mu.RUnlock()

	out := make([]Entry, len(j.entries))
	for i, entry := range j.entries {
		out[i] = clone(entry)
	}
	return out
}

// Len returns the number of recorded entries.
func (j *Journal) Len() int {
	if j == nil {
		return 0
	}
	j.mu.RLock()
	defer j.mu.RUnlock()
	return len(j.entries)
}

func clone(entry Entry) Entry {
	entry.Input = maps.Clone(entry.Input)
	entry.State = maps.Clone(entry.State)
	return entry
}
