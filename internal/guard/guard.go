// Package guard decides whether a tool call may run.
package guard

import "context"

// Request describes a tool call awaiting a decision.
type Request struct {
	// Tool is the tool name.
	Tool string
	// Arguments are the call arguments keyed by JSON name.
	Arguments map[string]any
	// CorrelationID links the decision with the call.
	CorrelationID string
}

// Decision is the verdict of an Approver.
type Decision struct {
	// Allowed reports whether the call may proceed.
	Allowed bool
	// Reason explains a denial.
	Reason string
	// Source names the approver that decided.
	Source string
}

// Approver checks a tool call.
type Approver interface {
	// Name identifies the approver in logs.
	Name() string
	// Approve returns the decision for req.
	Approve(ctx context.Context, req Request) (Decision, error)
}

// Chain asks approvers in order and stops at the first denial.
type Chain []Approver

// Name implements Approver.
func (c Chain) Name() string { return "chain" }

// Approve implements Approver semantics for the whole chain.
func (c Chain) Approve(ctx context.Context, req Request) (Decision, error) {
	for _, item := range c {
		if err := ctx.Err(); err != nil {
			return Decision{Reason: err.Error(), Source: item.Name()}, err
		}
		decision, err := item.Approve(ctx, req)
		if err != nil {
			return Decision{Reason: err.Error(), Source: item.Name()}, err
		}
		if !decision.Allowed {
			if decision.Source == "" {
				decision.Source = item.Name()
			}
			return decision, nil
		}
	}
	return Decision{Allowed: true, Reason: "approved"}, nil
}
