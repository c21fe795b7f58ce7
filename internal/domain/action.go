package domain

import (
	"encoding/json"
	"time"
)

// ActionStatus is the lifecycle state of a treasury action.
type ActionStatus string

const (
	ActionProposed  ActionStatus = "proposed"
	ActionExecuted  ActionStatus = "executed"
	ActionWithdrawn ActionStatus = "withdrawn"
)

// SideEffectState tracks the outcome of the external execution call. The
// action itself stays executed regardless; a failed side effect is flagged
// for manual review, never rolled back.
type SideEffectState string

const (
	SideEffectNone      SideEffectState = ""
	SideEffectPending   SideEffectState = "pending"
	SideEffectSucceeded SideEffectState = "succeeded"
	SideEffectFailed    SideEffectState = "failed"
	SideEffectTimedOut  SideEffectState = "timed_out"
)

// Action represents a proposed treasury operation awaiting approval.
// Approvers is the source of truth for approvals; ApprovalCount is always
// its cardinality, never an independently incremented counter.
type Action struct {
	ID            int64           `json:"id"`
	TeamID        int             `json:"team_id"`
	Proposer      string          `json:"proposer"`
	Target        string          `json:"target"`
	Description   string          `json:"description"`
	Data          json.RawMessage `json:"data,omitempty"`
	Status        ActionStatus    `json:"status"`
	ApprovalCount int             `json:"approval_count"`
	IsExecuted    bool            `json:"is_executed"`
	Approvers     []string        `json:"approvers"`
	SideEffect    SideEffectState `json:"side_effect,omitempty"`
	ExecutedBy    string          `json:"executed_by,omitempty"`
	ExecutedAt    *time.Time      `json:"executed_at,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// HasApproved reports whether the given member already approved this action.
func (a *Action) HasApproved(approver string) bool {
	for _, addr := range a.Approvers {
		if addr == approver {
			return true
		}
	}
	return false
}

// ProposeActionRequest represents an action proposal submission
type ProposeActionRequest struct {
	Target      string          `json:"target"`
	Description string          `json:"description"`
	Data        json.RawMessage `json:"data,omitempty"`
}

// ProposeActionResponse represents the response after proposing an action
type ProposeActionResponse struct {
	ActionID  int64     `json:"action_id"`
	TeamID    int       `json:"team_id"`
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// ApprovalResponse represents the response after an approval is recorded
type ApprovalResponse struct {
	ActionID      int64 `json:"action_id"`
	ApprovalCount int   `json:"approval_count"`
	Threshold     int   `json:"threshold"`
	Duplicate     bool  `json:"duplicate"`
}

// ExecutionResponse represents the response after an action executes
type ExecutionResponse struct {
	ActionID   int64           `json:"action_id"`
	SideEffect SideEffectState `json:"side_effect"`
	ExecutedAt time.Time       `json:"executed_at"`
}
