package service

import (
	"context"

	"gov-be/internal/domain"
)

// EntitlementRegistry defines the single source of truth for authorization.
// Every privileged operation elsewhere in the engine consults Has before
// mutating state.
type EntitlementRegistry interface {
	// Grant assigns a role to a member; granting a held role is a no-op
	Grant(ctx context.Context, caller string, teamID int, address, role string) error

	// Revoke removes a role from a member; revoking an unheld role is a no-op
	Revoke(ctx context.Context, caller string, teamID int, address, role string) error

	// Has reports whether the member holds the permission. Pure query: it
	// never fails, lookup errors degrade to false.
	Has(ctx context.Context, teamID int, address, permission string) bool

	// ListRoles returns an immutable snapshot of the member's role set
	ListRoles(ctx context.Context, teamID int, address string) ([]string, error)
}

// ActionQueue defines the multisig action-approval state machine
type ActionQueue interface {
	// Propose creates a new action in the proposed state
	Propose(ctx context.Context, proposer string, teamID int, req *domain.ProposeActionRequest) (*domain.ProposeActionResponse, error)

	// Approve records one distinct approval; re-approval is a no-op success
	Approve(ctx context.Context, approver string, actionID int64) (*domain.ApprovalResponse, error)

	// Execute flips the action to executed once the threshold is met, then
	// dispatches the payload to the external execution collaborator
	Execute(ctx context.Context, executor string, actionID int64) (*domain.ExecutionResponse, error)

	// Withdraw cancels a proposed action; only the original proposer may
	Withdraw(ctx context.Context, caller string, actionID int64) error

	// Get retrieves a single action
	Get(ctx context.Context, actionID int64) (*domain.Action, error)

	// List retrieves all actions for a team
	List(ctx context.Context, teamID int) ([]domain.Action, error)
}

// ElectionEngine defines candidate registration, vote casting and tallying
type ElectionEngine interface {
	// Create schedules a new election with a bounded voting window
	Create(ctx context.Context, creator string, teamID int, req *domain.CreateElectionRequest) (*domain.Election, error)

	// RegisterCandidate adds a candidate while the election is scheduled or open
	RegisterCandidate(ctx context.Context, electionID int64, req *domain.RegisterCandidateRequest) (*domain.Candidate, error)

	// CastVote records a ballot within the voting window, replacing any prior
	// ballot by the same voter
	CastVote(ctx context.Context, voter string, electionID int64, req *domain.CastVoteRequest) (*domain.CastVoteResponse, error)

	// Tally computes the deterministic result once the window has closed.
	// Idempotent: later calls return the frozen result.
	Tally(ctx context.Context, electionID int64) (*domain.ElectionResult, error)

	// Get retrieves a single election
	Get(ctx context.Context, electionID int64) (*domain.Election, error)

	// List retrieves all elections for a team
	List(ctx context.Context, teamID int) ([]domain.Election, error)
}

// Executor is the external on-chain/multisig execution collaborator. The
// queue calls it at most once per action, after execution intent is durable.
type Executor interface {
	// Execute dispatches the opaque action payload to the target. The
	// implementation must respect ctx cancellation so a stalled collaborator
	// surfaces as a timeout rather than hanging the queue.
	Execute(ctx context.Context, action *domain.Action) error
}

// Notifier surfaces state transitions to an external collaborator.
// Fire-and-forget: failures are logged and never roll back a transition.
type Notifier interface {
	ApprovalRecorded(action *domain.Action, approver string, count int)
	ActionExecuted(action *domain.Action, sideEffect domain.SideEffectState)
	ElectionPublished(result *domain.ElectionResult)
}

// Services aggregates all service interfaces
type Services struct {
	Entitlements EntitlementRegistry
	Actions      ActionQueue
	Elections    ElectionEngine
}
