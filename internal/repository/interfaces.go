package repository

import (
	"context"

	"gov-be/internal/domain"
)

// MemberRepository defines the interface for member and role data operations
type MemberRepository interface {
	// GetMember retrieves a member of a team by address
	GetMember(ctx context.Context, teamID int, address string) (*domain.Member, error)

	// GetRoles retrieves the member's current role set
	GetRoles(ctx context.Context, teamID int, address string) ([]string, error)

	// AddRole assigns a role to a member; assigning a held role is a no-op
	AddRole(ctx context.Context, teamID int, address, role string) error

	// RemoveRole revokes a role from a member; revoking an unheld role is a no-op
	RemoveRole(ctx context.Context, teamID int, address, role string) error

	// GetTeam retrieves team settings, including the approval threshold
	GetTeam(ctx context.Context, teamID int) (*domain.Team, error)
}

// ActionRepository defines the interface for treasury action data operations.
// All mutations on a single action must be atomic read-modify-write.
type ActionRepository interface {
	// CreateAction persists a newly proposed action and assigns its ID
	CreateAction(ctx context.Context, action *domain.Action) error

	// GetAction retrieves an action with its approver set
	GetAction(ctx context.Context, actionID int64) (*domain.Action, error)

	// ListActions retrieves all actions for a team, newest first
	ListActions(ctx context.Context, teamID int) ([]domain.Action, error)

	// AddApproval records an approval. Returns the resulting distinct-approver
	// count and whether the approval was newly inserted (false = duplicate).
	AddApproval(ctx context.Context, actionID int64, approver string) (int, bool, error)

	// MarkExecuted atomically flips the action to executed with a pending
	// side effect, guarding against concurrent execution and re-checking the
	// approval count against the threshold inside the same transaction.
	MarkExecuted(ctx context.Context, actionID int64, executor string, threshold int) error

	// SetSideEffect records the outcome of the external execution call
	SetSideEffect(ctx context.Context, actionID int64, state domain.SideEffectState) error

	// MarkWithdrawn atomically flips a proposed action to withdrawn
	MarkWithdrawn(ctx context.Context, actionID int64) error
}

// ElectionRepository defines the interface for election data operations
type ElectionRepository interface {
	// CreateElection persists a new election and assigns its ID
	CreateElection(ctx context.Context, election *domain.Election) error

	// GetElection retrieves an election with its registered candidates
	GetElection(ctx context.Context, electionID int64) (*domain.Election, error)

	// ListElections retrieves all elections for a team, newest first
	ListElections(ctx context.Context, teamID int) ([]domain.Election, error)

	// AddCandidate registers a candidate; registering twice is a no-op
	AddCandidate(ctx context.Context, candidate *domain.Candidate) error

	// UpsertBallot records a ballot, replacing any prior ballot by the same
	// voter. Returns true when a prior ballot was replaced.
	UpsertBallot(ctx context.Context, ballot *domain.Ballot) (bool, error)

	// ListBallots retrieves all ballots cast in an election
	ListBallots(ctx context.Context, electionID int64) ([]domain.Ballot, error)

	// SaveResult persists the frozen tally and marks the election published
	SaveResult(ctx context.Context, result *domain.ElectionResult) error

	// GetResult retrieves the frozen tally, or nil if not yet published
	GetResult(ctx context.Context, electionID int64) (*domain.ElectionResult, error)
}

// Repositories aggregates all repository interfaces
type Repositories struct {
	Member   MemberRepository
	Action   ActionRepository
	Election ElectionRepository
}
