package repository

import (
	"context"
	"fmt"

	"gov-be/internal/domain"
	"gov-be/pkg/database"

	"github.com/jackc/pgx/v5"
)

type PostgresActionRepository struct {
	db *database.PostgresDB
}

func NewActionRepository(db *database.PostgresDB) *PostgresActionRepository {
	return &PostgresActionRepository{db: db}
}

// CreateAction persists a newly proposed action
func (r *PostgresActionRepository) CreateAction(ctx context.Context, action *domain.Action) error {
	query := `
		INSERT INTO actions (team_id, proposer, target, description, data, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	err := r.db.Pool.QueryRow(ctx, query,
		action.TeamID,
		action.Proposer,
		action.Target,
		action.Description,
		action.Data,
		domain.ActionProposed,
	).Scan(&action.ID, &action.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create action: %w", err)
	}
	return nil
}

// GetAction gets an action with its approver set
func (r *PostgresActionRepository) GetAction(ctx context.Context, actionID int64) (*domain.Action, error) {
	var action domain.Action
	query := `
		SELECT id, team_id, proposer, target, description, data, status,
		       approval_count, is_executed, side_effect, executed_by, executed_at, created_at
		FROM actions
		WHERE id = $1
	`

	err := r.db.Pool.QueryRow(ctx, query, actionID).Scan(
		&action.ID,
		&action.TeamID,
		&action.Proposer,
		&action.Target,
		&action.Description,
		&action.Data,
		&action.Status,
		&action.ApprovalCount,
		&action.IsExecuted,
		&action.SideEffect,
		&action.ExecutedBy,
		&action.ExecutedAt,
		&action.CreatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get action: %w", err)
	}

	approvers, err := r.listApprovers(ctx, actionID)
	if err != nil {
		return nil, err
	}
	action.Approvers = approvers

	return &action, nil
}

// ListActions gets all actions for a team, newest first
func (r *PostgresActionRepository) ListActions(ctx context.Context, teamID int) ([]domain.Action, error) {
	query := `
		SELECT id, team_id, proposer, target, description, data, status,
		       approval_count, is_executed, side_effect, executed_by, executed_at, created_at
		FROM actions
		WHERE team_id = $1
		ORDER BY created_at DESC, id DESC
	`

	rows, err := r.db.Pool.Query(ctx, query, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to list actions: %w", err)
	}
	defer rows.Close()

	var actions []domain.Action
	for rows.Next() {
		var action domain.Action
		err := rows.Scan(
			&action.ID,
			&action.TeamID,
			&action.Proposer,
			&action.Target,
			&action.Description,
			&action.Data,
			&action.Status,
			&action.ApprovalCount,
			&action.IsExecuted,
			&action.SideEffect,
			&action.ExecutedBy,
			&action.ExecutedAt,
			&action.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan action: %w", err)
		}
		actions = append(actions, action)
	}

	return actions, nil
}

// AddApproval records an approval inside a single transaction. The approver
// set is the source of truth; approval_count is recomputed from it, never
// incremented directly.
func (r *PostgresActionRepository) AddApproval(ctx context.Context, actionID int64, approver string) (int, bool, error) {
	var count int
	var inserted bool

	err := r.db.WithTx(ctx, func(tx pgx.Tx) error {
		// Serialize against concurrent approvals and execution on this action
		var status domain.ActionStatus
		err := tx.QueryRow(ctx,
			`SELECT status FROM actions WHERE id = $1 FOR UPDATE`, actionID).Scan(&status)
		if err == pgx.ErrNoRows {
			return domain.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to lock action: %w", err)
		}

		switch status {
		case domain.ActionExecuted:
			return domain.ErrAlreadyExecuted
		case domain.ActionWithdrawn:
			return domain.ErrAlreadyWithdrawn
		}

		tag, err := tx.Exec(ctx, `
			INSERT INTO action_approvals (action_id, approver)
			VALUES ($1, $2)
			ON CONFLICT (action_id, approver) DO NOTHING
		`, actionID, approver)
		if err != nil {
			return fmt.Errorf("failed to record approval: %w", err)
		}
		inserted = tag.RowsAffected() > 0

		err = tx.QueryRow(ctx,
			`SELECT COUNT(*) FROM action_approvals WHERE action_id = $1`, actionID).Scan(&count)
		if err != nil {
			return fmt.Errorf("failed to count approvals: %w", err)
		}

		_, err = tx.Exec(ctx,
			`UPDATE actions SET approval_count = $2 WHERE id = $1`, actionID, count)
		if err != nil {
			return fmt.Errorf("failed to update approval count: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, false, err
	}

	return count, inserted, nil
}

// MarkExecuted flips the action to executed with a pending side effect. The
// threshold check runs against the locked row so a racing approval or execute
// observes a consistent snapshot.
func (r *PostgresActionRepository) MarkExecuted(ctx context.Context, actionID int64, executor string, threshold int) error {
	return r.db.WithTx(ctx, func(tx pgx.Tx) error {
		var status domain.ActionStatus
		var count int
		err := tx.QueryRow(ctx,
			`SELECT status, approval_count FROM actions WHERE id = $1 FOR UPDATE`,
			actionID).Scan(&status, &count)
		if err == pgx.ErrNoRows {
			return domain.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to lock action: %w", err)
		}

		switch status {
		case domain.ActionExecuted:
			return domain.ErrAlreadyExecuted
		case domain.ActionWithdrawn:
			return domain.ErrAlreadyWithdrawn
		}
		if count < threshold {
			return domain.ErrInsufficientApprovals
		}

		_, err = tx.Exec(ctx, `
			UPDATE actions
			SET status = $2, is_executed = true, side_effect = $3,
			    executed_by = $4, executed_at = now()
			WHERE id = $1
		`, actionID, domain.ActionExecuted, domain.SideEffectPending, executor)
		if err != nil {
			return fmt.Errorf("failed to mark action executed: %w", err)
		}
		return nil
	})
}

// SetSideEffect records the outcome of the external execution call
func (r *PostgresActionRepository) SetSideEffect(ctx context.Context, actionID int64, state domain.SideEffectState) error {
	query := `UPDATE actions SET side_effect = $2 WHERE id = $1 AND is_executed = true`

	tag, err := r.db.Pool.Exec(ctx, query, actionID, state)
	if err != nil {
		return fmt.Errorf("failed to set side effect state: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// MarkWithdrawn flips a proposed action to withdrawn
func (r *PostgresActionRepository) MarkWithdrawn(ctx context.Context, actionID int64) error {
	return r.db.WithTx(ctx, func(tx pgx.Tx) error {
		var status domain.ActionStatus
		err := tx.QueryRow(ctx,
			`SELECT status FROM actions WHERE id = $1 FOR UPDATE`, actionID).Scan(&status)
		if err == pgx.ErrNoRows {
			return domain.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to lock action: %w", err)
		}

		switch status {
		case domain.ActionExecuted:
			return domain.ErrAlreadyExecuted
		case domain.ActionWithdrawn:
			return domain.ErrAlreadyWithdrawn
		}

		_, err = tx.Exec(ctx,
			`UPDATE actions SET status = $2 WHERE id = $1`, actionID, domain.ActionWithdrawn)
		if err != nil {
			return fmt.Errorf("failed to mark action withdrawn: %w", err)
		}
		return nil
	})
}

// listApprovers gets the distinct approver set for an action
func (r *PostgresActionRepository) listApprovers(ctx context.Context, actionID int64) ([]string, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT approver FROM action_approvals WHERE action_id = $1 ORDER BY approved_at ASC`,
		actionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list approvers: %w", err)
	}
	defer rows.Close()

	approvers := make([]string, 0, 4)
	for rows.Next() {
		var approver string
		if err := rows.Scan(&approver); err != nil {
			return nil, fmt.Errorf("failed to scan approver: %w", err)
		}
		approvers = append(approvers, approver)
	}

	return approvers, nil
}
