package repository

import (
	"context"
	"fmt"

	"gov-be/internal/domain"
	"gov-be/pkg/database"

	"github.com/jackc/pgx/v5"
)

type PostgresMemberRepository struct {
	db *database.PostgresDB
}

func NewMemberRepository(db *database.PostgresDB) *PostgresMemberRepository {
	return &PostgresMemberRepository{db: db}
}

// GetMember gets a team member with their current role set
func (r *PostgresMemberRepository) GetMember(ctx context.Context, teamID int, address string) (*domain.Member, error) {
	var member domain.Member
	query := `
		SELECT address, team_id, display_name, joined_at
		FROM members
		WHERE team_id = $1 AND address = $2
	`

	err := r.db.Pool.QueryRow(ctx, query, teamID, address).Scan(
		&member.Address,
		&member.TeamID,
		&member.DisplayName,
		&member.JoinedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get member: %w", err)
	}

	roles, err := r.GetRoles(ctx, teamID, address)
	if err != nil {
		return nil, err
	}
	member.Roles = roles

	return &member, nil
}

// GetRoles gets the member's role set, sorted for stable output
func (r *PostgresMemberRepository) GetRoles(ctx context.Context, teamID int, address string) ([]string, error) {
	query := `
		SELECT role
		FROM member_roles
		WHERE team_id = $1 AND address = $2
		ORDER BY role ASC
	`

	rows, err := r.db.Pool.Query(ctx, query, teamID, address)
	if err != nil {
		return nil, fmt.Errorf("failed to get member roles: %w", err)
	}
	defer rows.Close()

	roles := make([]string, 0, 4)
	for rows.Next() {
		var role string
		if err := rows.Scan(&role); err != nil {
			return nil, fmt.Errorf("failed to scan role: %w", err)
		}
		roles = append(roles, role)
	}

	return roles, nil
}

// AddRole assigns a role to a member. Granting an already-held role is a no-op.
func (r *PostgresMemberRepository) AddRole(ctx context.Context, teamID int, address, role string) error {
	query := `
		INSERT INTO member_roles (team_id, address, role)
		VALUES ($1, $2, $3)
		ON CONFLICT (team_id, address, role) DO NOTHING
	`

	if _, err := r.db.Pool.Exec(ctx, query, teamID, address, role); err != nil {
		return fmt.Errorf("failed to add role: %w", err)
	}
	return nil
}

// RemoveRole revokes a role from a member. Revoking an unheld role is a no-op.
func (r *PostgresMemberRepository) RemoveRole(ctx context.Context, teamID int, address, role string) error {
	query := `
		DELETE FROM member_roles
		WHERE team_id = $1 AND address = $2 AND role = $3
	`

	if _, err := r.db.Pool.Exec(ctx, query, teamID, address, role); err != nil {
		return fmt.Errorf("failed to remove role: %w", err)
	}
	return nil
}

// GetTeam gets an active team by ID
func (r *PostgresMemberRepository) GetTeam(ctx context.Context, teamID int) (*domain.Team, error) {
	var team domain.Team
	query := `
		SELECT id, name, description, bank_address, approval_threshold,
		       member_count, is_active, created_at, updated_at
		FROM teams
		WHERE id = $1 AND is_active = true
	`

	err := r.db.Pool.QueryRow(ctx, query, teamID).Scan(
		&team.ID,
		&team.Name,
		&team.Description,
		&team.BankAddress,
		&team.ApprovalThreshold,
		&team.MemberCount,
		&team.IsActive,
		&team.CreatedAt,
		&team.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get team: %w", err)
	}

	return &team, nil
}
