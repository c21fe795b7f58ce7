package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"gov-be/internal/domain"
	"gov-be/pkg/database"

	"github.com/jackc/pgx/v5"
)

type PostgresElectionRepository struct {
	db *database.PostgresDB
}

func NewElectionRepository(db *database.PostgresDB) *PostgresElectionRepository {
	return &PostgresElectionRepository{db: db}
}

// CreateElection persists a new election
func (r *PostgresElectionRepository) CreateElection(ctx context.Context, election *domain.Election) error {
	query := `
		INSERT INTO elections (team_id, title, description, created_by, start_date, end_date, seat_count)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`

	err := r.db.Pool.QueryRow(ctx, query,
		election.TeamID,
		election.Title,
		election.Description,
		election.CreatedBy,
		election.StartDate,
		election.EndDate,
		election.SeatCount,
	).Scan(&election.ID, &election.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create election: %w", err)
	}
	return nil
}

// GetElection gets an election with its candidates and ballot counter
func (r *PostgresElectionRepository) GetElection(ctx context.Context, electionID int64) (*domain.Election, error) {
	var election domain.Election
	query := `
		SELECT e.id, e.team_id, e.title, e.description, e.created_by,
		       e.start_date, e.end_date, e.seat_count, e.results_published, e.created_at,
		       (SELECT COUNT(*) FROM ballots b WHERE b.election_id = e.id) AS votes_cast
		FROM elections e
		WHERE e.id = $1
	`

	err := r.db.Pool.QueryRow(ctx, query, electionID).Scan(
		&election.ID,
		&election.TeamID,
		&election.Title,
		&election.Description,
		&election.CreatedBy,
		&election.StartDate,
		&election.EndDate,
		&election.SeatCount,
		&election.ResultsPublished,
		&election.CreatedAt,
		&election.VotesCast,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get election: %w", err)
	}

	candidates, err := r.listCandidates(ctx, electionID)
	if err != nil {
		return nil, err
	}
	election.Candidates = candidates

	return &election, nil
}

// ListElections gets all elections for a team, newest first
func (r *PostgresElectionRepository) ListElections(ctx context.Context, teamID int) ([]domain.Election, error) {
	query := `
		SELECT e.id, e.team_id, e.title, e.description, e.created_by,
		       e.start_date, e.end_date, e.seat_count, e.results_published, e.created_at,
		       (SELECT COUNT(*) FROM ballots b WHERE b.election_id = e.id) AS votes_cast
		FROM elections e
		WHERE e.team_id = $1
		ORDER BY e.created_at DESC, e.id DESC
	`

	rows, err := r.db.Pool.Query(ctx, query, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to list elections: %w", err)
	}
	defer rows.Close()

	var elections []domain.Election
	for rows.Next() {
		var election domain.Election
		err := rows.Scan(
			&election.ID,
			&election.TeamID,
			&election.Title,
			&election.Description,
			&election.CreatedBy,
			&election.StartDate,
			&election.EndDate,
			&election.SeatCount,
			&election.ResultsPublished,
			&election.CreatedAt,
			&election.VotesCast,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan election: %w", err)
		}
		elections = append(elections, election)
	}

	return elections, nil
}

// AddCandidate registers a candidate. Re-registering keeps the original
// registration timestamp, which the tally tie-break depends on.
func (r *PostgresElectionRepository) AddCandidate(ctx context.Context, candidate *domain.Candidate) error {
	query := `
		INSERT INTO candidates (election_id, candidate_id, name)
		VALUES ($1, $2, $3)
		ON CONFLICT (election_id, candidate_id) DO NOTHING
		RETURNING registered_at
	`

	err := r.db.Pool.QueryRow(ctx, query,
		candidate.ElectionID,
		candidate.ID,
		candidate.Name,
	).Scan(&candidate.RegisteredAt)

	if err == pgx.ErrNoRows {
		// Already registered; fetch the original timestamp
		err = r.db.Pool.QueryRow(ctx,
			`SELECT registered_at FROM candidates WHERE election_id = $1 AND candidate_id = $2`,
			candidate.ElectionID, candidate.ID).Scan(&candidate.RegisteredAt)
	}
	if err != nil {
		return fmt.Errorf("failed to register candidate: %w", err)
	}
	return nil
}

// UpsertBallot records a ballot with last-write-wins per voter
func (r *PostgresElectionRepository) UpsertBallot(ctx context.Context, ballot *domain.Ballot) (bool, error) {
	query := `
		INSERT INTO ballots (election_id, voter, choices)
		VALUES ($1, $2, $3)
		ON CONFLICT (election_id, voter)
		DO UPDATE SET choices = EXCLUDED.choices, cast_at = now()
		RETURNING (xmax <> 0), cast_at
	`

	var replaced bool
	err := r.db.Pool.QueryRow(ctx, query,
		ballot.ElectionID,
		ballot.Voter,
		ballot.Choices,
	).Scan(&replaced, &ballot.CastAt)

	if err != nil {
		return false, fmt.Errorf("failed to record ballot: %w", err)
	}
	return replaced, nil
}

// ListBallots gets all ballots cast in an election
func (r *PostgresElectionRepository) ListBallots(ctx context.Context, electionID int64) ([]domain.Ballot, error) {
	query := `
		SELECT election_id, voter, choices, cast_at
		FROM ballots
		WHERE election_id = $1
		ORDER BY cast_at ASC
	`

	rows, err := r.db.Pool.Query(ctx, query, electionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list ballots: %w", err)
	}
	defer rows.Close()

	var ballots []domain.Ballot
	for rows.Next() {
		var ballot domain.Ballot
		err := rows.Scan(
			&ballot.ElectionID,
			&ballot.Voter,
			&ballot.Choices,
			&ballot.CastAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ballot: %w", err)
		}
		ballots = append(ballots, ballot)
	}

	return ballots, nil
}

// SaveResult persists the frozen tally and publishes the election. The first
// tally wins; a concurrent second tally leaves the stored result untouched.
func (r *PostgresElectionRepository) SaveResult(ctx context.Context, result *domain.ElectionResult) error {
	rankings, err := json.Marshal(result.Rankings)
	if err != nil {
		return fmt.Errorf("failed to encode rankings: %w", err)
	}

	return r.db.WithTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO election_results (election_id, seat_count, total_votes, rankings, tallied_at)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (election_id) DO NOTHING
		`, result.ElectionID, result.SeatCount, result.TotalVotes, rankings, result.TalliedAt)
		if err != nil {
			return fmt.Errorf("failed to save election result: %w", err)
		}

		_, err = tx.Exec(ctx,
			`UPDATE elections SET results_published = true WHERE id = $1`, result.ElectionID)
		if err != nil {
			return fmt.Errorf("failed to publish election: %w", err)
		}
		return nil
	})
}

// GetResult gets the frozen tally, or nil if the election is unpublished
func (r *PostgresElectionRepository) GetResult(ctx context.Context, electionID int64) (*domain.ElectionResult, error) {
	var result domain.ElectionResult
	var rankings []byte
	query := `
		SELECT election_id, seat_count, total_votes, rankings, tallied_at
		FROM election_results
		WHERE election_id = $1
	`

	err := r.db.Pool.QueryRow(ctx, query, electionID).Scan(
		&result.ElectionID,
		&result.SeatCount,
		&result.TotalVotes,
		&rankings,
		&result.TalliedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get election result: %w", err)
	}

	if err := json.Unmarshal(rankings, &result.Rankings); err != nil {
		return nil, fmt.Errorf("failed to decode rankings: %w", err)
	}

	return &result, nil
}

// listCandidates gets candidates in registration order
func (r *PostgresElectionRepository) listCandidates(ctx context.Context, electionID int64) ([]domain.Candidate, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT candidate_id, election_id, name, registered_at
		FROM candidates
		WHERE election_id = $1
		ORDER BY registered_at ASC, candidate_id ASC
	`, electionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list candidates: %w", err)
	}
	defer rows.Close()

	var candidates []domain.Candidate
	for rows.Next() {
		var candidate domain.Candidate
		err := rows.Scan(
			&candidate.ID,
			&candidate.ElectionID,
			&candidate.Name,
			&candidate.RegisteredAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan candidate: %w", err)
		}
		candidates = append(candidates, candidate)
	}

	return candidates, nil
}
