package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is not set")
	}

	if len(os.Args) < 2 {
		fmt.Println("Usage: go run main.go [drop|up|seed]")
		os.Exit(1)
	}

	command := os.Args[1]

	ctx := context.Background()
	conn, err := pgx.Connect(ctx, dbURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer conn.Close(ctx)

	switch command {
	case "drop":
		if err := dropTables(ctx, conn); err != nil {
			log.Fatalf("Failed to drop tables: %v", err)
		}
		fmt.Println("✅ All tables dropped successfully")

	case "up":
		if err := createTables(ctx, conn); err != nil {
			log.Fatalf("Failed to create tables: %v", err)
		}
		fmt.Println("✅ All tables created successfully")

	case "seed":
		if err := seedData(ctx, conn); err != nil {
			log.Fatalf("Failed to seed data: %v", err)
		}
		fmt.Println("✅ Data seeded successfully")

	default:
		fmt.Printf("Unknown command: %s\n", command)
		fmt.Println("Usage: go run main.go [drop|up|seed]")
		os.Exit(1)
	}
}

func dropTables(ctx context.Context, conn *pgx.Conn) error {
	queries := []string{
		`DROP TABLE IF EXISTS election_results CASCADE`,
		`DROP TABLE IF EXISTS ballots CASCADE`,
		`DROP TABLE IF EXISTS candidates CASCADE`,
		`DROP TABLE IF EXISTS elections CASCADE`,
		`DROP TABLE IF EXISTS action_approvals CASCADE`,
		`DROP TABLE IF EXISTS actions CASCADE`,
		`DROP TABLE IF EXISTS member_roles CASCADE`,
		`DROP TABLE IF EXISTS members CASCADE`,
		`DROP TABLE IF EXISTS teams CASCADE`,
	}

	for _, query := range queries {
		if _, err := conn.Exec(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %w", err)
		}
		fmt.Printf("  Dropped: %s\n", query)
	}

	return nil
}

func createTables(ctx context.Context, conn *pgx.Conn) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS teams (
			id SERIAL PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			description TEXT,
			bank_address VARCHAR(255) NOT NULL DEFAULT '',
			approval_threshold INTEGER NOT NULL DEFAULT 0,
			member_count INTEGER DEFAULT 0,
			is_active BOOLEAN DEFAULT true,
			created_at TIMESTAMPTZ DEFAULT NOW(),
			updated_at TIMESTAMPTZ DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS members (
			team_id INTEGER REFERENCES teams(id) ON DELETE CASCADE,
			address VARCHAR(255) NOT NULL,
			display_name VARCHAR(255) NOT NULL DEFAULT '',
			joined_at TIMESTAMPTZ DEFAULT NOW(),
			PRIMARY KEY (team_id, address)
		)`,

		`CREATE TABLE IF NOT EXISTS member_roles (
			team_id INTEGER NOT NULL,
			address VARCHAR(255) NOT NULL,
			role VARCHAR(50) NOT NULL,
			granted_at TIMESTAMPTZ DEFAULT NOW(),
			PRIMARY KEY (team_id, address, role),
			FOREIGN KEY (team_id, address) REFERENCES members(team_id, address) ON DELETE CASCADE
		)`,

		`CREATE TABLE IF NOT EXISTS actions (
			id BIGSERIAL PRIMARY KEY,
			team_id INTEGER REFERENCES teams(id) ON DELETE CASCADE,
			proposer VARCHAR(255) NOT NULL,
			target VARCHAR(255) NOT NULL,
			description TEXT,
			data JSONB,
			status VARCHAR(20) NOT NULL DEFAULT 'proposed',
			approval_count INTEGER NOT NULL DEFAULT 0,
			is_executed BOOLEAN NOT NULL DEFAULT false,
			side_effect VARCHAR(20) NOT NULL DEFAULT '',
			executed_by VARCHAR(255) NOT NULL DEFAULT '',
			executed_at TIMESTAMPTZ,
			created_at TIMESTAMPTZ DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS action_approvals (
			action_id BIGINT REFERENCES actions(id) ON DELETE CASCADE,
			approver VARCHAR(255) NOT NULL,
			approved_at TIMESTAMPTZ DEFAULT NOW(),
			PRIMARY KEY (action_id, approver)
		)`,

		`CREATE TABLE IF NOT EXISTS elections (
			id BIGSERIAL PRIMARY KEY,
			team_id INTEGER REFERENCES teams(id) ON DELETE CASCADE,
			title VARCHAR(255) NOT NULL,
			description TEXT,
			created_by VARCHAR(255) NOT NULL,
			start_date TIMESTAMPTZ NOT NULL,
			end_date TIMESTAMPTZ NOT NULL,
			seat_count INTEGER NOT NULL DEFAULT 1,
			results_published BOOLEAN NOT NULL DEFAULT false,
			created_at TIMESTAMPTZ DEFAULT NOW(),
			CHECK (start_date < end_date)
		)`,

		`CREATE TABLE IF NOT EXISTS candidates (
			election_id BIGINT REFERENCES elections(id) ON DELETE CASCADE,
			candidate_id VARCHAR(255) NOT NULL,
			name VARCHAR(255) NOT NULL,
			registered_at TIMESTAMPTZ DEFAULT NOW(),
			PRIMARY KEY (election_id, candidate_id)
		)`,

		`CREATE TABLE IF NOT EXISTS ballots (
			election_id BIGINT REFERENCES elections(id) ON DELETE CASCADE,
			voter VARCHAR(255) NOT NULL,
			choices TEXT[] NOT NULL,
			cast_at TIMESTAMPTZ DEFAULT NOW(),
			PRIMARY KEY (election_id, voter)
		)`,

		`CREATE TABLE IF NOT EXISTS election_results (
			election_id BIGINT PRIMARY KEY REFERENCES elections(id) ON DELETE CASCADE,
			seat_count INTEGER NOT NULL,
			total_votes INTEGER NOT NULL,
			rankings JSONB NOT NULL,
			tallied_at TIMESTAMPTZ NOT NULL
		)`,

		// Indexes
		`CREATE INDEX IF NOT EXISTS idx_actions_team_id ON actions(team_id, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_actions_status ON actions(status)`,
		`CREATE INDEX IF NOT EXISTS idx_elections_team_id ON elections(team_id, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_candidates_order ON candidates(election_id, registered_at ASC, candidate_id ASC)`,
		`CREATE INDEX IF NOT EXISTS idx_ballots_cast_at ON ballots(election_id, cast_at ASC)`,
		`CREATE INDEX IF NOT EXISTS idx_teams_active ON teams(is_active)`,
	}

	for _, query := range queries {
		if _, err := conn.Exec(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %w\nQuery: %s", err, query)
		}
		fmt.Printf("  Created: %s\n", getTableName(query))
	}

	return nil
}

func seedData(ctx context.Context, conn *pgx.Conn) error {
	queries := []string{
		`INSERT INTO teams (name, description, bank_address, approval_threshold, member_count) VALUES
			('Core Treasury', 'Main operating treasury', '0xbank0000000000000000000000000000000000', 2, 5)
		ON CONFLICT DO NOTHING`,

		`INSERT INTO members (team_id, address, display_name) VALUES
			(1, '0xadmin000000000000000000000000000000000', 'Admin'),
			(1, '0xtreasurer0000000000000000000000000000', 'Treasurer'),
			(1, '0xapprover100000000000000000000000000000', 'Approver One'),
			(1, '0xapprover200000000000000000000000000000', 'Approver Two'),
			(1, '0xvoter0000000000000000000000000000000000', 'Voter')
		ON CONFLICT DO NOTHING`,

		`INSERT INTO member_roles (team_id, address, role) VALUES
			(1, '0xadmin000000000000000000000000000000000', 'admin'),
			(1, '0xtreasurer0000000000000000000000000000', 'treasurer'),
			(1, '0xapprover100000000000000000000000000000', 'approver'),
			(1, '0xapprover200000000000000000000000000000', 'approver'),
			(1, '0xvoter0000000000000000000000000000000000', 'voter')
		ON CONFLICT DO NOTHING`,
	}

	for _, query := range queries {
		if _, err := conn.Exec(ctx, query); err != nil {
			return fmt.Errorf("failed to seed data: %w", err)
		}
	}

	fmt.Println("  Seeded team, members and roles")
	return nil
}

// getTableName extracts a short label from a DDL statement for logging
func getTableName(query string) string {
	fields := strings.Fields(query)
	for i, f := range fields {
		if strings.EqualFold(f, "EXISTS") && i+1 < len(fields) {
			return fields[i+1]
		}
	}
	if len(fields) > 2 {
		return fields[0] + " " + fields[1] + " " + fields[2]
	}
	return query
}
