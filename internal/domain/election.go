package domain

import "time"

// ElectionStatus is derived from the voting window and published flag.
type ElectionStatus string

const (
	ElectionScheduled ElectionStatus = "scheduled"
	ElectionOpen      ElectionStatus = "open"
	ElectionClosed    ElectionStatus = "closed"
	ElectionPublished ElectionStatus = "published"
)

// Election represents a bounded voting window with a fixed number of seats.
// The window is half-open: votes are accepted in [StartDate, EndDate).
type Election struct {
	ID               int64       `json:"id"`
	TeamID           int         `json:"team_id"`
	Title            string      `json:"title"`
	Description      string      `json:"description"`
	CreatedBy        string      `json:"created_by"`
	StartDate        time.Time   `json:"start_date"`
	EndDate          time.Time   `json:"end_date"`
	SeatCount        int         `json:"seat_count"`
	ResultsPublished bool        `json:"results_published"`
	VotesCast        int         `json:"votes_cast"`
	Candidates       []Candidate `json:"candidates"`
	CreatedAt        time.Time   `json:"created_at"`
}

// StatusAt returns the election state as of the given instant.
func (e *Election) StatusAt(now time.Time) ElectionStatus {
	if e.ResultsPublished {
		return ElectionPublished
	}
	switch {
	case now.Before(e.StartDate):
		return ElectionScheduled
	case now.Before(e.EndDate):
		return ElectionOpen
	default:
		return ElectionClosed
	}
}

// HasCandidate reports whether the candidate is registered in this election.
func (e *Election) HasCandidate(candidateID string) bool {
	for _, c := range e.Candidates {
		if c.ID == candidateID {
			return true
		}
	}
	return false
}

// Candidate represents a registered candidate within an election
type Candidate struct {
	ID           string    `json:"id"`
	ElectionID   int64     `json:"election_id"`
	Name         string    `json:"name"`
	RegisteredAt time.Time `json:"registered_at"`
}

// Ballot relates one voter to their candidate choices within one election.
// At most one ballot exists per (election, voter); resubmission replaces it.
type Ballot struct {
	ElectionID int64     `json:"election_id"`
	Voter      string    `json:"voter"`
	Choices    []string  `json:"choices"`
	CastAt     time.Time `json:"cast_at"`
}

// CandidateResult is one row of a tallied election
type CandidateResult struct {
	CandidateID string `json:"candidate_id"`
	Name        string `json:"name"`
	Votes       int    `json:"votes"`
	Rank        int    `json:"rank"`
	Seated      bool   `json:"seated"`
}

// ElectionResult is the frozen outcome of an election. Once persisted it is
// returned verbatim by every later tally call.
type ElectionResult struct {
	ElectionID int64             `json:"election_id"`
	SeatCount  int               `json:"seat_count"`
	TotalVotes int               `json:"total_votes"`
	Rankings   []CandidateResult `json:"rankings"`
	TalliedAt  time.Time         `json:"tallied_at"`
}

// CreateElectionRequest represents an election creation submission
type CreateElectionRequest struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
	SeatCount   int       `json:"seat_count"`
}

// RegisterCandidateRequest represents a candidate registration submission
type RegisterCandidateRequest struct {
	CandidateID string `json:"candidate_id"`
	Name        string `json:"name"`
}

// CastVoteRequest represents a ballot submission
type CastVoteRequest struct {
	Choices []string `json:"choices"`
}

// CastVoteResponse represents the response after a ballot is recorded
type CastVoteResponse struct {
	ElectionID int64     `json:"election_id"`
	Choices    []string  `json:"choices"`
	Replaced   bool      `json:"replaced"`
	Timestamp  time.Time `json:"timestamp"`
}
