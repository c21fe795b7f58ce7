package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"gov-be/internal/domain"
	"gov-be/internal/repository"
	"gov-be/pkg/redis"

	"go.uber.org/zap"
)

// ElectionService manages candidate registration, vote casting and result
// tallying over a bounded voting window.
type ElectionService struct {
	electionRepo repository.ElectionRepository
	entitlements EntitlementRegistry
	notifier     Notifier
	redis        *redis.Client
	logger       *zap.Logger
	locks        *keyedMutex
	now          func() time.Time
}

func NewElectionService(
	electionRepo repository.ElectionRepository,
	entitlements EntitlementRegistry,
	notifier Notifier,
	redisClient *redis.Client,
	logger *zap.Logger,
) *ElectionService {
	return &ElectionService{
		electionRepo: electionRepo,
		entitlements: entitlements,
		notifier:     notifier,
		redis:        redisClient,
		logger:       logger,
		locks:        newKeyedMutex(),
		now:          time.Now,
	}
}

// Create schedules a new election. The window is half-open [start, end);
// a window whose start is not strictly before its end is rejected.
func (s *ElectionService) Create(ctx context.Context, creator string, teamID int, req *domain.CreateElectionRequest) (*domain.Election, error) {
	if !s.entitlements.Has(ctx, teamID, creator, domain.PermRunElection) {
		return nil, fmt.Errorf("create election: %w", domain.ErrUnauthorized)
	}
	if !req.StartDate.Before(req.EndDate) {
		return nil, fmt.Errorf("start %s is not before end %s: %w",
			req.StartDate.Format(time.RFC3339), req.EndDate.Format(time.RFC3339), domain.ErrInvalidWindow)
	}
	if req.SeatCount < 1 {
		return nil, fmt.Errorf("seat count %d: %w", req.SeatCount, domain.ErrInvalidWindow)
	}

	election := &domain.Election{
		TeamID:      teamID,
		Title:       req.Title,
		Description: req.Description,
		CreatedBy:   creator,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		SeatCount:   req.SeatCount,
	}

	if err := s.electionRepo.CreateElection(ctx, election); err != nil {
		return nil, err
	}

	s.logger.Info("election created",
		zap.Int64("election_id", election.ID),
		zap.Int("team_id", teamID),
		zap.String("created_by", creator),
		zap.Time("start_date", req.StartDate),
		zap.Time("end_date", req.EndDate),
		zap.Int("seat_count", req.SeatCount))

	return election, nil
}

// RegisterCandidate adds a candidate while the election is scheduled or
// open. Registration order is preserved for the tally tie-break.
func (s *ElectionService) RegisterCandidate(ctx context.Context, electionID int64, req *domain.RegisterCandidateRequest) (*domain.Candidate, error) {
	election, err := s.electionRepo.GetElection(ctx, electionID)
	if err != nil {
		return nil, err
	}
	if election == nil {
		return nil, fmt.Errorf("election %d: %w", electionID, domain.ErrNotFound)
	}

	switch election.StatusAt(s.now()) {
	case domain.ElectionScheduled, domain.ElectionOpen:
	default:
		return nil, fmt.Errorf("register candidate in election %d: %w", electionID, domain.ErrWindowClosed)
	}

	candidate := &domain.Candidate{
		ID:         req.CandidateID,
		ElectionID: electionID,
		Name:       req.Name,
	}

	if err := s.electionRepo.AddCandidate(ctx, candidate); err != nil {
		return nil, err
	}

	s.invalidateStatusCache(ctx, electionID)

	s.logger.Info("candidate registered",
		zap.Int64("election_id", electionID),
		zap.String("candidate_id", candidate.ID))

	return candidate, nil
}

// CastVote records a ballot while the window is open. A resubmission by the
// same voter replaces the prior ballot, it never adds a second one.
func (s *ElectionService) CastVote(ctx context.Context, voter string, electionID int64, req *domain.CastVoteRequest) (*domain.CastVoteResponse, error) {
	election, err := s.electionRepo.GetElection(ctx, electionID)
	if err != nil {
		return nil, err
	}
	if election == nil {
		return nil, fmt.Errorf("election %d: %w", electionID, domain.ErrNotFound)
	}

	if !s.entitlements.Has(ctx, election.TeamID, voter, domain.PermVote) {
		return nil, fmt.Errorf("cast vote in election %d: %w", electionID, domain.ErrUnauthorized)
	}

	if election.StatusAt(s.now()) != domain.ElectionOpen {
		return nil, fmt.Errorf("cast vote in election %d: %w", electionID, domain.ErrWindowClosed)
	}

	choices := dedupeChoices(req.Choices)
	if len(choices) == 0 {
		return nil, fmt.Errorf("empty ballot: %w", domain.ErrInvalidChoice)
	}
	if len(choices) > election.SeatCount {
		return nil, fmt.Errorf("ballot names %d candidates for %d seats: %w",
			len(choices), election.SeatCount, domain.ErrInvalidChoice)
	}
	for _, choice := range choices {
		if !election.HasCandidate(choice) {
			return nil, fmt.Errorf("candidate %s: %w", choice, domain.ErrInvalidChoice)
		}
	}

	ballot := &domain.Ballot{
		ElectionID: electionID,
		Voter:      voter,
		Choices:    choices,
	}

	replaced, err := s.electionRepo.UpsertBallot(ctx, ballot)
	if err != nil {
		return nil, err
	}

	s.invalidateStatusCache(ctx, electionID)

	s.logger.Info("ballot recorded",
		zap.Int64("election_id", electionID),
		zap.String("voter", voter),
		zap.Int("choices", len(choices)),
		zap.Bool("replaced", replaced))

	return &domain.CastVoteResponse{
		ElectionID: electionID,
		Choices:    choices,
		Replaced:   replaced,
		Timestamp:  ballot.CastAt,
	}, nil
}

// Tally computes the election result once the window has closed. The first
// successful tally freezes the result; later calls return it verbatim even
// if stray ballots were written afterwards.
func (s *ElectionService) Tally(ctx context.Context, electionID int64) (*domain.ElectionResult, error) {
	unlock := s.locks.Lock(electionKey(electionID))
	defer unlock()

	// Frozen result short-circuits, redis first then storage
	if cached := s.cachedResult(ctx, electionID); cached != nil {
		return cached, nil
	}
	if result, err := s.electionRepo.GetResult(ctx, electionID); err != nil {
		return nil, err
	} else if result != nil {
		s.cacheResult(ctx, result)
		return result, nil
	}

	election, err := s.electionRepo.GetElection(ctx, electionID)
	if err != nil {
		return nil, err
	}
	if election == nil {
		return nil, fmt.Errorf("election %d: %w", electionID, domain.ErrNotFound)
	}

	if s.now().Before(election.EndDate) {
		return nil, fmt.Errorf("tally election %d before window end: %w", electionID, domain.ErrWindowClosed)
	}

	ballots, err := s.electionRepo.ListBallots(ctx, electionID)
	if err != nil {
		return nil, err
	}

	result := tallyBallots(election, ballots, s.now())

	if err := s.electionRepo.SaveResult(ctx, result); err != nil {
		return nil, err
	}

	s.cacheResult(ctx, result)
	s.notifyAsync(func(n Notifier) { n.ElectionPublished(result) })

	s.logger.Info("election published",
		zap.Int64("election_id", electionID),
		zap.Int("total_votes", result.TotalVotes),
		zap.Int("seat_count", result.SeatCount))

	return result, nil
}

// Get retrieves a single election with candidates
func (s *ElectionService) Get(ctx context.Context, electionID int64) (*domain.Election, error) {
	election, err := s.electionRepo.GetElection(ctx, electionID)
	if err != nil {
		return nil, err
	}
	if election == nil {
		return nil, fmt.Errorf("election %d: %w", electionID, domain.ErrNotFound)
	}
	return election, nil
}

// List retrieves all elections for a team
func (s *ElectionService) List(ctx context.Context, teamID int) ([]domain.Election, error) {
	return s.electionRepo.ListElections(ctx, teamID)
}

// tallyBallots awards seats to the seatCount candidates with the highest
// vote totals. Ties break by earliest registration, then candidate ID
// ascending, so the ordering is a total order and the result reproducible.
func tallyBallots(election *domain.Election, ballots []domain.Ballot, now time.Time) *domain.ElectionResult {
	votes := make(map[string]int, len(election.Candidates))
	for _, ballot := range ballots {
		for _, choice := range ballot.Choices {
			if election.HasCandidate(choice) {
				votes[choice]++
			}
		}
	}

	rankings := make([]domain.CandidateResult, 0, len(election.Candidates))
	registered := make(map[string]time.Time, len(election.Candidates))
	for _, candidate := range election.Candidates {
		registered[candidate.ID] = candidate.RegisteredAt
		rankings = append(rankings, domain.CandidateResult{
			CandidateID: candidate.ID,
			Name:        candidate.Name,
			Votes:       votes[candidate.ID],
		})
	}

	sort.Slice(rankings, func(i, j int) bool {
		a, b := rankings[i], rankings[j]
		if a.Votes != b.Votes {
			return a.Votes > b.Votes
		}
		ra, rb := registered[a.CandidateID], registered[b.CandidateID]
		if !ra.Equal(rb) {
			return ra.Before(rb)
		}
		return a.CandidateID < b.CandidateID
	})

	for i := range rankings {
		rankings[i].Rank = i + 1
		rankings[i].Seated = i < election.SeatCount
	}

	return &domain.ElectionResult{
		ElectionID: election.ID,
		SeatCount:  election.SeatCount,
		TotalVotes: len(ballots),
		Rankings:   rankings,
		TalliedAt:  now,
	}
}

// dedupeChoices removes repeated candidate IDs while preserving order
func dedupeChoices(choices []string) []string {
	seen := make(map[string]bool, len(choices))
	out := make([]string, 0, len(choices))
	for _, c := range choices {
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}

// cachedResult reads a frozen result from redis
func (s *ElectionService) cachedResult(ctx context.Context, electionID int64) *domain.ElectionResult {
	if s.redis == nil {
		return nil
	}
	key := s.redis.KeyBuilder.KeyElectionResults(electionID)
	cached, err := s.redis.Get(ctx, key)
	if err != nil || cached == "" {
		return nil
	}
	var result domain.ElectionResult
	if err := json.Unmarshal([]byte(cached), &result); err != nil {
		return nil
	}
	return &result
}

// cacheResult stores a frozen result in redis
func (s *ElectionService) cacheResult(ctx context.Context, result *domain.ElectionResult) {
	if s.redis == nil {
		return
	}
	data, err := json.Marshal(result)
	if err != nil {
		return
	}
	key := s.redis.KeyBuilder.KeyElectionResults(result.ElectionID)
	if err := s.redis.Set(ctx, key, string(data), redis.TTLElectionResults); err != nil {
		s.logger.Warn("failed to cache election result",
			zap.Int64("election_id", result.ElectionID),
			zap.Error(err))
	}
}

// invalidateStatusCache drops the live election status counters
func (s *ElectionService) invalidateStatusCache(ctx context.Context, electionID int64) {
	if s.redis == nil {
		return
	}
	key := s.redis.KeyBuilder.KeyElectionStatus(electionID)
	if err := s.redis.Delete(ctx, key); err != nil {
		s.logger.Warn("failed to invalidate election status cache",
			zap.Int64("election_id", electionID),
			zap.Error(err))
	}
}

// notifyAsync fires a notification without blocking the caller
func (s *ElectionService) notifyAsync(fn func(Notifier)) {
	if s.notifier == nil {
		return
	}
	go fn(s.notifier)
}

func electionKey(electionID int64) string {
	return fmt.Sprintf("election:%d", electionID)
}
