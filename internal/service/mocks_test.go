package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"gov-be/internal/domain"
)

// fakeMemberRepo is an in-memory MemberRepository for service tests.
type fakeMemberRepo struct {
	mu      sync.Mutex
	members map[string]*domain.Member // key: teamID/address
	teams   map[int]*domain.Team
}

func newFakeMemberRepo() *fakeMemberRepo {
	return &fakeMemberRepo{
		members: make(map[string]*domain.Member),
		teams:   make(map[int]*domain.Team),
	}
}

func memberKey(teamID int, address string) string {
	return fmt.Sprintf("%d/%s", teamID, address)
}

func (f *fakeMemberRepo) addMember(teamID int, address string, roles ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.members[memberKey(teamID, address)] = &domain.Member{
		Address:  address,
		TeamID:   teamID,
		Roles:    roles,
		JoinedAt: time.Now(),
	}
}

func (f *fakeMemberRepo) addTeam(team *domain.Team) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.teams[team.ID] = team
}

func (f *fakeMemberRepo) GetMember(ctx context.Context, teamID int, address string) (*domain.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.members[memberKey(teamID, address)]
	if !ok {
		return nil, nil
	}
	cp := *m
	cp.Roles = append([]string(nil), m.Roles...)
	return &cp, nil
}

func (f *fakeMemberRepo) GetRoles(ctx context.Context, teamID int, address string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.members[memberKey(teamID, address)]
	if !ok {
		return []string{}, nil
	}
	return append([]string(nil), m.Roles...), nil
}

func (f *fakeMemberRepo) AddRole(ctx context.Context, teamID int, address, role string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.members[memberKey(teamID, address)]
	if !ok {
		return domain.ErrNotFound
	}
	for _, r := range m.Roles {
		if r == role {
			return nil
		}
	}
	m.Roles = append(m.Roles, role)
	return nil
}

func (f *fakeMemberRepo) RemoveRole(ctx context.Context, teamID int, address, role string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.members[memberKey(teamID, address)]
	if !ok {
		return domain.ErrNotFound
	}
	kept := m.Roles[:0]
	for _, r := range m.Roles {
		if r != role {
			kept = append(kept, r)
		}
	}
	m.Roles = kept
	return nil
}

func (f *fakeMemberRepo) GetTeam(ctx context.Context, teamID int) (*domain.Team, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.teams[teamID]
	if !ok {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

// fakeActionRepo is an in-memory ActionRepository mirroring the transactional
// semantics of the Postgres implementation.
type fakeActionRepo struct {
	mu        sync.Mutex
	nextID    int64
	actions   map[int64]*domain.Action
	approvals map[int64][]string
}

func newFakeActionRepo() *fakeActionRepo {
	return &fakeActionRepo{
		nextID:    1,
		actions:   make(map[int64]*domain.Action),
		approvals: make(map[int64][]string),
	}
}

func (f *fakeActionRepo) CreateAction(ctx context.Context, action *domain.Action) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	action.ID = f.nextID
	f.nextID++
	action.CreatedAt = time.Now()
	action.Status = domain.ActionProposed
	cp := *action
	f.actions[action.ID] = &cp
	return nil
}

func (f *fakeActionRepo) GetAction(ctx context.Context, actionID int64) (*domain.Action, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.actions[actionID]
	if !ok {
		return nil, nil
	}
	cp := *a
	cp.Approvers = append([]string(nil), f.approvals[actionID]...)
	return &cp, nil
}

func (f *fakeActionRepo) ListActions(ctx context.Context, teamID int) ([]domain.Action, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var actions []domain.Action
	for _, a := range f.actions {
		if a.TeamID == teamID {
			actions = append(actions, *a)
		}
	}
	return actions, nil
}

func (f *fakeActionRepo) AddApproval(ctx context.Context, actionID int64, approver string) (int, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.actions[actionID]
	if !ok {
		return 0, false, domain.ErrNotFound
	}
	switch a.Status {
	case domain.ActionExecuted:
		return 0, false, domain.ErrAlreadyExecuted
	case domain.ActionWithdrawn:
		return 0, false, domain.ErrAlreadyWithdrawn
	}
	for _, existing := range f.approvals[actionID] {
		if existing == approver {
			return len(f.approvals[actionID]), false, nil
		}
	}
	f.approvals[actionID] = append(f.approvals[actionID], approver)
	a.ApprovalCount = len(f.approvals[actionID])
	return a.ApprovalCount, true, nil
}

func (f *fakeActionRepo) MarkExecuted(ctx context.Context, actionID int64, executor string, threshold int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.actions[actionID]
	if !ok {
		return domain.ErrNotFound
	}
	switch a.Status {
	case domain.ActionExecuted:
		return domain.ErrAlreadyExecuted
	case domain.ActionWithdrawn:
		return domain.ErrAlreadyWithdrawn
	}
	if a.ApprovalCount < threshold {
		return domain.ErrInsufficientApprovals
	}
	now := time.Now()
	a.Status = domain.ActionExecuted
	a.IsExecuted = true
	a.SideEffect = domain.SideEffectPending
	a.ExecutedBy = executor
	a.ExecutedAt = &now
	return nil
}

func (f *fakeActionRepo) SetSideEffect(ctx context.Context, actionID int64, state domain.SideEffectState) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.actions[actionID]
	if !ok || !a.IsExecuted {
		return domain.ErrNotFound
	}
	a.SideEffect = state
	return nil
}

func (f *fakeActionRepo) MarkWithdrawn(ctx context.Context, actionID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.actions[actionID]
	if !ok {
		return domain.ErrNotFound
	}
	switch a.Status {
	case domain.ActionExecuted:
		return domain.ErrAlreadyExecuted
	case domain.ActionWithdrawn:
		return domain.ErrAlreadyWithdrawn
	}
	a.Status = domain.ActionWithdrawn
	return nil
}

// fakeElectionRepo is an in-memory ElectionRepository. Results are
// first-write-wins, matching the ON CONFLICT DO NOTHING persistence.
type fakeElectionRepo struct {
	mu         sync.Mutex
	nextID     int64
	elections  map[int64]*domain.Election
	candidates map[int64][]domain.Candidate
	ballots    map[int64]map[string]*domain.Ballot
	results    map[int64]*domain.ElectionResult
}

func newFakeElectionRepo() *fakeElectionRepo {
	return &fakeElectionRepo{
		nextID:     1,
		elections:  make(map[int64]*domain.Election),
		candidates: make(map[int64][]domain.Candidate),
		ballots:    make(map[int64]map[string]*domain.Ballot),
		results:    make(map[int64]*domain.ElectionResult),
	}
}

func (f *fakeElectionRepo) CreateElection(ctx context.Context, election *domain.Election) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	election.ID = f.nextID
	f.nextID++
	election.CreatedAt = time.Now()
	cp := *election
	f.elections[election.ID] = &cp
	return nil
}

func (f *fakeElectionRepo) GetElection(ctx context.Context, electionID int64) (*domain.Election, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.elections[electionID]
	if !ok {
		return nil, nil
	}
	cp := *e
	cp.Candidates = append([]domain.Candidate(nil), f.candidates[electionID]...)
	cp.VotesCast = len(f.ballots[electionID])
	if _, published := f.results[electionID]; published {
		cp.ResultsPublished = true
	}
	return &cp, nil
}

func (f *fakeElectionRepo) ListElections(ctx context.Context, teamID int) ([]domain.Election, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var elections []domain.Election
	for _, e := range f.elections {
		if e.TeamID == teamID {
			elections = append(elections, *e)
		}
	}
	return elections, nil
}

func (f *fakeElectionRepo) AddCandidate(ctx context.Context, candidate *domain.Candidate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.candidates[candidate.ElectionID] {
		if existing.ID == candidate.ID {
			candidate.RegisteredAt = existing.RegisteredAt
			return nil
		}
	}
	if candidate.RegisteredAt.IsZero() {
		candidate.RegisteredAt = time.Now()
	}
	f.candidates[candidate.ElectionID] = append(f.candidates[candidate.ElectionID], *candidate)
	return nil
}

func (f *fakeElectionRepo) UpsertBallot(ctx context.Context, ballot *domain.Ballot) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ballots[ballot.ElectionID] == nil {
		f.ballots[ballot.ElectionID] = make(map[string]*domain.Ballot)
	}
	_, replaced := f.ballots[ballot.ElectionID][ballot.Voter]
	ballot.CastAt = time.Now()
	cp := *ballot
	f.ballots[ballot.ElectionID][ballot.Voter] = &cp
	return replaced, nil
}

func (f *fakeElectionRepo) ListBallots(ctx context.Context, electionID int64) ([]domain.Ballot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var ballots []domain.Ballot
	for _, b := range f.ballots[electionID] {
		ballots = append(ballots, *b)
	}
	return ballots, nil
}

func (f *fakeElectionRepo) SaveResult(ctx context.Context, result *domain.ElectionResult) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.results[result.ElectionID]; exists {
		return nil
	}
	cp := *result
	f.results[result.ElectionID] = &cp
	return nil
}

func (f *fakeElectionRepo) GetResult(ctx context.Context, electionID int64) (*domain.ElectionResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.results[electionID]
	if !ok {
		return nil, nil
	}
	cp := *r
	return &cp, nil
}

// fakeExecutor records dispatches and returns a scripted outcome.
type fakeExecutor struct {
	mu    sync.Mutex
	calls int
	err   error
	block time.Duration
}

func (f *fakeExecutor) Execute(ctx context.Context, action *domain.Action) error {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.block > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(f.block):
		}
	}
	return f.err
}

func (f *fakeExecutor) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}
