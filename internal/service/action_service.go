package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gov-be/internal/domain"
	"gov-be/internal/repository"
	"gov-be/pkg/redis"

	"go.uber.org/zap"
)

// ActionService implements the multisig action-approval state machine.
// The approver set is the source of truth for approval counts, and every
// mutation on one action runs inside that action's critical section.
type ActionService struct {
	actionRepo       repository.ActionRepository
	memberRepo       repository.MemberRepository
	entitlements     EntitlementRegistry
	executor         Executor
	notifier         Notifier
	redis            *redis.Client
	logger           *zap.Logger
	locks            *keyedMutex
	defaultThreshold int
	executionTimeout time.Duration
}

func NewActionService(
	actionRepo repository.ActionRepository,
	memberRepo repository.MemberRepository,
	entitlements EntitlementRegistry,
	executor Executor,
	notifier Notifier,
	redisClient *redis.Client,
	logger *zap.Logger,
	defaultThreshold int,
	executionTimeout time.Duration,
) *ActionService {
	return &ActionService{
		actionRepo:       actionRepo,
		memberRepo:       memberRepo,
		entitlements:     entitlements,
		executor:         executor,
		notifier:         notifier,
		redis:            redisClient,
		logger:           logger,
		locks:            newKeyedMutex(),
		defaultThreshold: defaultThreshold,
		executionTimeout: executionTimeout,
	}
}

// Propose creates a new action in the proposed state with an empty approver set
func (s *ActionService) Propose(ctx context.Context, proposer string, teamID int, req *domain.ProposeActionRequest) (*domain.ProposeActionResponse, error) {
	if !s.entitlements.Has(ctx, teamID, proposer, domain.PermPropose) {
		return nil, fmt.Errorf("propose action: %w", domain.ErrUnauthorized)
	}

	team, err := s.memberRepo.GetTeam(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to get team: %w", err)
	}
	if team == nil {
		return nil, fmt.Errorf("team %d: %w", teamID, domain.ErrNotFound)
	}

	action := &domain.Action{
		TeamID:      teamID,
		Proposer:    proposer,
		Target:      req.Target,
		Description: req.Description,
		Data:        req.Data,
		Status:      domain.ActionProposed,
	}

	if err := s.actionRepo.CreateAction(ctx, action); err != nil {
		return nil, err
	}

	s.invalidateActionCache(ctx, teamID)

	s.logger.Info("action proposed",
		zap.Int64("action_id", action.ID),
		zap.Int("team_id", teamID),
		zap.String("proposer", proposer),
		zap.String("target", req.Target))

	return &domain.ProposeActionResponse{
		ActionID:  action.ID,
		TeamID:    teamID,
		Status:    string(domain.ActionProposed),
		Timestamp: action.CreatedAt,
	}, nil
}

// Approve records one distinct approval. A repeated approval by the same
// member is a no-op success returning the current count, never a double
// increment.
func (s *ActionService) Approve(ctx context.Context, approver string, actionID int64) (*domain.ApprovalResponse, error) {
	unlock := s.locks.Lock(actionKey(actionID))
	defer unlock()

	action, err := s.actionRepo.GetAction(ctx, actionID)
	if err != nil {
		return nil, err
	}
	if action == nil {
		return nil, fmt.Errorf("action %d: %w", actionID, domain.ErrNotFound)
	}

	if !s.entitlements.Has(ctx, action.TeamID, approver, domain.PermApprove) {
		return nil, fmt.Errorf("approve action %d: %w", actionID, domain.ErrUnauthorized)
	}

	count, inserted, err := s.actionRepo.AddApproval(ctx, actionID, approver)
	if err != nil {
		return nil, err
	}

	threshold, err := s.thresholdFor(ctx, action.TeamID)
	if err != nil {
		return nil, err
	}

	if inserted {
		s.invalidateActionCache(ctx, action.TeamID)
		s.notifyAsync(func(n Notifier) { n.ApprovalRecorded(action, approver, count) })

		s.logger.Info("approval recorded",
			zap.Int64("action_id", actionID),
			zap.String("approver", approver),
			zap.Int("approval_count", count),
			zap.Int("threshold", threshold))
	} else {
		s.logger.Debug("duplicate approval ignored",
			zap.Int64("action_id", actionID),
			zap.String("approver", approver),
			zap.Int("approval_count", count))
	}

	return &domain.ApprovalResponse{
		ActionID:      actionID,
		ApprovalCount: count,
		Threshold:     threshold,
		Duplicate:     !inserted,
	}, nil
}

// Execute flips the action to executed once the team threshold is met, then
// dispatches the payload to the external collaborator. Execution intent is
// recorded before the external call; a failed or timed-out side effect
// leaves the action executed and flags it for manual review.
func (s *ActionService) Execute(ctx context.Context, executor string, actionID int64) (*domain.ExecutionResponse, error) {
	unlock := s.locks.Lock(actionKey(actionID))
	defer unlock()

	action, err := s.actionRepo.GetAction(ctx, actionID)
	if err != nil {
		return nil, err
	}
	if action == nil {
		return nil, fmt.Errorf("action %d: %w", actionID, domain.ErrNotFound)
	}

	if !s.entitlements.Has(ctx, action.TeamID, executor, domain.PermExecute) {
		return nil, fmt.Errorf("execute action %d: %w", actionID, domain.ErrUnauthorized)
	}

	threshold, err := s.thresholdFor(ctx, action.TeamID)
	if err != nil {
		return nil, err
	}

	// Durable intent first: the repository re-checks status and threshold
	// against the locked row, so a racing approve or execute cannot slip in
	// between our read and this write.
	if err := s.actionRepo.MarkExecuted(ctx, actionID, executor, threshold); err != nil {
		return nil, err
	}

	now := time.Now()
	action.Status = domain.ActionExecuted
	action.IsExecuted = true
	action.ExecutedBy = executor
	action.ExecutedAt = &now

	sideEffect := s.dispatch(ctx, action)

	if err := s.actionRepo.SetSideEffect(ctx, actionID, sideEffect); err != nil {
		s.logger.Error("failed to record side effect state",
			zap.Int64("action_id", actionID),
			zap.String("state", string(sideEffect)),
			zap.Error(err))
	}
	action.SideEffect = sideEffect

	s.invalidateActionCache(ctx, action.TeamID)
	s.notifyAsync(func(n Notifier) { n.ActionExecuted(action, sideEffect) })

	s.logger.Info("action executed",
		zap.Int64("action_id", actionID),
		zap.String("executed_by", executor),
		zap.Int("threshold", threshold),
		zap.String("side_effect", string(sideEffect)))

	if sideEffect != domain.SideEffectSucceeded {
		return nil, fmt.Errorf("action %d side effect %s: %w",
			actionID, sideEffect, domain.ErrExternalExecutionFailed)
	}

	return &domain.ExecutionResponse{
		ActionID:   actionID,
		SideEffect: sideEffect,
		ExecutedAt: now,
	}, nil
}

// Withdraw cancels a proposed action. Only the original proposer may cancel,
// and only before the action reaches a terminal state.
func (s *ActionService) Withdraw(ctx context.Context, caller string, actionID int64) error {
	unlock := s.locks.Lock(actionKey(actionID))
	defer unlock()

	action, err := s.actionRepo.GetAction(ctx, actionID)
	if err != nil {
		return err
	}
	if action == nil {
		return fmt.Errorf("action %d: %w", actionID, domain.ErrNotFound)
	}
	if action.Proposer != caller {
		return fmt.Errorf("withdraw action %d: %w", actionID, domain.ErrUnauthorized)
	}

	if err := s.actionRepo.MarkWithdrawn(ctx, actionID); err != nil {
		return err
	}

	s.invalidateActionCache(ctx, action.TeamID)

	s.logger.Info("action withdrawn",
		zap.Int64("action_id", actionID),
		zap.String("proposer", caller))

	return nil
}

// Get retrieves a single action with its approver set
func (s *ActionService) Get(ctx context.Context, actionID int64) (*domain.Action, error) {
	action, err := s.actionRepo.GetAction(ctx, actionID)
	if err != nil {
		return nil, err
	}
	if action == nil {
		return nil, fmt.Errorf("action %d: %w", actionID, domain.ErrNotFound)
	}
	return action, nil
}

// List retrieves all actions for a team
func (s *ActionService) List(ctx context.Context, teamID int) ([]domain.Action, error) {
	return s.actionRepo.ListActions(ctx, teamID)
}

// dispatch invokes the external execution collaborator under a bounded
// timeout, classifying the outcome
func (s *ActionService) dispatch(ctx context.Context, action *domain.Action) domain.SideEffectState {
	if s.executor == nil {
		return domain.SideEffectSucceeded
	}

	execCtx, cancel := context.WithTimeout(ctx, s.executionTimeout)
	defer cancel()

	err := s.executor.Execute(execCtx, action)
	switch {
	case err == nil:
		return domain.SideEffectSucceeded
	case errors.Is(err, context.DeadlineExceeded):
		s.logger.Error("external execution timed out",
			zap.Int64("action_id", action.ID),
			zap.Duration("timeout", s.executionTimeout))
		return domain.SideEffectTimedOut
	default:
		s.logger.Error("external execution failed",
			zap.Int64("action_id", action.ID),
			zap.Error(err))
		return domain.SideEffectFailed
	}
}

// thresholdFor resolves the team's approval threshold, falling back to the
// configured default when the team has none set
func (s *ActionService) thresholdFor(ctx context.Context, teamID int) (int, error) {
	team, err := s.memberRepo.GetTeam(ctx, teamID)
	if err != nil {
		return 0, fmt.Errorf("failed to get team: %w", err)
	}
	if team == nil {
		return 0, fmt.Errorf("team %d: %w", teamID, domain.ErrNotFound)
	}
	if team.ApprovalThreshold > 0 {
		return team.ApprovalThreshold, nil
	}
	return s.defaultThreshold, nil
}

// invalidateActionCache drops the team's cached action summary
func (s *ActionService) invalidateActionCache(ctx context.Context, teamID int) {
	if s.redis == nil {
		return
	}
	key := s.redis.KeyBuilder.KeyActionSummary(teamID)
	if err := s.redis.Delete(ctx, key); err != nil {
		s.logger.Warn("failed to invalidate action summary cache",
			zap.Int("team_id", teamID),
			zap.Error(err))
	}
}

// notifyAsync fires a notification without blocking the caller
func (s *ActionService) notifyAsync(fn func(Notifier)) {
	if s.notifier == nil {
		return
	}
	go fn(s.notifier)
}

func actionKey(actionID int64) string {
	return fmt.Sprintf("action:%d", actionID)
}
