package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"gov-be/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testTeamID = 1

func setupActionService(t *testing.T, executor Executor, timeout time.Duration) (*ActionService, *fakeActionRepo, *fakeMemberRepo) {
	t.Helper()

	memberRepo := newFakeMemberRepo()
	memberRepo.addTeam(&domain.Team{ID: testTeamID, Name: "core", ApprovalThreshold: 2, IsActive: true})
	memberRepo.addMember(testTeamID, "alice", domain.RoleAdmin)
	memberRepo.addMember(testTeamID, "bob", domain.RoleApprover)
	memberRepo.addMember(testTeamID, "carol", domain.RoleApprover)
	memberRepo.addMember(testTeamID, "dave", domain.RoleApprover)
	memberRepo.addMember(testTeamID, "victor", domain.RoleVoter)

	actionRepo := newFakeActionRepo()
	entitlements := NewEntitlementService(memberRepo, nil, zap.NewNop())

	svc := NewActionService(actionRepo, memberRepo, entitlements, executor, nil, nil, zap.NewNop(), 2, timeout)
	return svc, actionRepo, memberRepo
}

func proposeTestAction(t *testing.T, svc *ActionService) int64 {
	t.Helper()
	resp, err := svc.Propose(context.Background(), "alice", testTeamID, &domain.ProposeActionRequest{
		Target:      "0xdeadbeef",
		Description: "transfer 100 to vendor",
	})
	require.NoError(t, err)
	return resp.ActionID
}

func TestActionService_ProposeRequiresPermission(t *testing.T) {
	svc, _, _ := setupActionService(t, nil, time.Second)

	_, err := svc.Propose(context.Background(), "victor", testTeamID, &domain.ProposeActionRequest{
		Target: "0xdeadbeef",
	})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestActionService_ApproveAccumulatesDistinctApprovers(t *testing.T) {
	svc, _, _ := setupActionService(t, nil, time.Second)
	ctx := context.Background()
	actionID := proposeTestAction(t, svc)

	resp, err := svc.Approve(ctx, "bob", actionID)
	require.NoError(t, err)
	assert.Equal(t, 1, resp.ApprovalCount)
	assert.Equal(t, 2, resp.Threshold)
	assert.False(t, resp.Duplicate)

	resp, err = svc.Approve(ctx, "carol", actionID)
	require.NoError(t, err)
	assert.Equal(t, 2, resp.ApprovalCount)
	assert.False(t, resp.Duplicate)
}

func TestActionService_DuplicateApprovalIsNoOp(t *testing.T) {
	svc, _, _ := setupActionService(t, nil, time.Second)
	ctx := context.Background()
	actionID := proposeTestAction(t, svc)

	_, err := svc.Approve(ctx, "bob", actionID)
	require.NoError(t, err)

	resp, err := svc.Approve(ctx, "bob", actionID)
	require.NoError(t, err)
	assert.Equal(t, 1, resp.ApprovalCount)
	assert.True(t, resp.Duplicate)

	action, err := svc.Get(ctx, actionID)
	require.NoError(t, err)
	assert.Equal(t, []string{"bob"}, action.Approvers)
	assert.Equal(t, 1, action.ApprovalCount)
}

func TestActionService_ConcurrentApprovals(t *testing.T) {
	svc, _, memberRepo := setupActionService(t, nil, time.Second)
	ctx := context.Background()
	actionID := proposeTestAction(t, svc)

	approvers := []string{"a1", "a2", "a3", "a4", "a5", "a6", "a7", "a8"}
	for _, name := range approvers {
		memberRepo.addMember(testTeamID, name, domain.RoleApprover)
	}

	var wg sync.WaitGroup
	for _, name := range approvers {
		wg.Add(1)
		go func(approver string) {
			defer wg.Done()
			_, err := svc.Approve(ctx, approver, actionID)
			assert.NoError(t, err)
		}(name)
	}
	wg.Wait()

	action, err := svc.Get(ctx, actionID)
	require.NoError(t, err)
	assert.Equal(t, len(approvers), action.ApprovalCount)
	assert.Len(t, action.Approvers, len(approvers))
}

func TestActionService_ExecuteBelowThreshold(t *testing.T) {
	svc, _, _ := setupActionService(t, nil, time.Second)
	ctx := context.Background()
	actionID := proposeTestAction(t, svc)

	_, err := svc.Approve(ctx, "bob", actionID)
	require.NoError(t, err)

	_, err = svc.Execute(ctx, "alice", actionID)
	assert.ErrorIs(t, err, domain.ErrInsufficientApprovals)

	action, err := svc.Get(ctx, actionID)
	require.NoError(t, err)
	assert.Equal(t, domain.ActionProposed, action.Status)
}

func TestActionService_ExecuteAtThreshold(t *testing.T) {
	executor := &fakeExecutor{}
	svc, _, _ := setupActionService(t, executor, time.Second)
	ctx := context.Background()
	actionID := proposeTestAction(t, svc)

	_, err := svc.Approve(ctx, "bob", actionID)
	require.NoError(t, err)
	_, err = svc.Approve(ctx, "carol", actionID)
	require.NoError(t, err)

	resp, err := svc.Execute(ctx, "alice", actionID)
	require.NoError(t, err)
	assert.Equal(t, domain.SideEffectSucceeded, resp.SideEffect)
	assert.Equal(t, 1, executor.callCount())

	action, err := svc.Get(ctx, actionID)
	require.NoError(t, err)
	assert.Equal(t, domain.ActionExecuted, action.Status)
	assert.True(t, action.IsExecuted)
	assert.Equal(t, "alice", action.ExecutedBy)
}

func TestActionService_ExecuteIsNotRepeatable(t *testing.T) {
	executor := &fakeExecutor{}
	svc, _, _ := setupActionService(t, executor, time.Second)
	ctx := context.Background()
	actionID := proposeTestAction(t, svc)

	_, err := svc.Approve(ctx, "bob", actionID)
	require.NoError(t, err)
	_, err = svc.Approve(ctx, "carol", actionID)
	require.NoError(t, err)

	_, err = svc.Execute(ctx, "alice", actionID)
	require.NoError(t, err)

	_, err = svc.Execute(ctx, "alice", actionID)
	assert.ErrorIs(t, err, domain.ErrAlreadyExecuted)
	assert.Equal(t, 1, executor.callCount(), "external dispatch must happen at most once")
}

func TestActionService_ApproveAfterExecute(t *testing.T) {
	svc, _, _ := setupActionService(t, nil, time.Second)
	ctx := context.Background()
	actionID := proposeTestAction(t, svc)

	_, err := svc.Approve(ctx, "bob", actionID)
	require.NoError(t, err)
	_, err = svc.Approve(ctx, "carol", actionID)
	require.NoError(t, err)
	_, err = svc.Execute(ctx, "alice", actionID)
	require.NoError(t, err)

	_, err = svc.Approve(ctx, "dave", actionID)
	assert.ErrorIs(t, err, domain.ErrAlreadyExecuted)
}

func TestActionService_ExecutorFailureKeepsActionExecuted(t *testing.T) {
	executor := &fakeExecutor{err: assert.AnError}
	svc, _, _ := setupActionService(t, executor, time.Second)
	ctx := context.Background()
	actionID := proposeTestAction(t, svc)

	_, err := svc.Approve(ctx, "bob", actionID)
	require.NoError(t, err)
	_, err = svc.Approve(ctx, "carol", actionID)
	require.NoError(t, err)

	_, err = svc.Execute(ctx, "alice", actionID)
	assert.ErrorIs(t, err, domain.ErrExternalExecutionFailed)

	// The action stays executed; the failed side effect is flagged for
	// manual review, never rolled back.
	action, getErr := svc.Get(ctx, actionID)
	require.NoError(t, getErr)
	assert.Equal(t, domain.ActionExecuted, action.Status)
	assert.Equal(t, domain.SideEffectFailed, action.SideEffect)
}

func TestActionService_ExecutorTimeout(t *testing.T) {
	executor := &fakeExecutor{block: 200 * time.Millisecond}
	svc, _, _ := setupActionService(t, executor, 20*time.Millisecond)
	ctx := context.Background()
	actionID := proposeTestAction(t, svc)

	_, err := svc.Approve(ctx, "bob", actionID)
	require.NoError(t, err)
	_, err = svc.Approve(ctx, "carol", actionID)
	require.NoError(t, err)

	_, err = svc.Execute(ctx, "alice", actionID)
	assert.ErrorIs(t, err, domain.ErrExternalExecutionFailed)

	action, getErr := svc.Get(ctx, actionID)
	require.NoError(t, getErr)
	assert.Equal(t, domain.ActionExecuted, action.Status)
	assert.Equal(t, domain.SideEffectTimedOut, action.SideEffect)
}

func TestActionService_WithdrawOnlyByProposer(t *testing.T) {
	svc, _, _ := setupActionService(t, nil, time.Second)
	ctx := context.Background()
	actionID := proposeTestAction(t, svc)

	err := svc.Withdraw(ctx, "bob", actionID)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	err = svc.Withdraw(ctx, "alice", actionID)
	require.NoError(t, err)

	_, err = svc.Approve(ctx, "bob", actionID)
	assert.ErrorIs(t, err, domain.ErrAlreadyWithdrawn)

	err = svc.Withdraw(ctx, "alice", actionID)
	assert.ErrorIs(t, err, domain.ErrAlreadyWithdrawn)
}

func TestActionService_ApproveUnknownAction(t *testing.T) {
	svc, _, _ := setupActionService(t, nil, time.Second)

	_, err := svc.Approve(context.Background(), "bob", 999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
