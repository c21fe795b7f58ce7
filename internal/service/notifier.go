package service

import (
	"gov-be/internal/domain"

	"go.uber.org/zap"
)

// LogNotifier emits structured log events for state transitions. It stands in
// for a webhook or message-bus integration; failures here never affect the
// transition that triggered them.
type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) ApprovalRecorded(action *domain.Action, approver string, count int) {
	n.logger.Info("notify: approval recorded",
		zap.Int64("action_id", action.ID),
		zap.Int("team_id", action.TeamID),
		zap.String("approver", approver),
		zap.Int("approval_count", count))
}

func (n *LogNotifier) ActionExecuted(action *domain.Action, sideEffect domain.SideEffectState) {
	n.logger.Info("notify: action executed",
		zap.Int64("action_id", action.ID),
		zap.Int("team_id", action.TeamID),
		zap.String("executed_by", action.ExecutedBy),
		zap.String("side_effect", string(sideEffect)))
}

func (n *LogNotifier) ElectionPublished(result *domain.ElectionResult) {
	n.logger.Info("notify: election published",
		zap.Int64("election_id", result.ElectionID),
		zap.Int("total_votes", result.TotalVotes),
		zap.Int("seat_count", result.SeatCount))
}
