package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"gov-be/internal/domain"

	"go.uber.org/zap"
)

// RelayExecutor posts executed action payloads to an external relay endpoint
// that performs the actual on-chain submission.
type RelayExecutor struct {
	url        string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewRelayExecutor(url string, logger *zap.Logger) *RelayExecutor {
	return &RelayExecutor{
		url: url,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}
}

type relayRequest struct {
	ActionID int64           `json:"action_id"`
	TeamID   int             `json:"team_id"`
	Target   string          `json:"target"`
	Data     json.RawMessage `json:"data,omitempty"`
}

// Execute submits the action payload to the relay. With no relay configured
// the dispatch is a no-op success, which keeps local development working
// without the external collaborator.
func (e *RelayExecutor) Execute(ctx context.Context, action *domain.Action) error {
	if e.url == "" {
		e.logger.Debug("no relay configured, skipping dispatch",
			zap.Int64("action_id", action.ID))
		return nil
	}

	payload, err := json.Marshal(relayRequest{
		ActionID: action.ID,
		TeamID:   action.TeamID,
		Target:   action.Target,
		Data:     action.Data,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal relay request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create relay request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("relay request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("relay returned status %d", resp.StatusCode)
	}

	e.logger.Info("action dispatched to relay",
		zap.Int64("action_id", action.ID),
		zap.String("target", action.Target),
		zap.Int("status", resp.StatusCode))

	return nil
}
