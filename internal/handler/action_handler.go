package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"gov-be/internal/domain"
	"gov-be/internal/service"
	"gov-be/pkg/errors"
	"gov-be/pkg/logger"

	"github.com/go-chi/chi/v5"
)

// ActionHandler exposes the multisig action queue over HTTP
type ActionHandler struct {
	actions service.ActionQueue
	logger  *logger.Logger
}

func NewActionHandler(actions service.ActionQueue, logger *logger.Logger) *ActionHandler {
	return &ActionHandler{
		actions: actions,
		logger:  logger,
	}
}

// Propose handles POST /api/v1/teams/{teamId}/actions
func (h *ActionHandler) Propose(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	proposer, ok := memberFromRequest(r)
	if !ok {
		respondError(w, r, h.logger, errors.NewAuthenticationError("Authentication required"))
		return
	}

	teamID, err := teamIDParam(r)
	if err != nil {
		respondError(w, r, h.logger, errors.NewValidationError("Invalid team ID", nil))
		return
	}

	var req domain.ProposeActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, h.logger, errors.NewValidationError("Invalid request body", nil))
		return
	}
	if req.Target == "" {
		respondError(w, r, h.logger, errors.NewValidationError("Target is required", nil))
		return
	}

	response, err := h.actions.Propose(ctx, proposer, teamID, &req)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	respondJSON(w, http.StatusCreated, response)
}

// Approve handles POST /api/v1/actions/{actionId}/approve
func (h *ActionHandler) Approve(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	approver, ok := memberFromRequest(r)
	if !ok {
		respondError(w, r, h.logger, errors.NewAuthenticationError("Authentication required"))
		return
	}

	actionID, err := actionIDParam(r)
	if err != nil {
		respondError(w, r, h.logger, errors.NewValidationError("Invalid action ID", nil))
		return
	}

	response, err := h.actions.Approve(ctx, approver, actionID)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, response)
}

// Execute handles POST /api/v1/actions/{actionId}/execute
func (h *ActionHandler) Execute(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	executor, ok := memberFromRequest(r)
	if !ok {
		respondError(w, r, h.logger, errors.NewAuthenticationError("Authentication required"))
		return
	}

	actionID, err := actionIDParam(r)
	if err != nil {
		respondError(w, r, h.logger, errors.NewValidationError("Invalid action ID", nil))
		return
	}

	response, err := h.actions.Execute(ctx, executor, actionID)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, response)
}

// Withdraw handles POST /api/v1/actions/{actionId}/withdraw
func (h *ActionHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	caller, ok := memberFromRequest(r)
	if !ok {
		respondError(w, r, h.logger, errors.NewAuthenticationError("Authentication required"))
		return
	}

	actionID, err := actionIDParam(r)
	if err != nil {
		respondError(w, r, h.logger, errors.NewValidationError("Invalid action ID", nil))
		return
	}

	if err := h.actions.Withdraw(ctx, caller, actionID); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"action_id": actionID,
		"status":    string(domain.ActionWithdrawn),
	})
}

// Get handles GET /api/v1/actions/{actionId}
func (h *ActionHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actionID, err := actionIDParam(r)
	if err != nil {
		respondError(w, r, h.logger, errors.NewValidationError("Invalid action ID", nil))
		return
	}

	action, err := h.actions.Get(ctx, actionID)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, action)
}

// List handles GET /api/v1/teams/{teamId}/actions
func (h *ActionHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	teamID, err := teamIDParam(r)
	if err != nil {
		respondError(w, r, h.logger, errors.NewValidationError("Invalid team ID", nil))
		return
	}

	actions, err := h.actions.List(ctx, teamID)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"team_id": teamID,
		"actions": actions,
	})
}

func teamIDParam(r *http.Request) (int, error) {
	return strconv.Atoi(chi.URLParam(r, "teamId"))
}

func actionIDParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "actionId"), 10, 64)
}
