package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"gov-be/internal/domain"
	"gov-be/internal/service"
	"gov-be/pkg/errors"
	"gov-be/pkg/logger"

	"github.com/go-chi/chi/v5"
)

// ElectionHandler exposes the election engine over HTTP
type ElectionHandler struct {
	elections service.ElectionEngine
	logger    *logger.Logger
}

func NewElectionHandler(elections service.ElectionEngine, logger *logger.Logger) *ElectionHandler {
	return &ElectionHandler{
		elections: elections,
		logger:    logger,
	}
}

// Create handles POST /api/v1/teams/{teamId}/elections
func (h *ElectionHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	creator, ok := memberFromRequest(r)
	if !ok {
		respondError(w, r, h.logger, errors.NewAuthenticationError("Authentication required"))
		return
	}

	teamID, err := teamIDParam(r)
	if err != nil {
		respondError(w, r, h.logger, errors.NewValidationError("Invalid team ID", nil))
		return
	}

	var req domain.CreateElectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, h.logger, errors.NewValidationError("Invalid request body", nil))
		return
	}
	if req.Title == "" {
		respondError(w, r, h.logger, errors.NewValidationError("Title is required", nil))
		return
	}

	election, err := h.elections.Create(ctx, creator, teamID, &req)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	respondJSON(w, http.StatusCreated, election)
}

// RegisterCandidate handles POST /api/v1/elections/{electionId}/candidates
func (h *ElectionHandler) RegisterCandidate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	electionID, err := electionIDParam(r)
	if err != nil {
		respondError(w, r, h.logger, errors.NewValidationError("Invalid election ID", nil))
		return
	}

	var req domain.RegisterCandidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, h.logger, errors.NewValidationError("Invalid request body", nil))
		return
	}
	if req.CandidateID == "" || req.Name == "" {
		respondError(w, r, h.logger, errors.NewValidationError("Candidate ID and name are required", nil))
		return
	}

	candidate, err := h.elections.RegisterCandidate(ctx, electionID, &req)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	respondJSON(w, http.StatusCreated, candidate)
}

// CastVote handles POST /api/v1/elections/{electionId}/votes
func (h *ElectionHandler) CastVote(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	voter, ok := memberFromRequest(r)
	if !ok {
		respondError(w, r, h.logger, errors.NewAuthenticationError("Authentication required"))
		return
	}

	electionID, err := electionIDParam(r)
	if err != nil {
		respondError(w, r, h.logger, errors.NewValidationError("Invalid election ID", nil))
		return
	}

	var req domain.CastVoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, h.logger, errors.NewValidationError("Invalid request body", nil))
		return
	}

	response, err := h.elections.CastVote(ctx, voter, electionID, &req)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, response)
}

// Tally handles POST /api/v1/elections/{electionId}/tally
func (h *ElectionHandler) Tally(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	electionID, err := electionIDParam(r)
	if err != nil {
		respondError(w, r, h.logger, errors.NewValidationError("Invalid election ID", nil))
		return
	}

	result, err := h.elections.Tally(ctx, electionID)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// Results handles GET /api/v1/elections/{electionId}/results
func (h *ElectionHandler) Results(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	electionID, err := electionIDParam(r)
	if err != nil {
		respondError(w, r, h.logger, errors.NewValidationError("Invalid election ID", nil))
		return
	}

	result, err := h.elections.Tally(ctx, electionID)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	w.Header().Set("Cache-Control", "public, max-age=60")
	respondJSON(w, http.StatusOK, result)
}

// Get handles GET /api/v1/elections/{electionId}
func (h *ElectionHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	electionID, err := electionIDParam(r)
	if err != nil {
		respondError(w, r, h.logger, errors.NewValidationError("Invalid election ID", nil))
		return
	}

	election, err := h.elections.Get(ctx, electionID)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, electionView(election, time.Now()))
}

// List handles GET /api/v1/teams/{teamId}/elections
func (h *ElectionHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	teamID, err := teamIDParam(r)
	if err != nil {
		respondError(w, r, h.logger, errors.NewValidationError("Invalid team ID", nil))
		return
	}

	elections, err := h.elections.List(ctx, teamID)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	views := make([]map[string]interface{}, 0, len(elections))
	now := time.Now()
	for i := range elections {
		views = append(views, electionView(&elections[i], now))
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"team_id":   teamID,
		"elections": views,
	})
}

// electionView augments the election with its derived status
func electionView(e *domain.Election, now time.Time) map[string]interface{} {
	return map[string]interface{}{
		"election": e,
		"status":   e.StatusAt(now),
	}
}

func electionIDParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "electionId"), 10, 64)
}
