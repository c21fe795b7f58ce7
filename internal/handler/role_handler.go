package handler

import (
	"encoding/json"
	"net/http"

	"gov-be/internal/service"
	"gov-be/pkg/errors"
	"gov-be/pkg/logger"

	"github.com/go-chi/chi/v5"
)

// RoleHandler exposes the entitlement registry over HTTP
type RoleHandler struct {
	entitlements service.EntitlementRegistry
	logger       *logger.Logger
}

func NewRoleHandler(entitlements service.EntitlementRegistry, logger *logger.Logger) *RoleHandler {
	return &RoleHandler{
		entitlements: entitlements,
		logger:       logger,
	}
}

type roleRequest struct {
	Role string `json:"role"`
}

// Grant handles POST /api/v1/teams/{teamId}/members/{address}/roles
func (h *RoleHandler) Grant(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	caller, ok := memberFromRequest(r)
	if !ok {
		respondError(w, r, h.logger, errors.NewAuthenticationError("Authentication required"))
		return
	}

	teamID, err := teamIDParam(r)
	if err != nil {
		respondError(w, r, h.logger, errors.NewValidationError("Invalid team ID", nil))
		return
	}
	address := chi.URLParam(r, "address")

	var req roleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Role == "" {
		respondError(w, r, h.logger, errors.NewValidationError("Role is required", nil))
		return
	}

	if err := h.entitlements.Grant(ctx, caller, teamID, address, req.Role); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"team_id": teamID,
		"member":  address,
		"role":    req.Role,
		"granted": true,
	})
}

// Revoke handles DELETE /api/v1/teams/{teamId}/members/{address}/roles/{role}
func (h *RoleHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	caller, ok := memberFromRequest(r)
	if !ok {
		respondError(w, r, h.logger, errors.NewAuthenticationError("Authentication required"))
		return
	}

	teamID, err := teamIDParam(r)
	if err != nil {
		respondError(w, r, h.logger, errors.NewValidationError("Invalid team ID", nil))
		return
	}
	address := chi.URLParam(r, "address")
	role := chi.URLParam(r, "role")

	if err := h.entitlements.Revoke(ctx, caller, teamID, address, role); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"team_id": teamID,
		"member":  address,
		"role":    role,
		"revoked": true,
	})
}

// List handles GET /api/v1/teams/{teamId}/members/{address}/roles
func (h *RoleHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	teamID, err := teamIDParam(r)
	if err != nil {
		respondError(w, r, h.logger, errors.NewValidationError("Invalid team ID", nil))
		return
	}
	address := chi.URLParam(r, "address")

	roles, err := h.entitlements.ListRoles(ctx, teamID, address)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"team_id": teamID,
		"member":  address,
		"roles":   roles,
	})
}
