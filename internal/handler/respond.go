package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"gov-be/internal/middleware"
	"gov-be/internal/service"
	"gov-be/pkg/errors"
	"gov-be/pkg/logger"
)

// respondJSON writes a JSON response with the given status code
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// respondError maps the error through the governance taxonomy and writes
// the structured error body
func respondError(w http.ResponseWriter, r *http.Request, log *logger.Logger, err error) {
	appErr := service.MapError(err)

	if appErr.Type == errors.ErrorTypeInternal {
		log.WithError(err).Error("Request failed")
	} else {
		log.WithError(err).Debug("Request rejected")
	}

	response := &errors.ErrorResponse{}
	response.Error.Type = appErr.Type
	response.Error.Message = appErr.Message
	response.Error.Details = appErr.Details
	response.Error.Timestamp = time.Now().UTC().Format(time.RFC3339)
	if requestID, ok := r.Context().Value(middleware.RequestIDContextKey).(string); ok {
		response.Error.RequestID = requestID
	}

	respondJSON(w, appErr.StatusCode, response)
}

// memberFromRequest pulls the authenticated member address out of the request
func memberFromRequest(r *http.Request) (string, bool) {
	return middleware.MemberFromContext(r.Context())
}
