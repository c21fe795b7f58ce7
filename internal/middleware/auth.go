package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"gov-be/pkg/errors"
	"gov-be/pkg/logger"

	"github.com/golang-jwt/jwt/v5"
)

// ContextKey represents keys used in request context
type ContextKey string

const (
	// MemberContextKey is the key for the authenticated member address in context
	MemberContextKey ContextKey = "member"
	// RequestIDContextKey is the key for request ID in context
	RequestIDContextKey ContextKey = "request_id"
)

// MemberClaims are the JWT claims issued to team members. The subject is the
// member's address.
type MemberClaims struct {
	Address string `json:"address"`
	jwt.RegisteredClaims
}

// Auth validates the bearer token and places the member address in context
func Auth(jwtSecret string, logger *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeErrorResponse(w, errors.NewAuthenticationError("Authorization header is required"), logger)
				return
			}

			if !strings.HasPrefix(authHeader, "Bearer ") {
				writeErrorResponse(w, errors.NewAuthenticationError("Invalid authorization header format"), logger)
				return
			}

			token := strings.TrimPrefix(authHeader, "Bearer ")
			if token == "" {
				writeErrorResponse(w, errors.NewAuthenticationError("Token is required"), logger)
				return
			}

			address, err := validateToken(token, jwtSecret)
			if err != nil {
				logger.WithError(err).Error("Token validation failed")
				writeErrorResponse(w, errors.NewAuthenticationError("Invalid or expired token"), logger)
				return
			}

			ctx := context.WithValue(r.Context(), MemberContextKey, address)
			r = r.WithContext(ctx)

			logger.WithField("member", address).Debug("Member authenticated successfully")

			next.ServeHTTP(w, r)
		})
	}
}

// validateToken parses and verifies an HMAC-signed member token
func validateToken(tokenString, secret string) (string, error) {
	claims := &MemberClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid {
		return "", fmt.Errorf("token is not valid")
	}

	address := claims.Address
	if address == "" {
		address = claims.Subject
	}
	if address == "" {
		return "", fmt.Errorf("token carries no member address")
	}
	return address, nil
}

// MemberFromContext extracts the authenticated member address
func MemberFromContext(ctx context.Context) (string, bool) {
	address, ok := ctx.Value(MemberContextKey).(string)
	return address, ok && address != ""
}

// RequestID creates a middleware that adds a unique request ID to each request
func RequestID(logger *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := generateRequestID()

			ctx := context.WithValue(r.Context(), RequestIDContextKey, requestID)
			r = r.WithContext(ctx)

			w.Header().Set("X-Request-ID", requestID)

			logger = logger.WithField("request_id", requestID)

			next.ServeHTTP(w, r)
		})
	}
}

// generateRequestID generates a simple request ID
func generateRequestID() string {
	return fmt.Sprintf("%d-%d", time.Now().Unix(), time.Now().Nanosecond())
}

// writeErrorResponse writes an error response to the client
func writeErrorResponse(w http.ResponseWriter, appErr *errors.AppError, logger *logger.Logger) {
	logger.WithError(appErr).Error("Request error")

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.StatusCode)

	response := &errors.ErrorResponse{}
	response.Error.Type = appErr.Type
	response.Error.Message = appErr.Message
	response.Error.Details = appErr.Details
	response.Error.Timestamp = time.Now().UTC().Format(time.RFC3339)

	if err := json.NewEncoder(w).Encode(response); err != nil {
		logger.WithError(err).Error("Failed to encode error response")
	}
}
