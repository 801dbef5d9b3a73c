package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"borderland-arena/internal/domain"
	"borderland-arena/internal/service"
	"borderland-arena/pkg/errors"
	"borderland-arena/pkg/logger"
	"github.com/google/uuid"
)

// ContextKey represents keys used in request context
type ContextKey string

const (
	// SessionContextKey holds the team's *domain.Session
	SessionContextKey ContextKey = "session"
	// AdminContextKey holds the signed-in *domain.AdminProfile
	AdminContextKey ContextKey = "admin"
	// RequestIDContextKey is the key for request ID in context
	RequestIDContextKey ContextKey = "request_id"
)

// TeamSession requires a valid team session token. EventSource and WebSocket
// clients cannot set headers, so a token query parameter is accepted too.
func TeamSession(sessions service.SessionService, logger *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, appErr := extractToken(r)
			if appErr != nil {
				writeErrorResponse(w, r, appErr, logger)
				return
			}

			session, err := sessions.Parse(r.Context(), token)
			if err != nil {
				logger.WithError(err).Debug("Session validation failed")
				writeErrorResponse(w, r, errors.NewAuthenticationError("Invalid or expired session"), logger)
				return
			}

			ctx := context.WithValue(r.Context(), SessionContextKey, session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AdminAuth requires a valid admin token
func AdminAuth(adminAuth service.AdminAuthService, logger *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, appErr := extractToken(r)
			if appErr != nil {
				writeErrorResponse(w, r, appErr, logger)
				return
			}

			admin, err := adminAuth.ValidateToken(r.Context(), token)
			if err != nil {
				logger.WithError(err).Warn("Admin token validation failed")
				if e, ok := errors.As(err); ok && e.Type == errors.ErrorTypeAuthorization {
					writeErrorResponse(w, r, e, logger)
					return
				}
				writeErrorResponse(w, r, errors.NewAuthenticationError("Invalid or expired token"), logger)
				return
			}

			ctx := context.WithValue(r.Context(), AdminContextKey, admin)
			r = r.WithContext(ctx)

			logger.WithField("admin", admin.Email).Debug("Admin authenticated")
			next.ServeHTTP(w, r)
		})
	}
}

// SessionFromContext returns the team session set by TeamSession
func SessionFromContext(ctx context.Context) (*domain.Session, bool) {
	session, ok := ctx.Value(SessionContextKey).(*domain.Session)
	return session, ok && session != nil
}

// AdminFromContext returns the admin set by AdminAuth
func AdminFromContext(ctx context.Context) (*domain.AdminProfile, bool) {
	admin, ok := ctx.Value(AdminContextKey).(*domain.AdminProfile)
	return admin, ok && admin != nil
}

// RequestID creates a middleware that adds a unique request ID to each request
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" || len(requestID) > 64 {
			requestID = uuid.NewString()
		}

		ctx := context.WithValue(r.Context(), RequestIDContextKey, requestID)
		w.Header().Set("X-Request-ID", requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequestIDFromContext returns the id set by RequestID
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(RequestIDContextKey).(string)
	return id
}

func extractToken(r *http.Request) (string, *errors.AppError) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		if token := r.URL.Query().Get("token"); token != "" {
			return token, nil
		}
		return "", errors.NewAuthenticationError("Authorization header is required")
	}

	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", errors.NewAuthenticationError("Invalid authorization header format")
	}

	token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	if token == "" {
		return "", errors.NewAuthenticationError("Token is required")
	}
	return token, nil
}

// writeErrorResponse writes an error response to the client
func writeErrorResponse(w http.ResponseWriter, r *http.Request, appErr *errors.AppError, logger *logger.Logger) {
	requestID := RequestIDFromContext(r.Context())
	logger.WithError(appErr).WithField("request_id", requestID).Debug("Request rejected")

	response := &errors.ErrorResponse{}
	response.Error.Type = appErr.Type
	response.Error.Message = appErr.Message
	response.Error.Details = appErr.Details
	response.Error.RequestID = requestID
	response.Error.Timestamp = time.Now().UTC().Format(time.RFC3339)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.StatusCode)
	_ = json.NewEncoder(w).Encode(response)
}
