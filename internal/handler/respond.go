package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"borderland-arena/internal/middleware"
	"borderland-arena/pkg/errors"
	"borderland-arena/pkg/logger"
)

// maxBodyBytes caps JSON request bodies; code submitted to the sandbox is the largest
const maxBodyBytes = 256 << 10

// respondJSON writes data as a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// respondError writes err as an ErrorResponse. Errors that are not an AppError
// are reported as internal errors without leaking their message.
func respondError(w http.ResponseWriter, r *http.Request, err error, log *logger.Logger) {
	appErr, ok := errors.As(err)
	if !ok {
		appErr = errors.NewInternalError("Internal server error", err)
	}

	requestID := middleware.RequestIDFromContext(r.Context())
	entry := log.WithError(err).WithFields(map[string]interface{}{
		"request_id": requestID,
		"method":     r.Method,
		"path":       r.URL.Path,
		"status":     appErr.StatusCode,
	})
	if appErr.StatusCode >= http.StatusInternalServerError {
		entry.Error("Request failed")
	} else {
		entry.Debug("Request rejected")
	}

	response := &errors.ErrorResponse{}
	response.Error.Type = appErr.Type
	response.Error.Message = appErr.Message
	response.Error.Details = appErr.Details
	response.Error.RequestID = requestID
	response.Error.Timestamp = time.Now().UTC().Format(time.RFC3339)

	respondJSON(w, appErr.StatusCode, response)
}

// decodeJSON reads the request body into dst
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if err == io.EOF {
			return errors.NewValidationError("Request body is required", nil)
		}
		return errors.NewValidationError("Invalid request body", nil).WithCause(err)
	}
	return nil
}
