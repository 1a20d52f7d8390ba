package utils

import (
	"encoding/json"
	"net/http"

	"glow/pkg/logger"
)

const (
	// Request
	ErrRequestInvalid           = "request/invalid_parameters"
	ErrRequestBadRequest        = "request/bad_request"
	ErrRequestNotFound          = "request/not_found"
	ErrRequestRateLimitExceeded = "request/rate_limit_exceeded"
	ErrRequestBodyTooLarge      = "request/body_too_large"
	ErrRequestUnSupportedMedia  = "request/invalid_media"

	// Auth
	ErrAuthRequired        = "auth/authentication_required"
	ErrAuthInvalid         = "auth/invalid_credentials"
	ErrAuthCancelled       = "auth/cancelled"
	ErrAuthRateLimitExceed = "auth/rate_limit_exceeded"
	ErrPermissionDenied    = "permission/denied"

	// Resources
	ErrResourceNotFound = "resource/not_found"
	ErrResourceConflict = "resource/conflict"

	// Configuration and upstreams
	ErrConfigNotConfigured = "config/not_configured"
	ErrNetworkUnreachable  = "network/unreachable"

	// Server
	ErrServerInternal = "server/internal_error"
	ErrServerTimeout  = "server/timeout"

	// Domain
	ErrImageProcessingFailed = "image/processing_failed"
	ErrImageInvalidArea      = "image/invalid_area"
	ErrRSVPNameRequired      = "rsvp/name_required"
	ErrRSVPInvalid           = "rsvp/invalid_attendance"
	ErrRSVPStoreUnavailable  = "rsvp/store_unavailable"
	ErrEditorNotEditing      = "editor/not_editing"
	ErrEditorInvalidValue    = "editor/invalid_value"
	ErrEditorSaveInFlight    = "editor/save_in_flight"
	ErrEditorSessionEnded    = "editor/session_ended"
)

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
}

// WriteError sends the JSON error envelope. 5xx responses are logged.
func WriteError(w http.ResponseWriter, status int, code string, message string) {
	if status >= http.StatusInternalServerError {
		logger.LogError("%s: %s", code, message)
	} else {
		logger.LogDebug("%s: %s", code, message)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(APIError{
		Code:    code,
		Message: message,
		Status:  status,
	})
}

func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// DecodeJSON reads a JSON body of at most limit bytes into v.
func DecodeJSON(w http.ResponseWriter, r *http.Request, limit int64, v interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
