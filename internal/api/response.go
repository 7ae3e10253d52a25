package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"pointsbot/internal/rewards"
)

const (
	ErrCodeInvalidRequest    = "INVALID_REQUEST"
	ErrCodeUnauthorized      = "UNAUTHORIZED"
	ErrCodeNotFound          = "NOT_FOUND"
	ErrCodeInternal          = "INTERNAL_ERROR"
	ErrCodeRateLimitExceeded = "RATE_LIMIT_EXCEEDED"

	ErrCodeTokenNotFound  = "TOKEN_NOT_FOUND"
	ErrCodeTokenUsed      = "TOKEN_USED"
	ErrCodeTokenExpired   = "TOKEN_EXPIRED"
	ErrCodeDailyLimit     = "DAILY_LIMIT_REACHED"
	ErrCodeKeysNotReady   = "KEYS_NOT_READY"
	ErrCodeInvalidKey     = "INVALID_KEY"
	ErrCodeAlreadyClaimed = "ALREADY_CLAIMED"
)

type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
		},
	})
}

func badRequest(w http.ResponseWriter, message string) {
	writeError(w, http.StatusBadRequest, ErrCodeInvalidRequest, message)
}

func unauthorized(w http.ResponseWriter, message string) {
	writeError(w, http.StatusUnauthorized, ErrCodeUnauthorized, message)
}

func internalError(w http.ResponseWriter) {
	writeError(w, http.StatusInternalServerError, ErrCodeInternal, "An internal error occurred")
}

// writeOutcomeError renders a recoverable rewards outcome with its fixed
// user-facing message. Returns false when err is not a recoverable kind.
func writeOutcomeError(w http.ResponseWriter, err error) bool {
	var status int
	var code string

	switch {
	case errors.Is(err, rewards.ErrTokenNotFound):
		status, code = http.StatusNotFound, ErrCodeTokenNotFound
	case errors.Is(err, rewards.ErrTokenUsed):
		status, code = http.StatusConflict, ErrCodeTokenUsed
	case errors.Is(err, rewards.ErrTokenExpired):
		status, code = http.StatusGone, ErrCodeTokenExpired
	case errors.Is(err, rewards.ErrDailyLimit):
		status, code = http.StatusTooManyRequests, ErrCodeDailyLimit
	case errors.Is(err, rewards.ErrKeysNotReady):
		status, code = http.StatusServiceUnavailable, ErrCodeKeysNotReady
	case errors.Is(err, rewards.ErrInvalidKey):
		status, code = http.StatusNotFound, ErrCodeInvalidKey
	case errors.Is(err, rewards.ErrKey1AlreadyClaimed), errors.Is(err, rewards.ErrKey2AlreadyClaimed):
		status, code = http.StatusConflict, ErrCodeAlreadyClaimed
	default:
		return false
	}

	writeError(w, status, code, rewards.UserMessage(err))
	return true
}
