package res

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// ErrorResponse is the JSON shape for error replies.
type ErrorResponse struct {
	Error     string `json:"error"`                // message shown to the user
	ErrorCode int    `json:"error_code,omitempty"` // code for programmatic handling
	Details   any    `json:"details,omitempty"`    // e.g. validation errors per field
}

// JsonResponse sends a JSON response with the given status.
func JsonResponse(w http.ResponseWriter, data any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// JsonErrorResponse sends a JSON error response and logs it.
func JsonErrorResponse(w http.ResponseWriter, errResponse ErrorResponse, status int, log *zap.Logger) {
	JsonResponse(w, errResponse, status)
	log.Error("request failed", zap.Int("status", status), zap.Any("response", errResponse))
}
