package req

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/SufyanAli-7/Genix-AI/pkg/res"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

var validate = validator.New()

// Decode decodes JSON from an io.ReadCloser into a value of type T.
func Decode[T any](body io.ReadCloser) (T, error) {
	var payload T
	if err := json.NewDecoder(body).Decode(&payload); err != nil {
		return payload, err
	}
	return payload, nil
}

// IsValid validates a value of type T against its validate tags.
func IsValid[T any](payload T) error {
	return validate.Struct(payload)
}

// HandleBody decodes and validates a request body, writing the error
// response itself when either step fails.
func HandleBody[T any](w http.ResponseWriter, r *http.Request, log *zap.Logger) (*T, error) {
	body, err := Decode[T](r.Body)
	if err != nil {
		log.Warn("failed to decode request body", zap.Error(err))
		res.JsonResponse(w, res.ErrorResponse{Error: "malformed request body"}, http.StatusUnprocessableEntity)
		return nil, err
	}

	if err := IsValid(body); err != nil {
		log.Warn("request body failed validation", zap.Error(err))
		res.JsonResponse(w, res.ErrorResponse{Error: "invalid request data", Details: err.Error()}, http.StatusUnprocessableEntity)
		return nil, err
	}
	return &body, nil
}
