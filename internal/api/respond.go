package api

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	apperrors "github.com/halcyonlabs/inneros/internal/platform/errors"
)

// maxRequestBytes caps how much of a request body is read into memory.
const maxRequestBytes = 1 << 20

type errorBody struct {
	Code     string            `json:"code"`
	Message  string            `json:"message"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	body := errorBody{
		Code:    string(apperrors.CodeOf(err)),
		Message: err.Error(),
	}
	var domainErr *apperrors.Error
	if errors.As(err, &domainErr) {
		body.Message = domainErr.Message
		body.Metadata = domainErr.Metadata
	}
	writeJSON(w, apperrors.HTTPStatusOf(err), errorEnvelope{Error: body})
}

func decodeJSON(r *http.Request, target any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBytes))
	if err != nil {
		return apperrors.New(apperrors.CodeInvalidArgument, "read request body")
	}
	if len(body) == 0 {
		return apperrors.New(apperrors.CodeInvalidArgument, "request body is required")
	}
	if err := json.Unmarshal(body, target); err != nil {
		return apperrors.New(apperrors.CodeInvalidArgument, "request body is not valid json")
	}
	return nil
}
