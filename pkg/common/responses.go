package common

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	pkgerrors "hard-backend/pkg/errors"

	"github.com/google/uuid"
)

// MaxBodyBytes caps request bodies accepted by ParseJSONBody.
const MaxBodyBytes int64 = 1 << 20

// RespondJSON sends data as the JSON response body.
func RespondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// ParseJSONBody parses JSON request body with size limit. Malformed or
// oversized bodies are reported as VALIDATION errors.
func ParseJSONBody(w http.ResponseWriter, r *http.Request, v interface{}, maxBytes int64) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return pkgerrors.NewValidationError("Request body is required")
		case errors.As(err, &maxErr):
			return pkgerrors.NewValidationError(fmt.Sprintf("Request body exceeds %d bytes", maxErr.Limit))
		default:
			return pkgerrors.NewValidationError("Invalid request body: " + err.Error())
		}
	}
	return nil
}

// ParseID parses a path or query value as an object id. An empty value
// yields uuid.Nil.
func ParseID(name, value string) (uuid.UUID, error) {
	if value == "" {
		return uuid.Nil, nil
	}
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, pkgerrors.NewValidationError(fmt.Sprintf("%s must be a valid UUID", name))
	}
	return id, nil
}
