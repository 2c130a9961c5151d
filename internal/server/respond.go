package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/diogenes-ai-code/gtadmin/internal/errors"
)

// maxBodyBytes bounds request bodies; imports are the largest.
const maxBodyBytes = 32 << 20

// ErrorResponse represents an API error.
type ErrorResponse struct {
	Error      string                 `json:"error"`
	Code       int                    `json:"code"`
	Message    string                 `json:"message,omitempty"`
	Suggestion string                 `json:"suggestion,omitempty"`
	Details    map[string]interface{} `json:"details,omitempty"`
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{
		Error:   http.StatusText(status),
		Code:    status,
		Message: message,
	})
}

// writeSharedError writes an error response, mapping shared error kinds
// to their HTTP status. Other errors are 500s.
func writeSharedError(w http.ResponseWriter, err error) {
	e, ok := errors.As(err)
	if !ok {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	status := e.HTTPStatus()
	writeJSON(w, status, ErrorResponse{
		Error:      http.StatusText(status),
		Code:       status,
		Message:    e.Error(),
		Suggestion: e.Suggestion,
		Details:    e.Details,
	})
}

// writeNotFound writes a 404 for a missing entity.
func writeNotFound(w http.ResponseWriter, format string, args ...interface{}) {
	writeError(w, http.StatusNotFound, fmt.Sprintf(format, args...))
}

// decodeJSON decodes the request body into v. Unknown fields are
// rejected so typos in patch keys do not pass silently.
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if err == io.EOF {
			return errors.InvalidArgs("request body is required")
		}
		return errors.InvalidArgs("invalid request body: %v", err)
	}
	return nil
}

// pathInt parses an integer path value.
func pathInt(r *http.Request, name string) (int, error) {
	n, err := strconv.Atoi(r.PathValue(name))
	if err != nil || n <= 0 {
		return 0, errors.InvalidArgs("invalid %s: %q", name, r.PathValue(name))
	}
	return n, nil
}

// pathInt64 parses a 64-bit id path value.
func pathInt64(r *http.Request, name string) (int64, error) {
	n, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || n <= 0 {
		return 0, errors.InvalidArgs("invalid %s: %q", name, r.PathValue(name))
	}
	return n, nil
}
