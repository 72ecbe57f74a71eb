package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/flav-dev/flav/internal/model"
)

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Deleted *bool  `json:"deleted,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps typed model errors to status codes. Validation is checked
// first: an unknown reference inside a request body is a bad request even
// though it also matches ErrNotFound.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, model.ErrValidation):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error(), Code: "VALIDATION_ERROR"})
	case errors.Is(err, model.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: err.Error(), Code: "NOT_FOUND"})
	case errors.Is(err, model.ErrIntegrity):
		s.logger.Error("integrity violation", "method", r.Method, "path", r.URL.Path, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: err.Error(), Code: "INTEGRITY_ERROR"})
	default:
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error", Code: "INTERNAL_ERROR"})
	}
}

// writeDeleted reports the boolean result of a delete: 200 when something
// was removed, 404 otherwise.
func writeDeleted(w http.ResponseWriter, deleted bool, kind, id string) {
	if deleted {
		writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
		return
	}
	writeJSON(w, http.StatusNotFound, errorBody{
		Error:   fmt.Sprintf("%s %q not found", kind, id),
		Code:    "NOT_FOUND",
		Deleted: &deleted,
	})
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: fmt.Sprintf("decoding request body: %v", err), Code: "BAD_REQUEST"})
		return false
	}
	return true
}

// optionalString distinguishes an absent field from an explicit null.
// Set is true for both "x" and null; null leaves Value empty.
type optionalString struct {
	Set   bool
	Value string
}

func (o *optionalString) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Value = ""
		return nil
	}
	return json.Unmarshal(data, &o.Value)
}

func (o optionalString) ptr() *string {
	if !o.Set {
		return nil
	}
	v := o.Value
	return &v
}
