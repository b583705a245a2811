package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"foodgram/internal/apperr"
	applog "foodgram/internal/log"
)

// maxBodyBytes bounds request bodies; recipe images arrive base64 encoded.
const maxBodyBytes = 10 << 20

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		applog.Error(r.Context(), "failed to encode json response", "error", err)
	}
}

func writeJSONError(w http.ResponseWriter, r *http.Request, status int, message string) {
	writeJSON(w, r, status, errorResponse{Error: message})
}

// writeError maps service errors onto HTTP responses.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	if verr, ok := apperr.AsValidation(err); ok {
		applog.Debug(r.Context(), "request rejected", "field", verr.Field, "reason", verr.Message)
		writeJSON(w, r, http.StatusBadRequest, errorResponse{Error: verr.Message, Field: verr.Field})
		return
	}

	switch {
	case errors.Is(err, apperr.ErrUnauthenticated):
		writeJSONError(w, r, http.StatusUnauthorized, apperr.ErrUnauthenticated.Error())
	case errors.Is(err, apperr.ErrForbidden):
		writeJSONError(w, r, http.StatusForbidden, err.Error())
	case errors.Is(err, apperr.ErrNotFound):
		writeJSONError(w, r, http.StatusNotFound, err.Error())
	default:
		applog.Error(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeJSONError(w, r, http.StatusInternalServerError, "internal server error")
	}
}

// decodeJSON reads the request body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	decoder := json.NewDecoder(body)
	if err := decoder.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			return apperr.Invalid("", "request body is too large")
		case errors.Is(err, io.EOF):
			return apperr.Invalid("", "request body is empty")
		default:
			applog.Debug(r.Context(), "malformed json body", "error", err)
			return apperr.Invalid("", "malformed JSON body")
		}
	}
	return nil
}

// pathID parses a numeric chi URL parameter. Malformed ids are reported as
// missing entities.
func pathID(r *http.Request, name, entity string) (uint, error) {
	raw := chi.URLParam(r, name)
	value, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || value == 0 {
		applog.Debug(r.Context(), "invalid path id", "entity", entity, "value", raw)
		return 0, apperr.NotFound(entity)
	}
	return uint(value), nil
}
