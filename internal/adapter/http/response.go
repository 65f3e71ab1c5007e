package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/chiwei-platform/lifecycle-tracker/internal/domain"
)

// retryAfterSeconds is sent with 503 responses caused by a failing backend.
const retryAfterSeconds = "30"

type dataEnvelope struct {
	Data any `json:"data"`
}

type errorEnvelope struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(dataEnvelope{Data: data})
}

func writeErrorMessage(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorEnvelope{Error: msg})
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	msg := "internal server error"

	switch {
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
		msg = err.Error()
	case errors.Is(err, domain.ErrAlreadyExists):
		status = http.StatusConflict
		msg = err.Error()
	case errors.Is(err, domain.ErrInvalidInput):
		status = http.StatusBadRequest
		msg = err.Error()
	case errors.Is(err, domain.ErrCannotDelete):
		status = http.StatusUnprocessableEntity
		msg = err.Error()
	case errors.Is(err, domain.ErrCatalogDisabled):
		status = http.StatusServiceUnavailable
		msg = err.Error()
	case errors.Is(err, domain.ErrUnavailable):
		status = http.StatusServiceUnavailable
		msg = "backend temporarily unavailable, retry later"
		w.Header().Set("Retry-After", retryAfterSeconds)
		requestLogger(r).Warn("backend unavailable", zap.Error(err))
	default:
		requestLogger(r).Error("internal error", zap.Error(err))
	}

	writeErrorMessage(w, status, msg)
}

// decodeJSON reads the request body into v. Decoding failures are client errors.
func decodeJSON(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil {
		return nil
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return fmt.Errorf("%w: request body exceeds %d bytes", domain.ErrInvalidInput, tooLarge.Limit)
	}
	if errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: request body is empty: %w", domain.ErrInvalidInput, err)
	}
	return fmt.Errorf("%w: malformed JSON body: %v", domain.ErrInvalidInput, err)
}
