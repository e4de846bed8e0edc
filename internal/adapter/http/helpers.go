package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sonntkms/taskapproval/internal/domain"
	"github.com/sonntkms/taskapproval/internal/domain/approval"
)

// ---------------------------------------------------------------------------
// Request helpers
// ---------------------------------------------------------------------------

// readJSON decodes a JSON request body with a size limit. On failure it
// writes the failure envelope and returns false.
func readJSON[T any](w http.ResponseWriter, r *http.Request, bodyLimit int64) (T, bool) {
	var v T
	r.Body = http.MaxBytesReader(w, r.Body, bodyLimit)
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, approval.Failed(approval.FailureNone, approval.MsgBodyTooLarge))
		} else {
			writeJSON(w, http.StatusBadRequest, approval.Failed(approval.FailureNone, approval.MsgInvalidBody))
		}
		return v, false
	}
	return v, true
}

// urlParam is a short alias for chi.URLParam.
func urlParam(r *http.Request, name string) string {
	return chi.URLParam(r, name)
}

// ---------------------------------------------------------------------------
// Response helpers
// ---------------------------------------------------------------------------

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to write JSON response", "error", err)
	}
}

// statusFor maps a response envelope onto its HTTP status.
func statusFor(msg approval.ResponseMessage) int {
	if msg.OK() {
		return http.StatusOK
	}
	switch msg.Failure {
	case approval.FailureNotFound:
		return http.StatusNotFound
	case approval.FailureAlreadyComplete, approval.FailureDuplicate:
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}

// writeResult writes the envelope returned by a service call, or translates
// the error when the call failed.
func writeResult(w http.ResponseWriter, r *http.Request, msg approval.ResponseMessage, err error) {
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, statusFor(msg), msg)
}

// writeServiceError logs engine and store failures server-side and returns a
// generic envelope to the client.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, domain.ErrConflict) {
		msg := approval.Duplicate()
		writeJSON(w, statusFor(msg), msg)
		return
	}
	slog.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
	writeJSON(w, http.StatusInternalServerError, approval.Failed(approval.FailureNone, approval.MsgInternalError))
}
