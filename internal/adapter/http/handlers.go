package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/sonntkms/taskapproval/internal/domain"
	"github.com/sonntkms/taskapproval/internal/domain/approval"
)

const defaultBodyLimit = 1 << 20 // 1 MB

// ApprovalAPI is the service surface served by the handlers.
type ApprovalAPI interface {
	StartApprovalRequest(ctx context.Context, req approval.Request) (approval.ResponseMessage, error)
	PerformApprovalAction(ctx context.Context, req approval.ActionRequest, approved bool) (approval.ResponseMessage, error)
	GetInstance(ctx context.Context, instanceID string) (*approval.InstanceMetadata, error)
	ListActions(ctx context.Context, instanceID string) ([]approval.ActionEntry, error)
}

// ConnectionChecker reports whether a backing connection is up.
type ConnectionChecker interface {
	IsConnected() bool
}

// StateReporter reports a circuit breaker state.
type StateReporter interface {
	State() string
}

// Handlers holds the HTTP handlers and their dependencies.
type Handlers struct {
	Approvals ApprovalAPI
	Queue     ConnectionChecker
	Breaker   StateReporter
	BodyLimit int64
}

func (h *Handlers) bodyLimit() int64 {
	if h.BodyLimit > 0 {
		return h.BodyLimit
	}
	return defaultBodyLimit
}

// StartApproval handles POST /api/v1/approvals.
func (h *Handlers) StartApproval(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[approval.Request](w, r, h.bodyLimit())
	if !ok {
		return
	}
	msg, err := h.Approvals.StartApprovalRequest(r.Context(), req)
	writeResult(w, r, msg, err)
}

// Approve handles POST /api/v1/approvals/approve.
func (h *Handlers) Approve(w http.ResponseWriter, r *http.Request) {
	h.action(w, r, true)
}

// Reject handles POST /api/v1/approvals/reject.
func (h *Handlers) Reject(w http.ResponseWriter, r *http.Request) {
	h.action(w, r, false)
}

func (h *Handlers) action(w http.ResponseWriter, r *http.Request, approved bool) {
	req, ok := readJSON[approval.ActionRequest](w, r, h.bodyLimit())
	if !ok {
		return
	}
	msg, err := h.Approvals.PerformApprovalAction(r.Context(), req, approved)
	writeResult(w, r, msg, err)
}

// GetApproval handles GET /api/v1/approvals/{instanceId}.
func (h *Handlers) GetApproval(w http.ResponseWriter, r *http.Request) {
	id := urlParam(r, "instanceId")
	meta, err := h.Approvals.GetInstance(r.Context(), id)
	if errors.Is(err, domain.ErrNotFound) || (err == nil && meta == nil) {
		writeJSON(w, http.StatusNotFound, approval.NotFound(id))
		return
	}
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, meta)
}

// ListApprovalActions handles GET /api/v1/approvals/{instanceId}/actions.
func (h *Handlers) ListApprovalActions(w http.ResponseWriter, r *http.Request) {
	actions, err := h.Approvals.ListActions(r.Context(), urlParam(r, "instanceId"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, actions)
}

type healthStatus struct {
	Status  string `json:"status"`
	NATS    string `json:"nats,omitempty"`
	Breaker string `json:"smtp_breaker,omitempty"`
}

// Health handles GET /health. A lost NATS connection reports 503.
func (h *Handlers) Health(w http.ResponseWriter, _ *http.Request) {
	status := healthStatus{Status: "ok"}
	code := http.StatusOK
	if h.Queue != nil {
		status.NATS = "connected"
		if !h.Queue.IsConnected() {
			status.NATS = "disconnected"
			status.Status = "degraded"
			code = http.StatusServiceUnavailable
		}
	}
	if h.Breaker != nil {
		status.Breaker = h.Breaker.State()
	}
	writeJSON(w, code, status)
}
