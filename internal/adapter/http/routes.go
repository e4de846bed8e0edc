package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	taotel "github.com/sonntkms/taskapproval/internal/adapter/otel"
	"github.com/sonntkms/taskapproval/internal/middleware"
	"github.com/sonntkms/taskapproval/internal/port/cache"
)

// RouterOptions configures the middleware stack of NewRouter.
type RouterOptions struct {
	CORSOrigin     string
	Timeout        time.Duration
	Idempotency    cache.Cache // nil disables Idempotency-Key replay
	IdempotencyTTL time.Duration
	ServiceName    string // non-empty enables otelhttp spans
}

// NewRouter builds the chi router with the middleware stack and all routes.
func NewRouter(h *Handlers, opts RouterOptions) chi.Router {
	r := chi.NewRouter()

	if opts.ServiceName != "" {
		r.Use(taotel.HTTPMiddleware(opts.ServiceName))
	}
	r.Use(CORS(opts.CORSOrigin))
	r.Use(middleware.RequestID)
	r.Use(Logger)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	if opts.Timeout > 0 {
		r.Use(chimw.Timeout(opts.Timeout))
	}

	r.Get("/health", h.Health)

	MountRoutes(r, h, opts)
	return r
}

// MountRoutes registers the approval API on r.
func MountRoutes(r chi.Router, h *Handlers, opts RouterOptions) {
	r.Route("/api/v1/approvals", func(r chi.Router) {
		if opts.Idempotency != nil {
			r.Use(middleware.Idempotency(opts.Idempotency, opts.IdempotencyTTL))
		}

		r.Post("/", h.StartApproval)
		r.Post("/approve", h.Approve)
		r.Post("/reject", h.Reject)
		r.Get("/{instanceId}", h.GetApproval)
		r.Get("/{instanceId}/actions", h.ListApprovalActions)
	})

	r.Get("/api/v1", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"version":"1.0.0"}`))
	})
}
