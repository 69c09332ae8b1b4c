package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/petroflow/petroflow/internal/auth"
	"github.com/petroflow/petroflow/internal/clients"
	"github.com/petroflow/petroflow/internal/dashboard"
	"github.com/petroflow/petroflow/internal/deliveries"
	"github.com/petroflow/petroflow/internal/drivers"
	"github.com/petroflow/petroflow/internal/observability"
	"github.com/petroflow/petroflow/internal/orders"
	"github.com/petroflow/petroflow/internal/shared"
	"github.com/petroflow/petroflow/internal/tankers"
	"github.com/petroflow/petroflow/jobs"
	"github.com/petroflow/petroflow/report"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	SessionManager *shared.SessionManager
	CSRFManager    *shared.CSRFManager

	AuthHandler       *auth.Handler
	ClientsHandler    *clients.Handler
	DriversHandler    *drivers.Handler
	TankersHandler    *tankers.Handler
	OrdersHandler     *orders.Handler
	DeliveriesHandler *deliveries.Handler
	DashboardHandler  *dashboard.Handler
	JobHandler        *jobs.Handler
	ReportHandler     *report.Handler
	Metrics           *observability.Metrics
}

// NewRouter constructs the chi.Router with Petroflow defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/auth", params.AuthHandler.MountRoutes)

	r.Group(func(r chi.Router) {
		r.Use(RequireAuth)
		r.Route("/clients", params.ClientsHandler.MountRoutes)
		r.Route("/drivers", params.DriversHandler.MountRoutes)
		r.Route("/tankers", params.TankersHandler.MountRoutes)
		r.Route("/orders", params.OrdersHandler.MountRoutes)
		r.Route("/deliveries", params.DeliveriesHandler.MountRoutes)
		r.Route("/dashboard", params.DashboardHandler.MountRoutes)
	})

	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}
	if params.ReportHandler != nil {
		r.Route("/report", params.ReportHandler.MountRoutes)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
