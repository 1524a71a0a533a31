package main

import (
	"database/sql"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/crucial707/threatwatch/internal/config"
	"github.com/crucial707/threatwatch/internal/handlers"
	"github.com/crucial707/threatwatch/internal/middleware"
	"github.com/crucial707/threatwatch/internal/queue"
	"github.com/crucial707/threatwatch/internal/repo"
)

// newRouter builds the full HTTP router: public health and metrics endpoints
// plus the JWT-protected /api routes.
func newRouter(database *sql.DB, cfg config.Config) http.Handler {
	monitorHandler := &handlers.MonitorHandler{
		Repo:  repo.NewMonitorRepo(database),
		Queue: queue.NewPG(database),
	}
	reportHandler := &handlers.ReportHandler{Repo: repo.NewReportRepo(database)}
	auditHandler := &handlers.AuditHandler{Repo: repo.NewSearchAuditRepo(database)}

	createLimiter := middleware.MonitorCreateLimiter()

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestLog)
	r.Use(middleware.Prometheus)
	r.Use(middleware.SecurityHeaders(cfg.TLSCertFile != "" && cfg.TLSKeyFile != ""))
	r.Use(middleware.CORS(nil))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(api chi.Router) {
		api.Use(middleware.JWTMiddleware([]byte(cfg.JWTSecret)))
		api.Use(middleware.MaxBytes(middleware.DefaultMaxBodyBytes))

		api.Route("/monitors", func(m chi.Router) {
			m.With(createLimiter.Middleware).Post("/", monitorHandler.CreateMonitor)
			m.Get("/", monitorHandler.ListMonitors)
			m.Get("/{id}", monitorHandler.GetMonitor)
			m.Delete("/{id}", monitorHandler.DeactivateMonitor)
		})

		api.Route("/reports", func(rep chi.Router) {
			rep.Get("/", reportHandler.ListReports)
			rep.Get("/{id}", reportHandler.GetReport)
			rep.Get("/{id}/download", reportHandler.DownloadReport)
		})

		api.Get("/audit", auditHandler.ListAuditRecords)
	})

	return r
}
