package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/edvin/backhaul/internal/api/handler"
	mw "github.com/edvin/backhaul/internal/api/middleware"
	"github.com/edvin/backhaul/internal/core"
	"github.com/edvin/backhaul/internal/orchestrator"
	"github.com/edvin/backhaul/internal/scheduler"
)

type Server struct {
	router   chi.Router
	logger   zerolog.Logger
	services *core.Services
	pool     *pgxpool.Pool
	orch     *orchestrator.Orchestrator
	engine   *scheduler.Engine
}

func NewServer(logger zerolog.Logger, pool *pgxpool.Pool, services *core.Services, orch *orchestrator.Orchestrator, engine *scheduler.Engine) *Server {
	s := &Server{
		router:   chi.NewRouter(),
		logger:   logger,
		services: services,
		pool:     pool,
		orch:     orch,
		engine:   engine,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(mw.RequestLogger(s.logger))
	s.router.Use(middleware.Recoverer)
	s.router.Use(mw.Metrics)
}

func (s *Server) setupRoutes() {
	s.router.Handle("/metrics", promhttp.Handler())

	s.router.Get("/healthz", s.handleHealthz)
	s.router.Get("/readyz", s.handleReadyz)

	s.router.Route("/api/v1", func(r chi.Router) {
		dashboard := handler.NewDashboard(s.services.Dashboard)
		r.Get("/dashboard/stats", dashboard.Stats)

		servers := handler.NewServer(s.services.Server)
		r.Get("/servers", servers.List)
		r.Post("/servers", servers.Create)
		r.Get("/servers/{id}", servers.Get)
		r.Put("/servers/{id}", servers.Update)
		r.Delete("/servers/{id}", servers.Delete)

		backups := handler.NewBackup(s.services.Server, s.services.BackupJob, s.orch)
		r.Post("/servers/{id}/backups", backups.Run)
		r.Get("/servers/{id}/backups", backups.ListByServer)
		r.Get("/backups/{id}", backups.Get)

		schedules := handler.NewSchedule(s.services.Schedule, s.engine)
		r.Get("/schedules", schedules.List)
		r.Post("/schedules", schedules.Create)
		r.Get("/schedules/active", schedules.Active)
		r.Get("/schedules/{id}", schedules.Get)
		r.Put("/schedules/{id}", schedules.Update)
		r.Delete("/schedules/{id}", schedules.Delete)
		r.Post("/schedules/{id}/run", schedules.RunNow)

		settings := handler.NewSettings(s.services.Settings)
		r.Get("/settings", settings.Get)
		r.Put("/settings", settings.Update)
	})
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	if err := s.pool.Ping(r.Context()); err != nil {
		http.Error(w, "database unavailable", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ready"))
}
