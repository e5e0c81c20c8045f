// Package server wires the mission API onto an HTTP server.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"missionplane/internal/config"
	"missionplane/internal/mission"
	"missionplane/internal/scheduler"
	"missionplane/internal/server/handlers"
	"missionplane/internal/server/middleware"
)

// Server is the HTTP server for the mission API.
type Server struct {
	httpServer *http.Server
}

// New creates the server with all mission routes registered.
func New(addr string, svc *mission.Service, sched *scheduler.Scheduler, store handlers.Pinger, cfg *config.Config, log *slog.Logger, metricsHandler http.Handler) *Server {
	h := handlers.New(svc, sched, store, cfg, log)

	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/missions", h.ListMissions)
	mux.HandleFunc("POST /api/missions", h.CreateMission)
	mux.HandleFunc("GET /api/missions/state", h.SchedulerState)
	mux.HandleFunc("GET /api/missions/{id}", h.GetMission)
	mux.HandleFunc("PATCH /api/missions/{id}", h.UpdateMission)
	mux.HandleFunc("DELETE /api/missions/{id}", h.DeleteMission)
	mux.HandleFunc("POST /api/missions/{id}/run", h.RunMission)
	mux.HandleFunc("POST /api/missions/tick", h.Tick)
	mux.HandleFunc("POST /api/missions/start", h.StartScheduler)
	mux.HandleFunc("POST /api/missions/stop", h.StopScheduler)

	mux.HandleFunc("GET /healthz", h.Healthz)
	mux.HandleFunc("GET /readyz", h.Readyz)
	if metricsHandler != nil {
		mux.Handle("GET /metrics", metricsHandler)
	}

	var handler http.Handler = mux
	handler = middleware.RateLimit(cfg.RateLimit, cfg.RateLimitBurst)(handler)
	handler = middleware.RequestID(handler)

	return &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      handler,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
	}
}

// Run starts the HTTP server. It blocks until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	serverErr := make(chan error, 1)

	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
		shutDownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		return s.Shutdown(shutDownCtx)
	}
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
