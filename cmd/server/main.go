// Package main is the entry point for the missiond server.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"missionplane/internal/config"
	"missionplane/internal/executor"
	"missionplane/internal/logger"
	"missionplane/internal/mission"
	"missionplane/internal/observability"
	"missionplane/internal/scheduler"
	"missionplane/internal/server"
	"missionplane/internal/store"
	"missionplane/internal/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel)
	ctx := context.Background()

	// Tracing (optional; skipped when no collector is configured)
	if cfg.OTELEndpoint != "" {
		shutdownTracer, err := observability.InitTracer(ctx, "missiond", cfg.OTELEndpoint)
		if err != nil {
			log.Error("failed to init tracing", slog.Any("err", err))
			os.Exit(1)
		}
		defer func() {
			if err := shutdownTracer(context.Background()); err != nil {
				log.Warn("failed to shutdown tracer", slog.Any("err", err))
			}
		}()
	}

	// Metrics
	metricsHandler, shutdownMetrics, err := observability.InitMetrics()
	if err != nil {
		log.Error("failed to init metrics", slog.Any("err", err))
		os.Exit(1)
	}
	defer func() {
		if err := shutdownMetrics(context.Background()); err != nil {
			log.Warn("failed to shutdown metrics", slog.Any("err", err))
		}
	}()

	// Persistence
	missions := store.NewMissionStore(cfg.DataDir, log)
	defer missions.Close()
	states := store.NewStateStore(cfg.DataDir, log)

	// Domain
	svc := mission.NewService(missions, log)
	emitter := telemetry.NewEmitter(cfg.TelemetryEnabled, log)

	exec := scheduler.NoopExecutor
	if cfg.ShellExecutor {
		exec = executor.NewShell(nil)
	}
	sched := scheduler.New(svc, states, emitter, log,
		scheduler.WithInterval(cfg.PollingInterval),
		scheduler.WithExecutor(exec),
	)
	defer sched.Destroy()

	// Observable gauges that read the snapshot only when scraped.
	meter := otel.Meter("missiond")
	_, err = meter.Int64ObservableGauge("missiond.scheduler.active_runs",
		metric.WithDescription("Number of missions currently executing"),
		metric.WithInt64Callback(func(ctx context.Context, obs metric.Int64Observer) error {
			obs.Observe(int64(sched.Snapshot().ActiveRunCount))
			return nil
		}),
	)
	if err != nil {
		log.Warn("failed to register active runs metric", slog.Any("err", err))
	}
	_, err = meter.Int64ObservableGauge("missiond.scheduler.last_tick_duration_ms",
		metric.WithDescription("Duration of the last scheduler tick in milliseconds"),
		metric.WithInt64Callback(func(ctx context.Context, obs metric.Int64Observer) error {
			obs.Observe(sched.Snapshot().LastTickDurationMs)
			return nil
		}),
	)
	if err != nil {
		log.Warn("failed to register tick duration metric", slog.Any("err", err))
	}

	if cfg.Enabled && cfg.SchedulerEnabled {
		if err := sched.Start(); err != nil {
			log.Error("failed to start scheduler", slog.Any("err", err))
			os.Exit(1)
		}
	} else {
		log.Info("scheduler not started",
			slog.Bool("missions_enabled", cfg.Enabled), slog.Bool("scheduler_enabled", cfg.SchedulerEnabled))
	}

	addr := fmt.Sprintf(":%d", cfg.HTTPPort)
	srv := server.New(addr, svc, sched, missions, cfg, log, metricsHandler)

	go func() {
		log.Info("missiond starting", slog.String("addr", addr), slog.String("data_dir", cfg.DataDir))
		if err := srv.Run(ctx); err != nil {
			log.Error("server stopped", slog.Any("err", err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", slog.Any("err", err))
	}
	if err := sched.Stop(); err != nil {
		log.Warn("scheduler stop failed", slog.Any("err", err))
	}
	log.Info("server exited")
}
