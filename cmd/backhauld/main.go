package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/edvin/backhaul/internal/api"
	"github.com/edvin/backhaul/internal/config"
	"github.com/edvin/backhaul/internal/core"
	"github.com/edvin/backhaul/internal/db"
	"github.com/edvin/backhaul/internal/logging"
	"github.com/edvin/backhaul/internal/metrics"
	"github.com/edvin/backhaul/internal/orchestrator"
	"github.com/edvin/backhaul/internal/remote"
	"github.com/edvin/backhaul/internal/scheduler"
)

func main() {
	migrateFlag := flag.Bool("migrate", false, "Run database migrations before starting")
	migrateDirFlag := flag.String("migrate-dir", "migrations", "Migration files directory")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewLogger(cfg)

	if *migrateFlag {
		logger.Info().Str("dir", *migrateDirFlag).Msg("running database migrations")
		if err := db.RunMigrations(cfg.DatabaseURL, *migrateDirFlag); err != nil {
			logger.Fatal().Err(err).Msg("migration failed")
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	metrics.RegisterPgxPoolMetrics(pool)

	services := core.NewServices(pool)

	dialer := remote.NewSSHDialer(time.Duration(cfg.SSHConnectTimeoutSeconds) * time.Second)
	orch := orchestrator.New(dialer, services.BackupJob, services.Settings, cfg.DefaultBackupDir, logger)

	engine := scheduler.New(services.Schedule, services.Server, services.BackupJob, orch, cfg.SchedulerTimezone, logger)
	engine.Start()
	defer engine.Stop()

	// Rebuild the timer registry from the store.
	if err := engine.LoadJobs(ctx); err != nil {
		logger.Fatal().Err(err).Msg("failed to load schedules")
	}

	srv := api.NewServer(logger, pool, services, orch, engine)

	httpServer := &http.Server{
		Addr:         cfg.HTTPListenAddr,
		Handler:      srv,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", cfg.HTTPListenAddr).Msg("starting API server")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	httpServer.Shutdown(shutdownCtx)
}
