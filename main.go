package main

import (
	"context"
	"fmt"
	"log" // Use standard log only for errors reported outside the app logger
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"optionTracker/config"
	"optionTracker/internal/adapters/httpapi"
	"optionTracker/internal/adapters/logger"
	"optionTracker/internal/adapters/sqlite"
	"optionTracker/internal/app"
	"optionTracker/internal/monitor"
	"optionTracker/internal/ports"
)

func main() {
	if err := run(); err != nil {
		log.Printf("FATAL: %v", err)
		os.Exit(1)
	}
}

// run wires and runs the tracker. Returning instead of exiting lets the
// deferred store and log file closes run on every path.
func run() error {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// 2. Initialize Logger
	var appLogger ports.Logger
	if cfg.LogFile != "" {
		fileLogger := logger.NewFileLogger(cfg.LogLevel, logger.FileConfig{
			Path:       cfg.LogFile,
			MaxSizeMB:  cfg.LogMaxSizeMB,
			MaxBackups: cfg.LogMaxBackups,
			MaxAgeDays: cfg.LogMaxAgeDays,
		})
		defer fileLogger.Close()
		appLogger = fileLogger
	} else {
		appLogger = logger.NewStdLogger(cfg.LogLevel)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	appLogger.Info(ctx, "Logger initialized", map[string]interface{}{"level": cfg.LogLevel.String(), "file": cfg.LogFile})

	// 3. Initialize Trade Store
	repo, err := sqlite.NewRepository(sqlite.Config{
		DBPath: cfg.DBPath,
		Logger: appLogger,
	})
	if err != nil {
		appLogger.Error(ctx, err, "FATAL: Failed to initialize trade store")
		return fmt.Errorf("failed to initialize trade store: %w", err)
	}
	defer func() {
		if err := repo.Close(); err != nil {
			appLogger.Error(context.Background(), err, "Error closing trade store")
		}
	}()

	// 4. Initialize Trade Service
	svc, err := app.NewTradeService(repo, appLogger)
	if err != nil {
		appLogger.Error(ctx, err, "FATAL: Failed to initialize trade service")
		return fmt.Errorf("failed to initialize trade service: %w", err)
	}

	// 5. Initialize Lifecycle Monitor
	mon, err := monitor.New(monitor.Config{
		Store:    repo,
		Logger:   appLogger,
		Interval: cfg.MonitorInterval,
	})
	if err != nil {
		appLogger.Error(ctx, err, "FATAL: Failed to initialize trade monitor")
		return fmt.Errorf("failed to initialize trade monitor: %w", err)
	}

	// 6. Initialize HTTP Server
	srv, err := httpapi.NewServer(httpapi.Config{
		Addr:    cfg.HTTPAddr,
		Service: svc,
		Monitor: mon,
		Logger:  appLogger,
	})
	if err != nil {
		appLogger.Error(ctx, err, "FATAL: Failed to initialize HTTP server")
		return fmt.Errorf("failed to initialize HTTP server: %w", err)
	}

	// 7. Run monitor and server until a signal arrives or the server fails
	group, gctx := errgroup.WithContext(ctx)
	mon.Start(gctx)
	group.Go(func() error {
		<-gctx.Done()
		mon.Stop()
		return nil
	})
	group.Go(func() error {
		return srv.Run(gctx)
	})

	if err := group.Wait(); err != nil {
		appLogger.Error(context.Background(), err, "Trade tracker exited with error")
		return err
	}
	appLogger.Info(context.Background(), "Application finished gracefully.")
	return nil
}
