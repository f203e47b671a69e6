package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	corecfg "github.com/paytrace-lab/paytrace/internal/core/config"
	"github.com/paytrace-lab/paytrace/internal/core/storage/postgres"
	"github.com/paytrace-lab/paytrace/internal/migrations"
	"github.com/paytrace-lab/paytrace/internal/recording"
	"github.com/paytrace-lab/paytrace/internal/retention"
	"github.com/paytrace-lab/paytrace/internal/server"
	"github.com/paytrace-lab/paytrace/internal/timeline"
	"github.com/paytrace-lab/paytrace/internal/trace"
	"golang.org/x/sync/errgroup"
)

func main() {
	configPath := flag.String("config", "paytrace.yaml", "Path to configuration file")
	flag.Parse()

	// 0. Initialize Logger
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// 1. Load Configuration
	cfg, err := corecfg.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	slog.Info("Loaded config",
		"tracing_enabled", cfg.Tracing.Enabled,
		"tracing_async", cfg.Tracing.Async,
		"retention_enabled", cfg.Retention.Enabled,
	)

	// 2. Open Storage (PostgreSQL) and run migrations before preparing
	// statements against the tables they create.
	db, err := postgres.Open(cfg.Database.DSN, cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns)
	if err != nil {
		slog.Error("Failed to open database", "error", err)
		os.Exit(1)
	}

	if err := migrations.RunMigrations(db, cfg.Database.AutoMigrate); err != nil {
		db.Close()
		slog.Error("Failed to run database migrations", "error", err)
		os.Exit(1)
	}

	store, err := postgres.NewAdapter(db)
	if err != nil {
		slog.Error("Failed to initialize trace store", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	// 3. Recording pipeline
	var queue *trace.Queue
	if cfg.Tracing.Async {
		queue = trace.NewQueue(store, cfg.Tracing.QueueSize)
	}
	recorder := trace.NewRecorder(store, queue, trace.Config{
		Enabled:           cfg.Tracing.Enabled,
		Async:             cfg.Tracing.Async,
		SensitiveFields:   cfg.Tracing.SensitiveFields,
		MaxRedactionDepth: cfg.Tracing.MaxRedactionDepth,
	})

	// 4. Timeline read side
	builder := timeline.NewBuilder(store, timeline.AnalyzerConfig{
		SlowResponseThresholdMs: cfg.Tracing.SlowResponseThresholdMs,
		LatencyThresholdMs:      cfg.Tracing.LatencyThresholdMs,
		OrphanWindow:            time.Duration(cfg.Tracing.OrphanWindowSeconds) * time.Second,
	})

	// 5. HTTP surface
	recordingSvc := recording.NewService(recorder, builder, cfg.Server.MaxBodySizeMB)
	srv := server.New(fmtAddr(cfg.Server.Host, cfg.Server.Port), store.DB(), cfg.Server.Mode)
	recordingSvc.RegisterRoutes(srv.Engine)

	// 6. Start everything under one cancellation scope.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)

	if queue != nil {
		g.Go(func() error {
			return queue.Start(gctx)
		})
	}

	if cfg.Retention.Enabled {
		interval, err := cfg.Retention.PruneInterval()
		if err != nil {
			slog.Error("Invalid retention interval", "error", err)
			os.Exit(1)
		}
		pruner := retention.New(
			store,
			time.Duration(cfg.Retention.MaxAgeDays)*24*time.Hour,
			interval,
			cfg.Retention.ChunkSize,
		)
		g.Go(func() error {
			return pruner.Start(gctx)
		})
	} else {
		slog.Info("Retention pruner disabled by config")
	}

	g.Go(func() error {
		return srv.Run(gctx)
	})

	// Signal handler triggers the shutdown sequence.
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		slog.Info("Signal received, shutting down...")
		cancel()
	}()

	if err := g.Wait(); err != nil {
		slog.Error("Service stopped with error", "error", err)
	}

	slog.Info("Shutdown complete")
}

func fmtAddr(host string, port int) string {
	return fmt.Sprintf("%s:%d", host, port)
}
