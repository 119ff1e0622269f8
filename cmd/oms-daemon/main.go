package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/harborline/omscore/internal/adapters/metrics"
	"github.com/harborline/omscore/internal/adapters/persistence"
	appevents "github.com/harborline/omscore/internal/application/events"
	appoutbox "github.com/harborline/omscore/internal/application/outbox"
	"github.com/harborline/omscore/internal/domain/shared"
	"github.com/harborline/omscore/internal/infrastructure/config"
	"github.com/harborline/omscore/internal/infrastructure/database"
)

var configPath string

func main() {
	root := &cobra.Command{
		Use:   "oms-daemon",
		Short: "Order management transactional core",
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to config file")

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the daemon: command dispatcher, event bus and outbox worker",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve()
		},
	})
	root.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			return migrate()
		},
	})

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func migrate() error {
	cfg := config.MustLoadConfig(configPath)

	db, err := database.NewConnection(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close(db)

	if err := database.AutoMigrate(db); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	fmt.Println("schema is up to date")
	return nil
}

func serve() error {
	cfg := config.MustLoadConfig(configPath)
	logger := newLogger(&cfg.Logging)

	logger.Info().Str("database", cfg.Database.Type).Msg("starting oms-daemon")

	db, err := database.NewConnection(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close(db)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	clock := shared.NewRealClock()

	// Metrics are optional; a nil registry disables every collector.
	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
	}
	commandMetrics := metrics.NewCommandMetricsCollector()
	if err := commandMetrics.Register(); err != nil {
		return fmt.Errorf("failed to register command metrics: %w", err)
	}

	outboxRepo := persistence.NewGormOutboxRepository(db)
	outboxMetrics := metrics.NewOutboxMetricsCollector(outboxRepo)
	if err := outboxMetrics.Register(); err != nil {
		return fmt.Errorf("failed to register outbox metrics: %w", err)
	}

	bus := appevents.NewBus(cfg.EventBus.BufferSize, logger)
	bus.Start(ctx)

	enqueuer := appoutbox.NewEnqueuer(outboxRepo)
	worker := appoutbox.NewWorker(outboxRepo, bus, appoutbox.NewMapper(), clock, logger, outboxMetrics, appoutbox.WorkerConfig{
		PollInterval: cfg.Outbox.PollInterval,
		BatchSize:    cfg.Outbox.BatchSize,
		MaxAttempts:  cfg.Outbox.MaxAttempts,
		BackoffBase:  cfg.Outbox.BaseBackoff,
	})

	med, err := buildMediator(db, bus, enqueuer, clock, commandMetrics, logger, cfg)
	if err != nil {
		return fmt.Errorf("failed to build mediator: %w", err)
	}

	// New orders reserve their stock through the bus.
	bus.Subscribe(appevents.NewOrderReservationHandler(
		med, cfg.Inventory.DefaultLocationID, cfg.Inventory.ReservationStrategy, logger))

	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		worker.Run(ctx)
	}()

	var metricsServer *http.Server
	if cfg.Metrics.Enabled {
		outboxMetrics.Start(ctx)
		metricsServer = serveMetrics(&cfg.Metrics, logger)
	}

	logger.Info().Msg("oms-daemon is ready")
	<-ctx.Done()
	logger.Info().Msg("shutting down")

	// Order matters: stop producing, drain the worker, then the bus.
	<-workerDone
	bus.Close()
	<-bus.Done()

	if cfg.Metrics.Enabled {
		outboxMetrics.Stop()
	}
	if metricsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}

	logger.Info().Msg("oms-daemon stopped")
	return nil
}

func serveMetrics(cfg *config.MetricsConfig, logger zerolog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle(cfg.Path, promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}))

	server := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler: mux,
	}
	go func() {
		logger.Info().Str("addr", server.Addr).Str("path", cfg.Path).Msg("metrics endpoint listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("metrics server failed")
		}
	}()
	return server
}

func newLogger(cfg *config.LoggingConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	var out *os.File
	switch cfg.Output {
	case "stderr":
		out = os.Stderr
	case "file":
		f, err := os.OpenFile(cfg.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			out = os.Stdout
		} else {
			out = f
		}
	default:
		out = os.Stdout
	}

	var logger zerolog.Logger
	if cfg.Format == "text" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339})
	} else {
		logger = zerolog.New(out)
	}
	logger = logger.Level(level).With().Timestamp().Logger()
	if cfg.IncludeCaller {
		logger = logger.With().Caller().Logger()
	}
	return logger
}
