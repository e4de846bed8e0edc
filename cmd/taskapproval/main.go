package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sonntkms/taskapproval/internal/adapter/emailtmpl"
	tahttp "github.com/sonntkms/taskapproval/internal/adapter/http"
	tanats "github.com/sonntkms/taskapproval/internal/adapter/nats"
	"github.com/sonntkms/taskapproval/internal/adapter/natskv"
	taotel "github.com/sonntkms/taskapproval/internal/adapter/otel"
	"github.com/sonntkms/taskapproval/internal/adapter/postgres"
	"github.com/sonntkms/taskapproval/internal/adapter/ristretto"
	tatemporal "github.com/sonntkms/taskapproval/internal/adapter/temporal"
	"github.com/sonntkms/taskapproval/internal/adapter/tiered"
	"github.com/sonntkms/taskapproval/internal/config"
	"github.com/sonntkms/taskapproval/internal/logger"
	"github.com/sonntkms/taskapproval/internal/port/notifier"
	"github.com/sonntkms/taskapproval/internal/resilience"
	"github.com/sonntkms/taskapproval/internal/service"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "admin" {
		if err := runAdmin(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(os.Args[1:]); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := config.LoadWithCLI(args)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	log, closeLog := logger.New(cfg.Logging)
	defer closeLog.Close()
	slog.SetDefault(log)

	slog.Info("config loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Logging.Level,
		"task_queue", cfg.Temporal.TaskQueue,
		"email_provider", cfg.Email.Provider,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Telemetry ---
	shutdownOTel, err := taotel.Init(ctx, cfg.OTel)
	if err != nil {
		return fmt.Errorf("otel: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownOTel(shutdownCtx); err != nil {
			slog.Warn("otel shutdown failed", "error", err)
		}
	}()

	metrics, err := taotel.NewMetrics()
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}

	// --- Infrastructure ---

	// PostgreSQL
	pool, err := postgres.NewPool(ctx, cfg.Postgres)
	if err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	defer pool.Close()
	slog.Info("postgres connected")

	if err := postgres.RunMigrations(ctx, cfg.Postgres.DSN); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	slog.Info("migrations applied")

	// NATS
	queue, err := tanats.Connect(ctx, cfg.NATS.URL, cfg.NATS.Stream)
	if err != nil {
		return fmt.Errorf("nats: %w", err)
	}
	defer func() { _ = queue.Close() }()

	// Idempotency cache: ristretto L1 in front of the shared NATS KV bucket.
	kv, err := queue.KeyValue(ctx, cfg.Idempotency.Bucket, cfg.Idempotency.TTL)
	if err != nil {
		return fmt.Errorf("idempotency bucket: %w", err)
	}
	l1, err := ristretto.New(cfg.Idempotency.L1MaxSizeMB)
	if err != nil {
		return fmt.Errorf("idempotency l1: %w", err)
	}
	defer l1.Close()
	idempotency := tiered.New(l1, natskv.New(kv), cfg.Idempotency.TTL)

	// --- Notifications ---
	sender, err := notifier.New(cfg.Email.Provider, map[string]string{
		"host":     cfg.Email.SMTP.Host,
		"port":     strconv.Itoa(cfg.Email.SMTP.Port),
		"from":     cfg.Email.SMTP.From,
		"password": cfg.Email.SMTP.Password,
	})
	if err != nil {
		return fmt.Errorf("email provider: %w", err)
	}
	renderer, err := emailtmpl.New()
	if err != nil {
		return fmt.Errorf("email templates: %w", err)
	}
	breaker := resilience.NewBreaker(cfg.Breaker.MaxFailures, cfg.Breaker.Timeout)
	notifications := service.NewNotificationService(sender, renderer, breaker)
	notifications.SetMetrics(metrics)

	// --- Durable execution ---
	temporalClient, err := tatemporal.Dial(cfg.Temporal, log, cfg.OTel.Enabled)
	if err != nil {
		return fmt.Errorf("temporal: %w", err)
	}
	defer temporalClient.Close()

	orchestrator := service.NewApprovalOrchestrator(cfg.TimeoutSetting())
	w := tatemporal.NewWorker(temporalClient, cfg.Temporal,
		tatemporal.NewWorkflows(orchestrator, cfg.Temporal),
		tatemporal.NewActivities(notifications),
	)

	// --- Services ---
	approvals := service.NewApprovalService(tatemporal.NewGateway(temporalClient, cfg.Temporal.TaskQueue))
	approvals.SetStore(postgres.NewStore(pool))
	approvals.SetQueue(queue)
	approvals.SetMetrics(metrics)

	cancelActions, err := approvals.StartSubscriber(ctx)
	if err != nil {
		return fmt.Errorf("action subscriber: %w", err)
	}
	defer cancelActions()

	// --- HTTP ---
	opts := tahttp.RouterOptions{
		CORSOrigin:     cfg.Server.CORSOrigin,
		Timeout:        30 * time.Second,
		Idempotency:    idempotency,
		IdempotencyTTL: cfg.Idempotency.TTL,
	}
	if cfg.OTel.Enabled {
		opts.ServiceName = cfg.OTel.ServiceName
	}
	router := tahttp.NewRouter(&tahttp.Handlers{
		Approvals: approvals,
		Queue:     queue,
		Breaker:   breaker,
		BodyLimit: cfg.Server.BodyLimit,
	}, opts)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := w.Start(); err != nil {
			return fmt.Errorf("temporal worker: %w", err)
		}
		slog.Info("temporal worker started", "task_queue", cfg.Temporal.TaskQueue)
		<-gctx.Done()
		w.Stop()
		return nil
	})

	g.Go(func() error {
		slog.Info("starting server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		if err := queue.Drain(); err != nil {
			slog.Warn("nats drain failed", "error", err)
		}
		return nil
	})

	return g.Wait()
}
