package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/soheilhy/cmux"
	"google.golang.org/grpc"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/nyashahama/strideshop-receipts/internal/api"
	"github.com/nyashahama/strideshop-receipts/internal/config"
	"github.com/nyashahama/strideshop-receipts/internal/db"
	"github.com/nyashahama/strideshop-receipts/internal/email"
	"github.com/nyashahama/strideshop-receipts/internal/health"
	"github.com/nyashahama/strideshop-receipts/internal/idempotency"
	"github.com/nyashahama/strideshop-receipts/internal/logging"
	"github.com/nyashahama/strideshop-receipts/internal/receipt"
	"github.com/nyashahama/strideshop-receipts/internal/store"
	"github.com/nyashahama/strideshop-receipts/internal/worker"
)

func main() {
	// ── Logger ────────────────────────────────────────────────────────────────
	// JSON in production, pretty text in development.
	logger := logging.New(os.Getenv("ENV"), os.Stdout)
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	// ── Config ────────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	logger.Info("config loaded", "env", cfg.Env, "port", cfg.Port, "email_transport", cfg.EmailTransport)
	if missing := cfg.MailCredentialWarnings(); len(missing) > 0 {
		logger.Warn("email credentials missing, receipts will be stored but emails may fail",
			"missing", strings.Join(missing, ","),
		)
	}

	// Root context cancelled by OS signal. It starts the shutdown of the servers.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Database ──────────────────────────────────────────────────────────────
	pool, queries, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer pool.Close()
	logger.Info("database connected")

	st := store.New(pool, queries)

	// ── Email ─────────────────────────────────────────────────────────────────
	transport, err := newTransport(ctx, cfg)
	if err != nil {
		return fmt.Errorf("email transport: %w", err)
	}

	renderer, err := email.NewRenderer(email.RendererConfig{
		ShopName:       cfg.EmailFromName,
		Locale:         cfg.EmailLocale,
		Location:       cfg.EmailTimezone,
		CurrencySymbol: cfg.CurrencySymbol,
	})
	if err != nil {
		return fmt.Errorf("email renderer: %w", err)
	}

	dispatcher := worker.NewDispatcher(renderer, transport,
		email.Address{Name: cfg.EmailFromName, Email: cfg.EmailFromAddr},
		logger,
	)

	// A failed verify does not stop the process: receipts are still stored and
	// the failure is published on /health and the gRPC health service.
	reporter := health.NewReporter()
	verifyCtx, cancelVerify := context.WithTimeout(ctx, 15*time.Second)
	if err := dispatcher.VerifyTransport(verifyCtx); err != nil {
		logger.Error("email transport unavailable", "transport", transport.Name(), "error", err)
		reporter.SetNotifications(false)
	} else {
		logger.Info("email transport verified", "transport", transport.Name())
	}
	cancelVerify()

	// ── Worker ────────────────────────────────────────────────────────────────
	runner := worker.NewRunner(dispatcher, worker.RunnerConfig{
		Workers:    cfg.NotifyWorkers,
		QueueSize:  cfg.NotifyQueueSize,
		JobTimeout: cfg.NotifyTimeout,
	}, logger)

	// ── Idempotency (optional) ────────────────────────────────────────────────
	var idem api.IdempotencyStore
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		rdb := redis.NewClient(opts)
		defer rdb.Close()
		idem = idempotency.NewStore(rdb, cfg.IdempotencyTTL)
		logger.Info("idempotency enabled", "ttl", cfg.IdempotencyTTL)
	}

	// ── Receipts ──────────────────────────────────────────────────────────────
	svc := receipt.NewService(st, runner, receipt.NewDigester(cfg.PaymentFingerprintKey), logger)
	if cfg.PaymentFingerprintKey == "" {
		logger.Warn("PAYMENT_FINGERPRINT_KEY not set, card fingerprints disabled")
	}

	// ── HTTP server ───────────────────────────────────────────────────────────
	handler := api.NewServer(svc, st, reporter, idem, api.Config{
		Env:            cfg.Env,
		AllowedOrigins: cfg.CORSAllowedOrigins,
	}, logger)

	srv := &http.Server{
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// ── gRPC health on the same port ──────────────────────────────────────────
	grpcSrv := grpc.NewServer()
	healthpb.RegisterHealthServer(grpcSrv, reporter.GRPC())

	lis, err := net.Listen("tcp", ":"+cfg.Port)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	mux := cmux.New(lis)
	grpcLis := mux.MatchWithWriters(cmux.HTTP2MatchHeaderFieldSendSettings("content-type", "application/grpc"))
	httpLis := mux.Match(cmux.Any())

	// Start the worker pool on its own context: requests still draining after
	// the signal must be able to queue their emails. It is cancelled only
	// once the HTTP server has shut down, then delivers what is queued.
	runnerCtx, stopRunner := context.WithCancel(context.WithoutCancel(ctx))
	defer stopRunner()
	workerDone := make(chan struct{})
	go func() {
		runner.Start(runnerCtx)
		close(workerDone)
	}()

	serverErr := make(chan error, 3)
	go func() {
		if err := grpcSrv.Serve(grpcLis); err != nil && !isClosed(err) {
			serverErr <- fmt.Errorf("grpc: %w", err)
		}
	}()
	go func() {
		if err := srv.Serve(httpLis); err != nil && !errors.Is(err, http.ErrServerClosed) && !isClosed(err) {
			serverErr <- fmt.Errorf("http: %w", err)
		}
	}()
	go func() {
		logger.Info("server listening", "addr", lis.Addr().String())
		if err := mux.Serve(); err != nil && !isClosed(err) {
			serverErr <- fmt.Errorf("cmux: %w", err)
		}
	}()

	// Block until either a signal arrives or a server dies unexpectedly.
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-serverErr:
		stop()
		stopRunner()
		<-workerDone
		return err
	}

	reporter.Shutdown()

	// Give in-flight HTTP requests up to 20 seconds to finish.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	shutdownErr := srv.Shutdown(shutdownCtx)

	// No handler can call Notify any more.
	stopRunner()

	// Health Watch streams never end on their own; cut them off at the
	// deadline.
	grpcStopped := make(chan struct{})
	go func() {
		grpcSrv.GracefulStop()
		close(grpcStopped)
	}()
	select {
	case <-grpcStopped:
	case <-shutdownCtx.Done():
		grpcSrv.Stop()
	}
	_ = lis.Close()

	<-workerDone
	if shutdownErr != nil {
		return fmt.Errorf("server shutdown: %w", shutdownErr)
	}
	logger.Info("shutdown complete")
	return nil
}

// newTransport builds the transport named by EMAIL_TRANSPORT. config.Load has
// already rejected unknown names.
func newTransport(ctx context.Context, cfg *config.Config) (email.Transport, error) {
	switch cfg.EmailTransport {
	case config.TransportSES:
		return email.NewSESTransport(ctx, cfg.AWSRegion, cfg.AWSAccessKeyID, cfg.AWSSecretAccessKey)
	case config.TransportResend:
		return email.NewResendTransport(cfg.ResendAPIKey, ""), nil
	default:
		return email.NewSMTPTransport(email.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.EmailUser,
			Password: cfg.EmailPassword,
		}), nil
	}
}

func isClosed(err error) bool {
	return errors.Is(err, net.ErrClosed) || errors.Is(err, cmux.ErrListenerClosed)
}
