// Package api implements the HTTP layer of the receipt service. Handlers are
// methods on *Server. Each handler file is responsible for one resource group
// and only uses the dependencies it needs.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/nyashahama/strideshop-receipts/internal/idempotency"
	"github.com/nyashahama/strideshop-receipts/internal/receipt"
)

// Config holds values read from environment variables at startup.
type Config struct {
	// Env is "production", "staging", or "development".
	Env string

	// AllowedOrigins feeds the CORS handler. ["*"] allows any origin.
	AllowedOrigins []string
}

// ─── DEPENDENCIES ─────────────────────────────────────────────────────────────

// ReceiptCreator runs the create workflow. *receipt.Service satisfies it.
type ReceiptCreator interface {
	Create(ctx context.Context, req receipt.Request) (receipt.Result, error)
}

// ReceiptDeleter removes a receipt and its items. *store.Store satisfies it.
type ReceiptDeleter interface {
	DeleteReceipt(ctx context.Context, id int64) error
}

// NotificationStatus reports whether emails can currently be delivered.
// *health.Reporter satisfies it.
type NotificationStatus interface {
	Notifications() string
}

// IdempotencyStore claims and replays Idempotency-Key requests.
// *idempotency.Store satisfies it.
type IdempotencyStore interface {
	Key(scope, key string) string
	Begin(ctx context.Context, key, fingerprint string) (idempotency.State, *idempotency.Response, error)
	Complete(ctx context.Context, key, fingerprint string, resp idempotency.Response) error
	Release(ctx context.Context, key string) error
}

// ─── SERVER ───────────────────────────────────────────────────────────────────

// Server holds all shared dependencies.
type Server struct {
	receipts ReceiptCreator
	deleter  ReceiptDeleter
	status   NotificationStatus

	// idem is nil when REDIS_URL is not configured.
	idem IdempotencyStore

	cfg    Config
	logger *slog.Logger
}

// NewServer constructs the Server and wires the chi router. The returned
// http.Handler is ready to pass to an http.Server. idem may be nil.
func NewServer(
	receipts ReceiptCreator,
	deleter ReceiptDeleter,
	status NotificationStatus,
	idem IdempotencyStore,
	cfg Config,
	logger *slog.Logger,
) http.Handler {
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"*"}
	}
	s := &Server{
		receipts: receipts,
		deleter:  deleter,
		status:   status,
		idem:     idem,
		cfg:      cfg,
		logger:   logger,
	}

	return s.routes()
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	// ── Global middleware ─────────────────────────────────────────────────────
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggerMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "Idempotency-Key", "X-Request-ID"},
		ExposedHeaders: []string{"Idempotent-Replayed", "X-Request-ID"},
		MaxAge:         86400,
	}))
	r.Use(middleware.Timeout(30 * time.Second))

	// ── Health ────────────────────────────────────────────────────────────────
	r.Get("/", s.handleRoot)
	r.Get("/health", s.handleHealth)

	// ── Receipts ──────────────────────────────────────────────────────────────
	r.Route("/receipts", func(r chi.Router) {
		r.With(s.idempotencyMiddleware).Post("/", s.handleCreateReceipt)

		// Compensation for the gateway's checkout saga.
		r.Delete("/{receiptID}", s.handleDeleteReceipt)
	})

	return r
}
