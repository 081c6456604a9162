package receipt

import (
	"context"
	"log/slog"
	"time"
)

// ─── PORTS ───────────────────────────────────────────────────────────────────

// Gateway is the persistence capability the workflow needs. Each call is
// atomic on its own; the two calls together are not. *store.Store satisfies
// it.
type Gateway interface {
	// InsertReceiptHeader writes one receipts row and returns its new id.
	InsertReceiptHeader(ctx context.Context, h Header) (int64, error)

	// InsertReceiptItems writes every item of one receipt as a single batch.
	InsertReceiptItems(ctx context.Context, receiptID int64, items []LineItem) error
}

// Notifier accepts a notification job without waiting for it to be sent.
// Implementations must return immediately and must not report delivery
// outcomes back to the caller. *worker.Runner satisfies it.
type Notifier interface {
	Notify(job NotificationJob)
}

// ─── SERVICE ─────────────────────────────────────────────────────────────────

// Service drives the receipt-creation workflow.
type Service struct {
	gateway  Gateway
	notifier Notifier
	digester *Digester
	now      func() time.Time
	logger   *slog.Logger
}

// NewService wires the workflow. The gateway and notifier are process-wide
// singletons built by main.
func NewService(gateway Gateway, notifier Notifier, digester *Digester, logger *slog.Logger) *Service {
	if digester == nil {
		digester = NewDigester("")
	}
	return &Service{
		gateway:  gateway,
		notifier: notifier,
		digester: digester,
		now:      time.Now,
		logger:   logger,
	}
}

// WithClock replaces the wall clock used for created_at. Tests only.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Create runs the workflow:
//
//  1. Validate; a *ValidationError means nothing was written.
//  2. Insert the header. Failure aborts with a StageHeader *PersistenceError.
//  3. Insert the items as one batch. Failure returns a StageItems
//     *PersistenceError and leaves the header in place.
//  4. If the request carries an email, hand a NotificationJob to the
//     notifier without waiting for it.
func (s *Service) Create(ctx context.Context, req Request) (Result, error) {
	if err := req.Validate(); err != nil {
		return Result{}, err
	}

	createdAt := s.now().UTC()
	log := s.logger.With("order_id", req.OrderID, "user_id", req.UserID)

	// ── Stage 1: header ───────────────────────────────────────────────────────
	receiptID, err := s.gateway.InsertReceiptHeader(ctx, Header{
		OrderID:    req.OrderID,
		UserID:     req.UserID,
		TotalCents: req.TotalCents,
		CreatedAt:  createdAt,
		Payment:    s.digester.Digest(req.Payment),
	})
	if err != nil {
		log.Error("receipt: header insert failed", "error", err)
		return Result{}, &PersistenceError{Stage: StageHeader, Err: err}
	}
	log = log.With("receipt_id", receiptID)
	log.Info("receipt: header created")

	// ── Stage 2: items ────────────────────────────────────────────────────────
	items := make([]LineItem, len(req.Items))
	for i, in := range req.Items {
		items[i] = LineItem{
			ReceiptID:      receiptID,
			ProductID:      in.ProductID,
			ProductName:    in.ProductName,
			Quantity:       in.Quantity,
			UnitPriceCents: in.UnitPriceCents,
		}
	}

	if err := s.gateway.InsertReceiptItems(ctx, receiptID, items); err != nil {
		// No compensating delete: the header stays, without items, and the
		// caller is told which stage failed.
		log.Error("receipt: items insert failed, header left without items",
			"items", len(items),
			"error", err,
		)
		return Result{ReceiptID: receiptID, CreatedAt: createdAt}, &PersistenceError{
			Stage:     StageItems,
			ReceiptID: receiptID,
			Err:       err,
		}
	}
	log.Info("receipt: items created", "items", len(items))

	result := Result{ReceiptID: receiptID, CreatedAt: createdAt, Items: items}

	// ── Stage 3: notify ───────────────────────────────────────────────────────
	if req.CustomerEmail == "" {
		log.Warn("receipt: no customer email, skipping notification")
		return result, nil
	}

	s.notifier.Notify(NotificationJob{
		RecipientEmail: req.CustomerEmail,
		ReceiptID:      receiptID,
		OrderID:        req.OrderID,
		TotalCents:     req.TotalCents,
		CreatedAt:      createdAt,
		Items:          append([]LineItemInput(nil), req.Items...),
	})
	log.Debug("receipt: notification handed off", "email", req.CustomerEmail)

	return result, nil
}
