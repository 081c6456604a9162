package worker

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/nyashahama/strideshop-receipts/internal/email"
	"github.com/nyashahama/strideshop-receipts/internal/receipt"
)

// Outcome is the result of one delivery attempt. Exactly one of MessageID and
// Err is set.
type Outcome struct {
	MessageID string
	Err       error
}

// Dispatcher renders a notification job and hands it to the transport. It
// holds no per-job state and is shared by every worker goroutine.
type Dispatcher struct {
	renderer  *email.Renderer
	transport email.Transport
	from      email.Address
	logger    *slog.Logger
}

// NewDispatcher constructs a Dispatcher. The transport is a process-wide
// singleton built by main.
func NewDispatcher(renderer *email.Renderer, transport email.Transport, from email.Address, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		renderer:  renderer,
		transport: transport,
		from:      from,
		logger:    logger,
	}
}

// VerifyTransport checks the transport once at startup. The caller decides
// what a failure means; the dispatcher keeps working either way.
func (d *Dispatcher) VerifyTransport(ctx context.Context) error {
	if err := d.transport.Verify(ctx); err != nil {
		return fmt.Errorf("worker: verify %s transport: %w", d.transport.Name(), err)
	}
	return nil
}

// Deliver makes exactly one attempt:
//
//  1. Map the job to the renderer's Summary and Lines.
//  2. Render subject, HTML and text.
//  3. Send through the transport.
//
// It never panics and never returns an error: failures come back in
// Outcome.Err.
func (d *Dispatcher) Deliver(ctx context.Context, job receipt.NotificationJob) (out Outcome) {
	defer func() {
		if p := recover(); p != nil {
			d.logger.Error("worker: deliver panicked",
				"receipt_id", job.ReceiptID,
				"panic", p,
				"stack", string(debug.Stack()),
			)
			out = Outcome{Err: fmt.Errorf("worker: deliver panicked: %v", p)}
		}
	}()

	lines := make([]email.Line, len(job.Items))
	for i, it := range job.Items {
		lines[i] = email.Line{
			ProductName:    it.ProductName,
			Quantity:       it.Quantity,
			UnitPriceCents: it.UnitPriceCents,
		}
	}

	content, err := d.renderer.Render(email.Summary{
		ReceiptID:  job.ReceiptID,
		OrderID:    job.OrderID.String(),
		TotalCents: job.TotalCents,
		CreatedAt:  job.CreatedAt,
	}, lines)
	if err != nil {
		return Outcome{Err: fmt.Errorf("worker: render receipt %d: %w", job.ReceiptID, err)}
	}

	id, err := d.transport.Send(ctx, email.Message{
		From:    d.from,
		To:      job.RecipientEmail,
		Subject: content.Subject,
		HTML:    content.HTML,
		Text:    content.Text,
	})
	if err != nil {
		return Outcome{Err: fmt.Errorf("worker: send via %s: %w", d.transport.Name(), err)}
	}
	return Outcome{MessageID: id}
}
