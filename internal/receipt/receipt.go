// Package receipt holds the receipt-creation workflow: request validation,
// the two-stage header/items write and the hand-off of the customer email to
// a background notifier.
//
// Dependency rule: receipt imports no other internal package. store, worker
// and api depend on it, never the other way round.
package receipt

import (
	"time"
)

// ─── INPUT ───────────────────────────────────────────────────────────────────

// Request is a validated-on-demand "create receipt" call. Money is carried in
// integer cents; the api layer converts the decimal amounts it receives.
type Request struct {
	OrderID       ID
	UserID        ID
	TotalCents    int64
	Items         []LineItemInput
	CustomerEmail string       // empty means "do not notify"
	Payment       *PaymentInfo // stored as a digest, never validated
}

// LineItemInput is one product line as sent by the caller.
type LineItemInput struct {
	ProductID      ID
	ProductName    string
	Quantity       int32
	UnitPriceCents int64
}

// SubtotalCents is Quantity × UnitPriceCents.
func (li LineItemInput) SubtotalCents() int64 {
	return int64(li.Quantity) * li.UnitPriceCents
}

// ─── PERSISTED ───────────────────────────────────────────────────────────────

// Header is the receipt row written in stage 1. The id is assigned by the
// gateway and is not part of the header.
type Header struct {
	OrderID    ID
	UserID     ID
	TotalCents int64
	CreatedAt  time.Time
	Payment    *PaymentDigest // nil when the caller sent no payment_info
}

// LineItem is one receipt_items row, bound to its receipt.
type LineItem struct {
	ReceiptID      int64
	ProductID      ID
	ProductName    string
	Quantity       int32
	UnitPriceCents int64
}

// SubtotalCents is Quantity × UnitPriceCents.
func (li LineItem) SubtotalCents() int64 {
	return int64(li.Quantity) * li.UnitPriceCents
}

// ─── OUTPUT ──────────────────────────────────────────────────────────────────

// Result is returned by Service.Create once both writes succeeded.
type Result struct {
	ReceiptID int64
	CreatedAt time.Time
	Items     []LineItem
}

// NotificationJob is the ephemeral unit handed to the Notifier. Items is a
// copy of the request's items, not a re-read from storage.
type NotificationJob struct {
	RecipientEmail string
	ReceiptID      int64
	OrderID        ID
	TotalCents     int64
	CreatedAt      time.Time
	Items          []LineItemInput
}
