package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/nyashahama/strideshop-receipts/internal/db"
	"github.com/nyashahama/strideshop-receipts/internal/receipt"
	"github.com/sqlc-dev/pqtype"
)

// ─── ERRORS ──────────────────────────────────────────────────────────────────

// ErrReceiptNotFound is returned when no receipt row has the requested id.
var ErrReceiptNotFound = errors.New("store: receipt not found")

// ─── GATEWAY ─────────────────────────────────────────────────────────────────

var _ receipt.Gateway = (*Store)(nil)

// InsertReceiptHeader writes one receipt row and returns the id Postgres
// assigned to it.
func (s *Store) InsertReceiptHeader(ctx context.Context, h receipt.Header) (int64, error) {
	digest, err := encodeDigest(h.Payment)
	if err != nil {
		return 0, err
	}

	id, err := s.q.CreateReceipt(ctx, db.CreateReceiptParams{
		UserID:        h.UserID.String(),
		OrderID:       h.OrderID.String(),
		TotalAmount:   receipt.NumericFromCents(h.TotalCents),
		CreatedAt:     h.CreatedAt,
		PaymentDigest: digest,
	})
	if err != nil {
		return 0, fmt.Errorf("store: create receipt: %w", describe(err))
	}
	return id, nil
}

// InsertReceiptItems writes all items of one receipt with a single
// INSERT … SELECT unnest(…) statement, so the batch lands entirely or not at
// all. It does not touch the header.
func (s *Store) InsertReceiptItems(ctx context.Context, receiptID int64, items []receipt.LineItem) error {
	if len(items) == 0 {
		return nil
	}

	arg := db.CreateReceiptItemsParams{
		ReceiptID:    receiptID,
		ProductIds:   make([]string, len(items)),
		ProductNames: make([]string, len(items)),
		Quantities:   make([]int32, len(items)),
		Prices:       make([]string, len(items)),
	}
	for i, item := range items {
		if item.ReceiptID != receiptID {
			return fmt.Errorf("store: item %d belongs to receipt %d, not %d", i, item.ReceiptID, receiptID)
		}
		arg.ProductIds[i] = item.ProductID.String()
		arg.ProductNames[i] = item.ProductName
		arg.Quantities[i] = item.Quantity
		arg.Prices[i] = receipt.NumericFromCents(item.UnitPriceCents)
	}

	if err := s.q.CreateReceiptItems(ctx, arg); err != nil {
		return fmt.Errorf("store: create receipt items: %w", describe(err))
	}
	return nil
}

// ─── COMPENSATION ────────────────────────────────────────────────────────────

// DeleteReceipt removes a receipt and its items in one transaction. It is the
// compensating action the checkout gateway calls when a later saga step
// fails, and the cleanup step of reconciliation.
func (s *Store) DeleteReceipt(ctx context.Context, id int64) error {
	return s.withTx(ctx, func(ctx context.Context, q db.Querier) error {
		if _, err := q.DeleteReceiptItems(ctx, id); err != nil {
			return fmt.Errorf("DeleteReceipt: delete items: %w", describe(err))
		}
		n, err := q.DeleteReceipt(ctx, id)
		if err != nil {
			return fmt.Errorf("DeleteReceipt: delete header: %w", describe(err))
		}
		if n == 0 {
			return ErrReceiptNotFound
		}
		return nil
	})
}

// ─── READS ───────────────────────────────────────────────────────────────────

// StoredReceipt is a receipt header as read back from the database.
type StoredReceipt struct {
	ID         int64
	OrderID    receipt.ID
	UserID     receipt.ID
	TotalCents int64
	CreatedAt  time.Time
	Payment    *receipt.PaymentDigest
}

// GetReceipt loads one header by id.
func (s *Store) GetReceipt(ctx context.Context, id int64) (StoredReceipt, error) {
	row, err := s.q.GetReceiptByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return StoredReceipt{}, ErrReceiptNotFound
	}
	if err != nil {
		return StoredReceipt{}, fmt.Errorf("store: get receipt %d: %w", id, err)
	}
	return toStoredReceipt(row)
}

// ListItems loads the items of one receipt in insertion order.
func (s *Store) ListItems(ctx context.Context, receiptID int64) ([]receipt.LineItem, error) {
	rows, err := s.q.ListReceiptItems(ctx, receiptID)
	if err != nil {
		return nil, fmt.Errorf("store: list items of receipt %d: %w", receiptID, err)
	}

	items := make([]receipt.LineItem, len(rows))
	for i, r := range rows {
		price, err := receipt.CentsFromNumeric(r.Price)
		if err != nil {
			return nil, fmt.Errorf("store: item %d: %w", r.ID, err)
		}
		items[i] = receipt.LineItem{
			ReceiptID:      r.ReceiptID,
			ProductID:      receipt.ID(r.ProductID),
			ProductName:    r.ProductName,
			Quantity:       r.Quantity,
			UnitPriceCents: price,
		}
	}
	return items, nil
}

// ListPartialReceipts returns headers created before cutoff that have no
// items: the state a stage 2 failure leaves behind.
func (s *Store) ListPartialReceipts(ctx context.Context, cutoff time.Time) ([]StoredReceipt, error) {
	rows, err := s.q.ListReceiptsWithoutItems(ctx, cutoff)
	if err != nil {
		return nil, fmt.Errorf("store: list partial receipts: %w", err)
	}

	out := make([]StoredReceipt, 0, len(rows))
	for _, row := range rows {
		r, err := toStoredReceipt(row)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// ─── HELPERS ─────────────────────────────────────────────────────────────────

func toStoredReceipt(row db.Receipt) (StoredReceipt, error) {
	total, err := receipt.CentsFromNumeric(row.TotalAmount)
	if err != nil {
		return StoredReceipt{}, fmt.Errorf("store: receipt %d: %w", row.ID, err)
	}

	r := StoredReceipt{
		ID:         row.ID,
		OrderID:    receipt.ID(row.OrderID),
		UserID:     receipt.ID(row.UserID),
		TotalCents: total,
		CreatedAt:  row.CreatedAt,
	}
	if row.PaymentDigest.Valid {
		var d receipt.PaymentDigest
		if err := json.Unmarshal(row.PaymentDigest.RawMessage, &d); err != nil {
			return StoredReceipt{}, fmt.Errorf("store: receipt %d: decode payment digest: %w", row.ID, err)
		}
		r.Payment = &d
	}
	return r, nil
}

func encodeDigest(d *receipt.PaymentDigest) (pqtype.NullRawMessage, error) {
	if d == nil {
		return pqtype.NullRawMessage{}, nil
	}
	raw, err := json.Marshal(d)
	if err != nil {
		return pqtype.NullRawMessage{}, fmt.Errorf("store: marshal payment digest: %w", err)
	}
	return pqtype.NullRawMessage{RawMessage: raw, Valid: true}, nil
}

// PGError is a driver error annotated with its SQLSTATE and constraint so
// operators can tell a constraint violation from a transport failure.
type PGError struct {
	Code       string
	Constraint string
	Err        error
}

func (e *PGError) Error() string {
	if e.Constraint != "" {
		return fmt.Sprintf("%v (sqlstate %s, constraint %s)", e.Err, e.Code, e.Constraint)
	}
	return fmt.Sprintf("%v (sqlstate %s)", e.Err, e.Code)
}

func (e *PGError) Unwrap() error { return e.Err }

// describe annotates *pq.Error values; anything else passes through.
func describe(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return &PGError{Code: string(pqErr.Code), Constraint: pqErr.Constraint, Err: err}
	}
	return err
}
