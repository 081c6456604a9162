package store_test

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nyashahama/strideshop-receipts/internal/db"
	"github.com/nyashahama/strideshop-receipts/internal/receipt"
	"github.com/nyashahama/strideshop-receipts/internal/store"
)

// ─── TEST INFRASTRUCTURE ──────────────────────────────────────────────────────

func setupStore(t *testing.T) (*store.Store, sqlmock.Sqlmock) {
	t.Helper()
	pool, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		pool.Close()
	})
	return store.New(pool, db.New(pool)), mock
}

var (
	insertHeaderSQL = regexp.QuoteMeta("INSERT INTO receipts (user_id, order_id, total_amount, created_at, payment_digest)")
	insertItemsSQL  = regexp.QuoteMeta("INSERT INTO receipt_items (receipt_id, product_id, product_name, quantity, price)")
	getReceiptSQL   = regexp.QuoteMeta("SELECT id, user_id, order_id, total_amount, created_at, payment_digest\nFROM receipts\nWHERE id = $1")
	listItemsSQL    = regexp.QuoteMeta("FROM receipt_items\nWHERE receipt_id = $1")
	deleteItemsSQL  = regexp.QuoteMeta("DELETE FROM receipt_items")
	deleteHeaderSQL = regexp.QuoteMeta("DELETE FROM receipts")
	listPartialSQL  = regexp.QuoteMeta("AND NOT EXISTS (SELECT 1 FROM receipt_items i WHERE i.receipt_id = r.id)")
)

var receiptColumns = []string{"id", "user_id", "order_id", "total_amount", "created_at", "payment_digest"}

var createdAt = time.Date(2026, 10, 14, 10, 30, 0, 0, time.UTC)

func header() receipt.Header {
	return receipt.Header{
		OrderID:    "O1",
		UserID:     "U1",
		TotalCents: 2550,
		CreatedAt:  createdAt,
		Payment:    &receipt.PaymentDigest{Last4: "4242", Expiry: "12/27"},
	}
}

// ─── InsertReceiptHeader ──────────────────────────────────────────────────────

func TestInsertReceiptHeader_ReturnsAssignedID(t *testing.T) {
	st, mock := setupStore(t)

	mock.ExpectQuery(insertHeaderSQL).
		WithArgs("U1", "O1", "25.50", createdAt, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))

	id, err := st.InsertReceiptHeader(context.Background(), header())
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)
}

func TestInsertReceiptHeader_NilDigestIsNull(t *testing.T) {
	st, mock := setupStore(t)
	h := header()
	h.Payment = nil

	mock.ExpectQuery(insertHeaderSQL).
		WithArgs("U1", "O1", "25.50", createdAt, nil).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(8)))

	_, err := st.InsertReceiptHeader(context.Background(), h)
	require.NoError(t, err)
}

func TestInsertReceiptHeader_AnnotatesPostgresErrors(t *testing.T) {
	st, mock := setupStore(t)

	mock.ExpectQuery(insertHeaderSQL).
		WillReturnError(&pq.Error{Code: "23514", Constraint: "receipts_total_amount_check", Message: "check violation"})

	_, err := st.InsertReceiptHeader(context.Background(), header())
	require.Error(t, err)

	var pgErr *store.PGError
	require.True(t, errors.As(err, &pgErr))
	assert.Equal(t, "23514", pgErr.Code)
	assert.Equal(t, "receipts_total_amount_check", pgErr.Constraint)
}

// ─── InsertReceiptItems ───────────────────────────────────────────────────────

func TestInsertReceiptItems_SingleBatchStatement(t *testing.T) {
	st, mock := setupStore(t)

	mock.ExpectExec(insertItemsSQL).
		WithArgs(int64(7), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 2))

	err := st.InsertReceiptItems(context.Background(), 7, []receipt.LineItem{
		{ReceiptID: 7, ProductID: "P1", ProductName: "Shoe", Quantity: 1, UnitPriceCents: 2550},
		{ReceiptID: 7, ProductID: "P2", ProductName: "Sock", Quantity: 3, UnitPriceCents: 199},
	})
	require.NoError(t, err)
}

func TestInsertReceiptItems_RejectsForeignItems(t *testing.T) {
	st, _ := setupStore(t)

	err := st.InsertReceiptItems(context.Background(), 7, []receipt.LineItem{
		{ReceiptID: 8, ProductID: "P1", Quantity: 1},
	})
	require.Error(t, err)
}

func TestInsertReceiptItems_EmptyIsNoop(t *testing.T) {
	st, _ := setupStore(t)
	require.NoError(t, st.InsertReceiptItems(context.Background(), 7, nil))
}

// Header committed, item batch rejected: the header is still readable and no
// items reference it.
func TestPartialState_HeaderReadableWithoutItems(t *testing.T) {
	st, mock := setupStore(t)
	ctx := context.Background()

	mock.ExpectQuery(insertHeaderSQL).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))
	mock.ExpectExec(insertItemsSQL).
		WillReturnError(errors.New("connection reset by peer"))
	mock.ExpectQuery(getReceiptSQL).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows(receiptColumns).
			AddRow(int64(7), "U1", "O1", "25.50", createdAt, []byte(`{"last4":"4242","expiry":"12/27"}`)))
	mock.ExpectQuery(listItemsSQL).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "receipt_id", "product_id", "product_name", "quantity", "price"}))

	id, err := st.InsertReceiptHeader(ctx, header())
	require.NoError(t, err)

	err = st.InsertReceiptItems(ctx, id, []receipt.LineItem{{ReceiptID: id, ProductID: "P1", Quantity: 1, UnitPriceCents: 2550}})
	require.Error(t, err)

	got, err := st.GetReceipt(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(2550), got.TotalCents)
	assert.Equal(t, receipt.ID("O1"), got.OrderID)
	require.NotNil(t, got.Payment)
	assert.Equal(t, "4242", got.Payment.Last4)

	items, err := st.ListItems(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, items)
}

// ─── Reads ────────────────────────────────────────────────────────────────────

func TestGetReceipt_NotFound(t *testing.T) {
	st, mock := setupStore(t)

	mock.ExpectQuery(getReceiptSQL).WithArgs(int64(99)).WillReturnError(sql.ErrNoRows)

	_, err := st.GetReceipt(context.Background(), 99)
	assert.ErrorIs(t, err, store.ErrReceiptNotFound)
}

func TestListItems_ParsesPrices(t *testing.T) {
	st, mock := setupStore(t)

	mock.ExpectQuery(listItemsSQL).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "receipt_id", "product_id", "product_name", "quantity", "price"}).
			AddRow(int64(1), int64(7), "P1", "Shoe", int32(1), "25.50"))

	items, err := st.ListItems(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, int64(2550), items[0].SubtotalCents())
}

func TestListPartialReceipts(t *testing.T) {
	st, mock := setupStore(t)
	cutoff := createdAt.Add(15 * time.Minute)

	mock.ExpectQuery(listPartialSQL).
		WithArgs(cutoff).
		WillReturnRows(sqlmock.NewRows(receiptColumns).
			AddRow(int64(3), "U1", "O1", "10.00", createdAt, nil).
			AddRow(int64(5), "U2", "O2", "5.5", createdAt, nil))

	got, err := st.ListPartialReceipts(context.Background(), cutoff)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(550), got[1].TotalCents)
	assert.Nil(t, got[0].Payment)
}

// ─── DeleteReceipt ────────────────────────────────────────────────────────────

func TestDeleteReceipt_DeletesItemsThenHeader(t *testing.T) {
	st, mock := setupStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(deleteItemsSQL).WithArgs(int64(7)).WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(deleteHeaderSQL).WithArgs(int64(7)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, st.DeleteReceipt(context.Background(), 7))
}

func TestDeleteReceipt_MissingRollsBack(t *testing.T) {
	st, mock := setupStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(deleteItemsSQL).WithArgs(int64(9)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(deleteHeaderSQL).WithArgs(int64(9)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := st.DeleteReceipt(context.Background(), 9)
	assert.ErrorIs(t, err, store.ErrReceiptNotFound)
}

func TestDeleteReceipt_ErrorRollsBack(t *testing.T) {
	st, mock := setupStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(deleteItemsSQL).WithArgs(int64(7)).WillReturnError(errors.New("boom"))
	mock.ExpectRollback()

	err := st.DeleteReceipt(context.Background(), 7)
	require.Error(t, err)
	assert.NotErrorIs(t, err, store.ErrReceiptNotFound)
}
