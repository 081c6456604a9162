package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/nyashahama/strideshop-receipts/internal/receipt"
	"github.com/nyashahama/strideshop-receipts/internal/store"
)

// ─── WIRE SHAPES ──────────────────────────────────────────────────────────────

// createReceiptRequest is the body the checkout gateway posts. Amounts are
// decimal currency units sent as JSON numbers or strings; unknown fields such
// as ship_info are ignored.
type createReceiptRequest struct {
	OrderID      receipt.ID           `json:"order_id"`
	UserID       receipt.ID           `json:"user_id"`
	Amount       decimal.Decimal      `json:"amount"`
	ReceiptItems []receiptItemRequest `json:"receipt_items"`
	UserEmail    string               `json:"user_email"`
	PaymentInfo  *receipt.PaymentInfo `json:"payment_info"`
}

type receiptItemRequest struct {
	ProductID   receipt.ID      `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int32           `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
}

// envelope is the response body of every receipts endpoint. ReceiptID is only
// set on success: the gateway reads it without checking the status code.
type envelope struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	ReceiptID *int64 `json:"receipt_id,omitempty"`
	Error     string `json:"error,omitempty"`
}

// toDomain converts amounts to cents. An amount out of NUMERIC(12,2) range is
// a *receipt.ValidationError.
func (req createReceiptRequest) toDomain() (receipt.Request, error) {
	total, err := receipt.CentsFromAmount(req.Amount)
	if err != nil {
		return receipt.Request{}, &receipt.ValidationError{Field: "amount", Reason: "is out of range"}
	}

	items := make([]receipt.LineItemInput, len(req.ReceiptItems))
	for i, it := range req.ReceiptItems {
		price, err := receipt.CentsFromAmount(it.Price)
		if err != nil {
			return receipt.Request{}, &receipt.ValidationError{
				Field:  fmt.Sprintf("receipt_items[%d].price", i),
				Reason: "is out of range",
			}
		}
		items[i] = receipt.LineItemInput{
			ProductID:      it.ProductID,
			ProductName:    it.ProductName,
			Quantity:       it.Quantity,
			UnitPriceCents: price,
		}
	}

	return receipt.Request{
		OrderID:       req.OrderID,
		UserID:        req.UserID,
		TotalCents:    total,
		Items:         items,
		CustomerEmail: req.UserEmail,
		Payment:       req.PaymentInfo,
	}, nil
}

// ─── POST /receipts ───────────────────────────────────────────────────────────

// handleCreateReceipt stores the header, then the items, then queues the
// customer email. The response never waits for the email.
func (s *Server) handleCreateReceipt(w http.ResponseWriter, r *http.Request) {
	var body createReceiptRequest
	if err := decode(w, r, &body); err != nil {
		respond(w, http.StatusBadRequest, envelope{
			Status:  "ERROR",
			Message: "invalid request body: " + err.Error(),
		})
		return
	}

	req, err := body.toDomain()
	var result receipt.Result
	if err == nil {
		result, err = s.receipts.Create(r.Context(), req)
	}

	var vErr *receipt.ValidationError
	var pErr *receipt.PersistenceError
	switch {
	case err == nil:
		id := result.ReceiptID
		respond(w, http.StatusCreated, envelope{
			Status:    "OK",
			Message:   "Receipt created successfully",
			ReceiptID: &id,
		})

	case errors.As(err, &vErr):
		respond(w, http.StatusBadRequest, envelope{
			Status:  "ERROR",
			Message: fmt.Sprintf("Missing or invalid field: %s %s", vErr.Field, vErr.Reason),
		})

	case errors.As(err, &pErr):
		resp := envelope{
			Status:  "ERROR",
			Message: "Failed to create receipt: header insert failed",
			Error:   pErr.Err.Error(),
		}
		if pErr.Partial() {
			resp.Message = fmt.Sprintf("Failed to create receipt: items insert failed, receipt %d has no items", pErr.ReceiptID)
		}
		s.logger.Error("receipts: create failed",
			"stage", pErr.Stage,
			"receipt_id", pErr.ReceiptID,
			"error", pErr.Err,
			logField(r),
		)
		respond(w, http.StatusInternalServerError, resp)

	default:
		s.respondInternalErr(w, r, err)
	}
}

// ─── DELETE /receipts/{receiptID} ─────────────────────────────────────────────

func (s *Server) handleDeleteReceipt(w http.ResponseWriter, r *http.Request) {
	id, err := receipt.ParseReceiptID(chi.URLParam(r, "receiptID"))
	if err != nil {
		respond(w, http.StatusBadRequest, envelope{Status: "ERROR", Message: "invalid receipt id"})
		return
	}

	err = s.deleter.DeleteReceipt(r.Context(), id)
	switch {
	case err == nil:
		s.logger.Info("receipts: deleted", "receipt_id", id, logField(r))
		respond(w, http.StatusOK, envelope{Status: "OK", Message: "Receipt deleted"})
	case errors.Is(err, store.ErrReceiptNotFound):
		respond(w, http.StatusNotFound, envelope{Status: "ERROR", Message: "receipt not found"})
	default:
		s.respondInternalErr(w, r, err)
	}
}
