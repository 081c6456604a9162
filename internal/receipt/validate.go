package receipt

import (
	"fmt"
)

// Validate checks the fields required before any write. Payment fields are
// deliberately not inspected.
func (r Request) Validate() error {
	switch {
	case r.OrderID.IsZero():
		return &ValidationError{Field: "order_id", Reason: "is required"}
	case r.UserID.IsZero():
		return &ValidationError{Field: "user_id", Reason: "is required"}
	case r.TotalCents <= 0:
		return &ValidationError{Field: "amount", Reason: "must be a positive amount"}
	case len(r.Items) == 0:
		return &ValidationError{Field: "receipt_items", Reason: "must be a non-empty array"}
	}

	for i, item := range r.Items {
		field := fmt.Sprintf("receipt_items[%d]", i)
		if item.Quantity <= 0 {
			return &ValidationError{Field: field + ".quantity", Reason: "must be a positive integer"}
		}
		if item.UnitPriceCents < 0 {
			return &ValidationError{Field: field + ".price", Reason: "must not be negative"}
		}
	}
	return nil
}
