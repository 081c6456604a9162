package receipt

import (
	"fmt"
)

// ValidationError means the request is missing or has malformed fields. No
// write has happened when it is returned.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("receipt: invalid %s: %s", e.Field, e.Reason)
}

// Stage identifies which write of the workflow failed.
type Stage string

const (
	StageHeader Stage = "header"
	StageItems  Stage = "items"
)

// PersistenceError wraps a gateway failure with the stage it happened in.
// For StageItems the receipt header already exists under ReceiptID and has no
// line items; that partial state is left in place for reconciliation.
type PersistenceError struct {
	Stage     Stage
	ReceiptID int64 // zero for StageHeader
	Err       error
}

func (e *PersistenceError) Error() string {
	if e.Stage == StageItems {
		return fmt.Sprintf("receipt: insert items for receipt %d: %v", e.ReceiptID, e.Err)
	}
	return fmt.Sprintf("receipt: insert header: %v", e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Partial reports whether the header was written without its items.
func (e *PersistenceError) Partial() bool {
	return e.Stage == StageItems && e.ReceiptID != 0
}
