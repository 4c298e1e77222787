package services

import (
	"errors"
	"fmt"
	"strconv"
)

// Sentinel errors surfaced to handlers. Handlers translate these to HTTP
// statuses; services never touch the response writer.
var (
	ErrClientNotFound = errors.New("client not found")
	ErrNotFound       = errors.New("not found")
	ErrForbidden      = errors.New("forbidden")
	ErrInvalidRange   = errors.New("invalid date range")
)

// Per-line rejection reason codes, stable across the API.
const (
	ReasonProductNotFound   = "product_not_found"
	ReasonInvalidQuantity   = "invalid_quantity"
	ReasonInvalidPrice      = "invalid_price"
	ReasonInsufficientStock = "insufficient_stock"
)

// LineError attributes a rejection to one line of a creation request, so the
// caller can report every failing line rather than just the first.
type LineError struct {
	Index  int    `json:"line_index"`
	Reason string `json:"reason_code"`
}

func (e LineError) Error() string {
	return "line " + strconv.Itoa(e.Index) + ": " + e.Reason
}

// ValidationError aggregates every per-line failure of a creation request.
// The invoice was not created and no stock was touched.
type ValidationError struct {
	Lines []LineError
}

func (e *ValidationError) Error() string {
	if len(e.Lines) == 0 {
		return "validation failed: no valid lines"
	}
	return fmt.Sprintf("validation failed: %d line error(s)", len(e.Lines))
}

// StockError reports the commit-time stock re-check failing for a product:
// the conditional decrement found less stock than the validated snapshot did.
type StockError struct {
	ProductID uint
}

func (e *StockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %d", e.ProductID)
}

// PersistenceError wraps an underlying storage failure during commit. The
// transaction was rolled back; stock and invoices are unchanged.
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string { return "persistence failure: " + e.Err.Error() }
func (e *PersistenceError) Unwrap() error { return e.Err }
