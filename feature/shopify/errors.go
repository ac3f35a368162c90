package shopify

import (
	"errors"
	"fmt"
)

// ErrVariantNotFound is returned when no catalog entry matches a SKU
// exactly, even after the fallback strategy. This is an expected outcome
// for parts that are not listed in the shop.
var ErrVariantNotFound = errors.New("shopify: variant not found")

// ErrNoInventoryData is returned when there are no locations to query
// inventory levels against. It is never used for transport failures and
// never used for "zero stock"; both of those are reported differently.
var ErrNoInventoryData = errors.New("shopify: no inventory data")

// TransientError wraps a failure that persisted through all retry attempts
// (429, 5xx, or transport errors). Callers treat it as a per-part error,
// not a reason to abort the whole run.
type TransientError struct {
	// Status is the last observed HTTP status, or 0 for transport errors.
	Status int
	// Attempts is the number of attempts made before giving up.
	Attempts int
	// Err is the last underlying error, if any.
	Err error
}

func (e *TransientError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("shopify: request failed after %d attempts (status %d)", e.Attempts, e.Status)
	}
	return fmt.Sprintf("shopify: request failed after %d attempts: %v", e.Attempts, e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }

// FatalError is a non-retryable HTTP failure (4xx other than 429). These
// indicate a request-construction or auth problem, not a transient
// condition, so the client surfaces them immediately.
type FatalError struct {
	Status int
	Body   string
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("shopify: request rejected with status %d: %s", e.Status, e.Body)
}
