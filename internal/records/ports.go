// Package records defines the record store boundary used by the report service.
package records

import (
	"context"
	"strconv"

	"salesreport/internal/core"
)

type (
	// Store holds the full set of product-sales records.
	Store interface {
		// ReplaceAll atomically discards the current contents and installs
		// records. It fails without committing anything when any record fails
		// shape validation.
		ReplaceAll(ctx context.Context, records []core.ProductRecord) error
		// ScanAll returns a consistent snapshot of every record in insertion
		// order.
		ScanAll(ctx context.Context) ([]core.ProductRecord, error)
	}

	// Counter reports how many records a store holds.
	Counter interface {
		Count(ctx context.Context) (int64, error)
	}
)

// ValidateAll checks the shape of every record and reports the first failure
// with its position.
func ValidateAll(records []core.ProductRecord) error {
	for i, r := range records {
		if err := r.Validate(); err != nil {
			return &RecordError{Index: i, Err: err}
		}
	}
	return nil
}

// RecordError ties a validation failure to the position of the offending record.
type RecordError struct {
	Index int
	Err   error
}

func (e *RecordError) Error() string {
	return "record " + strconv.Itoa(e.Index) + ": " + e.Err.Error()
}

func (e *RecordError) Unwrap() error { return e.Err }
