// Package ledger implements the room's bill and meal-fund operations on top
// of a storage.Store.
//
// Every operation validates its input before the first write. Failures are
// reported as *ValidationError, *ImmutableRecordError, *NotFoundError or
// *ConflictError so the transport layer can map them with errors.As;
// anything else is a storage failure.
package ledger

import (
	"errors"
	"fmt"
	"time"

	"github.com/mmynk/billkhata/internal/models"
	"github.com/mmynk/billkhata/internal/storage"
)

// ValidationError reports input that was rejected before anything was
// persisted.
type ValidationError struct {
	Field  string
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return e.Err }

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

func invalidErr(field string, err error) error {
	return &ValidationError{Field: field, Reason: err.Error(), Err: err}
}

// ImmutableRecordError reports a write to a finalized meal record.
type ImmutableRecordError struct {
	MemberID int64
	Date     time.Time
}

func (e *ImmutableRecordError) Error() string {
	return fmt.Sprintf("meal record for member %d on %s is finalized",
		e.MemberID, e.Date.Format(models.DateLayout))
}

// ConflictError reports a day whose meals changed while they were being
// finalized. Nothing was written; the caller may retry.
type ConflictError struct {
	Date time.Time
	Err  error
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("meals on %s changed during finalize", e.Date.Format(models.DateLayout))
}

func (e *ConflictError) Unwrap() error { return e.Err }

// NotFoundError reports a reference to an entity that does not exist.
type NotFoundError struct {
	Entity string
	ID     int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

// Is lets callers match any NotFoundError against storage.ErrNotFound.
func (e *NotFoundError) Is(target error) bool {
	return target == storage.ErrNotFound
}

// lookupErr converts storage.ErrNotFound into a NotFoundError and wraps
// everything else.
func lookupErr(err error, entity string, id int64) error {
	if errors.Is(err, storage.ErrNotFound) {
		return &NotFoundError{Entity: entity, ID: id}
	}
	return fmt.Errorf("failed to get %s %d: %w", entity, id, err)
}
