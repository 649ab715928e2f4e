package recstore

import (
	"fmt"

	"github.com/cqkv/recstore/model"
)

var (
	ErrValidation        = addPrefix("invalid field value")
	ErrDuplicateID       = addPrefix("record id already exists")
	ErrNotFound          = addPrefix("no record with such id")
	ErrIDExhausted       = addPrefix("no id left above the greatest id")
	ErrCorruptData       = addPrefix("data file may be corrupted")
	ErrMalformedSnapshot = model.ErrMalformedSnapshot

	ErrFileIsUsing = addPrefix("data file is used by another process")
	ErrClosed      = addPrefix("store is closed")
)

func addPrefix(errStr string) error {
	return fmt.Errorf("recstore err: %s", errStr)
}

// ValidationError is returned when the validator rejects a field value.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%v: %s %s", ErrValidation, e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

type DuplicateIDError struct {
	ID int32
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("%v: %d", ErrDuplicateID, e.ID)
}

func (e *DuplicateIDError) Is(target error) bool {
	return target == ErrDuplicateID
}

type NotFoundError struct {
	ID int32
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%v: %d", ErrNotFound, e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// CorruptDataError is a slot that cannot be decoded.
type CorruptDataError struct {
	Offset int64
	Err    error
}

func (e *CorruptDataError) Error() string {
	return fmt.Sprintf("%v: slot at offset %d: %v", ErrCorruptData, e.Offset, e.Err)
}

func (e *CorruptDataError) Unwrap() error {
	return e.Err
}

func (e *CorruptDataError) Is(target error) bool {
	return target == ErrCorruptData
}
