package model

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyValue        = errors.New("empty value")
	ErrUnknownField      = errors.New("unknown field")
	ErrBadGender         = errors.New("gender must be a single character")
	ErrMalformedSnapshot = errors.New("recstore err: malformed snapshot")
)

// MalformedSnapshotError reports a snapshot source that cannot be imported.
type MalformedSnapshotError struct {
	Reason string
	Err    error
}

func Malformed(err error, format string, args ...any) error {
	return &MalformedSnapshotError{Reason: fmt.Sprintf(format, args...), Err: err}
}

func (e *MalformedSnapshotError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%v: %s: %v", ErrMalformedSnapshot, e.Reason, e.Err)
	}
	return fmt.Sprintf("%v: %s", ErrMalformedSnapshot, e.Reason)
}

func (e *MalformedSnapshotError) Unwrap() error {
	return e.Err
}

func (e *MalformedSnapshotError) Is(target error) bool {
	return target == ErrMalformedSnapshot
}
