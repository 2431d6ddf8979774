package input

import (
	"errors"
	"fmt"
)

// ErrSerialization is the base error for every encoding failure in this
// package. Wrapped by SerializationError and by struct-encoding failures,
// so callers can match the whole class with errors.Is.
var ErrSerialization = errors.New("input: serialization error")

// SerializationError reports a length violation while encoding a value.
// Op names the writer that failed, Want the required length and Got the
// length supplied.
type SerializationError struct {
	Op   string
	Want int
	Got  int
}

// Error implements the error interface.
func (e *SerializationError) Error() string {
	return fmt.Sprintf("input: %s: length %d, want %d", e.Op, e.Got, e.Want)
}

// Unwrap makes the error match ErrSerialization under errors.Is.
func (e *SerializationError) Unwrap() error {
	return ErrSerialization
}

func lengthError(op string, want, got int) error {
	return &SerializationError{Op: op, Want: want, Got: got}
}
