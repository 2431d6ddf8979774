package zkvm

import (
	"errors"
	"fmt"
)

// Execution and image errors.
var (
	ErrInvalidImage         = errors.New("zkvm: invalid guest image")
	ErrUnknownGuest         = errors.New("zkvm: unknown guest")
	ErrGuestRegistered      = errors.New("zkvm: guest already registered")
	ErrUnresolvedAssumption = errors.New("zkvm: unresolved assumption")
	ErrInputExhausted       = errors.New("zkvm: input exhausted")
	ErrSessionLimit         = errors.New("zkvm: session cycle limit exceeded")
	ErrExecutionFault       = errors.New("zkvm: guest fault")
	ErrGuestPanicked        = errors.New("zkvm: guest execution panicked")
)

// Guest control signals. Exit and Pause return these so guests can stop
// mid-function with a plain return; the executor translates them into exit
// statuses and they never escape Execute.
var (
	errHalt  = errors.New("zkvm: guest halted")
	errPause = errors.New("zkvm: guest paused")
)

// FaultError wraps the error a guest failed with. It matches both
// ErrExecutionFault and the underlying cause under errors.Is, so callers
// can test for the class or for a specific failure such as
// ErrUnresolvedAssumption.
type FaultError struct {
	Guest string
	Err   error
}

// Error implements the error interface.
func (e *FaultError) Error() string {
	return fmt.Sprintf("zkvm: guest %q faulted: %v", e.Guest, e.Err)
}

// Unwrap exposes the underlying cause.
func (e *FaultError) Unwrap() error {
	return e.Err
}

// Is reports membership in the execution-fault class.
func (e *FaultError) Is(target error) bool {
	return target == ErrExecutionFault
}
