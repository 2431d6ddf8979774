package compose

import (
	"errors"
	"fmt"
	"strings"
)

// Composition errors.
var (
	// ErrComposition classifies every composition failure; AssumptionError,
	// PreflightError, and CompositionError all match it through errors.Is.
	ErrComposition = errors.New("compose: composition failed")

	// ErrFinalized is returned when a spent composer is used again. A
	// composer is single-use: construct a fresh one per proof.
	ErrFinalized = errors.New("compose: composer already finalized")
)

// AssumptionError reports a receipt that is not a valid composition
// building block.
type AssumptionError struct {
	Reason string
}

// Error implements the error interface.
func (e *AssumptionError) Error() string {
	return "compose: invalid assumption: " + e.Reason
}

// Unwrap makes AssumptionError match ErrComposition.
func (e *AssumptionError) Unwrap() error {
	return ErrComposition
}

// Issue is one mismatch found by the preflight check.
type Issue struct {
	Message string
}

// String implements fmt.Stringer.
func (i Issue) String() string {
	return i.Message
}

// PreflightError carries every mismatch found before proving.
type PreflightError struct {
	Issues []Issue
}

// Error implements the error interface.
func (e *PreflightError) Error() string {
	msgs := make([]string, len(e.Issues))
	for i, issue := range e.Issues {
		msgs[i] = issue.Message
	}
	return fmt.Sprintf("compose: preflight check failed with %d issue(s): %s",
		len(e.Issues), strings.Join(msgs, "; "))
}

// Unwrap makes PreflightError match ErrComposition.
func (e *PreflightError) Unwrap() error {
	return ErrComposition
}

// CompositionError wraps a proving-time failure. It matches ErrComposition
// and, through Unwrap, whatever the backend reported as the cause.
type CompositionError struct {
	Err error
}

// Error implements the error interface.
func (e *CompositionError) Error() string {
	return "compose: proving failed: " + e.Err.Error()
}

// Unwrap returns the backend failure.
func (e *CompositionError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrComposition.
func (e *CompositionError) Is(target error) bool {
	return target == ErrComposition
}
