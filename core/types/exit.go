package types

import "fmt"

// ExitKind classifies how a guest execution ended.
type ExitKind uint8

const (
	// ExitHalted means the guest ran to completion and set a user exit code.
	ExitHalted ExitKind = iota
	// ExitPaused means the guest suspended itself; the session can resume.
	ExitPaused
	// ExitSystemSplit means the executor closed a segment at the cycle bound
	// and execution continues in the next segment.
	ExitSystemSplit
	// ExitSessionLimit means the session cycle budget was exhausted before
	// the guest halted.
	ExitSessionLimit
)

// String returns the canonical name of the kind.
func (k ExitKind) String() string {
	switch k {
	case ExitHalted:
		return "Halted"
	case ExitPaused:
		return "Paused"
	case ExitSystemSplit:
		return "SystemSplit"
	case ExitSessionLimit:
		return "SessionLimit"
	default:
		return fmt.Sprintf("ExitKind(%d)", uint8(k))
	}
}

// ExitStatus is the outcome of a guest run. UserCode is meaningful only
// when Kind is ExitHalted; the other kinds represent pausing or splitting,
// not terminal application failure.
type ExitStatus struct {
	Kind     ExitKind
	UserCode uint32
}

// Halted returns an ExitStatus for a completed run with the given user
// exit code.
func Halted(code uint32) ExitStatus {
	return ExitStatus{Kind: ExitHalted, UserCode: code}
}

// Paused returns an ExitStatus for a suspended run.
func Paused(code uint32) ExitStatus {
	return ExitStatus{Kind: ExitPaused, UserCode: code}
}

// SystemSplit returns the ExitStatus of an interior segment.
func SystemSplit() ExitStatus {
	return ExitStatus{Kind: ExitSystemSplit}
}

// SessionLimit returns the ExitStatus of a run that exhausted its cycle
// budget.
func SessionLimit() ExitStatus {
	return ExitStatus{Kind: ExitSessionLimit}
}

// Ok reports whether the run completed successfully: halted with user code
// zero.
func (s ExitStatus) Ok() bool {
	return s.Kind == ExitHalted && s.UserCode == 0
}

// String implements fmt.Stringer.
func (s ExitStatus) String() string {
	switch s.Kind {
	case ExitHalted, ExitPaused:
		return fmt.Sprintf("%s(%d)", s.Kind, s.UserCode)
	default:
		return s.Kind.String()
	}
}

// Wire returns the 5-byte canonical encoding of the status used inside
// claim digests and seal transcripts: kind byte followed by the user code
// in little-endian order.
func (s ExitStatus) Wire() []byte {
	return []byte{
		byte(s.Kind),
		byte(s.UserCode),
		byte(s.UserCode >> 8),
		byte(s.UserCode >> 16),
		byte(s.UserCode >> 24),
	}
}
