package guestbuild

import "errors"

// Build errors. Every failure of the build collaborator is one of these
// three conditions.
var (
	// ErrInvalidGuestDir reports a guest directory that does not exist,
	// lacks its project descriptor, or names no buildable binary.
	ErrInvalidGuestDir = errors.New("guestbuild: invalid guest directory")

	// ErrBuildFailed reports a build command that ran and failed, or could
	// not be started at all.
	ErrBuildFailed = errors.New("guestbuild: guest build failed")

	// ErrELFNotFound reports a build that succeeded without producing the
	// expected executable.
	ErrELFNotFound = errors.New("guestbuild: elf not found")
)
