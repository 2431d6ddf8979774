package prover

import (
	"errors"
	"fmt"

	"github.com/zkrail/zkrail/core/types"
	"github.com/zkrail/zkrail/metrics"
	"github.com/zkrail/zkrail/zkvm"
)

// ErrVerification is the class of all receipt verification failures.
var ErrVerification = errors.New("prover: verification failed")

// VerificationError reports why a receipt was rejected. It matches
// ErrVerification through errors.Is.
type VerificationError struct {
	Reason string
}

// Error implements the error interface.
func (e *VerificationError) Error() string {
	return "prover: verification failed: " + e.Reason
}

// Unwrap makes VerificationError match ErrVerification.
func (e *VerificationError) Unwrap() error {
	return ErrVerification
}

func failVerification(format string, args ...any) error {
	metrics.VerificationsFailed.Inc()
	return &VerificationError{Reason: fmt.Sprintf(format, args...)}
}

// Verify checks a receipt against a trusted image identity. The identity
// is the verifier's own statement of which image it accepts; the
// receipt's claimed id is never trusted on its own. A receipt passes only
// if it claims the trusted image, its seal verifies for that image, it
// depends on no unresolved assumptions, and its session halted with user
// code zero.
func Verify(r *types.Receipt, trusted types.ImageIdentity) error {
	if r == nil {
		return failVerification("nil receipt")
	}
	if trusted == nil {
		return failVerification("no trusted image identity")
	}
	id, err := trusted.TrustedImageID()
	if err != nil {
		return failVerification("trusted identity: %v", err)
	}
	if r.ClaimedImageID != id {
		return failVerification("claimed image 0x%x does not match trusted image 0x%x",
			r.ClaimedImageID[:4], id[:4])
	}
	if err := checkSeal(r, id); err != nil {
		return err
	}
	if r.AssumptionCount != 0 {
		return failVerification("receipt depends on %d unresolved assumptions", r.AssumptionCount)
	}
	if !r.Exit.Ok() {
		return failVerification("exit %s is not a successful halt", r.Exit)
	}
	metrics.VerificationsOK.Inc()
	return nil
}

// VerifyIntegrity checks that the receipt's seal verifies for its own
// claimed image id. Unlike Verify it accepts conditional receipts and
// failing exits: it answers "is this receipt internally consistent",
// not "should I trust this result".
func VerifyIntegrity(r *types.Receipt) error {
	if r == nil {
		return failVerification("nil receipt")
	}
	if err := checkSeal(r, r.ClaimedImageID); err != nil {
		return err
	}
	metrics.VerificationsOK.Inc()
	return nil
}

// Verify checks a receipt against a trusted image identity. See the
// package-level Verify.
func (p *Prover) Verify(r *types.Receipt, trusted types.ImageIdentity) error {
	return Verify(r, trusted)
}

// VerifyIntegrity checks a receipt against its own claimed image id. See
// the package-level VerifyIntegrity.
func (p *Prover) VerifyIntegrity(r *types.Receipt) error {
	return VerifyIntegrity(r)
}

// checkSeal recomputes the receipt's seal for the given image id and
// compares.
func checkSeal(r *types.Receipt, id types.ImageID) error {
	switch r.Kind {
	case types.KindSegment:
		ok := zkvm.VerifySegmentSeal(r.Seal, id, r.SegmentIndex,
			r.PreState, r.PostState, r.Exit, r.JournalDigest(), r.AssumptionCount)
		if !ok {
			return failVerification("segment seal does not verify for image 0x%x", id[:4])
		}
	case types.KindSuccinct:
		claim := types.Claim{ImageID: id, Journal: r.Journal, Exit: r.Exit}
		ok := zkvm.VerifySuccinctSeal(r.Seal, id, claim.Digest(),
			r.PreState, r.PostState, r.AssumptionCount)
		if !ok {
			return failVerification("succinct seal does not verify for image 0x%x", id[:4])
		}
	default:
		return failVerification("unknown receipt kind %d", uint8(r.Kind))
	}
	return nil
}
