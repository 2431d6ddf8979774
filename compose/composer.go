// Package compose implements the proof-building protocol: a Composer
// accumulates guest input, assumption receipts, and expected-verification
// declarations, cross-checks them before the expensive proving call, and
// produces one outer receipt whose assumptions the prover has resolved.
package compose

import (
	"fmt"

	"github.com/hashicorp/go-multierror"

	"github.com/zkrail/zkrail/core/types"
	"github.com/zkrail/zkrail/input"
	"github.com/zkrail/zkrail/log"
	"github.com/zkrail/zkrail/metrics"
	"github.com/zkrail/zkrail/prover"
	"github.com/zkrail/zkrail/zkvm"
)

// claimKey identifies an assumption or expectation by the pair a guest
// verification call resolves against.
type claimKey struct {
	imageID       types.ImageID
	journalDigest types.Digest
}

// Composer accumulates the parts of a composed proof and proves them as
// one receipt. A Composer is single-use and not safe for concurrent use;
// confine it to one proof-construction flow and build a fresh one per
// proof.
type Composer struct {
	prover       *prover.Prover
	image        *zkvm.Image
	builder      *input.Builder
	assumptions  []zkvm.Assumption
	seen         map[claimKey]struct{}
	expectations []claimKey
	finalized    bool
	log          *log.Logger
}

// New creates a Composer proving the given image through the given prover.
func New(p *prover.Prover, img *zkvm.Image) *Composer {
	return &Composer{
		prover:  p,
		image:   img,
		builder: input.NewBuilder(),
		seen:    make(map[claimKey]struct{}),
		log:     log.Default().Module("compose"),
	}
}

// ---------------------------------------------------------------------------
// Input writers, delegating to the framing layer.

// WriteU32 appends a little-endian u32 to the guest input.
func (c *Composer) WriteU32(v uint32) *Composer {
	c.builder.WriteU32(v)
	return c
}

// WriteU64 appends a little-endian u64 to the guest input.
func (c *Composer) WriteU64(v uint64) *Composer {
	c.builder.WriteU64(v)
	return c
}

// WriteBool appends a single 0x00/0x01 byte to the guest input.
func (c *Composer) WriteBool(v bool) *Composer {
	c.builder.WriteBool(v)
	return c
}

// WriteBytes32 appends exactly 32 raw bytes to the guest input.
func (c *Composer) WriteBytes32(b []byte) *Composer {
	c.builder.WriteBytes32(b)
	return c
}

// WriteBytes64 appends exactly 64 raw bytes to the guest input.
func (c *Composer) WriteBytes64(b []byte) *Composer {
	c.builder.WriteBytes64(b)
	return c
}

// WriteImageID appends an image id as its 32 raw bytes.
func (c *Composer) WriteImageID(id types.ImageID) *Composer {
	c.builder.WriteImageID(id)
	return c
}

// WriteString appends a length-prefixed string to the guest input.
func (c *Composer) WriteString(s string) *Composer {
	c.builder.WriteString(s)
	return c
}

// WriteFrame appends a length-prefixed byte frame to the guest input.
func (c *Composer) WriteFrame(b []byte) *Composer {
	c.builder.WriteFrame(b)
	return c
}

// WriteRawBytes appends bytes with no framing.
func (c *Composer) WriteRawBytes(b []byte) *Composer {
	c.builder.WriteRawBytes(b)
	return c
}

// WriteStruct appends a frame holding the canonical structured encoding
// of v.
func (c *Composer) WriteStruct(v any) *Composer {
	c.builder.WriteStruct(v)
	return c
}

// WriteWordVec appends bytes in the word-vector layout.
func (c *Composer) WriteWordVec(b []byte) *Composer {
	c.builder.WriteWordVec(b)
	return c
}

// ---------------------------------------------------------------------------
// Assumptions and expectations.

// Assume registers a receipt as an assumption the guest may verify
// against. Only succinct, unconditional receipts of successful sessions
// are valid building blocks; anything else fails with an AssumptionError.
// A receipt already assumed (same image and journal) is skipped.
func (c *Composer) Assume(r *types.Receipt) error {
	if c.finalized {
		return ErrFinalized
	}
	if r == nil {
		return &AssumptionError{Reason: "nil receipt"}
	}
	if r.Kind == types.KindSegment {
		return &AssumptionError{Reason: "segment receipt is not aggregated; lift and join it first"}
	}
	if r.Kind != types.KindSuccinct {
		return &AssumptionError{Reason: fmt.Sprintf("receipt kind %s cannot back an assumption", r.Kind)}
	}
	if !r.IsUnconditional() {
		return &AssumptionError{Reason: fmt.Sprintf("receipt carries %d unresolved assumptions", r.AssumptionCount)}
	}
	if !r.Exit.Ok() {
		return &AssumptionError{Reason: fmt.Sprintf("receipt exit %s is not a successful halt", r.Exit)}
	}

	key := claimKey{imageID: r.ClaimedImageID, journalDigest: r.JournalDigest()}
	if _, dup := c.seen[key]; dup {
		c.log.Debug("duplicate assumption skipped", "image", r.ClaimedImageID.String())
		return nil
	}
	c.seen[key] = struct{}{}
	c.assumptions = append(c.assumptions, zkvm.NewAssumption(r))
	return nil
}

// AssumeMany registers several receipts, collecting every rejection
// instead of stopping at the first.
func (c *Composer) AssumeMany(receipts ...*types.Receipt) error {
	var errs *multierror.Error
	for i, r := range receipts {
		if err := c.Assume(r); err != nil {
			errs = multierror.Append(errs, fmt.Errorf("receipt %d: %w", i, err))
		}
	}
	return errs.ErrorOrNil()
}

// ExpectVerification declares that the guest is expected to verify
// exactly this (image id, journal) pair. Declarations are bookkeeping for
// the preflight check; they are not input to the proof.
func (c *Composer) ExpectVerification(id types.ImageID, journal []byte) *Composer {
	c.expectations = append(c.expectations, claimKey{
		imageID:       id,
		journalDigest: types.Journal(journal).Digest(),
	})
	return c
}

// ---------------------------------------------------------------------------
// Preflight.

// preflightIssues cross-checks assumptions against declarations: every
// declared verification needs a matching assumption, in sufficient
// number, and every assumption needs a matching declaration.
func (c *Composer) preflightIssues() []Issue {
	expected := make(map[claimKey]int)
	var order []claimKey
	for _, key := range c.expectations {
		if expected[key] == 0 {
			order = append(order, key)
		}
		expected[key]++
	}
	have := make(map[claimKey]int)
	for _, a := range c.assumptions {
		have[claimKey{imageID: a.ImageID, journalDigest: a.JournalDigest}]++
	}

	var issues []Issue
	for _, key := range order {
		switch got := have[key]; {
		case got == 0:
			issues = append(issues, Issue{Message: fmt.Sprintf(
				"Missing assumption for expected verification: image_id=%x, journal_digest=%x",
				key.imageID[:8], key.journalDigest[:8])})
		case got < expected[key]:
			issues = append(issues, Issue{Message: fmt.Sprintf(
				"Not enough assumptions: expected %d verifications but only %d assumptions for claim",
				expected[key], got)})
		}
	}
	for _, a := range c.assumptions {
		key := claimKey{imageID: a.ImageID, journalDigest: a.JournalDigest}
		if expected[key] == 0 {
			issues = append(issues, Issue{Message: fmt.Sprintf(
				"Unused assumption: image_id=%x, journal_digest=%x (no matching env::verify expected)",
				key.imageID[:8], key.journalDigest[:8])})
		}
	}
	if len(issues) > 0 {
		metrics.PreflightIssues.Add(int64(len(issues)))
	}
	return issues
}

// PreflightIssues returns every mismatch between assumptions and
// declarations without failing, logging each one. Callers that want a
// hard stop use Preflight.
func (c *Composer) PreflightIssues() []Issue {
	issues := c.preflightIssues()
	for _, issue := range issues {
		c.log.Warn("preflight issue", "issue", issue.Message)
	}
	return issues
}

// Preflight fails with a PreflightError if any assumption/declaration
// mismatch exists. Proving is expensive; this is the cheap gate in front
// of it.
func (c *Composer) Preflight() error {
	if issues := c.preflightIssues(); len(issues) > 0 {
		return &PreflightError{Issues: issues}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Proving.

// Prove runs the preflight check, proves the image over the accumulated
// input with the registered assumptions, and returns the outer receipt.
// The prover discharges every assumption it consumed, so a successful
// composition is unconditional. Prove finalizes the composer whether it
// succeeds or fails.
func (c *Composer) Prove() (*types.Receipt, error) {
	if c.finalized {
		return nil, ErrFinalized
	}
	c.finalized = true

	data, err := c.builder.Build()
	if err != nil {
		return nil, err
	}
	if err := c.Preflight(); err != nil {
		return nil, err
	}

	receipt, err := c.prover.ProveWithAssumptions(c.image, data, c.assumptions)
	if err != nil {
		return nil, &CompositionError{Err: err}
	}
	if n := uint32(len(c.assumptions)); n > 0 && receipt.AssumptionCount >= n {
		return nil, &CompositionError{Err: fmt.Errorf(
			"receipt still depends on %d of %d assumptions", receipt.AssumptionCount, n)}
	}

	metrics.CompositionsProven.Inc()
	c.log.Info("composition proven",
		"image", receipt.ClaimedImageID.String(),
		"assumptions", len(c.assumptions),
		"journal_bytes", len(receipt.JournalBytes()))
	return receipt, nil
}

// ---------------------------------------------------------------------------
// Accessors.

// InputSize returns the number of input bytes accumulated so far.
func (c *Composer) InputSize() int {
	return c.builder.Size()
}

// AssumptionCount returns the number of registered assumptions.
func (c *Composer) AssumptionCount() int {
	return len(c.assumptions)
}

// ExpectationCount returns the number of declared verifications.
func (c *Composer) ExpectationCount() int {
	return len(c.expectations)
}

// String implements fmt.Stringer.
func (c *Composer) String() string {
	return fmt.Sprintf("Composer(image=0x%x, input=%dB, assumptions=%d, expectations=%d)",
		c.image.ID().Bytes()[:4], c.builder.Size(), len(c.assumptions), len(c.expectations))
}
