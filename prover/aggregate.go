package prover

import (
	"errors"
	"fmt"

	"github.com/zkrail/zkrail/core/types"
	"github.com/zkrail/zkrail/metrics"
	"github.com/zkrail/zkrail/zkvm"
)

// Aggregation errors.
var (
	ErrNilReceipt    = errors.New("prover: nil receipt")
	ErrNotSegment    = errors.New("prover: receipt is not a segment receipt")
	ErrNotSuccinct   = errors.New("prover: receipt is not a succinct receipt")
	ErrImageMismatch = errors.New("prover: receipts cover different images")
	ErrNotAdjacent   = errors.New("prover: receipt states do not chain")
	ErrNotSplit      = errors.New("prover: left receipt does not end in a system split")
	ErrNothingToJoin = errors.New("prover: no receipts to join")
)

// Lift turns a segment receipt into a succinct receipt over the same
// claim and state span. Lifted receipts are the inputs Join composes.
func (p *Prover) Lift(r *types.Receipt) (*types.Receipt, error) {
	if r == nil {
		return nil, ErrNilReceipt
	}
	if r.Kind != types.KindSegment {
		return nil, fmt.Errorf("%w: got %s", ErrNotSegment, r.Kind)
	}

	seal := zkvm.SuccinctSeal(
		r.ClaimedImageID,
		r.Claim().Digest(),
		r.PreState,
		r.PostState,
		r.AssumptionCount,
	)
	metrics.ReceiptsLifted.Inc()
	return &types.Receipt{
		Kind:            types.KindSuccinct,
		Seal:            seal,
		ClaimedImageID:  r.ClaimedImageID,
		Journal:         types.Journal(r.Journal.Bytes()),
		Exit:            r.Exit,
		AssumptionCount: r.AssumptionCount,
		PreState:        r.PreState,
		PostState:       r.PostState,
		Cycles:          r.Cycles,
	}, nil
}

// Join merges two adjacent succinct receipts into one covering both state
// spans. The left receipt must end in a system split and its post state
// must equal the right receipt's pre state. The joined receipt carries
// the right receipt's journal and exit, and the assumption counts add.
func (p *Prover) Join(a, b *types.Receipt) (*types.Receipt, error) {
	if a == nil || b == nil {
		return nil, ErrNilReceipt
	}
	if a.Kind != types.KindSuccinct {
		return nil, fmt.Errorf("%w: left is %s", ErrNotSuccinct, a.Kind)
	}
	if b.Kind != types.KindSuccinct {
		return nil, fmt.Errorf("%w: right is %s", ErrNotSuccinct, b.Kind)
	}
	if a.ClaimedImageID != b.ClaimedImageID {
		return nil, fmt.Errorf("%w: 0x%x vs 0x%x", ErrImageMismatch, a.ClaimedImageID[:4], b.ClaimedImageID[:4])
	}
	if a.Exit.Kind != types.ExitSystemSplit {
		return nil, fmt.Errorf("%w: left exit is %s", ErrNotSplit, a.Exit)
	}
	if a.PostState != b.PreState {
		return nil, fmt.Errorf("%w: post 0x%x vs pre 0x%x", ErrNotAdjacent, a.PostState[:4], b.PreState[:4])
	}

	count := a.AssumptionCount + b.AssumptionCount
	journal := types.Journal(b.Journal.Bytes())
	claim := types.Claim{
		ImageID: a.ClaimedImageID,
		Journal: journal,
		Exit:    b.Exit,
	}
	seal := zkvm.SuccinctSeal(
		a.ClaimedImageID,
		claim.Digest(),
		a.PreState,
		b.PostState,
		count,
	)
	metrics.ReceiptsJoined.Inc()
	return &types.Receipt{
		Kind:            types.KindSuccinct,
		Seal:            seal,
		ClaimedImageID:  a.ClaimedImageID,
		Journal:         journal,
		Exit:            b.Exit,
		AssumptionCount: count,
		PreState:        a.PreState,
		PostState:       b.PostState,
		Cycles:          a.Cycles + b.Cycles,
	}, nil
}

// JoinAll folds a left-to-right chain of succinct receipts into one.
// A single receipt passes through unchanged.
func (p *Prover) JoinAll(receipts []*types.Receipt) (*types.Receipt, error) {
	if len(receipts) == 0 {
		return nil, ErrNothingToJoin
	}
	joined := receipts[0]
	for _, r := range receipts[1:] {
		var err error
		if joined, err = p.Join(joined, r); err != nil {
			return nil, err
		}
	}
	return joined, nil
}
