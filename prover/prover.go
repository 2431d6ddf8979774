// Package prover turns guest executions into receipts. It drives the
// zkvm executor, proves each segment of the resulting session, lifts
// segment receipts into succinct ones, and joins chains of succinct
// receipts into a single receipt covering the whole session.
package prover

import (
	"errors"
	"fmt"

	"github.com/zkrail/zkrail/core/types"
	"github.com/zkrail/zkrail/log"
	"github.com/zkrail/zkrail/metrics"
	"github.com/zkrail/zkrail/zkvm"
)

// Proving errors.
var (
	ErrNilSession = errors.New("prover: nil session")
	ErrNilSegment = errors.New("prover: nil segment")
)

// Config holds the prover's execution limits.
type Config struct {
	// SegmentCycles is the per-segment cycle budget handed to the
	// executor. Zero means the executor default.
	SegmentCycles uint64

	// MaxCycles caps a whole session. Zero means the executor default.
	MaxCycles uint64
}

// DefaultConfig returns the default prover configuration.
func DefaultConfig() Config {
	return Config{
		SegmentCycles: zkvm.DefaultSegmentCycles,
		MaxCycles:     zkvm.DefaultMaxCycles,
	}
}

// Prover executes guests and produces receipts over their sessions.
type Prover struct {
	cfg      Config
	executor *zkvm.Executor
	log      *log.Logger
}

// New creates a Prover with the given limits, resolving guests against
// the default registry.
func New(cfg Config) *Prover {
	return &Prover{
		cfg: cfg,
		executor: zkvm.NewExecutor(zkvm.Config{
			SegmentCycles: cfg.SegmentCycles,
			MaxCycles:     cfg.MaxCycles,
		}),
		log: log.Default().Module("prover"),
	}
}

// Config returns the prover's configuration.
func (p *Prover) Config() Config {
	return p.cfg
}

// Execute runs the image's guest over the input without proving anything.
// Callers can inspect the session before paying for receipts.
func (p *Prover) Execute(img *zkvm.Image, input []byte, assumptions ...zkvm.Assumption) (*zkvm.Session, error) {
	session, err := p.executor.Execute(img, input, assumptions...)
	if err != nil {
		return nil, err
	}
	metrics.SessionsExecuted.Inc()
	metrics.SegmentsExecuted.Add(int64(session.SegmentCount()))
	metrics.CyclesExecuted.Add(int64(session.TotalCycles))
	metrics.CycleRate.Mark(int64(session.TotalCycles))
	p.log.Debug("executed session",
		"image", session.ImageID.String(),
		"segments", session.SegmentCount(),
		"cycles", session.TotalCycles,
		"exit", session.Exit.String())
	return session, nil
}

// ProveSegment produces the segment receipt for one segment of a session.
// Only the final segment carries the session journal and the session's
// assumption dependencies; interior segments attest state transitions
// with an empty journal.
func (p *Prover) ProveSegment(session *zkvm.Session, segment *zkvm.Segment) (*types.Receipt, error) {
	if session == nil {
		return nil, ErrNilSession
	}
	return p.proveSegment(session, segment, uint32(len(session.Assumptions)))
}

func (p *Prover) proveSegment(session *zkvm.Session, segment *zkvm.Segment, unresolved uint32) (*types.Receipt, error) {
	if session == nil {
		return nil, ErrNilSession
	}
	if segment == nil {
		return nil, ErrNilSegment
	}

	var journal types.Journal
	var count uint32
	if segment.IsFinal() {
		journal = types.Journal(session.Journal.Bytes())
		count = unresolved
	}

	seal := zkvm.SegmentSeal(
		session.ImageID,
		segment.Index,
		segment.PreState,
		segment.PostState,
		segment.Exit,
		journal.Digest(),
		count,
	)
	metrics.SegmentsProven.Inc()
	metrics.SegmentRate.Mark(1)
	return &types.Receipt{
		Kind:            types.KindSegment,
		Seal:            seal,
		ClaimedImageID:  session.ImageID,
		Journal:         journal,
		Exit:            segment.Exit,
		AssumptionCount: count,
		SegmentIndex:    segment.Index,
		PreState:        segment.PreState,
		PostState:       segment.PostState,
		Cycles:          segment.Cycles,
	}, nil
}

// Prove executes the image's guest over the input and produces a single
// succinct receipt covering the whole session: every segment is proven,
// lifted, and the chain joined.
func (p *Prover) Prove(img *zkvm.Image, input []byte) (*types.Receipt, error) {
	session, err := p.Execute(img, input)
	if err != nil {
		return nil, err
	}
	return p.proveSession(session, uint32(len(session.Assumptions)))
}

// ProveWithAssumptions is Prove for composed executions: each assumption
// receipt is integrity-checked up front, the guest runs with the
// assumptions available to its Verify calls, and the resulting receipt is
// unconditional because the prover has already discharged every
// assumption it consumed.
func (p *Prover) ProveWithAssumptions(img *zkvm.Image, input []byte, assumptions []zkvm.Assumption) (*types.Receipt, error) {
	for i, a := range assumptions {
		if err := VerifyIntegrity(a.Receipt); err != nil {
			return nil, fmt.Errorf("prover: assumption %d: %w", i, err)
		}
	}

	session, err := p.Execute(img, input, assumptions...)
	if err != nil {
		return nil, err
	}
	metrics.AssumptionsResolved.Add(int64(len(session.Assumptions)))
	return p.proveSession(session, 0)
}

// proveSession proves, lifts, and joins every segment of the session into
// one succinct receipt.
func (p *Prover) proveSession(session *zkvm.Session, unresolved uint32) (*types.Receipt, error) {
	timer := metrics.NewTimer(metrics.ProveTime)
	defer timer.Stop()

	receipts := make([]*types.Receipt, 0, session.SegmentCount())
	for _, segment := range session.Segments {
		segReceipt, err := p.proveSegment(session, segment, unresolved)
		if err != nil {
			return nil, err
		}
		lifted, err := p.Lift(segReceipt)
		if err != nil {
			return nil, err
		}
		receipts = append(receipts, lifted)
	}

	receipt, err := p.JoinAll(receipts)
	if err != nil {
		return nil, err
	}
	metrics.ProofsCompleted.Inc()
	p.log.Info("proof completed",
		"image", receipt.ClaimedImageID.String(),
		"segments", session.SegmentCount(),
		"cycles", receipt.Cycles,
		"exit", receipt.Exit.String(),
		"assumptions", receipt.AssumptionCount)
	return receipt, nil
}
