package zkvm

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/zkrail/zkrail/core/types"
	"github.com/zkrail/zkrail/crypto"
)

// Default execution limits.
const (
	// DefaultSegmentCycles is the cycle budget after which the executor
	// closes a segment and continues in the next one.
	DefaultSegmentCycles = 1 << 16

	// DefaultMaxCycles caps a whole session. Runs that reach it end with a
	// SessionLimit exit.
	DefaultMaxCycles = 1 << 24
)

// State digest domains.
var (
	stateInitDomain = []byte("zkrail/state-init/v1")
	stateStepDomain = []byte("zkrail/state-step/v1")
)

// Config holds executor limits.
type Config struct {
	SegmentCycles uint64
	MaxCycles     uint64
}

// DefaultConfig returns the default executor limits.
func DefaultConfig() Config {
	return Config{
		SegmentCycles: DefaultSegmentCycles,
		MaxCycles:     DefaultMaxCycles,
	}
}

// Executor runs guest images, meters their cycles, and slices the recorded
// transcript into segments.
type Executor struct {
	cfg      Config
	registry *GuestRegistry
}

// NewExecutor creates an executor resolving guests against the default
// registry. Zero limits fall back to the defaults.
func NewExecutor(cfg Config) *Executor {
	return NewExecutorWithRegistry(cfg, DefaultRegistry)
}

// NewExecutorWithRegistry creates an executor resolving guests against the
// given registry.
func NewExecutorWithRegistry(cfg Config, registry *GuestRegistry) *Executor {
	if cfg.SegmentCycles == 0 {
		cfg.SegmentCycles = DefaultSegmentCycles
	}
	if cfg.MaxCycles == 0 {
		cfg.MaxCycles = DefaultMaxCycles
	}
	return &Executor{cfg: cfg, registry: registry}
}

// Config returns the executor's effective limits.
func (x *Executor) Config() Config {
	return x.cfg
}

// Execute runs the image's guest over the input and returns the resulting
// session. Assumptions are made available to the guest's Verify calls;
// a Verify with no matching assumption faults the execution. Guest faults
// are returned as a FaultError wrapping the cause; reaching the session
// cycle budget is not a fault and yields a session with a SessionLimit
// exit.
func (x *Executor) Execute(img *Image, input []byte, assumptions ...Assumption) (*Session, error) {
	if img == nil {
		return nil, fmt.Errorf("%w: nil image", ErrInvalidImage)
	}
	fn, err := x.registry.Lookup(img.Name())
	if err != nil {
		return nil, fmt.Errorf("%w: %q", err, img.Name())
	}

	env := newEnv(input, x.cfg.MaxCycles, assumptions)
	runErr := runGuest(fn, env)

	var exit types.ExitStatus
	switch {
	case env.limited || errors.Is(runErr, ErrSessionLimit):
		exit = types.SessionLimit()
	case runErr == nil:
		exit = types.Halted(0)
	case errors.Is(runErr, errHalt), errors.Is(runErr, errPause):
		exit = env.exit
	default:
		return nil, &FaultError{Guest: img.Name(), Err: runErr}
	}

	return &Session{
		ImageID:     img.ID(),
		Journal:     types.Journal(env.Journal()),
		Exit:        exit,
		Segments:    buildSegments(img.ID(), env, x.cfg.SegmentCycles, exit),
		Assumptions: env.consumed,
		TotalCycles: env.cycles,
	}, nil
}

// runGuest invokes the guest with panic recovery: a panicking guest is a
// fault, not a host crash.
func runGuest(fn GuestFunc, env *Env) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrGuestPanicked, r)
		}
	}()
	return fn(env)
}

// initialState derives the session's starting state digest from the image
// id and the input bytes.
func initialState(id types.ImageID, inputDigest [32]byte) types.Digest {
	return types.Digest(crypto.Sha256(stateInitDomain, id[:], inputDigest[:]))
}

// stepState chains one transcript entry into the state digest.
func stepState(state types.Digest, entry transcriptEntry) types.Digest {
	size := binary.LittleEndian.AppendUint64(nil, uint64(len(entry.data)))
	return types.Digest(crypto.Sha256(stateStepDomain, state[:], []byte{entry.tag}, size, entry.data))
}

// buildSegments slices the transcript into segments of at most
// segmentCycles each. A single operation larger than the budget gets a
// segment of its own. Interior segments exit with SystemSplit; the final
// segment carries the session exit. Every session has at least one
// segment, even when the guest recorded no operations.
func buildSegments(id types.ImageID, env *Env, segmentCycles uint64, finalExit types.ExitStatus) []*Segment {
	var segments []*Segment

	state := initialState(id, env.inputDigest)
	segPre := state
	var segCycles uint64

	for _, entry := range env.entries {
		if segCycles > 0 && segCycles+entry.cycles > segmentCycles {
			segments = append(segments, &Segment{
				Index:     uint32(len(segments)),
				ImageID:   id,
				PreState:  segPre,
				PostState: state,
				Exit:      types.SystemSplit(),
				Cycles:    segCycles,
			})
			segPre = state
			segCycles = 0
		}
		state = stepState(state, entry)
		segCycles += entry.cycles
	}

	segments = append(segments, &Segment{
		Index:     uint32(len(segments)),
		ImageID:   id,
		PreState:  segPre,
		PostState: state,
		Exit:      finalExit,
		Cycles:    segCycles,
	})
	return segments
}
