package zkvm

import (
	"fmt"

	"github.com/zkrail/zkrail/core/types"
)

// Segment is one executor-sized slice of a session. Its pre and post state
// digests chain over the execution transcript: the post state of segment k
// equals the pre state of segment k+1.
type Segment struct {
	Index     uint32
	ImageID   types.ImageID
	PreState  types.Digest
	PostState types.Digest
	Exit      types.ExitStatus
	Cycles    uint64
}

// IsFinal reports whether this segment ended the session rather than
// splitting at the segment cycle bound.
func (s *Segment) IsFinal() bool {
	return s.Exit.Kind != types.ExitSystemSplit
}

// String implements fmt.Stringer.
func (s *Segment) String() string {
	return fmt.Sprintf("Segment(%d, exit=%s, cycles=%d)", s.Index, s.Exit, s.Cycles)
}

// Session is the result of executing a guest to its exit: the journal, the
// exit status, the segment chain, and the assumptions Verify calls consumed
// along the way.
type Session struct {
	ImageID     types.ImageID
	Journal     types.Journal
	Exit        types.ExitStatus
	Segments    []*Segment
	Assumptions []Assumption
	TotalCycles uint64
}

// SegmentCount returns the number of segments in the session.
func (s *Session) SegmentCount() int {
	return len(s.Segments)
}

// Ok reports whether the session halted with user code zero.
func (s *Session) Ok() bool {
	return s.Exit.Ok()
}

// String implements fmt.Stringer.
func (s *Session) String() string {
	return fmt.Sprintf("Session(image=0x%x, segments=%d, exit=%s, cycles=%d, journal=%dB)",
		s.ImageID[:4], len(s.Segments), s.Exit, s.TotalCycles, len(s.Journal))
}
