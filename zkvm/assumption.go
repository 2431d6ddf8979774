package zkvm

import (
	"fmt"

	"github.com/zkrail/zkrail/core/types"
)

// Assumption makes an inner receipt available to a guest's Verify calls.
// A Verify(id, journal) call consumes the assumption whose image id and
// journal digest match.
type Assumption struct {
	ImageID       types.ImageID
	JournalDigest types.Digest
	Receipt       *types.Receipt
}

// NewAssumption derives an assumption from a receipt, keyed by the
// receipt's claimed image id and journal digest.
func NewAssumption(r *types.Receipt) Assumption {
	return Assumption{
		ImageID:       r.ClaimedImageID,
		JournalDigest: r.JournalDigest(),
		Receipt:       r,
	}
}

// String implements fmt.Stringer.
func (a Assumption) String() string {
	return fmt.Sprintf("Assumption(image=0x%x, journal_digest=0x%x)", a.ImageID[:4], a.JournalDigest[:4])
}
