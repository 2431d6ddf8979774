package types

import (
	"bytes"
	"fmt"

	"github.com/zkrail/zkrail/crypto"
)

// claimDomain separates claim digests from every other SHA-256 use in the
// pipeline.
var claimDomain = []byte("ReceiptClaim")

// Claim is a pure-data projection of a receipt: what is being proven (image
// identity, public output, exit status) with no reference to how it is
// proven. Composition logic reasons over claims; seals never appear here.
type Claim struct {
	ImageID ImageID
	Journal Journal
	Exit    ExitStatus
}

// JournalDigest returns the SHA-256 digest of the claim's journal.
func (c Claim) JournalDigest() Digest {
	return c.Journal.Digest()
}

// Digest returns the deterministic digest identifying this claim: SHA-256
// over the image id, the journal digest, the exit wire form, and the claim
// domain tag.
func (c Claim) Digest() Digest {
	jd := c.JournalDigest()
	return Digest(crypto.Sha256(c.ImageID[:], jd[:], c.Exit.Wire(), claimDomain))
}

// Matches reports whether the claim attests to exactly the given image id
// and journal bytes.
func (c Claim) Matches(id ImageID, journal []byte) bool {
	return c.ImageID == id && bytes.Equal(c.Journal, journal)
}

// Ok reports whether the claimed execution completed successfully.
func (c Claim) Ok() bool {
	return c.Exit.Ok()
}

// String implements fmt.Stringer.
func (c Claim) String() string {
	return fmt.Sprintf("Claim(image=%s, journal=%dB, exit=%s)",
		shortHex(c.ImageID[:]), len(c.Journal), c.Exit)
}

// shortHex renders the first few bytes of an identifier for log and repr
// output.
func shortHex(b []byte) string {
	if len(b) > 8 {
		b = b[:8]
	}
	return fmt.Sprintf("0x%x", b)
}
