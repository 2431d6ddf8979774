package types

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"
)

// ErrReceiptCorrupt is returned when receipt bytes cannot be decoded back
// into a structurally valid receipt.
var ErrReceiptCorrupt = errors.New("types: corrupt receipt encoding")

// ReceiptKind discriminates the two receipt shapes produced by the proving
// pipeline.
type ReceiptKind uint8

const (
	// KindSegment marks a receipt covering a single execution segment.
	// Nonzero so that a zero-value receipt is never mistaken for a valid
	// segment receipt.
	KindSegment ReceiptKind = 1

	// KindSuccinct marks a receipt produced by lifting or joining, covering
	// a whole session under one constant-size seal.
	KindSuccinct ReceiptKind = 2
)

// String implements fmt.Stringer.
func (k ReceiptKind) String() string {
	switch k {
	case KindSegment:
		return "segment"
	case KindSuccinct:
		return "succinct"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(k))
	}
}

// Receipt is the transferable attestation of a guest execution. It carries
// the cryptographic seal, the claimed image identity, the public journal and
// exit status, and the state digests the seal binds.
//
// The claimed image id names what the receipt says it attests to. It is
// untrusted until Verify checks the seal against an identity the caller
// supplies independently. Receipts are treated as immutable after creation;
// callers must not mutate a receipt they did not construct.
type Receipt struct {
	Kind            ReceiptKind
	Seal            []byte
	ClaimedImageID  ImageID
	Journal         Journal
	Exit            ExitStatus
	AssumptionCount uint32
	SegmentIndex    uint32
	PreState        Digest
	PostState       Digest
	Cycles          uint64
}

// Claim projects the receipt onto its pure-data claim, using the claimed
// image id.
func (r *Receipt) Claim() Claim {
	return Claim{
		ImageID: r.ClaimedImageID,
		Journal: r.Journal,
		Exit:    r.Exit,
	}
}

// JournalBytes returns a copy of the journal contents.
func (r *Receipt) JournalBytes() []byte {
	return r.Journal.Bytes()
}

// JournalHex returns the journal as a lowercase hex string without prefix.
func (r *Receipt) JournalHex() string {
	return r.Journal.Hex()
}

// JournalText returns the journal decoded as UTF-8 text. The second return
// is false when the journal is not valid UTF-8.
func (r *Receipt) JournalText() (string, bool) {
	return r.Journal.Text()
}

// JournalDigest returns the SHA-256 digest of the journal.
func (r *Receipt) JournalDigest() Digest {
	return r.Journal.Digest()
}

// ExitCode returns the guest-supplied exit code.
func (r *Receipt) ExitCode() uint32 {
	return r.Exit.UserCode
}

// SealSize returns the seal length in bytes.
func (r *Receipt) SealSize() int {
	return len(r.Seal)
}

// IsUnconditional reports whether the receipt carries no unresolved
// assumptions. Only unconditional receipts are accepted as composition
// inputs.
func (r *Receipt) IsUnconditional() bool {
	return r.AssumptionCount == 0
}

// IsSegment reports whether the receipt covers a single segment.
func (r *Receipt) IsSegment() bool {
	return r.Kind == KindSegment
}

// IsSuccinct reports whether the receipt covers a full session.
func (r *Receipt) IsSuccinct() bool {
	return r.Kind == KindSuccinct
}

// String implements fmt.Stringer.
func (r *Receipt) String() string {
	return fmt.Sprintf("Receipt(kind=%s, image=%s, journal=%dB, exit=%s, assumptions=%d)",
		r.Kind, shortHex(r.ClaimedImageID[:]), len(r.Journal), r.Exit, r.AssumptionCount)
}

// rlpReceipt is the wire form of a receipt. Exit status is flattened into
// its kind and code words so the encoding stays a single struct of RLP-native
// field types.
type rlpReceipt struct {
	Kind            uint8
	Seal            []byte
	ClaimedImageID  [IDLength]byte
	Journal         []byte
	ExitKind        uint8
	ExitCode        uint32
	AssumptionCount uint32
	SegmentIndex    uint32
	PreState        [DigestLength]byte
	PostState       [DigestLength]byte
	Cycles          uint64
}

// ToBytes serializes the receipt into its canonical RLP wire form.
func (r *Receipt) ToBytes() ([]byte, error) {
	enc := rlpReceipt{
		Kind:            uint8(r.Kind),
		Seal:            r.Seal,
		ClaimedImageID:  r.ClaimedImageID,
		Journal:         r.Journal,
		ExitKind:        uint8(r.Exit.Kind),
		ExitCode:        r.Exit.UserCode,
		AssumptionCount: r.AssumptionCount,
		SegmentIndex:    r.SegmentIndex,
		PreState:        [DigestLength]byte(r.PreState),
		PostState:       [DigestLength]byte(r.PostState),
		Cycles:          r.Cycles,
	}
	return rlp.EncodeToBytes(&enc)
}

// ReceiptFromBytes deserializes a receipt from its RLP wire form. Corrupt or
// truncated input and unknown receipt kinds are reported as
// ErrReceiptCorrupt.
func ReceiptFromBytes(data []byte) (*Receipt, error) {
	var dec rlpReceipt
	if err := rlp.DecodeBytes(data, &dec); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReceiptCorrupt, err)
	}
	kind := ReceiptKind(dec.Kind)
	if kind != KindSegment && kind != KindSuccinct {
		return nil, fmt.Errorf("%w: unknown receipt kind %d", ErrReceiptCorrupt, dec.Kind)
	}
	exitKind := ExitKind(dec.ExitKind)
	if exitKind > ExitSessionLimit {
		return nil, fmt.Errorf("%w: unknown exit kind %d", ErrReceiptCorrupt, dec.ExitKind)
	}
	return &Receipt{
		Kind:            kind,
		Seal:            dec.Seal,
		ClaimedImageID:  ImageID(dec.ClaimedImageID),
		Journal:         Journal(dec.Journal),
		Exit:            ExitStatus{Kind: exitKind, UserCode: dec.ExitCode},
		AssumptionCount: dec.AssumptionCount,
		SegmentIndex:    dec.SegmentIndex,
		PreState:        Digest(dec.PreState),
		PostState:       Digest(dec.PostState),
		Cycles:          dec.Cycles,
	}, nil
}
