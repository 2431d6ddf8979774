package zkvm

import (
	"bytes"
	"encoding/binary"

	"github.com/zkrail/zkrail/core/types"
	"github.com/zkrail/zkrail/crypto"
)

// Seal layout: three derived points A(64) || B(128) || C(64), 256 bytes
// total. The points form a SHA-256 transcript over a 32-byte base
// commitment; verification recomputes the chain from trusted inputs and
// compares.
const (
	sealPointASize = 64
	sealPointBSize = 128
	sealPointCSize = 64

	// SealSize is the length of every seal this backend produces.
	SealSize = sealPointASize + sealPointBSize + sealPointCSize
)

// Seal base commitment domains.
var (
	segmentSealDomain  = []byte("zkrail/segment-seal/v1")
	succinctSealDomain = []byte("zkrail/succinct-seal/v1")
)

// SegmentSeal produces the seal of a segment receipt. The base commitment
// binds the image id, the segment's position and state chain, the exit
// status, the journal digest, and the assumption count.
func SegmentSeal(id types.ImageID, index uint32, pre, post types.Digest, exit types.ExitStatus, journalDigest types.Digest, assumptionCount uint32) []byte {
	base := crypto.Sha256(
		segmentSealDomain,
		id[:],
		u32le(index),
		pre[:],
		post[:],
		exit.Wire(),
		journalDigest[:],
		u32le(assumptionCount),
	)
	return buildSeal(base, id)
}

// VerifySegmentSeal recomputes the expected segment seal from the given
// fields and compares.
func VerifySegmentSeal(seal []byte, id types.ImageID, index uint32, pre, post types.Digest, exit types.ExitStatus, journalDigest types.Digest, assumptionCount uint32) bool {
	if len(seal) != SealSize {
		return false
	}
	return bytes.Equal(seal, SegmentSeal(id, index, pre, post, exit, journalDigest, assumptionCount))
}

// SuccinctSeal produces the seal of a succinct receipt. The base
// commitment binds the image id, the claim digest, the covered state span,
// and the assumption count.
func SuccinctSeal(id types.ImageID, claimDigest types.Digest, pre, post types.Digest, assumptionCount uint32) []byte {
	base := crypto.Sha256(
		succinctSealDomain,
		id[:],
		claimDigest[:],
		pre[:],
		post[:],
		u32le(assumptionCount),
	)
	return buildSeal(base, id)
}

// VerifySuccinctSeal recomputes the expected succinct seal from the given
// fields and compares.
func VerifySuccinctSeal(seal []byte, id types.ImageID, claimDigest types.Digest, pre, post types.Digest, assumptionCount uint32) bool {
	if len(seal) != SealSize {
		return false
	}
	return bytes.Equal(seal, SuccinctSeal(id, claimDigest, pre, post, assumptionCount))
}

// buildSeal derives the three points from the base commitment and
// assembles them.
func buildSeal(base [32]byte, id types.ImageID) []byte {
	a := computeSealA(base)
	b := computeSealB(a, id)
	c := computeSealC(a, b)

	seal := make([]byte, SealSize)
	copy(seal[0:], a[:])
	copy(seal[sealPointASize:], b[:])
	copy(seal[sealPointASize+sealPointBSize:], c[:])
	return seal
}

// computeSealA derives the A point (64 bytes, two hashes of the base).
func computeSealA(base [32]byte) [64]byte {
	first := crypto.Sha256(base[:], []byte("SealPointA"))
	second := crypto.Sha256([]byte("SealPointA2"), base[:])

	var out [64]byte
	copy(out[:32], first[:])
	copy(out[32:], second[:])
	return out
}

// computeSealB derives the B point (128 bytes, four indexed hashes binding
// the image id).
func computeSealB(a [64]byte, id types.ImageID) [128]byte {
	var out [128]byte
	for i := 0; i < 4; i++ {
		h := crypto.Sha256(a[:], id[:], u32le(uint32(i)), []byte("SealPointB"))
		copy(out[i*32:], h[:])
	}
	return out
}

// computeSealC derives the C point (64 bytes, two hashes chaining A and B).
func computeSealC(a [64]byte, b [128]byte) [64]byte {
	first := crypto.Sha256(a[:], b[:], []byte("SealPointC"))
	second := crypto.Sha256(b[:], a[:], []byte("SealPointC2"))

	var out [64]byte
	copy(out[:32], first[:])
	copy(out[32:], second[:])
	return out
}

// u32le encodes a 32-bit word little-endian.
func u32le(v uint32) []byte {
	return binary.LittleEndian.AppendUint32(nil, v)
}
