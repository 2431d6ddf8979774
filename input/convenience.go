package input

// MerkleDepth is the fixed sibling-path depth of the merkle verification
// layout. Shorter paths are zero-padded up to it; deeper paths are
// rejected so the encoded input keeps its fixed size.
const MerkleDepth = 16

// Ed25519Input encodes a signature verification input in the frame layout:
// 32 raw public key bytes, 64 raw signature bytes, then the message as a
// length-prefixed frame. The result is always 104+len(msg) bytes.
func Ed25519Input(pub, sig, msg []byte) ([]byte, error) {
	return NewBuilder().
		WriteBytes32(pub).
		WriteBytes64(sig).
		WriteFrame(msg).
		Build()
}

// Ed25519WordInput encodes a signature verification input in the legacy
// word-vector layout: three word vectors holding the public key, the
// signature and the message. Only guests built against the word calling
// convention consume this layout.
func Ed25519WordInput(pub, sig, msg []byte) ([]byte, error) {
	if len(pub) != 32 {
		return nil, lengthError("ed25519 public key", 32, len(pub))
	}
	if len(sig) != 64 {
		return nil, lengthError("ed25519 signature", 64, len(sig))
	}
	return NewBuilder().
		WriteWordVec(pub).
		WriteWordVec(sig).
		WriteWordVec(msg).
		Build()
}

// MerklePathInput encodes a merkle membership proof in the word layout the
// merkle verification guest reads: the commitment triple (kpub, r, e) as
// words, the sibling path prefixed by its length, then the direction bits
// prefixed by theirs. Paths shorter than MerkleDepth are zero-padded to
// it, so the output is always 2504 bytes; deeper paths are rejected.
func MerklePathInput(kpub, r, e []byte, siblings [][]byte, bits []bool) ([]byte, error) {
	if len(kpub) != 32 {
		return nil, lengthError("merkle kpub", 32, len(kpub))
	}
	if len(r) != 32 {
		return nil, lengthError("merkle r", 32, len(r))
	}
	if len(e) != 32 {
		return nil, lengthError("merkle e", 32, len(e))
	}
	if len(siblings) > MerkleDepth {
		return nil, lengthError("merkle path depth", MerkleDepth, len(siblings))
	}
	if len(bits) != len(siblings) {
		return nil, lengthError("merkle direction bits", len(siblings), len(bits))
	}
	for _, sib := range siblings {
		if len(sib) != 32 {
			return nil, lengthError("merkle sibling", 32, len(sib))
		}
	}

	b := NewBuilder()
	writeWords(b, kpub)
	writeWords(b, r)
	writeWords(b, e)

	b.WriteU32(MerkleDepth)
	var zero [32]byte
	for _, sib := range siblings {
		writeWords(b, sib)
	}
	for i := len(siblings); i < MerkleDepth; i++ {
		writeWords(b, zero[:])
	}

	b.WriteU32(MerkleDepth)
	for _, bit := range bits {
		if bit {
			b.WriteU32(1)
		} else {
			b.WriteU32(0)
		}
	}
	for i := len(bits); i < MerkleDepth; i++ {
		b.WriteU32(0)
	}

	return b.Build()
}

// writeWords appends each byte of p as its own u32 little-endian word,
// without a count prefix.
func writeWords(b *Builder, p []byte) {
	for _, c := range p {
		b.WriteU32(uint32(c))
	}
}
