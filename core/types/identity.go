// Package types defines the artifact model of the proving pipeline: program
// identities, digests, exit statuses, journals, claims, and receipts.
package types

import (
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

const (
	// IDLength is the byte length of an image id.
	IDLength = 32
	// DigestLength is the byte length of a SHA-256 digest.
	DigestLength = 32
)

var (
	ErrInvalidIDLength = errors.New("types: image id must be exactly 32 bytes")
	ErrInvalidIDHex    = errors.New("types: image id is not valid hex")
)

// ImageID is the 32-byte identity of a guest image, derived from the image
// content. Callers never compute one by hand; ids come from a loaded image,
// a compile-time constant, or configuration.
type ImageID [IDLength]byte

// Digest is a 32-byte SHA-256 digest (journal digests, claim digests,
// execution state digests).
type Digest [DigestLength]byte

// ImageIdentity is the one way a trusted image identity enters
// verification. Every accepted surface form (ImageID, RawID, HexID, loaded
// image) normalizes to a canonical ImageID before any cryptographic check,
// so verification logic never branches on the representation.
type ImageIdentity interface {
	TrustedImageID() (ImageID, error)
}

// BytesToImageID converts bytes to ImageID, left-padding if shorter than 32
// bytes. Intended for constructing ids from known-good material; use RawID
// when the length must be enforced.
func BytesToImageID(b []byte) ImageID {
	var id ImageID
	id.SetBytes(b)
	return id
}

// HexToImageID converts a hex string to ImageID, left-padding short input.
func HexToImageID(s string) ImageID {
	return BytesToImageID(common.FromHex(s))
}

// ParseImageID parses a strict 64-digit hex image id. The 0x or 0X prefix
// is optional and hex digits may be in either case.
func ParseImageID(s string) (ImageID, error) {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		s = s[2:]
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return ImageID{}, fmt.Errorf("%w: %v", ErrInvalidIDHex, err)
	}
	if len(b) != IDLength {
		return ImageID{}, fmt.Errorf("%w: got %d", ErrInvalidIDLength, len(b))
	}
	var id ImageID
	copy(id[:], b)
	return id, nil
}

// Bytes returns the byte representation of the id.
func (id ImageID) Bytes() []byte { return id[:] }

// Hex returns the hex string representation of the id.
func (id ImageID) Hex() string { return fmt.Sprintf("0x%x", id[:]) }

// SetBytes sets the id from a byte slice, left-padding if necessary.
func (id *ImageID) SetBytes(b []byte) {
	if len(b) > IDLength {
		b = b[len(b)-IDLength:]
	}
	copy(id[IDLength-len(b):], b)
}

// IsZero returns whether the id is all zeros.
func (id ImageID) IsZero() bool {
	return id == ImageID{}
}

// String implements fmt.Stringer.
func (id ImageID) String() string { return id.Hex() }

// TrustedImageID returns the id itself; an ImageID is already canonical.
func (id ImageID) TrustedImageID() (ImageID, error) {
	return id, nil
}

// RawID is a trusted image identity supplied as raw bytes. Unlike
// BytesToImageID it enforces the exact 32-byte length.
type RawID []byte

// TrustedImageID validates the length and returns the canonical id.
func (r RawID) TrustedImageID() (ImageID, error) {
	if len(r) != IDLength {
		return ImageID{}, fmt.Errorf("%w: got %d", ErrInvalidIDLength, len(r))
	}
	var id ImageID
	copy(id[:], r)
	return id, nil
}

// HexID is a trusted image identity supplied as hex text, with or without a
// 0x/0X prefix, in either case.
type HexID string

// TrustedImageID parses the hex text into the canonical id.
func (h HexID) TrustedImageID() (ImageID, error) {
	return ParseImageID(string(h))
}

// BytesToDigest converts bytes to Digest, left-padding if shorter than 32
// bytes.
func BytesToDigest(b []byte) Digest {
	var d Digest
	d.SetBytes(b)
	return d
}

// HexToDigest converts a hex string to Digest.
func HexToDigest(s string) Digest {
	return BytesToDigest(common.FromHex(s))
}

// Bytes returns the byte representation of the digest.
func (d Digest) Bytes() []byte { return d[:] }

// Hex returns the hex string representation of the digest.
func (d Digest) Hex() string { return fmt.Sprintf("0x%x", d[:]) }

// SetBytes sets the digest from a byte slice, left-padding if necessary.
func (d *Digest) SetBytes(b []byte) {
	if len(b) > DigestLength {
		b = b[len(b)-DigestLength:]
	}
	copy(d[DigestLength-len(b):], b)
}

// IsZero returns whether the digest is all zeros.
func (d Digest) IsZero() bool {
	return d == Digest{}
}

// String implements fmt.Stringer.
func (d Digest) String() string { return d.Hex() }
