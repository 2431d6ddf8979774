// Package crypto provides the hash primitives shared by the proving
// pipeline: SHA-256 for image ids, claim digests and seal transcripts, and
// Keccak-256 for Merkle node hashing in the reference guests.
package crypto

import (
	"crypto/sha256"

	"golang.org/x/crypto/sha3"
)

// DigestLen is the byte length of every digest produced by this package.
const DigestLen = 32

// Sha256 calculates the SHA-256 hash over the concatenation of the given
// byte slices.
func Sha256(data ...[]byte) [32]byte {
	d := sha256.New()
	for _, b := range data {
		d.Write(b)
	}
	var out [32]byte
	d.Sum(out[:0])
	return out
}

// Keccak256 calculates the Keccak-256 hash of the given data.
func Keccak256(data ...[]byte) []byte {
	d := sha3.NewLegacyKeccak256()
	for _, b := range data {
		d.Write(b)
	}
	return d.Sum(nil)
}

// Keccak256Array calculates Keccak-256 and returns it as a fixed-size array.
func Keccak256Array(data ...[]byte) [32]byte {
	var out [32]byte
	copy(out[:], Keccak256(data...))
	return out
}
