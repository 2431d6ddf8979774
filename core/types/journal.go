package types

import (
	"encoding/hex"
	"unicode/utf8"

	"github.com/zkrail/zkrail/crypto"
)

// Journal is the ordered byte sequence a guest declares as its public
// output. It is immutable once a receipt exists; every other view (hex,
// text, digest) derives from the stored bytes.
type Journal []byte

// Bytes returns a copy of the journal bytes.
func (j Journal) Bytes() []byte {
	return append([]byte(nil), j...)
}

// Hex returns the lowercase hex encoding of the journal. The result is
// always twice the byte length; decoding it reproduces the bytes exactly.
func (j Journal) Hex() string {
	return hex.EncodeToString(j)
}

// Text interprets the journal as UTF-8. The second return is false when
// the bytes are not valid UTF-8; the string value is then empty.
func (j Journal) Text() (string, bool) {
	if !utf8.Valid(j) {
		return "", false
	}
	return string(j), true
}

// Digest returns the SHA-256 digest of the journal bytes.
func (j Journal) Digest() Digest {
	return Digest(crypto.Sha256(j))
}

// Len returns the journal length in bytes.
func (j Journal) Len() int {
	return len(j)
}
