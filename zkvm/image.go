// Package zkvm implements the native proving backend: guest images, the
// guest execution environment, the segmenting executor, and the seal scheme
// receipts carry. Guests are registered Go functions addressed by name; an
// image is the content-addressed container binding a guest name to its
// payload, and the image id is the SHA-256 digest of the container bytes.
package zkvm

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"unicode/utf8"

	"github.com/zkrail/zkrail/core/types"
)

// Guest container layout constants. A container is
// magic(4) || version(1) || nameLen(2, LE) || name || payload.
const (
	imageVersion    = 0x01
	imageHeaderSize = 7
	imageMaxNameLen = 64
)

// imageMagic marks the start of a guest container.
var imageMagic = [4]byte{0x7f, 'Z', 'K', 'G'}

// Image is a validated, content-addressed guest executable. The id is the
// SHA-256 digest of the full container bytes, so equal containers always
// produce equal ids and any byte change produces a new id.
type Image struct {
	name       string
	executable []byte
	id         types.ImageID
}

// BuildImage assembles a guest container from a guest name and payload.
// The name must be 1 to 64 bytes of valid UTF-8 and the payload must be
// non-empty.
func BuildImage(name string, payload []byte) ([]byte, error) {
	if len(name) == 0 || len(name) > imageMaxNameLen {
		return nil, fmt.Errorf("%w: name length %d, want 1..%d", ErrInvalidImage, len(name), imageMaxNameLen)
	}
	if !utf8.ValidString(name) {
		return nil, fmt.Errorf("%w: name is not valid UTF-8", ErrInvalidImage)
	}
	if len(payload) == 0 {
		return nil, fmt.Errorf("%w: empty payload", ErrInvalidImage)
	}

	out := make([]byte, 0, imageHeaderSize+len(name)+len(payload))
	out = append(out, imageMagic[:]...)
	out = append(out, imageVersion)
	out = binary.LittleEndian.AppendUint16(out, uint16(len(name)))
	out = append(out, name...)
	out = append(out, payload...)
	return out, nil
}

// LoadImage validates executable bytes as a guest container and returns the
// Image with its computed id. Raw bytes that are not a well-formed container
// are rejected with ErrInvalidImage; nothing loads silently.
func LoadImage(executable []byte) (*Image, error) {
	if len(executable) < imageHeaderSize {
		return nil, fmt.Errorf("%w: %d bytes, want at least %d", ErrInvalidImage, len(executable), imageHeaderSize)
	}
	if [4]byte(executable[:4]) != imageMagic {
		return nil, fmt.Errorf("%w: bad magic %x", ErrInvalidImage, executable[:4])
	}
	if executable[4] != imageVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrInvalidImage, executable[4])
	}
	nameLen := int(binary.LittleEndian.Uint16(executable[5:7]))
	if nameLen == 0 || nameLen > imageMaxNameLen {
		return nil, fmt.Errorf("%w: name length %d, want 1..%d", ErrInvalidImage, nameLen, imageMaxNameLen)
	}
	if len(executable) < imageHeaderSize+nameLen {
		return nil, fmt.Errorf("%w: truncated name", ErrInvalidImage)
	}
	name := executable[imageHeaderSize : imageHeaderSize+nameLen]
	if !utf8.Valid(name) {
		return nil, fmt.Errorf("%w: name is not valid UTF-8", ErrInvalidImage)
	}
	if len(executable) == imageHeaderSize+nameLen {
		return nil, fmt.Errorf("%w: empty payload", ErrInvalidImage)
	}

	buf := make([]byte, len(executable))
	copy(buf, executable)
	return &Image{
		name:       string(name),
		executable: buf,
		id:         types.ImageID(sha256.Sum256(buf)),
	}, nil
}

// ID returns the content-addressed image id.
func (img *Image) ID() types.ImageID {
	return img.id
}

// Name returns the guest name bound by the container.
func (img *Image) Name() string {
	return img.name
}

// Bytes returns a copy of the container bytes.
func (img *Image) Bytes() []byte {
	out := make([]byte, len(img.executable))
	copy(out, img.executable)
	return out
}

// Size returns the container length in bytes.
func (img *Image) Size() int {
	return len(img.executable)
}

// TrustedImageID implements types.ImageIdentity. An image held by the
// caller is a trusted identity source: the id was computed from the bytes
// at load time.
func (img *Image) TrustedImageID() (types.ImageID, error) {
	return img.id, nil
}

// String implements fmt.Stringer.
func (img *Image) String() string {
	return fmt.Sprintf("Image(%s, %s, %dB)", img.name, img.id, len(img.executable))
}
