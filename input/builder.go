// Package input encodes host-side guest inputs in the exact byte layout
// guests read them with. All multi-byte integers are little-endian; variable
// length payloads travel as length-prefixed frames.
package input

import (
	"encoding/binary"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/tchajed/marshal"

	"github.com/zkrail/zkrail/core/types"
)

// structEncMode is the canonical CBOR encoder shared by every WriteStruct
// call. Core deterministic encoding keeps struct frames byte-stable across
// hosts.
var structEncMode cbor.EncMode

func init() {
	em, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("input: cbor encoder: %v", err))
	}
	structEncMode = em
}

// Builder accumulates an input buffer through chainable writer calls.
// The first failing write records its error and turns every later write
// into a no-op, so call sites can chain freely and check once at the end:
//
//	data, err := input.NewBuilder().
//		WriteBytes32(pub).
//		WriteFrame(msg).
//		Build()
//
// A Builder is not safe for concurrent use.
type Builder struct {
	buf []byte
	err error
}

// NewBuilder creates an empty Builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// fail records the first error. Later writes keep the buffer and error
// untouched.
func (b *Builder) fail(err error) *Builder {
	if b.err == nil {
		b.err = err
	}
	return b
}

// WriteU32 appends a 32-bit word in little-endian order.
func (b *Builder) WriteU32(v uint32) *Builder {
	if b.err != nil {
		return b
	}
	b.buf = binary.LittleEndian.AppendUint32(b.buf, v)
	return b
}

// WriteU64 appends a 64-bit word in little-endian order.
func (b *Builder) WriteU64(v uint64) *Builder {
	if b.err != nil {
		return b
	}
	b.buf = marshal.WriteInt(b.buf, v)
	return b
}

// WriteBool appends a single byte, 0x01 for true and 0x00 for false.
func (b *Builder) WriteBool(v bool) *Builder {
	if b.err != nil {
		return b
	}
	b.buf = marshal.WriteBool(b.buf, v)
	return b
}

// WriteBytes32 appends exactly 32 raw bytes. Any other input length is a
// SerializationError.
func (b *Builder) WriteBytes32(p []byte) *Builder {
	if b.err != nil {
		return b
	}
	if len(p) != 32 {
		return b.fail(lengthError("bytes32", 32, len(p)))
	}
	b.buf = marshal.WriteBytes(b.buf, p)
	return b
}

// WriteImageID appends an image id as its raw 32 bytes. The encoding is
// byte-identical to WriteBytes32 of the id's bytes.
func (b *Builder) WriteImageID(id types.ImageID) *Builder {
	return b.WriteBytes32(id[:])
}

// WriteBytes64 appends exactly 64 raw bytes. Any other input length is a
// SerializationError.
func (b *Builder) WriteBytes64(p []byte) *Builder {
	if b.err != nil {
		return b
	}
	if len(p) != 64 {
		return b.fail(lengthError("bytes64", 64, len(p)))
	}
	b.buf = marshal.WriteBytes(b.buf, p)
	return b
}

// WriteString appends a string as a u64 little-endian byte length followed
// by the UTF-8 bytes.
func (b *Builder) WriteString(s string) *Builder {
	if b.err != nil {
		return b
	}
	b.buf = marshal.WriteInt(b.buf, uint64(len(s)))
	b.buf = marshal.WriteBytes(b.buf, []byte(s))
	return b
}

// WriteFrame appends a byte slice as a u64 little-endian length followed by
// the raw bytes. Frames are how guests receive variable-length payloads.
func (b *Builder) WriteFrame(p []byte) *Builder {
	if b.err != nil {
		return b
	}
	b.buf = marshal.WriteInt(b.buf, uint64(len(p)))
	b.buf = marshal.WriteBytes(b.buf, p)
	return b
}

// WriteRawBytes appends bytes with no length prefix. The guest must know
// the length from context.
func (b *Builder) WriteRawBytes(p []byte) *Builder {
	if b.err != nil {
		return b
	}
	b.buf = marshal.WriteBytes(b.buf, p)
	return b
}

// WriteStruct appends a value as a frame whose payload is the canonical
// CBOR encoding of v. Deterministic encoding means the same value always
// produces the same bytes.
func (b *Builder) WriteStruct(v any) *Builder {
	if b.err != nil {
		return b
	}
	payload, err := structEncMode.Marshal(v)
	if err != nil {
		return b.fail(fmt.Errorf("%w: encode struct: %v", ErrSerialization, err))
	}
	return b.WriteFrame(payload)
}

// WriteWordVec appends bytes in the legacy word-vector layout: a u32
// little-endian count followed by one u32 little-endian word per byte.
// Guests built against the word calling convention read this layout and no
// other; it is never substituted for the frame layout.
func (b *Builder) WriteWordVec(p []byte) *Builder {
	if b.err != nil {
		return b
	}
	b.buf = binary.LittleEndian.AppendUint32(b.buf, uint32(len(p)))
	for _, c := range p {
		b.buf = binary.LittleEndian.AppendUint32(b.buf, uint32(c))
	}
	return b
}

// Build returns a copy of the accumulated buffer, or the first write error.
// Building does not consume the builder; further writes append after the
// returned snapshot.
func (b *Builder) Build() ([]byte, error) {
	if b.err != nil {
		return nil, b.err
	}
	out := make([]byte, len(b.buf))
	copy(out, b.buf)
	return out, nil
}

// Bytes returns a copy of the accumulated buffer, ignoring any recorded
// error. Use after an explicit Err check.
func (b *Builder) Bytes() []byte {
	out := make([]byte, len(b.buf))
	copy(out, b.buf)
	return out
}

// Err returns the first write error, or nil.
func (b *Builder) Err() error {
	return b.err
}

// Size returns the current buffer length in bytes.
func (b *Builder) Size() int {
	return len(b.buf)
}

// Clear resets the buffer and the recorded error, making the builder
// reusable.
func (b *Builder) Clear() *Builder {
	b.buf = b.buf[:0]
	b.err = nil
	return b
}

// String implements fmt.Stringer.
func (b *Builder) String() string {
	if b.err != nil {
		return fmt.Sprintf("Builder(%dB, err=%v)", len(b.buf), b.err)
	}
	return fmt.Sprintf("Builder(%dB)", len(b.buf))
}
