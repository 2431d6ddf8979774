package zkvm

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/tchajed/marshal"

	"github.com/zkrail/zkrail/core/types"
)

// Transcript operation tags. Every environment operation appends a tagged
// entry; the executor chains the entries into the segment state digests.
const (
	opRead   byte = 0x01
	opCommit byte = 0x02
	opVerify byte = 0x03
	opTick   byte = 0x04
)

// Cycle costs per environment operation. Reads and commits cost a base
// amount plus one cycle per byte moved; recursion verification is priced
// like the expensive operation it models.
const (
	costBase    = 16
	costPerByte = 1
	costVerify  = 4096
)

// transcriptEntry is one recorded environment operation.
type transcriptEntry struct {
	tag    byte
	data   []byte
	cycles uint64
}

// Env is the execution environment handed to a guest. It serves the guest's
// input reads, accumulates the journal, resolves Verify calls against the
// host-supplied assumptions, and meters cycles.
//
// Reader primitives decode the exact layouts the input package encodes.
type Env struct {
	input       []byte
	inputDigest [32]byte
	journal     []byte

	assumptions []Assumption
	used        []bool
	consumed    []Assumption

	entries   []transcriptEntry
	cycles    uint64
	maxCycles uint64
	limited   bool

	exit types.ExitStatus
}

// newEnv builds an environment over a private copy of the input.
func newEnv(input []byte, maxCycles uint64, assumptions []Assumption) *Env {
	buf := make([]byte, len(input))
	copy(buf, input)
	return &Env{
		input:       buf,
		inputDigest: sha256.Sum256(buf),
		assumptions: assumptions,
		used:        make([]bool, len(assumptions)),
		maxCycles:   maxCycles,
	}
}

// charge meters an operation and records it in the transcript. Once the
// session budget is exhausted every further operation fails with
// ErrSessionLimit.
func (e *Env) charge(tag byte, data []byte, cost uint64) error {
	if e.limited {
		return ErrSessionLimit
	}
	if e.cycles+cost > e.maxCycles {
		e.limited = true
		return ErrSessionLimit
	}
	e.cycles += cost
	e.entries = append(e.entries, transcriptEntry{tag: tag, data: data, cycles: cost})
	return nil
}

// ReadU32 reads a little-endian 32-bit word.
func (e *Env) ReadU32() (uint32, error) {
	if len(e.input) < 4 {
		return 0, ErrInputExhausted
	}
	if err := e.charge(opRead, e.input[:4], costBase+4*costPerByte); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint32(e.input[:4])
	e.input = e.input[4:]
	return v, nil
}

// ReadU64 reads a little-endian 64-bit word.
func (e *Env) ReadU64() (uint64, error) {
	if len(e.input) < 8 {
		return 0, ErrInputExhausted
	}
	if err := e.charge(opRead, e.input[:8], costBase+8*costPerByte); err != nil {
		return 0, err
	}
	var v uint64
	v, e.input = marshal.ReadInt(e.input)
	return v, nil
}

// ReadBool reads a single byte as a boolean.
func (e *Env) ReadBool() (bool, error) {
	if len(e.input) < 1 {
		return false, ErrInputExhausted
	}
	if err := e.charge(opRead, e.input[:1], costBase+costPerByte); err != nil {
		return false, err
	}
	var v bool
	v, e.input = marshal.ReadBool(e.input)
	return v, nil
}

// ReadBytes32 reads exactly 32 raw bytes.
func (e *Env) ReadBytes32() ([32]byte, error) {
	var out [32]byte
	if len(e.input) < 32 {
		return out, ErrInputExhausted
	}
	if err := e.charge(opRead, e.input[:32], costBase+32*costPerByte); err != nil {
		return out, err
	}
	var b []byte
	b, e.input = marshal.ReadBytes(e.input, 32)
	copy(out[:], b)
	return out, nil
}

// ReadBytes64 reads exactly 64 raw bytes.
func (e *Env) ReadBytes64() ([64]byte, error) {
	var out [64]byte
	if len(e.input) < 64 {
		return out, ErrInputExhausted
	}
	if err := e.charge(opRead, e.input[:64], costBase+64*costPerByte); err != nil {
		return out, err
	}
	var b []byte
	b, e.input = marshal.ReadBytes(e.input, 64)
	copy(out[:], b)
	return out, nil
}

// ReadString reads a u64 length prefix followed by UTF-8 bytes.
func (e *Env) ReadString() (string, error) {
	b, err := e.ReadFrame()
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ReadFrame reads a u64 length prefix followed by that many raw bytes.
func (e *Env) ReadFrame() ([]byte, error) {
	n, err := e.ReadU64()
	if err != nil {
		return nil, err
	}
	if n > uint64(len(e.input)) {
		return nil, ErrInputExhausted
	}
	if err := e.charge(opRead, e.input[:n], costBase+n*costPerByte); err != nil {
		return nil, err
	}
	var b []byte
	b, e.input = marshal.ReadBytes(e.input, n)
	return b, nil
}

// ReadWordVec reads the legacy word-vector layout: a u32 count followed by
// one u32 word per byte.
func (e *Env) ReadWordVec() ([]byte, error) {
	count, err := e.ReadU32()
	if err != nil {
		return nil, err
	}
	size := uint64(count) * 4
	if size > uint64(len(e.input)) {
		return nil, ErrInputExhausted
	}
	if err := e.charge(opRead, e.input[:size], costBase+size*costPerByte); err != nil {
		return nil, err
	}
	out := make([]byte, count)
	for i := range out {
		out[i] = byte(binary.LittleEndian.Uint32(e.input[i*4:]))
	}
	e.input = e.input[size:]
	return out, nil
}

// ReadStruct reads a frame and decodes its CBOR payload into v.
func (e *Env) ReadStruct(v any) error {
	payload, err := e.ReadFrame()
	if err != nil {
		return err
	}
	if err := cbor.Unmarshal(payload, v); err != nil {
		return fmt.Errorf("zkvm: decode struct: %w", err)
	}
	return nil
}

// ReadRaw reads exactly n raw bytes with no length prefix.
func (e *Env) ReadRaw(n int) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("zkvm: negative read length %d", n)
	}
	if n > len(e.input) {
		return nil, ErrInputExhausted
	}
	if err := e.charge(opRead, e.input[:n], costBase+uint64(n)*costPerByte); err != nil {
		return nil, err
	}
	var b []byte
	b, e.input = marshal.ReadBytes(e.input, uint64(n))
	return b, nil
}

// Remaining returns the number of unread input bytes.
func (e *Env) Remaining() int {
	return len(e.input)
}

// Commit appends bytes to the journal, the guest's public output.
func (e *Env) Commit(p []byte) error {
	buf := make([]byte, len(p))
	copy(buf, p)
	if err := e.charge(opCommit, buf, costBase+uint64(len(buf))*costPerByte); err != nil {
		return err
	}
	e.journal = append(e.journal, buf...)
	return nil
}

// Exit ends the run with the given user code. Guests return the result:
//
//	return env.Exit(1)
func (e *Env) Exit(code uint32) error {
	e.exit = types.Halted(code)
	return errHalt
}

// Pause suspends the run with the given user code.
func (e *Env) Pause(code uint32) error {
	e.exit = types.Paused(code)
	return errPause
}

// Verify discharges a claimed inner execution against the host-supplied
// assumptions. The assumption matching the image id and the journal's
// digest is consumed; if none matches, the call fails with
// ErrUnresolvedAssumption and the execution faults.
func (e *Env) Verify(id types.ImageID, journal []byte) error {
	jd := types.Journal(journal).Digest()
	for i := range e.assumptions {
		if e.used[i] || e.assumptions[i].ImageID != id || e.assumptions[i].JournalDigest != jd {
			continue
		}
		e.used[i] = true
		e.consumed = append(e.consumed, e.assumptions[i])

		data := make([]byte, 0, 64)
		data = append(data, id[:]...)
		data = append(data, jd[:]...)
		return e.charge(opVerify, data, costVerify)
	}
	return fmt.Errorf("%w: image=0x%x journal_digest=0x%x", ErrUnresolvedAssumption, id[:4], jd[:4])
}

// Tick burns n cycles of guest-local work, letting compute-heavy guests
// drive segmentation without touching the input or journal.
func (e *Env) Tick(n uint64) error {
	data := binary.LittleEndian.AppendUint64(nil, n)
	return e.charge(opTick, data, n)
}

// Journal returns the journal accumulated so far.
func (e *Env) Journal() []byte {
	out := make([]byte, len(e.journal))
	copy(out, e.journal)
	return out
}

// Cycles returns the cycles consumed so far.
func (e *Env) Cycles() uint64 {
	return e.cycles
}
