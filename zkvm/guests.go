package zkvm

import (
	"crypto/ed25519"
	"encoding/binary"
	"fmt"

	"github.com/zkrail/zkrail/core/types"
	"github.com/zkrail/zkrail/crypto"
)

// Built-in guest names. The guests cover the reference behaviors the test
// suite and examples exercise: plain input/output plumbing, arithmetic,
// proof composition, signature and merkle-path checking, and the exit and
// segmentation paths.
const (
	GuestEcho     = "echo"
	GuestAdd      = "add"
	GuestDouble   = "double"
	GuestEd25519  = "ed25519-verify"
	GuestMerkle   = "merkle-verify"
	GuestHalt     = "halt"
	GuestPause    = "pause"
	GuestHashLoop = "hashloop"
)

// merkleGuestDepth is the sibling-path depth the merkle guest walks. The
// host-side encoder pads every path to the same depth, so the guest reads
// a fixed-size input.
const merkleGuestDepth = 16

// hashLoopRoundCycles is the metered cost of one hashloop round.
const hashLoopRoundCycles = 4096

func init() {
	builtins := map[string]GuestFunc{
		GuestEcho:     echoGuest,
		GuestAdd:      addGuest,
		GuestDouble:   doubleGuest,
		GuestEd25519:  ed25519Guest,
		GuestMerkle:   merkleGuest,
		GuestHalt:     haltGuest,
		GuestPause:    pauseGuest,
		GuestHashLoop: hashLoopGuest,
	}
	for name, fn := range builtins {
		if err := RegisterGuest(name, fn); err != nil {
			panic(fmt.Sprintf("zkvm: built-in guest %q: %v", name, err))
		}
	}
}

// BuiltinImage builds and loads the image of a built-in guest. The
// container bytes are deterministic, so the image id is stable across
// processes.
func BuiltinImage(name string) (*Image, error) {
	if _, err := DefaultRegistry.Lookup(name); err != nil {
		return nil, fmt.Errorf("%w: %q", err, name)
	}
	container, err := BuildImage(name, []byte("zkrail-native-guest:"+name))
	if err != nil {
		return nil, err
	}
	return LoadImage(container)
}

// echoGuest commits its framed input unchanged.
func echoGuest(env *Env) error {
	data, err := env.ReadFrame()
	if err != nil {
		return err
	}
	return env.Commit(data)
}

// addGuest reads two u32 words and commits their sum as a u32.
func addGuest(env *Env) error {
	a, err := env.ReadU32()
	if err != nil {
		return err
	}
	b, err := env.ReadU32()
	if err != nil {
		return err
	}
	var out [4]byte
	binary.LittleEndian.PutUint32(out[:], a+b)
	return env.Commit(out[:])
}

// doubleGuest reads an inner image id and journal, verifies the inner
// execution, and commits twice the u32 the inner journal carries.
func doubleGuest(env *Env) error {
	innerID, err := env.ReadBytes32()
	if err != nil {
		return err
	}
	innerJournal, err := env.ReadFrame()
	if err != nil {
		return err
	}
	if err := env.Verify(types.ImageID(innerID), innerJournal); err != nil {
		return err
	}
	if len(innerJournal) != 4 {
		return fmt.Errorf("zkvm: inner journal length %d, want 4", len(innerJournal))
	}
	v := binary.LittleEndian.Uint32(innerJournal)

	var out [4]byte
	binary.LittleEndian.PutUint32(out[:], v*2)
	return env.Commit(out[:])
}

// ed25519Guest checks a signature over the framed message and commits a
// one-byte marker: 0x01 if the signature verifies, 0x00 otherwise.
func ed25519Guest(env *Env) error {
	pub, err := env.ReadBytes32()
	if err != nil {
		return err
	}
	sig, err := env.ReadBytes64()
	if err != nil {
		return err
	}
	msg, err := env.ReadFrame()
	if err != nil {
		return err
	}

	marker := []byte{0x00}
	if ed25519.Verify(ed25519.PublicKey(pub[:]), msg, sig[:]) {
		marker[0] = 0x01
	}
	return env.Commit(marker)
}

// merkleGuest reads a commitment triple and a sibling path in the word
// layout, recomputes the keccak merkle root, and commits root || kpub.
func merkleGuest(env *Env) error {
	kpub, err := readWordBytes(env, 32)
	if err != nil {
		return err
	}
	r, err := readWordBytes(env, 32)
	if err != nil {
		return err
	}
	e, err := readWordBytes(env, 32)
	if err != nil {
		return err
	}

	pathLen, err := env.ReadU32()
	if err != nil {
		return err
	}
	if pathLen != merkleGuestDepth {
		return fmt.Errorf("zkvm: merkle path length %d, want %d", pathLen, merkleGuestDepth)
	}
	siblings := make([][]byte, pathLen)
	for i := range siblings {
		if siblings[i], err = readWordBytes(env, 32); err != nil {
			return err
		}
	}

	bitsLen, err := env.ReadU32()
	if err != nil {
		return err
	}
	if bitsLen != pathLen {
		return fmt.Errorf("zkvm: merkle bits length %d, want %d", bitsLen, pathLen)
	}
	bits := make([]uint32, bitsLen)
	for i := range bits {
		if bits[i], err = env.ReadU32(); err != nil {
			return err
		}
	}

	node := crypto.Keccak256Array(kpub, r, e)
	for i := uint32(0); i < pathLen; i++ {
		if bits[i] != 0 {
			node = crypto.Keccak256Array(siblings[i], node[:])
		} else {
			node = crypto.Keccak256Array(node[:], siblings[i])
		}
	}

	if err := env.Commit(node[:]); err != nil {
		return err
	}
	return env.Commit(kpub)
}

// haltGuest commits its framed payload and exits with the requested code.
func haltGuest(env *Env) error {
	code, err := env.ReadU32()
	if err != nil {
		return err
	}
	payload, err := env.ReadFrame()
	if err != nil {
		return err
	}
	if err := env.Commit(payload); err != nil {
		return err
	}
	return env.Exit(code)
}

// pauseGuest suspends the session with the requested code.
func pauseGuest(env *Env) error {
	code, err := env.ReadU32()
	if err != nil {
		return err
	}
	return env.Pause(code)
}

// hashLoopGuest burns metered cycles hashing a seed for the requested
// number of rounds, then commits the final digest. Enough rounds drive the
// session across segment boundaries.
func hashLoopGuest(env *Env) error {
	rounds, err := env.ReadU32()
	if err != nil {
		return err
	}
	h, err := env.ReadBytes32()
	if err != nil {
		return err
	}
	for i := uint32(0); i < rounds; i++ {
		h = crypto.Sha256(h[:])
		if err := env.Tick(hashLoopRoundCycles); err != nil {
			return err
		}
	}
	return env.Commit(h[:])
}

// readWordBytes reads n bytes transported as one u32 word per byte.
func readWordBytes(env *Env, n int) ([]byte, error) {
	out := make([]byte, n)
	for i := range out {
		w, err := env.ReadU32()
		if err != nil {
			return nil, err
		}
		out[i] = byte(w)
	}
	return out, nil
}
