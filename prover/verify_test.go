package prover

import (
	"errors"
	"testing"

	"github.com/zkrail/zkrail/core/types"
	"github.com/zkrail/zkrail/input"
	"github.com/zkrail/zkrail/zkvm"
)

func provenEcho(t *testing.T) (*zkvm.Image, *types.Receipt) {
	t.Helper()
	p := New(DefaultConfig())
	img := mustBuiltin(t, zkvm.GuestEcho)
	in := mustInput(t, input.NewBuilder().WriteFrame([]byte("verified payload")))
	r, err := p.Prove(img, in)
	if err != nil {
		t.Fatalf("Prove failed: %v", err)
	}
	return img, r
}

func TestVerifyAcceptsHonestReceipt(t *testing.T) {
	img, r := provenEcho(t)

	// Every identity surface form resolves to the same check.
	if err := Verify(r, img); err != nil {
		t.Fatalf("Verify with image failed: %v", err)
	}
	if err := Verify(r, img.ID()); err != nil {
		t.Fatalf("Verify with ImageID failed: %v", err)
	}
	if err := Verify(r, types.RawID(img.ID().Bytes())); err != nil {
		t.Fatalf("Verify with RawID failed: %v", err)
	}
	if err := Verify(r, types.HexID(img.ID().Hex())); err != nil {
		t.Fatalf("Verify with HexID failed: %v", err)
	}
}

func TestVerifyRejectsWrongTrustedImage(t *testing.T) {
	_, r := provenEcho(t)
	other := mustBuiltin(t, zkvm.GuestAdd)

	err := Verify(r, other)
	if !errors.Is(err, ErrVerification) {
		t.Fatalf("error = %v, want ErrVerification", err)
	}
	var verr *VerificationError
	if !errors.As(err, &verr) {
		t.Fatalf("error = %T, want *VerificationError", err)
	}
	if verr.Reason == "" {
		t.Fatal("rejection should carry a reason")
	}
}

func TestVerifyRejectsImpersonation(t *testing.T) {
	// A receipt sealed for one image but claiming another must fail even
	// though the claimed id matches the verifier's trusted id.
	_, r := provenEcho(t)
	target := mustBuiltin(t, zkvm.GuestAdd)

	r.ClaimedImageID = target.ID()
	if err := Verify(r, target); !errors.Is(err, ErrVerification) {
		t.Fatalf("error = %v, want ErrVerification", err)
	}
}

func TestVerifyRejectsTampering(t *testing.T) {
	img, r := provenEcho(t)

	tamperJournal := *r
	tamperJournal.Journal = types.Journal([]byte("forged payload!!"))
	if err := Verify(&tamperJournal, img); !errors.Is(err, ErrVerification) {
		t.Fatalf("tampered journal: error = %v, want ErrVerification", err)
	}

	tamperExit := *r
	tamperExit.Exit = types.Halted(1)
	if err := Verify(&tamperExit, img); !errors.Is(err, ErrVerification) {
		t.Fatalf("tampered exit: error = %v, want ErrVerification", err)
	}

	tamperSeal := *r
	tamperSeal.Seal = append([]byte(nil), r.Seal...)
	tamperSeal.Seal[0] ^= 0x01
	if err := Verify(&tamperSeal, img); !errors.Is(err, ErrVerification) {
		t.Fatalf("tampered seal: error = %v, want ErrVerification", err)
	}

	tamperState := *r
	tamperState.PostState = types.Digest{0xff}
	if err := Verify(&tamperState, img); !errors.Is(err, ErrVerification) {
		t.Fatalf("tampered state: error = %v, want ErrVerification", err)
	}
}

func TestVerifyRejectsConditionalReceipt(t *testing.T) {
	img, r := provenEcho(t)

	// Re-seal the claim with a pending assumption. The seal is internally
	// consistent but the full policy check refuses conditional receipts.
	conditional := *r
	conditional.AssumptionCount = 1
	conditional.Seal = zkvm.SuccinctSeal(
		conditional.ClaimedImageID,
		conditional.Claim().Digest(),
		conditional.PreState,
		conditional.PostState,
		conditional.AssumptionCount,
	)
	if err := VerifyIntegrity(&conditional); err != nil {
		t.Fatalf("VerifyIntegrity failed: %v", err)
	}
	if err := Verify(&conditional, img); !errors.Is(err, ErrVerification) {
		t.Fatalf("conditional receipt: error = %v, want ErrVerification", err)
	}
}

func TestVerifyNilArgs(t *testing.T) {
	img, r := provenEcho(t)

	if err := Verify(nil, img); !errors.Is(err, ErrVerification) {
		t.Fatalf("nil receipt: error = %v, want ErrVerification", err)
	}
	if err := Verify(r, nil); !errors.Is(err, ErrVerification) {
		t.Fatalf("nil identity: error = %v, want ErrVerification", err)
	}
	if err := VerifyIntegrity(nil); !errors.Is(err, ErrVerification) {
		t.Fatalf("nil receipt: error = %v, want ErrVerification", err)
	}
}

func TestVerifyBadIdentity(t *testing.T) {
	_, r := provenEcho(t)
	if err := Verify(r, types.RawID([]byte{1, 2, 3})); !errors.Is(err, ErrVerification) {
		t.Fatalf("short RawID: error = %v, want ErrVerification", err)
	}
	if err := Verify(r, types.HexID("not hex")); !errors.Is(err, ErrVerification) {
		t.Fatalf("bad HexID: error = %v, want ErrVerification", err)
	}
}

func TestVerifyUnknownKind(t *testing.T) {
	img, r := provenEcho(t)
	r.Kind = types.ReceiptKind(9)
	if err := Verify(r, img); !errors.Is(err, ErrVerification) {
		t.Fatalf("unknown kind: error = %v, want ErrVerification", err)
	}
}
