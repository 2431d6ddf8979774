package types

import "testing"

func TestClaimDigestDeterministic(t *testing.T) {
	c := Claim{
		ImageID: HexToImageID("0xaa"),
		Journal: Journal([]byte("output")),
		Exit:    Halted(0),
	}
	d1 := c.Digest()
	d2 := c.Digest()
	if d1 != d2 {
		t.Fatal("claim digest should be deterministic")
	}
	if d1.IsZero() {
		t.Fatal("claim digest should not be zero")
	}
}

func TestClaimDigestSensitivity(t *testing.T) {
	base := Claim{
		ImageID: HexToImageID("0xaa"),
		Journal: Journal([]byte("output")),
		Exit:    Halted(0),
	}

	otherImage := base
	otherImage.ImageID = HexToImageID("0xbb")
	if otherImage.Digest() == base.Digest() {
		t.Fatal("digest should depend on image id")
	}

	otherJournal := base
	otherJournal.Journal = Journal([]byte("outputs"))
	if otherJournal.Digest() == base.Digest() {
		t.Fatal("digest should depend on journal")
	}

	otherExit := base
	otherExit.Exit = Halted(1)
	if otherExit.Digest() == base.Digest() {
		t.Fatal("digest should depend on exit status")
	}
}

func TestClaimMatches(t *testing.T) {
	id := HexToImageID("0xaa")
	c := Claim{ImageID: id, Journal: Journal([]byte("out")), Exit: Halted(0)}

	if !c.Matches(id, []byte("out")) {
		t.Fatal("claim should match its own image id and journal")
	}
	if c.Matches(HexToImageID("0xbb"), []byte("out")) {
		t.Fatal("claim should not match a different image id")
	}
	if c.Matches(id, []byte("other")) {
		t.Fatal("claim should not match a different journal")
	}
}

func TestClaimOk(t *testing.T) {
	ok := Claim{Exit: Halted(0)}
	if !ok.Ok() {
		t.Fatal("Halted(0) claim should be ok")
	}
	failed := Claim{Exit: Halted(2)}
	if failed.Ok() {
		t.Fatal("Halted(2) claim should not be ok")
	}
}

func TestClaimJournalDigest(t *testing.T) {
	c := Claim{Journal: Journal([]byte("x"))}
	if c.JournalDigest() != c.Journal.Digest() {
		t.Fatal("JournalDigest should match the journal's digest")
	}
}
