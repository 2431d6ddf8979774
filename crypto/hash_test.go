package crypto

import (
	"bytes"
	"encoding/hex"
	"testing"
)

func TestSha256KnownVectors(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"},
		{"abc", "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"},
	}
	for _, tt := range tests {
		got := Sha256([]byte(tt.in))
		if hex.EncodeToString(got[:]) != tt.want {
			t.Errorf("Sha256(%q) = %x, want %s", tt.in, got, tt.want)
		}
	}
}

func TestKeccak256KnownVectors(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "c5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470"},
		{"abc", "4e03657aea45a94fc7d47ba826c8d667c0d1e6e33a64a036ec44f58fa12d6c45"},
	}
	for _, tt := range tests {
		got := Keccak256([]byte(tt.in))
		if hex.EncodeToString(got) != tt.want {
			t.Errorf("Keccak256(%q) = %x, want %s", tt.in, got, tt.want)
		}
	}
}

func TestHashConcatEquivalence(t *testing.T) {
	a := []byte("hello ")
	b := []byte("world")
	joined := []byte("hello world")

	if Sha256(a, b) != Sha256(joined) {
		t.Error("Sha256(a, b) != Sha256(a||b)")
	}
	if !bytes.Equal(Keccak256(a, b), Keccak256(joined)) {
		t.Error("Keccak256(a, b) != Keccak256(a||b)")
	}
}

func TestKeccak256Array(t *testing.T) {
	in := []byte("node")
	arr := Keccak256Array(in)
	if !bytes.Equal(arr[:], Keccak256(in)) {
		t.Errorf("Keccak256Array = %x, want %x", arr, Keccak256(in))
	}
	if len(arr) != DigestLen {
		t.Errorf("digest length = %d, want %d", len(arr), DigestLen)
	}
}
