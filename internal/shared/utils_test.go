package shared

import (
	"encoding/hex"
	"testing"
)

func TestMakeRandHexString(t *testing.T) {
	a, err := MakeRandHexString(16)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(a) != 32 {
		t.Fatalf("len = %d, want 32", len(a))
	}
	if _, err := hex.DecodeString(a); err != nil {
		t.Fatalf("not hex: %q", a)
	}
	b, _ := MakeRandHexString(16)
	if a == b {
		t.Fatalf("two calls returned the same value %q", a)
	}
}

func TestWipeByteArray(t *testing.T) {
	b := []byte("secret")
	WipeByteArray(b)
	for i, c := range b {
		if c != 0 {
			t.Fatalf("byte %d not wiped: %v", i, b)
		}
	}
	WipeByteArray(nil)
}
