package z85_test

import (
	"bytes"
	"testing"

	"github.com/benwr/zebrasign/internal/z85"
)

func TestRoundTrip(t *testing.T) {
	for _, n := range []int{0, 4, 8, 32, 36, 100} {
		data := make([]byte, n)
		for i := range data {
			data[i] = byte(i * 7)
		}
		enc := z85.Encode(data)
		dec, err := z85.Decode(enc)
		if err != nil {
			t.Fatalf("len %d: Decode failed: %v", n, err)
		}
		if !bytes.Equal(dec, data) {
			t.Errorf("len %d: round trip mismatch: got %x want %x", n, dec, data)
		}
	}
}

func TestKnownVector(t *testing.T) {
	// From the Z85 reference spec (rfc.zeromq.org/spec/32).
	in := []byte{0x86, 0x4F, 0xD2, 0x6F, 0xB5, 0x59, 0xF7, 0x5B}
	want := "HelloWorld"
	if got := z85.Encode(in); got != want {
		t.Errorf("Encode = %q, want %q", got, want)
	}
	dec, err := z85.Decode(want)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(dec, in) {
		t.Errorf("Decode = %x, want %x", dec, in)
	}
}

func TestDecodeRejectsBadLength(t *testing.T) {
	if _, err := z85.Decode("abc"); err == nil {
		t.Error("expected error for non-multiple-of-5 input")
	}
}

func TestDecodeRejectsBadAlphabet(t *testing.T) {
	if _, err := z85.Decode("  \n\t\v"); err == nil {
		t.Error("expected error for out-of-alphabet bytes")
	}
}

func TestDecodeRejectsOutOfRangeGroup(t *testing.T) {
	// "#####" is five copies of the alphabet's last character (value 84), which decodes to
	// 84*85^4+84*85^3+84*85^2+84*85+84 = 4437053124, out of uint32 range.
	if _, err := z85.Decode("#####"); err == nil {
		t.Error("expected error for a 5-character group decoding to a value > 2^32-1")
	}
}
