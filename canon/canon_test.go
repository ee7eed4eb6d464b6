package canon_test

import (
	"bytes"
	"testing"

	"github.com/benwr/zebrasign/canon"
)

func TestRoundTrip(t *testing.T) {
	w := canon.NewWriter()
	w.WriteU8(7)
	w.WriteU32(0xDEADBEEF)
	w.WriteI64(-12345)
	w.WriteFixed(bytes.Repeat([]byte{0xAB}, 32))
	w.WriteString("zebra@example.com")
	w.WriteBytes([]byte{1, 2, 3})

	r := canon.NewReader(w.Bytes())

	u8, err := r.ReadU8()
	if err != nil || u8 != 7 {
		t.Fatalf("ReadU8 = %v, %v", u8, err)
	}
	u32, err := r.ReadU32()
	if err != nil || u32 != 0xDEADBEEF {
		t.Fatalf("ReadU32 = %v, %v", u32, err)
	}
	i64, err := r.ReadI64()
	if err != nil || i64 != -12345 {
		t.Fatalf("ReadI64 = %v, %v", i64, err)
	}
	fixed, err := r.ReadFixed(32)
	if err != nil || !bytes.Equal(fixed, bytes.Repeat([]byte{0xAB}, 32)) {
		t.Fatalf("ReadFixed = %x, %v", fixed, err)
	}
	s, err := r.ReadString()
	if err != nil || s != "zebra@example.com" {
		t.Fatalf("ReadString = %q, %v", s, err)
	}
	b, err := r.ReadBytes()
	if err != nil || !bytes.Equal(b, []byte{1, 2, 3}) {
		t.Fatalf("ReadBytes = %x, %v", b, err)
	}
	if !r.AtEnd() {
		t.Error("expected reader to be exhausted")
	}
}

func TestReadPastEndErrors(t *testing.T) {
	r := canon.NewReader([]byte{1, 2})
	if _, err := r.ReadU32(); err == nil {
		t.Error("expected error reading past end")
	}
}

func TestDeterministicOrderingOfWrites(t *testing.T) {
	w1 := canon.NewWriter()
	w1.WriteString("a")
	w1.WriteString("b")

	w2 := canon.NewWriter()
	w2.WriteString("a")
	w2.WriteString("b")

	if !bytes.Equal(w1.Bytes(), w2.Bytes()) {
		t.Error("identical write sequences produced different output")
	}
}
