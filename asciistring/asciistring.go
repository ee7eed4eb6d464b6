// Package asciistring provides BoringAscii, a string type restricted to printable,
// non-whitespace ASCII bytes. It exists mainly as a brute-force defense against homoglyph
// attacks in email addresses.
package asciistring

import (
	"fmt"

	"github.com/benwr/zebrasign/zerrors"
)

// BoringAscii is a non-empty-allowed sequence of bytes where every byte is in [0x21, 0x7E]:
// printable ASCII, excluding space and the DEL/control ranges. It is always valid UTF-8.
type BoringAscii struct {
	b []byte
}

// New validates s and returns a BoringAscii, or ErrInvalidInput if any byte falls outside
// [0x21, 0x7E].
func New(s string) (BoringAscii, error) {
	return FromBytes([]byte(s))
}

// FromBytes validates bytes and returns a BoringAscii, or ErrInvalidInput if any byte falls
// outside [0x21, 0x7E].
func FromBytes(b []byte) (BoringAscii, error) {
	for _, c := range b {
		// 0x00-0x20 are control characters and space; 0x7F is DEL; 0x80 and up are either
		// high-bit control bytes or multi-byte UTF-8 continuation/lead bytes.
		if c < 0x21 || c > 0x7E {
			return BoringAscii{}, fmt.Errorf("%w: byte 0x%02x is not printable, non-whitespace ASCII", zerrors.ErrInvalidInput, c)
		}
	}
	cp := make([]byte, len(b))
	copy(cp, b)
	return BoringAscii{b: cp}, nil
}

// String returns the BoringAscii's contents. The result is guaranteed valid UTF-8 (indeed,
// valid printable ASCII).
func (a BoringAscii) String() string {
	return string(a.b)
}

// Bytes returns the BoringAscii's raw contents. The caller must not mutate the result.
func (a BoringAscii) Bytes() []byte {
	return a.b
}

// Equal reports whether a and o hold identical bytes.
func (a BoringAscii) Equal(o BoringAscii) bool {
	return string(a.b) == string(o.b)
}

// Zero overwrites the BoringAscii's backing bytes with zeros. After Zero, the value must not
// be used.
func (a *BoringAscii) Zero() {
	for i := range a.b {
		a.b[i] = 0
	}
	a.b = nil
}
