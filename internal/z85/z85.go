// Package z85 implements the ZeroMQ Z85 encoding (https://rfc.zeromq.org/spec/32/): an ASCII
// encoding of binary data using 85 printable characters, at a 4:5 byte-to-character ratio.
//
// Z85 itself does not specify a padding strategy for inputs whose length is not a multiple of
// 4 bytes; implementations differ. This package pins one: Encode zero-pads its input up to the
// next multiple of 4 before encoding, and Decode returns the zero-padded bytes exactly, with no
// length recovery. Every payload this module actually encodes (serialized attestation and ring
// signatures, SHA3-256 fingerprint digests) is already a multiple of 4 bytes by construction,
// so the padding path is never exercised in practice; it exists so Encode/Decode form a total,
// well-defined pair for any input, per the spec's requirement to pin and document a strategy.
package z85

import "fmt"

const alphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ.-:+=^!/*?&<>()[]{}@%$#"

var decodeTable = func() [256]int8 {
	var t [256]int8
	for i := range t {
		t[i] = -1
	}
	for i, c := range alphabet {
		t[byte(c)] = int8(i)
	}
	return t
}()

// Encode returns the Z85 encoding of data, zero-padding data up to a multiple of 4 bytes first
// if necessary (see package doc).
func Encode(data []byte) string {
	padded := data
	if rem := len(data) % 4; rem != 0 {
		padded = make([]byte, len(data)+(4-rem))
		copy(padded, data)
	}

	out := make([]byte, 0, len(padded)/4*5)
	for i := 0; i < len(padded); i += 4 {
		var value uint32
		for j := 0; j < 4; j++ {
			value = value<<8 | uint32(padded[i+j])
		}
		var chunk [5]byte
		for j := 4; j >= 0; j-- {
			chunk[j] = alphabet[value%85]
			value /= 85
		}
		out = append(out, chunk[:]...)
	}
	return string(out)
}

// Decode reverses Encode. It fails if s's length is not a multiple of 5 or if s contains a byte
// outside the Z85 alphabet. The returned bytes may be zero-padded relative to whatever was
// originally passed to Encode; see package doc.
func Decode(s string) ([]byte, error) {
	if len(s)%5 != 0 {
		return nil, fmt.Errorf("z85: encoded length %d is not a multiple of 5", len(s))
	}
	out := make([]byte, 0, len(s)/5*4)
	for i := 0; i < len(s); i += 5 {
		var value uint64
		for j := 0; j < 5; j++ {
			c := s[i+j]
			d := decodeTable[c]
			if d < 0 {
				return nil, fmt.Errorf("z85: byte %q is not in the Z85 alphabet", c)
			}
			value = value*85 + uint64(d)
		}
		if value > 0xFFFFFFFF {
			return nil, fmt.Errorf("z85: group %q decodes to a value out of 32-bit range", s[i:i+5])
		}
		out = append(out, byte(value>>24), byte(value>>16), byte(value>>8), byte(value))
	}
	return out, nil
}
