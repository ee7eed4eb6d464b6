// Package curve provides thin, zeroizing value wrappers around Ristretto255 group elements
// and scalars: the only arithmetic primitives the rest of zebrasign needs.
//
// Both Scalar and Point expose fixed 32-byte canonical encodings and total orderings over
// those encodings, which is the only ordering used anywhere in this module (ring construction
// sorts by compressed point, never by any other key property).
package curve

import (
	"bytes"
	"crypto/rand"
	"fmt"

	"github.com/gtank/ristretto255"
	"golang.org/x/crypto/sha3"

	"github.com/benwr/zebrasign/zerrors"
)

// Size is the length, in bytes, of a canonically-encoded Scalar or Point.
const Size = 32

// Scalar is a canonical Curve25519 scalar, reduced modulo the group order.
type Scalar struct {
	s *ristretto255.Scalar
}

// ZeroScalar is the additive identity.
func ZeroScalar() Scalar {
	return Scalar{s: ristretto255.NewScalar()}
}

// RandomScalar samples a scalar uniformly at random using a cryptographically secure source.
func RandomScalar() Scalar {
	var wide [64]byte
	if _, err := rand.Read(wide[:]); err != nil {
		// crypto/rand.Read only fails if the OS entropy source is unusable, which is not a
		// condition this library can recover from.
		panic(fmt.Sprintf("curve: failed to read random bytes: %v", err))
	}
	s, err := ristretto255.NewScalar().SetUniformBytes(wide[:])
	if err != nil {
		panic(fmt.Sprintf("curve: wide reduction of 64 random bytes failed: %v", err))
	}
	zero(wide[:])
	return Scalar{s: s}
}

// ScalarFromWideHash reduces a 64-byte SHA3-512 digest modulo the group order. Callers must
// pass the complete digest; this function never truncates.
func ScalarFromWideHash(digest [64]byte) Scalar {
	s, err := ristretto255.NewScalar().SetUniformBytes(digest[:])
	if err != nil {
		panic(fmt.Sprintf("curve: wide reduction of hash digest failed: %v", err))
	}
	return Scalar{s: s}
}

// DecodeScalar parses a canonical 32-byte scalar encoding, failing if it is not the minimal
// representation of a value less than the group order.
func DecodeScalar(b []byte) (Scalar, error) {
	if len(b) != Size {
		return Scalar{}, fmt.Errorf("%w: scalar must be %d bytes, got %d", zerrors.ErrInvalidInput, Size, len(b))
	}
	s, err := ristretto255.NewScalar().SetCanonicalBytes(b)
	if err != nil {
		return Scalar{}, fmt.Errorf("%w: non-canonical scalar encoding: %v", zerrors.ErrInvalidInput, err)
	}
	return Scalar{s: s}, nil
}

// Bytes returns the scalar's canonical little-endian 32-byte encoding.
func (s Scalar) Bytes() [32]byte {
	var out [32]byte
	copy(out[:], s.s.Bytes())
	return out
}

// Add returns s + o (mod group order).
func (s Scalar) Add(o Scalar) Scalar {
	return Scalar{s: ristretto255.NewScalar().Add(s.s, o.s)}
}

// Sub returns s - o (mod group order).
func (s Scalar) Sub(o Scalar) Scalar {
	neg := ristretto255.NewScalar().Negate(o.s)
	return Scalar{s: ristretto255.NewScalar().Add(s.s, neg)}
}

// Mul returns s * o (mod group order).
func (s Scalar) Mul(o Scalar) Scalar {
	return Scalar{s: ristretto255.NewScalar().Multiply(s.s, o.s)}
}

// MulPoint returns s * p, a point.
func (s Scalar) MulPoint(p Point) Point {
	return Point{p: ristretto255.NewIdentityElement().ScalarMult(s.s, p.p)}
}

// Equal reports whether s and o encode the same scalar.
func (s Scalar) Equal(o Scalar) bool {
	return s.s.Equal(o.s) == 1
}

// Less reports whether s sorts before o under the canonical little-endian byte encoding. This
// is the only permitted ordering over scalars.
func (s Scalar) Less(o Scalar) bool {
	a, b := s.Bytes(), o.Bytes()
	return bytes.Compare(a[:], b[:]) < 0
}

// Zero overwrites the scalar's internal representation. After Zero, the value must not be
// used.
func (s *Scalar) Zero() {
	if s.s != nil {
		var zb [32]byte
		_, _ = s.s.SetCanonicalBytes(zb[:])
	}
	s.s = nil
}

// Point is a Ristretto255 group element.
type Point struct {
	p *ristretto255.Element
}

// MulBase returns s * G, where G is the Ristretto255 base point.
func MulBase(s Scalar) Point {
	return Point{p: ristretto255.NewIdentityElement().ScalarBaseMult(s.s)}
}

// VarTimeDoubleScalarBaseMult returns a*G + b*p in variable time. Used by verifiers, where
// constant time is unnecessary because no secret is involved.
func VarTimeDoubleScalarBaseMult(a Scalar, p Point, b Scalar) Point {
	return Point{p: ristretto255.NewIdentityElement().VarTimeDoubleScalarBaseMult(a.s, p.p, b.s)}
}

// Add returns p + o.
func (p Point) Add(o Point) Point {
	return Point{p: ristretto255.NewIdentityElement().Add(p.p, o.p)}
}

// Compress returns the point's canonical 32-byte compressed encoding.
func (p Point) Compress() [32]byte {
	var out [32]byte
	copy(out[:], p.p.Bytes())
	return out
}

// DecodePoint decompresses a canonical 32-byte point encoding, failing if the bytes are not a
// valid Ristretto255 encoding.
func DecodePoint(b []byte) (Point, error) {
	if len(b) != Size {
		return Point{}, fmt.Errorf("%w: point must be %d bytes, got %d", zerrors.ErrInvalidInput, Size, len(b))
	}
	p, err := ristretto255.NewIdentityElement().SetCanonicalBytes(b)
	if err != nil {
		return Point{}, fmt.Errorf("%w: could not decompress point: %v", zerrors.ErrInvalidInput, err)
	}
	return Point{p: p}, nil
}

// Equal reports whether p and o encode the same point.
func (p Point) Equal(o Point) bool {
	return p.p.Equal(o.p) == 1
}

// Less reports whether p sorts before o under the compressed byte encoding. This is the only
// permitted ordering over points, and the sole source of ordering in a ring signature (see
// package ring).
func (p Point) Less(o Point) bool {
	a, b := p.Compress(), o.Compress()
	return bytes.Compare(a[:], b[:]) < 0
}

// Zero overwrites the point's internal representation. After Zero, the value must not be
// used.
func (p *Point) Zero() {
	p.p = nil
}

// HashToScalar computes SHA3-512 over the concatenation of parts and reduces the resulting
// 64-byte digest modulo the group order.
func HashToScalar(parts ...[]byte) Scalar {
	h := sha3.New512()
	for _, p := range parts {
		h.Write(p)
	}
	var digest [64]byte
	h.Sum(digest[:0])
	return ScalarFromWideHash(digest)
}

func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
