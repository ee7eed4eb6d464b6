package curve_test

import (
	"sort"
	"testing"

	"github.com/benwr/zebrasign/curve"
)

func TestMulBaseAndArithmetic(t *testing.T) {
	a := curve.RandomScalar()
	b := curve.RandomScalar()

	pa := curve.MulBase(a)
	pb := curve.MulBase(b)

	sum := a.Add(b)
	psum := curve.MulBase(sum)

	if !pa.Add(pb).Equal(psum) {
		t.Error("mul_base(a) + mul_base(b) != mul_base(a+b)")
	}

	if !a.Sub(a).Equal(curve.ZeroScalar()) {
		t.Error("a - a != 0")
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	s := curve.RandomScalar()
	enc := s.Bytes()
	decoded, err := curve.DecodeScalar(enc[:])
	if err != nil {
		t.Fatalf("DecodeScalar: %v", err)
	}
	if !s.Equal(decoded) {
		t.Error("round-trip mismatch for scalar")
	}

	p := curve.MulBase(s)
	penc := p.Compress()
	pdecoded, err := curve.DecodePoint(penc[:])
	if err != nil {
		t.Fatalf("DecodePoint: %v", err)
	}
	if !p.Equal(pdecoded) {
		t.Error("round-trip mismatch for point")
	}
}

func TestDecodeNonCanonical(t *testing.T) {
	var allOnes [32]byte
	for i := range allOnes {
		allOnes[i] = 0xFF
	}
	if _, err := curve.DecodeScalar(allOnes[:]); err == nil {
		t.Error("expected non-canonical scalar to fail to decode")
	}
	if _, err := curve.DecodePoint(allOnes[:]); err == nil {
		t.Error("expected non-canonical point to fail to decode")
	}
}

func TestOrderingIsByCompressedBytes(t *testing.T) {
	points := make([]curve.Point, 10)
	for i := range points {
		points[i] = curve.MulBase(curve.RandomScalar())
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Less(points[j]) })
	for i := 1; i < len(points); i++ {
		a, b := points[i-1].Compress(), points[i].Compress()
		if string(a[:]) > string(b[:]) {
			t.Error("sort did not produce ascending compressed-byte order")
		}
	}
}

func TestHashToScalarDeterministic(t *testing.T) {
	a := curve.HashToScalar([]byte("hello"), []byte("world"))
	b := curve.HashToScalar([]byte("hello"), []byte("world"))
	if !a.Equal(b) {
		t.Error("HashToScalar not deterministic")
	}
	c := curve.HashToScalar([]byte("hello"), []byte("there"))
	if a.Equal(c) {
		t.Error("HashToScalar collided on different input")
	}
}
