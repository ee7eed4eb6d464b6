// Package ring implements the Spontaneous Anonymous Group (SAG) ring signature scheme: sign a
// message as one of a disclosed set of public keys without revealing which one, and verify such
// a signature against that set. It knows nothing about identities or key formats; package keys
// and package message build on it.
package ring

import (
	"fmt"
	"sort"

	"golang.org/x/crypto/sha3"

	"github.com/benwr/zebrasign/canon"
	"github.com/benwr/zebrasign/curve"
	"github.com/benwr/zebrasign/zerrors"
)

// Entry pairs a ring member's point with its signature response scalar.
type Entry struct {
	Point    curve.Point
	Response curve.Scalar
}

// Signature is a SAG ring signature: a challenge scalar plus one response per ring member, in
// the same order the ring was sorted into at signing time.
type Signature struct {
	Challenge curve.Scalar
	Entries   []Entry
}

// Sign produces a ring signature over message as the holder of mySecret, spontaneously
// including the points in others. The signer's own derived public point is inserted into the
// ring and the whole set is sorted by compressed bytes; others must not already contain it or
// any other duplicate point.
func Sign(message []byte, mySecret curve.Scalar, others []curve.Point) (Signature, error) {
	myPub := curve.MulBase(mySecret)

	points := make([]curve.Point, 0, len(others)+1)
	points = append(points, others...)
	points = append(points, myPub)
	sort.Slice(points, func(i, j int) bool { return points[i].Less(points[j]) })

	for i := 1; i < len(points); i++ {
		if points[i-1].Equal(points[i]) {
			return Signature{}, fmt.Errorf("%w: ring contains a duplicate point", zerrors.ErrInvalidInput)
		}
	}

	n := len(points)
	pi := sort.Search(n, func(i int) bool { return !points[i].Less(myPub) })
	if pi == n || !points[pi].Equal(myPub) {
		return Signature{}, fmt.Errorf("%w: signer's own point not found in sorted ring", zerrors.ErrInvalidInput)
	}

	h0 := ringPrefixHash(message, points)

	challenges := make([]curve.Scalar, n)
	responses := make([]curve.Scalar, n)
	for i := range responses {
		responses[i] = curve.RandomScalar()
	}

	a := curve.RandomScalar()
	u := curve.MulBase(a)

	for offset := 1; offset <= n; offset++ {
		i := (pi + offset) % n
		c := curve.HashToScalar(h0, compressed(u))
		challenges[i] = c
		u = curve.MulBase(responses[i]).Add(c.MulPoint(points[i]))
	}

	responses[pi] = a.Sub(challenges[pi].Mul(mySecret))

	entries := make([]Entry, n)
	for i := range entries {
		entries[i] = Entry{Point: points[i], Response: responses[i]}
	}

	return Signature{Challenge: challenges[0], Entries: entries}, nil
}

// Verify reports whether sig is a valid ring signature over message, i.e. recomputing the
// challenge chain around the stored ring closes back to the stored challenge. It does not
// re-sort the ring; callers that assemble a Signature out of band must already have it sorted.
func Verify(message []byte, sig Signature) bool {
	n := len(sig.Entries)
	if n == 0 {
		return false
	}

	points := make([]curve.Point, n)
	for i, e := range sig.Entries {
		points[i] = e.Point
	}
	h0 := ringPrefixHash(message, points)

	c := sig.Challenge
	for _, e := range sig.Entries {
		u := curve.MulBase(e.Response).Add(c.MulPoint(e.Point))
		c = curve.HashToScalar(h0, compressed(u))
	}
	return c.Equal(sig.Challenge)
}

// ringPrefixHash computes SHA3-512(message || compress(points[0]) || ... || compress(points[n-1])),
// the fixed prefix mixed into every challenge in the chain.
func ringPrefixHash(message []byte, points []curve.Point) []byte {
	h := sha3.New512()
	h.Write(message)
	for _, p := range points {
		c := p.Compress()
		h.Write(c[:])
	}
	return h.Sum(nil)
}

func compressed(p curve.Point) []byte {
	c := p.Compress()
	return c[:]
}

// Equal reports whether sig and o have the same challenge and the same sequence of entries.
func (sig Signature) Equal(o Signature) bool {
	if !sig.Challenge.Equal(o.Challenge) || len(sig.Entries) != len(o.Entries) {
		return false
	}
	for i := range sig.Entries {
		if !sig.Entries[i].Point.Equal(o.Entries[i].Point) || !sig.Entries[i].Response.Equal(o.Entries[i].Response) {
			return false
		}
	}
	return true
}

// WriteCanonical appends sig's canonical image to w: the challenge scalar, a 4-byte
// little-endian entry count, then each entry as (32-byte point, 32-byte scalar).
func (sig Signature) WriteCanonical(w *canon.Writer) {
	b := sig.Challenge.Bytes()
	w.WriteFixed(b[:])
	w.WriteU32(uint32(len(sig.Entries)))
	for _, e := range sig.Entries {
		pb := e.Point.Compress()
		w.WriteFixed(pb[:])
		rb := e.Response.Bytes()
		w.WriteFixed(rb[:])
	}
}

// ReadSignature parses a Signature written by WriteCanonical. It requires at least one entry
// and rejects non-canonical scalar or point encodings.
func ReadSignature(r *canon.Reader) (Signature, error) {
	challengeBytes, err := r.ReadFixed(32)
	if err != nil {
		return Signature{}, fmt.Errorf("%w: signature challenge: %v", zerrors.ErrSignatureParse, err)
	}
	challenge, err := curve.DecodeScalar(challengeBytes)
	if err != nil {
		return Signature{}, fmt.Errorf("%w: signature challenge: %v", zerrors.ErrSignatureParse, err)
	}
	n, err := r.ReadU32()
	if err != nil {
		return Signature{}, fmt.Errorf("%w: signature entry count: %v", zerrors.ErrSignatureParse, err)
	}
	if n == 0 {
		return Signature{}, fmt.Errorf("%w: signature has zero ring entries", zerrors.ErrSignatureParse)
	}
	const entrySize = 64 // 32-byte point + 32-byte response
	if uint64(n)*entrySize > uint64(r.Remaining()) {
		return Signature{}, fmt.Errorf("%w: signature entry count %d exceeds remaining input", zerrors.ErrSignatureParse, n)
	}
	entries := make([]Entry, n)
	for i := range entries {
		pb, err := r.ReadFixed(32)
		if err != nil {
			return Signature{}, fmt.Errorf("%w: signature entry %d point: %v", zerrors.ErrSignatureParse, i, err)
		}
		p, err := curve.DecodePoint(pb)
		if err != nil {
			return Signature{}, fmt.Errorf("%w: signature entry %d point: %v", zerrors.ErrSignatureParse, i, err)
		}
		rb, err := r.ReadFixed(32)
		if err != nil {
			return Signature{}, fmt.Errorf("%w: signature entry %d response: %v", zerrors.ErrSignatureParse, i, err)
		}
		resp, err := curve.DecodeScalar(rb)
		if err != nil {
			return Signature{}, fmt.Errorf("%w: signature entry %d response: %v", zerrors.ErrSignatureParse, i, err)
		}
		entries[i] = Entry{Point: p, Response: resp}
	}
	return Signature{Challenge: challenge, Entries: entries}, nil
}
