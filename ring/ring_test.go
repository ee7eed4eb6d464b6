package ring_test

import (
	"testing"

	"github.com/benwr/zebrasign/canon"
	"github.com/benwr/zebrasign/curve"
	"github.com/benwr/zebrasign/ring"
)

func TestSignatureCanonicalRoundTrip(t *testing.T) {
	my := curve.RandomScalar()
	o1 := curve.MulBase(curve.RandomScalar())
	sig, err := ring.Sign([]byte("m"), my, []curve.Point{o1})
	if err != nil {
		t.Fatal(err)
	}

	w := canon.NewWriter()
	sig.WriteCanonical(w)

	r := canon.NewReader(w.Bytes())
	decoded, err := ring.ReadSignature(r)
	if err != nil {
		t.Fatalf("ReadSignature: %v", err)
	}
	if !r.AtEnd() {
		t.Error("expected reader to be exhausted after ReadSignature")
	}
	if !sig.Equal(decoded) {
		t.Error("signature did not round-trip through canonical serialization")
	}
}

func TestReadSignatureRejectsOversizedEntryCount(t *testing.T) {
	w := canon.NewWriter()
	var challenge [32]byte
	w.WriteFixed(challenge[:])
	w.WriteU32(0xFFFFFFF0) // declares far more entries than the buffer can possibly hold

	r := canon.NewReader(w.Bytes())
	if _, err := ring.ReadSignature(r); err == nil {
		t.Error("expected ReadSignature to reject an entry count exceeding the remaining input")
	}
}

func TestBasicSAG(t *testing.T) {
	my := curve.RandomScalar()
	sig, err := ring.Sign([]byte("Message"), my, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !ring.Verify([]byte("Message"), sig) {
		t.Error("expected valid signature to verify")
	}
	if ring.Verify([]byte("Other"), sig) {
		t.Error("expected signature over a different message to fail")
	}
}

func TestThreeMemberRing(t *testing.T) {
	my := curve.RandomScalar()
	o1 := curve.MulBase(curve.RandomScalar())
	o2 := curve.MulBase(curve.RandomScalar())

	sig, err := ring.Sign([]byte("Message B"), my, []curve.Point{o1, o2})
	if err != nil {
		t.Fatal(err)
	}
	if !ring.Verify([]byte("Message B"), sig) {
		t.Error("expected 3-member ring signature to verify")
	}

	other, err := ring.Sign([]byte("Unrelated"), curve.RandomScalar(), nil)
	if err != nil {
		t.Fatal(err)
	}
	tampered := sig
	tampered.Challenge = other.Challenge
	if ring.Verify([]byte("Message B"), tampered) {
		t.Error("expected swapped challenge to fail verification")
	}
}

func TestTamperDetection(t *testing.T) {
	my := curve.RandomScalar()
	o1 := curve.MulBase(curve.RandomScalar())
	sig, err := ring.Sign([]byte("original"), my, []curve.Point{o1})
	if err != nil {
		t.Fatal(err)
	}

	tamperedResponse := sig
	entries := make([]ring.Entry, len(sig.Entries))
	copy(entries, sig.Entries)
	entries[0].Response = entries[0].Response.Add(curve.RandomScalar())
	tamperedResponse.Entries = entries
	if ring.Verify([]byte("original"), tamperedResponse) {
		t.Error("expected tampered response to fail verification")
	}
}

func TestRejectsDuplicatePoint(t *testing.T) {
	my := curve.RandomScalar()
	dup := curve.MulBase(my)
	if _, err := ring.Sign([]byte("m"), my, []curve.Point{dup}); err == nil {
		t.Error("expected duplicate point in ring to be rejected")
	}
}

func TestDeterministicRingOrder(t *testing.T) {
	my := curve.RandomScalar()
	myPub := curve.MulBase(my)
	o1 := curve.MulBase(curve.RandomScalar())
	o2 := curve.MulBase(curve.RandomScalar())

	sigA, err := ring.Sign([]byte("m"), my, []curve.Point{o1, o2})
	if err != nil {
		t.Fatal(err)
	}
	sigB, err := ring.Sign([]byte("m"), my, []curve.Point{o2, o1})
	if err != nil {
		t.Fatal(err)
	}
	if len(sigA.Entries) != len(sigB.Entries) {
		t.Fatalf("ring length mismatch: %d vs %d", len(sigA.Entries), len(sigB.Entries))
	}
	for i := range sigA.Entries {
		if !sigA.Entries[i].Point.Equal(sigB.Entries[i].Point) {
			t.Errorf("entry %d: ring order differs between equivalent calls", i)
		}
	}

	found := false
	for _, e := range sigA.Entries {
		if e.Point.Equal(myPub) {
			found = true
		}
	}
	if !found {
		t.Error("signer's own point missing from ring")
	}
}
