package message_test

import (
	"testing"

	"github.com/benwr/zebrasign/canon"
	"github.com/benwr/zebrasign/identity"
	"github.com/benwr/zebrasign/keys"
	"github.com/benwr/zebrasign/message"
)

func mustKey(t *testing.T, name, email string) keys.PrivateKey {
	t.Helper()
	id, err := identity.New(name, email)
	if err != nil {
		t.Fatal(err)
	}
	pk, err := keys.New(id)
	if err != nil {
		t.Fatal(err)
	}
	return pk
}

func TestSignAndVerifyRoundTrip(t *testing.T) {
	signer := mustKey(t, "ZebraSign", "zebra@example.com")
	other := mustKey(t, "Gaius", "notzebra@example.com")

	sm, err := message.Sign("SPARTACVSSVM", signer, []keys.PublicKey{other.Public()})
	if err != nil {
		t.Fatal(err)
	}
	if !sm.Verify() {
		t.Error("expected freshly signed message to verify")
	}
	if len(sm.Ring) != 2 {
		t.Fatalf("expected 2-member ring, got %d", len(sm.Ring))
	}
}

func TestSignDeduplicatesSignerKey(t *testing.T) {
	signer := mustKey(t, "ZebraSign", "zebra@example.com")
	other := mustKey(t, "Gaius", "notzebra@example.com")

	sm, err := message.Sign("m", signer, []keys.PublicKey{other.Public(), signer.Public()})
	if err != nil {
		t.Fatal(err)
	}
	count := 0
	for _, m := range sm.Ring {
		if m.PublicKey.Equal(signer.Public()) {
			count++
		}
	}
	if count != 1 {
		t.Errorf("signer's own key appeared %d times in ring, want 1", count)
	}
}

func TestTamperedMessageFailsVerify(t *testing.T) {
	signer := mustKey(t, "ZebraSign", "zebra@example.com")
	sm, err := message.Sign("SPARTACVSSVM", signer, nil)
	if err != nil {
		t.Fatal(err)
	}
	sm.Message = "SPARTACVSEST"
	if sm.Verify() {
		t.Error("expected tampered message to fail verification")
	}
}

func TestReadPayloadCanonicalRejectsOversizedRingLength(t *testing.T) {
	w := canon.NewWriter()
	var challenge [32]byte
	w.WriteFixed(challenge[:])
	w.WriteU32(0xFFFFFFF0) // declares far more ring members than the buffer can possibly hold

	r := canon.NewReader(w.Bytes())
	if _, err := message.ReadPayloadCanonical(r, "m"); err == nil {
		t.Error("expected ReadPayloadCanonical to reject a ring length exceeding the remaining input")
	}
}

func TestPayloadCanonicalRoundTrip(t *testing.T) {
	signer := mustKey(t, "ZebraSign", "zebra@example.com")
	other := mustKey(t, "Gaius", "notzebra@example.com")
	sm, err := message.Sign("hello", signer, []keys.PublicKey{other.Public()})
	if err != nil {
		t.Fatal(err)
	}

	w := canon.NewWriter()
	sm.WritePayloadCanonical(w)
	r := canon.NewReader(w.Bytes())
	decoded, err := message.ReadPayloadCanonical(r, sm.Message)
	if err != nil {
		t.Fatalf("ReadPayloadCanonical: %v", err)
	}
	if !r.AtEnd() {
		t.Error("expected reader exhausted")
	}
	if !decoded.Verify() {
		t.Error("expected round-tripped signed message to verify")
	}
}
