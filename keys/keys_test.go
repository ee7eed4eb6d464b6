package keys_test

import (
	"testing"

	"github.com/benwr/zebrasign/canon"
	"github.com/benwr/zebrasign/identity"
	"github.com/benwr/zebrasign/keys"
)

func mustIdentity(t *testing.T, name, email string) identity.Identity {
	t.Helper()
	id, err := identity.New(name, email)
	if err != nil {
		t.Fatal(err)
	}
	return id
}

func TestNewKeyAttestationValidates(t *testing.T) {
	id := mustIdentity(t, "ZebraSign", "zebra@example.com")
	pk, err := keys.New(id)
	if err != nil {
		t.Fatal(err)
	}
	pub := pk.Public()
	if !pub.ValidateAttestation() {
		t.Error("expected freshly-created key's attestation to validate")
	}
}

func TestPublicIsDeterministic(t *testing.T) {
	id := mustIdentity(t, "ZebraSign", "zebra@example.com")
	pk, err := keys.New(id)
	if err != nil {
		t.Fatal(err)
	}
	a := pk.Public()
	b := pk.Public()
	if !a.Equal(b) {
		t.Error("Public() is not deterministic across calls")
	}
}

func TestCanonicalRoundTrip(t *testing.T) {
	id := mustIdentity(t, "ZebraSign", "zebra@example.com")
	pk, err := keys.New(id)
	if err != nil {
		t.Fatal(err)
	}
	pub := pk.Public()

	w := canon.NewWriter()
	pub.WriteCanonical(w)
	r := canon.NewReader(w.Bytes())
	decoded, err := keys.ReadPublicKey(r)
	if err != nil {
		t.Fatalf("ReadPublicKey: %v", err)
	}
	if !r.AtEnd() {
		t.Error("expected reader exhausted after ReadPublicKey")
	}
	if !pub.Equal(decoded) {
		t.Error("PublicKey did not round-trip through canonical serialization")
	}
}

func TestFingerprintDeterminism(t *testing.T) {
	id := mustIdentity(t, "ZebraSign", "zebra@example.com")
	pk, err := keys.New(id)
	if err != nil {
		t.Fatal(err)
	}
	pub := pk.Public()

	fp1 := pub.Fingerprint()
	fp2 := pub.Fingerprint()
	if fp1 != fp2 {
		t.Error("Fingerprint is not deterministic")
	}
	if len(fp1) != 43 {
		t.Errorf("Fingerprint length = %d, want 43", len(fp1))
	}

	other, err := keys.New(mustIdentity(t, "Gaius", "notzebra@example.com"))
	if err != nil {
		t.Fatal(err)
	}
	if pub.Fingerprint() == other.Public().Fingerprint() {
		t.Error("distinct public keys produced identical fingerprints")
	}
}

func TestValidateAttestationRejectsWrongPoint(t *testing.T) {
	id := mustIdentity(t, "ZebraSign", "zebra@example.com")
	pkA, err := keys.New(id)
	if err != nil {
		t.Fatal(err)
	}
	pkB, err := keys.New(id)
	if err != nil {
		t.Fatal(err)
	}

	forged := pkA.Public()
	forged.Attestation = pkB.Public().Attestation
	if forged.ValidateAttestation() {
		t.Error("expected attestation from a different key to be rejected")
	}
}
