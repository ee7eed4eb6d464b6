// Package keys implements identity-bound keypairs (C5): a PrivateKey is an identity, a secret
// scalar, and a self-attestation binding them; a PublicKey is the same identity, the derived
// point, and the same attestation, reused verbatim rather than regenerated.
package keys

import (
	"fmt"

	"golang.org/x/crypto/sha3"

	"github.com/benwr/zebrasign/canon"
	"github.com/benwr/zebrasign/curve"
	"github.com/benwr/zebrasign/identity"
	"github.com/benwr/zebrasign/internal/z85"
	"github.com/benwr/zebrasign/ring"
	"github.com/benwr/zebrasign/zerrors"
)

// Version is a closed enumeration of wire-format versions, allowing forward-compatible
// encoding if a future version is ever added.
type Version uint8

// ZebraOneBeta is the sole version in use today.
const ZebraOneBeta Version = 0

// versionText is ZebraOneBeta's literal wire representation.
const versionText = "ZebraSign 1.0 Beta"

// String returns the version's literal wire text.
func (v Version) String() string {
	switch v {
	case ZebraOneBeta:
		return versionText
	default:
		return fmt.Sprintf("unknown version %d", uint8(v))
	}
}

// ParseVersion recovers a Version from its literal wire text.
func ParseVersion(s string) (Version, error) {
	if s == versionText {
		return ZebraOneBeta, nil
	}
	return 0, fmt.Errorf("%w: unrecognized version %q", zerrors.ErrInvalidInput, s)
}

// PrivateKey is a holder's identity, secret scalar, and the self-attestation binding them.
type PrivateKey struct {
	Holder      identity.Identity
	Key         curve.Scalar
	Attestation ring.Signature
}

// New samples a fresh secret scalar for id and produces its self-attestation: a length-1 ring
// signature over the identity's attestation image.
func New(id identity.Identity) (PrivateKey, error) {
	k := curve.RandomScalar()
	p := curve.MulBase(k)
	sig, err := ring.Sign(id.AttestationImage(p), k, nil)
	if err != nil {
		return PrivateKey{}, fmt.Errorf("attesting new key: %w", err)
	}
	return PrivateKey{Holder: id, Key: k, Attestation: sig}, nil
}

// Public derives the corresponding PublicKey. The attestation is reused verbatim, never
// regenerated, so a keypair's public key is deterministic.
func (pk PrivateKey) Public() PublicKey {
	return PublicKey{
		Holder:      pk.Holder,
		Version:     ZebraOneBeta,
		Keypoint:    curve.MulBase(pk.Key),
		Attestation: pk.Attestation,
	}
}

// Zero overwrites pk's secret scalar and, best-effort, its identity. See identity.Identity.Zero
// for the documented limitation on name-string clearing.
func (pk *PrivateKey) Zero() {
	pk.Key.Zero()
	pk.Holder.Zero()
}

// WriteCanonical appends pk's canonical image to w: identity, secret scalar, then attestation.
// This is used only inside the encrypted database; it is never exposed in an ASCII format.
func (pk PrivateKey) WriteCanonical(w *canon.Writer) {
	w.WriteString(pk.Holder.Name())
	w.WriteString(pk.Holder.Email())
	kb := pk.Key.Bytes()
	w.WriteFixed(kb[:])
	pk.Attestation.WriteCanonical(w)
}

// ReadPrivateKey parses a PrivateKey written by WriteCanonical.
func ReadPrivateKey(r *canon.Reader) (PrivateKey, error) {
	name, err := r.ReadString()
	if err != nil {
		return PrivateKey{}, fmt.Errorf("%w: name: %v", zerrors.ErrCorruptedDatabase, err)
	}
	email, err := r.ReadString()
	if err != nil {
		return PrivateKey{}, fmt.Errorf("%w: email: %v", zerrors.ErrCorruptedDatabase, err)
	}
	id, err := identity.New(name, email)
	if err != nil {
		return PrivateKey{}, fmt.Errorf("%w: identity: %v", zerrors.ErrCorruptedDatabase, err)
	}
	kb, err := r.ReadFixed(32)
	if err != nil {
		return PrivateKey{}, fmt.Errorf("%w: key: %v", zerrors.ErrCorruptedDatabase, err)
	}
	key, err := curve.DecodeScalar(kb)
	if err != nil {
		return PrivateKey{}, fmt.Errorf("%w: key: %v", zerrors.ErrCorruptedDatabase, err)
	}
	attestation, err := ring.ReadSignature(r)
	if err != nil {
		return PrivateKey{}, fmt.Errorf("%w: attestation: %v", zerrors.ErrCorruptedDatabase, err)
	}
	return PrivateKey{Holder: id, Key: key, Attestation: attestation}, nil
}

// PublicKey is a holder's identity, version tag, public point, and self-attestation.
type PublicKey struct {
	Holder      identity.Identity
	Version     Version
	Keypoint    curve.Point
	Attestation ring.Signature
}

// ValidateAttestation reports whether Attestation is a length-1 ring signature whose sole
// point equals Keypoint and which verifies against Holder's attestation image of Keypoint. All
// three conditions are required: the length check alone prevents a trivially extended ring
// from bypassing identity binding.
func (pub PublicKey) ValidateAttestation() bool {
	if len(pub.Attestation.Entries) != 1 {
		return false
	}
	if !pub.Attestation.Entries[0].Point.Equal(pub.Keypoint) {
		return false
	}
	return ring.Verify(pub.Holder.AttestationImage(pub.Keypoint), pub.Attestation)
}

// Equal reports full structural equality, including the attestation.
func (pub PublicKey) Equal(o PublicKey) bool {
	return pub.Holder.Equal(o.Holder) &&
		pub.Version == o.Version &&
		pub.Keypoint.Equal(o.Keypoint) &&
		pub.Attestation.Equal(o.Attestation)
}

// Less orders PublicKeys by compressed keypoint bytes, the only ordering ring construction may
// use.
func (pub PublicKey) Less(o PublicKey) bool {
	return pub.Keypoint.Less(o.Keypoint)
}

// WriteCanonical appends pub's canonical image to w, in the fixed order version, identity,
// keypoint, attestation. This is the byte image hashed for fingerprinting and stored in the
// database; the ASCII codec (package codec) wraps it differently, but relies on the same field
// order for the hex-encoded pieces.
func (pub PublicKey) WriteCanonical(w *canon.Writer) {
	w.WriteString(pub.Version.String())
	w.WriteString(pub.Holder.Name())
	w.WriteString(pub.Holder.Email())
	kb := pub.Keypoint.Compress()
	w.WriteFixed(kb[:])
	pub.Attestation.WriteCanonical(w)
}

// ReadPublicKey parses a PublicKey written by WriteCanonical.
func ReadPublicKey(r *canon.Reader) (PublicKey, error) {
	versionText, err := r.ReadString()
	if err != nil {
		return PublicKey{}, fmt.Errorf("%w: version: %v", zerrors.ErrSignatureParse, err)
	}
	version, err := ParseVersion(versionText)
	if err != nil {
		return PublicKey{}, fmt.Errorf("%w: %v", zerrors.ErrSignatureParse, err)
	}
	name, err := r.ReadString()
	if err != nil {
		return PublicKey{}, fmt.Errorf("%w: name: %v", zerrors.ErrSignatureParse, err)
	}
	email, err := r.ReadString()
	if err != nil {
		return PublicKey{}, fmt.Errorf("%w: email: %v", zerrors.ErrSignatureParse, err)
	}
	id, err := identity.New(name, email)
	if err != nil {
		return PublicKey{}, fmt.Errorf("%w: %v", zerrors.ErrSignatureParse, err)
	}
	kb, err := r.ReadFixed(32)
	if err != nil {
		return PublicKey{}, fmt.Errorf("%w: keypoint: %v", zerrors.ErrSignatureParse, err)
	}
	keypoint, err := curve.DecodePoint(kb)
	if err != nil {
		return PublicKey{}, fmt.Errorf("%w: keypoint: %v", zerrors.ErrSignatureParse, err)
	}
	attestation, err := ring.ReadSignature(r)
	if err != nil {
		return PublicKey{}, err
	}
	return PublicKey{Holder: id, Version: version, Keypoint: keypoint, Attestation: attestation}, nil
}

// Fingerprint computes a human-comparable digest of pub's canonical serialization: SHA3-256,
// Z85-encoded (40 ASCII characters for a 32-byte digest), grouped into 4 blocks of 10 separated
// by single spaces (43 characters total). Equal PublicKeys always have equal fingerprints.
func (pub PublicKey) Fingerprint() string {
	w := canon.NewWriter()
	pub.WriteCanonical(w)
	digest := sha3.Sum256(w.Bytes())
	encoded := z85.Encode(digest[:])

	out := make([]byte, 0, 43)
	for i := 0; i < len(encoded); i += 10 {
		if i > 0 {
			out = append(out, ' ')
		}
		out = append(out, encoded[i:i+10]...)
	}
	return string(out)
}
