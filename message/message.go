// Package message couples a text message with the ring of public keys and responses that sign
// it (C6). It builds directly on package ring for the underlying cryptography and package keys
// for the disclosed identities, and exposes the (challenge, ring) canonical pair that package
// codec wraps in the ASCII signed-message format.
package message

import (
	"fmt"

	"github.com/benwr/zebrasign/canon"
	"github.com/benwr/zebrasign/curve"
	"github.com/benwr/zebrasign/keys"
	"github.com/benwr/zebrasign/ring"
	"github.com/benwr/zebrasign/zerrors"
)

// RingMember pairs a disclosed public key with its ring signature response.
type RingMember struct {
	PublicKey keys.PublicKey
	Response  curve.Scalar
}

// SignedMessage is a signed text message: the message itself, the ring signature's challenge,
// and the ordered ring of (PublicKey, response) pairs.
type SignedMessage struct {
	Message   string
	Challenge curve.Scalar
	Ring      []RingMember
}

// Sign signs message as the holder of myPrivate, disclosing others alongside it. Any entry in
// others structurally equal to myPrivate's own public key is silently dropped first, so the
// real signer's key appears exactly once in the resulting ring.
func Sign(messageText string, myPrivate keys.PrivateKey, others []keys.PublicKey) (SignedMessage, error) {
	myPublic := myPrivate.Public()

	filtered := make([]keys.PublicKey, 0, len(others))
	for _, o := range others {
		if !o.Equal(myPublic) {
			filtered = append(filtered, o)
		}
	}

	byKeypoint := make(map[[32]byte]keys.PublicKey, len(filtered)+1)
	byKeypoint[myPublic.Keypoint.Compress()] = myPublic
	otherPoints := make([]curve.Point, 0, len(filtered))
	for _, o := range filtered {
		byKeypoint[o.Keypoint.Compress()] = o
		otherPoints = append(otherPoints, o.Keypoint)
	}

	sig, err := ring.Sign([]byte(messageText), myPrivate.Key, otherPoints)
	if err != nil {
		return SignedMessage{}, err
	}

	members := make([]RingMember, len(sig.Entries))
	for i, e := range sig.Entries {
		pub, ok := byKeypoint[e.Point.Compress()]
		if !ok {
			return SignedMessage{}, fmt.Errorf("internal error: ring signature point has no matching public key")
		}
		members[i] = RingMember{PublicKey: pub, Response: e.Response}
	}

	return SignedMessage{Message: messageText, Challenge: sig.Challenge, Ring: members}, nil
}

// Verify reports whether sm is a structurally and cryptographically valid signed message:
// every disclosed public key's self-attestation must validate, and the reconstructed ring
// signature must verify over Message.
func (sm SignedMessage) Verify() bool {
	if len(sm.Ring) == 0 {
		return false
	}
	entries := make([]ring.Entry, len(sm.Ring))
	for i, m := range sm.Ring {
		if !m.PublicKey.ValidateAttestation() {
			return false
		}
		entries[i] = ring.Entry{Point: m.PublicKey.Keypoint, Response: m.Response}
	}
	sig := ring.Signature{Challenge: sm.Challenge, Entries: entries}
	return ring.Verify([]byte(sm.Message), sig)
}

// PublicKeys returns the disclosed public keys in ring order.
func (sm SignedMessage) PublicKeys() []keys.PublicKey {
	out := make([]keys.PublicKey, len(sm.Ring))
	for i, m := range sm.Ring {
		out[i] = m.PublicKey
	}
	return out
}

// WritePayloadCanonical appends the canonical (challenge, ring) pair to w: the challenge
// scalar, a 4-byte little-endian member count, then each member as (canonical PublicKey,
// 32-byte response scalar). The message text itself is not included; the ASCII codec carries
// it separately.
func (sm SignedMessage) WritePayloadCanonical(w *canon.Writer) {
	b := sm.Challenge.Bytes()
	w.WriteFixed(b[:])
	w.WriteU32(uint32(len(sm.Ring)))
	for _, m := range sm.Ring {
		m.PublicKey.WriteCanonical(w)
		rb := m.Response.Bytes()
		w.WriteFixed(rb[:])
	}
}

// ReadPayloadCanonical parses a (challenge, ring) pair written by WritePayloadCanonical. The
// caller supplies the message text, which travels alongside this payload in the ASCII format
// rather than inside it.
func ReadPayloadCanonical(r *canon.Reader, messageText string) (SignedMessage, error) {
	challengeBytes, err := r.ReadFixed(32)
	if err != nil {
		return SignedMessage{}, fmt.Errorf("%w: challenge: %v", zerrors.ErrSignatureParse, err)
	}
	challenge, err := curve.DecodeScalar(challengeBytes)
	if err != nil {
		return SignedMessage{}, fmt.Errorf("%w: challenge: %v", zerrors.ErrSignatureParse, err)
	}
	n, err := r.ReadU32()
	if err != nil {
		return SignedMessage{}, fmt.Errorf("%w: ring length: %v", zerrors.ErrSignatureParse, err)
	}
	if n == 0 {
		return SignedMessage{}, fmt.Errorf("%w: empty ring", zerrors.ErrSignatureParse)
	}
	// Smallest possible encoded ring member: three empty length-prefixed strings (version,
	// name, email), a 32-byte keypoint, a minimal one-entry attestation (32-byte challenge +
	// u32 count + 64-byte entry), and a 32-byte response.
	const minMemberSize = 3*4 + 32 + (32 + 4 + 64) + 32
	if uint64(n)*minMemberSize > uint64(r.Remaining()) {
		return SignedMessage{}, fmt.Errorf("%w: ring length %d exceeds remaining input", zerrors.ErrSignatureParse, n)
	}
	members := make([]RingMember, n)
	for i := range members {
		pub, err := keys.ReadPublicKey(r)
		if err != nil {
			return SignedMessage{}, fmt.Errorf("ring member %d: %w", i, err)
		}
		rb, err := r.ReadFixed(32)
		if err != nil {
			return SignedMessage{}, fmt.Errorf("%w: ring member %d response: %v", zerrors.ErrSignatureParse, i, err)
		}
		resp, err := curve.DecodeScalar(rb)
		if err != nil {
			return SignedMessage{}, fmt.Errorf("%w: ring member %d response: %v", zerrors.ErrSignatureParse, i, err)
		}
		members[i] = RingMember{PublicKey: pub, Response: resp}
	}
	return SignedMessage{Message: messageText, Challenge: challenge, Ring: members}, nil
}
