// Package identity binds a human-readable name and email address to a key, and produces the
// canonical byte image that gets self-attested (see package ring and package keys).
package identity

import (
	"fmt"
	"unicode"

	"github.com/benwr/zebrasign/asciistring"
	"github.com/benwr/zebrasign/curve"
	"github.com/benwr/zebrasign/zerrors"
)

// warningBanner prefixes every attestation image. Its purpose is purely to make it obvious to
// a human who might be tricked into signing this data directly (rather than through the
// PrivateKey.New constructor) that doing so is dangerous.
const warningBanner = "!!!DO NOT SIGN THE FOLLOWING MESSAGE. DOING SO IS A SECURITY RISK. SOMEONE IS PROBABLY TRYING TO TRICK YOU!!!"

// nameEmailSentinel separates the name and email in an attestation image. It is not a valid
// ASCII or UTF-8 byte, so it can never appear inside either field, which keeps the image
// injective in (name, email).
const nameEmailSentinel = 0xFF

// Identity is a name plus an email address. The name may be any UTF-8 string containing no
// Unicode Cc (control) characters, including no newline. The email is restricted to
// BoringAscii, which blocks whitespace, control bytes, and homoglyph-prone non-ASCII
// characters.
type Identity struct {
	name  string
	email asciistring.BoringAscii
}

// New validates name and email and returns an Identity. Returns ErrInvalidInput if name
// contains a Unicode Cc control character (including newline) or if email is not BoringAscii.
func New(name, email string) (Identity, error) {
	for _, r := range name {
		if unicode.Is(unicode.Cc, r) {
			return Identity{}, fmt.Errorf("%w: name contains a control character", zerrors.ErrInvalidInput)
		}
	}
	e, err := asciistring.New(email)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: invalid email: %v", zerrors.ErrInvalidInput, err)
	}
	return Identity{name: name, email: e}, nil
}

// Name returns the identity's display name.
func (id Identity) Name() string {
	return id.name
}

// Email returns the identity's email address.
func (id Identity) Email() string {
	return id.email.String()
}

// Equal reports whether id and o have the same name and email.
func (id Identity) Equal(o Identity) bool {
	return id.name == o.name && id.email.Equal(o.email)
}

// AttestationImage returns the canonical bytes that get signed (as a length-1 ring signature)
// to bind this identity to keypoint: warning banner, name bytes, a sentinel byte that cannot
// appear in valid UTF-8 or BoringAscii, email bytes, and the 32-byte compressed keypoint.
func (id Identity) AttestationImage(keypoint curve.Point) []byte {
	kb := keypoint.Compress()
	out := make([]byte, 0, len(warningBanner)+len(id.name)+1+len(id.email.Bytes())+len(kb))
	out = append(out, warningBanner...)
	out = append(out, id.name...)
	out = append(out, nameEmailSentinel)
	out = append(out, id.email.Bytes()...)
	out = append(out, kb[:]...)
	return out
}

// Zero overwrites the identity's in-memory contents. After Zero, the value must not be used.
//
// Go strings are immutable, so the name's original backing bytes cannot be overwritten through
// the language's memory model; dropping the reference here only lets the garbage collector
// reclaim it on its own schedule. This is a documented, best-effort gap, consistent with
// spec.md's "best-effort secret zeroization" non-goal. The email, which is backed by a mutable
// byte slice, is zeroed precisely.
func (id *Identity) Zero() {
	id.name = ""
	id.email.Zero()
}
