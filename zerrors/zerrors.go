// Package zerrors defines the tagged error taxonomy shared by every zebrasign package.
//
// Callers compare against these sentinels with errors.Is; wrapped context (via fmt.Errorf's
// %w) never changes the sentinel identity.
package zerrors

import "errors"

var (
	// ErrInvalidInput covers malformed identities, emails, empty rings, and non-canonical
	// curve encodings.
	ErrInvalidInput = errors.New("zebrasign: invalid input")

	// ErrSignatureParse is returned when an ASCII public key or signed message does not match
	// the expected format. It carries no further detail by design.
	ErrSignatureParse = errors.New("zebrasign: failed to parse")

	// ErrInvalidAttestation is returned when a parsed public key's self-attestation does not
	// verify. Opaque callers should treat it the same as ErrSignatureParse.
	ErrInvalidAttestation = errors.New("zebrasign: invalid attestation")

	// ErrVerificationFailed is returned by operations that expect a signature to verify.
	ErrVerificationFailed = errors.New("zebrasign: verification failed")

	// ErrUnknownKey is returned when sign is called with a public key absent from the store.
	ErrUnknownKey = errors.New("zebrasign: unknown key")

	// ErrCorruptedDatabase is returned on AEAD authentication failure or malformed contents.
	ErrCorruptedDatabase = errors.New("zebrasign: corrupted database")

	// ErrConcurrentInstance is returned when the database lock is already held.
	ErrConcurrentInstance = errors.New("zebrasign: another instance holds the database lock")

	// ErrKeychainUnavailable is returned when no OS credential store is reachable.
	ErrKeychainUnavailable = errors.New("zebrasign: keychain unavailable")

	// ErrKeychainDenied is returned when the OS credential store refuses access.
	ErrKeychainDenied = errors.New("zebrasign: keychain access denied")
)
