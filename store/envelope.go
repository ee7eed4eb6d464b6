package store

import (
	"crypto/rand"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/scrypt"

	"github.com/benwr/zebrasign/zerrors"
)

const (
	saltSize = 16
	keySize  = chacha20poly1305.KeySize

	// scrypt cost parameters for offline, at-rest passphrase stretching. N is kept at a level
	// that stays well under a second on ordinary desktop hardware rather than scrypt's usual
	// spend-all-available-memory guidance, since the store has no tunable settings surface.
	scryptN = 1 << 15
	scryptR = 8
	scryptP = 1
)

// seal encrypts plaintext under passphrase using scrypt-derived key material and
// XChaCha20-Poly1305, returning salt ‖ nonce ‖ ciphertext. A fresh salt and nonce are sampled
// for every call.
func seal(passphrase string, plaintext []byte) ([]byte, error) {
	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("sampling salt: %w", err)
	}

	key, err := deriveKey(passphrase, salt)
	if err != nil {
		return nil, err
	}
	defer zeroBytes(key)

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("constructing aead: %w", err)
	}

	nonce := make([]byte, chacha20poly1305.NonceSizeX)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("sampling nonce: %w", err)
	}
	ciphertext := aead.Seal(nil, nonce, plaintext, nil)

	out := make([]byte, 0, saltSize+len(nonce)+len(ciphertext))
	out = append(out, salt...)
	out = append(out, nonce...)
	out = append(out, ciphertext...)
	return out, nil
}

// open reverses seal, failing with ErrCorruptedDatabase if the envelope is malformed or
// authentication fails.
func open(passphrase string, envelope []byte) ([]byte, error) {
	if len(envelope) < saltSize+chacha20poly1305.NonceSizeX {
		return nil, fmt.Errorf("%w: envelope too short", zerrors.ErrCorruptedDatabase)
	}
	salt := envelope[:saltSize]
	nonce := envelope[saltSize : saltSize+chacha20poly1305.NonceSizeX]
	ciphertext := envelope[saltSize+chacha20poly1305.NonceSizeX:]

	key, err := deriveKey(passphrase, salt)
	if err != nil {
		return nil, err
	}
	defer zeroBytes(key)

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("constructing aead: %w", err)
	}
	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", zerrors.ErrCorruptedDatabase, err)
	}
	return plaintext, nil
}

func deriveKey(passphrase string, salt []byte) ([]byte, error) {
	key, err := scrypt.Key([]byte(passphrase), salt, scryptN, scryptR, scryptP, keySize)
	if err != nil {
		return nil, fmt.Errorf("deriving key: %w", err)
	}
	return key, nil
}

func zeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
