// Package keychain retrieves or creates the database passphrase from the OS credential store
// (C9).
package keychain

import (
	"crypto/rand"
	"errors"
	"fmt"
	"os/user"

	"github.com/zalando/go-keyring"

	"github.com/benwr/zebrasign/zerrors"
)

// serviceName is the credential store entry's service name.
const serviceName = "ZebraSign"

// fallbackUsername is used when the OS reports an empty current username.
const fallbackUsername = "zebra_user"

const passphraseLength = 32
const passphraseAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// GetOrCreateDBKey returns the database encryption passphrase, creating and storing a fresh
// one in the OS credential store if none exists yet.
//
// In debug mode, or on any platform where the credential store is unusable, it falls back to a
// constant empty passphrase rather than failing outright. This forfeits at-rest
// confidentiality: only the AEAD envelope's integrity and format correctness remain meaningful
// in that mode. Release builds must not set debug.
func GetOrCreateDBKey(debug bool) (string, error) {
	username := currentUsername()

	secret, err := keyring.Get(serviceName, username)
	if err == nil {
		return secret, nil
	}
	if !errors.Is(err, keyring.ErrNotFound) {
		return unavailableOrError(debug, err)
	}

	secret, err = randomPassphrase()
	if err != nil {
		return "", fmt.Errorf("%w: generating passphrase: %v", zerrors.ErrKeychainUnavailable, err)
	}
	if err := keyring.Set(serviceName, username, secret); err != nil {
		return unavailableOrError(debug, err)
	}
	return secret, nil
}

func unavailableOrError(debug bool, cause error) (string, error) {
	if debug {
		return "", nil
	}
	if errors.Is(cause, keyring.ErrUnsupportedPlatform) {
		return "", fmt.Errorf("%w: %v", zerrors.ErrKeychainUnavailable, cause)
	}
	return "", fmt.Errorf("%w: %v", zerrors.ErrKeychainDenied, cause)
}

func currentUsername() string {
	u, err := user.Current()
	if err != nil || u.Username == "" {
		return fallbackUsername
	}
	return u.Username
}

// randomPassphrase samples passphraseLength characters uniformly from passphraseAlphabet,
// using rejection sampling so the result carries no modulo bias.
func randomPassphrase() (string, error) {
	const alphabetLen = len(passphraseAlphabet)
	const maxUnbiased = 256 - (256 % alphabetLen)

	out := make([]byte, passphraseLength)
	var scratch [1]byte
	for i := range out {
		for {
			if _, err := rand.Read(scratch[:]); err != nil {
				return "", err
			}
			if int(scratch[0]) < maxUnbiased {
				out[i] = passphraseAlphabet[int(scratch[0])%alphabetLen]
				break
			}
		}
	}
	return string(out), nil
}
