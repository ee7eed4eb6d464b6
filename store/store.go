// Package store implements the encrypted on-disk key database (C8): an authenticated-encrypted
// container holding the user's private keys and the public keys they have recorded, with
// atomic durable writes, single-process exclusive locking, and an in-memory visible view that
// never retains private keys.
package store

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/gofrs/flock"

	"github.com/benwr/zebrasign/canon"
	"github.com/benwr/zebrasign/identity"
	"github.com/benwr/zebrasign/keys"
	"github.com/benwr/zebrasign/keychain"
	"github.com/benwr/zebrasign/message"
	"github.com/benwr/zebrasign/zerrors"
)

// VisibleView is the in-memory, public-only projection of the database: the user's own public
// keys and the public keys of others, with verification state. Private keys are never present
// here.
type VisibleView struct {
	MyPublicKeys    []keys.PublicKey
	TheirPublicKeys map[[32]byte]TheirKey
}

// TheirKey pairs a recorded public key with its verification state.
type TheirKey struct {
	PublicKey    keys.PublicKey
	Verification VerificationInfo
}

// Database is an open handle to an encrypted key database file. At most one Database may be
// open on a given path at a time, on a given host, enforced by an exclusive file lock on a
// sibling lock file.
type Database struct {
	path       string
	debug      bool
	logger     *log.Logger
	lock       *flock.Flock
	passphrase string
	view       VisibleView
}

// Open opens (creating if absent) the database at path. debug selects the keychain's
// no-credential-store fallback behavior (see package keychain); logger may be nil. Opening
// takes an exclusive advisory lock on a sibling lock file, which fails fast with
// ErrConcurrentInstance if another instance already holds it.
func Open(path string, debug bool, logger *log.Logger) (*Database, error) {
	if logger == nil {
		logger = log.New(os.Stderr, "", 0)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	lock, err := acquireLock(lockPathFor(path))
	if err != nil {
		return nil, err
	}

	passphrase, err := keychain.GetOrCreateDBKey(debug)
	if err != nil {
		releaseLock(lock)
		return nil, err
	}

	db := &Database{
		path:       path,
		debug:      debug,
		logger:     logger,
		lock:       lock,
		passphrase: passphrase,
	}

	contents, err := db.loadFresh()
	if err != nil {
		releaseLock(lock)
		return nil, err
	}
	db.view = viewOf(contents)

	logger.Printf("store: opened database at %s", path)
	return db, nil
}

// Close releases the database's exclusive lock. The Database must not be used afterward.
func (db *Database) Close() error {
	return releaseLock(db.lock)
}

// View returns the current cached visible view.
func (db *Database) View() VisibleView {
	return db.view
}

// loadFresh decrypts and deserializes the current on-disk contents, treating an absent or
// empty file as an empty database. It never trusts the cached view for secrets.
func (db *Database) loadFresh() (contentsV0, error) {
	raw, err := os.ReadFile(db.path)
	if os.IsNotExist(err) {
		return emptyContents(), nil
	}
	if err != nil {
		return contentsV0{}, fmt.Errorf("reading database file: %w", err)
	}
	if len(raw) == 0 {
		return emptyContents(), nil
	}

	plaintext, err := open(db.passphrase, raw)
	if err != nil {
		return contentsV0{}, err
	}
	defer zeroBytes(plaintext)

	return parseContentsV0(plaintext)
}

// persist serializes, encrypts, and atomically writes contents to disk, then refreshes the
// cached visible view. The write goes to a temporary file in the same directory, which is
// fsynced and renamed over the target, and the containing directory is fsynced afterward, so a
// crash at any point leaves either the pre-image or a fully-written post-image.
func (db *Database) persist(contents contentsV0) error {
	w := canon.NewWriter()
	contents.writeCanonical(w)

	envelope, err := seal(db.passphrase, w.Bytes())
	if err != nil {
		return fmt.Errorf("sealing database: %w", err)
	}

	dir := filepath.Dir(db.path)
	tmp, err := os.CreateTemp(dir, ".zebra-db-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temporary database file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(envelope); err != nil {
		tmp.Close()
		return fmt.Errorf("writing temporary database file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("fsyncing temporary database file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temporary database file: %w", err)
	}
	if err := os.Rename(tmpPath, db.path); err != nil {
		return fmt.Errorf("renaming database file into place: %w", err)
	}

	if dirFile, err := os.Open(dir); err == nil {
		dirFile.Sync()
		dirFile.Close()
	}

	db.view = viewOf(contents)
	return nil
}

func viewOf(contents contentsV0) VisibleView {
	my := make([]keys.PublicKey, 0, len(contents.PrivateKeys))
	for _, pk := range contents.PrivateKeys {
		my = append(my, pk.Public())
	}
	sort.Slice(my, func(i, j int) bool { return my[i].Less(my[j]) })

	their := make(map[[32]byte]TheirKey, len(contents.PublicKeys))
	for k, v := range contents.PublicKeys {
		their[k] = TheirKey{PublicKey: v.PublicKey, Verification: v.Verification}
	}

	return VisibleView{MyPublicKeys: my, TheirPublicKeys: their}
}

// NewPrivateKey creates a fresh keypair for the given name and email, persists it, and returns
// the resulting public key.
func (db *Database) NewPrivateKey(name, email string) (keys.PublicKey, error) {
	id, err := identity.New(name, email)
	if err != nil {
		return keys.PublicKey{}, err
	}

	contents, err := db.loadFresh()
	if err != nil {
		return keys.PublicKey{}, err
	}

	pk, err := keys.New(id)
	if err != nil {
		return keys.PublicKey{}, err
	}
	pub := pk.Public()
	contents.PrivateKeys[pub.Keypoint.Compress()] = pk

	if err := db.persist(contents); err != nil {
		return keys.PublicKey{}, err
	}
	return pub, nil
}

// ImportPrivateKey validates pk's self-attestation and persists it.
func (db *Database) ImportPrivateKey(pk keys.PrivateKey) error {
	if !pk.Public().ValidateAttestation() {
		return fmt.Errorf("%w: private key's self-attestation does not validate", zerrors.ErrInvalidAttestation)
	}

	contents, err := db.loadFresh()
	if err != nil {
		return err
	}
	contents.PrivateKeys[pk.Public().Keypoint.Compress()] = pk
	return db.persist(contents)
}

// DeletePrivateKey removes the private key corresponding to pub, if present.
func (db *Database) DeletePrivateKey(pub keys.PublicKey) error {
	contents, err := db.loadFresh()
	if err != nil {
		return err
	}
	delete(contents.PrivateKeys, pub.Keypoint.Compress())
	return db.persist(contents)
}

// AddPublicKeys validates and records pubs as other people's public keys. A key already
// present keeps its existing verification state; a newly recorded key starts unverified.
// Fails with ErrInvalidAttestation if any key's self-attestation does not validate, leaving
// the database untouched.
func (db *Database) AddPublicKeys(pubs []keys.PublicKey) error {
	for _, pub := range pubs {
		if !pub.ValidateAttestation() {
			return fmt.Errorf("%w: public key's self-attestation does not validate", zerrors.ErrInvalidAttestation)
		}
	}

	contents, err := db.loadFresh()
	if err != nil {
		return err
	}
	for _, pub := range pubs {
		key := pub.Keypoint.Compress()
		existing, ok := contents.PublicKeys[key]
		verification := VerificationInfo{}
		if ok {
			verification = existing.Verification
		}
		contents.PublicKeys[key] = theirEntry{PublicKey: pub, Verification: verification}
	}
	return db.persist(contents)
}

// DeletePublicKey removes a recorded public key, if present.
func (db *Database) DeletePublicKey(pub keys.PublicKey) error {
	contents, err := db.loadFresh()
	if err != nil {
		return err
	}
	delete(contents.PublicKeys, pub.Keypoint.Compress())
	return db.persist(contents)
}

// SetVerified marks pub as verified at the current time. Fails with ErrUnknownKey if pub is
// not a recorded public key.
func (db *Database) SetVerified(pub keys.PublicKey) error {
	return db.setVerification(pub, func() VerificationInfo {
		now := time.Now().Unix()
		return VerificationInfo{VerifiedUnixSeconds: &now}
	})
}

// SetUnverified clears any verification assertion for pub. Fails with ErrUnknownKey if pub is
// not a recorded public key.
func (db *Database) SetUnverified(pub keys.PublicKey) error {
	return db.setVerification(pub, func() VerificationInfo { return VerificationInfo{} })
}

func (db *Database) setVerification(pub keys.PublicKey, next func() VerificationInfo) error {
	contents, err := db.loadFresh()
	if err != nil {
		return err
	}
	key := pub.Keypoint.Compress()
	entry, ok := contents.PublicKeys[key]
	if !ok {
		return fmt.Errorf("%w: %s", zerrors.ErrUnknownKey, pub.Fingerprint())
	}
	entry.Verification = next()
	contents.PublicKeys[key] = entry
	return db.persist(contents)
}

// Sign looks up the private key for myPublicKey and signs messageText as it, disclosing
// others alongside it. Fails with ErrUnknownKey if myPublicKey is not a private key held in
// this database.
func (db *Database) Sign(messageText string, myPublicKey keys.PublicKey, others []keys.PublicKey) (message.SignedMessage, error) {
	contents, err := db.loadFresh()
	if err != nil {
		return message.SignedMessage{}, err
	}
	pk, ok := contents.PrivateKeys[myPublicKey.Keypoint.Compress()]
	if !ok {
		return message.SignedMessage{}, fmt.Errorf("%w: %s", zerrors.ErrUnknownKey, myPublicKey.Fingerprint())
	}
	sm, err := message.Sign(messageText, pk, others)
	pk.Zero()
	return sm, err
}
