package store

import (
	"fmt"
	"strings"

	"github.com/gofrs/flock"

	"github.com/benwr/zebrasign/zerrors"
)

// lockPathFor derives the sibling lock file path by replacing dbPath's extension rather than
// appending to it, so "zebra_db.age" becomes "zebra_db.lock" rather than "zebra_db.age.lock".
func lockPathFor(dbPath string) string {
	trimmed := strings.TrimSuffix(dbPath, ".age")
	return trimmed + ".lock"
}

// acquireLock takes an exclusive, non-blocking advisory lock on the file at path, creating it
// if necessary. gofrs/flock dispatches to the right syscall per platform (flock on
// Unix/Darwin, LockFileEx on Windows), so the database works cross-platform without a
// build-tag-gated implementation of its own. The returned lock must be held for the database's
// lifetime; releasing it releases the lock.
func acquireLock(path string) (*flock.Flock, error) {
	lock := flock.New(path)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("locking database: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: database is already open in another process", zerrors.ErrConcurrentInstance)
	}
	return lock, nil
}

// releaseLock releases the advisory lock.
func releaseLock(lock *flock.Flock) error {
	return lock.Unlock()
}
