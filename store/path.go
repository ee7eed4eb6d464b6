package store

import (
	"os"
	"path/filepath"
)

const (
	releaseFileName = "zebra_db.age"
	debugFileName   = "zebra_debug_db.age"
)

// DefaultPath returns the conventional database path under the OS's per-user config directory
// (os.UserConfigDir): zebra_db.age normally, or zebra_debug_db.age when debug is set, so debug
// runs never touch a release database.
func DefaultPath(debug bool) (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	name := releaseFileName
	if debug {
		name = debugFileName
	}
	return filepath.Join(dir, "zebrasign", name), nil
}
