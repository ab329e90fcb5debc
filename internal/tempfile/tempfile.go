// Package tempfile manages the process-wide scratch directory used for
// intermediate index files, and names files within it by hashing the index
// identifier so arbitrary identifiers map to safe, stable filenames.
package tempfile

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"sync"
)

var (
	mu  sync.Mutex
	dir string
)

// Dir returns the scratch directory, creating it on first use.
func Dir() string {
	mu.Lock()
	defer mu.Unlock()
	if dir == "" {
		d, err := os.MkdirTemp("", "vg-index-")
		if err != nil {
			panic(fmt.Sprintf("tempfile: could not create scratch directory: %v", err))
		}
		dir = d
	}
	return dir
}

// SetDir overrides the scratch directory. The caller owns the directory's
// lifetime.
func SetDir(d string) {
	mu.Lock()
	dir = d
	mu.Unlock()
}

// Cleanup removes the scratch directory and everything in it. The next call
// to Dir creates a fresh one.
func Cleanup() {
	mu.Lock()
	defer mu.Unlock()
	if dir != "" {
		os.RemoveAll(dir)
		dir = ""
	}
}

// Hash returns a stable content-addressed name for an identifier. Only the
// identifier is hashed, never file contents.
func Hash(identifier string) string {
	sum := sha256.Sum256([]byte(identifier))
	return hex.EncodeToString(sum[:])
}
