package formatcache

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// AcquireRunLock takes an exclusive file lock next to the cache so two runs
// cannot interleave cache writes and tag mutations. The returned function
// releases the lock.
func AcquireRunLock(cachePath string) (func(), error) {
	lockPath := cachePath + ".lock"
	if dir := filepath.Dir(lockPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create lock directory: %w", err)
		}
	}

	lock := flock.New(lockPath)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire run lock: %w", err)
	}
	if !ok {
		return nil, errors.New("another shelfsync run is already in progress")
	}

	return func() { _ = lock.Unlock() }, nil
}
