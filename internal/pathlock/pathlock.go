// Package pathlock serializes exports that target the same destination
// directory. The export engine itself takes no locks; callers that need
// isolation acquire a lock here before exporting.
//
// Lock files live outside the destination so that an export never finds
// files it did not write.
package pathlock

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/gofrs/flock"
)

// ErrTimeout is returned when the lock could not be acquired before the context ended
var ErrTimeout = errors.New("timed out waiting for destination lock")

// DefaultRetryInterval is how often a held lock is retried
const DefaultRetryInterval = 50 * time.Millisecond

// FileLock defines the interface for file locking operations
type FileLock interface {
	// TryLockContext attempts to acquire an exclusive lock with retries
	TryLockContext(ctx context.Context, retryInterval time.Duration) (bool, error)

	// Unlock releases the lock
	Unlock() error
}

// FileLockFactory creates FileLock instances
type FileLockFactory interface {
	// New creates a new FileLock for the given path
	New(path string) FileLock
}

// FlockFactory is the default factory implementation using flock
type FlockFactory struct{}

// New implements FileLockFactory.New
func (FlockFactory) New(path string) FileLock {
	return flock.New(path)
}

// Locker hands out per-directory locks
type Locker struct {
	dir           string
	factory       FileLockFactory
	retryInterval time.Duration
}

// New creates a Locker keeping lock files in dir. An empty dir selects DefaultDir.
func New(dir string) *Locker {
	if dir == "" {
		dir = DefaultDir()
	}
	return &Locker{
		dir:           dir,
		factory:       FlockFactory{},
		retryInterval: DefaultRetryInterval,
	}
}

// WithFactory replaces the lock implementation, for tests
func (l *Locker) WithFactory(factory FileLockFactory) *Locker {
	l.factory = factory
	return l
}

// LockPath returns the lock file used for a destination directory
func (l *Locker) LockPath(destination string) (string, error) {
	abs, err := filepath.Abs(destination)
	if err != nil {
		return "", fmt.Errorf("invalid destination path: %w", err)
	}
	sum := sha256.Sum256([]byte(filepath.Clean(abs)))
	return filepath.Join(l.dir, hex.EncodeToString(sum[:16])+".lock"), nil
}

// Acquire blocks until the lock for destination is held or ctx ends.
// The returned function releases the lock.
func (l *Locker) Acquire(ctx context.Context, destination string) (func() error, error) {
	lockPath, err := l.LockPath(destination)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(l.dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create lock directory: %w", err)
	}

	lock := l.factory.New(lockPath)
	locked, err := lock.TryLockContext(ctx, l.retryInterval)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return nil, fmt.Errorf("%w: %s", ErrTimeout, destination)
		}
		return nil, fmt.Errorf("failed to lock %s: %w", destination, err)
	}
	if !locked {
		return nil, fmt.Errorf("%w: %s", ErrTimeout, destination)
	}

	return lock.Unlock, nil
}

// DefaultDir returns the XDG cache location for lock files
func DefaultDir() string {
	if xdgCache := os.Getenv("XDG_CACHE_HOME"); xdgCache != "" {
		return filepath.Join(xdgCache, "nanoexport", "locks")
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "nanoexport", "locks")
	}

	if runtime.GOOS == "darwin" {
		return filepath.Join(homeDir, "Library", "Caches", "nanoexport", "locks")
	}
	return filepath.Join(homeDir, ".cache", "nanoexport", "locks")
}
