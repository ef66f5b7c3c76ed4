package lock

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// ErrAlreadyRunning signals that another instance holds the lock. It is a
// normal condition, not a failure; callers should exit quietly.
var ErrAlreadyRunning = errors.New("another instance is already running")

// Lock is an advisory single-instance lock backed by a lock file. It does
// not block or queue: acquisition either succeeds immediately or reports
// ErrAlreadyRunning.
type Lock struct {
	path string
}

// Acquire atomically creates <dir>/<name>.lock. At most one concurrent
// caller per name succeeds; the rest get ErrAlreadyRunning.
func Acquire(dir, name string) (*Lock, error) {
	path := filepath.Join(dir, name+".lock")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if errors.Is(err, fs.ErrExist) {
		return nil, fmt.Errorf("%w (lock file %s)", ErrAlreadyRunning, path)
	}
	if err != nil {
		return nil, fmt.Errorf("creating lock file: %w", err)
	}

	// The pid is informational only, for operators inspecting a stale lock.
	fmt.Fprintf(f, "%d\n", os.Getpid())
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return nil, fmt.Errorf("writing lock file: %w", err)
	}
	return &Lock{path: path}, nil
}

// Release removes the lock file. It must be called exactly once per
// successful Acquire, on every exit path.
func (l *Lock) Release() error {
	if err := os.Remove(l.path); err != nil {
		return fmt.Errorf("releasing lock file: %w", err)
	}
	return nil
}
