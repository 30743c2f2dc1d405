package res

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// ErrLocked is returned by AcquireLock when another mousefollow process is
// already following focus on the same display.
var ErrLocked = errors.New("another instance is running on this display")

// Lock is an exclusive lock on a display, held for the lifetime of the
// process.
type Lock struct {
	file *os.File
	path string
}

// AcquireLock takes the instance lock for the given display name (usually the
// value of $DISPLAY).
func AcquireLock(display string) (*Lock, error) {
	dir, err := GetRuntimeDirectory()
	if err != nil {
		return nil, err
	}
	return AcquireLockAt(LockPath(dir, display))
}

// AcquireLockAt takes an exclusive lock on the file at path, creating it if
// needed. The lock is released automatically if the process dies.
func AcquireLockAt(path string) (*Lock, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, errors.Wrap(err, "open lock file")
	}
	if err := unix.Flock(int(file.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		file.Close()
		if err == unix.EWOULDBLOCK {
			return nil, ErrLocked
		}
		return nil, errors.Wrap(err, "lock")
	}
	if err := file.Truncate(0); err != nil {
		file.Close()
		return nil, errors.Wrap(err, "truncate lock file")
	}
	if _, err := fmt.Fprintf(file, "%d\n", os.Getpid()); err != nil {
		file.Close()
		return nil, errors.Wrap(err, "write lock file")
	}
	return &Lock{file, path}, nil
}

// Path returns the path of the lock file.
func (l *Lock) Path() string {
	return l.path
}

// Release unlocks the lock file. The file is left in place so that every
// process always locks the same inode.
func (l *Lock) Release() error {
	if err := l.file.Truncate(0); err != nil {
		l.file.Close()
		return errors.Wrap(err, "truncate lock file")
	}
	// Closing the file drops the flock.
	return l.file.Close()
}

// LockPath returns the path of the lock file for the given display inside
// dir.
func LockPath(dir, display string) string {
	name := strings.NewReplacer(":", "_", "/", "_").Replace(display)
	name = strings.Trim(name, "_")
	if name == "" {
		name = "default"
	}
	return filepath.Join(dir, "mousefollow-"+name+".lock")
}
