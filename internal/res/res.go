// Package res contains resources embedded within mousefollow and the
// locations of the directories it uses at runtime.
package res

import (
	_ "embed"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// DefaultConfig contains the example configuration.
//
//go:embed default.toml
var DefaultConfig []byte

// GetStateDirectory returns the directory in which the log file is kept.
// $XDG_STATE_HOME/mousefollow or $HOME/.local/state/mousefollow will be used.
func GetStateDirectory() (string, error) {
	if dir, ok := os.LookupEnv("XDG_STATE_HOME"); ok && dir != "" {
		return filepath.Join(dir, "mousefollow"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "get home directory")
	}
	return filepath.Join(home, ".local", "state", "mousefollow"), nil
}

// GetRuntimeDirectory returns a writable directory for the instance lock.
// $XDG_RUNTIME_DIR is preferred, falling back to the system temporary
// directory.
func GetRuntimeDirectory() (string, error) {
	dir, ok := os.LookupEnv("XDG_RUNTIME_DIR")
	if !ok || dir == "" {
		dir = os.TempDir()
	}
	if err := unix.Access(dir, unix.W_OK); err != nil {
		return "", errors.Wrapf(err, "access runtime dir %s", dir)
	}
	return dir, nil
}
