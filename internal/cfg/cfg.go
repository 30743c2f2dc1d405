// Package cfg allows for reading the user's configuration.
package cfg

import (
	"bytes"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
	"github.com/tesselslate/mousefollow/internal/log"
	"github.com/tesselslate/mousefollow/internal/res"
)

// DefaultDebounce is how long to wait after focus changes before looking at
// the geometry of the newly focused window. It is a heuristic: a window may
// still be moving or resizing once it elapses, in which case the pointer is
// warped based on stale geometry.
const DefaultDebounce = 150 * time.Millisecond

// The largest accepted debounce delay, in milliseconds.
const maxDebounce = 5000

// Log contains the user's logging settings.
type Log struct {
	Level   string `toml:"level"`   // error, warn, info or debug
	File    string `toml:"file"`    // Log file path, empty to disable
	Console bool   `toml:"console"` // Also log to stderr
}

// Profile contains the user's configuration.
type Profile struct {
	Debounce    int  `toml:"debounce"`      // Milliseconds to wait after focus changes
	WarpOnStart bool `toml:"warp_on_start"` // Check the active window before the first event
	RequireEwmh bool `toml:"require_ewmh"`  // Exit if _NET_ACTIVE_WINDOW is unsupported

	Log Log `toml:"log"`
}

// Default returns the configuration used when the user has no config file.
func Default() Profile {
	profile := Profile{
		Debounce: int(DefaultDebounce / time.Millisecond),
		Log: Log{
			Level: "info",
		},
	}
	if dir, err := res.GetStateDirectory(); err == nil {
		profile.Log.File = filepath.Join(dir, "mousefollow.log")
	}
	return profile
}

// DebounceDuration returns the debounce delay as a time.Duration.
func (p Profile) DebounceDuration() time.Duration {
	return time.Duration(p.Debounce) * time.Millisecond
}

// LogLevel returns the parsed log level.
func (p Profile) LogLevel() log.LogLevel {
	// Profiles are validated on load, so the level is always valid.
	level, _ := log.ParseLevel(p.Log.Level)
	return level
}

// GetDirectory returns the path to the user's configuration directory.
func GetDirectory() (string, error) {
	// UserConfigDir automatically checks for $XDG_CONFIG_HOME and falls back
	// to $HOME/.config, so we don't need to do any special checks ourselves.
	xdgDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(xdgDir, "mousefollow"), nil
}

// GetPath returns the path of the default configuration file.
func GetPath() (string, error) {
	dir, err := GetDirectory()
	if err != nil {
		return "", errors.Wrap(err, "get config directory")
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load reads the configuration file at path. If the file does not exist, the
// default configuration is returned.
func Load(path string) (Profile, error) {
	file, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return Profile{}, errors.Wrap(err, "read config file")
	}
	return Parse(file)
}

// Parse parses and validates a configuration file. Missing settings keep
// their default values.
func Parse(data []byte) (Profile, error) {
	profile := Default()
	meta, err := toml.NewDecoder(bytes.NewReader(data)).Decode(&profile)
	if err != nil {
		return Profile{}, errors.Wrap(err, "parse config file")
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Profile{}, errors.Errorf("unknown config option %q", undecoded[0].String())
	}
	if err = validateProfile(&profile); err != nil {
		return Profile{}, errors.Wrap(err, "validate config")
	}
	return profile, nil
}

// MakeProfile writes the default configuration file to path. It refuses to
// overwrite an existing file.
func MakeProfile(path string) error {
	dir := filepath.Dir(path)
	stat, err := os.Stat(dir)
	if err != nil {
		if !os.IsNotExist(err) {
			return errors.Wrap(err, "stat config directory")
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.Wrap(err, "create config directory")
		}
	} else if !stat.IsDir() {
		return errors.Errorf("config directory (%s) is not a directory", dir)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		return errors.Wrap(err, "create config file")
	}
	if _, err := file.Write(res.DefaultConfig); err != nil {
		file.Close()
		return errors.Wrap(err, "write config file")
	}
	return file.Close()
}

// validateProfile ensures that the user's configuration profile does not have
// any illegal or invalid settings.
func validateProfile(conf *Profile) error {
	if conf.Debounce < 0 {
		return errors.Errorf("negative debounce (%d)", conf.Debounce)
	}
	if conf.Debounce > maxDebounce {
		return errors.Errorf("debounce too long (%d > %d)", conf.Debounce, maxDebounce)
	}
	if _, err := log.ParseLevel(conf.Log.Level); err != nil {
		return err
	}
	return nil
}
