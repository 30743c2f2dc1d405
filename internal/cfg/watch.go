package cfg

import (
	"context"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
)

// Watcher reloads the configuration file whenever it changes on disk.
type Watcher struct {
	path    string
	watcher *fsnotify.Watcher
}

// NewWatcher creates a Watcher for the configuration file at path. The
// directory containing the file is watched rather than the file itself, so
// that editors which save by renaming a new file into place are handled.
func NewWatcher(path string) (*Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "create watcher")
	}
	path = filepath.Clean(path)
	if err = watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, errors.Wrap(err, "watch config directory")
	}
	return &Watcher{path, watcher}, nil
}

// Run processes file events until ctx is cancelled. Each successful reload is
// sent on ch. Files which fail to load are reported on errch and do not
// replace the previous configuration.
func (w *Watcher) Run(ctx context.Context, ch chan<- Profile, errch chan<- error) {
	defer w.watcher.Close()
	for {
		select {
		case <-ctx.Done():
			return
		case err, more := <-w.watcher.Errors:
			if !more {
				return
			}
			if !send(ctx, errch, errors.Wrap(err, "watcher")) {
				return
			}
		case evt, more := <-w.watcher.Events:
			if !more {
				return
			}
			if filepath.Clean(evt.Name) != w.path {
				continue
			}
			if !evt.Has(fsnotify.Write) && !evt.Has(fsnotify.Create) {
				continue
			}
			profile, ok, err := reload(w.path)
			if err != nil {
				if !send(ctx, errch, err) {
					return
				}
				continue
			}
			if !ok {
				continue
			}
			if !send(ctx, ch, profile) {
				return
			}
		}
	}
}

// reload reads the configuration file after a change. ok is false if the
// file is missing or empty, which is how it looks partway through a save.
func reload(path string) (profile Profile, ok bool, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Profile{}, false, nil
		}
		return Profile{}, false, errors.Wrap(err, "read config file")
	}
	if len(data) == 0 {
		return Profile{}, false, nil
	}
	profile, err = Parse(data)
	if err != nil {
		return Profile{}, false, err
	}
	return profile, true, nil
}

// send delivers v on ch unless ctx is cancelled first.
func send[T any](ctx context.Context, ch chan<- T, v T) bool {
	select {
	case ch <- v:
		return true
	case <-ctx.Done():
		return false
	}
}
