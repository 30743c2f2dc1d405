// Package follow moves the pointer to the center of newly focused windows.
package follow

import (
	"context"
	"time"

	"github.com/jezek/xgb/xproto"
	"github.com/pkg/errors"
	"github.com/tesselslate/mousefollow/internal/cfg"
	"github.com/tesselslate/mousefollow/internal/log"
	"github.com/tesselslate/mousefollow/internal/x11"
)

// Display is the part of the X server the Follower needs. *x11.Client
// implements it.
type Display interface {
	GetActiveWindow() (xproto.Window, error)
	ToplevelGeometry(xproto.Window) (x11.Rect, error)
	Pointer() (x11.Point, error)
	WarpPointer(x11.Point) error
}

// LastSeen is the most recently read value of _NET_ACTIVE_WINDOW. The zero
// value means that the property has never been read.
type LastSeen struct {
	Win   xproto.Window
	Valid bool
}

// Result describes what happened during a single Step.
type Result int

const (
	Unchanged      Result = iota // The active window is the same as last time
	NoActiveWindow               // Focus moved to no window at all
	Unavailable                  // The window went away before it could be measured
	Inside                       // The pointer was already inside the window
	Warped                       // The pointer was moved to the window
)

var resultNames = [...]string{"unchanged", "no active window", "unavailable", "inside", "warped"}

func (r Result) String() string {
	if int(r) < len(resultNames) {
		return resultNames[r]
	}
	return "unknown"
}

// Follower warps the pointer whenever the active window changes.
type Follower struct {
	x           Display
	logger      *log.Logger
	debounce    time.Duration
	warpOnStart bool
	last        LastSeen

	reloads    <-chan cfg.Profile
	reloadErrs <-chan error

	// wait blocks for the debounce delay. Replaced in tests.
	wait func(context.Context, time.Duration) error
}

// New creates a new Follower.
func New(x Display, logger *log.Logger, profile cfg.Profile) *Follower {
	return &Follower{
		x:           x,
		logger:      logger,
		debounce:    profile.DebounceDuration(),
		warpOnStart: profile.WarpOnStart,
		wait:        sleep,
	}
}

// WatchConfig makes Run apply configuration reloads received on ch and log
// the errors received on errch. It must be called before Run.
func (f *Follower) WatchConfig(ch <-chan cfg.Profile, errch <-chan error) {
	f.reloads = ch
	f.reloadErrs = errch
}

// Run handles focus events until ctx is cancelled or the connection to the X
// server fails. evtch and errch are the channels returned by
// x11.Client.Poll.
func (f *Follower) Run(ctx context.Context, evtch <-chan x11.FocusEvent, errch <-chan error) error {
	if f.warpOnStart {
		if err := f.cycle(ctx); err != nil {
			return err
		}
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case evt, ok := <-evtch:
			if !ok {
				return x11.ErrConnectionDied
			}
			f.logger.Debug("Active window property changed at %d", evt.Time)
			if err := f.cycle(ctx); err != nil {
				return err
			}
		case err, ok := <-errch:
			if !ok {
				errch = nil
				continue
			}
			if errors.Is(err, x11.ErrConnectionDied) {
				return err
			}
			f.logger.Warn("X error: %s", err)
		case profile := <-f.reloads:
			f.apply(profile)
		case err := <-f.reloadErrs:
			f.logger.Warn("Failed to reload config: %s", err)
		}
	}
}

// Step reads the active window and, if it changed, waits for the debounce
// delay and warps the pointer to the window unless the pointer is already
// inside of it.
func (f *Follower) Step(ctx context.Context) (Result, error) {
	win, changed, err := detectChange(f.x, &f.last)
	if err != nil {
		return 0, errors.Wrap(err, "get active window")
	}
	if !changed {
		return Unchanged, nil
	}
	if win == xproto.WindowNone {
		return NoActiveWindow, nil
	}

	if err := f.wait(ctx, f.debounce); err != nil {
		return 0, err
	}
	pointer, err := f.x.Pointer()
	if err != nil {
		return 0, err
	}
	geo, err := f.x.ToplevelGeometry(win)
	if err != nil {
		if errors.Is(err, x11.ErrGeometryUnavailable) {
			f.logger.Debug("Skipping window %d: %s", win, err)
			return Unavailable, nil
		}
		return 0, err
	}
	target, warp := decide(geo, pointer)
	if !warp {
		return Inside, nil
	}
	if err := f.x.WarpPointer(target); err != nil {
		return 0, err
	}
	f.logger.Debug("Warped pointer from %s to %s (window %d at %s)", pointer, target, win, geo)
	return Warped, nil
}

// cycle runs a single Step and logs its result.
func (f *Follower) cycle(ctx context.Context) error {
	result, err := f.Step(ctx)
	if err != nil {
		return err
	}
	if result != Unchanged {
		f.logger.Debug("Focus changed to %d: %s", f.last.Win, result)
	}
	return nil
}

// apply updates the settings which can change while running.
func (f *Follower) apply(profile cfg.Profile) {
	f.debounce = profile.DebounceDuration()
	f.logger.SetLevel(profile.LogLevel())
	f.logger.Info("Reloaded config (debounce %s)", f.debounce)
}

// decide returns where the pointer should be moved to, if anywhere.
func decide(geo x11.Rect, pointer x11.Point) (x11.Point, bool) {
	if geo.Contains(pointer) {
		return pointer, false
	}
	return geo.Center(), true
}

// detectChange reads the active window and reports whether it differs from
// last. last is always updated to the value which was read.
func detectChange(x Display, last *LastSeen) (xproto.Window, bool, error) {
	win, err := x.GetActiveWindow()
	if err != nil {
		return 0, false, err
	}
	changed := !last.Valid || last.Win != win
	*last = LastSeen{win, true}
	return win, changed, nil
}

// sleep waits for d to pass or ctx to be cancelled.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
