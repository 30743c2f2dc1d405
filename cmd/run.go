package cmd

import (
	"context"
	"os"

	"github.com/pkg/errors"
	"github.com/tesselslate/mousefollow/internal/cfg"
	"github.com/tesselslate/mousefollow/internal/follow"
	"github.com/tesselslate/mousefollow/internal/log"
	"github.com/tesselslate/mousefollow/internal/res"
	"github.com/tesselslate/mousefollow/internal/x11"
)

// Run follows window focus on the display named by $DISPLAY until ctx is
// cancelled or the connection to the X server is lost.
func Run(ctx context.Context, path string) error {
	// Get configuration.
	profile, err := cfg.Load(path)
	if err != nil {
		return errors.Wrap(err, "load config")
	}

	// Setup logger output.
	logger, err := log.NewLogger(profile.LogLevel(), profile.Log.File, profile.Log.Console)
	if err != nil {
		return errors.Wrap(err, "open log")
	}
	defer logger.Close()
	logger.Info("Starting mousefollow %s", version)

	lock, err := res.AcquireLock(os.Getenv("DISPLAY"))
	if err != nil {
		logger.Error("Failed to acquire instance lock: %s", err)
		return err
	}
	defer lock.Release()
	logger.Debug("Acquired instance lock %s", lock.Path())

	// Connect to the X server.
	x, err := x11.NewClient()
	if err != nil {
		logger.Error("Failed to start X11 connection: %s", err)
		return errors.Wrap(err, "connect to X server")
	}
	defer x.Close()
	if err := checkWindowManager(x, profile, logger); err != nil {
		logger.Error("Unsupported window manager: %s", err)
		return err
	}

	follower := follow.New(x, logger, profile)
	watcher, err := cfg.NewWatcher(path)
	if err != nil {
		logger.Warn("Config reloading disabled: %s", err)
	} else {
		confch := make(chan cfg.Profile, 1)
		conferrs := make(chan error, 1)
		go watcher.Run(ctx, confch, conferrs)
		follower.WatchConfig(confch, conferrs)
	}

	evtch, errch := x.Poll(ctx)
	err = follower.Run(ctx, evtch, errch)
	if errors.Is(err, context.Canceled) {
		logger.Info("Shutting down")
		return nil
	}
	logger.Error("Follower stopped: %s", err)
	return err
}

// checkWindowManager makes sure that the window manager maintains
// _NET_ACTIVE_WINDOW. Failures are only logged unless the user requires EWMH
// support.
func checkWindowManager(x *x11.Client, profile cfg.Profile, logger *log.Logger) error {
	wm, err := x.WindowManager()
	switch {
	case err != nil:
		if profile.RequireEwmh {
			return err
		}
		logger.Warn("Could not identify window manager: %s", err)
	case !wm.ActiveWindow:
		if profile.RequireEwmh {
			return errors.Errorf("%s does not support _NET_ACTIVE_WINDOW", wm.Name)
		}
		logger.Warn("%s does not advertise _NET_ACTIVE_WINDOW support", wm.Name)
	default:
		logger.Info("Running under %s", wm.Name)
	}
	return nil
}

// getConfigPath returns the config path given with --config, or the default
// path.
func getConfigPath() (string, error) {
	if configPath != "" {
		return configPath, nil
	}
	return cfg.GetPath()
}
