// Package cmd implements the mousefollow command line interface.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"golang.org/x/sys/unix"
)

// version is set by Execute.
var version = "unknown"

// configPath is the value of the --config flag.
var configPath string

var rootCmd = &cobra.Command{
	Use:   "mousefollow",
	Short: "Move the pointer to the focused window",
	Long: `mousefollow watches the _NET_ACTIVE_WINDOW property of the root window and,
whenever focus moves to another window, warps the pointer to the center of
that window unless the pointer is already inside of it.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := getConfigPath()
		if err != nil {
			return err
		}
		return Run(cmd.Context(), path)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to the config file (default $XDG_CONFIG_HOME/mousefollow/config.toml)")
}

// Execute runs the command line interface until it finishes or the process
// receives SIGINT or SIGTERM.
func Execute(ver string) {
	version = ver
	rootCmd.Version = ver

	ctx, stop := signal.NotifyContext(context.Background(), unix.SIGINT, unix.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "mousefollow:", err)
		os.Exit(1)
	}
}
