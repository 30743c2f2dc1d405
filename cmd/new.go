package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tesselslate/mousefollow/internal/cfg"
)

var newCmd = &cobra.Command{
	Use:   "new",
	Short: "Create a config file with the default settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := getConfigPath()
		if err != nil {
			return err
		}
		if err := cfg.MakeProfile(path); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Created config at", path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(newCmd)
}
