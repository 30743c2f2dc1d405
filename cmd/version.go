package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the installed version of mousefollow",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "mousefollow %s - pointer follows window focus\n", version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
