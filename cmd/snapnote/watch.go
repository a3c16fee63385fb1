package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/snapnote/pkg/adapters/lifecycle"
)

var watchCmd = &cobra.Command{
	Use:   "watch [pattern]",
	Short: "Print changes made to the vault by any process",
	Long: `Watch follows the vault files (fs adapter) and prints one line per change.
The optional pattern is a glob over keys such as "notes" or "settings". Stop with Ctrl+C.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		pattern := "*"
		if len(args) == 1 {
			pattern = args[0]
		}

		v := openVault(cmd, readOnly()...)
		defer closeVault(v)

		source := lifecycle.NewSource(v.Store, pattern)
		if err := source.Start(cmd.Context()); err != nil {
			fatal("Failed to watch vault", err)
		}

		fmt.Printf("Watching %s for %q...\n", v.Path, pattern)
		for e := range source.Events() {
			fmt.Println(e)
		}
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
