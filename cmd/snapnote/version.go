package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/snapnote"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of snapnote",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("snapnote version %s\n", strings.TrimSpace(snapnote.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
