package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var gcCmd = &cobra.Command{
	Use:   "gc",
	Short: "Remove stored images no note references",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		v := openVault(cmd)
		defer closeVault(v)

		if v.Images == nil {
			fmt.Println("This vault has no image directory.")
			return
		}

		removed, err := v.Images.Collect(cmd.Context(), v.Store.ImageRefs())
		if err != nil {
			fatal("Failed to collect images", err)
		}
		for _, ref := range removed {
			fmt.Printf("removed %s\n", ref)
		}
		fmt.Printf("%d orphaned image(s) removed\n", len(removed))
	},
}

func init() {
	rootCmd.AddCommand(gcCmd)
}
