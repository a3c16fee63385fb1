package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var clearYes bool

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Erase every note, the settings and all stored images",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if !clearYes {
			fatal("Error", fmt.Errorf("refusing to erase the vault without --yes"))
		}

		v := openVault(cmd)
		defer closeVault(v)

		ctx := withReason(cmd.Context())
		if err := v.Gateway.ClearAll(ctx); err != nil {
			fatal("Failed to clear vault", err)
		}
		if v.Images != nil {
			if _, err := v.Images.Collect(ctx, nil); err != nil {
				fatal("Failed to remove images", err)
			}
		}
		fmt.Println("Vault cleared.")
	},
}

func init() {
	rootCmd.AddCommand(clearCmd)
	clearCmd.Flags().BoolVar(&clearYes, "yes", false, "Confirm erasing everything")
}
