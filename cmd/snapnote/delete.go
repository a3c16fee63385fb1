package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a note",
	Long:  `Delete removes the note and any image no other note still uses.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		id := args[0]

		v := openVault(cmd)
		defer closeVault(v)

		if !v.Store.DeleteNote(withReason(cmd.Context()), id) {
			fmt.Printf("No note with id %s\n", id)
			return
		}
		fmt.Printf("Note deleted: %s\n", id)
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}
