package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var attachCmd = &cobra.Command{
	Use:   "attach [id] [image]",
	Short: "Copy an image into the vault and attach it to a note",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		v := openVault(cmd)
		defer closeVault(v)

		note, ok := v.Store.AttachImage(withReason(cmd.Context()), args[0], args[1])
		if !ok {
			fmt.Printf("Image not attached: unknown note %s or unreadable image\n", args[0])
			return
		}
		fmt.Printf("Note %s now has %d image(s)\n", note.ID, len(note.ImageRefs))
	},
}

func init() {
	rootCmd.AddCommand(attachCmd)
}
