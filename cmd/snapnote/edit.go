package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/snapnote/pkg/core"
)

var editClearImages bool

var editCmd = &cobra.Command{
	Use:   "edit [id] [text...]",
	Short: "Replace the text of a note",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		id := args[0]

		var upd core.NoteUpdate
		if len(args) > 1 {
			text := strings.Join(args[1:], " ")
			upd.Text = &text
		}
		if editClearImages {
			upd.ImageRefs = []string{}
		}
		if upd.Text == nil && upd.ImageRefs == nil {
			fatal("Error", fmt.Errorf("nothing to change"))
		}

		v := openVault(cmd)
		defer closeVault(v)

		note, ok := v.Store.UpdateNote(withReason(cmd.Context()), id, upd)
		if !ok {
			fmt.Printf("No note with id %s\n", id)
			return
		}
		fmt.Printf("Note updated: %s\n", note.ID)
	},
}

func init() {
	rootCmd.AddCommand(editCmd)
	editCmd.Flags().BoolVar(&editClearImages, "clear-images", false, "Detach every image from the note")
}
