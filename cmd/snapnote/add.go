package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var addImages []string

var addCmd = &cobra.Command{
	Use:   "add [text...]",
	Short: "Add a note",
	Long:  `Add a note with the given text. Images passed with --image are copied into the vault first; copies that fail are skipped.`,
	Args:  cobra.ArbitraryArgs,
	Run: func(cmd *cobra.Command, args []string) {
		text := strings.Join(args, " ")
		if text == "" && len(addImages) == 0 {
			fatal("Error", fmt.Errorf("a note needs text or at least one --image"))
		}

		v := openVault(cmd)
		defer closeVault(v)

		ctx := withReason(cmd.Context())
		refs := v.Store.ImportImages(ctx, addImages...)
		if skipped := len(addImages) - len(refs); skipped > 0 {
			fmt.Printf("Warning: %d image(s) could not be copied\n", skipped)
		}

		note := v.Store.AddNote(ctx, text, refs)
		fmt.Println(note.ID)
	},
}

func init() {
	rootCmd.AddCommand(addCmd)
	addCmd.Flags().StringArrayVar(&addImages, "image", nil, "Image file to attach (repeatable)")
}
