package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/snapnote/pkg/core"
)

var layoutCmd = &cobra.Command{
	Use:       "layout [grid|list]",
	Short:     "Show or set the layout preference",
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{string(core.LayoutGrid), string(core.LayoutList)},
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			v := openVault(cmd, readOnly()...)
			defer closeVault(v)
			fmt.Println(v.Store.LayoutMode())
			return
		}

		v := openVault(cmd)
		defer closeVault(v)

		if err := v.Store.SetLayoutMode(withReason(cmd.Context()), core.LayoutMode(args[0])); err != nil {
			fatal("Error", err)
		}
		fmt.Printf("Layout set to %s\n", args[0])
	},
}

func init() {
	rootCmd.AddCommand(layoutCmd)
}
