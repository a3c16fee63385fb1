package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/snapnote/pkg/core"
)

var (
	listJSON  bool
	listYAML  bool
	listQuery string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List notes, most recently updated first",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if listJSON && listYAML {
			fatal("Error", fmt.Errorf("--json and --yaml are mutually exclusive"))
		}

		v := openVault(cmd, readOnly()...)
		defer closeVault(v)

		v.Store.SetSearchQuery(listQuery)
		notes := v.Store.FilteredNotes()

		switch {
		case listJSON:
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			if err := encoder.Encode(notes); err != nil {
				fatal("Error encoding JSON", err)
			}
		case listYAML:
			encoder := yaml.NewEncoder(os.Stdout)
			encoder.SetIndent(2)
			if err := encoder.Encode(notes); err != nil {
				fatal("Error encoding YAML", err)
			}
			encoder.Close()
		default:
			printNotes(os.Stdout, notes, v.Store.LayoutMode())
		}
	},
}

// printNotes renders one row per note in list layout and a compact three-column table in grid layout.
func printNotes(w io.Writer, notes []core.Note, mode core.LayoutMode) {
	if len(notes) == 0 {
		fmt.Fprintln(w, "No notes.")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	if mode == core.LayoutList {
		for _, n := range notes {
			updated := time.UnixMilli(n.UpdatedAt).Format("2006-01-02 15:04")
			fmt.Fprintf(tw, "%s\t%s\t%s\t%d img\n", n.ID, updated, firstLine(n.Text, 60), len(n.ImageRefs))
		}
		return
	}

	const columns = 3
	for i, n := range notes {
		cell := fmt.Sprintf("[%s] %s", shortID(n.ID), firstLine(n.Text, 24))
		if len(n.ImageRefs) > 0 {
			cell += fmt.Sprintf(" (%d)", len(n.ImageRefs))
		}
		sep := "\t"
		if (i+1)%columns == 0 || i == len(notes)-1 {
			sep = "\n"
		}
		fmt.Fprint(tw, cell+sep)
	}
}

func firstLine(s string, max int) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i] + " ..."
	}
	r := []rune(s)
	if len(r) > max {
		return string(r[:max-1]) + "…"
	}
	return s
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output in JSON format")
	listCmd.Flags().BoolVar(&listYAML, "yaml", false, "Output in YAML format")
	listCmd.Flags().StringVarP(&listQuery, "query", "q", "", "Case-insensitive text filter")
}
