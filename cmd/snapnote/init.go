package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/snapnote"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a snapnote vault",
	Long: `Initialize a new vault in --vault or the current directory.
The chosen adapter and versioning mode are recorded in snapnote.yaml.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		dir := vaultDir
		if dir == "" {
			cwd, err := os.Getwd()
			if err != nil {
				fatal("Failed to get CWD", err)
			}
			dir = cwd
		}

		if err := os.MkdirAll(dir, 0755); err != nil {
			fatal("Failed to create vault directory", err)
		}

		cfg, err := snapnote.LoadConfig(dir)
		if err != nil {
			fatal("Failed to read config", err)
		}
		if adapter != "" {
			cfg.Adapter = adapter
		}
		if cmd.Flags().Changed("versioning") {
			cfg.Versioning = &versioning
		}
		if err := snapnote.SaveConfig(dir, cfg); err != nil {
			fatal("Failed to write config", err)
		}

		v, err := snapnote.Open(cmd.Context(), dir, vaultOptions(cmd)...)
		if err != nil {
			fatal("Failed to initialize vault", err)
		}
		closeVault(v)

		fmt.Printf("Initialized empty snapnote vault in %s (adapter: %s)\n", v.Path, v.Adapter)
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
