package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/aretw0/snapnote"
	"github.com/aretw0/snapnote/pkg/core"
)

var (
	verbose    bool
	vaultDir   string
	adapter    string
	versioning bool
	message    string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "snapnote",
	Short: "Short text notes with attached photos, stored locally",
	Long: `snapnote keeps a list of short notes, each optionally carrying photos.
Notes live in a local vault: JSON files (optionally versioned with git) or a SQLite database.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}

		opts := &slog.HandlerOptions{
			Level: level,
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, opts))
		slog.SetDefault(logger)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&vaultDir, "vault", "", "Vault directory (default: nearest vault above the working directory)")
	rootCmd.PersistentFlags().StringVar(&adapter, "adapter", "", "Storage adapter: fs, sqlite or memory (default from snapnote.yaml, else fs)")
	rootCmd.PersistentFlags().BoolVar(&versioning, "versioning", false, "Commit every write to git (fs adapter)")
	rootCmd.PersistentFlags().StringVarP(&message, "message", "m", "", "Commit message for versioned vaults")
}

// vaultOptions translates the global flags. Unset flags leave snapnote.yaml in charge.
func vaultOptions(cmd *cobra.Command) []snapnote.Option {
	opts := []snapnote.Option{snapnote.WithLogger(slog.Default())}
	if adapter != "" {
		opts = append(opts, snapnote.WithAdapter(adapter))
	}
	if cmd.Flags().Changed("versioning") {
		opts = append(opts, snapnote.WithVersioning(versioning))
	}
	return opts
}

// resolveVault returns --vault or the nearest vault root.
func resolveVault() (string, error) {
	if vaultDir != "" {
		return vaultDir, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	root, err := snapnote.FindVaultRoot(wd)
	if err != nil {
		return "", fmt.Errorf("not a snapnote vault (run 'snapnote init'): %w", err)
	}
	return root, nil
}

// openVault opens an existing vault or exits.
func openVault(cmd *cobra.Command, extra ...snapnote.Option) *snapnote.Vault {
	root, err := resolveVault()
	if err != nil {
		fatal("Error", err)
	}

	opts := append(vaultOptions(cmd), snapnote.WithMustExist(true))
	v, err := snapnote.Open(cmd.Context(), root, append(opts, extra...)...)
	if err != nil {
		fatal("Failed to open vault", err)
	}
	return v
}

// readOnly is used by commands that only query the vault.
func readOnly() []snapnote.Option {
	return []snapnote.Option{snapnote.WithReadOnly(true)}
}

// closeVault flushes pending writes before the process exits.
func closeVault(v *snapnote.Vault) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := v.Close(ctx); err != nil {
		fatal("Failed to flush vault", err)
	}
}

// withReason attaches --message to ctx.
func withReason(ctx context.Context) context.Context {
	if message == "" {
		return ctx
	}
	return context.WithValue(ctx, core.ChangeReasonKey, message)
}
