// Command ebaysales runs the card consignment tracker: the HTTP API, image
// cleanup and settings maintenance.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/MichaelEbbert/ebaysales/internal/config"
	"github.com/MichaelEbbert/ebaysales/internal/db"
)

var (
	cfg      *config.Config
	closeLog = func() {}
)

var rootCmd = &cobra.Command{
	Use:   "ebaysales",
	Short: "Track trading cards from scan to shipped auction",
	Long: `ebaysales keeps the inventory of consigned trading cards and walks each
one through its auction: listing text, shipping tier, schedule, payment
and shipment.

Settings are read from the environment (and .env); flags override them.
Running without a subcommand starts the server.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		for flag, dst := range map[string]*string{
			"db":      &cfg.Server.DBPath,
			"addr":    &cfg.Server.Addr,
			"uploads": &cfg.Server.UploadDir,
			"log":     &cfg.Server.LogFile,
		} {
			if f := flags.Lookup(flag); f != nil && f.Changed {
				*dst = f.Value.String()
			}
		}

		var err error
		closeLog, err = setupLogger(os.Stdout, os.Stderr, cfg.Server.LogFile)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		closeLog()
	},
	RunE: runServe,
}

func init() {
	rootCmd.PersistentFlags().StringP("db", "d", "ebaysales.sqlite3", "SQLite database path (env EBAYSALES_DB)")
	rootCmd.PersistentFlags().StringP("uploads", "u", "uploads", "upload directory (env EBAYSALES_UPLOAD_DIR)")
	rootCmd.PersistentFlags().StringP("log", "l", "", "log file path (env EBAYSALES_LOG)")
	rootCmd.PersistentFlags().StringP("addr", "a", ":8080", "listen address (env EBAYSALES_ADDR)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(cleanupCmd)
	rootCmd.AddCommand(settingsCmd)
}

func main() {
	var err error
	cfg, err = config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// openDatabase opens the database and ensures the schema.
func openDatabase(path string) (*sql.DB, error) {
	database, err := db.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.EnsureSchema(database); err != nil {
		database.Close()
		return nil, fmt.Errorf("ensuring schema: %w", err)
	}
	slog.Info("database ready", "path", path)
	return database, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
