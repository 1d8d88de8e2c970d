package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/MichaelEbbert/ebaysales/internal/db"
	"github.com/MichaelEbbert/ebaysales/internal/listing"
	"github.com/MichaelEbbert/ebaysales/internal/store"
)

// settingsFile is the YAML layout of exported settings.
type settingsFile struct {
	Tiers      []listing.Tier     `yaml:"tiers"`
	Thresholds listing.Thresholds `yaml:"thresholds"`
}

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Export or import the shipping tariff settings",
}

var settingsExportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Write the shipping tiers and thresholds as YAML (stdout by default)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		database, err := openDatabase(cfg.Server.DBPath)
		if err != nil {
			return err
		}
		defer database.Close()

		w := cmd.OutOrStdout()
		if len(args) == 1 {
			f, err := os.Create(args[0])
			if err != nil {
				return fmt.Errorf("creating %s: %w", args[0], err)
			}
			defer f.Close()
			w = f
		}
		return exportSettings(commandContext(cmd), database, w)
	},
}

var settingsImportCmd = &cobra.Command{
	Use:   "import file",
	Short: "Replace the shipping tiers and thresholds from a YAML file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		database, err := openDatabase(cfg.Server.DBPath)
		if err != nil {
			return err
		}
		defer database.Close()

		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("opening %s: %w", args[0], err)
		}
		defer f.Close()

		if err := importSettings(commandContext(cmd), database, f); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Imported shipping settings from %s\n", args[0])
		return nil
	},
}

func init() {
	settingsCmd.AddCommand(settingsExportCmd)
	settingsCmd.AddCommand(settingsImportCmd)
}

func exportSettings(ctx context.Context, database *sql.DB, w io.Writer) error {
	tiers, err := store.LoadShippingTiers(ctx, database)
	if err != nil {
		return err
	}
	th, err := store.LoadThresholds(ctx, database)
	if err != nil {
		return err
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(settingsFile{Tiers: tiers, Thresholds: th}); err != nil {
		return fmt.Errorf("encoding settings: %w", err)
	}
	return enc.Close()
}

func importSettings(ctx context.Context, database *sql.DB, r io.Reader) error {
	var sf settingsFile
	if err := yaml.NewDecoder(r).Decode(&sf); err != nil {
		return fmt.Errorf("decoding settings: %w", err)
	}
	if err := listing.ValidateTiers(sf.Tiers); err != nil {
		return err
	}
	if err := sf.Thresholds.Validate(); err != nil {
		return err
	}

	err := db.WithTransaction(ctx, database, func(tx *sql.Tx) error {
		if err := store.SaveShippingTiers(ctx, tx, sf.Tiers); err != nil {
			return err
		}
		return store.SaveThresholds(ctx, tx, sf.Thresholds)
	})
	if err != nil {
		return err
	}
	slog.Info("shipping settings imported", "tiers", len(sf.Tiers))
	return nil
}
