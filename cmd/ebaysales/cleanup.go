package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/MichaelEbbert/ebaysales/internal/cleanup"
	"github.com/MichaelEbbert/ebaysales/internal/uploads"
)

var cleanupOpts struct {
	dryRun      bool
	days        int
	orphansOnly bool
	grace       time.Duration
}

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Delete scans of long-shipped cards and orphaned uploads",
	Long: `Deletes the front and back scans of cards whose order shipped more than
--days ago and clears the references, then deletes uploads that no card
refers to.`,
	Args: cobra.NoArgs,
	RunE: runCleanup,
}

func init() {
	f := cleanupCmd.Flags()
	f.BoolVar(&cleanupOpts.dryRun, "dry-run", false, "show what would be deleted without deleting")
	f.IntVar(&cleanupOpts.days, "days", 0, "days after shipping to keep images (default from CLEANUP_RETENTION, 90)")
	f.BoolVar(&cleanupOpts.orphansOnly, "orphans-only", false, "only clean up orphan files")
	f.DurationVar(&cleanupOpts.grace, "orphan-grace", 0, "keep unreferenced uploads younger than this (default from CLEANUP_ORPHAN_GRACE)")
}

func runCleanup(cmd *cobra.Command, args []string) error {
	database, err := openDatabase(cfg.Server.DBPath)
	if err != nil {
		return err
	}
	defer database.Close()

	dir, err := uploads.Open(cfg.Server.UploadDir)
	if err != nil {
		return err
	}

	opts := cleanup.Options{
		Retention:   cfg.Cleanup.Retention,
		DryRun:      cleanupOpts.dryRun,
		OrphansOnly: cleanupOpts.orphansOnly,
		OrphanGrace: cfg.Cleanup.OrphanGrace,
	}
	if cleanupOpts.days > 0 {
		opts.Retention = time.Duration(cleanupOpts.days) * 24 * time.Hour
	}
	if cmd.Flags().Changed("orphan-grace") {
		opts.OrphanGrace = cleanupOpts.grace
	}

	sum, err := cleanup.Run(commandContext(cmd), database, dir, opts, time.Now())
	if err != nil {
		return err
	}
	printSummary(cmd, sum, opts.OrphansOnly)
	return nil
}

func printSummary(cmd *cobra.Command, sum *cleanup.Summary, orphansOnly bool) {
	out := cmd.OutOrStdout()
	would := ""
	if sum.DryRun {
		fmt.Fprintln(out, "=== DRY RUN MODE - No files were deleted ===")
		would = "would be "
	}
	if !orphansOnly {
		fmt.Fprintf(out, "Shipped before: %s\n", sum.Cutoff.Format("2006-01-02"))
		fmt.Fprintf(out, "Cards processed: %d\n", sum.CardsProcessed)
		fmt.Fprintf(out, "Files %sdeleted: %d\n", would, sum.FilesDeleted)
		if sum.FilesNotFound > 0 {
			fmt.Fprintf(out, "Files not found (already deleted): %d\n", sum.FilesNotFound)
		}
	}
	fmt.Fprintf(out, "Orphan files %sdeleted: %d\n", would, sum.OrphansDeleted)
}
