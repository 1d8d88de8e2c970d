// Package cleanup removes card scans that are no longer needed: images of
// cards shipped long ago and uploads no card refers to.
package cleanup

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/MichaelEbbert/ebaysales/internal/store"
	"github.com/MichaelEbbert/ebaysales/internal/uploads"
)

// DefaultRetention is how long images are kept after an order ships.
const DefaultRetention = 90 * 24 * time.Hour

// Options control a cleanup run.
type Options struct {
	Retention time.Duration
	// DryRun reports what would be removed without touching files or rows.
	DryRun      bool
	OrphansOnly bool
	// OrphanGrace spares uploads newer than this, which may belong to a
	// card that has not been saved yet.
	OrphanGrace time.Duration
}

// Summary counts what a run removed, or would remove in a dry run.
type Summary struct {
	DryRun         bool      `json:"dry_run"`
	Cutoff         time.Time `json:"cutoff"`
	CardsProcessed int       `json:"cards_processed"`
	FilesDeleted   int       `json:"files_deleted"`
	FilesNotFound  int       `json:"files_not_found"`
	OrphansDeleted int       `json:"orphans_deleted"`
}

// Run performs a cleanup pass.
func Run(ctx context.Context, database *sql.DB, dir *uploads.Dir, opts Options, now time.Time) (*Summary, error) {
	if opts.Retention <= 0 {
		opts.Retention = DefaultRetention
	}
	sum := &Summary{DryRun: opts.DryRun, Cutoff: now.Add(-opts.Retention)}

	if !opts.OrphansOnly {
		if err := oldImages(ctx, database, dir, sum, opts.DryRun); err != nil {
			return sum, err
		}
	}
	if err := orphans(ctx, database, dir, sum, opts, now); err != nil {
		return sum, err
	}
	return sum, nil
}

func oldImages(ctx context.Context, database *sql.DB, dir *uploads.Dir, sum *Summary, dryRun bool) error {
	cards, err := store.ListShippedCardsBefore(ctx, database, sum.Cutoff)
	if err != nil {
		return err
	}

	for _, c := range cards {
		sum.CardsProcessed++
		for _, name := range []string{c.ImageFront, c.ImageBack} {
			if name == "" {
				continue
			}
			if !dir.Exists(name) {
				sum.FilesNotFound++
				continue
			}
			if dryRun {
				slog.Info("would delete image", "card", c.CardID, "file", name)
				sum.FilesDeleted++
				continue
			}
			if _, err := dir.Remove(name); err != nil {
				return err
			}
			slog.Info("deleted image", "card", c.CardID, "file", name)
			sum.FilesDeleted++
		}

		if !dryRun {
			if err := store.ClearCardImages(ctx, database, c.CardID); err != nil {
				return fmt.Errorf("clearing images of card %d: %w", c.CardID, err)
			}
		}
	}
	return nil
}

func orphans(ctx context.Context, database *sql.DB, dir *uploads.Dir, sum *Summary, opts Options, now time.Time) error {
	refs, err := store.ReferencedImages(ctx, database)
	if err != nil {
		return err
	}
	files, err := dir.List()
	if err != nil {
		return err
	}

	for _, f := range files {
		if refs[f.Name] {
			continue
		}
		if opts.OrphanGrace > 0 && now.Sub(f.ModTime) < opts.OrphanGrace {
			continue
		}
		if opts.DryRun {
			slog.Info("would delete orphan", "file", f.Name)
			sum.OrphansDeleted++
			continue
		}
		if _, err := dir.Remove(f.Name); err != nil {
			return err
		}
		slog.Info("deleted orphan", "file", f.Name)
		sum.OrphansDeleted++
	}
	return nil
}
