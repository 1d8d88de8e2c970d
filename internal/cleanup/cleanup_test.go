package cleanup

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MichaelEbbert/ebaysales/internal/db"
	"github.com/MichaelEbbert/ebaysales/internal/model"
	"github.com/MichaelEbbert/ebaysales/internal/store"
	"github.com/MichaelEbbert/ebaysales/internal/uploads"
)

var now = time.Date(2024, time.September, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	db      *sql.DB
	dir     *uploads.Dir
	oldCard int64
	newCard int64
	files   map[string]string
}

// setup creates a card shipped 100 days ago, one shipped 10 days ago, both
// with front and back scans, plus one orphan upload.
func setup(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	database := db.NewTestDB(t)
	dir, err := uploads.Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	f := &fixture{db: database, dir: dir, files: map[string]string{}}

	save := func(key, side string) string {
		name, err := dir.Save(side, key+".png", []byte(key), now.Add(-200*24*time.Hour))
		if err != nil {
			t.Fatal(err)
		}
		f.files[key] = name
		return name
	}

	for i, shippedAgo := range []time.Duration{100 * 24 * time.Hour, 10 * 24 * time.Hour} {
		c := &model.Card{Category: model.CategoryPokemon, Name: "Eevee", Condition: "NM", Quantity: 1, StartingBid: decimal.NewFromInt(1)}
		card, l, err := store.CreateCardWithListing(ctx, database, c, now.Add(-150*24*time.Hour))
		if err != nil {
			t.Fatal(err)
		}
		prefix := []string{"old", "new"}[i]
		front := save(prefix+"_front", uploads.SideFront)
		back := save(prefix+"_back", uploads.SideBack)
		if err := store.SetCardImages(ctx, database, card.ID, &front, &back); err != nil {
			t.Fatal(err)
		}

		at := now.Add(-shippedAgo)
		if _, err := store.SetListingStatus(ctx, database, l.ID, model.StatusPaid, at, true); err != nil {
			t.Fatal(err)
		}
		if _, err := store.SetListingStatus(ctx, database, l.ID, model.StatusShipped, at, false); err != nil {
			t.Fatal(err)
		}

		if i == 0 {
			f.oldCard = card.ID
		} else {
			f.newCard = card.ID
		}
	}
	save("orphan", uploads.SideFront)
	return f
}

func TestRunDeletesOldImagesAndOrphans(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	sum, err := Run(ctx, f.db, f.dir, Options{}, now)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sum.CardsProcessed != 1 || sum.FilesDeleted != 2 || sum.FilesNotFound != 0 || sum.OrphansDeleted != 1 {
		t.Errorf("unexpected summary: %+v", sum)
	}

	for _, key := range []string{"old_front", "old_back", "orphan"} {
		if f.dir.Exists(f.files[key]) {
			t.Errorf("%s should be deleted", key)
		}
	}
	for _, key := range []string{"new_front", "new_back"} {
		if !f.dir.Exists(f.files[key]) {
			t.Errorf("%s should be kept", key)
		}
	}

	old, _ := store.GetCard(ctx, f.db, f.oldCard)
	if old.ImageFront != "" || old.ImageBack != "" {
		t.Errorf("old card references not cleared: %+v", old)
	}
	fresh, _ := store.GetCard(ctx, f.db, f.newCard)
	if fresh.ImageFront == "" {
		t.Error("new card references should be kept")
	}
}

func TestRunDryRunChangesNothing(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	sum, err := Run(ctx, f.db, f.dir, Options{DryRun: true}, now)
	if err != nil {
		t.Fatal(err)
	}
	if !sum.DryRun || sum.FilesDeleted != 2 || sum.OrphansDeleted != 1 {
		t.Errorf("unexpected summary: %+v", sum)
	}
	for key, name := range f.files {
		if !f.dir.Exists(name) {
			t.Errorf("%s deleted in dry run", key)
		}
	}
	old, _ := store.GetCard(ctx, f.db, f.oldCard)
	if old.ImageFront == "" {
		t.Error("dry run cleared references")
	}
}

func TestRunCustomRetention(t *testing.T) {
	f := setup(t)

	sum, err := Run(context.Background(), f.db, f.dir, Options{Retention: 5 * 24 * time.Hour, DryRun: true}, now)
	if err != nil {
		t.Fatal(err)
	}
	if sum.CardsProcessed != 2 || sum.FilesDeleted != 4 {
		t.Errorf("unexpected summary: %+v", sum)
	}
}

func TestRunOrphansOnly(t *testing.T) {
	f := setup(t)

	sum, err := Run(context.Background(), f.db, f.dir, Options{OrphansOnly: true}, now)
	if err != nil {
		t.Fatal(err)
	}
	if sum.CardsProcessed != 0 || sum.OrphansDeleted != 1 {
		t.Errorf("unexpected summary: %+v", sum)
	}
	if !f.dir.Exists(f.files["old_front"]) {
		t.Error("orphans-only run removed a referenced image")
	}
}

func TestRunMissingFilesCounted(t *testing.T) {
	f := setup(t)
	if _, err := f.dir.Remove(f.files["old_back"]); err != nil {
		t.Fatal(err)
	}

	sum, err := Run(context.Background(), f.db, f.dir, Options{}, now)
	if err != nil {
		t.Fatal(err)
	}
	if sum.FilesDeleted != 1 || sum.FilesNotFound != 1 {
		t.Errorf("unexpected summary: %+v", sum)
	}
}

func TestRunOrphanGrace(t *testing.T) {
	f := setup(t)

	// Files were just written, so a one hour grace spares them all.
	sum, err := Run(context.Background(), f.db, f.dir, Options{OrphansOnly: true, OrphanGrace: time.Hour}, time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if sum.OrphansDeleted != 0 {
		t.Errorf("expected grace to spare new orphan, got %+v", sum)
	}
}
