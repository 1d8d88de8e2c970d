package main

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/MichaelEbbert/ebaysales/internal/db"
	"github.com/MichaelEbbert/ebaysales/internal/listing"
	"github.com/MichaelEbbert/ebaysales/internal/store"
)

func TestSettingsExportImport(t *testing.T) {
	ctx := context.Background()
	src := db.NewTestDB(t)

	tiers := listing.DefaultTiers()
	tiers[0].Price = decimal.RequireFromString("1.15")
	if err := store.SaveShippingTiers(ctx, src, tiers); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := exportSettings(ctx, src, &buf); err != nil {
		t.Fatalf("export: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"tiers:", "thresholds:", "Economy", "insurance_limit"} {
		if !strings.Contains(out, want) {
			t.Errorf("export missing %q:\n%s", want, out)
		}
	}

	dst := db.NewTestDB(t)
	if err := importSettings(ctx, dst, &buf); err != nil {
		t.Fatalf("import: %v", err)
	}
	got, err := store.LoadShippingTiers(ctx, dst)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != len(tiers) || !got[0].Price.Equal(tiers[0].Price) {
		t.Errorf("imported tiers differ: %+v", got)
	}
	if got[2].InsuranceLimit == nil || !got[2].InsuranceLimit.Equal(decimal.NewFromInt(100)) {
		t.Errorf("insurance limit lost: %+v", got[2])
	}
}

func TestImportRejectsInvalidSettings(t *testing.T) {
	ctx := context.Background()
	database := db.NewTestDB(t)

	bad := `tiers: []
thresholds:
  economy_max: "19.99"
  standard_max: "49.99"
  insured_100_max: "99.99"
`
	if err := importSettings(ctx, database, strings.NewReader(bad)); err == nil {
		t.Error("expected error for empty tier table")
	}

	descending := `tiers:
  - name: Economy
    method: Letter
    price: "1.00"
    cost: "0.75"
    packing: sleeve
thresholds:
  economy_max: "50"
  standard_max: "20"
  insured_100_max: "100"
`
	if err := importSettings(ctx, database, strings.NewReader(descending)); err == nil {
		t.Error("expected error for descending thresholds")
	}

	tiers, _ := store.LoadShippingTiers(ctx, database)
	if len(tiers) != len(listing.DefaultTiers()) {
		t.Error("rejected import must leave defaults in place")
	}
}

func TestSetupLoggerRoutesLevels(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var stdout, stderr bytes.Buffer
	logPath := filepath.Join(t.TempDir(), "app.log")
	closeFn, err := setupLogger(&stdout, &stderr, logPath)
	if err != nil {
		t.Fatal(err)
	}

	slog.Info("hello")
	slog.Error("boom")
	closeFn()

	if !strings.Contains(stdout.String(), "hello") || strings.Contains(stdout.String(), "boom") {
		t.Errorf("stdout = %q", stdout.String())
	}
	if !strings.Contains(stderr.String(), "boom") {
		t.Errorf("stderr = %q", stderr.String())
	}
	data, _ := os.ReadFile(logPath)
	if !strings.Contains(string(data), "hello") || !strings.Contains(string(data), "boom") {
		t.Errorf("log file = %q", data)
	}
}
