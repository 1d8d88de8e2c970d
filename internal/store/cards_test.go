package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MichaelEbbert/ebaysales/internal/db"
	"github.com/MichaelEbbert/ebaysales/internal/listing"
	"github.com/MichaelEbbert/ebaysales/internal/model"
)

var testNow = time.Date(2024, time.April, 2, 16, 30, 0, 0, time.UTC)

func newTestCard() *model.Card {
	return &model.Card{
		Category:     model.CategoryMTG,
		Name:         "Bayou",
		SetName:      "Revised",
		Condition:    "LP",
		Quantity:     1,
		StartingBid:  decimal.RequireFromString("150.00"),
		Notes:        "Minor edge wear.",
		PrivateNotes: "Paid $120",
	}
}

func mustCreateCard(t *testing.T, database *sql.DB, c *model.Card) (*model.Card, *model.Listing) {
	t.Helper()
	card, l, err := CreateCardWithListing(context.Background(), database, c, testNow)
	if err != nil {
		t.Fatalf("CreateCardWithListing: %v", err)
	}
	return card, l
}

func TestCreateCardWithListing(t *testing.T) {
	database := db.NewTestDB(t)

	card, l := mustCreateCard(t, database, newTestCard())
	if card.ID == 0 {
		t.Fatal("expected card id")
	}
	if card.Name != "Bayou" || card.PrivateNotes != "Paid $120" {
		t.Errorf("unexpected card: %+v", card)
	}
	if !card.StartingBid.Equal(decimal.NewFromInt(150)) {
		t.Errorf("expected starting bid 150, got %s", card.StartingBid)
	}
	if !card.CreatedAt.Equal(testNow) {
		t.Errorf("expected created_at %s, got %s", testNow, card.CreatedAt)
	}

	if l.CardID != card.ID {
		t.Errorf("listing card_id = %d, want %d", l.CardID, card.ID)
	}
	if l.Status != model.StatusDraft {
		t.Errorf("expected draft listing, got %q", l.Status)
	}
	if want := listing.NextAuctionEndTime(testNow); !l.ScheduledEndTime.Equal(want) {
		t.Errorf("scheduled end = %s, want %s", l.ScheduledEndTime, want)
	}
	if l.CurrentBid.Valid || l.ActualStartTime != nil {
		t.Errorf("expected empty marketplace fields, got %+v", l)
	}
}

func TestCreateCardRejectsInvalid(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	c := newTestCard()
	c.Quantity = 0
	_, _, err := CreateCardWithListing(ctx, database, c, testNow)
	var ve *model.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}

	cards, err := ListCards(ctx, database)
	if err != nil {
		t.Fatal(err)
	}
	if len(cards) != 0 {
		t.Errorf("expected no cards, got %d", len(cards))
	}
}

func TestGetCardNotFound(t *testing.T) {
	database := db.NewTestDB(t)

	_, err := GetCard(context.Background(), database, 42)
	if !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListCardsNewestFirst(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	first := newTestCard()
	first.Name = "Taiga"
	if _, _, err := CreateCardWithListing(ctx, database, first, testNow); err != nil {
		t.Fatal(err)
	}
	second := newTestCard()
	second.Name = "Tundra"
	if _, _, err := CreateCardWithListing(ctx, database, second, testNow.Add(time.Hour)); err != nil {
		t.Fatal(err)
	}

	cards, err := ListCards(ctx, database)
	if err != nil {
		t.Fatal(err)
	}
	if len(cards) != 2 || cards[0].Name != "Tundra" || cards[1].Name != "Taiga" {
		t.Errorf("unexpected order: %+v", cards)
	}
}

func TestUpdateCard(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	card, _ := mustCreateCard(t, database, newTestCard())
	card.Graded = true
	card.GradingCompany = "BGS"
	card.Grade = "8.5"
	card.Quantity = 2
	if err := UpdateCard(ctx, database, card); err != nil {
		t.Fatalf("UpdateCard: %v", err)
	}

	got, err := GetCard(ctx, database, card.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.ConditionDisplay() != "BGS 8.5" || got.Quantity != 2 {
		t.Errorf("update not stored: %+v", got)
	}

	missing := newTestCard()
	missing.ID = 999
	if err := UpdateCard(ctx, database, missing); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSetCardImages(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	card, _ := mustCreateCard(t, database, newTestCard())
	front := "01HX_front_bayou.png"
	if err := SetCardImages(ctx, database, card.ID, &front, nil); err != nil {
		t.Fatal(err)
	}
	back := "01HX_back_bayou.png"
	if err := SetCardImages(ctx, database, card.ID, nil, &back); err != nil {
		t.Fatal(err)
	}

	got, _ := GetCard(ctx, database, card.ID)
	if got.ImageFront != front || got.ImageBack != back {
		t.Errorf("images = %q, %q", got.ImageFront, got.ImageBack)
	}

	if err := ClearCardImages(ctx, database, card.ID); err != nil {
		t.Fatal(err)
	}
	got, _ = GetCard(ctx, database, card.ID)
	if got.ImageFront != "" || got.ImageBack != "" {
		t.Errorf("expected images cleared, got %q, %q", got.ImageFront, got.ImageBack)
	}
}

func TestDeleteDraftCard(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	card, l := mustCreateCard(t, database, newTestCard())
	if err := DeleteCard(ctx, database, card.ID); err != nil {
		t.Fatalf("DeleteCard: %v", err)
	}

	if _, err := GetCard(ctx, database, card.ID); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("expected card gone, got %v", err)
	}
	if _, err := GetListing(ctx, database, l.ID); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("expected listing gone, got %v", err)
	}
}

func TestDeleteListedCardRefused(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	card, l := mustCreateCard(t, database, newTestCard())
	if _, err := SetListingStatus(ctx, database, l.ID, model.StatusListed, testNow, false); err != nil {
		t.Fatal(err)
	}

	err := DeleteCard(ctx, database, card.ID)
	if !errors.Is(err, model.ErrIllegalDeletion) {
		t.Fatalf("expected ErrIllegalDeletion, got %v", err)
	}

	// Nothing was removed.
	if _, err := GetCard(ctx, database, card.ID); err != nil {
		t.Errorf("card should survive: %v", err)
	}
	got, err := GetListing(ctx, database, l.ID)
	if err != nil {
		t.Fatalf("listing should survive: %v", err)
	}
	if got.Status != model.StatusListed {
		t.Errorf("listing status changed to %q", got.Status)
	}
}

func TestDeleteCardWithoutListing(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	card, l := mustCreateCard(t, database, newTestCard())
	if _, err := database.ExecContext(ctx, `DELETE FROM listings WHERE id = ?`, l.ID); err != nil {
		t.Fatal(err)
	}
	if err := DeleteCard(ctx, database, card.ID); err != nil {
		t.Fatalf("DeleteCard: %v", err)
	}
}

func TestDeleteCardNotFound(t *testing.T) {
	database := db.NewTestDB(t)

	if err := DeleteCard(context.Background(), database, 7); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteDraftCardWithOrderRefused(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	card, l := mustCreateCard(t, database, newTestCard())
	tr, err := SetListingStatus(ctx, database, l.ID, model.StatusPaid, testNow, true)
	require.NoError(t, err)
	require.NotNil(t, tr.Order)
	_, err = SetListingStatus(ctx, database, l.ID, model.StatusDraft, testNow, true)
	require.NoError(t, err)

	require.ErrorIs(t, DeleteCard(ctx, database, card.ID), model.ErrIllegalDeletion)

	_, err = GetCard(ctx, database, card.ID)
	require.NoError(t, err, "card should survive")
	o, err := GetOrderByListing(ctx, database, l.ID)
	require.NoError(t, err, "order should survive")
	assert.Equal(t, tr.Order.ID, o.ID)
}
