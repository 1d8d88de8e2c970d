package store

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/MichaelEbbert/ebaysales/internal/db"
	"github.com/MichaelEbbert/ebaysales/internal/model"
)

func TestUpdateOrderBuyerAndShipping(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	_, l := mustCreateCard(t, database, newTestCard())
	tr, err := SetListingStatus(ctx, database, l.ID, model.StatusPaid, testNow, true)
	if err != nil {
		t.Fatal(err)
	}

	o, err := UpdateOrderBuyer(ctx, database, tr.Order.ID, BuyerUpdate{
		EbayOrderID:   "12-34567-89012",
		BuyerUsername: "cardfan99",
		SalePrice:     decimal.NewNullDecimal(decimal.RequireFromString("171.00")),
		ShippingCost:  decimal.NewNullDecimal(decimal.RequireFromString("8.50")),
	}, testNow)
	if err != nil {
		t.Fatal(err)
	}
	if !o.TotalPrice.Valid || !o.TotalPrice.Decimal.Equal(decimal.RequireFromString("179.50")) {
		t.Errorf("total = %+v", o.TotalPrice)
	}
	if o.PaymentStatus != model.PaymentPaid || o.PaidAt == nil {
		t.Errorf("payment fields changed: %+v", o)
	}

	o, err = UpdateOrderShipping(ctx, database, o.ID, ShippingUpdate{TrackingNumber: "9400111", ShippingCarrier: "USPS"}, testNow)
	if err != nil {
		t.Fatal(err)
	}
	if o.TrackingNumber != "9400111" || o.ShippedAt != nil {
		t.Errorf("unexpected order: %+v", o)
	}
}

func TestUpdateOrderBuyerValidation(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	_, err := UpdateOrderBuyer(ctx, database, 1, BuyerUpdate{
		SalePrice: decimal.NewNullDecimal(decimal.NewFromInt(-1)),
	}, testNow)
	var ve *model.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}

	_, err = UpdateOrderShipping(ctx, database, 99, ShippingUpdate{}, testNow)
	if !errors.Is(err, model.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
