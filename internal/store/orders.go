package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MichaelEbbert/ebaysales/internal/db"
	"github.com/MichaelEbbert/ebaysales/internal/model"
)

const orderColumns = `o.id, o.listing_id, o.ebay_order_id, o.buyer_username, o.buyer_name,
	o.shipping_address, o.sale_price, o.shipping_cost, o.total_price, o.payment_status,
	o.paid_at, o.tracking_number, o.shipping_carrier, o.shipped_at, o.created_at, o.updated_at`

func scanOrder(row rowScanner, o *model.Order) error {
	return row.Scan(&o.ID, &o.ListingID, &o.EbayOrderID, &o.BuyerUsername, &o.BuyerName,
		&o.ShippingAddress, &o.SalePrice, &o.ShippingCost, &o.TotalPrice, &o.PaymentStatus,
		&o.PaidAt, &o.TrackingNumber, &o.ShippingCarrier, &o.ShippedAt, &o.CreatedAt, &o.UpdatedAt)
}

func insertOrder(ctx context.Context, q db.DBTX, o *model.Order) (*model.Order, error) {
	result, err := q.ExecContext(ctx,
		`INSERT INTO orders (listing_id, payment_status, paid_at, shipped_at, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		o.ListingID, o.PaymentStatus, utcPtr(o.PaidAt), utcPtr(o.ShippedAt), o.CreatedAt.UTC(), o.UpdatedAt.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("creating order: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting order id: %w", err)
	}
	return GetOrder(ctx, q, id)
}

// GetOrder returns an order by ID.
func GetOrder(ctx context.Context, q db.DBTX, id int64) (*model.Order, error) {
	o := &model.Order{}
	err := scanOrder(q.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders o WHERE o.id = ?`, id), o)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("order %d: %w", id, model.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting order: %w", err)
	}
	return o, nil
}

// GetOrderByListing returns the order of a listing.
func GetOrderByListing(ctx context.Context, q db.DBTX, listingID int64) (*model.Order, error) {
	o := &model.Order{}
	err := scanOrder(q.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders o WHERE o.listing_id = ?`, listingID), o)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("order for listing %d: %w", listingID, model.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting order for listing: %w", err)
	}
	return o, nil
}

// BuyerUpdate carries the buyer and price fields of an order.
type BuyerUpdate struct {
	EbayOrderID     string              `json:"ebay_order_id"`
	BuyerUsername   string              `json:"buyer_username"`
	BuyerName       string              `json:"buyer_name"`
	ShippingAddress string              `json:"shipping_address"`
	SalePrice       decimal.NullDecimal `json:"sale_price"`
	ShippingCost    decimal.NullDecimal `json:"shipping_cost"`
}

// UpdateOrderBuyer stores buyer details and prices. The total is derived
// from the sale price and shipping cost when both are known.
func UpdateOrderBuyer(ctx context.Context, q db.DBTX, id int64, u BuyerUpdate, now time.Time) (*model.Order, error) {
	if u.SalePrice.Valid && u.SalePrice.Decimal.IsNegative() {
		return nil, &model.ValidationError{Field: "sale_price", Message: "must not be negative"}
	}
	if u.ShippingCost.Valid && u.ShippingCost.Decimal.IsNegative() {
		return nil, &model.ValidationError{Field: "shipping_cost", Message: "must not be negative"}
	}

	var total decimal.NullDecimal
	if u.SalePrice.Valid && u.ShippingCost.Valid {
		total = decimal.NewNullDecimal(u.SalePrice.Decimal.Add(u.ShippingCost.Decimal))
	}

	result, err := q.ExecContext(ctx,
		`UPDATE orders SET ebay_order_id = ?, buyer_username = ?, buyer_name = ?, shipping_address = ?,
		        sale_price = ?, shipping_cost = ?, total_price = ?, updated_at = ?
		 WHERE id = ?`,
		u.EbayOrderID, u.BuyerUsername, u.BuyerName, u.ShippingAddress,
		u.SalePrice, u.ShippingCost, total, now.UTC(),
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("updating order buyer: %w", err)
	}
	if err := expectOne(result, "order", id); err != nil {
		return nil, err
	}
	return GetOrder(ctx, q, id)
}

// ShippingUpdate carries the tracking details of an order.
type ShippingUpdate struct {
	TrackingNumber  string `json:"tracking_number"`
	ShippingCarrier string `json:"shipping_carrier"`
}

// UpdateOrderShipping stores tracking details. shipped_at is owned by the
// shipped status change and is not touched here.
func UpdateOrderShipping(ctx context.Context, q db.DBTX, id int64, u ShippingUpdate, now time.Time) (*model.Order, error) {
	result, err := q.ExecContext(ctx,
		`UPDATE orders SET tracking_number = ?, shipping_carrier = ?, updated_at = ? WHERE id = ?`,
		u.TrackingNumber, u.ShippingCarrier, now.UTC(), id,
	)
	if err != nil {
		return nil, fmt.Errorf("updating order shipping: %w", err)
	}
	if err := expectOne(result, "order", id); err != nil {
		return nil, err
	}
	return GetOrder(ctx, q, id)
}
