package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus tracks whether the buyer has paid.
type PaymentStatus string

// Payment statuses.
const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
)

// Order is the post-sale transaction for one listing.
type Order struct {
	ID              int64               `json:"id"`
	ListingID       int64               `json:"listing_id"`
	EbayOrderID     string              `json:"ebay_order_id,omitempty"`
	BuyerUsername   string              `json:"buyer_username,omitempty"`
	BuyerName       string              `json:"buyer_name,omitempty"`
	ShippingAddress string              `json:"shipping_address,omitempty"`
	SalePrice       decimal.NullDecimal `json:"sale_price"`
	ShippingCost    decimal.NullDecimal `json:"shipping_cost"`
	TotalPrice      decimal.NullDecimal `json:"total_price"`
	PaymentStatus   PaymentStatus       `json:"payment_status"`
	PaidAt          *time.Time          `json:"paid_at,omitempty"`
	ShippedAt       *time.Time          `json:"shipped_at,omitempty"`
	TrackingNumber  string              `json:"tracking_number,omitempty"`
	ShippingCarrier string              `json:"shipping_carrier,omitempty"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}
