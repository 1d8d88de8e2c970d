package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Status is the lifecycle state of a listing.
type Status string

// Listing statuses, in workflow order.
const (
	StatusDraft       Status = "draft"
	StatusScheduled   Status = "scheduled"
	StatusListed      Status = "listed"
	StatusEndedUnsold Status = "ended_unsold"
	StatusEndedSold   Status = "ended_sold"
	StatusPaid        Status = "paid"
	StatusShipped     Status = "shipped"
	StatusComplete    Status = "complete"
)

// Statuses lists every status in workflow order.
var Statuses = []Status{
	StatusDraft,
	StatusScheduled,
	StatusListed,
	StatusEndedUnsold,
	StatusEndedSold,
	StatusPaid,
	StatusShipped,
	StatusComplete,
}

// ParseStatus returns the status for s or a validation error.
func ParseStatus(s string) (Status, error) {
	for _, st := range Statuses {
		if string(st) == s {
			return st, nil
		}
	}
	return "", &ValidationError{Field: "status", Message: fmt.Sprintf("unknown status %q", s)}
}

// Listing is one marketplace auction attempt for one card.
type Listing struct {
	ID               int64               `json:"id"`
	CardID           int64               `json:"card_id"`
	EbayListingID    string              `json:"ebay_listing_id,omitempty"`
	Status           Status              `json:"status"`
	ScheduledEndTime time.Time           `json:"scheduled_end_time"`
	ActualStartTime  *time.Time          `json:"actual_start_time,omitempty"`
	ActualEndTime    *time.Time          `json:"actual_end_time,omitempty"`
	CurrentBid       decimal.NullDecimal `json:"current_bid"`
	WinningBid       decimal.NullDecimal `json:"winning_bid"`
	EbayFees         decimal.NullDecimal `json:"ebay_fees"`
	CreatedAt        time.Time           `json:"created_at"`
	UpdatedAt        time.Time           `json:"updated_at"`
}

// ListingSummary joins a listing with its card and, when one exists, its
// order.
type ListingSummary struct {
	Listing Listing `json:"listing"`
	Card    Card    `json:"card"`
	Order   *Order  `json:"order,omitempty"`
}
