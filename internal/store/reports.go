package store

import (
	"context"
	"time"

	"github.com/MichaelEbbert/ebaysales/internal/db"
	"github.com/MichaelEbbert/ebaysales/internal/model"
)

// Report is the daily action report.
type Report struct {
	GeneratedAt     time.Time              `json:"generated_at"`
	DraftsReady     int                    `json:"drafts_ready"`
	ActiveAuctions  []model.ListingSummary `json:"active_auctions"`
	AwaitingPayment []model.ListingSummary `json:"awaiting_payment"`
	NeedsShipping   []model.ListingSummary `json:"needs_shipping"`
	RecentlyShipped []model.ListingSummary `json:"recently_shipped"`
	ActiveCount     int                    `json:"active_count"`
	PaymentCount    int                    `json:"payment_count"`
	ShippingCount   int                    `json:"shipping_count"`
}

// DailyReport collects the listings that need the operator's attention.
func DailyReport(ctx context.Context, q db.DBTX, now time.Time) (*Report, error) {
	counts, err := CountListingsByStatus(ctx, q)
	if err != nil {
		return nil, err
	}

	r := &Report{GeneratedAt: now, DraftsReady: counts[model.StatusDraft]}
	for _, part := range []struct {
		status model.Status
		dst    *[]model.ListingSummary
	}{
		{model.StatusListed, &r.ActiveAuctions},
		{model.StatusEndedSold, &r.AwaitingPayment},
		{model.StatusPaid, &r.NeedsShipping},
		{model.StatusShipped, &r.RecentlyShipped},
	} {
		*part.dst, err = ListListingsByStatus(ctx, q, part.status)
		if err != nil {
			return nil, err
		}
	}

	r.ActiveCount = len(r.ActiveAuctions)
	r.PaymentCount = len(r.AwaitingPayment)
	r.ShippingCount = len(r.NeedsShipping)
	return r, nil
}
