package api

import (
	"net/http"
	"time"

	"github.com/MichaelEbbert/ebaysales/internal/listing"
	"github.com/MichaelEbbert/ebaysales/internal/model"
	"github.com/MichaelEbbert/ebaysales/internal/store"
)

// DashboardHandler serves the overview and report endpoints.
type DashboardHandler struct {
	*Deps
}

type dashboardResponse struct {
	Counts      map[model.Status]int   `json:"counts"`
	Drafts      []model.ListingSummary `json:"drafts"`
	Active      []model.ListingSummary `json:"active"`
	SoldUnpaid  []model.ListingSummary `json:"sold_unpaid"`
	PaidToShip  []model.ListingSummary `json:"paid_unshipped"`
	NextEndTime time.Time              `json:"next_end_time"`
}

// Dashboard handles GET /api/dashboard.
func (h *DashboardHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	counts, err := store.CountListingsByStatus(ctx, h.DB)
	if err != nil {
		storeError(w, err, "failed to count listings")
		return
	}

	resp := dashboardResponse{
		Counts:      counts,
		NextEndTime: listing.NextAuctionEndTime(h.Now()),
	}
	for _, part := range []struct {
		status model.Status
		dst    *[]model.ListingSummary
	}{
		{model.StatusDraft, &resp.Drafts},
		{model.StatusListed, &resp.Active},
		{model.StatusEndedSold, &resp.SoldUnpaid},
		{model.StatusPaid, &resp.PaidToShip},
	} {
		list, err := store.ListListingsByStatus(ctx, h.DB, part.status)
		if err != nil {
			storeError(w, err, "failed to list listings")
			return
		}
		if list == nil {
			list = []model.ListingSummary{}
		}
		*part.dst = list
	}

	jsonResponse(w, http.StatusOK, resp)
}

// Report handles GET /api/report.
func (h *DashboardHandler) Report(w http.ResponseWriter, r *http.Request) {
	report, err := store.DailyReport(r.Context(), h.DB, h.Now())
	if err != nil {
		storeError(w, err, "failed to build report")
		return
	}
	jsonResponse(w, http.StatusOK, report)
}

type nextEndResponse struct {
	EndTime  time.Time `json:"end_time"`
	Local    string    `json:"local"`
	TimeZone string    `json:"time_zone"`
}

// NextEnd handles GET /api/schedule/next-end.
func (h *DashboardHandler) NextEnd(w http.ResponseWriter, r *http.Request) {
	end := listing.NextAuctionEndTime(h.Now())
	jsonResponse(w, http.StatusOK, nextEndResponse{
		EndTime:  end.UTC(),
		Local:    end.In(listing.AuctionLocation()).Format("Mon Jan 2 2006 3:04 PM MST"),
		TimeZone: listing.AuctionZone,
	})
}
