package api

import (
	"log/slog"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/MichaelEbbert/ebaysales/internal/events"
	"github.com/MichaelEbbert/ebaysales/internal/listing"
	"github.com/MichaelEbbert/ebaysales/internal/model"
	"github.com/MichaelEbbert/ebaysales/internal/store"
)

// ListingsHandler handles listing lifecycle endpoints.
type ListingsHandler struct {
	*Deps
}

type statusRequest struct {
	Status string `json:"status"`
	Force  bool   `json:"force"`
}

type statusResponse struct {
	Listing *model.Listing `json:"listing"`
	Order   *model.Order   `json:"order,omitempty"`
	From    model.Status   `json:"from"`
	Next    []model.Status `json:"next"`
}

// List handles GET /api/listings?status=.
func (h *ListingsHandler) List(w http.ResponseWriter, r *http.Request) {
	var status model.Status
	if s := r.URL.Query().Get("status"); s != "" {
		var err error
		if status, err = model.ParseStatus(s); err != nil {
			storeError(w, err, "invalid status")
			return
		}
	}

	summaries, err := store.ListListingsByStatus(r.Context(), h.DB, status)
	if err != nil {
		storeError(w, err, "failed to list listings")
		return
	}
	if summaries == nil {
		summaries = []model.ListingSummary{}
	}
	jsonResponse(w, http.StatusOK, summaries)
}

// SetStatus handles POST /api/listings/{id}/status.
func (h *ListingsHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid listing id")
		return
	}

	var req statusRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	to, err := model.ParseStatus(req.Status)
	if err != nil {
		storeError(w, err, "invalid status")
		return
	}

	t, err := store.SetListingStatus(r.Context(), h.DB, id, to, h.Now(), req.Force)
	if err != nil {
		storeError(w, err, "failed to update listing status")
		return
	}

	slog.Info("listing status updated", "listing", id, "from", t.From, "to", t.To, "forced", req.Force)
	h.publish(t, req.Force)

	jsonResponse(w, http.StatusOK, statusResponse{
		Listing: t.Listing,
		Order:   t.Order,
		From:    t.From,
		Next:    listing.Next(t.To),
	})
}

// publish reports a committed status change. Delivery failures are logged
// only; the change itself already succeeded.
func (h *ListingsHandler) publish(t *listing.Transition, forced bool) {
	err := h.Events.PublishStatusChanged(events.StatusChanged{
		ListingID:    t.Listing.ID,
		CardID:       t.Listing.CardID,
		From:         t.From,
		To:           t.To,
		Forced:       forced,
		OrderCreated: t.OrderCreated,
		At:           t.Listing.UpdatedAt,
	})
	if err != nil {
		slog.Warn("failed to publish status event", "listing", t.Listing.ID, "error", err)
	}
}

// Reschedule handles POST /api/listings/{id}/reschedule.
func (h *ListingsHandler) Reschedule(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid listing id")
		return
	}

	l, err := store.RescheduleListing(r.Context(), h.DB, id, h.Now())
	if err != nil {
		storeError(w, err, "failed to reschedule listing")
		return
	}

	slog.Info("listing rescheduled", "listing", id, "ends", l.ScheduledEndTime)
	jsonResponse(w, http.StatusOK, l)
}

// Update handles PUT /api/listings/{id} with the marketplace fields.
func (h *ListingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid listing id")
		return
	}

	var req store.MarketplaceUpdate
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	for _, amt := range []struct {
		field string
		value decimal.NullDecimal
	}{
		{"current_bid", req.CurrentBid},
		{"winning_bid", req.WinningBid},
		{"ebay_fees", req.EbayFees},
	} {
		if amt.value.Valid && amt.value.Decimal.IsNegative() {
			jsonError(w, http.StatusBadRequest, amt.field+": must not be negative")
			return
		}
	}

	l, err := store.UpdateListingMarketplace(r.Context(), h.DB, id, req, h.Now())
	if err != nil {
		storeError(w, err, "failed to update listing")
		return
	}
	jsonResponse(w, http.StatusOK, l)
}
