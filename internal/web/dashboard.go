package web

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/MichaelEbbert/ebaysales/internal/listing"
	"github.com/MichaelEbbert/ebaysales/internal/model"
	"github.com/MichaelEbbert/ebaysales/internal/store"
)

// Dashboard handles GET /.
func (s *Server) Dashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	counts, err := store.CountListingsByStatus(ctx, s.DB)
	if err != nil {
		slog.Error("failed to count listings for dashboard", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	lists := make(map[model.Status][]model.ListingSummary)
	for _, st := range []model.Status{model.StatusDraft, model.StatusListed, model.StatusEndedSold, model.StatusPaid} {
		lists[st], err = store.ListListingsByStatus(ctx, s.DB, st)
		if err != nil {
			slog.Error("failed to list listings for dashboard", "status", st, "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
	}

	s.Templates.Render(w, "dashboard.html", &struct {
		PageData
		Statuses      []model.Status
		Counts        map[model.Status]int
		NextEnd       time.Time
		Drafts        []model.ListingSummary
		Active        []model.ListingSummary
		SoldUnpaid    []model.ListingSummary
		PaidUnshipped []model.ListingSummary
	}{
		PageData:      PageData{Title: "Dashboard", Authenticated: true},
		Statuses:      model.Statuses,
		Counts:        counts,
		NextEnd:       listing.NextAuctionEndTime(s.Now()),
		Drafts:        lists[model.StatusDraft],
		Active:        lists[model.StatusListed],
		SoldUnpaid:    lists[model.StatusEndedSold],
		PaidUnshipped: lists[model.StatusPaid],
	})
}

// Report handles GET /report, a printable daily action list.
func (s *Server) Report(w http.ResponseWriter, r *http.Request) {
	report, err := store.DailyReport(r.Context(), s.DB, s.Now())
	if err != nil {
		slog.Error("failed to build report", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	s.Templates.Render(w, "report.html", &struct {
		PageData
		Report *store.Report
	}{
		PageData: PageData{Title: "Daily report", Authenticated: true},
		Report:   report,
	})
}

// CardPage handles GET /cards/{id}, showing the generated listing text
// ready to copy into the marketplace.
func (s *Server) CardPage(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}
	ctx := r.Context()

	card, err := store.GetCard(ctx, s.DB, id)
	if errors.Is(err, model.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		slog.Error("failed to get card", "card", id, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	l, err := store.GetListingByCard(ctx, s.DB, id)
	if err != nil && !errors.Is(err, model.ErrNotFound) {
		slog.Error("failed to get listing", "card", id, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	tiers, err := store.LoadShippingTiers(ctx, s.DB)
	if err != nil {
		slog.Error("failed to load shipping tiers", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	data := &struct {
		PageData
		Card         *model.Card
		Listing      *model.Listing
		ListingTitle string
		Description  string
		Tier         listing.Tier
	}{
		PageData: PageData{Title: cardLabel(*card), Authenticated: true},
		Card:     card,
		Listing:  l,
	}

	if data.ListingTitle, err = listing.Title(card); err == nil {
		data.Description, err = listing.GenerateDescription(card, tiers)
	}
	if err == nil {
		data.Tier, err = listing.RecommendTierForCard(tiers, card)
	}
	if err != nil {
		data.Error = err.Error()
	}

	s.Templates.Render(w, "card.html", data)
}
