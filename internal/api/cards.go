package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/MichaelEbbert/ebaysales/internal/listing"
	"github.com/MichaelEbbert/ebaysales/internal/model"
	"github.com/MichaelEbbert/ebaysales/internal/store"
)

// CardsHandler handles card CRUD and listing previews.
type CardsHandler struct {
	*Deps
}

type cardRequest struct {
	Category       string           `json:"category"`
	Name           string           `json:"name"`
	SetName        string           `json:"set_name"`
	CardNumber     string           `json:"card_number"`
	PlayerName     string           `json:"player_name"`
	Year           string           `json:"year"`
	Condition      string           `json:"condition"`
	Graded         bool             `json:"graded"`
	GradingCompany string           `json:"grading_company"`
	Grade          string           `json:"grade"`
	Finish         string           `json:"finish"`
	Quantity       *int             `json:"quantity"`
	StartingBid    *decimal.Decimal `json:"starting_bid"`
	Notes          string           `json:"notes"`
	PrivateNotes   string           `json:"private_notes"`
	ImageFront     string           `json:"image_front"`
	ImageBack      string           `json:"image_back"`
}

// apply copies the request onto c, filling defaults for omitted quantity
// and starting bid.
func (req *cardRequest) apply(c *model.Card) error {
	category, err := model.ParseCategory(req.Category)
	if err != nil {
		return err
	}
	c.Category = category
	c.Name = req.Name
	c.SetName = req.SetName
	c.CardNumber = req.CardNumber
	c.PlayerName = req.PlayerName
	c.Year = req.Year
	c.Condition = req.Condition
	c.Graded = req.Graded
	c.GradingCompany = req.GradingCompany
	c.Grade = req.Grade
	c.Finish = req.Finish
	c.Quantity = 1
	if req.Quantity != nil {
		c.Quantity = *req.Quantity
	}
	c.StartingBid = model.DefaultStartingBid
	if req.StartingBid != nil {
		c.StartingBid = *req.StartingBid
	}
	c.Notes = req.Notes
	c.PrivateNotes = req.PrivateNotes
	return nil
}

type cardResponse struct {
	Card    *model.Card    `json:"card"`
	Listing *model.Listing `json:"listing,omitempty"`
	Order   *model.Order   `json:"order,omitempty"`
}

// checkImages rejects references to files that were never uploaded.
func (h *CardsHandler) checkImages(names ...string) error {
	for _, name := range names {
		if name != "" && !h.Uploads.Exists(name) {
			return &model.ValidationError{Field: "image", Message: "unknown upload " + name}
		}
	}
	return nil
}

// List handles GET /api/cards.
func (h *CardsHandler) List(w http.ResponseWriter, r *http.Request) {
	cards, err := store.ListCards(r.Context(), h.DB)
	if err != nil {
		storeError(w, err, "failed to list cards")
		return
	}
	if cards == nil {
		cards = []model.Card{}
	}
	jsonResponse(w, http.StatusOK, cards)
}

// Create handles POST /api/cards. The card is stored with a draft listing.
func (h *CardsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req cardRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	c := &model.Card{ImageFront: req.ImageFront, ImageBack: req.ImageBack}
	if err := req.apply(c); err != nil {
		storeError(w, err, "invalid card")
		return
	}
	if err := h.checkImages(c.ImageFront, c.ImageBack); err != nil {
		storeError(w, err, "invalid card")
		return
	}

	card, l, err := store.CreateCardWithListing(r.Context(), h.DB, c, h.Now())
	if err != nil {
		storeError(w, err, "failed to create card")
		return
	}

	slog.Info("card created", "card", card.ID, "listing", l.ID, "ends", l.ScheduledEndTime)
	jsonResponse(w, http.StatusCreated, cardResponse{Card: card, Listing: l})
}

// Get handles GET /api/cards/{id}.
func (h *CardsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid card id")
		return
	}

	card, err := store.GetCard(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, err, "failed to get card")
		return
	}
	resp := cardResponse{Card: card}

	l, err := store.GetListingByCard(r.Context(), h.DB, id)
	if err != nil && !errors.Is(err, model.ErrNotFound) {
		storeError(w, err, "failed to get listing")
		return
	}
	if l != nil {
		resp.Listing = l
		o, err := store.GetOrderByListing(r.Context(), h.DB, l.ID)
		if err != nil && !errors.Is(err, model.ErrNotFound) {
			storeError(w, err, "failed to get order")
			return
		}
		resp.Order = o
	}

	jsonResponse(w, http.StatusOK, resp)
}

// Update handles PUT /api/cards/{id}. Image fields replace the stored
// references only when present in the request.
func (h *CardsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid card id")
		return
	}

	var req cardRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	card, err := store.GetCard(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, err, "failed to get card")
		return
	}
	if err := req.apply(card); err != nil {
		storeError(w, err, "invalid card")
		return
	}
	if err := h.checkImages(req.ImageFront, req.ImageBack); err != nil {
		storeError(w, err, "invalid card")
		return
	}
	if err := store.UpdateCard(r.Context(), h.DB, card); err != nil {
		storeError(w, err, "failed to update card")
		return
	}

	var front, back *string
	if req.ImageFront != "" {
		front = &req.ImageFront
	}
	if req.ImageBack != "" {
		back = &req.ImageBack
	}
	if front != nil || back != nil {
		if err := store.SetCardImages(r.Context(), h.DB, id, front, back); err != nil {
			storeError(w, err, "failed to update card images")
			return
		}
	}

	card, err = store.GetCard(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, err, "failed to get card")
		return
	}
	slog.Info("card updated", "card", id)
	jsonResponse(w, http.StatusOK, cardResponse{Card: card})
}

// Delete handles DELETE /api/cards/{id}. Only cards whose listing is still
// a draft can be deleted.
func (h *CardsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid card id")
		return
	}

	if err := store.DeleteCard(r.Context(), h.DB, id); err != nil {
		storeError(w, err, "failed to delete card")
		return
	}

	slog.Info("card deleted", "card", id)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "card deleted"})
}

type previewResponse struct {
	Title           string         `json:"title"`
	Description     string         `json:"description"`
	RecommendedTier listing.Tier   `json:"recommended_tier"`
	Tiers           []listing.Tier `json:"tiers"`
}

// Preview handles GET /api/cards/{id}/preview. Once an order has a sale
// price the tier is picked from it; before that the starting bid decides.
func (h *CardsHandler) Preview(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid card id")
		return
	}
	ctx := r.Context()

	card, err := store.GetCard(ctx, h.DB, id)
	if err != nil {
		storeError(w, err, "failed to get card")
		return
	}
	tiers, err := store.LoadShippingTiers(ctx, h.DB)
	if err != nil {
		storeError(w, err, "failed to load shipping tiers")
		return
	}

	title, err := listing.Title(card)
	if err != nil {
		storeError(w, err, "failed to build title")
		return
	}
	description, err := listing.GenerateDescription(card, tiers)
	if err != nil {
		storeError(w, err, "failed to build description")
		return
	}

	tier, err := h.recommend(r, card, tiers)
	if err != nil {
		storeError(w, err, "failed to recommend tier")
		return
	}

	jsonResponse(w, http.StatusOK, previewResponse{
		Title:           title,
		Description:     description,
		RecommendedTier: tier,
		Tiers:           tiers,
	})
}

func (h *CardsHandler) recommend(r *http.Request, card *model.Card, tiers []listing.Tier) (listing.Tier, error) {
	ctx := r.Context()
	l, err := store.GetListingByCard(ctx, h.DB, card.ID)
	if errors.Is(err, model.ErrNotFound) {
		return listing.RecommendTierForCard(tiers, card)
	}
	if err != nil {
		return listing.Tier{}, err
	}
	o, err := store.GetOrderByListing(ctx, h.DB, l.ID)
	if errors.Is(err, model.ErrNotFound) || (err == nil && !o.SalePrice.Valid) {
		return listing.RecommendTierForCard(tiers, card)
	}
	if err != nil {
		return listing.Tier{}, err
	}

	th, err := store.LoadThresholds(ctx, h.DB)
	if err != nil {
		return listing.Tier{}, err
	}
	return listing.RecommendTier(tiers, o.SalePrice.Decimal, th)
}
