package api

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/MichaelEbbert/ebaysales/internal/db"
	"github.com/MichaelEbbert/ebaysales/internal/listing"
	"github.com/MichaelEbbert/ebaysales/internal/store"
)

// SettingsHandler handles the shipping tariff settings.
type SettingsHandler struct {
	*Deps
}

type shippingSettings struct {
	Tiers      []listing.Tier     `json:"tiers"`
	Thresholds listing.Thresholds `json:"thresholds"`
}

// GetShipping handles GET /api/settings/shipping.
func (h *SettingsHandler) GetShipping(w http.ResponseWriter, r *http.Request) {
	tiers, err := store.LoadShippingTiers(r.Context(), h.DB)
	if err != nil {
		storeError(w, err, "failed to load shipping tiers")
		return
	}
	th, err := store.LoadThresholds(r.Context(), h.DB)
	if err != nil {
		storeError(w, err, "failed to load thresholds")
		return
	}
	jsonResponse(w, http.StatusOK, shippingSettings{Tiers: tiers, Thresholds: th})
}

// PutShipping handles PUT /api/settings/shipping. The saved table replaces
// the current one wholesale.
func (h *SettingsHandler) PutShipping(w http.ResponseWriter, r *http.Request) {
	var req shippingSettings
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := listing.ValidateTiers(req.Tiers); err != nil {
		storeError(w, err, "invalid tiers")
		return
	}
	if err := req.Thresholds.Validate(); err != nil {
		storeError(w, err, "invalid thresholds")
		return
	}

	err := db.WithTransaction(r.Context(), h.DB, func(tx *sql.Tx) error {
		if err := store.SaveShippingTiers(r.Context(), tx, req.Tiers); err != nil {
			return err
		}
		return store.SaveThresholds(r.Context(), tx, req.Thresholds)
	})
	if err != nil {
		storeError(w, err, "failed to save shipping settings")
		return
	}

	slog.Info("shipping settings updated", "tiers", len(req.Tiers))
	jsonResponse(w, http.StatusOK, req)
}
