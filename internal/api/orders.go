package api

import (
	"database/sql"
	"net/http"

	"github.com/MichaelEbbert/ebaysales/internal/db"
	"github.com/MichaelEbbert/ebaysales/internal/model"
	"github.com/MichaelEbbert/ebaysales/internal/store"
)

// OrdersHandler handles order endpoints. Orders are created by the paid
// status change, never directly.
type OrdersHandler struct {
	*Deps
}

type orderRequest struct {
	store.BuyerUpdate
	store.ShippingUpdate
}

// Get handles GET /api/orders/{id}.
func (h *OrdersHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	o, err := store.GetOrder(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, err, "failed to get order")
		return
	}
	jsonResponse(w, http.StatusOK, o)
}

// Update handles PUT /api/orders/{id}. Buyer and tracking fields are
// written together.
func (h *OrdersHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	var req orderRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	now := h.Now()
	var o *model.Order
	err := db.WithTransaction(r.Context(), h.DB, func(tx *sql.Tx) error {
		if _, err := store.UpdateOrderBuyer(r.Context(), tx, id, req.BuyerUpdate, now); err != nil {
			return err
		}
		var err error
		o, err = store.UpdateOrderShipping(r.Context(), tx, id, req.ShippingUpdate, now)
		return err
	})
	if err != nil {
		storeError(w, err, "failed to update order")
		return
	}
	jsonResponse(w, http.StatusOK, o)
}
