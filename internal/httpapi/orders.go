package httpapi

import (
	"net/http"

	"ecochain-be/internal/order"
	"ecochain-be/internal/utils"

	"github.com/go-chi/chi/v5"
)

type statusRequest struct {
	Status string `json:"status" validate:"required"`
	Note   string `json:"note" validate:"max=500"`
}

func (a *api) quoteOrder(w http.ResponseWriter, r *http.Request) {
	var in order.QuoteInput
	if err := decode(r, &in); err != nil {
		writeError(w, r, err)
		return
	}

	q, err := a.Orders.Quote(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

func (a *api) placeOrder(w http.ResponseWriter, r *http.Request) {
	var in order.PlaceOrderInput
	if err := decode(r, &in); err != nil {
		writeError(w, r, err)
		return
	}

	o, err := a.Orders.PlaceOrder(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, o)
}

func (a *api) listOrders(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, limit := utils.ParsePage(q.Get("page"), q.Get("limit"))

	orders, err := a.Orders.ListOrders(r.Context(), q.Get("status"), page, limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"orders": orders, "page": page, "limit": limit})
}

func (a *api) getOrder(w http.ResponseWriter, r *http.Request) {
	o, err := a.Orders.GetOrder(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (a *api) updateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var in statusRequest
	if err := decode(r, &in); err != nil {
		writeError(w, r, err)
		return
	}

	o, err := a.Orders.UpdateStatus(r.Context(), chi.URLParam(r, "id"), in.Status, in.Note)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}
