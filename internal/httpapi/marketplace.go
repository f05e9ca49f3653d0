package httpapi

import (
	"net/http"

	"ecochain-be/internal/apperr"
	"ecochain-be/internal/product"
	"ecochain-be/internal/utils"

	"github.com/go-chi/chi/v5"
)

type setQuantityRequest struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity" validate:"gte=0"`
}

func (a *api) listProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, limit := utils.ParsePage(q.Get("page"), q.Get("limit"))

	var factoryID *uint
	if raw := q.Get("factoryId"); raw != "" {
		id, err := utils.ToUint(raw)
		if err != nil {
			writeError(w, r, apperr.Validation("factoryId", "must be a user id"))
			return
		}
		factoryID = &id
	}

	products, err := a.Products.List(r.Context(), q.Get("search"), factoryID, page, limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"products": products, "page": page, "limit": limit})
}

func (a *api) getProduct(w http.ResponseWriter, r *http.Request) {
	p, err := a.Products.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (a *api) createProduct(w http.ResponseWriter, r *http.Request) {
	var in product.NewProductInput
	if err := decode(r, &in); err != nil {
		writeError(w, r, err)
		return
	}

	p, err := a.Products.Create(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (a *api) getCart(w http.ResponseWriter, r *http.Request) {
	c, err := a.Cart.GetCart(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// setCartItem sets an absolute quantity; zero removes the line.
func (a *api) setCartItem(w http.ResponseWriter, r *http.Request) {
	var in setQuantityRequest
	if err := decode(r, &in); err != nil {
		writeError(w, r, err)
		return
	}

	if err := a.Cart.SetQuantity(r.Context(), in.ProductID, in.Quantity); err != nil {
		writeError(w, r, err)
		return
	}
	a.getCart(w, r)
}

func (a *api) removeCartItem(w http.ResponseWriter, r *http.Request) {
	if err := a.Cart.RemoveItem(r.Context(), chi.URLParam(r, "productId")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
