package httpapi

import (
	"net/http"

	"ecochain-be/internal/apperr"
	"ecochain-be/internal/utils"

	"github.com/go-chi/chi/v5"
)

func walletOwner(r *http.Request) (uint, error) {
	raw := chi.URLParam(r, "id")
	if raw == "me" {
		id, _ := utils.GetUserIDFromContext(r.Context())
		return id, nil
	}
	id, err := utils.ToUint(raw)
	if err != nil {
		return 0, apperr.Validation("id", "must be a user id")
	}
	return id, nil
}

func (a *api) getWallet(w http.ResponseWriter, r *http.Request) {
	userID, err := walletOwner(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	wal, err := a.Wallets.GetWallet(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, wal)
}

func (a *api) walletTransactions(w http.ResponseWriter, r *http.Request) {
	userID, err := walletOwner(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	page, limit := utils.ParsePage(r.URL.Query().Get("page"), r.URL.Query().Get("limit"))

	res, err := a.Wallets.Transactions(r.Context(), userID, page, limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
