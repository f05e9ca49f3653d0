package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"ecochain-be/internal/apperr"
	"ecochain-be/internal/collection"
	"ecochain-be/internal/utils"
	"ecochain-be/internal/valuation"

	"github.com/go-chi/chi/v5"
)

type acceptRequest struct {
	ScheduledAt *time.Time `json:"scheduledAt"`
}

type collectRequest struct {
	ActualWeightKg *float64 `json:"actualWeight" validate:"omitempty,gte=0"`
}

func (a *api) listCollections(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, limit := utils.ParsePage(q.Get("page"), q.Get("limit"))

	subs, err := a.Collections.List(r.Context(), q.Get("status"), page, limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"collections": subs, "page": page, "limit": limit})
}

func (a *api) createCollection(w http.ResponseWriter, r *http.Request) {
	var in collection.CreateInput
	if err := decode(r, &in); err != nil {
		writeError(w, r, err)
		return
	}

	sub, err := a.Collections.Create(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, sub)
}

func (a *api) estimateCollection(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var weight float64
	if raw := q.Get("weight"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			writeError(w, r, apperr.Validation("weight", "must be a number"))
			return
		}
		weight = v
	}

	quote, err := a.Collections.Estimate(q.Get("type"), weight, q.Get("quality"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, quote)
}

func (a *api) collectionRates(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, valuation.RateCard())
}

func (a *api) getCollection(w http.ResponseWriter, r *http.Request) {
	sub, err := a.Collections.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

func (a *api) acceptCollection(w http.ResponseWriter, r *http.Request) {
	var in acceptRequest
	if err := decodeOptional(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	var at time.Time
	if in.ScheduledAt != nil {
		at = *in.ScheduledAt
	}

	sub, err := a.Collections.Accept(r.Context(), chi.URLParam(r, "id"), at)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

func (a *api) startCollection(w http.ResponseWriter, r *http.Request) {
	sub, err := a.Collections.Start(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

func (a *api) markCollected(w http.ResponseWriter, r *http.Request) {
	var in collectRequest
	if err := decodeOptional(r, &in); err != nil {
		writeError(w, r, err)
		return
	}

	sub, err := a.Collections.MarkCollected(r.Context(), chi.URLParam(r, "id"), in.ActualWeightKg)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

func (a *api) settlePayment(w http.ResponseWriter, r *http.Request) {
	var in collection.SettleInput
	if err := decode(r, &in); err != nil {
		writeError(w, r, err)
		return
	}

	res, err := a.Collections.SettlePayment(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (a *api) listPayments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, limit := utils.ParsePage(q.Get("page"), q.Get("limit"))

	recs, err := a.Collections.ListPayments(r.Context(), collection.PaymentFilter{
		Status: collection.PaymentStatus(q.Get("status")),
		Limit:  limit,
		Offset: (page - 1) * limit,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"payments": recs, "page": page, "limit": limit})
}

func (a *api) collectionQR(w http.ResponseWriter, r *http.Request) {
	png, err := a.Collections.PickupQR(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "private, max-age=300")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}
