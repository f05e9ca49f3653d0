package webhook

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"ecochain-be/internal/collection"
	"ecochain-be/internal/logger"
	"ecochain-be/internal/utils"

	"go.uber.org/zap"
)

const maxBodyBytes = 64 << 10

// Reconciler records the final outcome of a collector payout.
type Reconciler interface {
	ReconcilePayout(ctx context.Context, reference string, succeeded bool, providerRef string) error
}

// PayoutPayload is the body Xendit posts when a payout settles.
type PayoutPayload struct {
	Event string `json:"event"`
	Data  struct {
		ID            string `json:"id"`
		ReferenceID   string `json:"reference_id"`
		Status        string `json:"status"`
		Amount        int64  `json:"amount"`
		Currency      string `json:"currency"`
		FailureCode   string `json:"failure_code,omitempty"`
		EstimatedTime string `json:"estimated_arrival_time,omitempty"`
	} `json:"data"`
}

type Handler struct {
	reconciler    Reconciler
	callbackToken string
}

func NewWebhookHandler(reconciler Reconciler, callbackToken string) *Handler {
	return &Handler{reconciler: reconciler, callbackToken: callbackToken}
}

func (h *Handler) verify(r *http.Request) error {
	if h.callbackToken == "" {
		return nil
	}
	got := r.Header.Get("x-callback-token")
	if subtle.ConstantTimeCompare([]byte(got), []byte(h.callbackToken)) != 1 {
		return errors.New("invalid callback token")
	}
	return nil
}

// PayoutWebhookHandler accepts SUCCEEDED, FAILED, REVERSED and CANCELLED
// payout callbacks. Intermediate states are acknowledged and ignored.
func (h *Handler) PayoutWebhookHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromCtx(ctx).With(zap.String("handler", "PayoutWebhook"))

	if err := h.verify(r); err != nil {
		log.Warn("rejecting payout callback", zap.Error(err))
		utils.WriteJSONError(w, "invalid signature", http.StatusUnauthorized)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		utils.WriteJSONError(w, "failed to read body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	var payload PayoutPayload
	if err := json.Unmarshal(body, &payload); err != nil || payload.Data.ReferenceID == "" {
		utils.WriteJSONError(w, "invalid JSON payload", http.StatusBadRequest)
		return
	}

	log = log.With(
		zap.String("reference", payload.Data.ReferenceID),
		zap.String("status", payload.Data.Status),
	)

	var succeeded bool
	switch strings.ToUpper(payload.Data.Status) {
	case "SUCCEEDED":
		succeeded = true
	case "FAILED", "REVERSED", "CANCELLED":
		succeeded = false
	default:
		log.Debug("ignoring intermediate payout status")
		w.WriteHeader(http.StatusOK)
		return
	}

	if err := h.reconciler.ReconcilePayout(ctx, payload.Data.ReferenceID, succeeded, payload.Data.ID); err != nil {
		log.Error("failed to reconcile payout", zap.Error(err))
		// Xendit retries non-2xx callbacks; an unknown reference never resolves.
		if errors.Is(err, collection.ErrNotFound) {
			w.WriteHeader(http.StatusOK)
			return
		}
		utils.WriteJSONError(w, "failed to update payout", http.StatusInternalServerError)
		return
	}

	log.Info("payout callback processed", zap.String("failure_code", payload.Data.FailureCode))
	utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
