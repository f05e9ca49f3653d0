package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"ecochain-be/internal/collection"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockReconciler struct {
	mock.Mock
}

func (m *MockReconciler) ReconcilePayout(ctx context.Context, reference string, succeeded bool, providerRef string) error {
	return m.Called(ctx, reference, succeeded, providerRef).Error(0)
}

func payoutBody(status string) *bytes.Buffer {
	body, _ := json.Marshal(map[string]any{
		"event": "payout." + status,
		"data": map[string]any{
			"id":           "disb-1",
			"reference_id": "PAY-1",
			"status":       status,
			"amount":       144,
			"currency":     "INR",
		},
	})
	return bytes.NewBuffer(body)
}

func TestHandler_PayoutWebhookHandler(t *testing.T) {
	const token = "secret-token"

	t.Run("Success_Succeeded", func(t *testing.T) {
		rec := new(MockReconciler)
		h := NewWebhookHandler(rec, token)
		rec.On("ReconcilePayout", mock.Anything, "PAY-1", true, "disb-1").Return(nil)

		req := httptest.NewRequest(http.MethodPost, "/webhooks/xendit/payouts", payoutBody("SUCCEEDED"))
		req.Header.Set("x-callback-token", token)
		w := httptest.NewRecorder()

		h.PayoutWebhookHandler(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		rec.AssertExpectations(t)
	})

	t.Run("Success_Failed", func(t *testing.T) {
		rec := new(MockReconciler)
		h := NewWebhookHandler(rec, token)
		rec.On("ReconcilePayout", mock.Anything, "PAY-1", false, "disb-1").Return(nil)

		req := httptest.NewRequest(http.MethodPost, "/webhooks/xendit/payouts", payoutBody("FAILED"))
		req.Header.Set("x-callback-token", token)
		w := httptest.NewRecorder()

		h.PayoutWebhookHandler(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		rec.AssertExpectations(t)
	})

	t.Run("IntermediateIgnored", func(t *testing.T) {
		rec := new(MockReconciler)
		h := NewWebhookHandler(rec, token)

		req := httptest.NewRequest(http.MethodPost, "/webhooks/xendit/payouts", payoutBody("ACCEPTED"))
		req.Header.Set("x-callback-token", token)
		w := httptest.NewRecorder()

		h.PayoutWebhookHandler(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		rec.AssertNotCalled(t, "ReconcilePayout", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("InvalidToken", func(t *testing.T) {
		rec := new(MockReconciler)
		h := NewWebhookHandler(rec, token)

		req := httptest.NewRequest(http.MethodPost, "/webhooks/xendit/payouts", payoutBody("SUCCEEDED"))
		req.Header.Set("x-callback-token", "wrong")
		w := httptest.NewRecorder()

		h.PayoutWebhookHandler(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("BadJSON", func(t *testing.T) {
		h := NewWebhookHandler(new(MockReconciler), "")

		req := httptest.NewRequest(http.MethodPost, "/webhooks/xendit/payouts", bytes.NewBufferString("{"))
		w := httptest.NewRecorder()

		h.PayoutWebhookHandler(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("UnknownReferenceAcknowledged", func(t *testing.T) {
		rec := new(MockReconciler)
		h := NewWebhookHandler(rec, token)
		rec.On("ReconcilePayout", mock.Anything, "PAY-1", true, "disb-1").Return(collection.ErrNotFound)

		req := httptest.NewRequest(http.MethodPost, "/webhooks/xendit/payouts", payoutBody("SUCCEEDED"))
		req.Header.Set("x-callback-token", token)
		w := httptest.NewRecorder()

		h.PayoutWebhookHandler(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("ReconcileError", func(t *testing.T) {
		rec := new(MockReconciler)
		h := NewWebhookHandler(rec, token)
		rec.On("ReconcilePayout", mock.Anything, "PAY-1", true, "disb-1").Return(errors.New("db down"))

		req := httptest.NewRequest(http.MethodPost, "/webhooks/xendit/payouts", payoutBody("SUCCEEDED"))
		req.Header.Set("x-callback-token", token)
		w := httptest.NewRecorder()

		h.PayoutWebhookHandler(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}
