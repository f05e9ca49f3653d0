package payout

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"testing"
	"time"

	"ecochain-be/internal/apperr"
	"ecochain-be/internal/retry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockRoundTripper allows us to mock the HTTP response
type MockRoundTripper func(req *http.Request) *http.Response

func (f MockRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req), nil
}

type MockRoundTripperWithError func(req *http.Request) (*http.Response, error)

func (f MockRoundTripperWithError) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func response(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewBufferString(body)),
		Header:     make(http.Header),
	}
}

func newTestGateway(t *testing.T) (*xenditGateway, *[]time.Duration) {
	t.Helper()
	var waits []time.Duration
	policy := retry.Policy{Attempts: 3, BaseDelay: time.Second}.WithSleep(
		func(_ context.Context, d time.Duration) error {
			waits = append(waits, d)
			return nil
		},
	)
	gw := NewXenditGateway("test-secret", "https://payouts.test/v2/payouts", policy).(*xenditGateway)
	return gw, &waits
}

func sampleRequest() Request {
	return Request{
		Reference:    "PAY-1",
		CollectionID: "c-1",
		CollectorID:  4,
		Amount:       144,
		Method:       MethodUPI,
	}
}

func TestXenditGateway_Disburse(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		gw, waits := newTestGateway(t)

		gw.httpClient.Transport = MockRoundTripper(func(req *http.Request) *http.Response {
			assert.Equal(t, http.MethodPost, req.Method)
			assert.Equal(t, "https://payouts.test/v2/payouts", req.URL.String())

			user, _, ok := req.BasicAuth()
			assert.True(t, ok)
			assert.Equal(t, "test-secret", user)
			assert.NotEmpty(t, req.Header.Get("Idempotency-key"))

			var body xenditPayoutRequest
			assert.NoError(t, json.NewDecoder(req.Body).Decode(&body))
			assert.Equal(t, int64(144), body.Amount)
			assert.Equal(t, "INR", body.Currency)
			assert.Equal(t, "IN_UPI", body.ChannelCode)

			return response(http.StatusOK, `{"id":"disb-1","reference_id":"PAY-1","status":"ACCEPTED","amount":144}`)
		})

		res, err := gw.Disburse(context.Background(), sampleRequest())
		require.NoError(t, err)
		assert.Equal(t, "disb-1", res.ProviderReference)
		assert.Equal(t, "ACCEPTED", res.Status)
		assert.Empty(t, *waits)
	})

	t.Run("RetriesServerErrorsWithSameKey", func(t *testing.T) {
		gw, waits := newTestGateway(t)

		var keys []string
		gw.httpClient.Transport = MockRoundTripper(func(req *http.Request) *http.Response {
			keys = append(keys, req.Header.Get("Idempotency-key"))
			if len(keys) < 3 {
				return response(http.StatusServiceUnavailable, `{"error_code":"SERVER_ERROR"}`)
			}
			return response(http.StatusOK, `{"id":"disb-2","status":"ACCEPTED"}`)
		})

		res, err := gw.Disburse(context.Background(), sampleRequest())
		require.NoError(t, err)
		assert.Equal(t, "disb-2", res.ProviderReference)
		assert.Len(t, keys, 3)
		assert.Equal(t, keys[0], keys[2])
		assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second}, *waits)
	})

	t.Run("NetworkErrorAfterAttempts", func(t *testing.T) {
		gw, _ := newTestGateway(t)

		calls := 0
		gw.httpClient.Transport = MockRoundTripperWithError(func(req *http.Request) (*http.Response, error) {
			calls++
			return nil, errors.New("connection refused")
		})

		_, err := gw.Disburse(context.Background(), sampleRequest())
		var nerr *apperr.NetworkError
		require.True(t, errors.As(err, &nerr))
		assert.Equal(t, 3, nerr.Attempts)
		assert.Equal(t, 3, calls)
	})

	t.Run("ClientErrorNotRetried", func(t *testing.T) {
		gw, waits := newTestGateway(t)

		calls := 0
		gw.httpClient.Transport = MockRoundTripper(func(req *http.Request) *http.Response {
			calls++
			return response(http.StatusBadRequest, `{"error_code":"INVALID_ACCOUNT"}`)
		})

		_, err := gw.Disburse(context.Background(), sampleRequest())
		assert.Error(t, err)
		assert.Equal(t, 1, calls)
		assert.Empty(t, *waits)
	})

	t.Run("ZeroAmount", func(t *testing.T) {
		gw, _ := newTestGateway(t)
		req := sampleRequest()
		req.Amount = 0

		_, err := gw.Disburse(context.Background(), req)
		var verr *apperr.ValidationError
		assert.True(t, errors.As(err, &verr))
	})
}

func TestParseMethod(t *testing.T) {
	assert.Equal(t, MethodUPI, ParseMethod("upi"))
	assert.Equal(t, MethodCash, ParseMethod("cash"))
	assert.Equal(t, MethodBankTransfer, ParseMethod("cheque"))
}
