package payout

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"ecochain-be/internal/apperr"
	"ecochain-be/internal/logger"
	"ecochain-be/internal/retry"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const defaultPayoutsURL = "https://api.xendit.co/v2/payouts"

type xenditGateway struct {
	apiKey     string
	url        string
	httpClient *http.Client
	policy     retry.Policy
}

func NewXenditGateway(apiKey, url string, policy retry.Policy) Gateway {
	if apiKey == "" {
		logger.L().Warn("Xendit API key is empty, collector payouts will fail")
	}
	if url == "" {
		url = defaultPayoutsURL
	}

	return &xenditGateway{
		apiKey: apiKey,
		url:    url,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		policy: policy,
	}
}

func channelFor(m Method) string {
	switch m {
	case MethodUPI:
		return "IN_UPI"
	case MethodCash:
		return "IN_CASH"
	}
	return "IN_BANK_TRANSFER"
}

// Disburse sends one payout. All attempts share an idempotency key so a retry
// after a lost response cannot pay twice.
func (x *xenditGateway) Disburse(ctx context.Context, req Request) (*Result, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("method", "Disburse"),
		zap.String("reference", req.Reference),
		zap.String("collection_id", req.CollectionID),
		zap.Int64("amount", req.Amount),
	)

	if req.Amount <= 0 {
		return nil, apperr.Validation("amount", "must be positive")
	}

	body, err := json.Marshal(xenditPayoutRequest{
		ReferenceID: req.Reference,
		ChannelCode: channelFor(req.Method),
		ChannelProperties: map[string]string{
			"account_holder_name": "collector-" + strconv.FormatUint(uint64(req.CollectorID), 10),
		},
		Amount:      req.Amount,
		Currency:    "INR",
		Description: req.Description,
		Metadata: map[string]any{
			"collection_id": req.CollectionID,
			"collector_id":  req.CollectorID,
		},
	})
	if err != nil {
		log.Error("failed to marshal payout request", zap.Error(err))
		return nil, err
	}

	idempotencyKey := uuid.NewString()
	var res xenditPayoutResponse

	err = retry.Do(ctx, "xendit.payout", x.policy, func(ctx context.Context) error {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, x.url, bytes.NewReader(body))
		if err != nil {
			return apperr.Permanent(err)
		}
		httpReq.SetBasicAuth(x.apiKey, "")
		httpReq.Header.Add("Content-Type", "application/json")
		httpReq.Header.Add("Idempotency-key", idempotencyKey)

		resp, err := x.httpClient.Do(httpReq)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		bodyBytes, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("failed to read xendit response: %w", err)
		}

		switch {
		case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
			log.Warn("xendit payout unavailable",
				zap.Int("status", resp.StatusCode),
				zap.ByteString("response", bodyBytes),
			)
			return fmt.Errorf("xendit status %d", resp.StatusCode)
		case resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated:
			log.Error("xendit rejected payout",
				zap.Int("status", resp.StatusCode),
				zap.ByteString("response", bodyBytes),
			)
			return apperr.Permanent(fmt.Errorf("xendit error: %s", string(bodyBytes)))
		}

		if err := json.Unmarshal(bodyBytes, &res); err != nil {
			return apperr.Permanent(fmt.Errorf("decode xendit response: %w", err))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info("xendit payout created",
		zap.String("payout_id", res.ID),
		zap.String("status", res.Status),
	)

	return &Result{ProviderReference: res.ID, Status: res.Status}, nil
}
