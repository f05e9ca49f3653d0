package collection

import (
	"strings"
	"time"

	"ecochain-be/internal/payout"
	"ecochain-be/internal/valuation"
)

type Status string

const (
	StatusRequested  Status = "requested"
	StatusScheduled  Status = "scheduled"
	StatusInProgress Status = "in_progress"
	StatusCollected  Status = "collected"
	StatusCompleted  Status = "completed"
	StatusRejected   Status = "rejected"

	// admin-set aliases of completed
	StatusDelivered Status = "delivered"
	StatusVerified  Status = "verified"
)

// ParseStatus accepts the lifecycle names and the completed aliases. Aliases
// are folded into completed so history shows one terminal state.
func ParseStatus(s string) (Status, bool) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	switch st {
	case StatusRequested, StatusScheduled, StatusInProgress,
		StatusCollected, StatusCompleted, StatusRejected:
		return st, true
	case StatusDelivered, StatusVerified:
		return StatusCompleted, true
	}
	return "", false
}

type Submission struct {
	ID              string                  `json:"id"`
	UserID          uint                    `json:"userId"`
	CollectorID     *uint                   `json:"collectorId,omitempty"`
	Category        valuation.WasteCategory `json:"type"`
	WeightKg        float64                 `json:"weight"`
	Quality         valuation.QualityTier   `json:"quality"`
	Status          Status                  `json:"status"`
	EstimatedTokens int64                   `json:"estimatedTokens"`
	Payment         int64                   `json:"payment"`
	PickupAddress   string                  `json:"pickupAddress"`
	ScheduledAt     *time.Time              `json:"scheduledAt,omitempty"`
	CollectedAt     *time.Time              `json:"collectedAt,omitempty"`
	AdminNotes      *string                 `json:"adminNotes,omitempty"`
	CreatedAt       time.Time               `json:"createdAt"`
	UpdatedAt       time.Time               `json:"updatedAt"`
}

// decorate fills the derived payment figure. Every read path goes through it.
func (s *Submission) decorate() *Submission {
	s.Payment = valuation.ComputePayment(s.Category, s.WeightKg, s.Quality)
	return s
}

type PaymentStatus string

const (
	PaymentPendingTransfer PaymentStatus = "pending_transfer"
	PaymentTransferred     PaymentStatus = "transferred"
	PaymentFailed          PaymentStatus = "failed"
)

type PaymentRecord struct {
	ID                int64                   `json:"id"`
	CollectionID      string                  `json:"collectionId"`
	CollectorID       uint                    `json:"collectorId"`
	UserID            uint                    `json:"userId"`
	Amount            int64                   `json:"amount"`
	TokensAwarded     int64                   `json:"tokensAwarded"`
	Method            payout.Method           `json:"method"`
	Status            PaymentStatus           `json:"status"`
	Reference         string                  `json:"reference"`
	ProviderReference *string                 `json:"providerReference,omitempty"`
	AdminNotes        *string                 `json:"adminNotes,omitempty"`
	Category          valuation.WasteCategory `json:"type,omitempty"`
	WeightKg          float64                 `json:"weight,omitempty"`
	Quality           valuation.QualityTier   `json:"quality,omitempty"`
	CreatedAt         time.Time               `json:"createdAt"`
}

type CreateInput struct {
	Category      string  `json:"type" validate:"required"`
	WeightKg      float64 `json:"weight" validate:"gte=0"`
	Quality       string  `json:"quality"`
	PickupAddress string  `json:"pickupAddress" validate:"required"`
}

type SettleInput struct {
	ApproveCollection bool   `json:"approveCollection"`
	PaymentMethod     string `json:"paymentMethod"`
	AdminNotes        string `json:"adminNotes"`
}

type SettleResult struct {
	Submission    *Submission    `json:"collection"`
	Payment       *PaymentRecord `json:"payment,omitempty"`
	TokensAwarded int64          `json:"tokensAwarded"`
}

type Filter struct {
	Status      Status
	UserID      *uint
	CollectorID *uint
	Unassigned  bool
	Limit       int
	Offset      int
}

type PaymentFilter struct {
	CollectorID *uint
	Status      PaymentStatus
	Limit       int
	Offset      int
}
