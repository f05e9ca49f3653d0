package collection

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"ecochain-be/internal/apperr"
	"ecochain-be/internal/logger"
	"ecochain-be/internal/metrics"
	"ecochain-be/internal/payout"
	"ecochain-be/internal/realtime"
	"ecochain-be/internal/utils"
	"ecochain-be/internal/valuation"

	"github.com/skip2/go-qrcode"
	"go.uber.org/zap"
)

const qrSize = 256

type Service interface {
	Create(ctx context.Context, input CreateInput) (*Submission, error)
	Estimate(category string, weightKg float64, quality string) (valuation.Quote, error)
	Get(ctx context.Context, id string) (*Submission, error)
	List(ctx context.Context, status string, page, limit int) ([]*Submission, error)

	Accept(ctx context.Context, id string, scheduledAt time.Time) (*Submission, error)
	Start(ctx context.Context, id string) (*Submission, error)
	MarkCollected(ctx context.Context, id string, actualWeightKg *float64) (*Submission, error)

	SettlePayment(ctx context.Context, id string, input SettleInput) (*SettleResult, error)
	ListPayments(ctx context.Context, f PaymentFilter) ([]*PaymentRecord, error)
	PickupQR(ctx context.Context, id string) ([]byte, error)

	ReconcilePayout(ctx context.Context, reference string, succeeded bool, providerRef string) error
}

type service struct {
	repo      Repository
	gateway   payout.Gateway
	publisher realtime.Publisher
	now       func() time.Time
}

func NewService(repo Repository, gateway payout.Gateway, publisher realtime.Publisher) Service {
	return &service{
		repo:      repo,
		gateway:   gateway,
		publisher: publisher,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func validateWeight(field string, w float64) error {
	if math.IsNaN(w) || math.IsInf(w, 0) || w < 0 {
		return apperr.Validation(field, "must be a non-negative number")
	}
	return nil
}

func (s *service) Estimate(category string, weightKg float64, quality string) (valuation.Quote, error) {
	if err := validateWeight("weight", weightKg); err != nil {
		return valuation.Quote{}, err
	}
	return valuation.Estimate(valuation.ParseCategory(category), weightKg, valuation.ParseTier(quality)), nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*Submission, error) {
	log := logger.FromCtx(ctx).With(zap.String("method", "Collection.Create"))

	userID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		return nil, ErrUserNotAuthenticated
	}

	if strings.TrimSpace(input.Category) == "" {
		return nil, apperr.Validation("type", "is required")
	}
	if err := validateWeight("weight", input.WeightKg); err != nil {
		return nil, err
	}
	address := strings.TrimSpace(input.PickupAddress)
	if address == "" {
		return nil, apperr.Validation("pickupAddress", "is required")
	}

	category := valuation.ParseCategory(input.Category)
	tier := valuation.ParseTier(input.Quality)

	sub := &Submission{
		UserID:          userID,
		Category:        category,
		WeightKg:        input.WeightKg,
		Quality:         tier,
		Status:          StatusRequested,
		EstimatedTokens: valuation.EstimateTokens(category, input.WeightKg, tier),
		PickupAddress:   address,
	}

	if err := s.repo.Create(ctx, sub); err != nil {
		log.Error("failed to create collection", zap.Error(err))
		return nil, ErrFailedCreate
	}

	s.publish(ctx, realtime.EventGarbageCollection, "created", sub.ID, realtime.Audience{
		Roles:   []string{utils.RoleCollector},
		UserIDs: []uint{sub.UserID},
	})
	log.Info("collection requested",
		zap.String("collection_id", sub.ID),
		zap.String("category", string(category)),
		zap.Float64("weight_kg", sub.WeightKg),
		zap.Int64("estimated_tokens", sub.EstimatedTokens),
	)
	return sub.decorate(), nil
}

// canView allows the submitter, the assigned collector and admins.
func canView(ctx context.Context, sub *Submission) bool {
	if utils.IsAdmin(ctx) {
		return true
	}
	callerID, _ := utils.GetUserIDFromContext(ctx)
	if sub.UserID == callerID {
		return true
	}
	if utils.HasRole(ctx, utils.RoleCollector) {
		return sub.CollectorID == nil || *sub.CollectorID == callerID
	}
	return false
}

func (s *service) Get(ctx context.Context, id string) (*Submission, error) {
	if _, ok := utils.GetUserIDFromContext(ctx); !ok {
		return nil, ErrUserNotAuthenticated
	}

	sub, err := s.repo.GetByID(ctx, id)
	if err != nil {
		logger.FromCtx(ctx).Error("failed to get collection", zap.String("collection_id", id), zap.Error(err))
		return nil, ErrFailedList
	}
	if sub == nil || !canView(ctx, sub) {
		return nil, ErrNotFound
	}
	return sub.decorate(), nil
}

// List scopes results by role: users see their own submissions, collectors
// see their jobs plus open requests, admins see everything. Every row carries
// the same payment figure the settlement path will pay.
func (s *service) List(ctx context.Context, status string, page, limit int) ([]*Submission, error) {
	userID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		return nil, ErrUserNotAuthenticated
	}

	f := Filter{Limit: limit, Offset: (page - 1) * limit}
	if status != "" {
		st, ok := ParseStatus(status)
		if !ok {
			return nil, apperr.Validation("status", "unknown collection status")
		}
		f.Status = st
	}

	switch {
	case utils.IsAdmin(ctx):
	case utils.HasRole(ctx, utils.RoleCollector):
		if f.Status == StatusRequested {
			f.Unassigned = true
		} else {
			f.CollectorID = &userID
		}
	default:
		f.UserID = &userID
	}

	subs, err := s.repo.List(ctx, f)
	if err != nil {
		logger.FromCtx(ctx).Error("failed to list collections", zap.Error(err))
		return nil, ErrFailedList
	}

	out := make([]*Submission, 0, len(subs))
	for _, sub := range subs {
		out = append(out, sub.decorate())
	}
	return out, nil
}

func requireCollector(ctx context.Context) (uint, error) {
	id, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		return 0, ErrUserNotAuthenticated
	}
	if !utils.HasRole(ctx, utils.RoleCollector) {
		return 0, apperr.Forbidden("collector role required")
	}
	return id, nil
}

// afterTransition turns a guarded update result into the fresh record, or
// into not-found / invalid-transition when the guard did not match.
func (s *service) afterTransition(ctx context.Context, id string, updated bool, err error, change string) (*Submission, error) {
	log := logger.FromCtx(ctx).With(zap.String("collection_id", id), zap.String("change", change))

	if err != nil {
		log.Error("failed to update collection", zap.Error(err))
		return nil, ErrFailedUpdate
	}

	sub, gerr := s.repo.GetByID(ctx, id)
	if gerr != nil {
		log.Error("failed to reload collection", zap.Error(gerr))
		return nil, ErrFailedUpdate
	}
	if sub == nil {
		return nil, ErrNotFound
	}
	if !updated {
		log.Warn("collection not in required state", zap.String("status", string(sub.Status)))
		return nil, ErrInvalidTransition
	}

	s.publish(ctx, realtime.EventGarbageCollection, change, sub.ID, sub.parties())
	log.Info("collection updated", zap.String("status", string(sub.Status)))
	return sub.decorate(), nil
}

func (s *service) Accept(ctx context.Context, id string, scheduledAt time.Time) (*Submission, error) {
	collectorID, err := requireCollector(ctx)
	if err != nil {
		return nil, err
	}
	if scheduledAt.IsZero() {
		scheduledAt = s.now()
	}
	ok, err := s.repo.Accept(ctx, id, collectorID, scheduledAt)
	return s.afterTransition(ctx, id, ok, err, "scheduled")
}

func (s *service) Start(ctx context.Context, id string) (*Submission, error) {
	collectorID, err := requireCollector(ctx)
	if err != nil {
		return nil, err
	}
	ok, err := s.repo.Start(ctx, id, collectorID)
	return s.afterTransition(ctx, id, ok, err, "in_progress")
}

// MarkCollected records the pickup. A re-weighed amount replaces the
// submitted weight and the token estimate follows it.
func (s *service) MarkCollected(ctx context.Context, id string, actualWeightKg *float64) (*Submission, error) {
	collectorID, err := requireCollector(ctx)
	if err != nil {
		return nil, err
	}

	sub, err := s.repo.GetByID(ctx, id)
	if err != nil {
		logger.FromCtx(ctx).Error("failed to get collection", zap.String("collection_id", id), zap.Error(err))
		return nil, ErrFailedUpdate
	}
	if sub == nil {
		return nil, ErrNotFound
	}

	weight := sub.WeightKg
	if actualWeightKg != nil {
		if err := validateWeight("actualWeight", *actualWeightKg); err != nil {
			return nil, err
		}
		weight = *actualWeightKg
	}
	tokens := valuation.EstimateTokens(sub.Category, weight, sub.Quality)

	ok, err := s.repo.MarkCollected(ctx, id, collectorID, weight, tokens, s.now())
	return s.afterTransition(ctx, id, ok, err, "collected")
}

// SettlePayment finalizes a collected job. Approval commits the completed
// status, the payment record and the token credit together; the INR transfer
// happens after commit and only updates the payment record's status.
func (s *service) SettlePayment(ctx context.Context, id string, input SettleInput) (*SettleResult, error) {
	log := logger.FromCtx(ctx).With(zap.String("method", "SettlePayment"), zap.String("collection_id", id))

	adminID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		return nil, ErrUserNotAuthenticated
	}
	if !utils.IsAdmin(ctx) {
		return nil, apperr.Forbidden("admin role required")
	}

	sub, err := s.repo.GetByID(ctx, id)
	if err != nil {
		log.Error("failed to get collection", zap.Error(err))
		return nil, ErrFailedSettle
	}
	if sub == nil {
		return nil, ErrNotFound
	}
	if sub.Status != StatusCollected {
		return nil, ErrNotSettleable
	}

	notes := strings.TrimSpace(input.AdminNotes)

	if !input.ApproveCollection {
		updated, err := s.repo.Reject(ctx, id, notes)
		if err != nil {
			log.Error("failed to reject collection", zap.Error(err))
			return nil, ErrFailedSettle
		}
		if !updated {
			return nil, ErrNotSettleable
		}

		sub.Status = StatusRejected
		if notes != "" {
			sub.AdminNotes = &notes
		}
		metrics.CollectionsRejected.Inc()
		s.publish(ctx, realtime.EventAdminPayment, "rejected", sub.ID, sub.parties())
		log.Info("collection rejected", zap.Uint("admin_id", adminID))
		return &SettleResult{Submission: sub.decorate()}, nil
	}

	if sub.CollectorID == nil {
		return nil, apperr.Validation("collectorId", "collection has no assigned collector")
	}

	amount := valuation.ComputePayment(sub.Category, sub.WeightKg, sub.Quality)
	tokens := valuation.EstimateTokens(sub.Category, sub.WeightKg, sub.Quality)

	rec := &PaymentRecord{
		CollectionID:  id,
		CollectorID:   *sub.CollectorID,
		UserID:        sub.UserID,
		Amount:        amount,
		TokensAwarded: tokens,
		Method:        payout.ParseMethod(strings.ToLower(strings.TrimSpace(input.PaymentMethod))),
		Status:        PaymentPendingTransfer,
		Reference:     utils.GeneratePayoutReference(),
		Category:      sub.Category,
		WeightKg:      sub.WeightKg,
		Quality:       sub.Quality,
	}
	if notes != "" {
		rec.AdminNotes = &notes
	}

	if err := s.repo.ApproveTx(ctx, id, rec); err != nil {
		if errors.Is(err, ErrNotSettleable) || errors.Is(err, ErrNotFound) {
			return nil, err
		}
		log.Error("failed to approve collection", zap.Error(err))
		return nil, ErrFailedSettle
	}

	metrics.CollectionsApproved.Inc()
	metrics.TokensAwarded.Add(uint64(tokens))

	s.transfer(ctx, rec)

	sub.Status = StatusCompleted
	sub.AdminNotes = rec.AdminNotes
	s.publish(ctx, realtime.EventAdminPayment, "approved", sub.ID, sub.parties())

	log.Info("collection approved",
		zap.Uint("admin_id", adminID),
		zap.Int64("amount", amount),
		zap.Int64("tokens", tokens),
		zap.String("payment_status", string(rec.Status)),
	)

	return &SettleResult{Submission: sub.decorate(), Payment: rec, TokensAwarded: tokens}, nil
}

// payoutTimeout bounds a disbursement and its status write once the approval
// has committed. It is independent of the request deadline.
const payoutTimeout = 2 * time.Minute

// transfer pays the collector and records the outcome. A failed transfer
// leaves the settlement committed; the record shows failed for follow-up.
// Only a SUCCEEDED provider status counts as transferred; an accepted
// payout stays pending_transfer until the callback settles it.
func (s *service) transfer(ctx context.Context, rec *PaymentRecord) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), payoutTimeout)
	defer cancel()

	log := logger.FromCtx(ctx).With(zap.String("reference", rec.Reference))

	if rec.Amount <= 0 {
		rec.Status = PaymentTransferred
	} else {
		res, err := s.gateway.Disburse(ctx, payout.Request{
			Reference:    rec.Reference,
			CollectionID: rec.CollectionID,
			CollectorID:  rec.CollectorID,
			Amount:       rec.Amount,
			Method:       rec.Method,
			Description:  "EcoChain collection " + rec.CollectionID,
		})
		if err != nil {
			metrics.PayoutsFailed.Inc()
			log.Error("collector payout failed", zap.Error(err))
			rec.Status = PaymentFailed
		} else {
			rec.ProviderReference = &res.ProviderReference
			rec.Status = paymentStatusFor(res.Status)
			switch rec.Status {
			case PaymentTransferred:
				metrics.PayoutsSucceeded.Inc()
			case PaymentFailed:
				metrics.PayoutsFailed.Inc()
				log.Warn("collector payout rejected by provider", zap.String("provider_status", res.Status))
			}
		}
	}

	if err := s.repo.UpdatePaymentStatus(ctx, rec.ID, rec.Status, rec.ProviderReference); err != nil {
		log.Error("failed to record payout status", zap.String("status", string(rec.Status)), zap.Error(err))
	}
}

func paymentStatusFor(providerStatus string) PaymentStatus {
	switch strings.ToUpper(providerStatus) {
	case "SUCCEEDED":
		return PaymentTransferred
	case "FAILED", "REVERSED", "CANCELLED":
		return PaymentFailed
	}
	return PaymentPendingTransfer
}

// ReconcilePayout applies the provider's final word on a transfer. It is
// driven by the payout callback, not by a user, so it performs no role check.
func (s *service) ReconcilePayout(ctx context.Context, reference string, succeeded bool, providerRef string) error {
	log := logger.FromCtx(ctx).With(zap.String("method", "ReconcilePayout"), zap.String("reference", reference))

	status := PaymentTransferred
	if !succeeded {
		status = PaymentFailed
	}
	var ref *string
	if providerRef != "" {
		ref = utils.StrPtr(providerRef)
	}

	found, err := s.repo.UpdatePaymentStatusByReference(ctx, reference, status, ref)
	if err != nil {
		log.Error("failed to reconcile payout", zap.Error(err))
		return ErrFailedUpdate
	}
	if !found {
		log.Warn("payout callback for unknown reference")
		return ErrNotFound
	}

	if succeeded {
		metrics.PayoutsSucceeded.Inc()
	} else {
		metrics.PayoutsFailed.Inc()
	}
	s.publish(ctx, realtime.EventAdminPayment, "payout_"+string(status), reference, realtime.Audience{
		Roles: []string{utils.RoleAdmin},
	})
	log.Info("payout reconciled", zap.String("status", string(status)))
	return nil
}

func (s *service) ListPayments(ctx context.Context, f PaymentFilter) ([]*PaymentRecord, error) {
	userID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		return nil, ErrUserNotAuthenticated
	}
	if !utils.IsAdmin(ctx) {
		if !utils.HasRole(ctx, utils.RoleCollector) {
			return nil, apperr.Forbidden("collector or admin role required")
		}
		f.CollectorID = &userID
	}

	records, err := s.repo.ListPayments(ctx, f)
	if err != nil {
		logger.FromCtx(ctx).Error("failed to list payments", zap.Error(err))
		return nil, ErrFailedPayment
	}
	if records == nil {
		records = []*PaymentRecord{}
	}
	return records, nil
}

func PickupURI(id string) string {
	return "ecochain://collection/" + id
}

func (s *service) PickupQR(ctx context.Context, id string) ([]byte, error) {
	sub, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	png, err := qrcode.Encode(PickupURI(sub.ID), qrcode.Medium, qrSize)
	if err != nil {
		logger.FromCtx(ctx).Error("failed to encode QR", zap.String("collection_id", id), zap.Error(err))
		return nil, ErrFailedQRCode
	}
	return png, nil
}

func (s *service) publish(ctx context.Context, t realtime.EventType, change, id string, aud realtime.Audience) {
	s.publisher.Publish(ctx, realtime.Event{Type: t, ChangeType: change, ID: id, Audience: aud})
}

// parties are the users who may see a submission besides admins.
func (sub *Submission) parties() realtime.Audience {
	ids := []uint{sub.UserID}
	if sub.CollectorID != nil {
		ids = append(ids, *sub.CollectorID)
	}
	return realtime.Audience{UserIDs: ids}
}
