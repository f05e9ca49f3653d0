package order

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"ecochain-be/internal/apperr"
	"ecochain-be/internal/cart"
	"ecochain-be/internal/logger"
	"ecochain-be/internal/metrics"
	"ecochain-be/internal/product"
	"ecochain-be/internal/realtime"
	"ecochain-be/internal/tokens"
	"ecochain-be/internal/utils"
	"ecochain-be/internal/wallet"

	"go.uber.org/zap"
)

type Service interface {
	Quote(ctx context.Context, input QuoteInput) (*tokens.Quote, error)
	PlaceOrder(ctx context.Context, input PlaceOrderInput) (*Order, error)
	GetOrder(ctx context.Context, id string) (*Order, error)
	ListOrders(ctx context.Context, status string, page, limit int) ([]*Order, error)
	UpdateStatus(ctx context.Context, id string, status string, note string) (*Order, error)
}

type service struct {
	repo        Repository
	cartSvc     cart.Service
	productRepo product.Repository
	walletRepo  wallet.Repository
	econ        *tokens.Economy
	publisher   realtime.Publisher
}

func NewService(
	repo Repository,
	cartSvc cart.Service,
	productRepo product.Repository,
	walletRepo wallet.Repository,
	econ *tokens.Economy,
	publisher realtime.Publisher,
) Service {
	return &service{
		repo:        repo,
		cartSvc:     cartSvc,
		productRepo: productRepo,
		walletRepo:  walletRepo,
		econ:        econ,
		publisher:   publisher,
	}
}

// resolveItems prices the explicit item list, or the caller's cart when none
// is given. fromCart tells the caller whether the cart must be cleared later.
func (s *service) resolveItems(
	ctx context.Context,
	userID uint,
	requested []RequestedItem,
) (lines []tokens.LineItem, fromCart bool, err error) {
	if len(requested) == 0 {
		items, err := s.cartSvc.Items(ctx, userID)
		if err != nil {
			return nil, false, err
		}
		return cart.LineItems(items), true, nil
	}

	lines = make([]tokens.LineItem, 0, len(requested))
	for _, ri := range requested {
		if strings.TrimSpace(ri.ProductID) == "" {
			return nil, false, apperr.Validation("items.productId", "is required")
		}
		p, err := s.productRepo.GetByID(ctx, ri.ProductID, true)
		if err != nil {
			return nil, false, err
		}
		if p == nil {
			return nil, false, ErrProductNotFound
		}
		lines = append(lines, tokens.LineItem{
			ProductID:  p.ID,
			Name:       p.Name,
			Price:      p.Price,
			TokenPrice: p.TokenPrice,
			Quantity:   ri.Quantity,
		})
	}
	return lines, false, nil
}

func (s *service) balance(ctx context.Context, userID uint) (int64, error) {
	w, err := s.walletRepo.GetWallet(ctx, userID)
	if err != nil {
		return 0, err
	}
	return w.CurrentBalance, nil
}

// Quote never fails on an over-large token request; it clamps and flags it.
func (s *service) Quote(ctx context.Context, input QuoteInput) (*tokens.Quote, error) {
	userID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		return nil, ErrUserNotAuthenticated
	}
	if input.TokenAmount < 0 {
		return nil, apperr.Validation("tokenAmount", "must not be negative")
	}

	lines, _, err := s.resolveItems(ctx, userID, input.Items)
	if err != nil {
		return nil, err
	}

	bal, err := s.balance(ctx, userID)
	if err != nil {
		return nil, err
	}

	q := s.econ.Quote(lines, input.TokenAmount, bal)
	if q.Clamped {
		logger.FromCtx(ctx).Info("token request clamped",
			zap.Int64("requested", input.TokenAmount),
			zap.Int64("max_redeemable", q.MaxRedeemable),
		)
	}
	return &q, nil
}

func (s *service) PlaceOrder(ctx context.Context, input PlaceOrderInput) (*Order, error) {
	log := logger.FromCtx(ctx).With(zap.String("method", "PlaceOrder"))

	userID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		return nil, ErrUserNotAuthenticated
	}

	lines, fromCart, err := s.resolveItems(ctx, userID, input.Items)
	if err != nil {
		return nil, err
	}

	bal, err := s.balance(ctx, userID)
	if err != nil {
		log.Error("failed to read wallet", zap.Error(err))
		return nil, ErrFailedCreateOrder
	}

	o, err := FinalizeOrder(s.econ, userID, lines, input.ShippingAddress, input.PaymentMethod, input.TokenAmount, bal)
	if err != nil {
		log.Warn("checkout rejected", zap.Error(err))
		return nil, err
	}

	if err := s.repo.CreateOrderTx(ctx, o); err != nil {
		var insufficient *apperr.InsufficientTokensError
		if errors.As(err, &insufficient) || errors.Is(err, ErrOutOfStock) {
			log.Warn("order not persisted", zap.Error(err))
			return nil, err
		}
		log.Error("failed to persist order", zap.Error(err))
		return nil, ErrFailedCreateOrder
	}

	// the cart is only touched once the order is durable
	if fromCart {
		if err := s.cartSvc.Clear(ctx, userID); err != nil {
			log.Warn("order placed but cart not cleared", zap.String("order_id", o.ID), zap.Error(err))
		}
	}

	metrics.OrdersPlaced.Inc()
	s.publisher.Publish(ctx, realtime.Event{
		Type:       realtime.EventSync,
		ChangeType: "order_placed",
		ID:         o.ID,
		Audience:   realtime.Audience{Roles: []string{utils.RoleFactory}, UserIDs: []uint{userID}},
	})

	log.Info("order placed",
		zap.String("order_id", o.ID),
		zap.String("order_number", o.OrderNumber),
		zap.Float64("final_amount", o.Billing.FinalAmount),
		zap.Int64("tokens_applied", o.Billing.EcoTokensApplied),
	)
	return o, nil
}

func canSeeAllOrders(ctx context.Context) bool {
	return utils.HasRole(ctx, utils.RoleAdmin, utils.RoleFactory)
}

func (s *service) GetOrder(ctx context.Context, id string) (*Order, error) {
	userID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		return nil, ErrUserNotAuthenticated
	}

	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		logger.FromCtx(ctx).Error("failed to get order", zap.String("order_id", id), zap.Error(err))
		return nil, ErrFailedGetOrders
	}
	if o == nil {
		return nil, ErrOrderNotFound
	}
	if o.UserID != userID && !canSeeAllOrders(ctx) {
		// do not reveal other users' orders
		return nil, ErrOrderNotFound
	}
	return o, nil
}

func (s *service) ListOrders(ctx context.Context, status string, page, limit int) ([]*Order, error) {
	userID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		return nil, ErrUserNotAuthenticated
	}

	opts := ListOptions{Limit: limit, Offset: (page - 1) * limit}

	if status != "" {
		st, ok := ParseStatus(status)
		if !ok {
			return nil, apperr.Validation("status", "unknown order status")
		}
		opts.Status = st
	}
	if !canSeeAllOrders(ctx) {
		opts.UserID = &userID
	}

	orders, err := s.repo.List(ctx, opts)
	if err != nil {
		logger.FromCtx(ctx).Error("failed to list orders", zap.Error(err))
		return nil, ErrFailedGetOrders
	}
	if orders == nil {
		orders = []*Order{}
	}
	return orders, nil
}

// UpdateStatus lets factories and admins drive fulfilment. Buyers may only
// cancel their own order while it is still cancellable.
func (s *service) UpdateStatus(ctx context.Context, id string, status string, note string) (*Order, error) {
	log := logger.FromCtx(ctx).With(zap.String("method", "UpdateStatus"), zap.String("order_id", id))

	actorID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		return nil, ErrUserNotAuthenticated
	}

	to, ok := ParseStatus(status)
	if !ok {
		return nil, apperr.Validation("status", "unknown order status")
	}

	current, err := s.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}

	if !canSeeAllOrders(ctx) {
		if to != StatusCancelled || current.UserID != actorID {
			return nil, apperr.Forbidden("only factories and admins may change order status")
		}
		if !current.Status.Cancellable() {
			return nil, fmt.Errorf("%w: order can no longer be cancelled", ErrInvalidTransition)
		}
	}
	if current.Status.Terminal() {
		return nil, fmt.Errorf("%w: order is %s", ErrInvalidTransition, current.Status)
	}

	change, err := s.repo.UpdateStatusTx(ctx, id, to, strings.TrimSpace(note), actorID)
	if err != nil {
		if errors.Is(err, ErrInvalidTransition) || errors.Is(err, ErrOrderNotFound) {
			log.Warn("status change rejected", zap.Error(err))
			return nil, err
		}
		log.Error("failed to update order status", zap.Error(err))
		return nil, ErrFailedUpdate
	}

	if change.To == StatusCancelled {
		metrics.OrdersCancelled.Inc()
	}

	s.publisher.Publish(ctx, realtime.Event{
		Type:       realtime.EventSync,
		ChangeType: "order_" + string(change.To),
		ID:         change.OrderID,
		Audience:   realtime.Audience{Roles: []string{utils.RoleFactory}, UserIDs: []uint{change.UserID}},
	})

	log.Info("order status updated",
		zap.String("from", string(change.From)),
		zap.String("to", string(change.To)),
		zap.Int64("tokens_refunded", change.TokensRefunded),
	)

	return s.GetOrder(ctx, id)
}
