package cart

import (
	"context"

	"ecochain-be/internal/logger"
	"ecochain-be/internal/product"
	"ecochain-be/internal/tokens"
	"ecochain-be/internal/utils"

	"go.uber.org/zap"
)

// Service defines the business logic for carts.
type Service interface {
	GetCart(ctx context.Context) (*Cart, error)
	Items(ctx context.Context, userID uint) ([]Item, error)
	SetQuantity(ctx context.Context, productID string, quantity int) error
	RemoveItem(ctx context.Context, productID string) error
	Clear(ctx context.Context, userID uint) error
}

type service struct {
	repo        Repository
	productRepo product.Repository
}

func NewService(repo Repository, productRepo product.Repository) Service {
	return &service{repo: repo, productRepo: productRepo}
}

func (s *service) GetCart(ctx context.Context) (*Cart, error) {
	userID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		return nil, ErrUserNotAuthenticated
	}

	items, err := s.Items(ctx, userID)
	if err != nil {
		return nil, err
	}

	lines := LineItems(items)
	return &Cart{
		Items:          items,
		CartTokenTotal: tokens.CartTokenTotal(lines),
		Subtotal:       tokens.Subtotal(lines),
	}, nil
}

func (s *service) Items(ctx context.Context, userID uint) ([]Item, error) {
	items, err := s.repo.GetItems(ctx, userID)
	if err != nil {
		logger.FromCtx(ctx).Error("failed to get cart items", zap.Uint("cart_user_id", userID), zap.Error(err))
		return nil, ErrFailedGetCart
	}
	if items == nil {
		items = []Item{}
	}
	return items, nil
}

// SetQuantity sets the absolute quantity of a product; zero or less removes it.
func (s *service) SetQuantity(ctx context.Context, productID string, quantity int) error {
	userID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		return ErrUserNotAuthenticated
	}
	if productID == "" {
		return ErrProductRequired
	}

	if quantity <= 0 {
		return s.RemoveItem(ctx, productID)
	}

	p, err := s.productRepo.GetByID(ctx, productID, true)
	if err != nil {
		return err
	}
	if p == nil {
		return ErrProductNotFound
	}
	if p.Stock < quantity {
		return ErrInsufficientStock
	}

	if err := s.repo.UpsertItem(ctx, SetQuantityParams{
		UserID:    userID,
		ProductID: productID,
		Quantity:  quantity,
	}); err != nil {
		logger.FromCtx(ctx).Error("failed to upsert cart item", zap.String("product_id", productID), zap.Error(err))
		return ErrFailedUpdateCart
	}
	return nil
}

func (s *service) RemoveItem(ctx context.Context, productID string) error {
	userID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		return ErrUserNotAuthenticated
	}
	if productID == "" {
		return ErrProductRequired
	}
	if err := s.repo.RemoveItem(ctx, userID, productID); err != nil {
		return ErrFailedRemoveCart
	}
	return nil
}

func (s *service) Clear(ctx context.Context, userID uint) error {
	if err := s.repo.Clear(ctx, userID); err != nil {
		logger.FromCtx(ctx).Error("failed to clear cart", zap.Uint("cart_user_id", userID), zap.Error(err))
		return ErrFailedClearCart
	}
	return nil
}
