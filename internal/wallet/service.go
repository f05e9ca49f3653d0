package wallet

import (
	"context"

	"ecochain-be/internal/apperr"
	"ecochain-be/internal/logger"
	"ecochain-be/internal/utils"

	"go.uber.org/zap"
)

type Service interface {
	GetWallet(ctx context.Context, userID uint) (*Wallet, error)
	Transactions(ctx context.Context, userID uint, page, limit int) (*TransactionPage, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// callers may read their own wallet; admins may read any
func authorize(ctx context.Context, userID uint) error {
	callerID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		return ErrUserNotAuthorized
	}
	if callerID != userID && !utils.IsAdmin(ctx) {
		return apperr.Forbidden("cannot access another user's wallet")
	}
	return nil
}

func (s *service) GetWallet(ctx context.Context, userID uint) (*Wallet, error) {
	if err := authorize(ctx, userID); err != nil {
		return nil, err
	}

	w, err := s.repo.GetWallet(ctx, userID)
	if err != nil {
		logger.FromCtx(ctx).Error("failed to get wallet",
			zap.Uint("wallet_user_id", userID),
			zap.Error(err),
		)
		return nil, ErrFailedGetBalance
	}
	return w, nil
}

func (s *service) Transactions(ctx context.Context, userID uint, page, limit int) (*TransactionPage, error) {
	if err := authorize(ctx, userID); err != nil {
		return nil, err
	}

	items, total, err := s.repo.ListTransactions(ctx, userID, limit, (page-1)*limit)
	if err != nil {
		logger.FromCtx(ctx).Error("failed to list wallet transactions",
			zap.Uint("wallet_user_id", userID),
			zap.Error(err),
		)
		return nil, ErrFailedGetLedger
	}

	return &TransactionPage{Items: items, Total: total, Page: page, Limit: limit}, nil
}
