package wallet

import (
	"context"
	"database/sql"
	"errors"
)

type Repository interface {
	GetWallet(ctx context.Context, userID uint) (*Wallet, error)
	ListTransactions(ctx context.Context, userID uint, limit, offset int) ([]Transaction, int64, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

// GetWallet returns a zero balance for users that never earned tokens.
func (r *repository) GetWallet(ctx context.Context, userID uint) (*Wallet, error) {
	w := Wallet{UserID: userID}
	err := r.db.QueryRowContext(ctx, `
		SELECT balance, updated_at FROM wallets WHERE user_id = $1
	`, userID).Scan(&w.CurrentBalance, &w.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return &w, nil
	}
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *repository) ListTransactions(ctx context.Context, userID uint, limit, offset int) ([]Transaction, int64, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM wallet_transactions WHERE user_id = $1
	`, userID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, delta, balance_after, reason, reference, created_at
		FROM wallet_transactions
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	items := make([]Transaction, 0, limit)
	for rows.Next() {
		var t Transaction
		if err := rows.Scan(&t.ID, &t.UserID, &t.Delta, &t.BalanceAfter, &t.Reason, &t.Reference, &t.CreatedAt); err != nil {
			return nil, 0, err
		}
		items = append(items, t)
	}
	return items, total, rows.Err()
}
