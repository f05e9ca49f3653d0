package wallet

import (
	"context"
	"database/sql"
	"fmt"

	"ecochain-be/internal/apperr"
)

// ApplyTx moves a user's balance by delta inside the caller's transaction and
// appends the ledger row. The wallet row is locked for the rest of tx, so
// concurrent settlements and purchases serialize on it.
func ApplyTx(
	ctx context.Context,
	tx *sql.Tx,
	userID uint,
	delta int64,
	reason Reason,
	reference string,
) (int64, error) {
	if delta == 0 {
		return 0, ErrZeroDelta
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO wallets (user_id, balance)
		VALUES ($1, 0)
		ON CONFLICT (user_id) DO NOTHING
	`, userID); err != nil {
		return 0, fmt.Errorf("ensure wallet: %w", err)
	}

	var balance int64
	if err := tx.QueryRowContext(ctx, `
		SELECT balance FROM wallets WHERE user_id = $1 FOR UPDATE
	`, userID).Scan(&balance); err != nil {
		return 0, fmt.Errorf("lock wallet: %w", err)
	}

	next := balance + delta
	if next < 0 {
		return balance, &apperr.InsufficientTokensError{
			Requested:     -delta,
			Available:     balance,
			MaxRedeemable: balance,
		}
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE wallets SET balance = $1, updated_at = NOW() WHERE user_id = $2
	`, next, userID); err != nil {
		return 0, fmt.Errorf("update wallet: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO wallet_transactions (user_id, delta, balance_after, reason, reference)
		VALUES ($1, $2, $3, $4, $5)
	`, userID, delta, next, reason, reference); err != nil {
		return 0, fmt.Errorf("append ledger: %w", err)
	}

	return next, nil
}
