package dashboard

import (
	"context"
	"database/sql"
)

// Repository holds the aggregate queries that have no home in a domain
// repository.
type Repository interface {
	CollectionCounts(ctx context.Context, userID *uint) (map[string]int64, error)
	PaymentTotals(ctx context.Context, collectorID *uint) (PaymentTotals, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CollectionCounts(ctx context.Context, userID *uint) (map[string]int64, error) {
	query := `SELECT status, COUNT(*) FROM collections`
	args := []any{}
	if userID != nil {
		query += ` WHERE user_id = $1`
		args = append(args, *userID)
	}
	query += ` GROUP BY status`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var (
			status string
			n      int64
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

func (r *repository) PaymentTotals(ctx context.Context, collectorID *uint) (PaymentTotals, error) {
	query := `
		SELECT
			COALESCE(SUM(amount) FILTER (WHERE status = 'transferred'), 0),
			COALESCE(SUM(tokens_awarded), 0),
			COUNT(*) FILTER (WHERE status = 'failed')
		FROM collector_payments
	`
	args := []any{}
	if collectorID != nil {
		query += ` WHERE collector_id = $1`
		args = append(args, *collectorID)
	}

	var t PaymentTotals
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&t.PaidOut, &t.TokensAwarded, &t.Failed)
	return t, err
}
