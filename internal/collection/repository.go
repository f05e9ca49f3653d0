package collection

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"ecochain-be/internal/db"
	"ecochain-be/internal/wallet"
)

type Repository interface {
	Create(ctx context.Context, s *Submission) error
	GetByID(ctx context.Context, id string) (*Submission, error)
	List(ctx context.Context, f Filter) ([]*Submission, error)

	Accept(ctx context.Context, id string, collectorID uint, scheduledAt time.Time) (bool, error)
	Start(ctx context.Context, id string, collectorID uint) (bool, error)
	MarkCollected(ctx context.Context, id string, collectorID uint, weightKg float64, estimatedTokens int64, at time.Time) (bool, error)

	ApproveTx(ctx context.Context, id string, rec *PaymentRecord) error
	Reject(ctx context.Context, id string, notes string) (bool, error)

	UpdatePaymentStatus(ctx context.Context, paymentID int64, status PaymentStatus, providerRef *string) error
	UpdatePaymentStatusByReference(ctx context.Context, reference string, status PaymentStatus, providerRef *string) (bool, error)
	ListPayments(ctx context.Context, f PaymentFilter) ([]*PaymentRecord, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const submissionColumns = `
	id, user_id, collector_id, category, weight_kg, quality, status,
	estimated_tokens, pickup_address, scheduled_at, collected_at,
	admin_notes, created_at, updated_at
`

func scanSubmission(row interface{ Scan(...any) error }) (*Submission, error) {
	var (
		s           Submission
		collectorID sql.NullInt64
		notes       sql.NullString
		scheduledAt sql.NullTime
		collectedAt sql.NullTime
	)
	err := row.Scan(
		&s.ID, &s.UserID, &collectorID, &s.Category, &s.WeightKg, &s.Quality, &s.Status,
		&s.EstimatedTokens, &s.PickupAddress, &scheduledAt, &collectedAt,
		&notes, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if collectorID.Valid {
		id := uint(collectorID.Int64)
		s.CollectorID = &id
	}
	if notes.Valid {
		s.AdminNotes = &notes.String
	}
	if scheduledAt.Valid {
		s.ScheduledAt = &scheduledAt.Time
	}
	if collectedAt.Valid {
		s.CollectedAt = &collectedAt.Time
	}
	return &s, nil
}

func (r *repository) Create(ctx context.Context, s *Submission) error {
	return r.db.QueryRowContext(ctx, `
		INSERT INTO collections (
			user_id, category, weight_kg, quality, status, estimated_tokens, pickup_address
		) VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING id, created_at, updated_at
	`,
		s.UserID, s.Category, s.WeightKg, s.Quality, s.Status, s.EstimatedTokens, s.PickupAddress,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
}

// GetByID returns nil, nil when the collection does not exist.
func (r *repository) GetByID(ctx context.Context, id string) (*Submission, error) {
	s, err := scanSubmission(r.db.QueryRowContext(ctx,
		`SELECT `+submissionColumns+` FROM collections WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return s, err
}

func (r *repository) List(ctx context.Context, f Filter) ([]*Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM collections WHERE 1=1`
	args := []any{}
	argIndex := 1

	if f.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argIndex)
		args = append(args, f.Status)
		argIndex++
	}
	if f.UserID != nil {
		query += fmt.Sprintf(" AND user_id = $%d", argIndex)
		args = append(args, *f.UserID)
		argIndex++
	}
	if f.CollectorID != nil {
		query += fmt.Sprintf(" AND collector_id = $%d", argIndex)
		args = append(args, *f.CollectorID)
		argIndex++
	}
	if f.Unassigned {
		query += " AND collector_id IS NULL"
	}

	query += " ORDER BY created_at DESC"
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argIndex, argIndex+1)
		args = append(args, f.Limit, f.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Submission
	for rows.Next() {
		s, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// The lifecycle updates below are guarded by the expected current status, so
// a false result means the job was not in the required state.

func (r *repository) Accept(ctx context.Context, id string, collectorID uint, scheduledAt time.Time) (bool, error) {
	return r.execGuarded(ctx, `
		UPDATE collections
		SET status = $1, collector_id = $2, scheduled_at = $3, updated_at = NOW()
		WHERE id = $4 AND status = $5 AND collector_id IS NULL
	`, StatusScheduled, collectorID, scheduledAt, id, StatusRequested)
}

func (r *repository) Start(ctx context.Context, id string, collectorID uint) (bool, error) {
	return r.execGuarded(ctx, `
		UPDATE collections
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = $3 AND collector_id = $4
	`, StatusInProgress, id, StatusScheduled, collectorID)
}

func (r *repository) MarkCollected(
	ctx context.Context,
	id string,
	collectorID uint,
	weightKg float64,
	estimatedTokens int64,
	at time.Time,
) (bool, error) {
	return r.execGuarded(ctx, `
		UPDATE collections
		SET status = $1, weight_kg = $2, estimated_tokens = $3, collected_at = $4, updated_at = NOW()
		WHERE id = $5 AND status = $6 AND collector_id = $7
	`, StatusCollected, weightKg, estimatedTokens, at, id, StatusInProgress, collectorID)
}

func (r *repository) Reject(ctx context.Context, id string, notes string) (bool, error) {
	return r.execGuarded(ctx, `
		UPDATE collections
		SET status = $1, admin_notes = $2, updated_at = NOW()
		WHERE id = $3 AND status = $4
	`, StatusRejected, notes, id, StatusCollected)
}

func (r *repository) execGuarded(ctx context.Context, query string, args ...any) (bool, error) {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ApproveTx completes the collection, stores the payment record and credits
// the submitter's wallet in one transaction. rec.ID and rec.CreatedAt are set
// on success.
func (r *repository) ApproveTx(ctx context.Context, id string, rec *PaymentRecord) error {
	return db.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		var status Status
		err := tx.QueryRowContext(ctx, `
			SELECT status FROM collections WHERE id = $1 FOR UPDATE
		`, id).Scan(&status)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		if status != StatusCollected {
			return ErrNotSettleable
		}

		if _, err := tx.ExecContext(ctx, `
			UPDATE collections SET status = $1, admin_notes = $2, updated_at = NOW() WHERE id = $3
		`, StatusCompleted, rec.AdminNotes, id); err != nil {
			return fmt.Errorf("complete collection: %w", err)
		}

		if err := tx.QueryRowContext(ctx, `
			INSERT INTO collector_payments (
				collection_id, collector_id, user_id, amount, tokens_awarded,
				method, status, reference, admin_notes
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
			RETURNING id, created_at
		`,
			id, rec.CollectorID, rec.UserID, rec.Amount, rec.TokensAwarded,
			rec.Method, rec.Status, rec.Reference, rec.AdminNotes,
		).Scan(&rec.ID, &rec.CreatedAt); err != nil {
			return fmt.Errorf("insert payment record: %w", err)
		}

		if rec.TokensAwarded > 0 {
			if _, err := wallet.ApplyTx(
				ctx, tx, rec.UserID, rec.TokensAwarded,
				wallet.ReasonCollectionReward, "collection:"+id,
			); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *repository) UpdatePaymentStatus(ctx context.Context, paymentID int64, status PaymentStatus, providerRef *string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE collector_payments
		SET status = $1, provider_reference = COALESCE($2, provider_reference), updated_at = NOW()
		WHERE id = $3
	`, status, providerRef, paymentID)
	return err
}

func (r *repository) UpdatePaymentStatusByReference(ctx context.Context, reference string, status PaymentStatus, providerRef *string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE collector_payments
		SET status = $1, provider_reference = COALESCE($2, provider_reference), updated_at = NOW()
		WHERE reference = $3
	`, status, providerRef, reference)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *repository) ListPayments(ctx context.Context, f PaymentFilter) ([]*PaymentRecord, error) {
	query := `
		SELECT
			p.id, p.collection_id, p.collector_id, p.user_id, p.amount, p.tokens_awarded,
			p.method, p.status, p.reference, p.provider_reference, p.admin_notes, p.created_at,
			c.category, c.weight_kg, c.quality
		FROM collector_payments p
		JOIN collections c ON c.id = p.collection_id
		WHERE 1=1
	`
	args := []any{}
	argIndex := 1

	if f.CollectorID != nil {
		query += fmt.Sprintf(" AND p.collector_id = $%d", argIndex)
		args = append(args, *f.CollectorID)
		argIndex++
	}
	if f.Status != "" {
		query += fmt.Sprintf(" AND p.status = $%d", argIndex)
		args = append(args, f.Status)
		argIndex++
	}

	query += " ORDER BY p.created_at DESC"
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argIndex, argIndex+1)
		args = append(args, f.Limit, f.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*PaymentRecord
	for rows.Next() {
		var (
			p     PaymentRecord
			ref   sql.NullString
			notes sql.NullString
		)
		if err := rows.Scan(
			&p.ID, &p.CollectionID, &p.CollectorID, &p.UserID, &p.Amount, &p.TokensAwarded,
			&p.Method, &p.Status, &p.Reference, &ref, &notes, &p.CreatedAt,
			&p.Category, &p.WeightKg, &p.Quality,
		); err != nil {
			return nil, err
		}
		if ref.Valid {
			p.ProviderReference = &ref.String
		}
		if notes.Valid {
			p.AdminNotes = &notes.String
		}
		out = append(out, &p)
	}
	return out, rows.Err()
}
