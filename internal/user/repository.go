package user

import (
	"context"
	"database/sql"
	"errors"

	"ecochain-be/internal/db"

	"github.com/lib/pq"
)

const uniqueViolation = "23505"

type Repository interface {
	Create(ctx context.Context, u *User) error
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id uint) (*User, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

// Create inserts the user together with an empty wallet so every account has
// exactly one wallet from the start.
func (r *repository) Create(ctx context.Context, u *User) error {
	return db.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx, `
			INSERT INTO users (email, name, password, role)
			VALUES ($1, $2, $3, $4)
			RETURNING id, created_at
		`, u.Email, u.Name, u.PasswordHash, u.Role).Scan(&u.ID, &u.CreatedAt)
		if err != nil {
			var pqErr *pq.Error
			if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
				return ErrEmailExists
			}
			return err
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO wallets (user_id, balance) VALUES ($1, 0)
			ON CONFLICT (user_id) DO NOTHING
		`, u.ID)
		return err
	})
}

func (r *repository) findOne(ctx context.Context, where string, arg any) (*User, error) {
	var u User
	err := r.db.QueryRowContext(ctx,
		`SELECT id, email, name, password, role, created_at FROM users WHERE `+where,
		arg,
	).Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.Role, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *repository) FindByEmail(ctx context.Context, email string) (*User, error) {
	return r.findOne(ctx, "email = $1", email)
}

func (r *repository) FindByID(ctx context.Context, id uint) (*User, error) {
	return r.findOne(ctx, "id = $1", id)
}
