package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"ecochain-be/internal/db"
	"ecochain-be/internal/wallet"
)

type Repository interface {
	CreateOrderTx(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id string) (*Order, error)
	List(ctx context.Context, opts ListOptions) ([]*Order, error)
	UpdateStatusTx(ctx context.Context, id string, to Status, note string, actorID uint) (*StatusChange, error)
	CountByStatus(ctx context.Context, userID *uint) (map[Status]int64, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

// CreateOrderTx writes the order, its items, the token debit and the stock
// decrement atomically. Any failure leaves the database untouched.
func (r *repository) CreateOrderTx(ctx context.Context, o *Order) error {
	return db.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		if o.Billing.EcoTokensApplied > 0 {
			if _, err := wallet.ApplyTx(
				ctx, tx, o.UserID,
				-o.Billing.EcoTokensApplied,
				wallet.ReasonOrderRedemption,
				o.ID,
			); err != nil {
				return err
			}
		}

		_, err := tx.ExecContext(ctx, `
			INSERT INTO orders (
				id, order_number, user_id, status, payment_method,
				street, city, state, postal_code,
				subtotal, tokens_applied, token_value, taxes,
				shipping_charges, discount, final_amount,
				created_at, updated_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)
		`,
			o.ID, o.OrderNumber, o.UserID, o.Status, o.PaymentMethod,
			o.ShippingAddress.Street, o.ShippingAddress.City,
			o.ShippingAddress.State, o.ShippingAddress.PostalCode,
			o.Billing.Subtotal, o.Billing.EcoTokensApplied, o.Billing.EcoTokenValue,
			o.Billing.Taxes, o.Billing.ShippingCharges, o.Billing.Discount,
			o.Billing.FinalAmount, o.CreatedAt, o.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert order: %w", err)
		}

		for _, it := range o.Items {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO order_items (
					order_id, product_id, name, price, token_price, quantity, subtotal
				) VALUES ($1,$2,$3,$4,$5,$6,$7)
			`, o.ID, it.ProductID, it.Name, it.Price, it.TokenPrice, it.Quantity, it.Subtotal); err != nil {
				return fmt.Errorf("insert order item: %w", err)
			}

			res, err := tx.ExecContext(ctx, `
				UPDATE products
				SET stock = stock - $1
				WHERE id = $2 AND stock >= $1
			`, it.Quantity, it.ProductID)
			if err != nil {
				return fmt.Errorf("decrement stock: %w", err)
			}
			if n, _ := res.RowsAffected(); n == 0 {
				return ErrOutOfStock
			}
		}

		for _, e := range o.Timeline {
			if err := insertTimeline(ctx, tx, o.ID, e); err != nil {
				return err
			}
		}
		return nil
	})
}

func insertTimeline(ctx context.Context, tx *sql.Tx, orderID string, e TimelineEntry) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO order_timeline (order_id, status, note, actor_id, created_at)
		VALUES ($1,$2,$3,$4,$5)
	`, orderID, e.Status, e.Note, e.ActorID, e.At)
	if err != nil {
		return fmt.Errorf("insert timeline: %w", err)
	}
	return nil
}

const orderColumns = `
	id, order_number, user_id, status, payment_method,
	street, city, state, postal_code,
	subtotal, tokens_applied, token_value, taxes,
	shipping_charges, discount, final_amount,
	created_at, updated_at
`

func scanOrder(row interface{ Scan(...any) error }) (*Order, error) {
	var o Order
	err := row.Scan(
		&o.ID, &o.OrderNumber, &o.UserID, &o.Status, &o.PaymentMethod,
		&o.ShippingAddress.Street, &o.ShippingAddress.City,
		&o.ShippingAddress.State, &o.ShippingAddress.PostalCode,
		&o.Billing.Subtotal, &o.Billing.EcoTokensApplied, &o.Billing.EcoTokenValue,
		&o.Billing.Taxes, &o.Billing.ShippingCharges, &o.Billing.Discount,
		&o.Billing.FinalAmount, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// GetByID returns nil, nil when the order does not exist.
func (r *repository) GetByID(ctx context.Context, id string) (*Order, error) {
	o, err := scanOrder(r.db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT product_id, name, price, token_price, quantity, subtotal
		FROM order_items WHERE order_id = $1 ORDER BY id
	`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ProductID, &it.Name, &it.Price, &it.TokenPrice, &it.Quantity, &it.Subtotal); err != nil {
			return nil, err
		}
		o.Items = append(o.Items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	tl, err := r.db.QueryContext(ctx, `
		SELECT status, note, actor_id, created_at
		FROM order_timeline WHERE order_id = $1 ORDER BY created_at, id
	`, id)
	if err != nil {
		return nil, err
	}
	defer tl.Close()

	for tl.Next() {
		var e TimelineEntry
		if err := tl.Scan(&e.Status, &e.Note, &e.ActorID, &e.At); err != nil {
			return nil, err
		}
		o.Timeline = append(o.Timeline, e)
	}
	return o, tl.Err()
}

func (r *repository) List(ctx context.Context, opts ListOptions) ([]*Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE 1=1`
	args := []any{}
	argIndex := 1

	if opts.UserID != nil {
		query += fmt.Sprintf(" AND user_id = $%d", argIndex)
		args = append(args, *opts.UserID)
		argIndex++
	}
	if opts.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argIndex)
		args = append(args, opts.Status)
		argIndex++
	}

	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", argIndex, argIndex+1)
	args = append(args, opts.Limit, opts.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// UpdateStatusTx re-checks the transition under a row lock so two concurrent
// updates cannot both pass validation. Cancelling refunds applied tokens.
func (r *repository) UpdateStatusTx(
	ctx context.Context,
	id string,
	to Status,
	note string,
	actorID uint,
) (*StatusChange, error) {
	var change *StatusChange

	err := db.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		var (
			from   Status
			userID uint
			spent  int64
		)
		err := tx.QueryRowContext(ctx, `
			SELECT status, user_id, tokens_applied FROM orders WHERE id = $1 FOR UPDATE
		`, id).Scan(&from, &userID, &spent)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrOrderNotFound
		}
		if err != nil {
			return err
		}

		if !CanTransition(from, to) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
		}

		if _, err := tx.ExecContext(ctx, `
			UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2
		`, to, id); err != nil {
			return err
		}

		if err := insertTimeline(ctx, tx, id, TimelineEntry{
			Status: to, Note: note, ActorID: actorID, At: nowUTC(),
		}); err != nil {
			return err
		}

		change = &StatusChange{OrderID: id, UserID: userID, From: from, To: to}

		if to == StatusCancelled {
			if err := restock(ctx, tx, id); err != nil {
				return err
			}
		}

		if to == StatusCancelled && spent > 0 {
			if _, err := wallet.ApplyTx(ctx, tx, userID, spent, wallet.ReasonOrderRefund, id); err != nil {
				return err
			}
			change.TokensRefunded = spent
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return change, nil
}

// restock returns a cancelled order's quantities to product stock.
func restock(ctx context.Context, tx *sql.Tx, orderID string) error {
	rows, err := tx.QueryContext(ctx, `
		SELECT product_id, quantity FROM order_items WHERE order_id = $1
	`, orderID)
	if err != nil {
		return fmt.Errorf("load order items: %w", err)
	}

	type line struct {
		productID string
		quantity  int
	}
	var lines []line
	for rows.Next() {
		var l line
		if err := rows.Scan(&l.productID, &l.quantity); err != nil {
			rows.Close()
			return err
		}
		lines = append(lines, l)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	for _, l := range lines {
		if _, err := tx.ExecContext(ctx, `
			UPDATE products SET stock = stock + $1 WHERE id = $2
		`, l.quantity, l.productID); err != nil {
			return fmt.Errorf("restore stock: %w", err)
		}
	}
	return nil
}

func (r *repository) CountByStatus(ctx context.Context, userID *uint) (map[Status]int64, error) {
	query := `SELECT status, COUNT(*) FROM orders`
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

	counts := make(map[Status]int64)
	for rows.Next() {
		var (
			s Status
			n int64
		)
		if err := rows.Scan(&s, &n); err != nil {
			return nil, err
		}
		counts[s] = n
	}
	return counts, rows.Err()
}
