package product

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

type Repository interface {
	List(ctx context.Context, opts ListOptions) ([]*Product, error)
	GetByID(ctx context.Context, id string, onlyActive bool) (*Product, error)
	Create(ctx context.Context, p *Product) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const productColumns = `
	id, factory_id, name, description, material,
	price, token_price, stock, status, image_url, created_at
`

func scanProduct(row interface{ Scan(...any) error }) (*Product, error) {
	var p Product
	err := row.Scan(
		&p.ID, &p.FactoryID, &p.Name, &p.Description, &p.Material,
		&p.Price, &p.TokenPrice, &p.Stock, &p.Status, &p.ImageURL, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repository) List(ctx context.Context, opts ListOptions) ([]*Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE 1=1`
	args := []any{}
	argIndex := 1

	if opts.OnlyActive {
		query += fmt.Sprintf(" AND status = $%d", argIndex)
		args = append(args, StatusActive)
		argIndex++
	}
	if opts.FactoryID != nil {
		query += fmt.Sprintf(" AND factory_id = $%d", argIndex)
		args = append(args, *opts.FactoryID)
		argIndex++
	}
	if opts.Search != "" {
		query += fmt.Sprintf(" AND name ILIKE $%d", argIndex)
		args = append(args, "%"+opts.Search+"%")
		argIndex++
	}

	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", argIndex, argIndex+1)
	args = append(args, opts.Limit, opts.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []*Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// GetByID returns nil, nil when no product matches.
func (r *repository) GetByID(ctx context.Context, id string, onlyActive bool) (*Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	args := []any{id}
	if onlyActive {
		query += " AND status = $2"
		args = append(args, StatusActive)
	}

	p, err := scanProduct(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return p, err
}

func (r *repository) Create(ctx context.Context, p *Product) error {
	return r.db.QueryRowContext(ctx, `
		INSERT INTO products (
			factory_id, name, description, material,
			price, token_price, stock, status, image_url
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING id, created_at
	`,
		p.FactoryID, p.Name, p.Description, p.Material,
		p.Price, p.TokenPrice, p.Stock, p.Status, p.ImageURL,
	).Scan(&p.ID, &p.CreatedAt)
}
