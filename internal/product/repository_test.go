package product

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var productCols = []string{
	"id", "factory_id", "name", "description", "material",
	"price", "token_price", "stock", "status", "image_url", "created_at",
}

func TestRepository_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	factoryID := uint(3)

	t.Run("Filtered", func(t *testing.T) {
		rows := sqlmock.NewRows(productCols).
			AddRow("p-1", 3, "Tote", nil, "plastic", 299.0, 50, 10, "active", nil, time.Now())

		mock.ExpectQuery("SELECT .* FROM products WHERE 1=1 AND status = \\$1 AND factory_id = \\$2 AND name ILIKE \\$3").
			WithArgs(StatusActive, factoryID, "%tote%", 20, 0).
			WillReturnRows(rows)

		res, err := repo.List(context.Background(), ListOptions{
			FactoryID: &factoryID, Search: "tote", OnlyActive: true, Limit: 20,
		})

		assert.NoError(t, err)
		require.Len(t, res, 1)
		assert.Equal(t, int64(50), res[0].TokenPrice)
	})

	t.Run("Error", func(t *testing.T) {
		mock.ExpectQuery("SELECT .* FROM products").WillReturnError(errors.New("db error"))

		_, err := repo.List(context.Background(), ListOptions{Limit: 20})
		assert.Error(t, err)
	})
}

func TestRepository_GetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)

	t.Run("Found", func(t *testing.T) {
		mock.ExpectQuery("SELECT .* FROM products WHERE id = \\$1 AND status = \\$2").
			WithArgs("p-1", StatusActive).
			WillReturnRows(sqlmock.NewRows(productCols).
				AddRow("p-1", 3, "Tote", nil, "plastic", 299.0, 50, 10, "active", nil, time.Now()))

		p, err := repo.GetByID(context.Background(), "p-1", true)
		assert.NoError(t, err)
		assert.Equal(t, "Tote", p.Name)
	})

	t.Run("NotFound", func(t *testing.T) {
		mock.ExpectQuery("SELECT .* FROM products WHERE id = \\$1").
			WithArgs("missing").
			WillReturnError(sql.ErrNoRows)

		p, err := repo.GetByID(context.Background(), "missing", false)
		assert.NoError(t, err)
		assert.Nil(t, p)
	})
}

func TestRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	now := time.Now()
	p := &Product{FactoryID: 3, Name: "Bench", Material: "plastic", Price: 4999, TokenPrice: 500, Stock: 4, Status: StatusActive}

	mock.ExpectQuery("INSERT INTO products").
		WithArgs(uint(3), "Bench", nil, "plastic", 4999.0, int64(500), 4, StatusActive, nil).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow("p-9", now))

	err = repo.Create(context.Background(), p)

	assert.NoError(t, err)
	assert.Equal(t, "p-9", p.ID)
	assert.Equal(t, now, p.CreatedAt)
}
