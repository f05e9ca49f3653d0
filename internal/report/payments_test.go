package report

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"ecochain-be/internal/collection"
	"ecochain-be/internal/payout"
	"ecochain-be/internal/utils"
	"ecochain-be/internal/valuation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type stubLister struct {
	records []*collection.PaymentRecord
	err     error
}

func (s stubLister) ListPayments(context.Context, collection.PaymentFilter) ([]*collection.PaymentRecord, error) {
	return s.records, s.err
}

func TestGenerator_WritePayments(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		ref := "disb-1"
		notes := "weighed twice"
		gen := NewGenerator(stubLister{records: []*collection.PaymentRecord{{
			CollectionID:      "c-1",
			CollectorID:       20,
			Category:          valuation.Plastic,
			WeightKg:          10,
			Quality:           valuation.Good,
			Amount:            144,
			TokensAwarded:     144,
			Method:            payout.MethodUPI,
			Status:            collection.PaymentTransferred,
			Reference:         "PAY-1",
			ProviderReference: &ref,
			AdminNotes:        &notes,
			CreatedAt:         time.Date(2026, 10, 1, 9, 30, 0, 0, time.UTC),
		}}})

		var buf bytes.Buffer
		ctx := utils.SetUserContext(context.Background(), 1, "admin@ecochain.in", utils.RoleAdmin)
		require.NoError(t, gen.WritePayments(ctx, &buf))

		f, err := excelize.OpenReader(&buf)
		require.NoError(t, err)
		defer f.Close()

		rows, err := f.GetRows(paymentsSheet)
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, paymentHeaders, rows[0])
		assert.Equal(t, "c-1", rows[1][0])
		assert.Equal(t, "plastic", rows[1][2])
		assert.Equal(t, "144", rows[1][5])
		assert.Equal(t, "transferred", rows[1][8])
		assert.Equal(t, "disb-1", rows[1][9])
		assert.Equal(t, "2026-10-01 09:30", rows[1][10])
		assert.Equal(t, "weighed twice", rows[1][11])

		props, err := f.GetDocProps()
		require.NoError(t, err)
		assert.Equal(t, "admin@ecochain.in", props.Creator)

		assert.Equal(t, []string{paymentsSheet}, f.GetSheetList())
	})

	t.Run("MissingNotesLeaveCellEmpty", func(t *testing.T) {
		f, err := BuildPayments([]*collection.PaymentRecord{{CollectionID: "c-2", Reference: "PAY-2"}})
		require.NoError(t, err)
		defer f.Close()

		v, err := f.GetCellValue(paymentsSheet, "L2")
		require.NoError(t, err)
		assert.Empty(t, v)
		v, err = f.GetCellValue(paymentsSheet, "J2")
		require.NoError(t, err)
		assert.Equal(t, "PAY-2", v)
	})

	t.Run("ListError", func(t *testing.T) {
		gen := NewGenerator(stubLister{err: errors.New("db down")})
		var buf bytes.Buffer
		assert.Error(t, gen.WritePayments(context.Background(), &buf))
		assert.Zero(t, buf.Len())
	})
}
