// Package report renders admin spreadsheets.
package report

import (
	"context"
	"fmt"
	"io"

	"ecochain-be/internal/collection"
	"ecochain-be/internal/logger"
	"ecochain-be/internal/utils"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const paymentsSheet = "Payments"

var paymentHeaders = []string{
	"Collection ID", "Collector ID", "Type", "Weight (kg)", "Quality",
	"Amount (INR)", "Tokens", "Method", "Status", "Reference", "Settled At",
	"Admin Notes",
}

// PaymentLister is satisfied by collection.Service.
type PaymentLister interface {
	ListPayments(ctx context.Context, f collection.PaymentFilter) ([]*collection.PaymentRecord, error)
}

type Generator struct {
	payments PaymentLister
}

func NewGenerator(payments PaymentLister) *Generator {
	return &Generator{payments: payments}
}

// WritePayments streams one row per settled collection to w.
func (g *Generator) WritePayments(ctx context.Context, w io.Writer) error {
	log := logger.FromCtx(ctx).With(zap.String("method", "WritePayments"))

	records, err := g.payments.ListPayments(ctx, collection.PaymentFilter{})
	if err != nil {
		return err
	}

	f, err := BuildPayments(records)
	if err != nil {
		log.Error("failed to build payments workbook", zap.Error(err))
		return err
	}
	defer f.Close()

	if err := f.SetDocProps(&excelize.DocProperties{
		Title:   "EcoChain collector payments",
		Creator: utils.GetUserEmailFromContext(ctx),
	}); err != nil {
		log.Warn("failed to set workbook properties", zap.Error(err))
	}

	if err := f.Write(w); err != nil {
		log.Error("failed to write payments workbook", zap.Error(err))
		return err
	}

	log.Info("payments report generated", zap.Int("rows", len(records)))
	return nil
}

func BuildPayments(records []*collection.PaymentRecord) (*excelize.File, error) {
	f := excelize.NewFile()

	index, err := f.NewSheet(paymentsSheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}

	for i, header := range paymentHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(paymentsSheet, cell, header); err != nil {
			return nil, err
		}
	}

	for i, p := range records {
		row := i + 2
		ref := p.Reference
		if p.ProviderReference != nil {
			ref = *p.ProviderReference
		}

		values := []any{
			p.CollectionID,
			p.CollectorID,
			string(p.Category),
			p.WeightKg,
			string(p.Quality),
			p.Amount,
			p.TokensAwarded,
			string(p.Method),
			string(p.Status),
			ref,
			p.CreatedAt.Format("2006-01-02 15:04"),
			utils.PtrString(p.AdminNotes),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := f.SetCellValue(paymentsSheet, cell, v); err != nil {
				return nil, fmt.Errorf("row %d: %w", row, err)
			}
		}
	}

	return f, nil
}
