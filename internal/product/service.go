package product

import (
	"context"
	"strings"

	"ecochain-be/internal/apperr"
	"ecochain-be/internal/logger"
	"ecochain-be/internal/utils"

	"go.uber.org/zap"
)

type Service interface {
	List(ctx context.Context, search string, factoryID *uint, page, limit int) ([]*Product, error)
	Get(ctx context.Context, id string) (*Product, error)
	Create(ctx context.Context, input NewProductInput) (*Product, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) List(ctx context.Context, search string, factoryID *uint, page, limit int) ([]*Product, error) {
	products, err := s.repo.List(ctx, ListOptions{
		FactoryID:  factoryID,
		Search:     strings.TrimSpace(search),
		OnlyActive: !utils.HasRole(ctx, utils.RoleFactory, utils.RoleAdmin),
		Limit:      limit,
		Offset:     (page - 1) * limit,
	})
	if err != nil {
		logger.FromCtx(ctx).Error("failed to list products", zap.Error(err))
		return nil, ErrFailedListProducts
	}
	return products, nil
}

func (s *service) Get(ctx context.Context, id string) (*Product, error) {
	p, err := s.repo.GetByID(ctx, id, true)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrProductNotFound
	}
	return p, nil
}

// Create lists a product under the calling factory.
func (s *service) Create(ctx context.Context, input NewProductInput) (*Product, error) {
	log := logger.FromCtx(ctx).With(zap.String("method", "product.Create"))

	factoryID, ok := utils.GetUserIDFromContext(ctx)
	if !ok || !utils.HasRole(ctx, utils.RoleFactory, utils.RoleAdmin) {
		return nil, apperr.Forbidden("only factories can list products")
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperr.Validation("name", "is required")
	}
	if input.Price <= 0 {
		return nil, apperr.Validation("price", "must be greater than zero")
	}
	if input.TokenPrice < 0 {
		return nil, apperr.Validation("tokenPrice", "must not be negative")
	}
	if input.Stock < 0 {
		return nil, apperr.Validation("stock", "must not be negative")
	}

	p := &Product{
		FactoryID:   factoryID,
		Name:        name,
		Description: input.Description,
		Material:    strings.ToLower(strings.TrimSpace(input.Material)),
		Price:       input.Price,
		TokenPrice:  input.TokenPrice,
		Stock:       input.Stock,
		Status:      StatusActive,
		ImageURL:    input.ImageURL,
	}

	if err := s.repo.Create(ctx, p); err != nil {
		log.Error("failed to create product", zap.Error(err))
		return nil, ErrFailedCreate
	}

	log.Info("product listed", zap.String("product_id", p.ID), zap.Uint("factory_id", factoryID))
	return p, nil
}
