package favorite

import (
	"context"

	"joyeria-be/internal/discount"
	"joyeria-be/internal/logger"
	"joyeria-be/internal/product"
	"joyeria-be/internal/transport"

	"go.uber.org/zap"
)

type ProductLookup interface {
	GetByIDs(ctx context.Context, ids []uint) (map[uint]*product.Product, error)
}

type PricerSource interface {
	Pricer(ctx context.Context) (*discount.Pricer, error)
}

type Service interface {
	List(ctx context.Context, userID uint, p transport.Pagination) ([]*Favorite, int, error)
	Add(ctx context.Context, userID uint, in AddInput) (*Favorite, error)
	Remove(ctx context.Context, userID, productID uint) error
}

type service struct {
	repo     Repository
	products ProductLookup
	prices   PricerSource
}

func NewService(repo Repository, products ProductLookup, prices PricerSource) Service {
	return &service{repo: repo, products: products, prices: prices}
}

// List attaches the current, priced product to each favorite. Inactive
// products stay in the list so the user can still remove them.
func (s *service) List(ctx context.Context, userID uint, p transport.Pagination) ([]*Favorite, int, error) {
	favs, total, err := s.repo.List(ctx, userID, p)
	if err != nil {
		return nil, 0, err
	}
	if len(favs) == 0 {
		return favs, total, nil
	}

	ids := make([]uint, 0, len(favs))
	for _, f := range favs {
		ids = append(ids, f.ProductID)
	}
	products, err := s.products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, 0, err
	}

	var pricer *discount.Pricer
	if s.prices != nil {
		if pricer, err = s.prices.Pricer(ctx); err != nil {
			logger.FromCtx(ctx).Warn("discounts unavailable, serving list prices", zap.Error(err))
			pricer = nil
		}
	}

	for _, f := range favs {
		if prod, ok := products[f.ProductID]; ok {
			product.ApplyPrice(prod, pricer)
			f.Product = prod
		}
	}
	return favs, total, nil
}

func (s *service) Add(ctx context.Context, userID uint, in AddInput) (*Favorite, error) {
	if err := transport.Validate(in); err != nil {
		return nil, err
	}

	f, err := s.repo.Add(ctx, userID, in.ProductID)
	if err != nil {
		return nil, err
	}

	logger.FromCtx(ctx).Info("favorite added",
		zap.Uint("user_id", userID),
		zap.Uint("product_id", in.ProductID),
	)
	return f, nil
}

func (s *service) Remove(ctx context.Context, userID, productID uint) error {
	return s.repo.Remove(ctx, userID, productID)
}
