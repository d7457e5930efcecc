package cart

import (
	"context"
	"errors"

	"joyeria-be/internal/apperr"
	"joyeria-be/internal/discount"
	"joyeria-be/internal/logger"
	"joyeria-be/internal/product"
	"joyeria-be/internal/transport"
	"joyeria-be/internal/utils"

	"go.uber.org/zap"
)

type ProductLookup interface {
	GetByID(ctx context.Context, id uint) (*product.Product, error)
}

type PricerSource interface {
	Pricer(ctx context.Context) (*discount.Pricer, error)
}

// Service defines the business logic for carts. Every mutation answers with
// a fresh read of the cart.
type Service interface {
	GetCart(ctx context.Context, userID uint) (*View, error)
	AddItem(ctx context.Context, userID uint, in AddItemInput) (*View, error)
	UpdateItem(ctx context.Context, userID, itemID uint, in UpdateItemInput) (*View, error)
	RemoveItem(ctx context.Context, userID, itemID uint) (*View, error)
	Clear(ctx context.Context, userID uint) (*View, error)
}

type service struct {
	repo     Repository
	products ProductLookup
	prices   PricerSource
}

func NewService(repo Repository, products ProductLookup, prices PricerSource) Service {
	return &service{repo: repo, products: products, prices: prices}
}

func (s *service) GetCart(ctx context.Context, userID uint) (*View, error) {
	c, err := s.repo.GetOrCreateCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, c)
}

func (s *service) AddItem(ctx context.Context, userID uint, in AddItemInput) (*View, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "AddItem"),
		zap.Uint("user_id", userID),
		zap.Uint("product_id", in.ProductID),
	)

	if err := transport.Validate(in); err != nil {
		return nil, err
	}

	p, err := s.products.GetByID(ctx, in.ProductID)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	if !p.IsActive {
		return nil, ErrProductUnavailable
	}

	c, err := s.repo.GetOrCreateCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.AddItem(ctx, c.ID, in.ProductID, in.Quantity); err != nil {
		log.Error("failed to add item", zap.Error(err))
		return nil, err
	}

	log.Info("cart item added", zap.Int("quantity", in.Quantity))
	return s.view(ctx, c)
}

// UpdateItem overwrites the line quantity. Zero or less removes the line.
func (s *service) UpdateItem(ctx context.Context, userID, itemID uint, in UpdateItemInput) (*View, error) {
	if err := transport.Validate(in); err != nil {
		return nil, err
	}

	c, err := s.repo.GetOrCreateCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	if *in.Quantity <= 0 {
		err = s.repo.RemoveItem(ctx, c.ID, itemID)
	} else {
		err = s.repo.UpdateItemQuantity(ctx, c.ID, itemID, *in.Quantity)
	}
	if err != nil {
		return nil, err
	}

	return s.view(ctx, c)
}

func (s *service) RemoveItem(ctx context.Context, userID, itemID uint) (*View, error) {
	c, err := s.repo.GetOrCreateCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.RemoveItem(ctx, c.ID, itemID); err != nil {
		return nil, err
	}
	return s.view(ctx, c)
}

func (s *service) Clear(ctx context.Context, userID uint) (*View, error) {
	c, err := s.repo.GetOrCreateCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Clear(ctx, c.ID); err != nil {
		return nil, err
	}

	logger.FromCtx(ctx).Info("cart cleared", zap.Uint("user_id", userID), zap.Uint("cart_id", c.ID))
	return s.view(ctx, c)
}

func (s *service) view(ctx context.Context, c *Cart) (*View, error) {
	items, err := s.repo.GetItems(ctx, c.ID)
	if err != nil {
		return nil, err
	}

	var pricer *discount.Pricer
	if s.prices != nil {
		if pricer, err = s.prices.Pricer(ctx); err != nil {
			logger.FromCtx(ctx).Warn("discounts unavailable, pricing cart at list prices", zap.Error(err))
			pricer = nil
		}
	}

	return BuildView(c, items, pricer), nil
}

// BuildView derives line prices and totals. Subtotal uses list prices; Total
// uses discounted prices.
func BuildView(c *Cart, items []Item, pricer *discount.Pricer) *View {
	v := &View{
		ID:        c.ID,
		UserID:    c.UserID,
		Items:     make([]ItemView, 0, len(items)),
		UpdatedAt: c.UpdatedAt,
	}

	for _, it := range items {
		res := pricer.Price(it.ProductID, it.ProductPrice)
		line := ItemView{
			ID:               it.ID,
			ProductID:        it.ProductID,
			Name:             it.ProductName,
			Slug:             it.ProductSlug,
			ImageURL:         it.ProductImageURL,
			Stock:            it.ProductStock,
			AvailabilityType: it.AvailabilityType,
			IsActive:         it.ProductIsActive,
			Quantity:         it.Quantity,
			UnitPrice:        it.ProductPrice,
			FinalPrice:       res.Price,
			Discount:         res.Discount,
			LineTotal:        utils.RoundMoney(res.Price * float64(it.Quantity)),
		}

		v.Items = append(v.Items, line)
		v.ItemCount += it.Quantity
		v.Subtotal += it.ProductPrice * float64(it.Quantity)
		v.Total += line.LineTotal
	}

	v.Subtotal = utils.RoundMoney(v.Subtotal)
	v.Total = utils.RoundMoney(v.Total)
	return v
}
