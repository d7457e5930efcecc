package product

import (
	"context"
	"strings"

	"joyeria-be/internal/discount"
	"joyeria-be/internal/logger"
	"joyeria-be/internal/transport"
	"joyeria-be/internal/utils"

	"go.uber.org/zap"
)

var SortFields = map[string]string{
	"name":       "p.name",
	"price":      "p.price",
	"created_at": "p.created_at",
	"rating":     "p.rating_average",
}

var DefaultSort = transport.Sort{Field: "p.created_at", Desc: true}

// PricerSource hands out a discount snapshot for the current request.
type PricerSource interface {
	Pricer(ctx context.Context) (*discount.Pricer, error)
}

type Service interface {
	List(ctx context.Context, filter ListFilter, sort transport.Sort, p transport.Pagination) ([]*Product, int, error)
	Get(ctx context.Context, id uint) (*Product, error)
	Create(ctx context.Context, in Input) (*Product, error)
	Update(ctx context.Context, id uint, in Input) (*Product, error)
	Delete(ctx context.Context, id uint) error
	Rate(ctx context.Context, productID, userID uint, in RatingInput) (*RatingSummary, error)
}

type service struct {
	repo   Repository
	prices PricerSource
}

func NewService(repo Repository, prices PricerSource) Service {
	return &service{repo: repo, prices: prices}
}

// pricer never fails; when discounts cannot be loaded products are served at
// their list price.
func (s *service) pricer(ctx context.Context) *discount.Pricer {
	if s.prices == nil {
		return nil
	}
	p, err := s.prices.Pricer(ctx)
	if err != nil {
		logger.FromCtx(ctx).Warn("discounts unavailable, serving list prices", zap.Error(err))
		return nil
	}
	return p
}

// ApplyPrice fills FinalPrice and Discount from pricer.
func ApplyPrice(p *Product, pricer *discount.Pricer) {
	res := pricer.Price(p.ID, p.Price)
	p.FinalPrice = res.Price
	p.Discount = res.Discount
}

func (s *service) List(
	ctx context.Context,
	filter ListFilter,
	sort transport.Sort,
	p transport.Pagination,
) ([]*Product, int, error) {

	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "List"),
	)

	if filter.MinPrice != nil && filter.MaxPrice != nil && *filter.MinPrice > *filter.MaxPrice {
		return nil, 0, ErrInvalidPrice
	}

	products, total, err := s.repo.List(ctx, filter, sort, p)
	if err != nil {
		log.Error("failed to list products", zap.Error(err))
		return nil, 0, err
	}

	pricer := s.pricer(ctx)
	for _, prod := range products {
		ApplyPrice(prod, pricer)
	}

	log.Debug("list products success", zap.Int("count", len(products)), zap.Int("total", total))
	return products, total, nil
}

func (s *service) Get(ctx context.Context, id uint) (*Product, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	ApplyPrice(p, s.pricer(ctx))
	return p, nil
}

func (s *service) Create(ctx context.Context, in Input) (*Product, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Create"),
	)

	p, err := fromInput(in)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	ApplyPrice(p, s.pricer(ctx))

	log.Info("product created", zap.Uint("product_id", p.ID), zap.String("slug", p.Slug))
	return p, nil
}

func (s *service) Update(ctx context.Context, id uint, in Input) (*Product, error) {
	p, err := fromInput(in)
	if err != nil {
		return nil, err
	}
	p.ID = id

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	ApplyPrice(p, s.pricer(ctx))

	logger.FromCtx(ctx).Info("product updated", zap.Uint("product_id", id))
	return p, nil
}

func (s *service) Delete(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	logger.FromCtx(ctx).Info("product deleted", zap.Uint("product_id", id))
	return nil
}

func (s *service) Rate(ctx context.Context, productID, userID uint, in RatingInput) (*RatingSummary, error) {
	if err := transport.Validate(in); err != nil {
		return nil, err
	}
	return s.repo.AddRating(ctx, productID, userID, in.Rating)
}

func fromInput(in Input) (*Product, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := transport.Validate(in); err != nil {
		return nil, err
	}

	p := &Product{
		Name:             in.Name,
		Slug:             utils.Slugify(in.Slug),
		Description:      in.Description,
		Price:            *in.Price,
		AvailabilityType: in.AvailabilityType,
		ImageURL:         in.ImageURL,
		CategoryID:       in.CategoryID,
		TagIDs:           utils.UniqueUints(in.TagIDs),
		IsActive:         true,
	}
	if p.Slug == "" {
		p.Slug = utils.Slugify(in.Name)
	}
	if in.Stock != nil {
		p.Stock = *in.Stock
	}
	if p.AvailabilityType == "" {
		p.AvailabilityType = AvailabilityStock
	}
	if in.IsActive != nil {
		p.IsActive = *in.IsActive
	}
	return p, nil
}
