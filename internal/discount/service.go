package discount

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"joyeria-be/internal/cache"
	"joyeria-be/internal/logger"
	"joyeria-be/internal/transport"
	"joyeria-be/internal/utils"

	"go.uber.org/zap"
)

const (
	activeCacheKey = "discounts:all"
	activeCacheTTL = 60 * time.Second
)

type Service interface {
	List(ctx context.Context, filter ListFilter, p transport.Pagination) ([]*Discount, int, error)
	Get(ctx context.Context, id uint) (*Discount, error)
	Create(ctx context.Context, in Input) (*Discount, error)
	Update(ctx context.Context, id uint, in Input) (*Discount, error)
	Delete(ctx context.Context, id uint) error

	// Pricer returns an evaluator over the currently enabled discounts.
	Pricer(ctx context.Context) (*Pricer, error)
}

type service struct {
	repo  Repository
	cache cache.Store
	now   func() time.Time
}

// NewService creates the discount service. A nil store disables caching.
func NewService(repo Repository, store cache.Store) Service {
	if store == nil {
		store = cache.Nop{}
	}
	return &service{repo: repo, cache: store, now: time.Now}
}

func (s *service) List(ctx context.Context, filter ListFilter, p transport.Pagination) ([]*Discount, int, error) {
	return s.repo.List(ctx, filter, p)
}

func (s *service) Get(ctx context.Context, id uint) (*Discount, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) Create(ctx context.Context, in Input) (*Discount, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Create"),
	)

	d, err := fromInput(in)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, d); err != nil {
		return nil, err
	}
	s.invalidate(ctx)

	log.Info("discount created", zap.Uint("discount_id", d.ID))
	return d, nil
}

func (s *service) Update(ctx context.Context, id uint, in Input) (*Discount, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Update"),
		zap.Uint("discount_id", id),
	)

	d, err := fromInput(in)
	if err != nil {
		return nil, err
	}
	d.ID = id

	if err := s.repo.Update(ctx, d); err != nil {
		return nil, err
	}
	s.invalidate(ctx)

	log.Info("discount updated")
	return d, nil
}

func (s *service) Delete(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)

	logger.FromCtx(ctx).Info("discount deleted", zap.Uint("discount_id", id))
	return nil
}

func (s *service) Pricer(ctx context.Context) (*Pricer, error) {
	discounts, err := s.active(ctx)
	if err != nil {
		return nil, err
	}
	return NewPricer(discounts, s.now()), nil
}

// active reads the enabled discount list through the cache. Cache errors
// fall back to the database.
func (s *service) active(ctx context.Context) ([]Discount, error) {
	log := logger.FromCtx(ctx).With(zap.String("layer", "service"), zap.String("method", "active"))

	raw, err := s.cache.Get(ctx, activeCacheKey)
	switch {
	case err == nil:
		var discounts []Discount
		if jsonErr := json.Unmarshal(raw, &discounts); jsonErr == nil {
			return discounts, nil
		}
		log.Warn("discarding malformed cached discounts")
	case !errors.Is(err, cache.ErrMiss):
		log.Warn("discount cache read failed", zap.Error(err))
	}

	discounts, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(discounts); err == nil {
		if err := s.cache.Set(ctx, activeCacheKey, raw, activeCacheTTL); err != nil {
			log.Warn("discount cache write failed", zap.Error(err))
		}
	}
	return discounts, nil
}

func (s *service) invalidate(ctx context.Context) {
	if err := s.cache.Delete(ctx, activeCacheKey); err != nil {
		logger.FromCtx(ctx).Warn("discount cache invalidation failed", zap.Error(err))
	}
}

func fromInput(in Input) (*Discount, error) {
	if err := transport.Validate(in); err != nil {
		return nil, err
	}

	value := *in.Value
	if in.Type == TypePercentage && value > 100 {
		return nil, ErrPercentageTooLarge
	}
	if in.StartDate != nil && in.EndDate != nil && in.StartDate.After(*in.EndDate) {
		return nil, ErrInvalidDateRange
	}

	productIDs := utils.UniqueUints(in.ProductIDs)
	if !in.IsGeneric && len(productIDs) == 0 {
		return nil, ErrProductsRequired
	}

	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}

	return &Discount{
		Name:       in.Name,
		Type:       in.Type,
		Value:      value,
		StartDate:  in.StartDate,
		EndDate:    in.EndDate,
		IsActive:   active,
		IsGeneric:  in.IsGeneric,
		ProductIDs: productIDs,
	}, nil
}
