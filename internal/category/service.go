package category

import (
	"context"
	"strings"

	"joyeria-be/internal/logger"
	"joyeria-be/internal/transport"
	"joyeria-be/internal/utils"

	"go.uber.org/zap"
)

// SortFields maps the accepted ?sort= values to columns.
var SortFields = map[string]string{
	"name":       "c.name",
	"created_at": "c.created_at",
}

var DefaultSort = transport.Sort{Field: "c.name"}

type Service interface {
	List(ctx context.Context, filter ListFilter, sort transport.Sort, p transport.Pagination) ([]*Category, int, error)
	Get(ctx context.Context, id uint) (*Category, error)
	Create(ctx context.Context, in Input) (*Category, error)
	Update(ctx context.Context, id uint, in Input) (*Category, error)
	Delete(ctx context.Context, id uint) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) List(ctx context.Context, filter ListFilter, sort transport.Sort, p transport.Pagination) ([]*Category, int, error) {
	return s.repo.List(ctx, filter, sort, p)
}

func (s *service) Get(ctx context.Context, id uint) (*Category, error) {
	return s.repo.GetByID(ctx, id)
}

// Create adds a category. The slug is derived from the name when omitted.
func (s *service) Create(ctx context.Context, in Input) (*Category, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Create"),
	)

	c, err := fromInput(in)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, c); err != nil {
		log.Warn("create category failed", zap.Error(err))
		return nil, err
	}

	log.Info("category created", zap.Uint("category_id", c.ID))
	return c, nil
}

func (s *service) Update(ctx context.Context, id uint, in Input) (*Category, error) {
	c, err := fromInput(in)
	if err != nil {
		return nil, err
	}
	c.ID = id

	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *service) Delete(ctx context.Context, id uint) error {
	return s.repo.Delete(ctx, id)
}

func fromInput(in Input) (*Category, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := transport.Validate(in); err != nil {
		return nil, err
	}

	slug := utils.Slugify(in.Slug)
	if slug == "" {
		slug = utils.Slugify(in.Name)
	}

	return &Category{
		Name:        in.Name,
		Slug:        slug,
		Description: in.Description,
	}, nil
}
