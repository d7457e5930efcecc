package tag

import (
	"context"
	"strings"

	"joyeria-be/internal/transport"
)

var SortFields = map[string]string{
	"name":       "t.name",
	"created_at": "t.created_at",
}

var DefaultSort = transport.Sort{Field: "t.name"}

type Service interface {
	List(ctx context.Context, filter ListFilter, sort transport.Sort, p transport.Pagination) ([]*Tag, int, error)
	Get(ctx context.Context, id uint) (*Tag, error)
	Create(ctx context.Context, in Input) (*Tag, error)
	Update(ctx context.Context, id uint, in Input) (*Tag, error)
	Delete(ctx context.Context, id uint) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) List(ctx context.Context, filter ListFilter, sort transport.Sort, p transport.Pagination) ([]*Tag, int, error) {
	return s.repo.List(ctx, filter, sort, p)
}

func (s *service) Get(ctx context.Context, id uint) (*Tag, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) Create(ctx context.Context, in Input) (*Tag, error) {
	name, err := normalize(in)
	if err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, name)
}

func (s *service) Update(ctx context.Context, id uint, in Input) (*Tag, error) {
	name, err := normalize(in)
	if err != nil {
		return nil, err
	}
	return s.repo.Update(ctx, id, name)
}

func (s *service) Delete(ctx context.Context, id uint) error {
	return s.repo.Delete(ctx, id)
}

func normalize(in Input) (string, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := transport.Validate(in); err != nil {
		return "", err
	}
	return in.Name, nil
}
