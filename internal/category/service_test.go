package category

import (
	"context"
	"testing"

	"joyeria-be/internal/apperr"
	"joyeria-be/internal/transport"
	"joyeria-be/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- Mocks ---

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) List(ctx context.Context, filter ListFilter, sort transport.Sort, p transport.Pagination) ([]*Category, int, error) {
	args := m.Called(ctx, filter, sort, p)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*Category), args.Int(1), args.Error(2)
}

func (m *MockRepository) GetByID(ctx context.Context, id uint) (*Category, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Category), args.Error(1)
}

func (m *MockRepository) Create(ctx context.Context, c *Category) error {
	return m.Called(ctx, c).Error(0)
}

func (m *MockRepository) Update(ctx context.Context, c *Category) error {
	return m.Called(ctx, c).Error(0)
}

func (m *MockRepository) Delete(ctx context.Context, id uint) error {
	return m.Called(ctx, id).Error(0)
}

// --- Tests ---

func TestService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("DerivesSlug", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo)

		repo.On("Create", ctx, mock.MatchedBy(func(c *Category) bool {
			return c.Name == "Anillos de Plata" && c.Slug == "anillos-de-plata"
		})).Return(nil)

		c, err := svc.Create(ctx, Input{Name: "  Anillos de Plata "})
		require.NoError(t, err)
		assert.Equal(t, "anillos-de-plata", c.Slug)
		repo.AssertExpectations(t)
	})

	t.Run("ExplicitSlug", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo)

		repo.On("Create", ctx, mock.MatchedBy(func(c *Category) bool {
			return c.Slug == "rings"
		})).Return(nil)

		_, err := svc.Create(ctx, Input{Name: "Anillos", Slug: "Rings", Description: utils.StrPtr("d")})
		require.NoError(t, err)
	})

	t.Run("BlankName", func(t *testing.T) {
		svc := NewService(new(MockRepository))
		_, err := svc.Create(ctx, Input{Name: "   "})
		assert.ErrorIs(t, err, apperr.ErrValidation)
		assert.EqualError(t, err, "name is required")
	})

	t.Run("Duplicate", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo)
		repo.On("Create", ctx, mock.Anything).Return(ErrCategoryExists)

		_, err := svc.Create(ctx, Input{Name: "Anillos"})
		assert.Equal(t, 409, apperr.Status(err))
	})
}

func TestService_Update(t *testing.T) {
	ctx := context.Background()
	repo := new(MockRepository)
	svc := NewService(repo)

	repo.On("Update", ctx, mock.MatchedBy(func(c *Category) bool { return c.ID == 2 })).Return(nil)
	repo.On("Update", ctx, mock.MatchedBy(func(c *Category) bool { return c.ID == 3 })).Return(ErrCategoryNotFound)

	c, err := svc.Update(ctx, 2, Input{Name: "Aretes"})
	require.NoError(t, err)
	assert.Equal(t, "aretes", c.Slug)

	_, err = svc.Update(ctx, 3, Input{Name: "Aretes"})
	assert.ErrorIs(t, err, ErrCategoryNotFound)
}

func TestService_Passthrough(t *testing.T) {
	ctx := context.Background()
	repo := new(MockRepository)
	svc := NewService(repo)
	p := transport.Pagination{Limit: 20, Page: 1}

	repo.On("List", ctx, ListFilter{}, DefaultSort, p).Return([]*Category{{ID: 1}}, 1, nil)
	repo.On("GetByID", ctx, uint(1)).Return(&Category{ID: 1}, nil)
	repo.On("Delete", ctx, uint(1)).Return(nil)

	items, total, err := svc.List(ctx, ListFilter{}, DefaultSort, p)
	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, 1, total)

	c, err := svc.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, uint(1), c.ID)

	assert.NoError(t, svc.Delete(ctx, 1))
	repo.AssertExpectations(t)
}
