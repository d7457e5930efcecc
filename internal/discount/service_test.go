package discount

import (
	"context"
	"errors"
	"testing"
	"time"

	"joyeria-be/internal/apperr"
	"joyeria-be/internal/cache"
	"joyeria-be/internal/transport"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- Mocks ---

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) List(ctx context.Context, filter ListFilter, p transport.Pagination) ([]*Discount, int, error) {
	args := m.Called(ctx, filter, p)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*Discount), args.Int(1), args.Error(2)
}

func (m *MockRepository) ListActive(ctx context.Context) ([]Discount, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Discount), args.Error(1)
}

func (m *MockRepository) GetByID(ctx context.Context, id uint) (*Discount, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Discount), args.Error(1)
}

func (m *MockRepository) Create(ctx context.Context, d *Discount) error {
	return m.Called(ctx, d).Error(0)
}

func (m *MockRepository) Update(ctx context.Context, d *Discount) error {
	return m.Called(ctx, d).Error(0)
}

func (m *MockRepository) Delete(ctx context.Context, id uint) error {
	return m.Called(ctx, id).Error(0)
}

type memStore struct {
	data    map[string][]byte
	getErr  error
	deletes int
}

func newMemStore() *memStore { return &memStore{data: map[string][]byte{}} }

func (s *memStore) Get(_ context.Context, key string) ([]byte, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	v, ok := s.data[key]
	if !ok {
		return nil, cache.ErrMiss
	}
	return v, nil
}

func (s *memStore) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	s.data[key] = value
	return nil
}

func (s *memStore) Delete(_ context.Context, keys ...string) error {
	s.deletes++
	for _, k := range keys {
		delete(s.data, k)
	}
	return nil
}

func f64(v float64) *float64 { return &v }

// --- Tests ---

func TestService_Create_Validation(t *testing.T) {
	svc := NewService(new(MockRepository), nil)
	ctx := context.Background()
	start := time.Now()
	end := start.Add(-time.Hour)

	cases := []struct {
		name string
		in   Input
		want error
	}{
		{"MissingName", Input{Type: TypeFixed, Value: f64(1), IsGeneric: true}, apperr.ErrValidation},
		{"BadType", Input{Name: "x", Type: "bogus", Value: f64(1), IsGeneric: true}, apperr.ErrValidation},
		{"MissingValue", Input{Name: "x", Type: TypeFixed, IsGeneric: true}, apperr.ErrValidation},
		{"NegativeValue", Input{Name: "x", Type: TypeFixed, Value: f64(-1), IsGeneric: true}, apperr.ErrValidation},
		{"PercentageOver100", Input{Name: "x", Type: TypePercentage, Value: f64(120), IsGeneric: true}, ErrPercentageTooLarge},
		{"DateRange", Input{Name: "x", Type: TypeFixed, Value: f64(1), IsGeneric: true, StartDate: &start, EndDate: &end}, ErrInvalidDateRange},
		{"NoProducts", Input{Name: "x", Type: TypeFixed, Value: f64(1)}, ErrProductsRequired},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tc.in)
			assert.ErrorIs(t, err, tc.want)
			assert.Equal(t, 400, apperr.Status(err))
		})
	}
}

func TestService_Create(t *testing.T) {
	repo := new(MockRepository)
	store := newMemStore()
	store.data[activeCacheKey] = []byte("[]")
	svc := NewService(repo, store)

	repo.On("Create", mock.Anything, mock.MatchedBy(func(d *Discount) bool {
		return d.Name == "Rings" && d.IsActive && len(d.ProductIDs) == 2
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*Discount).ID = 7
	}).Return(nil)

	d, err := svc.Create(context.Background(), Input{
		Name:       "Rings",
		Type:       TypePercentage,
		Value:      f64(100),
		ProductIDs: []uint{4, 5, 4},
	})
	require.NoError(t, err)
	assert.Equal(t, uint(7), d.ID)
	assert.Equal(t, []uint{4, 5}, d.ProductIDs)
	assert.NotContains(t, store.data, activeCacheKey)
	repo.AssertExpectations(t)
}

func TestService_Update(t *testing.T) {
	repo := new(MockRepository)
	store := newMemStore()
	svc := NewService(repo, store)
	inactive := false

	repo.On("Update", mock.Anything, mock.MatchedBy(func(d *Discount) bool {
		return d.ID == 3 && !d.IsActive && d.IsGeneric
	})).Return(nil).Once()

	d, err := svc.Update(context.Background(), 3, Input{
		Name: "All", Type: TypeFixed, Value: f64(5), IsActive: &inactive, IsGeneric: true,
	})
	require.NoError(t, err)
	assert.Equal(t, uint(3), d.ID)
	assert.Equal(t, 1, store.deletes)

	repo.On("Update", mock.Anything, mock.Anything).Return(ErrDiscountNotFound).Once()
	_, err = svc.Update(context.Background(), 4, Input{Name: "All", Type: TypeFixed, Value: f64(5), IsGeneric: true})
	assert.ErrorIs(t, err, ErrDiscountNotFound)
	assert.Equal(t, 1, store.deletes)
}

func TestService_Delete(t *testing.T) {
	repo := new(MockRepository)
	store := newMemStore()
	svc := NewService(repo, store)

	repo.On("Delete", mock.Anything, uint(2)).Return(nil)
	require.NoError(t, svc.Delete(context.Background(), 2))
	assert.Equal(t, 1, store.deletes)
}

func TestService_Pricer(t *testing.T) {
	active := []Discount{
		{ID: 1, Name: "20%", Type: TypePercentage, Value: 20, IsActive: true, IsGeneric: true},
		{ID: 2, Name: "flat", Type: TypeFixed, Value: 30, IsActive: true, ProductIDs: []uint{9}},
	}

	t.Run("LoadsAndCaches", func(t *testing.T) {
		repo := new(MockRepository)
		store := newMemStore()
		svc := NewService(repo, store)
		repo.On("ListActive", mock.Anything).Return(active, nil).Once()

		p, err := svc.Pricer(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 80.0, p.Price(1, 100).Price)
		assert.Equal(t, 70.0, p.Price(9, 100).Price)
		assert.Contains(t, store.data, activeCacheKey)

		// Second call is served from the cache.
		p, err = svc.Pricer(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 70.0, p.Price(9, 100).Price)
		repo.AssertNumberOfCalls(t, "ListActive", 1)
	})

	t.Run("CacheFailureFallsBack", func(t *testing.T) {
		repo := new(MockRepository)
		store := newMemStore()
		store.getErr = errors.New("redis down")
		svc := NewService(repo, store)
		repo.On("ListActive", mock.Anything).Return(active, nil)

		p, err := svc.Pricer(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 80.0, p.Price(1, 100).Price)
	})

	t.Run("MalformedCacheEntry", func(t *testing.T) {
		repo := new(MockRepository)
		store := newMemStore()
		store.data[activeCacheKey] = []byte("{not json")
		svc := NewService(repo, store)
		repo.On("ListActive", mock.Anything).Return([]Discount{}, nil)

		p, err := svc.Pricer(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 100.0, p.Price(1, 100).Price)
		repo.AssertExpectations(t)
	})

	t.Run("RepositoryError", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo, nil)
		repo.On("ListActive", mock.Anything).Return(nil, errors.New("db down"))

		_, err := svc.Pricer(context.Background())
		assert.Error(t, err)
	})

	t.Run("UsesServiceClock", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo, nil).(*service)
		end := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		svc.now = func() time.Time { return end.Add(time.Second) }
		repo.On("ListActive", mock.Anything).Return([]Discount{
			{ID: 1, Type: TypeFixed, Value: 10, IsActive: true, IsGeneric: true, EndDate: &end},
		}, nil)

		p, err := svc.Pricer(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 100.0, p.Price(1, 100).Price)
	})
}
