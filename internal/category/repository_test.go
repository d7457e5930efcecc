package category

import (
	"context"
	"errors"
	"testing"
	"time"

	"joyeria-be/internal/transport"
	"joyeria-be/internal/utils"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var categoryColumns = []string{"id", "name", "slug", "description", "created_at", "updated_at"}

func TestRepository_List(t *testing.T) {
	ctx := context.Background()
	p := transport.Pagination{Limit: 10, Page: 1}

	t.Run("Success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewRepository(db)

		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM categories c`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
		mock.ExpectQuery(`(?s)SELECT .* FROM categories c ORDER BY c.name ASC, c.id ASC LIMIT \$1 OFFSET \$2`).
			WithArgs(10, 0).
			WillReturnRows(sqlmock.NewRows(categoryColumns).
				AddRow(1, "Anillos", "anillos", nil, time.Now(), time.Now()).
				AddRow(2, "Collares", "collares", "Cadenas", time.Now(), time.Now()))

		items, total, err := repo.List(ctx, ListFilter{}, DefaultSort, p)
		require.NoError(t, err)
		assert.Equal(t, 2, total)
		require.Len(t, items, 2)
		assert.Nil(t, items[0].Description)
		assert.Equal(t, "Cadenas", *items[1].Description)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("WithSearch", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewRepository(db)

		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM categories c WHERE c.name ILIKE \$1`).
			WithArgs("%ani%").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectQuery(`(?s)WHERE c.name ILIKE \$1 ORDER BY c.created_at DESC, c.id ASC LIMIT \$2 OFFSET \$3`).
			WithArgs("%ani%", 10, 0).
			WillReturnRows(sqlmock.NewRows(categoryColumns))

		sort := transport.Sort{Field: "c.created_at", Desc: true}
		items, _, err := repo.List(ctx, ListFilter{Search: utils.StrPtr("ani")}, sort, p)
		require.NoError(t, err)
		assert.Empty(t, items)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("CountError", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewRepository(db)

		mock.ExpectQuery(`SELECT COUNT`).WillReturnError(errors.New("db error"))
		_, _, err = repo.List(ctx, ListFilter{}, DefaultSort, p)
		assert.Error(t, err)
	})
}

func TestRepository_GetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewRepository(db)

	mock.ExpectQuery(`FROM categories\s+WHERE id = \$1`).WithArgs(1).
		WillReturnRows(sqlmock.NewRows(categoryColumns).AddRow(1, "Anillos", "anillos", nil, time.Now(), time.Now()))
	mock.ExpectQuery(`FROM categories\s+WHERE id = \$1`).WithArgs(2).
		WillReturnRows(sqlmock.NewRows(categoryColumns))

	c, err := repo.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "anillos", c.Slug)

	_, err = repo.GetByID(context.Background(), 2)
	assert.ErrorIs(t, err, ErrCategoryNotFound)
}

func TestRepository_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewRepository(db)

		mock.ExpectQuery(`INSERT INTO categories`).
			WithArgs("Anillos", "anillos", nil).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(5, time.Now(), time.Now()))

		c := &Category{Name: "Anillos", Slug: "anillos"}
		require.NoError(t, repo.Create(ctx, c))
		assert.Equal(t, uint(5), c.ID)
	})

	t.Run("Duplicate", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewRepository(db)

		mock.ExpectQuery(`INSERT INTO categories`).WillReturnError(&pq.Error{Code: "23505"})

		err = repo.Create(ctx, &Category{Name: "Anillos", Slug: "anillos"})
		assert.ErrorIs(t, err, ErrCategoryExists)
	})
}

func TestRepository_Update(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewRepository(db)

	mock.ExpectQuery(`UPDATE categories`).
		WithArgs("Aretes", "aretes", nil, 3).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(time.Now(), time.Now()))
	mock.ExpectQuery(`UPDATE categories`).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}))
	mock.ExpectQuery(`UPDATE categories`).
		WillReturnError(&pq.Error{Code: "23505"})

	assert.NoError(t, repo.Update(context.Background(), &Category{ID: 3, Name: "Aretes", Slug: "aretes"}))
	assert.ErrorIs(t, repo.Update(context.Background(), &Category{ID: 4}), ErrCategoryNotFound)
	assert.ErrorIs(t, repo.Update(context.Background(), &Category{ID: 5}), ErrCategoryExists)
}

func TestRepository_Delete(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewRepository(db)

	mock.ExpectExec(`DELETE FROM categories`).WithArgs(1).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM categories`).WithArgs(2).WillReturnResult(sqlmock.NewResult(0, 0))

	assert.NoError(t, repo.Delete(context.Background(), 1))
	assert.ErrorIs(t, repo.Delete(context.Background(), 2), ErrCategoryNotFound)
}
