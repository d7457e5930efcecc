package setting

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepository_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewRepository(db)
	ts := time.Now()

	mock.ExpectQuery(`SELECT key, value, updated_at FROM settings WHERE key LIKE \$1 ORDER BY key ASC`).
		WithArgs(`shop\_%`).
		WillReturnRows(sqlmock.NewRows([]string{"key", "value", "updated_at"}).
			AddRow("shop_name", "Joyeria", ts).
			AddRow("shop_phone", "555", ts))

	items, err := repo.List(context.Background(), "shop_")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "shop_name", items[0].Key)

	mock.ExpectQuery(`SELECT key, value, updated_at FROM settings ORDER BY key ASC`).
		WillReturnRows(sqlmock.NewRows([]string{"key", "value", "updated_at"}))

	items, err = repo.List(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_Get(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewRepository(db)

	mock.ExpectQuery(`FROM settings WHERE key = \$1`).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"key", "value", "updated_at"}))

	_, err = repo.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrSettingNotFound)
}

func TestRepository_Upsert(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewRepository(db)
	ts := time.Now()

	mock.ExpectQuery(`INSERT INTO settings \(key, value\) VALUES \(\$1, \$2\) ON CONFLICT \(key\) DO UPDATE`).
		WithArgs("free_shipping", "150").
		WillReturnRows(sqlmock.NewRows([]string{"key", "value", "updated_at"}).AddRow("free_shipping", "150", ts))

	s, err := repo.Upsert(context.Background(), "free_shipping", "150")
	require.NoError(t, err)
	assert.Equal(t, "150", s.Value)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_Delete(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewRepository(db)

	mock.ExpectExec(`DELETE FROM settings WHERE key = \$1`).
		WithArgs("gone").
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.Delete(context.Background(), "gone"), ErrSettingNotFound)
}

func TestRepository_List_PrefixWildcardsAreLiteral(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT key, value, updated_at FROM settings WHERE key LIKE \$1`).
		WithArgs(`shop\_%`).
		WillReturnRows(sqlmock.NewRows([]string{"key", "value", "updated_at"}))

	items, err := NewRepository(db).List(context.Background(), "shop_")
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.NoError(t, mock.ExpectationsWereMet())
}
