package setting

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"joyeria-be/internal/logger"
	"joyeria-be/internal/utils"

	"go.uber.org/zap"
)

type Repository interface {
	List(ctx context.Context, prefix string) ([]*Setting, error)
	Get(ctx context.Context, key string) (*Setting, error)
	Upsert(ctx context.Context, key, value string) (*Setting, error)
	Delete(ctx context.Context, key string) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

// List returns every setting ordered by key, optionally restricted to keys
// starting with prefix.
func (r *repository) List(ctx context.Context, prefix string) ([]*Setting, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "List"),
		zap.String("prefix", prefix),
	)

	query := `SELECT key, value, updated_at FROM settings`
	args := []any{}
	if prefix != "" {
		args = append(args, utils.EscapeLike(prefix)+"%")
		query += fmt.Sprintf(" WHERE key LIKE $%d", len(args))
	}
	query += " ORDER BY key ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("list settings failed", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	out := []*Setting{}
	for rows.Next() {
		var s Setting
		if err := rows.Scan(&s.Key, &s.Value, &s.UpdatedAt); err != nil {
			log.Error("row scan failed", zap.Error(err))
			return nil, err
		}
		out = append(out, &s)
	}
	return out, rows.Err()
}

func (r *repository) Get(ctx context.Context, key string) (*Setting, error) {
	var s Setting
	err := r.db.QueryRowContext(ctx, `
		SELECT key, value, updated_at FROM settings WHERE key = $1
	`, key).Scan(&s.Key, &s.Value, &s.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSettingNotFound
	}
	if err != nil {
		logger.FromCtx(ctx).Error("get setting failed", zap.String("key", key), zap.Error(err))
		return nil, err
	}
	return &s, nil
}

func (r *repository) Upsert(ctx context.Context, key, value string) (*Setting, error) {
	var s Setting
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO settings (key, value)
		VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE
		SET value = EXCLUDED.value, updated_at = NOW()
		RETURNING key, value, updated_at
	`, key, value).Scan(&s.Key, &s.Value, &s.UpdatedAt)
	if err != nil {
		logger.FromCtx(ctx).Error("upsert setting failed", zap.String("key", key), zap.Error(err))
		return nil, err
	}
	return &s, nil
}

func (r *repository) Delete(ctx context.Context, key string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM settings WHERE key = $1`, key)
	if err != nil {
		logger.FromCtx(ctx).Error("delete setting failed", zap.String("key", key), zap.Error(err))
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrSettingNotFound
	}
	return nil
}
