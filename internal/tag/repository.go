package tag

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"joyeria-be/internal/apperr"
	"joyeria-be/internal/logger"
	"joyeria-be/internal/transport"
	"joyeria-be/internal/utils"

	"go.uber.org/zap"
)

type Repository interface {
	List(ctx context.Context, filter ListFilter, sort transport.Sort, p transport.Pagination) ([]*Tag, int, error)
	GetByID(ctx context.Context, id uint) (*Tag, error)
	Create(ctx context.Context, name string) (*Tag, error)
	Update(ctx context.Context, id uint, name string) (*Tag, error)
	Delete(ctx context.Context, id uint) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) List(ctx context.Context, filter ListFilter, sort transport.Sort, p transport.Pagination) ([]*Tag, int, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "List"),
	)

	where := []string{}
	args := []any{}
	if filter.Search != nil && *filter.Search != "" {
		args = append(args, utils.ContainsPattern(*filter.Search))
		where = append(where, fmt.Sprintf("t.name ILIKE $%d", len(args)))
	}

	whereSQL := ""
	if len(where) > 0 {
		whereSQL = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM tags t"+whereSQL, args...).Scan(&total); err != nil {
		log.Error("count tags failed", zap.Error(err))
		return nil, 0, err
	}

	query := "SELECT t.id, t.name, t.created_at FROM tags t" + whereSQL +
		" ORDER BY " + sort.SQL() + ", t.id ASC" +
		fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, p.Limit, p.Offset())

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("list tags failed", zap.Error(err))
		return nil, 0, err
	}
	defer rows.Close()

	tags := []*Tag{}
	for rows.Next() {
		var t Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.CreatedAt); err != nil {
			return nil, 0, err
		}
		tags = append(tags, &t)
	}
	return tags, total, rows.Err()
}

func (r *repository) GetByID(ctx context.Context, id uint) (*Tag, error) {
	var t Tag
	err := r.db.QueryRowContext(ctx, `SELECT id, name, created_at FROM tags WHERE id = $1`, id).
		Scan(&t.ID, &t.Name, &t.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTagNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *repository) Create(ctx context.Context, name string) (*Tag, error) {
	t := Tag{Name: name}
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO tags (name) VALUES ($1) RETURNING id, created_at`, name,
	).Scan(&t.ID, &t.CreatedAt)
	if apperr.IsUniqueViolation(err) {
		return nil, ErrTagExists
	}
	if err != nil {
		logger.FromCtx(ctx).Error("create tag failed", zap.String("name", name), zap.Error(err))
		return nil, err
	}
	return &t, nil
}

func (r *repository) Update(ctx context.Context, id uint, name string) (*Tag, error) {
	t := Tag{ID: id, Name: name}
	err := r.db.QueryRowContext(ctx,
		`UPDATE tags SET name = $1 WHERE id = $2 RETURNING created_at`, name, id,
	).Scan(&t.CreatedAt)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, ErrTagNotFound
	case apperr.IsUniqueViolation(err):
		return nil, ErrTagExists
	case err != nil:
		return nil, err
	}
	return &t, nil
}

func (r *repository) Delete(ctx context.Context, id uint) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tags WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrTagNotFound
	}
	return nil
}
