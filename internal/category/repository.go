package category

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
	List(ctx context.Context, filter ListFilter, sort transport.Sort, p transport.Pagination) ([]*Category, int, error)
	GetByID(ctx context.Context, id uint) (*Category, error)
	Create(ctx context.Context, c *Category) error
	Update(ctx context.Context, c *Category) error
	Delete(ctx context.Context, id uint) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) List(
	ctx context.Context,
	filter ListFilter,
	sort transport.Sort,
	p transport.Pagination,
) ([]*Category, int, error) {

	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "List"),
		zap.String("search", utils.PtrString(filter.Search)),
		zap.Int("limit", p.Limit),
		zap.Int("page", p.Page),
	)

	// ---------- FILTER ----------
	where := []string{}
	args := []any{}

	if filter.Search != nil && *filter.Search != "" {
		args = append(args, utils.ContainsPattern(*filter.Search))
		where = append(where, fmt.Sprintf("c.name ILIKE $%d", len(args)))
	}

	whereSQL := ""
	if len(where) > 0 {
		whereSQL = " WHERE " + strings.Join(where, " AND ")
	}

	// ---------- COUNT ----------
	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM categories c"+whereSQL, args...).Scan(&total); err != nil {
		log.Error("count categories failed", zap.Error(err))
		return nil, 0, err
	}

	// ---------- DATA ----------
	query := `
		SELECT c.id, c.name, c.slug, c.description, c.created_at, c.updated_at
		FROM categories c` + whereSQL +
		" ORDER BY " + sort.SQL() + ", c.id ASC" +
		fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, p.Limit, p.Offset())

	log.Debug("executing list categories query", zap.String("query", query))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("list categories failed", zap.Error(err))
		return nil, 0, err
	}
	defer rows.Close()

	categories := []*Category{}
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.CreatedAt, &c.UpdatedAt); err != nil {
			log.Error("row scan failed", zap.Error(err))
			return nil, 0, err
		}
		categories = append(categories, &c)
	}
	if err := rows.Err(); err != nil {
		log.Error("rows iteration failed", zap.Error(err))
		return nil, 0, err
	}

	return categories, total, nil
}

func (r *repository) GetByID(ctx context.Context, id uint) (*Category, error) {
	var c Category
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, slug, description, created_at, updated_at
		FROM categories
		WHERE id = $1
	`, id).Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCategoryNotFound
	}
	if err != nil {
		logger.FromCtx(ctx).Error("get category failed", zap.Uint("category_id", id), zap.Error(err))
		return nil, err
	}
	return &c, nil
}

func (r *repository) Create(ctx context.Context, c *Category) error {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO categories (name, slug, description)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`, c.Name, c.Slug, c.Description).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if apperr.IsUniqueViolation(err) {
			return ErrCategoryExists
		}
		logger.FromCtx(ctx).Error("create category failed", zap.String("name", c.Name), zap.Error(err))
		return err
	}
	return nil
}

func (r *repository) Update(ctx context.Context, c *Category) error {
	err := r.db.QueryRowContext(ctx, `
		UPDATE categories
		SET name = $1, slug = $2, description = $3, updated_at = NOW()
		WHERE id = $4
		RETURNING created_at, updated_at
	`, c.Name, c.Slug, c.Description, c.ID).Scan(&c.CreatedAt, &c.UpdatedAt)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return ErrCategoryNotFound
	case apperr.IsUniqueViolation(err):
		return ErrCategoryExists
	case err != nil:
		logger.FromCtx(ctx).Error("update category failed", zap.Uint("category_id", c.ID), zap.Error(err))
		return err
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id uint) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		logger.FromCtx(ctx).Error("delete category failed", zap.Uint("category_id", id), zap.Error(err))
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrCategoryNotFound
	}
	return nil
}
