package product

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"joyeria-be/internal/apperr"
	"joyeria-be/internal/db"
	"joyeria-be/internal/logger"
	"joyeria-be/internal/transport"
	"joyeria-be/internal/utils"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

type Repository interface {
	List(ctx context.Context, filter ListFilter, sort transport.Sort, p transport.Pagination) ([]*Product, int, error)
	GetByID(ctx context.Context, id uint) (*Product, error)
	GetByIDs(ctx context.Context, ids []uint) (map[uint]*Product, error)
	Create(ctx context.Context, p *Product) error
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id uint) error
	AddRating(ctx context.Context, productID, userID uint, rating int) (*RatingSummary, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const selectProduct = `
	SELECT
		p.id,
		p.name,
		p.slug,
		p.description,
		p.price,
		p.stock,
		p.availability_type,
		p.image_url,
		p.category_id,
		c.name AS category_name,
		p.rating_average,
		p.rating_count,
		p.is_active,
		p.created_at,
		p.updated_at,
		COALESCE(
			(SELECT array_agg(pt.tag_id ORDER BY pt.tag_id) FROM product_tags pt WHERE pt.product_id = p.id),
			'{}'
		) AS tag_ids
	FROM products p
	LEFT JOIN categories c ON c.id = p.category_id
`

type scanner interface {
	Scan(dest ...any) error
}

func scanProduct(s scanner) (*Product, error) {
	var (
		p          Product
		categoryID sql.NullInt64
		tagIDs     pq.Int64Array
	)
	if err := s.Scan(
		&p.ID, &p.Name, &p.Slug, &p.Description,
		&p.Price, &p.Stock, &p.AvailabilityType, &p.ImageURL,
		&categoryID, &p.CategoryName,
		&p.RatingAverage, &p.RatingCount,
		&p.IsActive, &p.CreatedAt, &p.UpdatedAt,
		&tagIDs,
	); err != nil {
		return nil, err
	}
	if categoryID.Valid {
		id := uint(categoryID.Int64)
		p.CategoryID = &id
	}
	p.TagIDs = utils.Uints(tagIDs)
	p.FinalPrice = p.Price
	return &p, nil
}

func buildWhere(filter ListFilter) (string, []any) {
	where := []string{}
	args := []any{}

	add := func(clause string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(clause, len(args)))
	}

	if !filter.IncludeInactive {
		where = append(where, "p.is_active = true")
	}
	if filter.CategoryID != nil {
		add("p.category_id = $%d", *filter.CategoryID)
	}
	if filter.TagID != nil {
		add("EXISTS (SELECT 1 FROM product_tags ft WHERE ft.product_id = p.id AND ft.tag_id = $%d)", *filter.TagID)
	}
	if filter.Search != nil && *filter.Search != "" {
		add("p.name ILIKE $%d", utils.ContainsPattern(*filter.Search))
	}
	if filter.MinPrice != nil {
		add("p.price >= $%d", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		add("p.price <= $%d", *filter.MaxPrice)
	}
	if filter.Availability != nil {
		add("p.availability_type = $%d", string(*filter.Availability))
	}
	if filter.InStock != nil {
		if *filter.InStock {
			where = append(where, "p.stock > 0")
		} else {
			where = append(where, "p.stock = 0")
		}
	}

	if len(where) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(where, " AND "), args
}

func (r *repository) List(
	ctx context.Context,
	filter ListFilter,
	sort transport.Sort,
	p transport.Pagination,
) ([]*Product, int, error) {

	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "List"),
		zap.Int("limit", p.Limit),
		zap.Int("page", p.Page),
	)

	/* ---------- FILTER ---------- */

	whereSQL, args := buildWhere(filter)

	/* ---------- COUNT ---------- */

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM products p"+whereSQL, args...).Scan(&total); err != nil {
		log.Error("count products failed", zap.Error(err))
		return nil, 0, err
	}

	/* ---------- DATA ---------- */

	query := selectProduct + whereSQL +
		" ORDER BY " + sort.SQL() + ", p.id ASC" +
		fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, p.Limit, p.Offset())

	log.Debug("executing list products query", zap.String("query", query), zap.Any("args", args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("list products failed", zap.Error(err))
		return nil, 0, err
	}
	defer rows.Close()

	products := []*Product{}
	for rows.Next() {
		prod, err := scanProduct(rows)
		if err != nil {
			log.Error("row scan failed", zap.Error(err))
			return nil, 0, err
		}
		products = append(products, prod)
	}
	if err := rows.Err(); err != nil {
		log.Error("rows iteration failed", zap.Error(err))
		return nil, 0, err
	}

	return products, total, nil
}

func (r *repository) GetByID(ctx context.Context, id uint) (*Product, error) {
	p, err := scanProduct(r.db.QueryRowContext(ctx, selectProduct+" WHERE p.id = $1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		logger.FromCtx(ctx).Error("get product failed", zap.Uint("product_id", id), zap.Error(err))
		return nil, err
	}
	return p, nil
}

// GetByIDs loads every listed product keyed by id. Missing ids are absent
// from the map.
func (r *repository) GetByIDs(ctx context.Context, ids []uint) (map[uint]*Product, error) {
	out := make(map[uint]*Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	rows, err := r.db.QueryContext(ctx, selectProduct+" WHERE p.id = ANY($1)", pq.Array(utils.Int64s(ids)))
	if err != nil {
		logger.FromCtx(ctx).Error("get products by ids failed", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out[p.ID] = p
	}
	return out, rows.Err()
}

func (r *repository) Create(ctx context.Context, p *Product) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "Create"),
	)

	err := db.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx, `
			INSERT INTO products
				(name, slug, description, price, stock, availability_type, image_url, category_id, is_active)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			RETURNING id, created_at, updated_at
		`, p.Name, p.Slug, p.Description, p.Price, p.Stock, string(p.AvailabilityType), p.ImageURL, p.CategoryID, p.IsActive,
		).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
		if err != nil {
			return err
		}
		return insertTags(ctx, tx, p.ID, p.TagIDs)
	})
	if err != nil {
		log.Error("create product failed", zap.String("name", p.Name), zap.Error(err))
		return mapWriteErr(err)
	}
	return nil
}

func (r *repository) Update(ctx context.Context, p *Product) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "Update"),
		zap.Uint("product_id", p.ID),
	)

	err := db.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx, `
			UPDATE products
			SET name = $1, slug = $2, description = $3, price = $4, stock = $5,
				availability_type = $6, image_url = $7, category_id = $8, is_active = $9,
				updated_at = NOW()
			WHERE id = $10
			RETURNING rating_average, rating_count, created_at, updated_at
		`, p.Name, p.Slug, p.Description, p.Price, p.Stock, string(p.AvailabilityType), p.ImageURL, p.CategoryID, p.IsActive, p.ID,
		).Scan(&p.RatingAverage, &p.RatingCount, &p.CreatedAt, &p.UpdatedAt)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrProductNotFound
		}
		if err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM product_tags WHERE product_id = $1`, p.ID); err != nil {
			return err
		}
		return insertTags(ctx, tx, p.ID, p.TagIDs)
	})
	if err != nil {
		if !errors.Is(err, ErrProductNotFound) {
			log.Error("update product failed", zap.Error(err))
		}
		return mapWriteErr(err)
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id uint) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		logger.FromCtx(ctx).Error("delete product failed", zap.Uint("product_id", id), zap.Error(err))
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrProductNotFound
	}
	return nil
}

// AddRating stores the user's rating (replacing an earlier one) and
// recomputes the product aggregate in the same transaction.
func (r *repository) AddRating(ctx context.Context, productID, userID uint, rating int) (*RatingSummary, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "AddRating"),
		zap.Uint("product_id", productID),
		zap.Uint("user_id", userID),
	)

	summary := &RatingSummary{ProductID: productID}
	err := db.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO product_ratings (product_id, user_id, rating)
			VALUES ($1, $2, $3)
			ON CONFLICT (product_id, user_id)
			DO UPDATE SET rating = EXCLUDED.rating, updated_at = NOW()
		`, productID, userID, rating)
		if err != nil {
			return err
		}

		return tx.QueryRowContext(ctx, `
			UPDATE products p
			SET rating_average = agg.avg, rating_count = agg.cnt
			FROM (
				SELECT COALESCE(AVG(rating), 0)::float8 AS avg, COUNT(*) AS cnt
				FROM product_ratings
				WHERE product_id = $1
			) agg
			WHERE p.id = $1
			RETURNING p.rating_average, p.rating_count
		`, productID).Scan(&summary.RatingAverage, &summary.RatingCount)
	})
	if apperr.IsForeignKeyViolation(err) || errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		log.Error("add rating failed", zap.Error(err))
		return nil, err
	}
	return summary, nil
}

func insertTags(ctx context.Context, tx *sql.Tx, productID uint, tagIDs []uint) error {
	if len(tagIDs) == 0 {
		return nil
	}
	_, err := tx.ExecContext(ctx, `
		INSERT INTO product_tags (product_id, tag_id)
		SELECT $1, unnest($2::bigint[])
	`, productID, pq.Array(utils.Int64s(tagIDs)))
	return err
}

func mapWriteErr(err error) error {
	switch {
	case apperr.IsUniqueViolation(err):
		return ErrSlugTaken
	case apperr.IsForeignKeyViolation(err):
		return ErrUnknownReference
	}
	return err
}
