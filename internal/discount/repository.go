package discount

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"joyeria-be/internal/apperr"
	"joyeria-be/internal/db"
	"joyeria-be/internal/logger"
	"joyeria-be/internal/transport"
	"joyeria-be/internal/utils"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

type Repository interface {
	List(ctx context.Context, filter ListFilter, p transport.Pagination) ([]*Discount, int, error)
	ListActive(ctx context.Context) ([]Discount, error)
	GetByID(ctx context.Context, id uint) (*Discount, error)
	Create(ctx context.Context, d *Discount) error
	Update(ctx context.Context, d *Discount) error
	Delete(ctx context.Context, id uint) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const selectDiscount = `
	SELECT
		d.id,
		d.name,
		d.type,
		d.value,
		d.start_date,
		d.end_date,
		d.is_active,
		d.is_generic,
		COALESCE(
			array_agg(dp.product_id ORDER BY dp.product_id) FILTER (WHERE dp.product_id IS NOT NULL),
			'{}'
		) AS product_ids,
		d.created_at,
		d.updated_at
	FROM discounts d
	LEFT JOIN discount_products dp ON dp.discount_id = d.id
`

type scanner interface {
	Scan(dest ...any) error
}

func scanDiscount(s scanner) (*Discount, error) {
	var (
		d          Discount
		start, end sql.NullTime
		productIDs pq.Int64Array
	)
	if err := s.Scan(
		&d.ID, &d.Name, &d.Type, &d.Value,
		&start, &end,
		&d.IsActive, &d.IsGeneric,
		&productIDs,
		&d.CreatedAt, &d.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if start.Valid {
		d.StartDate = &start.Time
	}
	if end.Valid {
		d.EndDate = &end.Time
	}
	d.ProductIDs = utils.Uints(productIDs)
	return &d, nil
}

func (r *repository) List(ctx context.Context, filter ListFilter, p transport.Pagination) ([]*Discount, int, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "List"),
		zap.Int("limit", p.Limit),
		zap.Int("page", p.Page),
	)

	where := []string{}
	args := []any{}
	if filter.Active != nil {
		args = append(args, *filter.Active)
		where = append(where, fmt.Sprintf("d.is_active = $%d", len(args)))
	}

	whereSQL := ""
	if len(where) > 0 {
		whereSQL = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM discounts d"+whereSQL, args...).Scan(&total); err != nil {
		log.Error("count discounts failed", zap.Error(err))
		return nil, 0, err
	}

	query := selectDiscount + whereSQL +
		fmt.Sprintf(" GROUP BY d.id ORDER BY d.id ASC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, p.Limit, p.Offset())

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("list discounts failed", zap.Error(err))
		return nil, 0, err
	}
	defer rows.Close()

	discounts := []*Discount{}
	for rows.Next() {
		d, err := scanDiscount(rows)
		if err != nil {
			log.Error("row scan failed", zap.Error(err))
			return nil, 0, err
		}
		discounts = append(discounts, d)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return discounts, total, nil
}

// ListActive returns every enabled discount ordered by id. Date windows are
// left to the evaluator.
func (r *repository) ListActive(ctx context.Context) ([]Discount, error) {
	rows, err := r.db.QueryContext(ctx, selectDiscount+" WHERE d.is_active = true GROUP BY d.id ORDER BY d.id ASC")
	if err != nil {
		logger.FromCtx(ctx).Error("list active discounts failed",
			zap.String("layer", "repository"),
			zap.Error(err),
		)
		return nil, err
	}
	defer rows.Close()

	discounts := []Discount{}
	for rows.Next() {
		d, err := scanDiscount(rows)
		if err != nil {
			return nil, err
		}
		discounts = append(discounts, *d)
	}
	return discounts, rows.Err()
}

func (r *repository) GetByID(ctx context.Context, id uint) (*Discount, error) {
	row := r.db.QueryRowContext(ctx, selectDiscount+" WHERE d.id = $1 GROUP BY d.id", id)
	d, err := scanDiscount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrDiscountNotFound
	}
	if err != nil {
		logger.FromCtx(ctx).Error("get discount failed", zap.Uint("discount_id", id), zap.Error(err))
		return nil, err
	}
	return d, nil
}

// Create inserts the discount and its product set in one transaction.
func (r *repository) Create(ctx context.Context, d *Discount) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "Create"),
	)

	err := db.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx, `
			INSERT INTO discounts (name, type, value, start_date, end_date, is_active, is_generic)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id, created_at, updated_at
		`, d.Name, d.Type, d.Value, nullTime(d.StartDate), nullTime(d.EndDate), d.IsActive, d.IsGeneric,
		).Scan(&d.ID, &d.CreatedAt, &d.UpdatedAt)
		if err != nil {
			return err
		}
		return insertProducts(ctx, tx, d.ID, d.ProductIDs)
	})
	if err != nil {
		log.Error("create discount failed", zap.Error(err))
		return mapWriteErr(err)
	}
	return nil
}

// Update overwrites the discount row and replaces its product set in one
// transaction.
func (r *repository) Update(ctx context.Context, d *Discount) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "Update"),
		zap.Uint("discount_id", d.ID),
	)

	err := db.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx, `
			UPDATE discounts
			SET name = $1, type = $2, value = $3, start_date = $4, end_date = $5,
				is_active = $6, is_generic = $7, updated_at = NOW()
			WHERE id = $8
			RETURNING created_at, updated_at
		`, d.Name, d.Type, d.Value, nullTime(d.StartDate), nullTime(d.EndDate), d.IsActive, d.IsGeneric, d.ID,
		).Scan(&d.CreatedAt, &d.UpdatedAt)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrDiscountNotFound
		}
		if err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM discount_products WHERE discount_id = $1`, d.ID); err != nil {
			return err
		}
		return insertProducts(ctx, tx, d.ID, d.ProductIDs)
	})
	if err != nil {
		if !errors.Is(err, ErrDiscountNotFound) {
			log.Error("update discount failed", zap.Error(err))
		}
		return mapWriteErr(err)
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id uint) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM discounts WHERE id = $1`, id)
	if err != nil {
		logger.FromCtx(ctx).Error("delete discount failed", zap.Uint("discount_id", id), zap.Error(err))
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrDiscountNotFound
	}
	return nil
}

func insertProducts(ctx context.Context, tx *sql.Tx, discountID uint, productIDs []uint) error {
	if len(productIDs) == 0 {
		return nil
	}
	_, err := tx.ExecContext(ctx, `
		INSERT INTO discount_products (discount_id, product_id)
		SELECT $1, unnest($2::bigint[])
	`, discountID, pq.Array(utils.Int64s(productIDs)))
	return err
}

func mapWriteErr(err error) error {
	if apperr.IsForeignKeyViolation(err) {
		return ErrUnknownProduct
	}
	return err
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
