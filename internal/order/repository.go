package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"joyeria-be/internal/db"
	"joyeria-be/internal/logger"
	"joyeria-be/internal/transport"
	"joyeria-be/internal/utils"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

type Repository interface {
	// Create stores the order, its items and the stock deductions in one
	// transaction. A non-nil clearCartID empties that cart in the same
	// transaction.
	Create(ctx context.Context, o *Order, clearCartID *uint) error
	List(ctx context.Context, filter ListFilter, p transport.Pagination) ([]*Order, int, error)
	GetByID(ctx context.Context, id uint) (*Order, error)
	UpdateStatus(ctx context.Context, id uint, from, to Status) error
	Delete(ctx context.Context, id uint) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const selectOrder = `
	SELECT
		o.id,
		o.order_number,
		o.user_id,
		o.customer_name,
		o.customer_email,
		o.customer_phone,
		o.shipping_address,
		o.shipping_city,
		o.shipping_postal_code,
		o.shipping_country,
		o.notes,
		o.total_amount,
		o.status,
		o.created_at,
		o.updated_at
	FROM orders o
`

type scanner interface {
	Scan(dest ...any) error
}

func scanOrder(s scanner) (*Order, error) {
	var o Order
	err := s.Scan(
		&o.ID, &o.OrderNumber, &o.UserID,
		&o.CustomerName, &o.CustomerEmail, &o.CustomerPhone,
		&o.ShippingAddress.Address, &o.ShippingAddress.City,
		&o.ShippingAddress.PostalCode, &o.ShippingAddress.Country,
		&o.Notes, &o.TotalAmount, &o.Status,
		&o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	o.Items = []Item{}
	return &o, nil
}

func (r *repository) Create(ctx context.Context, o *Order, clearCartID *uint) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "Create"),
		zap.Uint("user_id", o.UserID),
		zap.String("order_number", o.OrderNumber),
	)

	err := db.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		// 1. Insert order
		err := tx.QueryRowContext(ctx, `
			INSERT INTO orders (
				order_number, user_id, customer_name, customer_email, customer_phone,
				shipping_address, shipping_city, shipping_postal_code, shipping_country,
				notes, total_amount, status
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
			RETURNING id, created_at, updated_at
		`,
			o.OrderNumber, o.UserID, o.CustomerName, o.CustomerEmail, o.CustomerPhone,
			o.ShippingAddress.Address, o.ShippingAddress.City, o.ShippingAddress.PostalCode, o.ShippingAddress.Country,
			o.Notes, o.TotalAmount, string(o.Status),
		).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
		if err != nil {
			return err
		}

		// 2. Insert item snapshots + deduct stock
		for i := range o.Items {
			it := &o.Items[i]
			it.OrderID = o.ID

			err := tx.QueryRowContext(ctx, `
				INSERT INTO order_items (order_id, product_id, name, price, quantity, image_url)
				VALUES ($1, $2, $3, $4, $5, $6)
				RETURNING id
			`, o.ID, it.ProductID, it.Name, it.Price, it.Quantity, it.ImageURL).Scan(&it.ID)
			if err != nil {
				return err
			}

			res, err := tx.ExecContext(ctx, `
				UPDATE products
				SET stock = CASE
						WHEN availability_type = 'backorder' THEN stock
						ELSE GREATEST(stock - $1, 0)
					END,
					updated_at = NOW()
				WHERE id = $2 AND (availability_type <> 'stock' OR stock >= $1)
			`, it.Quantity, it.ProductID)
			if err != nil {
				return err
			}
			if n, err := res.RowsAffected(); err != nil {
				return err
			} else if n == 0 {
				return fmt.Errorf("product %d: %w", it.ProductID, ErrInsufficientStock)
			}
		}

		// 3. Empty the cart that was checked out
		if clearCartID != nil {
			if _, err := tx.ExecContext(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, *clearCartID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrInsufficientStock) {
			log.Warn("checkout rejected", zap.Error(err))
		} else {
			log.Error("create order failed", zap.Error(err))
		}
		return err
	}

	log.Info("order stored", zap.Uint("order_id", o.ID), zap.Int("items", len(o.Items)))
	return nil
}

func (r *repository) List(ctx context.Context, filter ListFilter, p transport.Pagination) ([]*Order, int, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "List"),
	)

	where := []string{}
	args := []any{}
	if filter.UserID != nil {
		args = append(args, *filter.UserID)
		where = append(where, fmt.Sprintf("o.user_id = $%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		where = append(where, fmt.Sprintf("o.status = $%d", len(args)))
	}

	whereSQL := ""
	if len(where) > 0 {
		whereSQL = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM orders o"+whereSQL, args...).Scan(&total); err != nil {
		log.Error("count orders failed", zap.Error(err))
		return nil, 0, err
	}

	query := selectOrder + whereSQL +
		fmt.Sprintf(" ORDER BY o.created_at DESC, o.id DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, p.Limit, p.Offset())

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("list orders failed", zap.Error(err))
		return nil, 0, err
	}
	defer rows.Close()

	orders := []*Order{}
	byID := map[uint]*Order{}
	ids := []uint{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, err
		}
		orders = append(orders, o)
		byID[o.ID] = o
		ids = append(ids, o.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	if err := r.attachItems(ctx, ids, byID); err != nil {
		log.Error("load order items failed", zap.Error(err))
		return nil, 0, err
	}

	return orders, total, nil
}

func (r *repository) GetByID(ctx context.Context, id uint) (*Order, error) {
	o, err := scanOrder(r.db.QueryRowContext(ctx, selectOrder+" WHERE o.id = $1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := r.attachItems(ctx, []uint{id}, map[uint]*Order{id: o}); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *repository) attachItems(ctx context.Context, ids []uint, byID map[uint]*Order) error {
	if len(ids) == 0 {
		return nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, order_id, product_id, name, price, quantity, image_url
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY order_id, id
	`, pq.Array(utils.Int64s(ids)))
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Name, &it.Price, &it.Quantity, &it.ImageURL); err != nil {
			return err
		}
		if o, ok := byID[it.OrderID]; ok {
			o.Items = append(o.Items, it)
		}
	}
	return rows.Err()
}

// UpdateStatus moves the order from one status to another. It fails with
// ErrStatusChanged when the stored status is no longer from.
func (r *repository) UpdateStatus(ctx context.Context, id uint, from, to Status) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE orders
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = $3
	`, string(to), id, string(from))
	if err != nil {
		logger.FromCtx(ctx).Error("update order status failed", zap.Uint("order_id", id), zap.Error(err))
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrStatusChanged
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id uint) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		logger.FromCtx(ctx).Error("delete order failed", zap.Uint("order_id", id), zap.Error(err))
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrOrderNotFound
	}
	return nil
}
