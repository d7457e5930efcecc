package cart

import (
	"context"
	"database/sql"
	"errors"

	"joyeria-be/internal/apperr"
	"joyeria-be/internal/logger"

	"go.uber.org/zap"
)

type Repository interface {
	GetOrCreateCart(ctx context.Context, userID uint) (*Cart, error)
	GetItems(ctx context.Context, cartID uint) ([]Item, error)
	AddItem(ctx context.Context, cartID, productID uint, quantity int) error
	UpdateItemQuantity(ctx context.Context, cartID, itemID uint, quantity int) error
	RemoveItem(ctx context.Context, cartID, itemID uint) error
	Clear(ctx context.Context, cartID uint) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

// GetOrCreateCart returns the user's cart, creating an empty one on first
// access. A concurrent create is absorbed by the unique user_id index.
func (r *repository) GetOrCreateCart(ctx context.Context, userID uint) (*Cart, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "GetOrCreateCart"),
		zap.Uint("user_id", userID),
	)

	const selectCart = `SELECT id, user_id, created_at, updated_at FROM carts WHERE user_id = $1`

	var c Cart
	err := r.db.QueryRowContext(ctx, selectCart, userID).Scan(&c.ID, &c.UserID, &c.CreatedAt, &c.UpdatedAt)
	if err == nil {
		return &c, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		log.Error("select cart failed", zap.Error(err))
		return nil, err
	}

	err = r.db.QueryRowContext(ctx, `
		INSERT INTO carts (user_id)
		VALUES ($1)
		ON CONFLICT (user_id) DO NOTHING
		RETURNING id, user_id, created_at, updated_at
	`, userID).Scan(&c.ID, &c.UserID, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		// Lost the race; the other request's row is there now.
		err = r.db.QueryRowContext(ctx, selectCart, userID).Scan(&c.ID, &c.UserID, &c.CreatedAt, &c.UpdatedAt)
	}
	if err != nil {
		log.Error("create cart failed", zap.Error(err))
		return nil, err
	}

	log.Info("cart created", zap.Uint("cart_id", c.ID))
	return &c, nil
}

func (r *repository) GetItems(ctx context.Context, cartID uint) ([]Item, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT
			ci.id,
			ci.cart_id,
			ci.product_id,
			ci.quantity,
			ci.created_at,
			ci.updated_at,
			p.name,
			p.slug,
			p.price,
			p.image_url,
			p.stock,
			p.is_active,
			p.availability_type
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		WHERE ci.cart_id = $1
		ORDER BY ci.id ASC
	`, cartID)
	if err != nil {
		logger.FromCtx(ctx).Error("get cart items failed", zap.Uint("cart_id", cartID), zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	items := []Item{}
	for rows.Next() {
		var it Item
		if err := rows.Scan(
			&it.ID, &it.CartID, &it.ProductID, &it.Quantity, &it.CreatedAt, &it.UpdatedAt,
			&it.ProductName, &it.ProductSlug, &it.ProductPrice, &it.ProductImageURL,
			&it.ProductStock, &it.ProductIsActive, &it.AvailabilityType,
		); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// AddItem merges into an existing line for the same product or inserts a
// new one.
func (r *repository) AddItem(ctx context.Context, cartID, productID uint, quantity int) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO cart_items (cart_id, product_id, quantity)
		VALUES ($1, $2, $3)
		ON CONFLICT (cart_id, product_id)
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity, updated_at = NOW()
	`, cartID, productID, quantity)
	if apperr.IsForeignKeyViolation(err) {
		return ErrProductNotFound
	}
	if err != nil {
		logger.FromCtx(ctx).Error("add cart item failed",
			zap.Uint("cart_id", cartID),
			zap.Uint("product_id", productID),
			zap.Error(err),
		)
		return err
	}

	r.touch(ctx, cartID)
	return nil
}

func (r *repository) UpdateItemQuantity(ctx context.Context, cartID, itemID uint, quantity int) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE cart_items
		SET quantity = $1, updated_at = NOW()
		WHERE id = $2 AND cart_id = $3
	`, quantity, itemID, cartID)
	if err != nil {
		return err
	}
	if err := expectRow(res); err != nil {
		return err
	}

	r.touch(ctx, cartID)
	return nil
}

func (r *repository) RemoveItem(ctx context.Context, cartID, itemID uint) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM cart_items WHERE id = $1 AND cart_id = $2`, itemID, cartID)
	if err != nil {
		return err
	}
	if err := expectRow(res); err != nil {
		return err
	}

	r.touch(ctx, cartID)
	return nil
}

// Clear empties the cart. Clearing an empty cart is not an error.
func (r *repository) Clear(ctx context.Context, cartID uint) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID); err != nil {
		logger.FromCtx(ctx).Error("clear cart failed", zap.Uint("cart_id", cartID), zap.Error(err))
		return err
	}

	r.touch(ctx, cartID)
	return nil
}

func (r *repository) touch(ctx context.Context, cartID uint) {
	if _, err := r.db.ExecContext(ctx, `UPDATE carts SET updated_at = NOW() WHERE id = $1`, cartID); err != nil {
		logger.FromCtx(ctx).Warn("touch cart failed", zap.Uint("cart_id", cartID), zap.Error(err))
	}
}

func expectRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrCartItemNotFound
	}
	return nil
}
