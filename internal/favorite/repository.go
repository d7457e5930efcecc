package favorite

import (
	"context"
	"database/sql"

	"joyeria-be/internal/apperr"
	"joyeria-be/internal/logger"
	"joyeria-be/internal/transport"

	"go.uber.org/zap"
)

type Repository interface {
	List(ctx context.Context, userID uint, p transport.Pagination) ([]*Favorite, int, error)
	Add(ctx context.Context, userID, productID uint) (*Favorite, error)
	Remove(ctx context.Context, userID, productID uint) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

// List returns the user's favorites, newest first.
func (r *repository) List(ctx context.Context, userID uint, p transport.Pagination) ([]*Favorite, int, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "List"),
		zap.Uint("user_id", userID),
	)

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM favorites WHERE user_id = $1`, userID).Scan(&total); err != nil {
		log.Error("count favorites failed", zap.Error(err))
		return nil, 0, err
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT user_id, product_id, created_at
		FROM favorites
		WHERE user_id = $1
		ORDER BY created_at DESC, product_id DESC
		LIMIT $2 OFFSET $3
	`, userID, p.Limit, p.Offset())
	if err != nil {
		log.Error("list favorites failed", zap.Error(err))
		return nil, 0, err
	}
	defer rows.Close()

	out := []*Favorite{}
	for rows.Next() {
		var f Favorite
		if err := rows.Scan(&f.UserID, &f.ProductID, &f.CreatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, &f)
	}
	return out, total, rows.Err()
}

// Add is idempotent: favoriting a product twice keeps the first timestamp.
func (r *repository) Add(ctx context.Context, userID, productID uint) (*Favorite, error) {
	f := Favorite{UserID: userID, ProductID: productID}
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO favorites (user_id, product_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, product_id) DO UPDATE SET user_id = EXCLUDED.user_id
		RETURNING created_at
	`, userID, productID).Scan(&f.CreatedAt)
	if err != nil {
		if apperr.IsForeignKeyViolation(err) {
			return nil, ErrProductNotFound
		}
		logger.FromCtx(ctx).Error("add favorite failed",
			zap.Uint("user_id", userID),
			zap.Uint("product_id", productID),
			zap.Error(err),
		)
		return nil, err
	}
	return &f, nil
}

func (r *repository) Remove(ctx context.Context, userID, productID uint) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM favorites WHERE user_id = $1 AND product_id = $2
	`, userID, productID)
	if err != nil {
		logger.FromCtx(ctx).Error("remove favorite failed", zap.Error(err))
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrFavoriteNotFound
	}
	return nil
}
