package address

import (
	"context"
	"database/sql"
	"errors"

	"joyeria-be/internal/db"
	"joyeria-be/internal/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Every query is scoped by user_id, so a foreign address reads as missing.
type Repository interface {
	List(ctx context.Context, userID uint) ([]*Address, error)
	GetByID(ctx context.Context, userID uint, id uuid.UUID) (*Address, error)
	GetDefault(ctx context.Context, userID uint) (*Address, error)

	Create(ctx context.Context, a *Address) error
	Update(ctx context.Context, a *Address) error
	Deactivate(ctx context.Context, userID uint, id uuid.UUID) error
	SetDefault(ctx context.Context, userID uint, id uuid.UUID) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const selectAddress = `
	SELECT
		id, user_id, label, recipient_name, phone,
		line1, line2, city, province, postal_code, country,
		is_default, created_at, updated_at
	FROM addresses
`

type scanner interface {
	Scan(dest ...any) error
}

func scanAddress(s scanner) (*Address, error) {
	var a Address
	err := s.Scan(
		&a.ID, &a.UserID, &a.Label, &a.RecipientName, &a.Phone,
		&a.Line1, &a.Line2, &a.City, &a.Province, &a.PostalCode, &a.Country,
		&a.IsDefault, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *repository) List(ctx context.Context, userID uint) ([]*Address, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "List"),
		zap.Uint("user_id", userID),
	)

	rows, err := r.db.QueryContext(ctx, selectAddress+`
		WHERE user_id = $1 AND is_active = TRUE
		ORDER BY is_default DESC, created_at DESC
	`, userID)
	if err != nil {
		log.Error("list addresses failed", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	out := []*Address{}
	for rows.Next() {
		a, err := scanAddress(rows)
		if err != nil {
			log.Error("row scan failed", zap.Error(err))
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *repository) GetByID(ctx context.Context, userID uint, id uuid.UUID) (*Address, error) {
	a, err := scanAddress(r.db.QueryRowContext(ctx, selectAddress+`
		WHERE id = $1 AND user_id = $2 AND is_active = TRUE
	`, id, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAddressNotFound
	}
	if err != nil {
		logger.FromCtx(ctx).Error("get address failed",
			zap.String("address_id", id.String()), zap.Error(err))
		return nil, err
	}
	return a, nil
}

func (r *repository) GetDefault(ctx context.Context, userID uint) (*Address, error) {
	a, err := scanAddress(r.db.QueryRowContext(ctx, selectAddress+`
		WHERE user_id = $1 AND is_active = TRUE AND is_default = TRUE
	`, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAddressNotFound
	}
	if err != nil {
		logger.FromCtx(ctx).Error("get default address failed", zap.Uint("user_id", userID), zap.Error(err))
		return nil, err
	}
	return a, nil
}

func clearDefault(ctx context.Context, tx *sql.Tx, userID uint) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE addresses SET is_default = FALSE
		WHERE user_id = $1 AND is_default = TRUE
	`, userID)
	return err
}

// Create inserts the address. The first active address of a user always
// becomes the default; a new default demotes the previous one.
func (r *repository) Create(ctx context.Context, a *Address) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "Create"),
		zap.Uint("user_id", a.UserID),
	)

	err := db.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		var first bool
		if err := tx.QueryRowContext(ctx, `
			SELECT NOT EXISTS (SELECT 1 FROM addresses WHERE user_id = $1 AND is_active = TRUE)
		`, a.UserID).Scan(&first); err != nil {
			return err
		}
		if first {
			a.IsDefault = true
		}
		if a.IsDefault && !first {
			if err := clearDefault(ctx, tx, a.UserID); err != nil {
				return err
			}
		}

		return tx.QueryRowContext(ctx, `
			INSERT INTO addresses (
				id, user_id, label, recipient_name, phone,
				line1, line2, city, province, postal_code, country, is_default
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
			RETURNING created_at, updated_at
		`,
			a.ID, a.UserID, a.Label, a.RecipientName, a.Phone,
			a.Line1, a.Line2, a.City, a.Province, a.PostalCode, a.Country, a.IsDefault,
		).Scan(&a.CreatedAt, &a.UpdatedAt)
	})
	if err != nil {
		log.Error("create address failed", zap.Error(err))
		return err
	}
	return nil
}

// Update overwrites the address fields. Passing IsDefault=false never
// demotes an existing default; only SetDefault on another address does.
func (r *repository) Update(ctx context.Context, a *Address) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "Update"),
		zap.String("address_id", a.ID.String()),
	)

	err := db.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		if a.IsDefault {
			if err := clearDefault(ctx, tx, a.UserID); err != nil {
				return err
			}
		}

		err := tx.QueryRowContext(ctx, `
			UPDATE addresses
			SET label = $1, recipient_name = $2, phone = $3, line1 = $4, line2 = $5,
				city = $6, province = $7, postal_code = $8, country = $9,
				is_default = is_default OR $10, updated_at = NOW()
			WHERE id = $11 AND user_id = $12 AND is_active = TRUE
			RETURNING is_default, created_at, updated_at
		`,
			a.Label, a.RecipientName, a.Phone, a.Line1, a.Line2,
			a.City, a.Province, a.PostalCode, a.Country,
			a.IsDefault, a.ID, a.UserID,
		).Scan(&a.IsDefault, &a.CreatedAt, &a.UpdatedAt)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrAddressNotFound
		}
		return err
	})
	if err != nil && !errors.Is(err, ErrAddressNotFound) {
		log.Error("update address failed", zap.Error(err))
	}
	return err
}

// Deactivate soft-deletes the address so orders placed with it keep
// their history readable.
func (r *repository) Deactivate(ctx context.Context, userID uint, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE addresses
		SET is_active = FALSE, is_default = FALSE, updated_at = NOW()
		WHERE id = $1 AND user_id = $2 AND is_active = TRUE
	`, id, userID)
	if err != nil {
		logger.FromCtx(ctx).Error("deactivate address failed",
			zap.String("address_id", id.String()), zap.Error(err))
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrAddressNotFound
	}
	return nil
}

func (r *repository) SetDefault(ctx context.Context, userID uint, id uuid.UUID) error {
	err := db.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := clearDefault(ctx, tx, userID); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, `
			UPDATE addresses SET is_default = TRUE, updated_at = NOW()
			WHERE id = $1 AND user_id = $2 AND is_active = TRUE
		`, id, userID)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrAddressNotFound
		}
		return nil
	})
	if err != nil && !errors.Is(err, ErrAddressNotFound) {
		logger.FromCtx(ctx).Error("set default address failed",
			zap.String("address_id", id.String()), zap.Error(err))
	}
	return err
}
