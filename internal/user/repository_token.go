package user

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"joyeria-be/internal/db"
	"joyeria-be/internal/logger"

	"go.uber.org/zap"
)

// CreateRefreshToken stores the hash of a freshly issued refresh token.
func (r *repository) CreateRefreshToken(ctx context.Context, userID uint, hash string, expiresAt time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO refresh_tokens (user_id, token_hash, expires_at)
		VALUES ($1, $2, $3)
	`, userID, hash, expiresAt)
	if err != nil {
		logger.FromCtx(ctx).Error("failed to store refresh token",
			zap.String("layer", "repository"),
			zap.Uint("user_id", userID),
			zap.Error(err),
		)
	}
	return err
}

func (r *repository) GetRefreshToken(ctx context.Context, hash string) (*RefreshToken, error) {
	var t RefreshToken
	err := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, token_hash, expires_at, revoked, created_at
		FROM refresh_tokens
		WHERE token_hash = $1
	`, hash).Scan(&t.ID, &t.UserID, &t.TokenHash, &t.ExpiresAt, &t.Revoked, &t.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrInvalidRefreshToken
	}
	if err != nil {
		logger.FromCtx(ctx).Error("failed to load refresh token", zap.Error(err))
		return nil, err
	}
	return &t, nil
}

// RotateRefreshToken revokes old and stores its replacement in one
// transaction. Losing a race against another rotation of the same token
// yields ErrInvalidRefreshToken.
func (r *repository) RotateRefreshToken(ctx context.Context, old *RefreshToken, newHash string, expiresAt time.Time) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "RotateRefreshToken"),
		zap.Uint("user_id", old.UserID),
	)

	err := db.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE refresh_tokens
			SET revoked = TRUE
			WHERE id = $1 AND revoked = FALSE
		`, old.ID)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrInvalidRefreshToken
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO refresh_tokens (user_id, token_hash, expires_at)
			VALUES ($1, $2, $3)
		`, old.UserID, newHash, expiresAt)
		return err
	})
	if err != nil && !errors.Is(err, ErrInvalidRefreshToken) {
		log.Error("rotate refresh token failed", zap.Error(err))
	}
	return err
}

// RevokeRefreshToken is idempotent; unknown tokens are ignored.
func (r *repository) RevokeRefreshToken(ctx context.Context, hash string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE refresh_tokens SET revoked = TRUE WHERE token_hash = $1
	`, hash)
	if err != nil {
		logger.FromCtx(ctx).Error("revoke refresh token failed", zap.Error(err))
	}
	return err
}
