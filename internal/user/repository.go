package user

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

	"go.uber.org/zap"
)

type Repository interface {
	Create(ctx context.Context, u *User, tokenHash string, expiresAt time.Time) error
	GetByID(ctx context.Context, id uint) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context, filter ListFilter, sort transport.Sort, p transport.Pagination) ([]*User, int, error)
	Delete(ctx context.Context, id uint) error

	CreateRefreshToken(ctx context.Context, userID uint, hash string, expiresAt time.Time) error
	GetRefreshToken(ctx context.Context, hash string) (*RefreshToken, error)
	RotateRefreshToken(ctx context.Context, old *RefreshToken, newHash string, expiresAt time.Time) error
	RevokeRefreshToken(ctx context.Context, hash string) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const selectUser = `
	SELECT u.id, u.name, u.email, u.password, u.role, u.phone, u.created_at, u.updated_at
	FROM users u
`

func scanUser(s interface{ Scan(dest ...any) error }) (*User, error) {
	var u User
	if err := s.Scan(&u.ID, &u.Name, &u.Email, &u.Password, &u.Role, &u.Phone, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts the user. A duplicate email leaves no row behind and comes
// back as ErrEmailExists.
// Create inserts the user together with its first refresh token, so a
// failed token write leaves no account behind.
func (r *repository) Create(ctx context.Context, u *User, tokenHash string, expiresAt time.Time) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "Create"),
	)

	err := db.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx, `
			INSERT INTO users (name, email, password, role, phone)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id, created_at, updated_at
		`, u.Name, u.Email, u.Password, string(u.Role), u.Phone).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO refresh_tokens (user_id, token_hash, expires_at)
			VALUES ($1, $2, $3)
		`, u.ID, tokenHash, expiresAt)
		return err
	})
	if err != nil {
		if apperr.IsUniqueViolation(err) {
			log.Info("email already registered")
			return ErrEmailExists
		}
		log.Error("db: failed to insert user", zap.Error(err))
		return err
	}
	return nil
}

func (r *repository) GetByID(ctx context.Context, id uint) (*User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, selectUser+" WHERE u.id = $1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		logger.FromCtx(ctx).Error("get user failed", zap.Uint("user_id", id), zap.Error(err))
		return nil, err
	}
	return u, nil
}

func (r *repository) GetByEmail(ctx context.Context, email string) (*User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, selectUser+" WHERE LOWER(u.email) = LOWER($1)", email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		logger.FromCtx(ctx).Error("get user by email failed", zap.Error(err))
		return nil, err
	}
	return u, nil
}

func (r *repository) List(
	ctx context.Context,
	filter ListFilter,
	sort transport.Sort,
	p transport.Pagination,
) ([]*User, int, error) {

	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "List"),
		zap.String("search", utils.PtrString(filter.Search)),
	)

	// ---------- FILTER ----------
	where := []string{}
	args := []any{}

	if filter.Search != nil && *filter.Search != "" {
		args = append(args, utils.ContainsPattern(*filter.Search))
		where = append(where, fmt.Sprintf("(u.name ILIKE $%d OR u.email ILIKE $%d)", len(args), len(args)))
	}
	if filter.Role != nil {
		args = append(args, string(*filter.Role))
		where = append(where, fmt.Sprintf("u.role = $%d", len(args)))
	}

	whereSQL := ""
	if len(where) > 0 {
		whereSQL = " WHERE " + strings.Join(where, " AND ")
	}

	// ---------- COUNT ----------
	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users u"+whereSQL, args...).Scan(&total); err != nil {
		log.Error("count users failed", zap.Error(err))
		return nil, 0, err
	}

	// ---------- DATA ----------
	query := selectUser + whereSQL +
		" ORDER BY " + sort.SQL() + ", u.id ASC" +
		fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, p.Limit, p.Offset())

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("list users failed", zap.Error(err))
		return nil, 0, err
	}
	defer rows.Close()

	users := []*User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			log.Error("row scan failed", zap.Error(err))
			return nil, 0, err
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

func (r *repository) Delete(ctx context.Context, id uint) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		logger.FromCtx(ctx).Error("delete user failed", zap.Uint("user_id", id), zap.Error(err))
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrUserNotFound
	}
	return nil
}
