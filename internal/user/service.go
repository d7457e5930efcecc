package user

import (
	"context"
	"errors"
	"strings"
	"time"

	"joyeria-be/internal/auth"
	"joyeria-be/internal/logger"
	"joyeria-be/internal/transport"

	"go.uber.org/zap"
)

// TokenIssuer is implemented by *auth.TokenManager.
type TokenIssuer interface {
	GenerateAccessToken(userID uint, email, role string) (string, time.Time, error)
	NewRefreshToken() (token, hash string, expiresAt time.Time)
}

var SortFields = map[string]string{
	"name":       "u.name",
	"email":      "u.email",
	"created_at": "u.created_at",
}

var DefaultSort = transport.Sort{Field: "u.created_at", Desc: true}

type Service interface {
	Register(ctx context.Context, in RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, in LoginInput) (*AuthResult, error)
	Refresh(ctx context.Context, refreshToken string) (*AuthResult, error)
	Logout(ctx context.Context, refreshToken string) error
	Me(ctx context.Context, userID uint) (*User, error)

	List(ctx context.Context, filter ListFilter, sort transport.Sort, p transport.Pagination) ([]*User, int, error)
	Get(ctx context.Context, id uint) (*User, error)
	Delete(ctx context.Context, actorID, id uint) error
}

type service struct {
	repo   Repository
	tokens TokenIssuer
	now    func() time.Time
	hash   func(string) (string, error)
}

func NewService(repo Repository, tokens TokenIssuer) Service {
	return &service{
		repo:   repo,
		tokens: tokens,
		now:    time.Now,
		hash:   auth.HashPassword,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *service) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Register"),
	)

	in.Name = strings.TrimSpace(in.Name)
	in.Email = normalizeEmail(in.Email)
	if err := transport.Validate(in); err != nil {
		return nil, err
	}

	hashed, err := s.hash(in.Password)
	if err != nil {
		log.Error("failed to hash password", zap.Error(err))
		return nil, err
	}

	u := &User{
		Name:     in.Name,
		Email:    in.Email,
		Password: hashed,
		Role:     RoleUser,
		Phone:    in.Phone,
	}
	token, hash, refreshExp := s.tokens.NewRefreshToken()
	if err := s.repo.Create(ctx, u, hash, refreshExp); err != nil {
		return nil, err
	}

	res, err := s.sign(ctx, u, token, refreshExp)
	if err != nil {
		return nil, err
	}

	log.Info("user registered", zap.Uint("user_id", u.ID))
	return res, nil
}

func (s *service) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Login"),
	)

	in.Email = normalizeEmail(in.Email)
	if err := transport.Validate(in); err != nil {
		return nil, err
	}

	u, err := s.repo.GetByEmail(ctx, in.Email)
	if errors.Is(err, ErrUserNotFound) {
		log.Info("login with unknown email")
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if !auth.CheckPasswordHash(in.Password, u.Password) {
		log.Info("password mismatch", zap.Uint("user_id", u.ID))
		return nil, ErrInvalidCredentials
	}

	return s.issue(ctx, u)
}

// Refresh exchanges a live refresh token for a new pair. The presented token
// is revoked; presenting it again fails.
func (s *service) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Refresh"),
	)

	if refreshToken == "" {
		return nil, ErrInvalidRefreshToken
	}

	stored, err := s.repo.GetRefreshToken(ctx, auth.HashRefreshToken(refreshToken))
	if err != nil {
		return nil, err
	}
	if stored.Revoked {
		log.Warn("revoked refresh token presented", zap.Uint("user_id", stored.UserID))
		return nil, ErrInvalidRefreshToken
	}
	if !s.now().Before(stored.ExpiresAt) {
		return nil, ErrInvalidRefreshToken
	}

	u, err := s.repo.GetByID(ctx, stored.UserID)
	if errors.Is(err, ErrUserNotFound) {
		return nil, ErrInvalidRefreshToken
	}
	if err != nil {
		return nil, err
	}

	access, accessExp, err := s.tokens.GenerateAccessToken(u.ID, u.Email, string(u.Role))
	if err != nil {
		log.Error("failed to sign access token", zap.Error(err))
		return nil, err
	}

	token, hash, refreshExp := s.tokens.NewRefreshToken()
	if err := s.repo.RotateRefreshToken(ctx, stored, hash, refreshExp); err != nil {
		return nil, err
	}

	log.Info("refresh token rotated", zap.Uint("user_id", u.ID))
	return &AuthResult{
		User: u,
		Tokens: &auth.TokenPair{
			AccessToken:      access,
			AccessExpiresAt:  accessExp,
			RefreshToken:     token,
			RefreshExpiresAt: refreshExp,
		},
	}, nil
}

func (s *service) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	return s.repo.RevokeRefreshToken(ctx, auth.HashRefreshToken(refreshToken))
}

func (s *service) issue(ctx context.Context, u *User) (*AuthResult, error) {
	token, hash, refreshExp := s.tokens.NewRefreshToken()
	if err := s.repo.CreateRefreshToken(ctx, u.ID, hash, refreshExp); err != nil {
		return nil, err
	}
	return s.sign(ctx, u, token, refreshExp)
}

// sign pairs an already stored refresh token with a fresh access token.
func (s *service) sign(ctx context.Context, u *User, token string, refreshExp time.Time) (*AuthResult, error) {
	access, accessExp, err := s.tokens.GenerateAccessToken(u.ID, u.Email, string(u.Role))
	if err != nil {
		logger.FromCtx(ctx).Error("failed to sign access token", zap.Uint("user_id", u.ID), zap.Error(err))
		return nil, err
	}

	return &AuthResult{
		User: u,
		Tokens: &auth.TokenPair{
			AccessToken:      access,
			AccessExpiresAt:  accessExp,
			RefreshToken:     token,
			RefreshExpiresAt: refreshExp,
		},
	}, nil
}

func (s *service) Me(ctx context.Context, userID uint) (*User, error) {
	return s.repo.GetByID(ctx, userID)
}

func (s *service) List(ctx context.Context, filter ListFilter, sort transport.Sort, p transport.Pagination) ([]*User, int, error) {
	if filter.Role != nil && !filter.Role.Valid() {
		return nil, 0, ErrInvalidRole
	}
	return s.repo.List(ctx, filter, sort, p)
}

func (s *service) Get(ctx context.Context, id uint) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) Delete(ctx context.Context, actorID, id uint) error {
	if actorID == id {
		return ErrCannotDeleteYourself
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	logger.FromCtx(ctx).Info("user deleted", zap.Uint("user_id", id), zap.Uint("by", actorID))
	return nil
}
