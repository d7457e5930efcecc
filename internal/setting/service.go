package setting

import (
	"context"
	"regexp"
	"strings"

	"joyeria-be/internal/logger"
	"joyeria-be/internal/transport"

	"go.uber.org/zap"
)

var keyPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9._-]{0,99}$`)

type Service interface {
	List(ctx context.Context, prefix string) ([]*Setting, error)
	Get(ctx context.Context, key string) (*Setting, error)
	Set(ctx context.Context, key string, in Input) (*Setting, error)
	Delete(ctx context.Context, key string) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func normalizeKey(key string) (string, error) {
	key = strings.ToLower(strings.TrimSpace(key))
	if !keyPattern.MatchString(key) {
		return "", ErrInvalidKey
	}
	return key, nil
}

func (s *service) List(ctx context.Context, prefix string) ([]*Setting, error) {
	return s.repo.List(ctx, strings.ToLower(strings.TrimSpace(prefix)))
}

func (s *service) Get(ctx context.Context, key string) (*Setting, error) {
	key, err := normalizeKey(key)
	if err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, key)
}

// Set creates the setting or overwrites its value.
func (s *service) Set(ctx context.Context, key string, in Input) (*Setting, error) {
	key, err := normalizeKey(key)
	if err != nil {
		return nil, err
	}
	if err := transport.Validate(in); err != nil {
		return nil, err
	}

	st, err := s.repo.Upsert(ctx, key, *in.Value)
	if err != nil {
		return nil, err
	}

	logger.FromCtx(ctx).Info("setting saved", zap.String("key", key))
	return st, nil
}

func (s *service) Delete(ctx context.Context, key string) error {
	key, err := normalizeKey(key)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, key)
}
