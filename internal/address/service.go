package address

import (
	"context"
	"strings"

	"joyeria-be/internal/logger"
	"joyeria-be/internal/transport"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service manages a user's address book.
type Service interface {
	List(ctx context.Context, userID uint) ([]*Address, error)
	Get(ctx context.Context, userID uint, id uuid.UUID) (*Address, error)
	Default(ctx context.Context, userID uint) (*Address, error)

	Create(ctx context.Context, userID uint, in Input) (*Address, error)
	Update(ctx context.Context, userID uint, id uuid.UUID, in Input) (*Address, error)
	Delete(ctx context.Context, userID uint, id uuid.UUID) error
	SetDefault(ctx context.Context, userID uint, id uuid.UUID) (*Address, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) List(ctx context.Context, userID uint) ([]*Address, error) {
	return s.repo.List(ctx, userID)
}

func (s *service) Get(ctx context.Context, userID uint, id uuid.UUID) (*Address, error) {
	return s.repo.GetByID(ctx, userID, id)
}

func (s *service) Default(ctx context.Context, userID uint) (*Address, error) {
	return s.repo.GetDefault(ctx, userID)
}

func trimInput(in *Input) {
	in.Label = strings.TrimSpace(in.Label)
	in.RecipientName = strings.TrimSpace(in.RecipientName)
	in.Line1 = strings.TrimSpace(in.Line1)
	in.City = strings.TrimSpace(in.City)
	in.Country = strings.TrimSpace(in.Country)
}

func fromInput(userID uint, id uuid.UUID, in Input) *Address {
	return &Address{
		ID:            id,
		UserID:        userID,
		Label:         in.Label,
		RecipientName: in.RecipientName,
		Phone:         in.Phone,
		Line1:         in.Line1,
		Line2:         in.Line2,
		City:          in.City,
		Province:      in.Province,
		PostalCode:    in.PostalCode,
		Country:       in.Country,
		IsDefault:     in.IsDefault,
	}
}

func (s *service) Create(ctx context.Context, userID uint, in Input) (*Address, error) {
	trimInput(&in)
	if err := transport.Validate(in); err != nil {
		return nil, err
	}

	a := fromInput(userID, uuid.New(), in)
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}

	logger.FromCtx(ctx).Info("address created",
		zap.Uint("user_id", userID),
		zap.String("address_id", a.ID.String()),
		zap.Bool("default", a.IsDefault),
	)
	return a, nil
}

func (s *service) Update(ctx context.Context, userID uint, id uuid.UUID, in Input) (*Address, error) {
	trimInput(&in)
	if err := transport.Validate(in); err != nil {
		return nil, err
	}

	a := fromInput(userID, id, in)
	if err := s.repo.Update(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *service) Delete(ctx context.Context, userID uint, id uuid.UUID) error {
	if err := s.repo.Deactivate(ctx, userID, id); err != nil {
		return err
	}
	logger.FromCtx(ctx).Info("address deleted",
		zap.Uint("user_id", userID),
		zap.String("address_id", id.String()),
	)
	return nil
}

func (s *service) SetDefault(ctx context.Context, userID uint, id uuid.UUID) (*Address, error) {
	if err := s.repo.SetDefault(ctx, userID, id); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, userID, id)
}
