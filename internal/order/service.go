package order

import (
	"context"
	"errors"
	"strings"

	"joyeria-be/internal/address"
	"joyeria-be/internal/cart"
	"joyeria-be/internal/discount"
	"joyeria-be/internal/logger"
	"joyeria-be/internal/product"
	"joyeria-be/internal/transport"
	"joyeria-be/internal/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ProductLookup interface {
	GetByIDs(ctx context.Context, ids []uint) (map[uint]*product.Product, error)
}

type CartSource interface {
	GetCart(ctx context.Context, userID uint) (*cart.View, error)
}

type PricerSource interface {
	Pricer(ctx context.Context) (*discount.Pricer, error)
}

type AddressBook interface {
	Get(ctx context.Context, userID uint, id uuid.UUID) (*address.Address, error)
	Default(ctx context.Context, userID uint) (*address.Address, error)
}

type Service interface {
	Create(ctx context.Context, userID uint, in CreateInput) (*Order, error)
	List(ctx context.Context, filter ListFilter, p transport.Pagination) ([]*Order, int, error)
	Get(ctx context.Context, id uint) (*Order, error)
	UpdateStatus(ctx context.Context, id uint, to Status) (*Order, error)
	Delete(ctx context.Context, id uint) error
}

type service struct {
	repo      Repository
	products  ProductLookup
	carts     CartSource
	prices    PricerSource
	addresses AddressBook
	newNum    func() string
}

func NewService(repo Repository, products ProductLookup, carts CartSource, prices PricerSource, addresses AddressBook) Service {
	return &service{
		repo:      repo,
		products:  products,
		carts:     carts,
		prices:    prices,
		addresses: addresses,
		newNum:    utils.GenerateOrderNumber,
	}
}

type line struct {
	productID uint
	quantity  int
}

// Create checks out either the explicit items or, when none are given, the
// user's cart. Each line snapshots the product name, image and discounted
// unit price at this moment.
func (s *service) Create(ctx context.Context, userID uint, in CreateInput) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Create"),
		zap.Uint("user_id", userID),
	)

	in.CustomerName = strings.TrimSpace(in.CustomerName)
	in.CustomerEmail = strings.TrimSpace(in.CustomerEmail)
	if in.CustomerEmail == "" {
		in.CustomerEmail = utils.GetUserEmailFromContext(ctx)
	}
	if err := s.fillShipping(ctx, userID, &in); err != nil {
		return nil, err
	}
	if err := transport.Validate(in); err != nil {
		return nil, err
	}

	/* ---------- LINES ---------- */

	var (
		lines       []line
		clearCartID *uint
	)
	if len(in.Items) > 0 {
		lines = mergeLines(in.Items)
	} else {
		view, err := s.carts.GetCart(ctx, userID)
		if err != nil {
			return nil, err
		}
		for _, it := range view.Items {
			lines = append(lines, line{productID: it.ProductID, quantity: it.Quantity})
		}
		cartID := view.ID
		clearCartID = &cartID
	}
	if len(lines) == 0 {
		return nil, ErrEmptyOrder
	}

	/* ---------- SNAPSHOT ---------- */

	ids := make([]uint, 0, len(lines))
	for _, l := range lines {
		ids = append(ids, l.productID)
	}
	products, err := s.products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	var pricer *discount.Pricer
	if s.prices != nil {
		if pricer, err = s.prices.Pricer(ctx); err != nil {
			log.Warn("discounts unavailable, checking out at list prices", zap.Error(err))
			pricer = nil
		}
	}

	o := &Order{
		OrderNumber:   s.newNum(),
		UserID:        userID,
		CustomerName:  in.CustomerName,
		CustomerEmail: in.CustomerEmail,
		CustomerPhone: in.CustomerPhone,
		ShippingAddress: Address{
			Address:    in.ShippingAddress.Address,
			City:       in.ShippingAddress.City,
			PostalCode: in.ShippingAddress.PostalCode,
			Country:    in.ShippingAddress.Country,
		},
		Notes:  in.Notes,
		Status: StatusPending,
		Items:  make([]Item, 0, len(lines)),
	}

	var total float64
	for _, l := range lines {
		p, ok := products[l.productID]
		if !ok {
			return nil, ErrProductNotFound
		}
		if !p.IsActive {
			return nil, ErrProductUnavailable
		}
		if p.AvailabilityType == product.AvailabilityStock && p.Stock < l.quantity {
			return nil, ErrInsufficientStock
		}

		price := pricer.Price(p.ID, p.Price).Price
		o.Items = append(o.Items, Item{
			ProductID: p.ID,
			Name:      p.Name,
			Price:     price,
			Quantity:  l.quantity,
			ImageURL:  p.ImageURL,
		})
		total += price * float64(l.quantity)
	}
	o.TotalAmount = utils.RoundMoney(total)

	/* ---------- PERSIST ---------- */

	if err := s.repo.Create(ctx, o, clearCartID); err != nil {
		return nil, err
	}

	log.Info("order created",
		zap.Uint("order_id", o.ID),
		zap.String("order_number", o.OrderNumber),
		zap.Float64("total", o.TotalAmount),
		zap.Bool("from_cart", clearCartID != nil),
	)
	return o, nil
}

// fillShipping copies a saved address into the input. An explicit AddressID
// must resolve; the default address only fills an empty shipping block.
func (s *service) fillShipping(ctx context.Context, userID uint, in *CreateInput) error {
	if s.addresses == nil {
		return nil
	}

	var (
		a   *address.Address
		err error
	)
	switch {
	case in.AddressID != nil:
		if a, err = s.addresses.Get(ctx, userID, *in.AddressID); err != nil {
			return err
		}
	case strings.TrimSpace(in.ShippingAddress.Address) == "":
		a, err = s.addresses.Default(ctx, userID)
		if errors.Is(err, address.ErrAddressNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
	default:
		return nil
	}

	in.ShippingAddress = AddressInput{
		Address:    a.Street(),
		City:       a.City,
		PostalCode: a.PostalCode,
		Country:    a.Country,
	}
	if in.CustomerName == "" {
		in.CustomerName = a.RecipientName
	}
	if in.CustomerPhone == nil {
		in.CustomerPhone = a.Phone
	}
	return nil
}

// mergeLines folds repeated products into one line, keeping first-seen order.
func mergeLines(items []LineInput) []line {
	idx := map[uint]int{}
	out := []line{}
	for _, it := range items {
		if i, ok := idx[it.ProductID]; ok {
			out[i].quantity += it.Quantity
			continue
		}
		idx[it.ProductID] = len(out)
		out = append(out, line{productID: it.ProductID, quantity: it.Quantity})
	}
	return out
}

func (s *service) List(ctx context.Context, filter ListFilter, p transport.Pagination) ([]*Order, int, error) {
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, 0, ErrInvalidStatus
	}
	return s.repo.List(ctx, filter, p)
}

func (s *service) Get(ctx context.Context, id uint) (*Order, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) UpdateStatus(ctx context.Context, id uint, to Status) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "UpdateStatus"),
		zap.Uint("order_id", id),
		zap.String("to", string(to)),
	)

	if !to.Valid() {
		return nil, ErrInvalidStatus
	}

	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	from := o.Status
	if from == to {
		return o, nil
	}
	if !CanTransition(from, to) {
		log.Warn("rejected status transition", zap.String("from", string(from)))
		return nil, ErrInvalidTransition
	}

	if err := s.repo.UpdateStatus(ctx, id, from, to); err != nil {
		return nil, err
	}

	log.Info("order status updated", zap.String("from", string(from)))
	return s.repo.GetByID(ctx, id)
}

func (s *service) Delete(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	logger.FromCtx(ctx).Info("order deleted", zap.Uint("order_id", id))
	return nil
}
