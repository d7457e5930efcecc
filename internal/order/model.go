package order

import (
	"time"

	"github.com/google/uuid"
)

type Address struct {
	Address    string  `json:"address"`
	City       string  `json:"city"`
	PostalCode *string `json:"postalCode,omitempty"`
	Country    string  `json:"country"`
}

type Order struct {
	ID              uint      `json:"id"`
	OrderNumber     string    `json:"orderNumber"`
	UserID          uint      `json:"userId"`
	CustomerName    string    `json:"customerName"`
	CustomerEmail   string    `json:"customerEmail"`
	CustomerPhone   *string   `json:"customerPhone,omitempty"`
	ShippingAddress Address   `json:"shippingAddress"`
	Notes           *string   `json:"notes,omitempty"`
	Items           []Item    `json:"items"`
	TotalAmount     float64   `json:"totalAmount"`
	Status          Status    `json:"status"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// Item is a line frozen at checkout. Later product edits do not touch it.
type Item struct {
	ID        uint    `json:"id"`
	OrderID   uint    `json:"orderId"`
	ProductID uint    `json:"productId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	ImageURL  *string `json:"imageUrl,omitempty"`
}

type AddressInput struct {
	Address    string  `json:"address" validate:"required,max=255"`
	City       string  `json:"city" validate:"required,max=120"`
	PostalCode *string `json:"postalCode" validate:"omitempty,max=20"`
	Country    string  `json:"country" validate:"required,max=80"`
}

type LineInput struct {
	ProductID uint `json:"productId" validate:"required,gt=0"`
	Quantity  int  `json:"quantity" validate:"min=1"`
}

// CreateInput is the checkout payload. With no items the user's cart is
// checked out and emptied. AddressID picks a saved address; with neither it
// nor a shipping address the user's default address is used.
type CreateInput struct {
	AddressID       *uuid.UUID   `json:"addressId"`
	CustomerName    string       `json:"customerName" validate:"required,max=120"`
	CustomerEmail   string       `json:"customerEmail" validate:"required,email"`
	CustomerPhone   *string      `json:"customerPhone" validate:"omitempty,max=40"`
	ShippingAddress AddressInput `json:"shippingAddress"`
	Notes           *string      `json:"notes" validate:"omitempty,max=1000"`
	Items           []LineInput  `json:"items" validate:"omitempty,dive"`
}

type StatusInput struct {
	Status Status `json:"status" validate:"required"`
}

type ListFilter struct {
	UserID *uint
	Status *Status
}
