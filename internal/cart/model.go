package cart

import (
	"time"

	"joyeria-be/internal/discount"
)

type Cart struct {
	ID        uint
	UserID    uint
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Item is a cart line joined with the live product row.
type Item struct {
	ID        uint
	CartID    uint
	ProductID uint
	Quantity  int
	CreatedAt time.Time
	UpdatedAt time.Time

	ProductName      string
	ProductSlug      string
	ProductPrice     float64
	ProductImageURL  *string
	ProductStock     int
	ProductIsActive  bool
	AvailabilityType string
}

type ItemView struct {
	ID               uint              `json:"id"`
	ProductID        uint              `json:"productId"`
	Name             string            `json:"name"`
	Slug             string            `json:"slug"`
	ImageURL         *string           `json:"imageUrl,omitempty"`
	Stock            int               `json:"stock"`
	AvailabilityType string            `json:"availabilityType"`
	IsActive         bool              `json:"isActive"`
	Quantity         int               `json:"quantity"`
	UnitPrice        float64           `json:"unitPrice"`
	FinalPrice       float64           `json:"finalPrice"`
	Discount         *discount.Applied `json:"discount,omitempty"`
	LineTotal        float64           `json:"lineTotal"`
}

// View is the derived cart returned by every cart endpoint.
type View struct {
	ID        uint       `json:"id"`
	UserID    uint       `json:"userId"`
	Items     []ItemView `json:"items"`
	ItemCount int        `json:"itemCount"`
	Subtotal  float64    `json:"subtotal"`
	Total     float64    `json:"total"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

type AddItemInput struct {
	ProductID uint `json:"productId" validate:"required,gt=0"`
	Quantity  int  `json:"quantity" validate:"min=1"`
}

// UpdateItemInput allows zero and negative quantities; they remove the line.
type UpdateItemInput struct {
	Quantity *int `json:"quantity" validate:"required"`
}
