package product

import (
	"time"

	"joyeria-be/internal/discount"
)

type AvailabilityType string

const (
	AvailabilityStock     AvailabilityType = "stock"
	AvailabilityBackorder AvailabilityType = "backorder"
	AvailabilityBoth      AvailabilityType = "both"
)

type Product struct {
	ID               uint             `json:"id"`
	Name             string           `json:"name"`
	Slug             string           `json:"slug"`
	Description      *string          `json:"description,omitempty"`
	Price            float64          `json:"price"`
	Stock            int              `json:"stock"`
	AvailabilityType AvailabilityType `json:"availabilityType"`
	ImageURL         *string          `json:"imageUrl,omitempty"`
	CategoryID       *uint            `json:"categoryId,omitempty"`
	CategoryName     *string          `json:"categoryName,omitempty"`
	TagIDs           []uint           `json:"tagIds"`
	RatingAverage    float64          `json:"ratingAverage"`
	RatingCount      int              `json:"ratingCount"`
	IsActive         bool             `json:"isActive"`
	CreatedAt        time.Time        `json:"createdAt"`
	UpdatedAt        time.Time        `json:"updatedAt"`

	// Filled from the discount evaluator on every read.
	FinalPrice float64           `json:"finalPrice"`
	Discount   *discount.Applied `json:"discount,omitempty"`
}

// Input is the admin payload for create and full update.
type Input struct {
	Name             string           `json:"name" validate:"required,max=200"`
	Slug             string           `json:"slug" validate:"omitempty,max=220"`
	Description      *string          `json:"description" validate:"omitempty,max=5000"`
	Price            *float64         `json:"price" validate:"required,gte=0"`
	Stock            *int             `json:"stock" validate:"omitempty,gte=0"`
	AvailabilityType AvailabilityType `json:"availabilityType" validate:"omitempty,oneof=stock backorder both"`
	ImageURL         *string          `json:"imageUrl" validate:"omitempty,max=500"`
	CategoryID       *uint            `json:"categoryId" validate:"omitempty,gt=0"`
	TagIDs           []uint           `json:"tagIds" validate:"omitempty,dive,gt=0"`
	IsActive         *bool            `json:"isActive"`
}

type ListFilter struct {
	CategoryID      *uint
	TagID           *uint
	Search          *string
	MinPrice        *float64
	MaxPrice        *float64
	Availability    *AvailabilityType
	InStock         *bool
	IncludeInactive bool
}

type RatingInput struct {
	Rating int `json:"rating" validate:"required,min=1,max=5"`
}

type RatingSummary struct {
	ProductID     uint    `json:"productId"`
	RatingAverage float64 `json:"ratingAverage"`
	RatingCount   int     `json:"ratingCount"`
}
