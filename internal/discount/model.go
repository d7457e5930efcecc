package discount

import "time"

type Type string

const (
	TypePercentage Type = "percentage"
	TypeFixed      Type = "fixed"
)

func (t Type) Valid() bool {
	return t == TypePercentage || t == TypeFixed
}

type Discount struct {
	ID         uint       `json:"id"`
	Name       string     `json:"name"`
	Type       Type       `json:"type"`
	Value      float64    `json:"value"`
	StartDate  *time.Time `json:"startDate,omitempty"`
	EndDate    *time.Time `json:"endDate,omitempty"`
	IsActive   bool       `json:"isActive"`
	IsGeneric  bool       `json:"isGeneric"`
	ProductIDs []uint     `json:"productIds"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

// Applied is the part of a discount exposed next to a computed price.
type Applied struct {
	ID    uint    `json:"id"`
	Name  string  `json:"name"`
	Type  Type    `json:"type"`
	Value float64 `json:"value"`
}

type PriceResult struct {
	Price         float64  `json:"price"`
	OriginalPrice float64  `json:"originalPrice"`
	Discount      *Applied `json:"discount,omitempty"`
}

// Input is the admin payload for create and update. Update replaces the whole
// discount including its product set.
type Input struct {
	Name       string     `json:"name" validate:"required,max=120"`
	Type       Type       `json:"type" validate:"required,oneof=percentage fixed"`
	Value      *float64   `json:"value" validate:"required,gte=0"`
	StartDate  *time.Time `json:"startDate"`
	EndDate    *time.Time `json:"endDate"`
	IsActive   *bool      `json:"isActive"`
	IsGeneric  bool       `json:"isGeneric"`
	ProductIDs []uint     `json:"productIds" validate:"omitempty,dive,gt=0"`
}

type ListFilter struct {
	Active *bool
}
