package favorite

import (
	"time"

	"joyeria-be/internal/product"
)

type Favorite struct {
	UserID    uint             `json:"userId"`
	ProductID uint             `json:"productId"`
	CreatedAt time.Time        `json:"createdAt"`
	Product   *product.Product `json:"product,omitempty"`
}

type AddInput struct {
	ProductID uint `json:"productId" validate:"required,gt=0"`
}
