package address

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Address is a saved shipping destination in a user's address book.
type Address struct {
	ID            uuid.UUID `json:"id"`
	UserID        uint      `json:"userId"`
	Label         string    `json:"label"`
	RecipientName string    `json:"recipientName"`
	Phone         *string   `json:"phone,omitempty"`
	Line1         string    `json:"line1"`
	Line2         *string   `json:"line2,omitempty"`
	City          string    `json:"city"`
	Province      *string   `json:"province,omitempty"`
	PostalCode    *string   `json:"postalCode,omitempty"`
	Country       string    `json:"country"`
	IsDefault     bool      `json:"isDefault"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Street joins both address lines and the province into a single line.
func (a *Address) Street() string {
	parts := []string{a.Line1}
	if a.Line2 != nil && strings.TrimSpace(*a.Line2) != "" {
		parts = append(parts, strings.TrimSpace(*a.Line2))
	}
	if a.Province != nil && strings.TrimSpace(*a.Province) != "" {
		parts = append(parts, strings.TrimSpace(*a.Province))
	}
	return strings.Join(parts, ", ")
}

type Input struct {
	Label         string  `json:"label" validate:"required,max=60"`
	RecipientName string  `json:"recipientName" validate:"required,max=120"`
	Phone         *string `json:"phone" validate:"omitempty,max=40"`
	Line1         string  `json:"line1" validate:"required,max=255"`
	Line2         *string `json:"line2" validate:"omitempty,max=255"`
	City          string  `json:"city" validate:"required,max=120"`
	Province      *string `json:"province" validate:"omitempty,max=120"`
	PostalCode    *string `json:"postalCode" validate:"omitempty,max=20"`
	Country       string  `json:"country" validate:"required,max=80"`
	IsDefault     bool    `json:"isDefault"`
}
