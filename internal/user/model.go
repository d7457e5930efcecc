package user

import (
	"time"

	"joyeria-be/internal/auth"

	"github.com/google/uuid"
)

type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

type User struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	Role      Role      `json:"role"`
	Phone     *string   `json:"phone,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// RefreshToken is the stored side of an opaque refresh token. Only the
// sha256 hash of the token is kept.
type RefreshToken struct {
	ID        uuid.UUID
	UserID    uint
	TokenHash string
	ExpiresAt time.Time
	Revoked   bool
	CreatedAt time.Time
}

type RegisterInput struct {
	Name     string  `json:"name" validate:"required,max=120"`
	Email    string  `json:"email" validate:"required,email,max=255"`
	Password string  `json:"password" validate:"required,min=8,max=72"`
	Phone    *string `json:"phone" validate:"omitempty,max=40"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshInput carries the refresh token for clients that do not use cookies.
type RefreshInput struct {
	RefreshToken string `json:"refreshToken"`
}

type AuthResult struct {
	User   *User           `json:"user"`
	Tokens *auth.TokenPair `json:"tokens"`
}

type ListFilter struct {
	Search *string
	Role   *Role
}
