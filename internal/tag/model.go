package tag

import "time"

type Tag struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

type Input struct {
	Name string `json:"name" validate:"required,max=60"`
}

type ListFilter struct {
	Search *string
}
