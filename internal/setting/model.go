package setting

import "time"

// Setting is a shop-wide key/value pair such as the contact phone or the
// free shipping threshold. Values are opaque strings to the backend.
type Setting struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Input struct {
	Value *string `json:"value" validate:"required,max=10000"`
}
