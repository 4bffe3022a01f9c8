package entity

import (
	"net/http"
	"time"

	"mealbook/lib/validate"
)

// User is an API client authorized to use the recipe endpoints.
// Accounts are created by the registration flow after a successful
// invite redemption; the Token is what the authenticate middleware
// checks on every request.
type User struct {
	Username     string    `json:"username" bson:"username" validate:"required"`
	Name         string    `json:"name" bson:"name" validate:"omitempty"`
	Email        string    `json:"email" bson:"email" validate:"omitempty,email"`
	Token        string    `json:"token" bson:"token" validate:"required,min=1"`
	RegisteredAt time.Time `json:"registered_at" bson:"registered_at"`
}

func (u *User) Bind(_ *http.Request) error {
	return validate.Struct(u)
}

// DisplayName is what gets stamped into recipe attribution fields.
func (u *User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Username
}
