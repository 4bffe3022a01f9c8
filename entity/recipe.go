package entity

import (
	"net/http"

	"mealbook/lib/validate"
)

// Recipe is a stored recipe. Creation metadata is stamped once by the
// create handler and preserved across updates; Update* fields track the
// last writer.
type Recipe struct {
	RecipeId      string   `json:"recipe_id" bson:"recipe_id"`
	Name          string   `json:"name" bson:"name" validate:"required"`
	Description   string   `json:"description,omitempty" bson:"description,omitempty"`
	Ingredients   []string `json:"ingredients,omitempty" bson:"ingredients,omitempty"`
	Steps         []string `json:"steps,omitempty" bson:"steps,omitempty"`
	ImageKey      string   `json:"image_key,omitempty" bson:"image_key,omitempty"`
	CreatedAt     int64    `json:"created_at,omitempty" bson:"created_at,omitempty"`
	CreatedBySub  string   `json:"created_by_sub,omitempty" bson:"created_by_sub,omitempty"`
	CreatedByName string   `json:"created_by_name,omitempty" bson:"created_by_name,omitempty"`
	UpdatedAt     int64    `json:"updated_at,omitempty" bson:"updated_at,omitempty"`
	UpdatedBySub  string   `json:"updated_by_sub,omitempty" bson:"updated_by_sub,omitempty"`
	UpdatedByName string   `json:"updated_by_name,omitempty" bson:"updated_by_name,omitempty"`
}

func (rc *Recipe) Bind(_ *http.Request) error {
	return validate.Struct(rc)
}
