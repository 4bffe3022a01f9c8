package entity

import (
	"net/http"

	"mealbook/lib/validate"
)

// Rating is one user's score for a recipe.
type Rating struct {
	RatingId  string `json:"rating_id" bson:"rating_id"`
	RecipeId  string `json:"recipe_id" bson:"recipe_id" validate:"required"`
	Stars     int    `json:"stars" bson:"stars" validate:"required,min=1,max=5"`
	Comment   string `json:"comment,omitempty" bson:"comment,omitempty"`
	CreatedBy string `json:"created_by,omitempty" bson:"created_by,omitempty"`
	CreatedAt int64  `json:"created_at,omitempty" bson:"created_at,omitempty"`
}

func (rt *Rating) Bind(_ *http.Request) error {
	return validate.Struct(rt)
}
