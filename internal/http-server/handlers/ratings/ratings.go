package ratings

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"mealbook/entity"
	"mealbook/lib/api/cont"
	"mealbook/lib/api/response"
	"mealbook/lib/sl"
)

type Core interface {
	CreateRating(user *entity.User, rating *entity.Rating) (*entity.Rating, error)
	Ratings(recipeId string) ([]*entity.Rating, error)
}

func Create(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.ratings")

		logger := log.With(
			mod,
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)
		user := cont.GetUser(r.Context())

		var rating entity.Rating
		if err := render.Bind(r, &rating); err != nil {
			logger.Warn("invalid request body", sl.Err(err))
			render.Status(r, 400)
			render.JSON(w, r, response.Error(fmt.Sprintf("Invalid request: %v", err)))
			return
		}

		created, err := handler.CreateRating(user, &rating)
		if err != nil {
			logger.Error("create rating", sl.Err(err))
			render.Status(r, 500)
			render.JSON(w, r, response.Error("Request failed"))
			return
		}
		logger.With(slog.String("recipe_id", created.RecipeId)).Debug("rating created")

		render.Status(r, 201)
		render.JSON(w, r, response.Ok(created))
	}
}

// List returns ratings, optionally narrowed by the recipe_id query
// parameter.
func List(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.ratings")

		logger := log.With(
			mod,
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		ratings, err := handler.Ratings(r.URL.Query().Get("recipe_id"))
		if err != nil {
			logger.Error("list ratings", sl.Err(err))
			render.Status(r, 500)
			render.JSON(w, r, response.Error("Request failed"))
			return
		}

		render.JSON(w, r, response.Ok(ratings))
	}
}
