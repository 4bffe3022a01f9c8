package recipes

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"mealbook/entity"
	"mealbook/lib/api/cont"
	"mealbook/lib/api/response"
	"mealbook/lib/sl"
)

type Core interface {
	Recipes() ([]*entity.Recipe, error)
	Recipe(id string) (*entity.Recipe, error)
	CreateRecipe(user *entity.User, recipe *entity.Recipe) (*entity.Recipe, error)
	UpdateRecipe(user *entity.User, id string, recipe *entity.Recipe) (*entity.Recipe, error)
	DeleteRecipe(id string) error
}

func List(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := requestLogger(log, r)

		recipes, err := handler.Recipes()
		if err != nil {
			logger.Error("list recipes", sl.Err(err))
			render.Status(r, 500)
			render.JSON(w, r, response.Error("Request failed"))
			return
		}

		render.JSON(w, r, response.Ok(recipes))
	}
}

func Get(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := requestLogger(log, r)

		id := chi.URLParam(r, "id")
		if id == "" {
			render.Status(r, 400)
			render.JSON(w, r, response.Error("Missing id"))
			return
		}

		recipe, err := handler.Recipe(id)
		if err != nil {
			logger.Error("get recipe", sl.Err(err))
			render.Status(r, 500)
			render.JSON(w, r, response.Error("Request failed"))
			return
		}
		if recipe == nil {
			render.Status(r, 404)
			render.JSON(w, r, response.Error("Recipe not found"))
			return
		}

		render.JSON(w, r, response.Ok(recipe))
	}
}

func Create(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := requestLogger(log, r)
		user := cont.GetUser(r.Context())

		var recipe entity.Recipe
		if err := render.Bind(r, &recipe); err != nil {
			logger.Warn("invalid request body", sl.Err(err))
			render.Status(r, 400)
			render.JSON(w, r, response.Error(fmt.Sprintf("Invalid request: %v", err)))
			return
		}

		created, err := handler.CreateRecipe(user, &recipe)
		if err != nil {
			logger.Error("create recipe", sl.Err(err))
			render.Status(r, 500)
			render.JSON(w, r, response.Error("Request failed"))
			return
		}
		logger.With(slog.String("recipe_id", created.RecipeId)).Debug("recipe created")

		render.Status(r, 201)
		render.JSON(w, r, response.Ok(created))
	}
}

func Update(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := requestLogger(log, r)
		user := cont.GetUser(r.Context())

		id := chi.URLParam(r, "id")
		if id == "" {
			render.Status(r, 400)
			render.JSON(w, r, response.Error("Missing id"))
			return
		}

		var recipe entity.Recipe
		if err := render.Bind(r, &recipe); err != nil {
			logger.Warn("invalid request body", sl.Err(err))
			render.Status(r, 400)
			render.JSON(w, r, response.Error(fmt.Sprintf("Invalid request: %v", err)))
			return
		}

		updated, err := handler.UpdateRecipe(user, id, &recipe)
		if err != nil {
			logger.Error("update recipe", sl.Err(err))
			render.Status(r, 500)
			render.JSON(w, r, response.Error("Request failed"))
			return
		}
		logger.With(slog.String("recipe_id", id)).Debug("recipe updated")

		render.JSON(w, r, response.Ok(updated))
	}
}

func Delete(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := requestLogger(log, r)

		id := chi.URLParam(r, "id")
		if id == "" {
			render.Status(r, 400)
			render.JSON(w, r, response.Error("Missing id"))
			return
		}

		if err := handler.DeleteRecipe(id); err != nil {
			logger.Error("delete recipe", sl.Err(err))
			render.Status(r, 500)
			render.JSON(w, r, response.Error("Request failed"))
			return
		}
		logger.With(slog.String("recipe_id", id)).Debug("recipe deleted")

		render.NoContent(w, r)
	}
}

func requestLogger(log *slog.Logger, r *http.Request) *slog.Logger {
	return log.With(
		sl.Module("http.handlers.recipes"),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)
}
