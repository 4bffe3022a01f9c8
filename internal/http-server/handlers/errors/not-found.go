package errors

import (
	"net/http"

	"github.com/go-chi/render"

	"mealbook/lib/api/response"
)

func NotFound() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render.Status(r, 404)
		render.JSON(w, r, response.Error("Requested resource not found"))
	}
}
