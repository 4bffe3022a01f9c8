package errors

import (
	"net/http"

	"github.com/go-chi/render"

	"mealbook/lib/api/response"
)

func NotAllowed() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render.Status(r, 405)
		render.JSON(w, r, response.Error("Method not allowed"))
	}
}
