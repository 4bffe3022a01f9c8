package images

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"mealbook/entity"
	"mealbook/lib/api/response"
	"mealbook/lib/sl"
)

type Core interface {
	IssueUpload(ctx context.Context, filename string) (*entity.UploadTicket, error)
	ImageUrl(ctx context.Context, key string) (string, error)
}

type uploadRequest struct {
	Filename string `json:"filename"`
}

func (u *uploadRequest) Bind(_ *http.Request) error {
	if u.Filename == "" {
		u.Filename = "upload"
	}
	return nil
}

// Upload issues a presigned upload ticket. The service picks the object
// key; clients only choose the filename, and only its extension survives.
func Upload(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.images")

		logger := log.With(
			mod,
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req uploadRequest
		if err := render.Bind(r, &req); err != nil {
			logger.Warn("invalid request body", sl.Err(err))
			render.Status(r, 400)
			render.JSON(w, r, response.Error(fmt.Sprintf("Invalid request: %v", err)))
			return
		}

		ticket, err := handler.IssueUpload(r.Context(), req.Filename)
		if err != nil {
			logger.Error("issue upload", sl.Err(err))
			render.Status(r, 500)
			render.JSON(w, r, response.Error("Upload service not available"))
			return
		}
		logger.With(slog.String("key", ticket.Key)).Debug("upload ticket issued")

		render.JSON(w, r, response.Ok(ticket))
	}
}

// View returns a presigned view URL for a stored image key.
func View(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.images")

		logger := log.With(
			mod,
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		key, err := url.PathUnescape(chi.URLParam(r, "*"))
		if err != nil || key == "" {
			render.Status(r, 400)
			render.JSON(w, r, response.Error("Missing image key"))
			return
		}

		viewUrl, err := handler.ImageUrl(r.Context(), key)
		if err != nil {
			logger.Error("presign view url", sl.Err(err))
			render.Status(r, 500)
			render.JSON(w, r, response.Error("Image service not available"))
			return
		}

		render.JSON(w, r, response.Ok(map[string]string{"url": viewUrl}))
	}
}
