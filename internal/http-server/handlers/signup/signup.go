package signup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"mealbook/entity"
	"mealbook/internal/invite"
	"mealbook/lib/api/response"
	"mealbook/lib/sl"
)

type Core interface {
	RedeemInvite(ctx context.Context, attempt *entity.SignupAttempt) (invite.Decision, error)
}

// PreSignup is the identity platform's pre-registration hook. A 200
// tells the platform to proceed with the signup; anything else rejects
// it with the status message surfaced to the end user.
//
// Denials get one undifferentiated message regardless of why the code
// was refused. A store fault gets 503 and a retryable message that never
// calls the code invalid: the attempt may have committed, and a retry is
// safe because the preconditions cap visible successes at one.
func PreSignup(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.signup")

		logger := log.With(
			mod,
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		if handler == nil {
			logger.Error("invite service not available")
			render.Status(r, 503)
			render.JSON(w, r, response.Error("Registration temporarily unavailable"))
			return
		}

		var attempt entity.SignupAttempt
		if err := render.Bind(r, &attempt); err != nil {
			logger.Warn("invalid request body", sl.Err(err))
			render.Status(r, 400)
			render.JSON(w, r, response.Error(fmt.Sprintf("Invalid request: %v", err)))
			return
		}
		logger = logger.With(slog.String("email", attempt.Email))

		decision, err := handler.RedeemInvite(r.Context(), &attempt)
		if errors.Is(err, invite.ErrMissingCode) {
			logger.Warn("no invite code supplied")
			render.Status(r, 400)
			render.JSON(w, r, response.Error("Missing invite code"))
			return
		}
		if err != nil {
			logger.Error("invite store unavailable", sl.Err(err))
			render.Status(r, 503)
			render.JSON(w, r, response.Error("Registration temporarily unavailable"))
			return
		}
		if decision != invite.Allow {
			logger.Info("registration rejected")
			render.Status(r, 403)
			render.JSON(w, r, response.Error(invite.DenyMessage))
			return
		}

		logger.Debug("registration approved")
		render.JSON(w, r, response.Ok(nil))
	}
}
