package api

import (
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"mealbook/internal/config"
	"mealbook/internal/http-server/handlers/errors"
	"mealbook/internal/http-server/handlers/images"
	"mealbook/internal/http-server/handlers/ratings"
	"mealbook/internal/http-server/handlers/recipes"
	"mealbook/internal/http-server/handlers/signup"
	"mealbook/internal/http-server/middleware/authenticate"
	"mealbook/internal/http-server/middleware/timeout"
	"mealbook/lib/sl"
)

type Server struct {
	conf       *config.Config
	httpServer *http.Server
	log        *slog.Logger
}

type Handler interface {
	authenticate.Authenticate
	signup.Core
	recipes.Core
	ratings.Core
	images.Core
}

func New(conf *config.Config, log *slog.Logger, handler Handler) error {

	server := Server{
		conf: conf,
		log:  log.With(sl.Module("api.server")),
	}

	router := chi.NewRouter()
	router.Use(timeout.Timeout(5))
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)
	router.Use(render.SetContentType(render.ContentTypeJSON))

	router.NotFound(errors.NotFound())
	router.MethodNotAllowed(errors.NotAllowed())

	// Called by the identity platform, not end users; it carries no
	// bearer token, so it stays outside the authenticated tree.
	router.Route("/hooks", func(hooks chi.Router) {
		hooks.Post("/pre-signup", signup.PreSignup(log, handler))
	})

	router.Route("/v1", func(rootApi chi.Router) {
		rootApi.Use(authenticate.New(log, handler))
		rootApi.Route("/recipes", func(rc chi.Router) {
			rc.Get("/", recipes.List(log, handler))
			rc.Post("/", recipes.Create(log, handler))
			rc.Get("/{id}", recipes.Get(log, handler))
			rc.Put("/{id}", recipes.Update(log, handler))
			rc.Delete("/{id}", recipes.Delete(log, handler))
		})
		rootApi.Route("/ratings", func(rt chi.Router) {
			rt.Get("/", ratings.List(log, handler))
			rt.Post("/", ratings.Create(log, handler))
		})
		rootApi.Route("/images", func(im chi.Router) {
			im.Post("/", images.Upload(log, handler))
			im.Get("/*", images.View(log, handler))
		})
	})

	httpLog := slog.NewLogLogger(log.Handler(), slog.LevelError)
	server.httpServer = &http.Server{
		Handler:      router,
		ErrorLog:     httpLog,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverAddress := fmt.Sprintf("%s:%s", conf.Listen.BindIp, conf.Listen.Port)
	listener, err := net.Listen("tcp", serverAddress)
	if err != nil {
		return err
	}

	server.log.Info("starting api server", slog.String("address", serverAddress))

	return server.httpServer.Serve(listener)
}
