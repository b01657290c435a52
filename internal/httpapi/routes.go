package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/DoyleJ11/toppan-client/internal/command"
	"github.com/DoyleJ11/toppan-client/internal/view"
	"github.com/DoyleJ11/toppan-client/internal/ws"
)

type Deps struct {
	View       *view.Context
	Dispatcher *command.Dispatcher
	AssetDir   string // served under /assets/tiles/ when set
	Logger     *zap.Logger
}

func SetupRoutes(d Deps) http.Handler {
	log := d.Logger
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("http")

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	// Public routes
	r.Get("/healthz", Healthz)
	r.Get("/frame", GetFrame(d.View))
	r.Post("/commands/{name}", PostCommand(d.View, d.Dispatcher, log))
	r.Get("/ws", ws.Handler(d.View, d.Dispatcher, log))
	if d.AssetDir != "" {
		r.Handle("/assets/tiles/*", http.StripPrefix("/assets/tiles/", http.FileServer(http.Dir(d.AssetDir))))
	}
	return r
}
