package main

import (
	"log"

	"github.com/CodedInternet/gotrifan/comms"
	"github.com/CodedInternet/gotrifan/flightlog"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter builds the read-only telemetry surface. When secret is empty the
// routes are served without authentication.
func NewRouter(capture flightlog.Source, history comms.HistorySource, broadcaster *comms.Broadcaster, secret []byte, logger *log.Logger) chi.Router {
	r := chi.NewRouter()

	// A good base middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{Logger: logger, NoColor: true}))
	r.Use(middleware.RedirectSlashes)
	r.Use(middleware.Recoverer) // make sure this is last

	r.Group(func(r chi.Router) {
		if len(secret) > 0 {
			r.Use(ValidateJWT(secret))
		} else {
			logger.Println("[telemetry] no secret configured. Authentication disabled.")
		}

		r.Route("/api", func(r chi.Router) {
			r.Get("/status", comms.StatusHandler(capture))
			r.Get("/history", comms.HistoryHandler(history))
		})

		if broadcaster != nil {
			r.Get("/ws/telemetry", broadcaster.Handler)
		}
	})

	return r
}
