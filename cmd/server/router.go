package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/osmnmelih/deutsch-delight-sub001/internal/api"
	apimiddleware "github.com/osmnmelih/deutsch-delight-sub001/internal/api/middleware"
)

// setupRouter configures the application router with all routes and
// middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(apimiddleware.TraceMiddleware)

	sessionHandler := api.NewSessionHandler(app.manager, app.logger)
	reviewHandler := api.NewReviewHandler(app.logger)
	authMiddleware := apimiddleware.NewAuthMiddleware(app.config.Auth.JWTSecret, app.logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	r.Route("/api", func(r chi.Router) {
		// Session creation is the only endpoint that works without a
		// session header.
		r.Post("/sessions", sessionHandler.CreateSession)

		r.Group(func(r chi.Router) {
			r.Use(apimiddleware.SessionMiddleware(app.manager))

			r.Get("/session", sessionHandler.GetSession)
			r.Post("/session/sign-out", sessionHandler.SignOut)
			r.Delete("/session", sessionHandler.DeleteSession)
			r.With(authMiddleware.Authenticate).Post("/session/sign-in", sessionHandler.SignIn)

			r.Route("/domains/{domain}", func(r chi.Router) {
				r.Get("/review/next", reviewHandler.GetNextItems)
				r.Get("/review/due", reviewHandler.GetDueItems)
				r.Get("/stats", reviewHandler.GetStats)
				r.Post("/reset", reviewHandler.ResetProgress)

				r.Route("/items/{itemID}", func(r chi.Router) {
					r.Get("/record", reviewHandler.GetRecord)
					r.Post("/outcome", reviewHandler.SubmitOutcome)
					r.Post("/quality", reviewHandler.SubmitQuality)
				})
			})
		})
	})

	return r
}
