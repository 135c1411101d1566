package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/memberguard/internal/api"
	apiMiddleware "github.com/phrazzld/memberguard/internal/api/middleware"
)

// setupRouter creates and configures the application router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(apiMiddleware.NewTraceMiddleware(app.logger))
	r.Use(middleware.Recoverer)

	membershipHandler := api.NewMembershipHandler(app.membershipService, app.logger)
	oauthHandler := api.NewOAuthHandler(
		app.membershipService,
		app.jwtService,
		app.consent,
		app.config.Discord.DashboardURL,
		app.logger,
	)
	queueHandler := api.NewQueueHandler(app.ocrQueue, app.reconcileQueue)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)

	r.Route("/api", func(r chi.Router) {
		// Google redirects here, so it cannot carry a bearer token
		r.Get("/oauth/youtube/callback", oauthHandler.Callback)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Get("/oauth/youtube/url", oauthHandler.AuthURL)
			r.Delete("/oauth/youtube", oauthHandler.Unlink)

			r.Get("/memberships", membershipHandler.ListMemberships)
			r.Post("/verifications/oauth", membershipHandler.VerifyOAuth)
			r.Post("/verifications/screenshot", membershipHandler.VerifyScreenshot)
			r.Get("/channels", membershipHandler.ListChannels)
			r.Get("/queues", queueHandler.ListQueues)
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, err := w.Write([]byte("OK"))
		if err != nil {
			app.logger.Error("Failed to write health check response", "error", err)
		}
	})

	return r
}
