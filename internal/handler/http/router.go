package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
	"github.com/mind-links/contractor-backend-go/internal/handler/http/middleware"
	"github.com/mind-links/contractor-backend-go/internal/pkg/jwt"
	"github.com/mind-links/contractor-backend-go/internal/pkg/logger"
)

func NewRouter(
	log *slog.Logger,
	allowedOrigins []string,
	JWTService jwt.Service,
	metricsHandler http.Handler,
	wizardHandler WizardHandler,
	invitationHandler InvitationHandler,
	eventsHandler EventsHandler,
) *chi.Mux {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(log, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: logger.Schema,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Method(http.MethodGet, "/metrics", metricsHandler)

	r.Route("/api/v1", func(r chi.Router) {
		// SSE authenticates with its own short-lived token
		r.Get("/events", eventsHandler.Stream)

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired(JWTService.JWTAuth()))
			r.Use(middleware.RequireCompany)

			r.Post("/events/token", eventsHandler.GetSSEToken)

			r.Route("/wizards", func(r chi.Router) {
				r.Post("/", wizardHandler.Open)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", wizardHandler.Get)
					r.Patch("/", wizardHandler.Update)
					r.Post("/advance", wizardHandler.Advance)
					r.Post("/retreat", wizardHandler.Retreat)
					r.Post("/complete", wizardHandler.Complete)
					r.Post("/close", wizardHandler.Close)
				})
			})

			r.Route("/invitations", func(r chi.Router) {
				r.Get("/", invitationHandler.List)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", invitationHandler.GetByID)
					r.Post("/revoke", invitationHandler.Revoke)
				})
			})
		})
	})
	return r
}
