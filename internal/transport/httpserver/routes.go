package httpserver

import (
	"net/http"
	"time"

	"partner-portal/internal/config"
	"partner-portal/internal/transport/httpserver/handler"
	portalmw "partner-portal/internal/transport/httpserver/middleware"
	"partner-portal/pkg/logger"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

func NewRouter(cfg config.Config, handlers *handler.Handlers, log logger.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(portalmw.RequestLogger(log))
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(portalmw.NewCORS(cfg.CORSOrigins))

	// Set before Route so the admin subrouter inherits them.
	r.NotFound(handlers.NotFound)
	r.MethodNotAllowed(handlers.MethodNotAllowed)

	r.Get("/health", handlers.Health)
	r.Get("/partners/{id}", handlers.GetPartner)
	r.Post("/requests", handlers.CreateRequest)

	admin := portalmw.NewAdminAuth(cfg.AdminSecret, log)
	r.Route("/admin", func(r chi.Router) {
		r.Use(admin.Middleware)

		r.Get("/partners", handlers.ListPartners)
		r.Post("/partners", handlers.CreatePartner)
		r.Get("/partners/{id}", handlers.GetPartner)
		r.Put("/partners/{id}", handlers.UpdatePartner)
		r.Delete("/partners/{id}", handlers.DeletePartner)

		r.Get("/requests", handlers.ListRequests)
		r.Post("/requests", handlers.CreateRequest)
		r.Get("/requests/{id}", handlers.GetRequest)
		r.Put("/requests/{id}", handlers.UpdateRequest)
		r.Delete("/requests/{id}", handlers.DeleteRequest)
	})

	return r
}
