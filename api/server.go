/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route
  definitions. This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:        Request logging
  2. Recoverer:     Panic recovery (500 instead of crash)
  3. RequestID:     Unique ID per request for tracing
  4. CORS:          Cross-origin requests for the frontend
  5. Authenticator: Bearer token + principal resolution (all /api routes)

SEE ALSO:
  - handlers.go: Handler implementations
  - auth.go: Token middleware
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// API routes; everything requires a valid bearer token.
	r.Route("/api", func(r chi.Router) {
		r.Use(h.Authenticator)

		r.Get("/session", h.GetSession)
		r.Post("/actions", h.Dispatch)

		r.Route("/holidays", func(r chi.Router) {
			r.Post("/", h.SubmitHoliday)
			r.Get("/mine", h.MyHolidays)
			r.Get("/pending", h.PendingHolidays)
			r.Get("/team", h.TeamHolidays)
			r.Post("/{id}/decision", h.DecideHoliday)
			r.Post("/{id}/cancel", h.CancelHoliday)
		})

		r.Route("/availability", func(r chi.Router) {
			r.Post("/", h.SubmitAvailability)
			r.Get("/mine", h.MyAvailability)
			r.Post("/{id}/cancel", h.CancelAvailability)
		})

		r.Route("/shifts", func(r chi.Router) {
			r.Get("/available", h.AvailableShifts)
			r.Get("/mine", h.MyShifts)
			r.Post("/", h.CreateShift)
			r.Post("/{id}/accept", h.AcceptShift)
			r.Post("/{id}/complete", h.CompleteShift)
			r.Post("/{id}/cancel", h.CancelShift)
		})

		r.Route("/invoices", func(r chi.Router) {
			r.Get("/mine", h.MyInvoices)
			r.Get("/pending", h.PendingInvoices)
			r.Get("/{id}/items", h.InvoiceItems)
			r.Post("/", h.CreateInvoice)
			r.Post("/{id}/submit", h.SubmitInvoice)
			r.Post("/{id}/decision", h.DecideInvoice)
			r.Post("/{id}/paid", h.PayInvoice)
			r.Delete("/{id}", h.DeleteInvoice)
		})

		r.Route("/users", func(r chi.Router) {
			r.Delete("/{id}", h.DeleteUser)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Post("/reconcile", h.Reconcile)
		})
	})

	return r
}
