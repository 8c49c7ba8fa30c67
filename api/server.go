/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

ROUTER: chi
  Chi was chosen for:
  - Lightweight and fast
  - Context-based
  - Middleware support
  - RESTful route patterns

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for frontend

ROUTE GROUPS:
  /api/auth/*          Login/logout (public)
  /api/punch           Badge-number punch terminal (public)
  /api/employees/*     Employee, contract management (token required)
  /api/contracts/*     Amendment management (token required)
  /api/pay-periods/*   Pay periods, variables, exports (token required)
  /api/planning/*      Shifts, day locks, week status (token required)
  /api/time-records    Raw clock records (token required)

AUTH BOUNDARY:
  The punch endpoint is deliberately outside the token wall: the terminal
  on the shop floor identifies employees by badge number only. Everything
  that reads or edits HR data requires a session token.

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

	r.Route("/api", func(r chi.Router) {
		// Public routes
		r.Post("/auth/login", h.Login)
		r.Post("/auth/logout", h.Logout)
		r.Post("/punch", h.Punch)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(h.Auth.RequireAuth)

			r.Route("/employees", func(r chi.Router) {
				r.Get("/", h.ListEmployees)
				r.Post("/", h.CreateEmployee)
				r.Get("/{id}", h.GetEmployee)
				r.Delete("/{id}", h.DeleteEmployee)
				r.Post("/{id}/contracts", h.CreateContract)
				r.Get("/{id}/contract", h.GetPrimaryContract)
			})

			r.Route("/contracts", func(r chi.Router) {
				r.Post("/{id}/amendments", h.CreateAmendment)
				r.Get("/{id}/amendments", h.ListAmendments)
			})
			r.Delete("/amendments/{id}", h.DeleteAmendment)

			r.Route("/pay-periods", func(r chi.Router) {
				r.Get("/", h.ListPayPeriods)
				r.Post("/", h.CreatePayPeriod)
				r.Get("/{id}", h.GetPayPeriod)
				r.Delete("/{id}", h.DeletePayPeriod)
				r.Get("/{id}/variables", h.GetPayVariables)
				r.Get("/{id}/export", h.ExportPayVariables)
			})

			r.Route("/planning", func(r chi.Router) {
				r.Get("/shifts", h.ListShifts)
				r.Post("/days/{date}", h.SaveDay)
				r.Post("/days/{date}/lock", h.LockDay)
				r.Get("/weeks-status", h.WeeksStatus)
			})

			r.Get("/time-records", h.ListTimeRecords)
		})
	})

	return r
}
