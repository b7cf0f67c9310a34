/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for frontend

ROUTE GROUPS:
  /api/leaveslip/*   Employee leave slips
  /api/vacation/*    Whole-day vacations
  /api/manage/*      Manager approval queue
  /api/dashboard/*   Employee dashboard metrics
  /api/worklog       Work session logging
  /api/user/*        Directory records
  /api/reports/*     Monthly CSV reports

SECURITY NOTE:
  No authentication middleware. All endpoints are public; auth is handled
  upstream.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, allowedOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		// Leave slip routes
		r.Route("/leaveslip", func(r chi.Router) {
			r.Get("/{employeeID}", h.GetLeaveData)
			r.Post("/{employeeID}", h.CreateLeave)
			r.Put("/{employeeID}/{id}", h.UpdateLeave)
			r.Delete("/{employeeID}/{id}", h.DeleteLeave)
		})

		// Vacation routes
		r.Route("/vacation", func(r chi.Router) {
			r.Get("/{employeeID}", h.ListVacations)
			r.Post("/{employeeID}", h.CreateVacation)
			r.Get("/{employeeID}/next", h.NextVacation)
			r.Delete("/{id}", h.DeleteVacation)
		})

		// Manager approval queue routes
		r.Route("/manage", func(r chi.Router) {
			r.Get("/queue", h.GetQueue)
			r.Get("/email/{employeeID}", h.GetEmployeeEmail)
			r.Route("/leaves/{id}", func(r chi.Router) {
				r.Post("/accept", h.AcceptLeave)
				r.Post("/reject", h.RejectLeave)
				r.Post("/undo", h.UndoLeave)
			})
			r.Route("/vacations/{id}", func(r chi.Router) {
				r.Post("/accept", h.AcceptVacation)
				r.Post("/reject", h.RejectVacation)
				r.Post("/undo", h.UndoVacation)
			})
		})

		// Dashboard / worklog / user routes
		r.Get("/dashboard/{employeeID}", h.GetDashboard)
		r.Post("/worklog", h.SaveSession)
		r.Get("/user/{id}", h.GetUser)
		r.Put("/user/{id}", h.SaveUser)

		// Report routes
		r.Route("/reports/{employeeID}/{year}/{month}", func(r chi.Router) {
			r.Get("/", h.DownloadReport)
			r.Post("/email", h.EmailReport)
		})
	})

	return r
}
