/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the chi router, middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:      Request logging
  2. Recoverer:   Panic recovery (500 instead of crash)
  3. RequestID:   Unique ID per request for tracing
  4. CORS:        Cross-origin requests for the admin frontend
  5. TenantScope: Company resolution (tenant routes only)

ROUTE GROUPS:
  /api/reports/*     Aggregation and tip reports (tenant-scoped)
  /api/employees/*   Employee management (tenant-scoped)
  /api/clock/*       Kiosk clock-in/out (tenant-scoped)
  /api/sales|costs   Record entry (tenant-scoped)
  /api/admin/*       Super-admin company provisioning (no tenant scope)

SEE ALSO:
  - handlers.go: Handler implementations
  - middleware.go: TenantScope
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
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Company-ID"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		// Super-admin routes run outside the tenant scope.
		r.Route("/admin", func(r chi.Router) {
			r.Post("/companies", h.CreateCompany)
			r.Get("/companies", h.ListCompanies)
		})

		// Everything else requires a company scope.
		r.Group(func(r chi.Router) {
			r.Use(TenantScope)

			r.Route("/reports", func(r chi.Router) {
				r.Get("/sales/weekly", h.WeeklySales)
				r.Get("/sales/yesterday", h.YesterdaySales)
				r.Get("/costs/weekly", h.WeeklyCosts)
				r.Get("/tips", h.TipReport)
			})

			r.Route("/employees", func(r chi.Router) {
				r.Get("/", h.ListEmployees)
				r.Post("/", h.CreateEmployee)
				r.Get("/{id}", h.GetEmployee)
				r.Get("/{id}/timesheet", h.GetTimesheet)
				r.Post("/{id}/schedules", h.CreateSchedule)
			})

			r.Route("/clock", func(r chi.Router) {
				r.Post("/in", h.ClockIn)
				r.Post("/out", h.ClockOut)
			})

			r.Post("/sales", h.AddSale)
			r.Post("/costs", h.AddCost)
			r.Put("/tips/pool", h.SetTipPool)
		})
	})

	return r
}
