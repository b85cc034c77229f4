package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimid "github.com/go-chi/chi/v5/middleware"

	"github.com/iqueue/staffing/internal/api/handlers"
	mw "github.com/iqueue/staffing/internal/api/middleware"
)

type Dependencies struct {
	HMACSecret     []byte
	RateLimitRPS   float64
	RateLimitBurst int
	AuthHandler    *handlers.AuthHandler
	ShiftsHandler  *handlers.ShiftsHandler
	UsersHandler   *handlers.UsersHandler
	AdminHandler   *handlers.AdminHandler
	HealthHandler  *handlers.HealthHandler
}

func NewRouter(dep Dependencies) http.Handler {
	r := chi.NewRouter()

	// Built-in middleware
	r.Use(mw.RequestID)
	r.Use(mw.Recovery)
	r.Use(mw.Logging)
	r.Use(mw.CORS)
	if dep.RateLimitRPS > 0 {
		r.Use(mw.RateLimit(dep.RateLimitRPS, dep.RateLimitBurst))
	}
	r.Use(chimid.Compress(5))

	// Health endpoints
	hh := dep.HealthHandler
	if hh == nil {
		hh = handlers.NewHealthHandler(nil)
	}
	r.Get("/healthz", hh.Liveness)
	r.Get("/readyz", hh.Readiness)

	r.Route("/api/v1", func(api chi.Router) {
		// Auth routes (public)
		api.Route("/auth", func(ar chi.Router) {
			ar.Post("/register", dep.AuthHandler.Register)
			ar.Post("/login", dep.AuthHandler.Login)
		})

		// Protected routes
		api.Group(func(protected chi.Router) {
			protected.Use(mw.Auth(dep.HMACSecret))

			protected.Route("/shifts", func(sr chi.Router) {
				sr.Get("/open", dep.ShiftsHandler.Open)
				sr.Get("/pending", dep.ShiftsHandler.Pending)
				sr.Post("/", dep.ShiftsHandler.Create)
				sr.Route("/{id}", func(one chi.Router) {
					one.Get("/", dep.ShiftsHandler.Get)
					one.Put("/", dep.ShiftsHandler.Update)
					one.Get("/events", dep.ShiftsHandler.Events)
					one.Post("/request", dep.ShiftsHandler.Request)
					one.Post("/approve", dep.ShiftsHandler.Approve)
					one.Post("/deny", dep.ShiftsHandler.Deny)
					one.Post("/remove", dep.ShiftsHandler.Remove)
				})
			})

			protected.Get("/staff", dep.UsersHandler.Roster)

			protected.Route("/users", func(ur chi.Router) {
				ur.Post("/", dep.UsersHandler.Create)
				ur.Get("/{id}", dep.UsersHandler.Get)
				ur.Put("/{id}", dep.UsersHandler.Update)
				ur.Get("/{id}/shifts", dep.UsersHandler.History)
				ur.Post("/{id}/shifts", dep.UsersHandler.Assign)
			})

			protected.Route("/import", func(ir chi.Router) {
				ir.Post("/users", dep.AdminHandler.ImportUsers)
				ir.Post("/shifts", dep.AdminHandler.ImportShifts)
			})

			protected.Post("/admin/reconcile", dep.AdminHandler.Reconcile)
		})
	})

	return r
}
