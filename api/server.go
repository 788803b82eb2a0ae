/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the chi router, middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. RealIP:     Client IP behind proxies (feeds the rate limiter)
  3. Logger:     Request logging
  4. Recoverer:  Panic recovery (500 instead of crash)
  5. httprate:   Per-IP request rate limiting
  6. CORS:       Cross-origin requests for the admin panel

SECURITY NOTE:
  No authentication middleware. Auth is owned by the surrounding
  system; this service sits behind it.
*/
package api

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
)

// RouterOptions tunes the middleware stack.
type RouterOptions struct {
	CORSOrigins        []string
	RateLimitPerMinute int
}

// NewRouter creates a router with all routes configured.
func NewRouter(h *Handler, opts RouterOptions) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	if opts.RateLimitPerMinute > 0 {
		r.Use(httprate.LimitByIP(opts.RateLimitPerMinute, time.Minute))
	}
	if len(opts.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   opts.CORSOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			AllowCredentials: true,
		}))
	}

	r.Route("/api", func(r chi.Router) {
		r.Route("/residents", func(r chi.Router) {
			r.Get("/", h.ListResidents)
			r.Post("/", h.CreateResident)
			r.Get("/{id}", h.GetResident)
			r.Get("/{id}/financial-summary", h.GetFinancialSummary)
			r.Get("/{id}/payments", h.ListPayments)
			r.Post("/{id}/payments", h.ApplyPayment)
			r.Post("/{id}/registration", h.RecordRegistration)
			r.Post("/{id}/checkout", h.Checkout)
		})

		r.Route("/checkout-rules", func(r chi.Router) {
			r.Get("/", h.ListCheckoutRules)
			r.Post("/", h.SaveCheckoutRule)
		})
	})

	return r
}
