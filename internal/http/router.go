package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/ulule/limiter/v3"

	"github.com/sh44ni/telalalbedaya-sub000/internal/http/auth"
	"github.com/sh44ni/telalalbedaya-sub000/internal/http/customer"
	"github.com/sh44ni/telalalbedaya-sub000/internal/http/dashboard"
	"github.com/sh44ni/telalalbedaya-sub000/internal/http/export"
	"github.com/sh44ni/telalalbedaya-sub000/internal/http/importcsv"
	"github.com/sh44ni/telalalbedaya-sub000/internal/http/matching"
	"github.com/sh44ni/telalalbedaya-sub000/internal/http/project"
	"github.com/sh44ni/telalalbedaya-sub000/internal/http/property"
	"github.com/sh44ni/telalalbedaya-sub000/internal/http/ratelimit"
	"github.com/sh44ni/telalalbedaya-sub000/internal/http/rental"
	"github.com/sh44ni/telalalbedaya-sub000/internal/http/respond"
	"github.com/sh44ni/telalalbedaya-sub000/internal/http/transaction"
)

type Handlers struct {
	Transactions *transaction.Handler
	Dashboard    *dashboard.Handler
	Projects     *project.Handler
	Properties   *property.Handler
	Customers    *customer.Handler
	Rentals      *rental.Handler
	Import       *importcsv.Handler
	Matching     *matching.Handler
	Export       *export.Handler
}

type Options struct {
	JWTSecret      string
	AllowedOrigins []string
	Limiter        *limiter.Limiter // nil disables rate limiting
}

func New(h Handlers, opts Options) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		respond.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	router.Route("/api/v1", func(r chi.Router) {
		if opts.Limiter != nil {
			r.Use(ratelimit.Middleware(opts.Limiter))
		}

		r.Use(auth.Middleware(opts.JWTSecret))

		r.Route("/transactions", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			h.Transactions.Routes(r)
		})

		r.Route("/dashboard", h.Dashboard.Routes)

		for path, routes := range map[string]func(chi.Router){
			"/projects":   h.Projects.Routes,
			"/properties": h.Properties.Routes,
			"/customers":  h.Customers.Routes,
			"/rentals":    h.Rentals.Routes,
		} {
			r.Route(path, func(r chi.Router) {
				r.Use(middleware.AllowContentType("application/json"))
				routes(r)
			})
		}

		r.Route("/import", h.Import.Routes)

		r.Route("/matching", func(r chi.Router) {
			h.Matching.Routes(r)
		})

		r.Route("/export", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			h.Export.Routes(r)
		})
	})

	return router
}
