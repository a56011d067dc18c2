package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/daap14/eventpass/internal/api/handler"
	"github.com/daap14/eventpass/internal/api/middleware"
	"github.com/daap14/eventpass/internal/session"
)

// RouterDeps holds all dependencies needed by the router.
type RouterDeps struct {
	Store       handler.Pinger
	StoreDriver string
	Version     string
	OpenAPISpec []byte

	Registrations handler.RegistrationService
	Entries       handler.EntryService
	Analytics     handler.AnalyticsReporter
	Exporter      handler.Exporter
	ExportPass    string
	Sessions      *session.Manager

	AllowedOrigins []string
	LoginLimiter   *middleware.RateLimiter
	ExportLimiter  *middleware.RateLimiter
}

// NewRouter creates and configures a Chi router with all middleware and routes.
func NewRouter(deps RouterDeps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery)
	r.Use(chimiddleware.Logger)
	if len(deps.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   deps.AllowedOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders:   []string{"Accept", "Content-Type", middleware.RequestIDHeader},
			ExposedHeaders:   []string{middleware.RequestIDHeader, "Content-Disposition"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	healthHandler := handler.NewHealthHandler(deps.Store, deps.StoreDriver, deps.Version)
	r.Get("/health", healthHandler.ServeHTTP)

	if len(deps.OpenAPISpec) > 0 {
		openapiHandler := handler.NewOpenAPIHandler(deps.OpenAPISpec)
		r.Get("/openapi.json", openapiHandler.ServeHTTP)
	}

	regHandler := handler.NewRegistrationHandler(deps.Registrations)
	r.Post("/registrations", regHandler.Create)
	r.Route("/passes", func(r chi.Router) {
		r.Get("/", regHandler.GetPass)
		r.Get("/{passId}/qr.png", regHandler.QRCode)
	})

	exportHandler := handler.NewExportHandler(deps.Exporter, deps.ExportPass)
	r.With(limit(deps.ExportLimiter)...).Get("/api/details", exportHandler.Download)

	adminHandler := handler.NewAdminHandler(deps.Sessions)
	entryHandler := handler.NewEntryHandler(deps.Entries)
	analyticsHandler := handler.NewAnalyticsHandler(deps.Analytics)

	r.Route("/admin", func(r chi.Router) {
		r.With(limit(deps.LoginLimiter)...).Post("/login", adminHandler.Login)
		r.Post("/logout", adminHandler.Logout)
		r.Get("/session", adminHandler.Session)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin(deps.Sessions))

			r.Get("/entries/search", entryHandler.Search)
			r.Post("/entries/{passId}/mark", entryHandler.Mark)
			r.Post("/entries/{passId}/undo", entryHandler.Undo)
			r.Post("/entries/{passId}/bulk", entryHandler.Bulk)
			r.Get("/analytics", analyticsHandler.ServeHTTP)
			r.Post("/export/sheets", exportHandler.MirrorSheets)
		})
	})

	return r
}

func limit(rl *middleware.RateLimiter) []func(http.Handler) http.Handler {
	if rl == nil {
		return nil
	}
	return []func(http.Handler) http.Handler{rl.Handler}
}
