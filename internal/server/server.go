// Package server exposes the backend services over HTTP under /api.
package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mmynk/tillpoint/internal/auth"
	"github.com/mmynk/tillpoint/internal/metrics"
	"github.com/mmynk/tillpoint/internal/middleware"
	"github.com/mmynk/tillpoint/internal/service"
	"github.com/mmynk/tillpoint/internal/storage"
)

// Deps are the collaborators of the router.
type Deps struct {
	Auth     *service.AuthService
	Catalog  *service.CatalogService
	Carts    *service.CartService
	Billing  *service.BillingService
	JWT      *auth.JWTManager
	Metrics  *metrics.Server
	Gatherer prometheus.Gatherer
	Logger   *slog.Logger
}

// NewDeps wires every service over store. Metrics are registered on reg.
func NewDeps(store storage.Store, jwtManager *auth.JWTManager, reg *prometheus.Registry, logger *slog.Logger) Deps {
	m := metrics.NewServer(reg)
	return Deps{
		Auth:     service.NewAuthService(auth.NewPasswordAuthenticator(store), jwtManager, store, logger),
		Catalog:  service.NewCatalogService(store, logger),
		Carts:    service.NewCartService(store, m, logger),
		Billing:  service.NewBillingService(store, m, logger),
		JWT:      jwtManager,
		Metrics:  m,
		Gatherer: reg,
		Logger:   logger,
	}
}

type handler struct {
	Deps
}

// NewRouter builds the HTTP handler of the backend.
func NewRouter(d Deps) http.Handler {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	h := &handler{Deps: d}

	r := chi.NewRouter()
	r.Use(chimw.Recoverer, middleware.Logging, corsMiddleware)
	if d.Metrics != nil {
		r.Use(middleware.Metrics(d.Metrics))
	}

	if d.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api", func(r chi.Router) {
		r.Post("/login", h.login)
		r.Get("/health", h.health)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(d.JWT))

			r.Get("/me", h.me)

			r.Get("/products", h.products)
			r.Get("/products/lookup", h.lookup)
			r.Get("/customers", h.customers)

			r.Post("/cart/sync", h.syncCart)
			r.Get("/cart/by-bill", h.cartByBill)

			r.Post("/hold", h.holdBill)
			r.Get("/hold", h.heldBills)
			r.Get("/hold/{billNo}", h.heldBill)
			r.Delete("/hold/{billNo}", h.deleteHeldBill)

			r.Post("/billno/next", h.nextBillNo)
			r.Get("/billno/check", h.checkBillNo)
			r.Post("/billno/paid", h.markBillPaid)

			r.Post("/billdtl/insert", h.insertBillDetail)
		})
	})
	return r
}

// corsMiddleware adds CORS headers for browser-based terminals.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
