package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/meridian-retail/meridian/internal/inventory"
	"github.com/meridian-retail/meridian/internal/masterdata/categories"
	"github.com/meridian-retail/meridian/internal/masterdata/companies"
	"github.com/meridian-retail/meridian/internal/masterdata/customers"
	"github.com/meridian-retail/meridian/internal/masterdata/products"
	"github.com/meridian-retail/meridian/internal/masterdata/suppliers"
	"github.com/meridian-retail/meridian/internal/observability"
	"github.com/meridian-retail/meridian/internal/payments"
	"github.com/meridian-retail/meridian/internal/purchasing"
	"github.com/meridian-retail/meridian/internal/sales"
	"github.com/meridian-retail/meridian/internal/users"
	"github.com/meridian-retail/meridian/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger            *slog.Logger
	Config            *Config
	InventoryHandler  *inventory.Handler
	SalesHandler      *sales.Handler
	PaymentsHandler   *payments.Handler
	PurchasingHandler *purchasing.Handler
	ProductsHandler   *products.Handler
	CategoriesHandler *categories.Handler
	SuppliersHandler  *suppliers.Handler
	CustomersHandler  *customers.Handler
	CompaniesHandler  *companies.Handler
	UsersHandler      *users.Handler
	JobHandler        *jobs.Handler
	Metrics           *observability.Metrics
}

// NewRouter constructs the chi.Router with Meridian defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/inventory", params.InventoryHandler.MountRoutes)
		r.Route("/sales", params.SalesHandler.MountRoutes)
		r.Route("/payments", params.PaymentsHandler.MountRoutes)
		r.Route("/purchase-orders", params.PurchasingHandler.MountRoutes)
		r.Route("/products", params.ProductsHandler.MountRoutes)
		r.Route("/categories", params.CategoriesHandler.MountRoutes)
		r.Route("/suppliers", params.SuppliersHandler.MountRoutes)
		r.Route("/customers", params.CustomersHandler.MountRoutes)
		r.Route("/companies", params.CompaniesHandler.MountRoutes)
		r.Route("/users", params.UsersHandler.MountRoutes)
	})

	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
