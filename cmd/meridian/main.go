package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/meridian-retail/meridian/internal/app"
	"github.com/meridian-retail/meridian/internal/inventory"
	"github.com/meridian-retail/meridian/internal/masterdata/categories"
	"github.com/meridian-retail/meridian/internal/masterdata/companies"
	"github.com/meridian-retail/meridian/internal/masterdata/customers"
	"github.com/meridian-retail/meridian/internal/masterdata/products"
	"github.com/meridian-retail/meridian/internal/masterdata/suppliers"
	"github.com/meridian-retail/meridian/internal/observability"
	"github.com/meridian-retail/meridian/internal/payments"
	"github.com/meridian-retail/meridian/internal/platform/cache"
	"github.com/meridian-retail/meridian/internal/platform/db"
	"github.com/meridian-retail/meridian/internal/purchasing"
	"github.com/meridian-retail/meridian/internal/sales"
	"github.com/meridian-retail/meridian/internal/shared"
	"github.com/meridian-retail/meridian/internal/users"
	"github.com/meridian-retail/meridian/jobs"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN, 0)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, product cache disabled", slog.Any("error", err))
		redisClient = nil
	}
	defer func() {
		if redisClient == nil {
			return
		}
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	metrics := observability.NewMetrics()
	auditLogger := shared.NewAuditLogger(pool)
	idempotencyStore := shared.NewIdempotencyStore(pool)

	queueClient := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := queueClient.Close(); err != nil {
			logger.Warn("queue client close", slog.Any("error", err))
		}
	}()

	monitor := inventory.NewReorderMonitor(queueClient, logger, metrics)

	productRepo := products.NewRepository(pool)
	productCache := products.NewCache(redisClient, cfg.ProductCacheTTL)
	productService := products.NewService(productRepo, productCache)
	catalog := products.NewCatalog(productService)

	inventoryRepo := inventory.NewRepository(pool)
	inventoryService := inventory.NewService(inventoryRepo, monitor, auditLogger, metrics, catalog, logger)

	salesRepo := sales.NewRepository(pool)
	salesService := sales.NewService(salesRepo, monitor, auditLogger, logger)

	paymentsService := payments.NewService(payments.NewRepository(pool))

	purchasingRepo := purchasing.NewRepository(pool)
	purchasingService := purchasing.NewService(purchasingRepo, monitor, auditLogger, idempotencyStore, logger)

	usersService := users.NewService(users.NewRepository(pool))

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()

	router := app.NewRouter(app.RouterParams{
		Logger:            logger,
		Config:            cfg,
		InventoryHandler:  inventory.NewHandler(logger, inventoryService),
		SalesHandler:      sales.NewHandler(logger, salesService),
		PaymentsHandler:   payments.NewHandler(logger, paymentsService),
		PurchasingHandler: purchasing.NewHandler(logger, purchasingService),
		ProductsHandler:   products.NewHandler(logger, productService),
		CategoriesHandler: categories.NewHandler(logger, categories.NewService(categories.NewRepository(pool))),
		SuppliersHandler:  suppliers.NewHandler(logger, suppliers.NewService(suppliers.NewRepository(pool))),
		CustomersHandler:  customers.NewHandler(logger, customers.NewService(customers.NewRepository(pool))),
		CompaniesHandler:  companies.NewHandler(logger, companies.NewService(companies.NewRepository(pool))),
		UsersHandler:      users.NewHandler(logger, usersService),
		JobHandler:        jobs.NewHandler(inspector, logger),
		Metrics:           metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
