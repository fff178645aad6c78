package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/meridian-retail/meridian/internal/app"
	"github.com/meridian-retail/meridian/internal/masterdata/products"
	"github.com/meridian-retail/meridian/internal/platform/db"
	"github.com/meridian-retail/meridian/internal/shared"
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
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	var mailer jobs.AlertMailer
	if addr := cfg.SMTPAddr(); addr != "" && len(cfg.AlertRecipients) > 0 {
		mailer = &jobs.SMTPMailer{Addr: addr, From: cfg.SMTPFrom, To: cfg.AlertRecipients}
	}

	productRepo := products.NewRepository(pool)
	productService := products.NewService(productRepo, products.NewCache(nil, 0))
	catalog := products.NewCatalog(productService)

	handlers := &jobs.Handlers{
		Mailer:      mailer,
		Catalog:     catalog,
		Idempotency: shared.NewIdempotencyStore(pool),
		Logger:      logger,
	}

	cleanupTask, err := jobs.NewIdempotencyCleanupTask(cfg.IdempotencyRetentionHours)
	if err != nil {
		logger.Error("build cleanup task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Handlers:  handlers,
		Cron: []jobs.CronRegistration{
			{Spec: "45 3 * * *", Task: cleanupTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
		Logger: logger,
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
