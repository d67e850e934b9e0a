package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"whatsapp_crm_backend/internal/contacts"
	"whatsapp_crm_backend/internal/conversations"
	"whatsapp_crm_backend/internal/events"
	apphttp "whatsapp_crm_backend/internal/http"
	"whatsapp_crm_backend/internal/leads"
	"whatsapp_crm_backend/internal/scheduler"
	"whatsapp_crm_backend/internal/webhook"
	"whatsapp_crm_backend/migrations"
	"whatsapp_crm_backend/platform/config"
	"whatsapp_crm_backend/platform/db"
	"whatsapp_crm_backend/platform/logger"
	"whatsapp_crm_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg, migrations.FS, ".")
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)

	// Shared validator instance for dependency injection
	val := validator.New()

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	contactsModule := contacts.NewModule(pool, val)
	conversationsModule := conversations.NewModule(pool)

	leadsModule := leads.NewModule(pool, eventBus, val, log,
		conversationsModule.ConversationReader(),
		contactsModule.ContactReader(),
		conversationsModule.MessageReader(),
	)

	// Follow-up reminders go through asynq; without Redis the reminder
	// enqueue is disabled and follow-up dates are merely stored.
	if cfg.RedisURL != "" {
		schedulerClient, err := scheduler.NewClient(cfg)
		if err != nil {
			log.Error("failed to initialize scheduler client", "error", err)
			panic("failed to initialize scheduler client: " + err.Error())
		}
		defer func() { _ = schedulerClient.Close() }()
		leadsModule.Service().SetReminderScheduler(scheduler.NewLeadReminders(schedulerClient))
	} else {
		log.Warn("REDIS_URL not configured; follow-up reminders disabled")
	}

	webhookModule := webhook.NewModule(pool,
		contactsModule.Repository(), conversationsModule.Repository(),
		eventBus, log, cfg)

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   pool,
		EventBus: eventBus,
		Modules: []apphttp.Module{
			contactsModule,
			conversationsModule,
			leadsModule,
			webhookModule,
		},
	}

	engine := apphttp.NewRouter(app)

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- engine.Run(cfg.HTTPAddr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
	case err := <-srvErr:
		if err != nil {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return errors.New(name + ": invalid retry attempts")
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
