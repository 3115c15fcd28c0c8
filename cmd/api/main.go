package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"salescrm_backend/internal/crm"
	"salescrm_backend/internal/crm/service"
	"salescrm_backend/internal/events"
	apphttp "salescrm_backend/internal/http"
	"salescrm_backend/internal/http/router"
	"salescrm_backend/internal/notification"
	"salescrm_backend/internal/reminders"
	"salescrm_backend/migrations"
	"salescrm_backend/platform/config"
	"salescrm_backend/platform/db"
	"salescrm_backend/platform/logger"
	"salescrm_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg, migrations.FS)
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

	reminderClient, closeReminders := initReminderScheduler(cfg, log)
	if closeReminders != nil {
		defer closeReminders()
	}

	// Shared validator instance for dependency injection
	val := validator.New()

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	crmModule, err := crm.NewModule(ctx, pool, eventBus, val, cfg, reminderClient, log)
	if err != nil {
		log.Error("failed to initialize crm module", "error", err)
		panic("failed to initialize crm module: " + err.Error())
	}

	// All reads and optimistic writes are served from the in-process caches;
	// the warm-up must finish before the server accepts traffic.
	if err := withRetry(ctx, log, "cache warm-up", 5, 2*time.Second, func() error {
		return crmModule.Warmup(ctx)
	}); err != nil {
		log.Error("failed to warm entity caches", "error", err)
		panic("failed to warm entity caches: " + err.Error())
	}

	crmModule.Start(ctx)
	defer crmModule.Close()

	go runReconciler(ctx, crmModule, cfg.GetReconcileInterval(), log)

	// Notification module subscribes to domain events (not HTTP-facing)
	sender := notification.NewSender(cfg)
	notificationModule := notification.New(sender, crmModule.Service(), log)
	notificationModule.RegisterHandlers(eventBus)

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   db.NewPoolAdapter(pool),
		EventBus: eventBus,
		Modules: []apphttp.Module{
			crmModule,
		},
	}

	engine := router.New(app)

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

// runReconciler periodically replaces the caches with the authoritative
// remote state so dropped write-behind ops cannot diverge them forever.
func runReconciler(ctx context.Context, m *crm.Module, interval time.Duration, log *logger.Logger) {
	if interval <= 0 {
		log.Warn("reconciliation disabled", "interval", interval)
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Reconcile(ctx)
		}
	}
}

func initReminderScheduler(cfg config.RedisConfig, log *logger.Logger) (service.ReminderScheduler, func()) {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; follow-up reminders disabled")
		return nil, nil
	}

	reminderClient, err := reminders.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize reminder scheduler client", "error", err)
		return nil, nil
	}

	return reminderClient, func() {
		_ = reminderClient.Close()
	}
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
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
