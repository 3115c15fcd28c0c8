// The reminder worker consumes follow-up reminder tasks from the Redis
// queue and turns the ones still valid into notifications. It runs outside
// the API process and reads lead state straight from Postgres.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"salescrm_backend/internal/crm/repository"
	"salescrm_backend/internal/events"
	"salescrm_backend/internal/notification"
	"salescrm_backend/internal/reminders"
	"salescrm_backend/platform/config"
	"salescrm_backend/platform/db"
	"salescrm_backend/platform/logger"

	"github.com/google/uuid"
)

// repContacts adapts the representative persister to the notification
// module's lookup interface.
type repContacts struct {
	repo *repository.Reps
}

func (r *repContacts) RepContact(ctx context.Context, repID uuid.UUID) (string, string, bool) {
	rep, found, err := r.repo.GetByID(ctx, repID)
	if err != nil || !found {
		return "", "", false
	}
	return rep.Name, rep.Email, true
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}
	if cfg.RedisURL == "" {
		panic("REDIS_URL is required for the reminder worker")
	}

	log := logger.New(cfg.Env)
	log.Info("starting reminder worker", "env", cfg.Env, "queue", cfg.ReminderQueueName)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()

	eventBus := events.NewInMemoryBus(log)

	sender := notification.NewSender(cfg)
	notificationModule := notification.New(sender, &repContacts{repo: repository.NewReps(pool)}, log)
	notificationModule.RegisterHandlers(eventBus)

	worker, err := reminders.NewWorker(cfg, pool, eventBus, log)
	if err != nil {
		log.Error("failed to initialize reminder worker", "error", err)
		panic("failed to initialize reminder worker: " + err.Error())
	}

	worker.Run(ctx)
	log.Info("reminder worker stopped")
}
