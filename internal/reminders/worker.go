package reminders

import (
	"context"

	"salescrm_backend/internal/crm/domain"
	"salescrm_backend/internal/crm/repository"
	"salescrm_backend/internal/events"
	"salescrm_backend/platform/config"
	"salescrm_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
)

// LeadLookup reads the current lead record so a reminder can be checked for
// staleness before it fires.
type LeadLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (domain.Client, bool, error)
}

// Worker consumes follow-up reminder tasks. It reads lead state from the
// authoritative store, not the entity cache, because it runs in a separate
// process from the API server.
type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	leads  LeadLookup
	bus    events.Bus
	log    *logger.Logger
}

func NewWorker(cfg config.RedisConfig, pool *pgxpool.Pool, bus events.Bus, log *logger.Logger) (*Worker, error) {
	opt, err := redisClientOpt(cfg.GetRedisURL())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetReminderQueueName()
	if queue == "" {
		queue = "default"
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: 10,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server: server,
		mux:    mux,
		leads:  repository.NewClients(pool),
		bus:    bus,
		log:    log,
	}

	mux.HandleFunc(TaskFollowUpDue, w.handleFollowUpDue)

	return w, nil
}

// handleFollowUpDue fires the due event unless the reminder has gone stale.
// A reminder is stale when the lead no longer exists, its follow-up was
// cleared, or it was rescheduled to a different time after this task was
// enqueued.
func (w *Worker) handleFollowUpDue(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseFollowUpDuePayload(task)
	if err != nil {
		return err
	}

	clientID, err := uuid.Parse(payload.ClientID)
	if err != nil {
		return err
	}

	client, found, err := w.leads.GetByID(ctx, clientID)
	if err != nil {
		return err
	}
	if !found || client.FollowUpAt == nil {
		return nil
	}
	if !client.FollowUpAt.Equal(payload.FollowUpAt) {
		return nil
	}

	if w.bus == nil {
		return nil
	}

	w.bus.Publish(ctx, events.FollowUpDue{
		BaseEvent:  events.NewBaseEvent(),
		ClientID:   client.ID,
		ClientName: client.Name,
		FollowUpAt: *client.FollowUpAt,
		Note:       client.FollowUpNote,
		AssignedTo: client.AssignedTo,
	})

	return nil
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("reminder worker stopped", "error", err)
	}
}
