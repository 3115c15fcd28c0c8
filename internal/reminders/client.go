package reminders

import (
	"context"
	"time"

	"salescrm_backend/platform/config"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

// reminderHour is the local hour of day at which date-only follow-ups fire.
const reminderHour = 9

// Client enqueues follow-up reminder tasks. It implements the service
// layer's ReminderScheduler interface.
type Client struct {
	client *asynq.Client
	queue  string
}

func NewClient(cfg config.RedisConfig) (*Client, error) {
	opt, err := redisClientOpt(cfg.GetRedisURL())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetReminderQueueName()
	if queue == "" {
		queue = "default"
	}

	return &Client{
		client: asynq.NewClient(opt),
		queue:  queue,
	}, nil
}

func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// ScheduleFollowUp enqueues a reminder to fire on the follow-up date.
// Rescheduling a lead simply enqueues another task; the worker drops tasks
// whose date no longer matches the lead's current follow-up.
func (c *Client) ScheduleFollowUp(ctx context.Context, clientID uuid.UUID, at time.Time) error {
	if c == nil || c.client == nil {
		return nil
	}

	task, err := NewFollowUpDueTask(FollowUpDuePayload{
		ClientID:   clientID.String(),
		FollowUpAt: at,
	})
	if err != nil {
		return err
	}

	_, err = c.client.EnqueueContext(ctx, task, asynq.ProcessAt(runAt(at)), asynq.Queue(c.queue))
	return err
}

// runAt resolves the fire time for a follow-up date. Midnight timestamps are
// treated as date-only and fire at the reminder hour.
func runAt(at time.Time) time.Time {
	if at.Hour() == 0 && at.Minute() == 0 && at.Second() == 0 {
		return time.Date(at.Year(), at.Month(), at.Day(), reminderHour, 0, 0, 0, at.Location())
	}
	return at
}

func redisClientOpt(redisURL string) (asynq.RedisClientOpt, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return asynq.RedisClientOpt{}, err
	}

	return asynq.RedisClientOpt{
		Addr:      opt.Addr,
		Password:  opt.Password,
		DB:        opt.DB,
		TLSConfig: opt.TLSConfig,
	}, nil
}
