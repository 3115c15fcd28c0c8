package reminders

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

type testRedisConfig struct{ url string }

func (c testRedisConfig) GetRedisURL() string          { return c.url }
func (c testRedisConfig) GetReminderQueueName() string { return "reminders" }

func TestRunAt(t *testing.T) {
	baghdad := time.FixedZone("AST", 3*60*60)

	tests := []struct {
		name string
		at   time.Time
		want time.Time
	}{
		{
			name: "midnight fires at the reminder hour",
			at:   time.Date(2024, time.June, 10, 0, 0, 0, 0, time.UTC),
			want: time.Date(2024, time.June, 10, reminderHour, 0, 0, 0, time.UTC),
		},
		{
			name: "midnight keeps its location",
			at:   time.Date(2024, time.June, 10, 0, 0, 0, 0, baghdad),
			want: time.Date(2024, time.June, 10, reminderHour, 0, 0, 0, baghdad),
		},
		{
			name: "explicit time is kept",
			at:   time.Date(2024, time.June, 10, 14, 30, 0, 0, time.UTC),
			want: time.Date(2024, time.June, 10, 14, 30, 0, 0, time.UTC),
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := runAt(tc.at); !got.Equal(tc.want) {
				t.Errorf("runAt(%v) = %v, want %v", tc.at, got, tc.want)
			}
		})
	}
}

func TestScheduleFollowUpEnqueuesAtReminderHour(t *testing.T) {
	mr := miniredis.RunT(t)

	c, err := NewClient(testRedisConfig{url: "redis://" + mr.Addr()})
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	clientID := uuid.New()
	followUpAt := time.Date(2030, time.June, 10, 0, 0, 0, 0, time.UTC)
	if err := c.ScheduleFollowUp(context.Background(), clientID, followUpAt); err != nil {
		t.Fatalf("ScheduleFollowUp returned error: %v", err)
	}

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: mr.Addr()})
	defer inspector.Close()

	tasks, err := inspector.ListScheduledTasks("reminders")
	if err != nil {
		t.Fatal(err)
	}
	if len(tasks) != 1 {
		t.Fatalf("scheduled %d tasks, want 1", len(tasks))
	}
	if tasks[0].Type != TaskFollowUpDue {
		t.Errorf("task type = %q, want %q", tasks[0].Type, TaskFollowUpDue)
	}
	if want := runAt(followUpAt); tasks[0].NextProcessAt.Unix() != want.Unix() {
		t.Errorf("fires at %v, want %v", tasks[0].NextProcessAt, want)
	}

	var payload FollowUpDuePayload
	if err := json.Unmarshal(tasks[0].Payload, &payload); err != nil {
		t.Fatal(err)
	}
	if payload.ClientID != clientID.String() || !payload.FollowUpAt.Equal(followUpAt) {
		t.Errorf("payload = %+v", payload)
	}
}
