// Package reminders delivers follow-up due notifications through an
// asynq-backed task queue. The HTTP process enqueues; a dedicated worker
// binary consumes.
package reminders

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const TaskFollowUpDue = "crm.followup.due"

type FollowUpDuePayload struct {
	ClientID   string    `json:"clientId"`
	FollowUpAt time.Time `json:"followUpAt"`
}

func NewFollowUpDueTask(payload FollowUpDuePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskFollowUpDue, data), nil
}

func ParseFollowUpDuePayload(task *asynq.Task) (FollowUpDuePayload, error) {
	var payload FollowUpDuePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return FollowUpDuePayload{}, err
	}
	return payload, nil
}
