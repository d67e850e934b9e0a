package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

// TaskMarkStale is the periodic sweep transitioning inactive leads to stale.
const TaskMarkStale = "leads.mark_stale"

// TaskFollowUpReminder nudges an assignee when a lead's follow-up comes due.
const TaskFollowUpReminder = "leads.follow_up_reminder"

type FollowUpReminderPayload struct {
	LeadID    string `json:"leadId"`
	AccountID string `json:"accountId"`
	Phone     string `json:"phone"`
	LeadName  string `json:"leadName"`
}

func NewMarkStaleTask() *asynq.Task {
	return asynq.NewTask(TaskMarkStale, nil)
}

func NewFollowUpReminderTask(payload FollowUpReminderPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskFollowUpReminder, data), nil
}

func ParseFollowUpReminderPayload(task *asynq.Task) (FollowUpReminderPayload, error) {
	var payload FollowUpReminderPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return FollowUpReminderPayload{}, err
	}
	return payload, nil
}
