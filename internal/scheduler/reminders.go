package scheduler

import (
	"context"
	"time"

	leadsservice "whatsapp_crm_backend/internal/leads/service"

	"github.com/google/uuid"
)

// LeadReminders adapts the asynq client to the leads service's reminder port.
type LeadReminders struct {
	client *Client
}

func NewLeadReminders(client *Client) *LeadReminders {
	return &LeadReminders{client: client}
}

func (l *LeadReminders) ScheduleFollowUp(ctx context.Context, leadID, accountID uuid.UUID, phone, name string, runAt time.Time) error {
	return l.client.ScheduleFollowUpReminder(ctx, FollowUpReminderPayload{
		LeadID:    leadID.String(),
		AccountID: accountID.String(),
		Phone:     phone,
		LeadName:  name,
	}, runAt)
}

var _ leadsservice.ReminderScheduler = (*LeadReminders)(nil)
