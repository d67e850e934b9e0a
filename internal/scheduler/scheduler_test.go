package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/hibiken/asynq"
)

type testSchedulerConfig struct {
	redisURL string
}

func (c testSchedulerConfig) GetRedisURL() string       { return c.redisURL }
func (c testSchedulerConfig) GetRedisTLSInsecure() bool { return false }
func (c testSchedulerConfig) GetAsynqQueueName() string { return "crm-test" }
func (c testSchedulerConfig) GetAsynqConcurrency() int  { return 1 }
func (c testSchedulerConfig) GetStaleSweepCron() string { return "@daily" }

func TestFollowUpReminderPayloadRoundTrip(t *testing.T) {
	payload := FollowUpReminderPayload{
		LeadID:    "7ec8bd43-21ea-4004-b0a3-3e1e15cd03f2",
		AccountID: "a6f6d716-77f1-4c6c-8e8e-0e6fb25fdc8a",
		Phone:     "+31612345678",
		LeadName:  "Ada Vries",
	}

	task, err := NewFollowUpReminderTask(payload)
	if err != nil {
		t.Fatalf("NewFollowUpReminderTask: %v", err)
	}
	if task.Type() != TaskFollowUpReminder {
		t.Fatalf("unexpected task type %q", task.Type())
	}

	parsed, err := ParseFollowUpReminderPayload(task)
	if err != nil {
		t.Fatalf("ParseFollowUpReminderPayload: %v", err)
	}
	if parsed != payload {
		t.Fatalf("payload did not survive the round trip: %+v", parsed)
	}
}

func TestParseFollowUpReminderPayloadRejectsGarbage(t *testing.T) {
	task := asynq.NewTask(TaskFollowUpReminder, []byte("{not json"))
	if _, err := ParseFollowUpReminderPayload(task); err == nil {
		t.Fatal("expected error for malformed payload")
	}
}

func TestClientRequiresRedisURL(t *testing.T) {
	if _, err := NewClient(testSchedulerConfig{}); err == nil {
		t.Fatal("expected error without a redis url")
	}
}

func TestScheduleFollowUpReminderEnqueues(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := NewClient(testSchedulerConfig{redisURL: "redis://" + mr.Addr()})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	defer client.Close()

	runAt := time.Now().Add(24 * time.Hour)
	err = client.ScheduleFollowUpReminder(context.Background(), FollowUpReminderPayload{
		LeadID: "lead-1", Phone: "+31612345678", LeadName: "Ada Vries",
	}, runAt)
	if err != nil {
		t.Fatalf("ScheduleFollowUpReminder: %v", err)
	}

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: mr.Addr()})
	defer inspector.Close()

	scheduled, err := inspector.ListScheduledTasks("crm-test")
	if err != nil {
		t.Fatalf("ListScheduledTasks: %v", err)
	}
	if len(scheduled) != 1 {
		t.Fatalf("expected 1 scheduled task, got %d", len(scheduled))
	}
	if scheduled[0].Type != TaskFollowUpReminder {
		t.Fatalf("unexpected task type %q", scheduled[0].Type)
	}
}
