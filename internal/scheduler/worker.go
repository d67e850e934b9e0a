package scheduler

import (
	"context"
	"fmt"

	leadsservice "whatsapp_crm_backend/internal/leads/service"
	"whatsapp_crm_backend/platform/config"
	"whatsapp_crm_backend/platform/logger"

	"github.com/hibiken/asynq"
)

// MessageSender delivers a follow-up nudge. *whatsapp.Client satisfies it;
// a nil sender drops reminders on the floor.
type MessageSender interface {
	SendMessage(ctx context.Context, phoneNumber string, message string) error
}

type Worker struct {
	server    *asynq.Server
	scheduler *asynq.Scheduler
	mux       *asynq.ServeMux
	leads     *leadsservice.Service
	sender    MessageSender
	log       *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, leads *leadsservice.Service, sender MessageSender, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	periodic := asynq.NewScheduler(opt, nil)
	cron := cfg.GetStaleSweepCron()
	if cron == "" {
		cron = "@daily"
	}
	if _, err := periodic.Register(cron, NewMarkStaleTask(), asynq.Queue(queue)); err != nil {
		return nil, err
	}

	mux := asynq.NewServeMux()
	w := &Worker{
		server:    server,
		scheduler: periodic,
		mux:       mux,
		leads:     leads,
		sender:    sender,
		log:       log,
	}

	mux.HandleFunc(TaskMarkStale, w.handleMarkStale)
	mux.HandleFunc(TaskFollowUpReminder, w.handleFollowUpReminder)

	return w, nil
}

func (w *Worker) handleMarkStale(ctx context.Context, _ *asynq.Task) error {
	marked, err := w.leads.SweepAllAccounts(ctx)
	if err != nil {
		return err
	}
	w.log.Info("stale sweep completed", "marked", marked)
	return nil
}

func (w *Worker) handleFollowUpReminder(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseFollowUpReminderPayload(task)
	if err != nil {
		return err
	}
	if w.sender == nil || payload.Phone == "" {
		return nil
	}

	message := fmt.Sprintf("Hi %s, just checking in. Is there anything we can help you with?", payload.LeadName)
	if payload.LeadName == "" {
		message = "Hi, just checking in. Is there anything we can help you with?"
	}
	return w.sender.SendMessage(ctx, payload.Phone, message)
}

// Run serves tasks and the periodic schedule until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.scheduler.Shutdown()
		w.server.Shutdown()
	}()

	go func() {
		if err := w.scheduler.Run(); err != nil {
			w.log.Error("periodic scheduler stopped", "error", err)
		}
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}
