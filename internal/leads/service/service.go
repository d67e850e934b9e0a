// Package service implements the lead pipeline workflows on top of the
// repository: CRUD, status transitions, scoring, the stale sweep, and CSV
// export projections.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"whatsapp_crm_backend/internal/events"
	"whatsapp_crm_backend/internal/leads/domain"
	"whatsapp_crm_backend/internal/leads/repository"
	"whatsapp_crm_backend/internal/leads/transport"
	"whatsapp_crm_backend/platform/apperr"
	"whatsapp_crm_backend/platform/logger"
	"whatsapp_crm_backend/platform/phone"
	"whatsapp_crm_backend/platform/sanitize"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// staleSweepBatchSize bounds the rows one sweep UPDATE may lock.
const staleSweepBatchSize = 1000

// ReminderScheduler enqueues a follow-up nudge for future delivery.
// The scheduler module provides the implementation; without one, follow-up
// dates are stored but nothing fires when they arrive.
type ReminderScheduler interface {
	ScheduleFollowUp(ctx context.Context, leadID, accountID uuid.UUID, phone, name string, runAt time.Time) error
}

type Service struct {
	repo       *repository.Repository
	bus        events.Bus
	log        *logger.Logger
	classifier *domain.Classifier
	reminders  ReminderScheduler
	now        func() time.Time
}

func New(repo *repository.Repository, bus events.Bus, log *logger.Logger) *Service {
	return &Service{
		repo:       repo,
		bus:        bus,
		log:        log,
		classifier: domain.NewDefaultClassifier(),
		now:        time.Now,
	}
}

// SetReminderScheduler wires follow-up reminder delivery. Optional.
func (s *Service) SetReminderScheduler(r ReminderScheduler) {
	s.reminders = r
}

// List returns the tenant's leads matching the filter together with the
// tenant-wide pipeline stats.
func (s *Service) List(ctx context.Context, accountID uuid.UUID, req transport.ListLeadsRequest) (transport.LeadListResponse, error) {
	filter := repository.ListFilter{
		MinScore: req.MinScore,
		Search:   req.Search,
	}
	if req.Status != nil {
		status := domain.Status(*req.Status)
		filter.Status = &status
	}
	if req.Intent != nil {
		intent := domain.Intent(*req.Intent)
		filter.Intent = &intent
	}

	leads, err := s.repo.List(ctx, accountID, filter)
	if err != nil {
		return transport.LeadListResponse{}, err
	}

	stats, err := s.repo.GetStats(ctx, accountID)
	if err != nil {
		return transport.LeadListResponse{}, err
	}

	items := make([]transport.LeadResponse, len(leads))
	for i, lead := range leads {
		items[i] = ToLeadResponse(lead)
	}

	return transport.LeadListResponse{
		Leads: items,
		Stats: toStatsResponse(stats),
	}, nil
}

func (s *Service) Stats(ctx context.Context, accountID uuid.UUID) (transport.StatsResponse, error) {
	stats, err := s.repo.GetStats(ctx, accountID)
	if err != nil {
		return transport.StatsResponse{}, err
	}
	return toStatsResponse(stats), nil
}

func (s *Service) GetDetail(ctx context.Context, id, accountID uuid.UUID) (transport.LeadDetailResponse, error) {
	detail, err := s.repo.GetDetail(ctx, id, accountID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return transport.LeadDetailResponse{}, apperr.NotFound("lead not found")
		}
		return transport.LeadDetailResponse{}, err
	}
	return toLeadDetailResponse(detail), nil
}

// Create inserts a manually created lead. The explicit intent wins when the
// caller provides one; otherwise the source message is classified.
func (s *Service) Create(ctx context.Context, accountID uuid.UUID, req transport.CreateLeadRequest) (transport.LeadResponse, error) {
	now := s.now()

	intent := domain.DefaultIntent
	intentLocked := false
	if req.Intent != "" {
		intent = domain.Intent(req.Intent)
		intentLocked = true
	} else if req.SourceMessage != "" {
		intent = s.classifier.DetectIntent(req.SourceMessage)
		intentLocked = intent != domain.DefaultIntent
	}

	params := repository.CreateLeadParams{
		AccountID:      accountID,
		ConversationID: req.ConversationID,
		ContactID:      req.ContactID,
		PhoneNumberID:  req.PhoneNumberID,
		Name:           req.Name,
		Email:          req.Email,
		Phone:          phone.NormalizeE164(req.Phone),
		Company:        req.Company,
		Intent:         intent,
		IntentLocked:   intentLocked,
		Keywords:       s.classifier.ExtractKeywords(req.SourceMessage),
		Notes:          sanitize.Text(req.Notes),
		SourceMessage:  req.SourceMessage,
		Metadata:       req.Metadata,
		Now:            now,
	}

	score, breakdown := domain.CalculateScore(domain.ScoreSnapshot{
		MessageCount: 1,
		Intent:       intent,
		LastMessage:  now,
		Name:         params.Name,
		Email:        params.Email,
		Phone:        params.Phone,
		Company:      params.Company,
	}, now)
	params.Score = score
	params.Breakdown = breakdown

	lead, err := s.repo.Create(ctx, params)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return transport.LeadResponse{}, apperr.Conflict("a lead already exists for this conversation and contact")
		}
		return transport.LeadResponse{}, err
	}

	if req.AssignedTo.Set && req.AssignedTo.Value != nil {
		return s.assign(ctx, lead, req.AssignedTo.Value)
	}

	s.bus.Publish(ctx, events.LeadCaptured{
		BaseEvent: events.NewBaseEvent(),
		AccountID: accountID,
		LeadID:    lead.ID,
		Intent:    string(lead.Intent),
		Score:     lead.Score,
		Created:   true,
	})

	return ToLeadResponse(lead), nil
}

func (s *Service) assign(ctx context.Context, lead repository.Lead, assignee *uuid.UUID) (transport.LeadResponse, error) {
	updated, err := s.repo.Update(ctx, lead.ID, lead.AccountID, repository.UpdateParams{
		Name:            lead.Name,
		Email:           lead.Email,
		Phone:           lead.Phone,
		Company:         lead.Company,
		Status:          lead.Status,
		AssignedTo:      assignee,
		Notes:           lead.Notes,
		Tags:            lead.Tags,
		NextFollowUp:    lead.NextFollowUp,
		FollowUpCount:   lead.FollowUpCount,
		LastFollowUp:    lead.LastFollowUp,
		ConvertedAt:     lead.ConvertedAt,
		ConversionValue: lead.ConversionValue,
		Metadata:        lead.Metadata,
		Score:           lead.Score,
		Breakdown:       lead.Breakdown,
	})
	if err != nil {
		return transport.LeadResponse{}, err
	}
	return ToLeadResponse(updated), nil
}

// Update applies a partial update, re-runs the score engine against the
// resulting field values, and persists everything in one statement.
func (s *Service) Update(ctx context.Context, id, accountID uuid.UUID, req transport.UpdateLeadRequest) (transport.LeadResponse, error) {
	current, err := s.repo.GetByID(ctx, id, accountID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return transport.LeadResponse{}, apperr.NotFound("lead not found")
		}
		return transport.LeadResponse{}, err
	}

	params, statusChanged, err := applyUpdate(current, req, s.now())
	if err != nil {
		return transport.LeadResponse{}, err
	}

	lead, err := s.repo.Update(ctx, id, accountID, params)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return transport.LeadResponse{}, apperr.NotFound("lead not found")
		}
		return transport.LeadResponse{}, err
	}

	if req.NextFollowUp != nil && s.reminders != nil && req.NextFollowUp.After(s.now()) {
		err := s.reminders.ScheduleFollowUp(ctx, lead.ID, accountID, lead.Phone, lead.Name, *req.NextFollowUp)
		if err != nil {
			// The follow-up date is stored either way; only the nudge is lost.
			s.log.WithAccount(accountID).Error("schedule follow-up reminder failed",
				"error", err, "leadId", lead.ID)
		}
	}

	if statusChanged {
		s.bus.Publish(ctx, events.LeadStatusChanged{
			BaseEvent: events.NewBaseEvent(),
			AccountID: accountID,
			LeadID:    lead.ID,
			From:      string(current.Status),
			To:        string(lead.Status),
		})
		if lead.Status == domain.StatusConverted {
			s.bus.Publish(ctx, events.LeadConverted{
				BaseEvent:       events.NewBaseEvent(),
				AccountID:       accountID,
				LeadID:          lead.ID,
				ConversionValue: lead.ConversionValue,
			})
		}
	}

	return ToLeadResponse(lead), nil
}

// applyUpdate merges the request into the current lead and returns the full
// persistence parameter set. Status transitions trigger their tracking side
// effects and every change re-scores the lead against the merged state.
func applyUpdate(current repository.Lead, req transport.UpdateLeadRequest, now time.Time) (repository.UpdateParams, bool, error) {
	params := repository.UpdateParams{
		Status:          current.Status,
		AssignedTo:      current.AssignedTo,
		Notes:           current.Notes,
		Tags:            current.Tags,
		NextFollowUp:    current.NextFollowUp,
		FollowUpCount:   current.FollowUpCount,
		LastFollowUp:    current.LastFollowUp,
		ConvertedAt:     current.ConvertedAt,
		ConversionValue: current.ConversionValue,
		Metadata:        current.Metadata,
	}

	statusChanged := false
	if req.Status != nil {
		next := domain.Status(*req.Status)
		if !domain.CanClientSet(next) {
			return repository.UpdateParams{}, false, apperr.Validation(fmt.Sprintf("status %q cannot be set directly", next))
		}

		effects := domain.EffectsOf(current.Status, next)
		if effects.IncrementFollowUp {
			params.FollowUpCount = current.FollowUpCount + 1
			params.LastFollowUp = &now
		}
		if effects.StampConverted && current.ConvertedAt == nil {
			params.ConvertedAt = &now
		}

		statusChanged = next != current.Status
		params.Status = next
	}

	if req.Notes != nil {
		params.Notes = sanitize.Text(*req.Notes)
	}
	if req.Tags != nil {
		params.Tags = *req.Tags
	}
	if req.NextFollowUp != nil {
		params.NextFollowUp = req.NextFollowUp
	}
	if req.ConversionValue != nil {
		params.ConversionValue = req.ConversionValue
	}
	if req.Metadata != nil {
		params.Metadata = req.Metadata
	}
	if req.AssignedTo.Set {
		params.AssignedTo = req.AssignedTo.Value
	}

	snapshot := current.Snapshot()
	if req.Name != nil {
		snapshot.Name = *req.Name
	}
	if req.Email != nil {
		snapshot.Email = *req.Email
	}
	if req.Phone != nil {
		snapshot.Phone = phone.NormalizeE164(*req.Phone)
	}
	if req.Company != nil {
		snapshot.Company = *req.Company
	}
	params.Name = snapshot.Name
	params.Email = snapshot.Email
	params.Phone = snapshot.Phone
	params.Company = snapshot.Company
	params.Score, params.Breakdown = domain.CalculateScore(snapshot, now)

	return params, statusChanged, nil
}

func (s *Service) Delete(ctx context.Context, id, accountID uuid.UUID) error {
	err := s.repo.Delete(ctx, id, accountID)
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound("lead not found")
	}
	return err
}

// MarkStale sweeps one tenant's inactive early-pipeline leads in bounded
// batches and returns how many were transitioned.
func (s *Service) MarkStale(ctx context.Context, accountID uuid.UUID) (int64, error) {
	cutoff := s.now().AddDate(0, 0, -domain.StaleAfterDays)

	var marked int64
	batches := 0
	for {
		n, err := s.repo.MarkStaleBatch(ctx, accountID, cutoff, staleSweepBatchSize)
		if err != nil {
			return marked, err
		}
		marked += n
		batches++
		if n < staleSweepBatchSize {
			break
		}
	}

	s.log.WithAccount(accountID).SweepResult(marked, batches)
	return marked, nil
}

// SweepAllAccounts runs the stale sweep for every tenant that has sweep
// candidates. Used by the scheduler; the HTTP endpoint sweeps only the
// caller's tenant.
func (s *Service) SweepAllAccounts(ctx context.Context) (int64, error) {
	cutoff := s.now().AddDate(0, 0, -domain.StaleAfterDays)

	accounts, err := s.repo.ListAccountsWithSweepableLeads(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	// Tenants are independent, so sweep a few in parallel. Each sweep is
	// itself batched, keeping row locks short-lived.
	var total atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, accountID := range accounts {
		g.Go(func() error {
			marked, err := s.MarkStale(gctx, accountID)
			total.Add(marked)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return total.Load(), err
	}
	return total.Load(), nil
}

// Export returns the tenant's leads projected for CSV export.
func (s *Service) Export(ctx context.Context, accountID uuid.UUID, req transport.ExportLeadsRequest) ([]repository.ExportRow, error) {
	var status *domain.Status
	if req.Status != nil {
		v := domain.Status(*req.Status)
		status = &v
	}
	var intent *domain.Intent
	if req.Intent != nil {
		v := domain.Intent(*req.Intent)
		intent = &v
	}
	return s.repo.ListExportRows(ctx, accountID, status, intent)
}
