package service

import (
	"testing"
	"time"

	"whatsapp_crm_backend/internal/leads/domain"
	"whatsapp_crm_backend/internal/leads/repository"
	"whatsapp_crm_backend/internal/leads/transport"
	"whatsapp_crm_backend/platform/apperr"

	"github.com/google/uuid"
)

var updateNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func baseLead() repository.Lead {
	return repository.Lead{
		ID:           uuid.New(),
		AccountID:    uuid.New(),
		Name:         "Ada Vries",
		Phone:        "+31612345678",
		Intent:       domain.IntentPricingInquiry,
		MessageCount: 4,
		LastMessage:  updateNow.Add(-2 * time.Hour),
		Status:       domain.StatusNew,
		Notes:        "asked about plans",
	}
}

func strPtr(s string) *string { return &s }

func TestApplyUpdateRejectsStaleStatus(t *testing.T) {
	_, _, err := applyUpdate(baseLead(), transport.UpdateLeadRequest{Status: strPtr("stale")}, updateNow)
	if err == nil {
		t.Fatal("expected error for client-set stale status")
	}
	if apperr.GetKind(err) != apperr.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestApplyUpdateContactedIncrementsFollowUp(t *testing.T) {
	current := baseLead()
	current.FollowUpCount = 2

	params, changed, err := applyUpdate(current, transport.UpdateLeadRequest{Status: strPtr("contacted")}, updateNow)
	if err != nil {
		t.Fatalf("applyUpdate: %v", err)
	}
	if !changed {
		t.Fatal("expected status change")
	}
	if params.FollowUpCount != 3 {
		t.Fatalf("expected follow-up count 3, got %d", params.FollowUpCount)
	}
	if params.LastFollowUp == nil || !params.LastFollowUp.Equal(updateNow) {
		t.Fatalf("expected last follow-up stamped at %v, got %v", updateNow, params.LastFollowUp)
	}
}

func TestApplyUpdateConvertedStampsOnce(t *testing.T) {
	current := baseLead()
	current.Status = domain.StatusNegotiating

	params, _, err := applyUpdate(current, transport.UpdateLeadRequest{Status: strPtr("converted")}, updateNow)
	if err != nil {
		t.Fatalf("applyUpdate: %v", err)
	}
	if params.ConvertedAt == nil || !params.ConvertedAt.Equal(updateNow) {
		t.Fatalf("expected converted_at stamped at %v, got %v", updateNow, params.ConvertedAt)
	}

	// A lead converted before keeps its original timestamp.
	earlier := updateNow.Add(-72 * time.Hour)
	current.ConvertedAt = &earlier
	params, _, err = applyUpdate(current, transport.UpdateLeadRequest{Status: strPtr("converted")}, updateNow)
	if err != nil {
		t.Fatalf("applyUpdate: %v", err)
	}
	if params.ConvertedAt == nil || !params.ConvertedAt.Equal(earlier) {
		t.Fatalf("expected original converted_at %v, got %v", earlier, params.ConvertedAt)
	}
}

func TestApplyUpdateSameStatusIsNotATransition(t *testing.T) {
	current := baseLead()
	current.Status = domain.StatusContacted
	current.FollowUpCount = 1

	params, changed, err := applyUpdate(current, transport.UpdateLeadRequest{Status: strPtr("contacted")}, updateNow)
	if err != nil {
		t.Fatalf("applyUpdate: %v", err)
	}
	if changed {
		t.Fatal("re-asserting the current status should not count as a change")
	}
	if params.FollowUpCount != 1 {
		t.Fatalf("expected follow-up count unchanged at 1, got %d", params.FollowUpCount)
	}
}

func TestApplyUpdateClearsAssignee(t *testing.T) {
	current := baseLead()
	assignee := uuid.New()
	current.AssignedTo = &assignee

	req := transport.UpdateLeadRequest{AssignedTo: transport.OptionalUUID{Set: true, Value: nil}}
	params, _, err := applyUpdate(current, req, updateNow)
	if err != nil {
		t.Fatalf("applyUpdate: %v", err)
	}
	if params.AssignedTo != nil {
		t.Fatalf("expected assignee cleared, got %v", params.AssignedTo)
	}

	// An absent field leaves the assignee alone.
	params, _, err = applyUpdate(current, transport.UpdateLeadRequest{}, updateNow)
	if err != nil {
		t.Fatalf("applyUpdate: %v", err)
	}
	if params.AssignedTo == nil || *params.AssignedTo != assignee {
		t.Fatalf("expected assignee preserved, got %v", params.AssignedTo)
	}
}

func TestApplyUpdateRescoresMergedFields(t *testing.T) {
	current := baseLead()

	before, _, err := applyUpdate(current, transport.UpdateLeadRequest{}, updateNow)
	if err != nil {
		t.Fatalf("applyUpdate: %v", err)
	}

	after, _, err := applyUpdate(current, transport.UpdateLeadRequest{
		Email:   strPtr("ada@example.com"),
		Company: strPtr("Vries BV"),
	}, updateNow)
	if err != nil {
		t.Fatalf("applyUpdate: %v", err)
	}

	if after.Score <= before.Score {
		t.Fatalf("filling profile fields should raise the score: before %d, after %d", before.Score, after.Score)
	}
	if after.Breakdown.Completion != 10 {
		t.Fatalf("expected full completion score 10, got %d", after.Breakdown.Completion)
	}
	if after.Email != "ada@example.com" || after.Company != "Vries BV" {
		t.Fatalf("merged profile fields must persist: got email %q, company %q", after.Email, after.Company)
	}
}

func TestApplyUpdateReplacesMetadata(t *testing.T) {
	current := baseLead()
	current.Metadata = map[string]any{"campaign": "spring"}

	kept, _, err := applyUpdate(current, transport.UpdateLeadRequest{}, updateNow)
	if err != nil {
		t.Fatalf("applyUpdate: %v", err)
	}
	if kept.Metadata["campaign"] != "spring" {
		t.Fatalf("absent metadata must keep the current map, got %v", kept.Metadata)
	}

	replaced, _, err := applyUpdate(current, transport.UpdateLeadRequest{
		Metadata: map[string]any{"campaign": "summer"},
	}, updateNow)
	if err != nil {
		t.Fatalf("applyUpdate: %v", err)
	}
	if replaced.Metadata["campaign"] != "summer" {
		t.Fatalf("provided metadata must replace the current map, got %v", replaced.Metadata)
	}
}
