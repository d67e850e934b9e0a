package transport

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs
type CreateLeadRequest struct {
	ConversationID uuid.UUID      `json:"conversationId" validate:"required"`
	ContactID      uuid.UUID      `json:"contactId" validate:"required"`
	PhoneNumberID  uuid.UUID      `json:"phoneNumberId" validate:"required"`
	Name           string         `json:"name,omitempty" validate:"max=200"`
	Email          string         `json:"email,omitempty" validate:"omitempty,email"`
	Phone          string         `json:"phone,omitempty" validate:"max=20"`
	Company        string         `json:"company,omitempty" validate:"max=200"`
	Intent         string         `json:"intent,omitempty" validate:"omitempty,oneof=inquiry demo_request pricing_inquiry product_info purchase_intent comparison integration customization support_request complaint other"`
	Notes          string         `json:"notes,omitempty" validate:"max=2000"`
	SourceMessage  string         `json:"sourceMessage,omitempty" validate:"max=4096"`
	AssignedTo     OptionalUUID   `json:"assignedTo,omitempty" validate:"-"`
	Metadata       map[string]any `json:"metadata,omitempty" validate:"-"`
}

type UpdateLeadRequest struct {
	Status          *string        `json:"status,omitempty" validate:"omitempty,oneof=new contacted qualified negotiating converted lost"`
	Name            *string        `json:"name,omitempty" validate:"omitempty,max=200"`
	Email           *string        `json:"email,omitempty" validate:"omitempty,email"`
	Phone           *string        `json:"phone,omitempty" validate:"omitempty,max=20"`
	Company         *string        `json:"company,omitempty" validate:"omitempty,max=200"`
	Notes           *string        `json:"notes,omitempty" validate:"omitempty,max=2000"`
	Tags            *[]string      `json:"tags,omitempty" validate:"omitempty,dive,min=1,max=50"`
	NextFollowUp    *time.Time     `json:"nextFollowUp,omitempty"`
	ConversionValue *float64       `json:"conversionValue,omitempty" validate:"omitempty,min=0"`
	AssignedTo      OptionalUUID   `json:"assignedTo,omitempty" validate:"-"`
	Metadata        map[string]any `json:"metadata,omitempty" validate:"-"`
}

type ListLeadsRequest struct {
	Status   *string `form:"status" validate:"omitempty,oneof=new contacted qualified negotiating converted lost stale"`
	Intent   *string `form:"intent" validate:"omitempty,oneof=inquiry demo_request pricing_inquiry product_info purchase_intent comparison integration customization support_request complaint other"`
	MinScore *int    `form:"minScore" validate:"omitempty,min=0,max=100"`
	Search   string  `form:"search" validate:"max=100"`
}

type ExportLeadsRequest struct {
	Status *string `form:"status" validate:"omitempty,oneof=new contacted qualified negotiating converted lost stale"`
	Intent *string `form:"intent" validate:"omitempty,oneof=inquiry demo_request pricing_inquiry product_info purchase_intent comparison integration customization support_request complaint other"`
}

// Response DTOs
type ScoreBreakdownResponse struct {
	Engagement int `json:"engagement"`
	Intent     int `json:"intent"`
	Recency    int `json:"recency"`
	Completion int `json:"completion"`
}

type LeadResponse struct {
	ID              uuid.UUID              `json:"id"`
	ConversationID  uuid.UUID              `json:"conversationId"`
	ContactID       uuid.UUID              `json:"contactId"`
	PhoneNumberID   uuid.UUID              `json:"phoneNumberId"`
	Name            string                 `json:"name"`
	Email           string                 `json:"email"`
	Phone           string                 `json:"phone"`
	Company         string                 `json:"company"`
	Intent          string                 `json:"intent"`
	Keywords        []string               `json:"keywords"`
	MessageCount    int                    `json:"messageCount"`
	FirstMessage    time.Time              `json:"firstMessage"`
	LastMessage     time.Time              `json:"lastMessage"`
	Score           int                    `json:"score"`
	ScoreBreakdown  ScoreBreakdownResponse `json:"scoreBreakdown"`
	Status          string                 `json:"status"`
	AssignedTo      *uuid.UUID             `json:"assignedTo,omitempty"`
	Notes           string                 `json:"notes"`
	Tags            []string               `json:"tags"`
	NextFollowUp    *time.Time             `json:"nextFollowUp,omitempty"`
	FollowUpCount   int                    `json:"followUpCount"`
	LastFollowUp    *time.Time             `json:"lastFollowUp,omitempty"`
	ConvertedAt     *time.Time             `json:"convertedAt,omitempty"`
	ConversionValue *float64               `json:"conversionValue,omitempty"`
	SourceMessage   string                 `json:"sourceMessage"`
	Metadata        map[string]any         `json:"metadata"`
	CreatedAt       time.Time              `json:"createdAt"`
	UpdatedAt       time.Time              `json:"updatedAt"`
}

type LeadDetailResponse struct {
	LeadResponse
	ContactName   *string `json:"contactName,omitempty"`
	ContactEmail  *string `json:"contactEmail,omitempty"`
	AssigneeName  *string `json:"assigneeName,omitempty"`
	AssigneeEmail *string `json:"assigneeEmail,omitempty"`
}

type StatsResponse struct {
	Total        int64 `json:"total"`
	New          int64 `json:"new"`
	Contacted    int64 `json:"contacted"`
	Qualified    int64 `json:"qualified"`
	Negotiating  int64 `json:"negotiating"`
	Converted    int64 `json:"converted"`
	Lost         int64 `json:"lost"`
	Stale        int64 `json:"stale"`
	AverageScore int   `json:"averageScore"`
}

type LeadListResponse struct {
	Leads []LeadResponse `json:"leads"`
	Stats StatsResponse  `json:"stats"`
}

// LeadEnvelope wraps single-lead bodies so clients always unpack a "lead" key.
type LeadEnvelope struct {
	Lead LeadResponse `json:"lead"`
}

type LeadDetailEnvelope struct {
	Lead LeadDetailResponse `json:"lead"`
}

type StatsEnvelope struct {
	Stats StatsResponse `json:"stats"`
}

// CaptureResponse wraps the auto-capture outcome. Lead is null when the
// conversation has no inbound messages to capture from.
type CaptureResponse struct {
	Lead *LeadResponse `json:"lead"`
}

type MarkStaleResponse struct {
	MarkedCount int64 `json:"markedCount"`
}
