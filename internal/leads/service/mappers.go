package service

import (
	"whatsapp_crm_backend/internal/leads/repository"
	"whatsapp_crm_backend/internal/leads/transport"
)

func ToLeadResponse(lead repository.Lead) transport.LeadResponse {
	return transport.LeadResponse{
		ID:             lead.ID,
		ConversationID: lead.ConversationID,
		ContactID:      lead.ContactID,
		PhoneNumberID:  lead.PhoneNumberID,
		Name:           lead.Name,
		Email:          lead.Email,
		Phone:          lead.Phone,
		Company:        lead.Company,
		Intent:         string(lead.Intent),
		Keywords:       emptyIfNil(lead.Keywords),
		MessageCount:   lead.MessageCount,
		FirstMessage:   lead.FirstMessage,
		LastMessage:    lead.LastMessage,
		Score:          lead.Score,
		ScoreBreakdown: transport.ScoreBreakdownResponse{
			Engagement: lead.Breakdown.Engagement,
			Intent:     lead.Breakdown.Intent,
			Recency:    lead.Breakdown.Recency,
			Completion: lead.Breakdown.Completion,
		},
		Status:          string(lead.Status),
		AssignedTo:      lead.AssignedTo,
		Notes:           lead.Notes,
		Tags:            emptyIfNil(lead.Tags),
		NextFollowUp:    lead.NextFollowUp,
		FollowUpCount:   lead.FollowUpCount,
		LastFollowUp:    lead.LastFollowUp,
		ConvertedAt:     lead.ConvertedAt,
		ConversionValue: lead.ConversionValue,
		SourceMessage:   lead.SourceMessage,
		Metadata:        emptyMapIfNil(lead.Metadata),
		CreatedAt:       lead.CreatedAt,
		UpdatedAt:       lead.UpdatedAt,
	}
}

func toLeadDetailResponse(detail repository.LeadDetail) transport.LeadDetailResponse {
	return transport.LeadDetailResponse{
		LeadResponse:  ToLeadResponse(detail.Lead),
		ContactName:   detail.ContactName,
		ContactEmail:  detail.ContactEmail,
		AssigneeName:  detail.AssigneeName,
		AssigneeEmail: detail.AssigneeEmail,
	}
}

func toStatsResponse(stats repository.Stats) transport.StatsResponse {
	return transport.StatsResponse{
		Total:        stats.Total,
		New:          stats.New,
		Contacted:    stats.Contacted,
		Qualified:    stats.Qualified,
		Negotiating:  stats.Negotiating,
		Converted:    stats.Converted,
		Lost:         stats.Lost,
		Stale:        stats.Stale,
		AverageScore: stats.AverageScore,
	}
}

func emptyIfNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}

func emptyMapIfNil(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}
