package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/proposal-backend/internal/domain/entity"
	"github.com/ignatzorin/proposal-backend/internal/domain/valueobject"
	"github.com/ignatzorin/proposal-backend/internal/usecase/proposal"
)

// ProposalDraftRequest состояние формы. Цена и срок принимаются в любой из двух форм.
type ProposalDraftRequest struct {
	ClientName       string `json:"clientName"`
	ClientEmail      string `json:"clientEmail"`
	ScopeOfWork      string `json:"scopeOfWork"`
	LowPrice         string `json:"lowPrice"`
	HighPrice        string `json:"highPrice"`
	PriceRange       string `json:"priceRange"`
	JobDurationValue string `json:"jobDurationValue"`
	JobDurationUnit  string `json:"jobDurationUnit"`
	JobDuration      string `json:"jobDuration"`
	MeetingNotes     string `json:"meetingNotes"`
}

func (r ProposalDraftRequest) ToDraft() entity.ProposalDraft {
	return entity.ProposalDraft{
		ClientName:       r.ClientName,
		ClientEmail:      r.ClientEmail,
		ScopeOfWork:      r.ScopeOfWork,
		LowPrice:         r.LowPrice,
		HighPrice:        r.HighPrice,
		PriceRange:       r.PriceRange,
		JobDurationValue: r.JobDurationValue,
		JobDurationUnit:  r.JobDurationUnit,
		JobDuration:      r.JobDuration,
		MeetingNotes:     r.MeetingNotes,
	}
}

type SendProposalRequest struct {
	WebhookURL string `json:"webhookUrl"`
}

type WebhookPreferenceRequest struct {
	WebhookURL string `json:"webhookUrl"`
}

type FieldsResponse struct {
	ClientName   string `json:"clientName"`
	ClientEmail  string `json:"clientEmail"`
	ScopeOfWork  string `json:"scopeOfWork"`
	PriceRange   string `json:"priceRange"`
	JobDuration  string `json:"jobDuration"`
	MeetingNotes string `json:"meetingNotes"`
}

type ProposalResponse struct {
	ID uuid.UUID `json:"id"`
	FieldsResponse
	CreatedAt time.Time `json:"createdAt"`
}

type SendProposalResponse struct {
	Outcome        valueobject.DeliveryStatus `json:"outcome,omitempty"`
	Reason         string                     `json:"reason,omitempty"`
	WebhookURL     string                     `json:"webhookUrl"`
	SpreadsheetURL string                     `json:"spreadsheetUrl,omitempty"`
}

func ToFieldsResponse(f entity.ProposalFields) FieldsResponse {
	return FieldsResponse{
		ClientName:   f.ClientName,
		ClientEmail:  f.ClientEmail,
		ScopeOfWork:  f.ScopeOfWork,
		PriceRange:   f.PriceRange,
		JobDuration:  f.JobDuration,
		MeetingNotes: f.MeetingNotes,
	}
}

func ToProposalResponse(p *entity.Proposal) ProposalResponse {
	return ProposalResponse{
		ID:             p.ID(),
		FieldsResponse: ToFieldsResponse(p.Fields()),
		CreatedAt:      p.CreatedAt(),
	}
}

func ToProposalResponses(proposals []*entity.Proposal) []ProposalResponse {
	responses := make([]ProposalResponse, 0, len(proposals))
	for _, p := range proposals {
		responses = append(responses, ToProposalResponse(p))
	}
	return responses
}

func ToSendProposalResponse(r *proposal.SendResult) SendProposalResponse {
	return SendProposalResponse{
		Outcome:        r.Outcome.Status,
		Reason:         r.Outcome.Reason,
		WebhookURL:     r.WebhookURL,
		SpreadsheetURL: r.SpreadsheetURL,
	}
}
