package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/proposal-backend/internal/pkg/apperror"
	"github.com/ignatzorin/proposal-backend/internal/validation"
)

// Имена полей в том виде, в каком их видит форма.
const (
	FieldClientName   = "clientName"
	FieldClientEmail  = "clientEmail"
	FieldScopeOfWork  = "scopeOfWork"
	FieldPriceRange   = "priceRange"
	FieldJobDuration  = "jobDuration"
	FieldMeetingNotes = "meetingNotes"
)

// ProposalFields канонические значения полей после нормализации.
type ProposalFields struct {
	ClientName   string
	ClientEmail  string
	ScopeOfWork  string
	PriceRange   string
	JobDuration  string
	MeetingNotes string
}

// Proposal зафиксированная запись. После создания не изменяется:
// правка формы порождает новую запись через NewProposal.
type Proposal struct {
	id        uuid.UUID
	fields    ProposalFields
	createdAt time.Time
}

// CommitRules управляет обязательностью email.
type CommitRules struct {
	RequireClientEmail bool
}

// NewProposal проверяет нормализованные поля и фиксирует запись.
// Сначала проверяется полнота, затем форма email.
func NewProposal(id uuid.UUID, f ProposalFields, rules CommitRules, now time.Time) (*Proposal, error) {
	var missing []string
	if validation.IsBlank(f.ClientName) {
		missing = append(missing, FieldClientName)
	}
	if rules.RequireClientEmail && validation.IsBlank(f.ClientEmail) {
		missing = append(missing, FieldClientEmail)
	}
	if validation.IsBlank(f.ScopeOfWork) {
		missing = append(missing, FieldScopeOfWork)
	}
	if validation.IsBlank(f.PriceRange) {
		missing = append(missing, FieldPriceRange)
	}
	if validation.IsBlank(f.JobDuration) {
		missing = append(missing, FieldJobDuration)
	}
	if len(missing) > 0 {
		return nil, apperror.MissingFields(missing...)
	}

	if f.ClientEmail != "" {
		if err := validation.ValidateEmail(f.ClientEmail); err != nil {
			return nil, apperror.Wrap(err, apperror.ErrCodeInvalidEmail, "некорректный email клиента")
		}
	}

	if err := validateLengths(f); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}

	if id == uuid.Nil {
		id = uuid.New()
	}

	return &Proposal{
		id:        id,
		fields:    f,
		createdAt: now,
	}, nil
}

// RestoreProposal восстанавливает запись из хранилища без повторной проверки.
func RestoreProposal(id uuid.UUID, f ProposalFields, createdAt time.Time) *Proposal {
	return &Proposal{id: id, fields: f, createdAt: createdAt}
}

func validateLengths(f ProposalFields) error {
	if err := validation.ValidateLength(FieldClientName, f.ClientName, 0, validation.MaxClientNameLength); err != nil {
		return err
	}
	if err := validation.ValidateLength(FieldScopeOfWork, f.ScopeOfWork, 0, validation.MaxScopeOfWorkLength); err != nil {
		return err
	}
	return validation.ValidateLength(FieldMeetingNotes, f.MeetingNotes, 0, validation.MaxNotesLength)
}

func (p *Proposal) ID() uuid.UUID { return p.id }
func (p *Proposal) ClientName() string { return p.fields.ClientName }
func (p *Proposal) ClientEmail() string { return p.fields.ClientEmail }
func (p *Proposal) ScopeOfWork() string { return p.fields.ScopeOfWork }
func (p *Proposal) PriceRange() string { return p.fields.PriceRange }
func (p *Proposal) JobDuration() string { return p.fields.JobDuration }
func (p *Proposal) MeetingNotes() string { return p.fields.MeetingNotes }
func (p *Proposal) CreatedAt() time.Time { return p.createdAt }
func (p *Proposal) Fields() ProposalFields { return p.fields }
func (p *Proposal) HasClientEmail() bool { return p.fields.ClientEmail != "" }
func (p *Proposal) HasMeetingNotes() bool { return p.fields.MeetingNotes != "" }
