package proposal

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/proposal-backend/internal/domain/repository"
	"github.com/ignatzorin/proposal-backend/internal/formatter"
	"github.com/ignatzorin/proposal-backend/internal/metrics"
	"github.com/ignatzorin/proposal-backend/internal/pkg/apperror"
)

// EmailView письмо для предпросмотра и mailto-ссылка.
type EmailView struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
	Mailto  string `json:"mailto"`
}

// CSVExport файл выгрузки.
type CSVExport struct {
	Filename    string
	ContentType string
	Content     string
}

// RenderProposalUseCase строит представления сохранённой записи.
type RenderProposalUseCase struct {
	proposalRepo repository.ProposalRepository
	projector    *formatter.Projector
	now          Clock
}

func NewRenderProposalUseCase(proposalRepo repository.ProposalRepository, projector *formatter.Projector, now Clock) *RenderProposalUseCase {
	if now == nil {
		now = time.Now
	}
	return &RenderProposalUseCase{
		proposalRepo: proposalRepo,
		projector:    projector,
		now:          now,
	}
}

func (uc *RenderProposalUseCase) Email(ctx context.Context, id uuid.UUID) (*EmailView, error) {
	proposal, err := uc.proposalRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	metrics.Exports.WithLabelValues("email").Inc()
	return &EmailView{
		Subject: uc.projector.EmailSubject(proposal),
		Body:    uc.projector.EmailBody(proposal),
		Mailto:  uc.projector.MailtoURI(proposal),
	}, nil
}

// CSV имя файла берётся по дате выгрузки, а не по createdAt.
func (uc *RenderProposalUseCase) CSV(ctx context.Context, id uuid.UUID) (*CSVExport, error) {
	proposal, err := uc.proposalRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	metrics.Exports.WithLabelValues("csv").Inc()
	return &CSVExport{
		Filename:    uc.projector.CSVFilename(proposal, uc.now()),
		ContentType: formatter.CSVContentType,
		Content:     uc.projector.CSV(proposal),
	}, nil
}

func (uc *RenderProposalUseCase) Payload(ctx context.Context, id uuid.UUID) (*formatter.Payload, error) {
	proposal, err := uc.proposalRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	raw, err := uc.projector.PayloadJSON(proposal)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось построить payload")
	}
	if err := formatter.ValidatePayload(raw); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "payload не прошёл проверку схемы")
	}

	metrics.Exports.WithLabelValues("payload").Inc()
	payload := uc.projector.Payload(proposal)
	return &payload, nil
}
