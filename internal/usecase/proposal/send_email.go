package proposal

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/proposal-backend/internal/domain/repository"
	"github.com/ignatzorin/proposal-backend/internal/formatter"
	"github.com/ignatzorin/proposal-backend/internal/logger"
	"github.com/ignatzorin/proposal-backend/internal/mailer"
	"github.com/ignatzorin/proposal-backend/internal/metrics"
	"github.com/ignatzorin/proposal-backend/internal/pkg/apperror"
)

// MailSender отправка готового письма.
type MailSender interface {
	Send(ctx context.Context, msg mailer.Message) (string, error)
}

type SendEmailResult struct {
	MessageID string `json:"messageId"`
	To        string `json:"to"`
}

// SendEmailUseCase отправляет письмо-предложение клиенту.
// При mail == nil отправка отключена.
type SendEmailUseCase struct {
	proposalRepo repository.ProposalRepository
	projector    *formatter.Projector
	mail         MailSender
}

func NewSendEmailUseCase(proposalRepo repository.ProposalRepository, projector *formatter.Projector, mail MailSender) *SendEmailUseCase {
	return &SendEmailUseCase{
		proposalRepo: proposalRepo,
		projector:    projector,
		mail:         mail,
	}
}

func (uc *SendEmailUseCase) Execute(ctx context.Context, id uuid.UUID) (*SendEmailResult, error) {
	if uc.mail == nil {
		return nil, apperror.ErrMailDisabled
	}

	proposal, err := uc.proposalRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !proposal.HasClientEmail() {
		return nil, apperror.New(apperror.ErrCodeBadRequest, "у предложения нет email клиента")
	}

	started := time.Now()
	messageID, err := uc.mail.Send(context.WithoutCancel(ctx), mailer.Message{
		To:      proposal.ClientEmail(),
		Subject: uc.projector.EmailSubject(proposal),
		Body:    uc.projector.EmailBody(proposal),
	})
	metrics.DeliveryDuration.WithLabelValues("email").Observe(time.Since(started).Seconds())

	log := logger.Entry(logrus.Fields{"proposal_id": id})
	if err != nil {
		metrics.Deliveries.WithLabelValues("email", "failed").Inc()
		log.WithError(err).Warn("email: отправка не удалась")
		return nil, apperror.DeliveryFailure(err, "не удалось отправить письмо")
	}

	metrics.Deliveries.WithLabelValues("email", "sent").Inc()
	log.WithField("message_id", messageID).Info("email: письмо отправлено")
	return &SendEmailResult{MessageID: messageID, To: proposal.ClientEmail()}, nil
}
