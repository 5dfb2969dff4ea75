package proposal

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/proposal-backend/internal/domain/entity"
	"github.com/ignatzorin/proposal-backend/internal/domain/repository"
	"github.com/ignatzorin/proposal-backend/internal/logger"
	"github.com/ignatzorin/proposal-backend/internal/metrics"
	"github.com/ignatzorin/proposal-backend/internal/pkg/apperror"
)

// Clock источник текущего времени для фиксации записи.
type Clock func() time.Time

// NormalizeProposalUseCase приводит черновик к каноническим значениям без проверки полноты.
type NormalizeProposalUseCase struct{}

func NewNormalizeProposalUseCase() *NormalizeProposalUseCase {
	return &NormalizeProposalUseCase{}
}

func (uc *NormalizeProposalUseCase) Execute(draft entity.ProposalDraft) (entity.ProposalFields, error) {
	return draft.Normalize()
}

type CreateProposalUseCase struct {
	proposalRepo repository.ProposalRepository
	rules        entity.CommitRules
	now          Clock
}

func NewCreateProposalUseCase(proposalRepo repository.ProposalRepository, rules entity.CommitRules, now Clock) *CreateProposalUseCase {
	if now == nil {
		now = time.Now
	}
	return &CreateProposalUseCase{
		proposalRepo: proposalRepo,
		rules:        rules,
		now:          now,
	}
}

// Execute нормализует черновик, проверяет его и сохраняет новую запись.
func (uc *CreateProposalUseCase) Execute(ctx context.Context, draft entity.ProposalDraft) (*entity.Proposal, error) {
	proposal, err := commit(uuid.Nil, draft, uc.rules, uc.now())
	if err != nil {
		return nil, err
	}

	if err := uc.proposalRepo.Save(ctx, proposal); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось сохранить предложение")
	}

	metrics.ProposalsCommitted.Inc()
	logger.Entry(logrus.Fields{"proposal_id": proposal.ID()}).Info("proposal: запись зафиксирована")
	return proposal, nil
}

// commit общая часть создания и правки: нормализация, проверка, фиксация.
func commit(id uuid.UUID, draft entity.ProposalDraft, rules entity.CommitRules, now time.Time) (*entity.Proposal, error) {
	fields, err := draft.Normalize()
	if err != nil {
		recordValidationFailure(err)
		return nil, err
	}

	proposal, err := entity.NewProposal(id, fields, rules, now)
	if err != nil {
		recordValidationFailure(err)
		return nil, err
	}
	return proposal, nil
}

func recordValidationFailure(err error) {
	code := string(apperror.ErrCodeInternal)
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		code = string(appErr.Code)
	}
	metrics.ValidationFailures.WithLabelValues(code).Inc()
}
