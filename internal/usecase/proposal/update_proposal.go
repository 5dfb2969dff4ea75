package proposal

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/proposal-backend/internal/domain/entity"
	"github.com/ignatzorin/proposal-backend/internal/domain/repository"
	"github.com/ignatzorin/proposal-backend/internal/logger"
	"github.com/ignatzorin/proposal-backend/internal/metrics"
	"github.com/ignatzorin/proposal-backend/internal/pkg/apperror"
)

// UpdateProposalUseCase правка формы: новая запись с тем же id и новым createdAt
// заменяет прежнюю. Прежняя запись не изменяется.
type UpdateProposalUseCase struct {
	proposalRepo repository.ProposalRepository
	rules        entity.CommitRules
	now          Clock
}

func NewUpdateProposalUseCase(proposalRepo repository.ProposalRepository, rules entity.CommitRules, now Clock) *UpdateProposalUseCase {
	if now == nil {
		now = time.Now
	}
	return &UpdateProposalUseCase{
		proposalRepo: proposalRepo,
		rules:        rules,
		now:          now,
	}
}

func (uc *UpdateProposalUseCase) Execute(ctx context.Context, id uuid.UUID, draft entity.ProposalDraft) (*entity.Proposal, error) {
	if _, err := uc.proposalRepo.FindByID(ctx, id); err != nil {
		return nil, err
	}

	proposal, err := commit(id, draft, uc.rules, uc.now())
	if err != nil {
		return nil, err
	}

	if err := uc.proposalRepo.Save(ctx, proposal); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось обновить предложение")
	}

	metrics.ProposalsCommitted.Inc()
	logger.Entry(logrus.Fields{"proposal_id": id}).Info("proposal: запись заменена")
	return proposal, nil
}
