package proposal

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/proposal-backend/internal/domain/entity"
	"github.com/ignatzorin/proposal-backend/internal/domain/repository"
	"github.com/ignatzorin/proposal-backend/internal/logger"
	"github.com/ignatzorin/proposal-backend/internal/pkg/apperror"
)

type GetProposalUseCase struct {
	proposalRepo repository.ProposalRepository
}

func NewGetProposalUseCase(proposalRepo repository.ProposalRepository) *GetProposalUseCase {
	return &GetProposalUseCase{proposalRepo: proposalRepo}
}

func (uc *GetProposalUseCase) Execute(ctx context.Context, id uuid.UUID) (*entity.Proposal, error) {
	return uc.proposalRepo.FindByID(ctx, id)
}

type ListProposalsUseCase struct {
	proposalRepo repository.ProposalRepository
}

func NewListProposalsUseCase(proposalRepo repository.ProposalRepository) *ListProposalsUseCase {
	return &ListProposalsUseCase{proposalRepo: proposalRepo}
}

// Execute возвращает записи от новых к старым.
func (uc *ListProposalsUseCase) Execute(ctx context.Context) ([]*entity.Proposal, error) {
	proposals, err := uc.proposalRepo.List(ctx)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить список предложений")
	}
	return proposals, nil
}

// DiscardProposalUseCase удаляет запись ("начать новое предложение").
type DiscardProposalUseCase struct {
	proposalRepo repository.ProposalRepository
}

func NewDiscardProposalUseCase(proposalRepo repository.ProposalRepository) *DiscardProposalUseCase {
	return &DiscardProposalUseCase{proposalRepo: proposalRepo}
}

func (uc *DiscardProposalUseCase) Execute(ctx context.Context, id uuid.UUID) error {
	if err := uc.proposalRepo.Delete(ctx, id); err != nil {
		return err
	}
	logger.Entry(logrus.Fields{"proposal_id": id}).Info("proposal: запись удалена")
	return nil
}
