package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/ignatzorin/proposal-backend/internal/domain/entity"
)

// ProposalRepository хранит зафиксированные записи.
// Save заменяет запись целиком; FindByID возвращает apperror.ErrProposalNotFound при отсутствии.
type ProposalRepository interface {
	Save(ctx context.Context, proposal *entity.Proposal) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Proposal, error)
	List(ctx context.Context) ([]*entity.Proposal, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// PreferenceRepository хранит последний пользовательский webhook URL.
// Пустая строка без ошибки означает, что значение не сохранялось.
type PreferenceRepository interface {
	GetWebhookURL(ctx context.Context) (string, error)
	SetWebhookURL(ctx context.Context, url string) error
}

// Pinger проверка доступности хранилища для /health.
type Pinger interface {
	Ping(ctx context.Context) error
}
