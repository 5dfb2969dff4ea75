package proposal

import (
	"context"
	"strings"

	"github.com/ignatzorin/proposal-backend/internal/domain/repository"
	"github.com/ignatzorin/proposal-backend/internal/pkg/apperror"
	"github.com/ignatzorin/proposal-backend/internal/validation"
)

// WebhookPreference текущие адреса доставки.
type WebhookPreference struct {
	WebhookURL        string `json:"webhookUrl"`
	DefaultWebhookURL string `json:"defaultWebhookUrl"`
	SpreadsheetURL    string `json:"spreadsheetUrl"`
}

type WebhookPreferenceUseCase struct {
	preferenceRepo repository.PreferenceRepository
	cfg            SendConfig
}

func NewWebhookPreferenceUseCase(preferenceRepo repository.PreferenceRepository, cfg SendConfig) *WebhookPreferenceUseCase {
	return &WebhookPreferenceUseCase{preferenceRepo: preferenceRepo, cfg: cfg}
}

func (uc *WebhookPreferenceUseCase) Get(ctx context.Context) (*WebhookPreference, error) {
	saved, err := uc.preferenceRepo.GetWebhookURL(ctx)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось прочитать webhook URL")
	}
	return &WebhookPreference{
		WebhookURL:        saved,
		DefaultWebhookURL: uc.cfg.DefaultWebhookURL,
		SpreadsheetURL:    uc.cfg.SpreadsheetURL,
	}, nil
}

// Set сохраняет непустой корректный адрес.
func (uc *WebhookPreferenceUseCase) Set(ctx context.Context, url string) (*WebhookPreference, error) {
	url = strings.TrimSpace(url)
	if err := validation.ValidateWebhookURL(url); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if err := uc.preferenceRepo.SetWebhookURL(ctx, url); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось сохранить webhook URL")
	}
	return uc.Get(ctx)
}
