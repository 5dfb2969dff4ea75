package persistence

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/proposal-backend/internal/pkg/apperror"
)

const webhookPreferenceKey = "webhook_url"

// PreferenceRepositoryAdapter хранит настройки в таблице preferences.
type PreferenceRepositoryAdapter struct {
	db *sqlx.DB
}

func NewPreferenceRepositoryAdapter(db *sqlx.DB) *PreferenceRepositoryAdapter {
	return &PreferenceRepositoryAdapter{db: db}
}

func (r *PreferenceRepositoryAdapter) GetWebhookURL(ctx context.Context) (string, error) {
	var value string
	err := r.db.GetContext(ctx, &value, `SELECT value FROM preferences WHERE key = $1`, webhookPreferenceKey)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось прочитать webhook URL")
	}
	return value, nil
}

func (r *PreferenceRepositoryAdapter) SetWebhookURL(ctx context.Context, url string) error {
	query := `
		INSERT INTO preferences (key, value, updated_at) VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
	`
	if _, err := r.db.ExecContext(ctx, query, webhookPreferenceKey, url); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось сохранить webhook URL")
	}
	return nil
}
