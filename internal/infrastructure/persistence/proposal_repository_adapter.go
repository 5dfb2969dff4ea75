package persistence

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/proposal-backend/internal/domain/entity"
	"github.com/ignatzorin/proposal-backend/internal/pkg/apperror"
)

// ProposalRepositoryAdapter хранит записи в PostgreSQL.
type ProposalRepositoryAdapter struct {
	db *sqlx.DB
}

func NewProposalRepositoryAdapter(db *sqlx.DB) *ProposalRepositoryAdapter {
	return &ProposalRepositoryAdapter{db: db}
}

// Save вставляет запись или целиком заменяет существующую с тем же id.
func (r *ProposalRepositoryAdapter) Save(ctx context.Context, proposal *entity.Proposal) error {
	query := `
		INSERT INTO proposals (id, client_name, client_email, scope_of_work, price_range, job_duration, meeting_notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			client_name = EXCLUDED.client_name,
			client_email = EXCLUDED.client_email,
			scope_of_work = EXCLUDED.scope_of_work,
			price_range = EXCLUDED.price_range,
			job_duration = EXCLUDED.job_duration,
			meeting_notes = EXCLUDED.meeting_notes,
			created_at = EXCLUDED.created_at
	`
	_, err := r.db.ExecContext(ctx, query,
		proposal.ID(), proposal.ClientName(), proposal.ClientEmail(), proposal.ScopeOfWork(),
		proposal.PriceRange(), proposal.JobDuration(), proposal.MeetingNotes(), proposal.CreatedAt(),
	)
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось сохранить предложение")
	}
	return nil
}

func (r *ProposalRepositoryAdapter) FindByID(ctx context.Context, id uuid.UUID) (*entity.Proposal, error) {
	var p proposalRow
	query := `
		SELECT id, client_name, client_email, scope_of_work, price_range, job_duration, meeting_notes, created_at
		FROM proposals WHERE id = $1
	`
	if err := r.db.GetContext(ctx, &p, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.ErrProposalNotFound
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить предложение")
	}
	return p.toEntity(), nil
}

func (r *ProposalRepositoryAdapter) List(ctx context.Context) ([]*entity.Proposal, error) {
	var rows []proposalRow
	query := `
		SELECT id, client_name, client_email, scope_of_work, price_range, job_duration, meeting_notes, created_at
		FROM proposals ORDER BY created_at DESC
	`
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить список предложений")
	}

	result := make([]*entity.Proposal, len(rows))
	for i := range rows {
		result[i] = rows[i].toEntity()
	}
	return result, nil
}

func (r *ProposalRepositoryAdapter) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM proposals WHERE id = $1`, id)
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось удалить предложение")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return apperror.ErrProposalNotFound
	}
	return nil
}

func (r *ProposalRepositoryAdapter) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

type proposalRow struct {
	ID           uuid.UUID `db:"id"`
	ClientName   string    `db:"client_name"`
	ClientEmail  string    `db:"client_email"`
	ScopeOfWork  string    `db:"scope_of_work"`
	PriceRange   string    `db:"price_range"`
	JobDuration  string    `db:"job_duration"`
	MeetingNotes string    `db:"meeting_notes"`
	CreatedAt    time.Time `db:"created_at"`
}

func (r *proposalRow) toEntity() *entity.Proposal {
	return entity.RestoreProposal(r.ID, entity.ProposalFields{
		ClientName:   r.ClientName,
		ClientEmail:  r.ClientEmail,
		ScopeOfWork:  r.ScopeOfWork,
		PriceRange:   r.PriceRange,
		JobDuration:  r.JobDuration,
		MeetingNotes: r.MeetingNotes,
	}, r.CreatedAt)
}
