package persistence

import "github.com/jmoiron/sqlx"

// PostgresStore объединяет адаптеры записей и настроек поверх одного подключения.
type PostgresStore struct {
	*ProposalRepositoryAdapter
	*PreferenceRepositoryAdapter
}

func NewPostgresStore(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{
		ProposalRepositoryAdapter:   NewProposalRepositoryAdapter(db),
		PreferenceRepositoryAdapter: NewPreferenceRepositoryAdapter(db),
	}
}
