package persistence

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/proposal-backend/internal/domain/entity"
	"github.com/ignatzorin/proposal-backend/internal/domain/repository"
	"github.com/ignatzorin/proposal-backend/internal/pkg/apperror"
)

var (
	_ repository.ProposalRepository   = (*MemoryStore)(nil)
	_ repository.PreferenceRepository = (*MemoryStore)(nil)
	_ repository.ProposalRepository   = (*RedisStore)(nil)
	_ repository.PreferenceRepository = (*RedisStore)(nil)
	_ repository.ProposalRepository   = (*ProposalRepositoryAdapter)(nil)
	_ repository.PreferenceRepository = (*PreferenceRepositoryAdapter)(nil)
	_ store                           = (*PostgresStore)(nil)
)

func sample(name string, at time.Time) *entity.Proposal {
	return entity.RestoreProposal(uuid.New(), entity.ProposalFields{
		ClientName:   name,
		ClientEmail:  "jane@x.com",
		ScopeOfWork:  "Paint the fence",
		PriceRange:   "$1,200 - $1,500",
		JobDuration:  "2 weeks",
		MeetingNotes: "gate",
	}, at)
}

type store interface {
	repository.ProposalRepository
	repository.PreferenceRepository
}

func exerciseStore(t *testing.T, s store) {
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)

	older := sample("Older", base)
	newer := sample("Newer", base.Add(time.Hour))
	require.NoError(t, s.Save(ctx, older))
	require.NoError(t, s.Save(ctx, newer))

	got, err := s.FindByID(ctx, older.ID())
	require.NoError(t, err)
	assert.Equal(t, older.Fields(), got.Fields())
	assert.True(t, older.CreatedAt().Equal(got.CreatedAt()))

	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Newer", list[0].ClientName())

	replaced := entity.RestoreProposal(older.ID(), entity.ProposalFields{
		ClientName: "Edited", ScopeOfWork: "s", PriceRange: "$1", JobDuration: "1 days",
	}, base.Add(2*time.Hour))
	require.NoError(t, s.Save(ctx, replaced))
	got, err = s.FindByID(ctx, older.ID())
	require.NoError(t, err)
	assert.Equal(t, "Edited", got.ClientName())

	require.NoError(t, s.Delete(ctx, older.ID()))
	_, err = s.FindByID(ctx, older.ID())
	assert.True(t, apperror.IsNotFound(err))
	assert.True(t, apperror.IsNotFound(s.Delete(ctx, older.ID())))

	url, err := s.GetWebhookURL(ctx)
	require.NoError(t, err)
	assert.Empty(t, url)

	require.NoError(t, s.SetWebhookURL(ctx, "https://hooks.example.com/a"))
	url, err = s.GetWebhookURL(ctx)
	require.NoError(t, err)
	assert.Equal(t, "https://hooks.example.com/a", url)
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestRedisStore(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	s := NewRedisStore(client)

	require.NoError(t, s.Ping(context.Background()))
	exerciseStore(t, s)

	members, err := mr.ZMembers("proposal:records")
	require.NoError(t, err)
	assert.Len(t, members, 1)
	assert.True(t, mr.Exists("proposal:preference:webhook_url"))
}

func TestRedisStore_CorruptRecord(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	id := uuid.New()
	require.NoError(t, mr.Set(redisRecordPrefix+id.String(), "{not json"))

	s := NewRedisStore(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	_, err = s.FindByID(context.Background(), id)
	assert.Error(t, err)
	assert.False(t, apperror.IsNotFound(err))
}

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "postgres"), mock
}

var proposalColumns = []string{"id", "client_name", "client_email", "scope_of_work", "price_range", "job_duration", "meeting_notes", "created_at"}

func TestProposalRepositoryAdapter_Save(t *testing.T) {
	db, mock := newMockDB(t)
	p := sample("Jane Doe", time.Now())

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO proposals")).
		WithArgs(p.ID(), "Jane Doe", "jane@x.com", "Paint the fence", "$1,200 - $1,500", "2 weeks", "gate", p.CreatedAt()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, NewProposalRepositoryAdapter(db).Save(context.Background(), p))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProposalRepositoryAdapter_FindByID(t *testing.T) {
	db, mock := newMockDB(t)
	id := uuid.New()
	at := time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("FROM proposals WHERE id = $1")).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows(proposalColumns).
			AddRow(id.String(), "Jane Doe", "", "Paint", "$1", "2 weeks", "", at))

	p, err := NewProposalRepositoryAdapter(db).FindByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", p.ClientName())
	assert.False(t, p.HasClientEmail())
	assert.Equal(t, at, p.CreatedAt())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProposalRepositoryAdapter_FindByID_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	id := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta("FROM proposals WHERE id = $1")).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows(proposalColumns))

	_, err := NewProposalRepositoryAdapter(db).FindByID(context.Background(), id)
	assert.True(t, apperror.IsNotFound(err))
}

func TestProposalRepositoryAdapter_ListAndDelete(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProposalRepositoryAdapter(db)
	at := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("FROM proposals ORDER BY created_at DESC")).
		WillReturnRows(sqlmock.NewRows(proposalColumns).
			AddRow(uuid.New().String(), "B", "", "s", "$2", "1 days", "", at).
			AddRow(uuid.New().String(), "A", "", "s", "$1", "1 days", "", at.Add(-time.Hour)))

	list, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "B", list[0].ClientName())

	missing := uuid.New()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM proposals WHERE id = $1")).
		WithArgs(missing).
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.True(t, apperror.IsNotFound(repo.Delete(context.Background(), missing)))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPreferenceRepositoryAdapter(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPreferenceRepositoryAdapter(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT value FROM preferences WHERE key = $1")).
		WithArgs(webhookPreferenceKey).
		WillReturnRows(sqlmock.NewRows([]string{"value"}))
	url, err := repo.GetWebhookURL(context.Background())
	require.NoError(t, err)
	assert.Empty(t, url)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO preferences")).
		WithArgs(webhookPreferenceKey, "https://hooks.example.com/a").
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.SetWebhookURL(context.Background(), "https://hooks.example.com/a"))

	mock.ExpectQuery(regexp.QuoteMeta("SELECT value FROM preferences WHERE key = $1")).
		WithArgs(webhookPreferenceKey).
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow("https://hooks.example.com/a"))
	url, err = repo.GetWebhookURL(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "https://hooks.example.com/a", url)

	assert.NoError(t, mock.ExpectationsWereMet())
}
