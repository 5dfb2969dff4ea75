package proposal_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/proposal-backend/internal/domain/entity"
	"github.com/ignatzorin/proposal-backend/internal/domain/valueobject"
	"github.com/ignatzorin/proposal-backend/internal/formatter"
	"github.com/ignatzorin/proposal-backend/internal/goroutine"
	"github.com/ignatzorin/proposal-backend/internal/infrastructure/persistence"
	"github.com/ignatzorin/proposal-backend/internal/mailer"
	"github.com/ignatzorin/proposal-backend/internal/pkg/apperror"
	"github.com/ignatzorin/proposal-backend/internal/usecase/proposal"
	"github.com/ignatzorin/proposal-backend/internal/ws"
)

var fixedNow = time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

func clock() time.Time { return fixedNow }

func validDraft() entity.ProposalDraft {
	return entity.ProposalDraft{
		ClientName:       "Jane Doe",
		ClientEmail:      " jane@x.com ",
		ScopeOfWork:      "Paint the fence",
		LowPrice:         "1200",
		HighPrice:        "1500",
		JobDurationValue: "2",
		JobDurationUnit:  "weeks",
	}
}

func commitOne(t *testing.T, store *persistence.MemoryStore) *entity.Proposal {
	t.Helper()
	uc := proposal.NewCreateProposalUseCase(store, entity.CommitRules{RequireClientEmail: true}, clock)
	p, err := uc.Execute(context.Background(), validDraft())
	require.NoError(t, err)
	return p
}

// --- Create / Update / Discard ---

func TestCreateProposal_Success(t *testing.T) {
	store := persistence.NewMemoryStore()
	p := commitOne(t, store)

	assert.NotEqual(t, uuid.Nil, p.ID())
	assert.Equal(t, "jane@x.com", p.ClientEmail())
	assert.Equal(t, "$1,200 - $1,500", p.PriceRange())
	assert.Equal(t, "2 weeks", p.JobDuration())
	assert.Equal(t, fixedNow, p.CreatedAt())

	stored, err := store.FindByID(context.Background(), p.ID())
	require.NoError(t, err)
	assert.Equal(t, p.Fields(), stored.Fields())
}

func TestCreateProposal_MissingFields(t *testing.T) {
	store := persistence.NewMemoryStore()
	uc := proposal.NewCreateProposalUseCase(store, entity.CommitRules{RequireClientEmail: true}, clock)

	draft := validDraft()
	draft.ClientName = "   "
	draft.LowPrice = ""
	draft.HighPrice = ""

	_, err := uc.Execute(context.Background(), draft)
	require.Error(t, err)
	assert.True(t, apperror.IsMissingFields(err))

	var appErr *apperror.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, []string{entity.FieldClientName, entity.FieldPriceRange}, appErr.Fields)

	list, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestCreateProposal_InvalidEmail(t *testing.T) {
	uc := proposal.NewCreateProposalUseCase(persistence.NewMemoryStore(), entity.CommitRules{RequireClientEmail: true}, clock)

	draft := validDraft()
	draft.ClientEmail = "jane@x"

	_, err := uc.Execute(context.Background(), draft)
	assert.True(t, apperror.IsInvalidEmail(err))
}

func TestCreateProposal_OptionalEmail(t *testing.T) {
	uc := proposal.NewCreateProposalUseCase(persistence.NewMemoryStore(), entity.CommitRules{}, clock)

	draft := validDraft()
	draft.ClientEmail = ""

	p, err := uc.Execute(context.Background(), draft)
	require.NoError(t, err)
	assert.False(t, p.HasClientEmail())
}

func TestNormalizeProposal_NeverChecksCompleteness(t *testing.T) {
	fields, err := proposal.NewNormalizeProposalUseCase().Execute(entity.ProposalDraft{LowPrice: "0000"})
	require.NoError(t, err)
	assert.Equal(t, "$0", fields.PriceRange)
	assert.Empty(t, fields.ClientName)

	_, err = proposal.NewNormalizeProposalUseCase().Execute(entity.ProposalDraft{JobDurationValue: "2", JobDurationUnit: "fortnights"})
	assert.True(t, apperror.IsValidation(err))
}

func TestUpdateProposal_ReplacesRecord(t *testing.T) {
	store := persistence.NewMemoryStore()
	original := commitOne(t, store)

	later := fixedNow.Add(time.Hour)
	uc := proposal.NewUpdateProposalUseCase(store, entity.CommitRules{RequireClientEmail: true}, func() time.Time { return later })

	draft := validDraft()
	draft.ScopeOfWork = "Paint the fence and the gate"
	updated, err := uc.Execute(context.Background(), original.ID(), draft)
	require.NoError(t, err)

	assert.Equal(t, original.ID(), updated.ID())
	assert.Equal(t, later, updated.CreatedAt())
	assert.Equal(t, "Paint the fence", original.ScopeOfWork())

	stored, err := store.FindByID(context.Background(), original.ID())
	require.NoError(t, err)
	assert.Equal(t, "Paint the fence and the gate", stored.ScopeOfWork())
}

func TestUpdateProposal_NotFound(t *testing.T) {
	uc := proposal.NewUpdateProposalUseCase(persistence.NewMemoryStore(), entity.CommitRules{}, clock)
	_, err := uc.Execute(context.Background(), uuid.New(), validDraft())
	assert.True(t, apperror.IsNotFound(err))
}

func TestDiscardProposal(t *testing.T) {
	store := persistence.NewMemoryStore()
	p := commitOne(t, store)

	require.NoError(t, proposal.NewDiscardProposalUseCase(store).Execute(context.Background(), p.ID()))

	_, err := proposal.NewGetProposalUseCase(store).Execute(context.Background(), p.ID())
	assert.True(t, apperror.IsNotFound(err))
}

// --- Render ---

func TestRenderProposal(t *testing.T) {
	store := persistence.NewMemoryStore()
	p := commitOne(t, store)

	opts := formatter.DefaultOptions()
	opts.Location = time.UTC
	exportedAt := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	uc := proposal.NewRenderProposalUseCase(store, formatter.NewProjector(opts), func() time.Time { return exportedAt })
	ctx := context.Background()

	email, err := uc.Email(ctx, p.ID())
	require.NoError(t, err)
	assert.Equal(t, "Proposal for Jane Doe", email.Subject)
	assert.True(t, strings.HasPrefix(email.Mailto, "mailto:jane@x.com?subject=Proposal%20for%20Jane%20Doe&body="))

	export, err := uc.CSV(ctx, p.ID())
	require.NoError(t, err)
	assert.Equal(t, "proposal_jane_doe_20260401.csv", export.Filename)
	assert.Equal(t, formatter.CSVContentType, export.ContentType)
	assert.Contains(t, export.Content, "2026-03-14 09:26:53")

	payload, err := uc.Payload(ctx, p.ID())
	require.NoError(t, err)
	assert.Equal(t, "2026-03-14 09:26:53", payload.CreatedAt)
	assert.Equal(t, "", payload.AdditionalNotes)

	_, err = uc.Email(ctx, uuid.New())
	assert.True(t, apperror.IsNotFound(err))
}

// --- Send ---

type mockDeliverer struct {
	mock.Mock
}

func (m *mockDeliverer) Deliver(ctx context.Context, url string, body []byte) valueobject.DeliveryOutcome {
	args := m.Called(ctx, url, body)
	return args.Get(0).(valueobject.DeliveryOutcome)
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) BroadcastToProposal(id uuid.UUID, event string, data any) error {
	args := m.Called(id, event, data)
	return args.Error(0)
}

func newSendUseCase(store *persistence.MemoryStore, d proposal.Deliverer, n proposal.Notifier, defaultURL string) *proposal.SendProposalUseCase {
	return proposal.NewSendProposalUseCase(store, store, formatter.NewProjector(formatter.DefaultOptions()), d, n,
		proposal.SendConfig{DefaultWebhookURL: defaultURL, SpreadsheetURL: "https://sheets.example.com/s"})
}

func TestSendProposal_OverrideSavedBeforePost(t *testing.T) {
	store := persistence.NewMemoryStore()
	p := commitOne(t, store)

	d := &mockDeliverer{}
	d.On("Deliver", mock.Anything, "https://hooks.example.com/custom", mock.Anything).
		Run(func(args mock.Arguments) {
			saved, err := store.GetWebhookURL(context.Background())
			require.NoError(t, err)
			assert.Equal(t, "https://hooks.example.com/custom", saved)
			assert.NoError(t, formatter.ValidatePayload(args.Get(2).([]byte)))
		}).
		Return(valueobject.Unconfirmed(""))

	n := &mockNotifier{}
	n.On("BroadcastToProposal", p.ID(), ws.EventDeliveryStarted, mock.Anything).Return(nil).Once()
	n.On("BroadcastToProposal", p.ID(), ws.EventDeliveryCompleted, mock.Anything).Return(nil).Once()

	uc := newSendUseCase(store, d, n, "https://hooks.example.com/default")
	result, err := uc.Execute(context.Background(), proposal.SendInput{ProposalID: p.ID(), WebhookURL: " https://hooks.example.com/custom "})
	require.NoError(t, err)

	assert.Equal(t, valueobject.DeliveryUnconfirmed, result.Outcome.Status)
	assert.Equal(t, "https://hooks.example.com/custom", result.WebhookURL)
	assert.Equal(t, "https://sheets.example.com/s", result.SpreadsheetURL)
	assert.False(t, uc.InFlight(p.ID()))
	d.AssertExpectations(t)
	n.AssertExpectations(t)
}

func TestSendProposal_URLResolution(t *testing.T) {
	ctx := context.Background()

	t.Run("saved preference wins over default", func(t *testing.T) {
		store := persistence.NewMemoryStore()
		p := commitOne(t, store)
		require.NoError(t, store.SetWebhookURL(ctx, "https://hooks.example.com/saved"))

		d := &mockDeliverer{}
		d.On("Deliver", mock.Anything, "https://hooks.example.com/saved", mock.Anything).Return(valueobject.Sent())

		result, err := newSendUseCase(store, d, nil, "https://hooks.example.com/default").
			Execute(ctx, proposal.SendInput{ProposalID: p.ID()})
		require.NoError(t, err)
		assert.Equal(t, valueobject.DeliverySent, result.Outcome.Status)
	})

	t.Run("default when nothing saved", func(t *testing.T) {
		store := persistence.NewMemoryStore()
		p := commitOne(t, store)

		d := &mockDeliverer{}
		d.On("Deliver", mock.Anything, "https://hooks.example.com/default", mock.Anything).Return(valueobject.Sent())

		_, err := newSendUseCase(store, d, nil, "https://hooks.example.com/default").
			Execute(ctx, proposal.SendInput{ProposalID: p.ID()})
		require.NoError(t, err)
		d.AssertExpectations(t)
	})

	t.Run("no url at all", func(t *testing.T) {
		store := persistence.NewMemoryStore()
		p := commitOne(t, store)

		d := &mockDeliverer{}
		_, err := newSendUseCase(store, d, nil, "").Execute(ctx, proposal.SendInput{ProposalID: p.ID()})
		assert.ErrorIs(t, err, apperror.ErrNoWebhookURL)
		d.AssertNotCalled(t, "Deliver", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("invalid override is rejected and not saved", func(t *testing.T) {
		store := persistence.NewMemoryStore()
		p := commitOne(t, store)

		d := &mockDeliverer{}
		_, err := newSendUseCase(store, d, nil, "https://hooks.example.com/default").
			Execute(ctx, proposal.SendInput{ProposalID: p.ID(), WebhookURL: "ftp://hooks.example.com"})
		assert.True(t, apperror.IsValidation(err))

		saved, err := store.GetWebhookURL(ctx)
		require.NoError(t, err)
		assert.Empty(t, saved)
	})
}

func TestSendProposal_TransportFailure(t *testing.T) {
	store := persistence.NewMemoryStore()
	p := commitOne(t, store)

	d := &mockDeliverer{}
	d.On("Deliver", mock.Anything, mock.Anything, mock.Anything).Return(valueobject.Failed("connection refused"))

	uc := newSendUseCase(store, d, nil, "https://hooks.example.com/default")
	result, err := uc.Execute(context.Background(), proposal.SendInput{ProposalID: p.ID()})
	require.Error(t, err)
	assert.True(t, apperror.IsDeliveryFailure(err))
	assert.Contains(t, err.Error(), "connection refused")
	require.NotNil(t, result)
	assert.True(t, result.Outcome.IsFailed())

	// запись сохраняется, повторная отправка возможна
	_, err = store.FindByID(context.Background(), p.ID())
	assert.NoError(t, err)
	assert.False(t, uc.InFlight(p.ID()))
}

func TestSendProposal_IgnoresCallerCancellation(t *testing.T) {
	store := persistence.NewMemoryStore()
	p := commitOne(t, store)

	ctx, cancel := context.WithCancel(context.Background())

	d := &mockDeliverer{}
	d.On("Deliver", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			cancel()
			assert.NoError(t, args.Get(0).(context.Context).Err())
		}).
		Return(valueobject.Sent())

	_, err := newSendUseCase(store, d, nil, "https://hooks.example.com/default").
		Execute(ctx, proposal.SendInput{ProposalID: p.ID()})
	assert.NoError(t, err)
}

func TestSendProposal_SecondSendWhileInFlight(t *testing.T) {
	store := persistence.NewMemoryStore()
	p := commitOne(t, store)

	entered := make(chan struct{})
	unblock := make(chan struct{})

	d := &mockDeliverer{}
	d.On("Deliver", mock.Anything, mock.Anything, mock.Anything).
		Run(func(mock.Arguments) {
			close(entered)
			<-unblock
		}).
		Return(valueobject.Sent()).Once()

	uc := newSendUseCase(store, d, nil, "https://hooks.example.com/default")

	done := make(chan error, 1)
	go func() {
		_, err := uc.Execute(context.Background(), proposal.SendInput{ProposalID: p.ID()})
		done <- err
	}()

	<-entered
	assert.True(t, uc.InFlight(p.ID()))
	_, err := uc.Execute(context.Background(), proposal.SendInput{ProposalID: p.ID()})
	assert.True(t, apperror.IsConflict(err))

	close(unblock)
	assert.NoError(t, <-done)
	assert.False(t, uc.InFlight(p.ID()))
	d.AssertNumberOfCalls(t, "Deliver", 1)
}

type discardLogger struct{}

func (discardLogger) Errorf(string, ...interface{}) {}

func TestSendProposal_Async(t *testing.T) {
	store := persistence.NewMemoryStore()
	p := commitOne(t, store)

	d := &mockDeliverer{}
	d.On("Deliver", mock.Anything, "https://hooks.example.com/default", mock.Anything).Return(valueobject.Unconfirmed(""))

	n := &mockNotifier{}
	n.On("BroadcastToProposal", p.ID(), ws.EventDeliveryStarted, mock.Anything).Return(nil).Once()
	n.On("BroadcastToProposal", p.ID(), ws.EventDeliveryCompleted, map[string]any{"outcome": valueobject.DeliveryUnconfirmed}).Return(nil).Once()

	rh := goroutine.NewRecoveryHandler(discardLogger{})
	uc := newSendUseCase(store, d, n, "https://hooks.example.com/default").WithSpawner(rh)

	accepted, err := uc.ExecuteAsync(context.Background(), proposal.SendInput{ProposalID: p.ID()})
	require.NoError(t, err)
	assert.Equal(t, "https://hooks.example.com/default", accepted.WebhookURL)

	rh.Wait()
	d.AssertExpectations(t)
	n.AssertExpectations(t)
	assert.False(t, uc.InFlight(p.ID()))
}

func TestSendProposal_NotFound(t *testing.T) {
	_, err := newSendUseCase(persistence.NewMemoryStore(), &mockDeliverer{}, nil, "https://hooks.example.com/default").
		Execute(context.Background(), proposal.SendInput{ProposalID: uuid.New()})
	assert.True(t, apperror.IsNotFound(err))
}

// --- Email ---

type mockMailer struct {
	mock.Mock
}

func (m *mockMailer) Send(ctx context.Context, msg mailer.Message) (string, error) {
	args := m.Called(ctx, msg)
	return args.String(0), args.Error(1)
}

func TestSendEmail(t *testing.T) {
	ctx := context.Background()
	projector := formatter.NewProjector(formatter.DefaultOptions())

	t.Run("disabled", func(t *testing.T) {
		store := persistence.NewMemoryStore()
		p := commitOne(t, store)
		_, err := proposal.NewSendEmailUseCase(store, projector, nil).Execute(ctx, p.ID())
		assert.ErrorIs(t, err, apperror.ErrMailDisabled)
	})

	t.Run("no client email", func(t *testing.T) {
		store := persistence.NewMemoryStore()
		draft := validDraft()
		draft.ClientEmail = ""
		p, err := proposal.NewCreateProposalUseCase(store, entity.CommitRules{}, clock).Execute(ctx, draft)
		require.NoError(t, err)

		_, err = proposal.NewSendEmailUseCase(store, projector, &mockMailer{}).Execute(ctx, p.ID())
		var appErr *apperror.AppError
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, apperror.ErrCodeBadRequest, appErr.Code)
	})

	t.Run("sent", func(t *testing.T) {
		store := persistence.NewMemoryStore()
		p := commitOne(t, store)

		m := &mockMailer{}
		m.On("Send", mock.Anything, mailer.Message{
			To:      "jane@x.com",
			Subject: "Proposal for Jane Doe",
			Body:    projector.EmailBody(p),
		}).Return("msg-1", nil)

		result, err := proposal.NewSendEmailUseCase(store, projector, m).Execute(ctx, p.ID())
		require.NoError(t, err)
		assert.Equal(t, "msg-1", result.MessageID)
		m.AssertExpectations(t)
	})

	t.Run("provider error", func(t *testing.T) {
		store := persistence.NewMemoryStore()
		p := commitOne(t, store)

		m := &mockMailer{}
		m.On("Send", mock.Anything, mock.Anything).Return("", errors.New("throttled"))

		_, err := proposal.NewSendEmailUseCase(store, projector, m).Execute(ctx, p.ID())
		assert.True(t, apperror.IsDeliveryFailure(err))
	})
}

// --- Preference ---

func TestWebhookPreference(t *testing.T) {
	ctx := context.Background()
	store := persistence.NewMemoryStore()
	uc := proposal.NewWebhookPreferenceUseCase(store, proposal.SendConfig{
		DefaultWebhookURL: "https://hooks.example.com/default",
		SpreadsheetURL:    "https://sheets.example.com/s",
	})

	pref, err := uc.Get(ctx)
	require.NoError(t, err)
	assert.Empty(t, pref.WebhookURL)
	assert.Equal(t, "https://hooks.example.com/default", pref.DefaultWebhookURL)

	_, err = uc.Set(ctx, "  ")
	assert.True(t, apperror.IsValidation(err))

	pref, err = uc.Set(ctx, "https://hooks.example.com/mine")
	require.NoError(t, err)
	assert.Equal(t, "https://hooks.example.com/mine", pref.WebhookURL)
	assert.Equal(t, "https://sheets.example.com/s", pref.SpreadsheetURL)
}
