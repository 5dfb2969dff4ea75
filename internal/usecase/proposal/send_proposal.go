package proposal

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/proposal-backend/internal/domain/entity"
	"github.com/ignatzorin/proposal-backend/internal/domain/repository"
	"github.com/ignatzorin/proposal-backend/internal/domain/valueobject"
	"github.com/ignatzorin/proposal-backend/internal/formatter"
	"github.com/ignatzorin/proposal-backend/internal/goroutine"
	"github.com/ignatzorin/proposal-backend/internal/logger"
	"github.com/ignatzorin/proposal-backend/internal/metrics"
	"github.com/ignatzorin/proposal-backend/internal/pkg/apperror"
	"github.com/ignatzorin/proposal-backend/internal/validation"
	"github.com/ignatzorin/proposal-backend/internal/ws"
)

// Deliverer одна попытка POST в webhook.
type Deliverer interface {
	Deliver(ctx context.Context, url string, body []byte) valueobject.DeliveryOutcome
}

// Notifier рассылает события доставки подписчикам записи.
type Notifier interface {
	BroadcastToProposal(proposalID uuid.UUID, event string, data any) error
}

// Spawner запускает фоновую работу.
type Spawner interface {
	SafeGoWithContext(ctx context.Context, fn func(context.Context))
}

type SendInput struct {
	ProposalID uuid.UUID
	// WebhookURL необязательная замена сохранённого адреса.
	WebhookURL string
}

// SendResult итог отправки.
type SendResult struct {
	Outcome        valueobject.DeliveryOutcome
	WebhookURL     string
	SpreadsheetURL string
}

// SendConfig адреса по умолчанию.
type SendConfig struct {
	DefaultWebhookURL string
	SpreadsheetURL    string
}

// SendProposalUseCase доставляет payload записи в webhook таблицы.
// Для одной записи одновременно выполняется не больше одной отправки.
type SendProposalUseCase struct {
	proposalRepo   repository.ProposalRepository
	preferenceRepo repository.PreferenceRepository
	projector      *formatter.Projector
	deliverer      Deliverer
	notifier       Notifier
	spawner        Spawner
	cfg            SendConfig

	mu       sync.Mutex
	inFlight map[uuid.UUID]struct{}
}

func NewSendProposalUseCase(
	proposalRepo repository.ProposalRepository,
	preferenceRepo repository.PreferenceRepository,
	projector *formatter.Projector,
	deliverer Deliverer,
	notifier Notifier,
	cfg SendConfig,
) *SendProposalUseCase {
	return &SendProposalUseCase{
		proposalRepo:   proposalRepo,
		preferenceRepo: preferenceRepo,
		projector:      projector,
		deliverer:      deliverer,
		notifier:       notifier,
		spawner:        goroutine.DefaultRecoveryHandler,
		cfg:            cfg,
		inFlight:       make(map[uuid.UUID]struct{}),
	}
}

// WithSpawner заменяет запуск фоновых отправок.
func (uc *SendProposalUseCase) WithSpawner(s Spawner) *SendProposalUseCase {
	uc.spawner = s
	return uc
}

type sendPlan struct {
	proposal *entity.Proposal
	url      string
	body     []byte
}

// Execute отправляет синхронно. Отмена ctx не прерывает начатую доставку.
// Транспортная ошибка возвращается как DELIVERY_FAILURE вместе с результатом.
func (uc *SendProposalUseCase) Execute(ctx context.Context, input SendInput) (*SendResult, error) {
	plan, err := uc.prepare(ctx, input)
	if err != nil {
		return nil, err
	}

	result := uc.deliver(context.WithoutCancel(ctx), plan)
	if result.Outcome.IsFailed() {
		return result, apperror.DeliveryFailure(errors.New(result.Outcome.Reason), "не удалось доставить предложение: "+result.Outcome.Reason)
	}
	return result, nil
}

// ExecuteAsync проверяет запрос и запускает доставку в фоне.
// Итог приходит подписчикам событием delivery.completed.
func (uc *SendProposalUseCase) ExecuteAsync(ctx context.Context, input SendInput) (*SendResult, error) {
	plan, err := uc.prepare(ctx, input)
	if err != nil {
		return nil, err
	}

	uc.spawner.SafeGoWithContext(context.WithoutCancel(ctx), func(bgCtx context.Context) {
		uc.deliver(bgCtx, plan)
	})

	return &SendResult{
		WebhookURL:     plan.url,
		SpreadsheetURL: uc.cfg.SpreadsheetURL,
	}, nil
}

// InFlight сообщает, выполняется ли отправка записи.
func (uc *SendProposalUseCase) InFlight(id uuid.UUID) bool {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	_, ok := uc.inFlight[id]
	return ok
}

// prepare захватывает слот отправки; при ошибке слот освобождается.
func (uc *SendProposalUseCase) prepare(ctx context.Context, input SendInput) (plan *sendPlan, err error) {
	proposal, err := uc.proposalRepo.FindByID(ctx, input.ProposalID)
	if err != nil {
		return nil, err
	}

	if !uc.acquire(proposal.ID()) {
		return nil, apperror.ErrSendInProgress
	}
	defer func() {
		if err != nil {
			uc.release(proposal.ID())
		}
	}()

	url, err := uc.resolveURL(ctx, input.WebhookURL)
	if err != nil {
		return nil, err
	}

	body, err := uc.projector.PayloadJSON(proposal)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось построить payload")
	}
	if err := formatter.ValidatePayload(body); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "payload не прошёл проверку схемы")
	}

	return &sendPlan{proposal: proposal, url: url, body: body}, nil
}

// resolveURL: непустая замена, затем сохранённый адрес, затем адрес по умолчанию.
// Замена проверяется и сохраняется до отправки.
func (uc *SendProposalUseCase) resolveURL(ctx context.Context, override string) (string, error) {
	override = strings.TrimSpace(override)
	if override != "" {
		if err := validation.ValidateWebhookURL(override); err != nil {
			return "", apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
		}
		if err := uc.preferenceRepo.SetWebhookURL(ctx, override); err != nil {
			return "", apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось сохранить webhook URL")
		}
		return override, nil
	}

	saved, err := uc.preferenceRepo.GetWebhookURL(ctx)
	if err != nil {
		return "", apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось прочитать webhook URL")
	}
	if saved != "" {
		return saved, nil
	}

	if uc.cfg.DefaultWebhookURL != "" {
		return uc.cfg.DefaultWebhookURL, nil
	}
	return "", apperror.ErrNoWebhookURL
}

func (uc *SendProposalUseCase) deliver(ctx context.Context, plan *sendPlan) *SendResult {
	id := plan.proposal.ID()
	defer uc.release(id)

	log := logger.Entry(logrus.Fields{
		"proposal_id": id,
		"webhook_url": plan.url,
	})

	uc.notify(id, ws.EventDeliveryStarted, map[string]any{"webhookUrl": plan.url})

	metrics.DeliveriesInFlight.Inc()
	started := time.Now()
	outcome := uc.deliverer.Deliver(ctx, plan.url, plan.body)
	metrics.DeliveryDuration.WithLabelValues("webhook").Observe(time.Since(started).Seconds())
	metrics.DeliveriesInFlight.Dec()
	metrics.Deliveries.WithLabelValues("webhook", string(outcome.Status)).Inc()

	if outcome.IsFailed() {
		log.WithField("reason", outcome.Reason).Warn("send: доставка не удалась")
	} else {
		log.WithField("outcome", outcome.Status).Info("send: предложение отправлено")
	}

	completed := map[string]any{"outcome": outcome.Status}
	if outcome.Reason != "" {
		completed["reason"] = outcome.Reason
	}
	uc.notify(id, ws.EventDeliveryCompleted, completed)

	return &SendResult{
		Outcome:        outcome,
		WebhookURL:     plan.url,
		SpreadsheetURL: uc.cfg.SpreadsheetURL,
	}
}

func (uc *SendProposalUseCase) notify(id uuid.UUID, event string, data any) {
	if uc.notifier == nil {
		return
	}
	if err := uc.notifier.BroadcastToProposal(id, event, data); err != nil {
		logger.Entry(logrus.Fields{"proposal_id": id, "event": event}).
			WithError(err).Warn("send: не удалось разослать событие")
	}
}

func (uc *SendProposalUseCase) acquire(id uuid.UUID) bool {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	if _, busy := uc.inFlight[id]; busy {
		return false
	}
	uc.inFlight[id] = struct{}{}
	return true
}

func (uc *SendProposalUseCase) release(id uuid.UUID) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	delete(uc.inFlight, id)
}
