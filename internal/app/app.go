// Package app собирает зависимости по конфигурации: хранилище, форматтер,
// доставку, use cases и HTTP роутер. Используется сервером и CLI.
package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/proposal-backend/internal/config"
	"github.com/ignatzorin/proposal-backend/internal/db"
	"github.com/ignatzorin/proposal-backend/internal/domain/entity"
	"github.com/ignatzorin/proposal-backend/internal/domain/repository"
	"github.com/ignatzorin/proposal-backend/internal/formatter"
	"github.com/ignatzorin/proposal-backend/internal/http/middleware"
	"github.com/ignatzorin/proposal-backend/internal/http/router"
	"github.com/ignatzorin/proposal-backend/internal/infrastructure/persistence"
	"github.com/ignatzorin/proposal-backend/internal/interface/http/handler"
	"github.com/ignatzorin/proposal-backend/internal/logger"
	"github.com/ignatzorin/proposal-backend/internal/mailer"
	"github.com/ignatzorin/proposal-backend/internal/usecase/proposal"
	"github.com/ignatzorin/proposal-backend/internal/webhook"
	"github.com/ignatzorin/proposal-backend/internal/ws"
	"github.com/ignatzorin/proposal-backend/migrations"
)

// Store хранилище записей и настроек.
type Store interface {
	repository.ProposalRepository
	repository.PreferenceRepository
	repository.Pinger
}

// Container готовые к работе зависимости.
type Container struct {
	Config    *config.Config
	Store     Store
	Redis     *redis.Client
	Hub       *ws.Hub
	Projector *formatter.Projector

	Normalize  *proposal.NormalizeProposalUseCase
	Create     *proposal.CreateProposalUseCase
	Get        *proposal.GetProposalUseCase
	List       *proposal.ListProposalsUseCase
	Update     *proposal.UpdateProposalUseCase
	Discard    *proposal.DiscardProposalUseCase
	Render     *proposal.RenderProposalUseCase
	Send       *proposal.SendProposalUseCase
	SendEmail  *proposal.SendEmailUseCase
	Preference *proposal.WebhookPreferenceUseCase

	closers []func() error
}

// New подключает хранилище, при необходимости применяет миграции и собирает use cases.
// Hub создаётся, но не запускается: цикл Run запускает вызывающий.
func New(ctx context.Context, cfg *config.Config) (*Container, error) {
	c := &Container{Config: cfg, Hub: ws.NewHub()}

	if err := c.openStore(ctx); err != nil {
		_ = c.Close()
		return nil, err
	}

	c.Projector = formatter.NewProjector(ProjectorOptions(cfg))

	mail, err := newMailSender(ctx, cfg)
	if err != nil {
		_ = c.Close()
		return nil, err
	}

	rules := CommitRules(cfg)
	sendCfg := SendConfig(cfg)

	c.Normalize = proposal.NewNormalizeProposalUseCase()
	c.Create = proposal.NewCreateProposalUseCase(c.Store, rules, nil)
	c.Get = proposal.NewGetProposalUseCase(c.Store)
	c.List = proposal.NewListProposalsUseCase(c.Store)
	c.Update = proposal.NewUpdateProposalUseCase(c.Store, rules, nil)
	c.Discard = proposal.NewDiscardProposalUseCase(c.Store)
	c.Render = proposal.NewRenderProposalUseCase(c.Store, c.Projector, nil)
	c.Send = proposal.NewSendProposalUseCase(c.Store, c.Store, c.Projector,
		webhook.NewClient(webhook.Config{Timeout: cfg.Webhook.Timeout, Opaque: cfg.Webhook.Opaque}),
		c.Hub, sendCfg)
	c.SendEmail = proposal.NewSendEmailUseCase(c.Store, c.Projector, mail)
	c.Preference = proposal.NewWebhookPreferenceUseCase(c.Store, sendCfg)

	return c, nil
}

func (c *Container) openStore(ctx context.Context) error {
	cfg := c.Config
	log := logger.Entry(logrus.Fields{"storage": cfg.StorageDriver})

	switch cfg.StorageDriver {
	case config.StoragePostgres:
		conn, err := db.NewPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		c.closers = append(c.closers, conn.Close)

		var migrationsFS fs.FS = migrations.FS
		if cfg.MigrationsPath != "" {
			migrationsFS = os.DirFS(cfg.MigrationsPath)
		}
		if err := db.RunMigrations(ctx, conn, migrationsFS); err != nil {
			return fmt.Errorf("app: ошибка миграций: %w", err)
		}

		c.Store = persistence.NewPostgresStore(conn)

	case config.StorageRedis:
		c.Redis = persistence.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		c.closers = append(c.closers, c.Redis.Close)

		store := persistence.NewRedisStore(c.Redis)
		if err := store.Ping(ctx); err != nil {
			return fmt.Errorf("app: redis недоступен: %w", err)
		}
		c.Store = store

	default:
		c.Store = persistence.NewMemoryStore()
	}

	log.Info("app: хранилище подключено")
	return nil
}

// newMailSender возвращает nil интерфейс, если отправка почты выключена.
func newMailSender(ctx context.Context, cfg *config.Config) (proposal.MailSender, error) {
	if !cfg.MailEnabled() {
		return nil, nil
	}
	m, err := mailer.NewSES(ctx, cfg.Mail.AWSRegion, cfg.Sender.Email)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// Router HTTP обработчики поверх контейнера.
func (c *Container) Router() (*gin.Engine, error) {
	var sendLimit gin.HandlerFunc
	if c.Redis != nil {
		limit, err := middleware.RedisRateLimitMiddleware(c.Redis, c.Config.RateLimitLimit, c.Config.RateLimitPeriod)
		if err != nil {
			return nil, err
		}
		sendLimit = limit
	}

	return router.SetupRouter(c.Config, router.Handlers{
		Proposal: handler.NewProposalHandler(c.Normalize, c.Create, c.Get, c.List, c.Update, c.Discard, c.Render, c.Send, c.SendEmail),
		Preference: handler.NewPreferenceHandler(c.Preference),
		WS:         handler.NewWSHandler(c.Hub, c.Get, c.Config.AllowedOrigins),
		Health:     handler.NewHealthHandler(c.Store, c.Config.StorageDriver),
	}, sendLimit), nil
}

// Close освобождает соединения в обратном порядке.
func (c *Container) Close() error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	c.closers = nil
	return errors.Join(errs...)
}

// ProjectorOptions настройки представлений из конфигурации.
func ProjectorOptions(cfg *config.Config) formatter.Options {
	opts := formatter.DefaultOptions()
	opts.Sender = formatter.Sender{
		Name:    cfg.Sender.Name,
		Company: cfg.Sender.Company,
		Email:   cfg.Sender.Email,
	}
	opts.CSV = formatter.CSVOptions{
		IncludeEmail: cfg.CSV.IncludeEmail,
		IncludeNotes: cfg.CSV.IncludeNotes,
		Quoting:      formatter.Quoting(cfg.CSV.Quoting),
	}
	return opts
}

func CommitRules(cfg *config.Config) entity.CommitRules {
	return entity.CommitRules{RequireClientEmail: cfg.Form.RequireClientEmail}
}

func SendConfig(cfg *config.Config) proposal.SendConfig {
	return proposal.SendConfig{
		DefaultWebhookURL: cfg.Webhook.DefaultURL,
		SpreadsheetURL:    cfg.Webhook.SpreadsheetURL,
	}
}
