package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ignatzorin/proposal-backend/internal/config"
	"github.com/ignatzorin/proposal-backend/internal/http/middleware"
	"github.com/ignatzorin/proposal-backend/internal/interface/http/handler"
)

// Handlers все обработчики, которые монтирует роутер.
type Handlers struct {
	Proposal   *handler.ProposalHandler
	Preference *handler.PreferenceHandler
	WS         *handler.WSHandler
	Health     *handler.HealthHandler
}

// SetupRouter собирает gin.Engine. sendLimit ограничивает исходящие отправки;
// nil означает лимит в памяти процесса по настройкам cfg.
func SetupRouter(cfg *config.Config, h Handlers, sendLimit gin.HandlerFunc) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	if sendLimit == nil {
		sendLimit = middleware.RateLimitMiddleware(cfg.RateLimitLimit, cfg.RateLimitPeriod)
	}

	r := gin.Default()
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	r.GET("/health", h.Health.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")

	byID := middleware.UUIDValidator("id", handler.ContextProposalIDKey)

	proposals := api.Group("/proposals")
	{
		proposals.POST("/normalize", h.Proposal.NormalizeProposal)
		proposals.POST("", h.Proposal.CreateProposal)
		proposals.GET("", h.Proposal.ListProposals)
		proposals.GET("/:id", byID, h.Proposal.GetProposal)
		proposals.PUT("/:id", byID, h.Proposal.UpdateProposal)
		proposals.DELETE("/:id", byID, h.Proposal.DeleteProposal)

		proposals.GET("/:id/email", byID, h.Proposal.GetEmail)
		proposals.GET("/:id/csv", byID, h.Proposal.ExportCSV)
		proposals.GET("/:id/payload", byID, h.Proposal.GetPayload)

		proposals.POST("/:id/send", byID, sendLimit, h.Proposal.SendProposal)
		proposals.POST("/:id/email/send", byID, sendLimit, h.Proposal.SendEmail)

		if h.WS != nil {
			proposals.GET("/:id/ws", byID, h.WS.Handle)
		}
	}

	prefs := api.Group("/preferences")
	{
		prefs.GET("/webhook", h.Preference.GetWebhook)
		prefs.PUT("/webhook", h.Preference.SetWebhook)
	}

	return r
}
