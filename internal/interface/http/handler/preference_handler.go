package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/proposal-backend/internal/interface/http/dto"
	"github.com/ignatzorin/proposal-backend/internal/interface/http/response"
	"github.com/ignatzorin/proposal-backend/internal/usecase/proposal"
)

type PreferenceHandler struct {
	webhookUC *proposal.WebhookPreferenceUseCase
}

func NewPreferenceHandler(webhookUC *proposal.WebhookPreferenceUseCase) *PreferenceHandler {
	return &PreferenceHandler{webhookUC: webhookUC}
}

func (h *PreferenceHandler) GetWebhook(c *gin.Context) {
	pref, err := h.webhookUC.Get(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, pref)
}

func (h *PreferenceHandler) SetWebhook(c *gin.Context) {
	var req dto.WebhookPreferenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "некорректные данные запроса")
		return
	}

	pref, err := h.webhookUC.Set(c.Request.Context(), req.WebhookURL)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, pref)
}
