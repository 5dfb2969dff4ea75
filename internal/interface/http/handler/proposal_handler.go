package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/proposal-backend/internal/interface/http/dto"
	"github.com/ignatzorin/proposal-backend/internal/interface/http/response"
	"github.com/ignatzorin/proposal-backend/internal/pkg/apperror"
	"github.com/ignatzorin/proposal-backend/internal/usecase/proposal"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

type ProposalHandler struct {
	normalizeUC *proposal.NormalizeProposalUseCase
	createUC    *proposal.CreateProposalUseCase
	getUC       *proposal.GetProposalUseCase
	listUC      *proposal.ListProposalsUseCase
	updateUC    *proposal.UpdateProposalUseCase
	discardUC   *proposal.DiscardProposalUseCase
	renderUC    *proposal.RenderProposalUseCase
	sendUC      *proposal.SendProposalUseCase
	sendEmailUC *proposal.SendEmailUseCase
}

func NewProposalHandler(
	normalizeUC *proposal.NormalizeProposalUseCase,
	createUC *proposal.CreateProposalUseCase,
	getUC *proposal.GetProposalUseCase,
	listUC *proposal.ListProposalsUseCase,
	updateUC *proposal.UpdateProposalUseCase,
	discardUC *proposal.DiscardProposalUseCase,
	renderUC *proposal.RenderProposalUseCase,
	sendUC *proposal.SendProposalUseCase,
	sendEmailUC *proposal.SendEmailUseCase,
) *ProposalHandler {
	return &ProposalHandler{
		normalizeUC: normalizeUC,
		createUC:    createUC,
		getUC:       getUC,
		listUC:      listUC,
		updateUC:    updateUC,
		discardUC:   discardUC,
		renderUC:    renderUC,
		sendUC:      sendUC,
		sendEmailUC: sendEmailUC,
	}
}

// NormalizeProposal POST /api/proposals/normalize
// Возвращает канонические значения полей, не проверяя полноту.
func (h *ProposalHandler) NormalizeProposal(c *gin.Context) {
	var req dto.ProposalDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "некорректные данные запроса")
		return
	}

	fields, err := h.normalizeUC.Execute(req.ToDraft())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToFieldsResponse(fields))
}

// CreateProposal POST /api/proposals
func (h *ProposalHandler) CreateProposal(c *gin.Context) {
	var req dto.ProposalDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "некорректные данные запроса")
		return
	}

	created, err := h.createUC.Execute(c.Request.Context(), req.ToDraft())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.ToProposalResponse(created))
}

func (h *ProposalHandler) GetProposal(c *gin.Context) {
	proposalID, err := getProposalID(c)
	if err != nil {
		response.BadRequest(c, "некорректный ID предложения")
		return
	}

	p, err := h.getUC.Execute(c.Request.Context(), proposalID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToProposalResponse(p))
}

// ListProposals GET /api/proposals?limit=&offset=
func (h *ProposalHandler) ListProposals(c *gin.Context) {
	limit := parseIntQuery(c, "limit", defaultListLimit)
	if limit == 0 {
		limit = defaultListLimit
	}
	limit = min(limit, maxListLimit)
	offset := parseIntQuery(c, "offset", 0)

	proposals, err := h.listUC.Execute(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	total := len(proposals)
	start := min(offset, total)
	end := start + min(limit, total-start)

	response.Paginated(c, dto.ToProposalResponses(proposals[start:end]), total, limit, offset)
}

// UpdateProposal PUT /api/proposals/:id
func (h *ProposalHandler) UpdateProposal(c *gin.Context) {
	proposalID, err := getProposalID(c)
	if err != nil {
		response.BadRequest(c, "некорректный ID предложения")
		return
	}

	var req dto.ProposalDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "некорректные данные запроса")
		return
	}

	updated, err := h.updateUC.Execute(c.Request.Context(), proposalID, req.ToDraft())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToProposalResponse(updated))
}

func (h *ProposalHandler) DeleteProposal(c *gin.Context) {
	proposalID, err := getProposalID(c)
	if err != nil {
		response.BadRequest(c, "некорректный ID предложения")
		return
	}

	if err := h.discardUC.Execute(c.Request.Context(), proposalID); err != nil {
		response.Error(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *ProposalHandler) GetEmail(c *gin.Context) {
	proposalID, err := getProposalID(c)
	if err != nil {
		response.BadRequest(c, "некорректный ID предложения")
		return
	}

	view, err := h.renderUC.Email(c.Request.Context(), proposalID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, view)
}

// ExportCSV GET /api/proposals/:id/csv отдаёт файл, а не JSON.
func (h *ProposalHandler) ExportCSV(c *gin.Context) {
	proposalID, err := getProposalID(c)
	if err != nil {
		response.BadRequest(c, "некорректный ID предложения")
		return
	}

	export, err := h.renderUC.CSV(c.Request.Context(), proposalID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename))
	c.Data(http.StatusOK, export.ContentType, []byte(export.Content))
}

func (h *ProposalHandler) GetPayload(c *gin.Context) {
	proposalID, err := getProposalID(c)
	if err != nil {
		response.BadRequest(c, "некорректный ID предложения")
		return
	}

	payload, err := h.renderUC.Payload(c.Request.Context(), proposalID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, payload)
}

// SendProposal POST /api/proposals/:id/send[?async=true]
func (h *ProposalHandler) SendProposal(c *gin.Context) {
	proposalID, err := getProposalID(c)
	if err != nil {
		response.BadRequest(c, "некорректный ID предложения")
		return
	}

	var req dto.SendProposalRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, "некорректные данные запроса")
			return
		}
	}

	input := proposal.SendInput{ProposalID: proposalID, WebhookURL: req.WebhookURL}

	if parseBoolQuery(c, "async") {
		accepted, err := h.sendUC.ExecuteAsync(c.Request.Context(), input)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.Accepted(c, dto.ToSendProposalResponse(accepted))
		return
	}

	result, err := h.sendUC.Execute(c.Request.Context(), input)
	if err != nil {
		if apperror.IsDeliveryFailure(err) && result != nil {
			c.JSON(http.StatusBadGateway, response.Response{
				Success: false,
				Data:    dto.ToSendProposalResponse(result),
				Error: &response.ErrorInfo{
					Code:    string(apperror.ErrCodeDeliveryFailure),
					Message: result.Outcome.Reason,
				},
			})
			return
		}
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToSendProposalResponse(result))
}

// SendEmail POST /api/proposals/:id/email/send
func (h *ProposalHandler) SendEmail(c *gin.Context) {
	proposalID, err := getProposalID(c)
	if err != nil {
		response.BadRequest(c, "некорректный ID предложения")
		return
	}

	result, err := h.sendEmailUC.Execute(c.Request.Context(), proposalID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}
