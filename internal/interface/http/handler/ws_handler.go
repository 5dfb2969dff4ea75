package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/ignatzorin/proposal-backend/internal/interface/http/response"
	"github.com/ignatzorin/proposal-backend/internal/usecase/proposal"
	"github.com/ignatzorin/proposal-backend/internal/ws"
)

// WSHandler подписывает клиента на события доставки одного предложения.
type WSHandler struct {
	hub      *ws.Hub
	getUC    *proposal.GetProposalUseCase
	upgrader websocket.Upgrader
}

func NewWSHandler(hub *ws.Hub, getUC *proposal.GetProposalUseCase, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		hub:   hub,
		getUC: getUC,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				for _, allowed := range allowedOrigins {
					if allowed == "*" || origin == allowed {
						return true
					}
				}
				return false
			},
		},
	}
}

// Handle обслуживает GET /api/proposals/:id/ws
func (h *WSHandler) Handle(c *gin.Context) {
	proposalID, err := getProposalID(c)
	if err != nil {
		response.BadRequest(c, "некорректный ID предложения")
		return
	}

	if _, err := h.getUC.Execute(c.Request.Context(), proposalID); err != nil {
		response.Error(c, err)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade уже записал ответ клиенту.
		return
	}

	client := ws.NewClient(conn, h.hub, proposalID)
	h.hub.Register(client)

	client.Run(c.Request.Context())
}
