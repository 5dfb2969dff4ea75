package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/proposal-backend/internal/interface/http/response"
)

// UUIDValidator проверяет, что параметр с указанным именем является валидным UUID,
// и кладёт разобранное значение в контекст под ключом contextKey.
// Использование: router.GET("/proposals/:id", UUIDValidator("id", "proposalID"), handler.GetProposal)
func UUIDValidator(paramName, contextKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		idStr := c.Param(paramName)
		if idStr == "" {
			response.BadRequest(c, "параметр "+paramName+" обязателен")
			c.Abort()
			return
		}

		id, err := uuid.Parse(idStr)
		if err != nil {
			response.BadRequest(c, "параметр "+paramName+" должен быть валидным UUID")
			c.Abort()
			return
		}

		c.Set(contextKey, id)
		c.Next()
	}
}
