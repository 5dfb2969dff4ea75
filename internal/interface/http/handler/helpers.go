package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ContextProposalIDKey ключ, под которым middleware.UUIDValidator кладёт разобранный id.
const ContextProposalIDKey = "proposalID"

// getProposalID берёт id, проверенный middleware, или разбирает параметр сам.
func getProposalID(c *gin.Context) (uuid.UUID, error) {
	if v, ok := c.Get(ContextProposalIDKey); ok {
		if id, ok := v.(uuid.UUID); ok {
			return id, nil
		}
	}
	return uuid.Parse(c.Param("id"))
}

func parseIntQuery(c *gin.Context, key string, defaultValue int) int {
	valueStr := c.Query(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil || value < 0 {
		return defaultValue
	}

	return value
}

func parseBoolQuery(c *gin.Context, key string) bool {
	value, err := strconv.ParseBool(c.Query(key))
	return err == nil && value
}
