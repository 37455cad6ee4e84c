package handlers

import (
	"database/sql"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"certagent/internal/storage"
	"certagent/internal/utils"
)

const maxEventLimit = 1000

type EventHandler struct {
	db     *sql.DB
	logger *utils.Logger
}

func NewEventHandler(db *sql.DB, logger *utils.Logger) *EventHandler {
	return &EventHandler{db: db, logger: logger}
}

func (h *EventHandler) List(c *gin.Context) {
	limit := 100
	if value := c.Query("limit"); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil || parsed < 1 || parsed > maxEventLimit {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
			return
		}
		limit = parsed
	}

	if h.db == nil {
		c.JSON(http.StatusOK, gin.H{"events": []*storage.IssuanceEvent{}})
		return
	}

	events, err := storage.GetIssuanceEvents(h.db, limit)
	if err != nil {
		h.logger.Error("Failed to list issuance events:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list events"})
		return
	}

	if events == nil {
		events = []*storage.IssuanceEvent{}
	}

	c.JSON(http.StatusOK, gin.H{"events": events})
}
