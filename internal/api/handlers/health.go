package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"certagent/internal/enroll"
	"certagent/internal/utils"
)

type HealthHandler struct {
	config       *utils.Config
	logger       *utils.Logger
	orchestrator *enroll.Orchestrator
	startTime    time.Time
}

func NewHealthHandler(config *utils.Config, logger *utils.Logger, orchestrator *enroll.Orchestrator) *HealthHandler {
	return &HealthHandler{
		config:       config,
		logger:       logger,
		orchestrator: orchestrator,
		startTime:    time.Now(),
	}
}

func (h *HealthHandler) Check(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":             "healthy",
		"service":            "certagent",
		"environment":        h.config.Environment,
		"uptime_seconds":     int(time.Since(h.startTime).Seconds()),
		"stored_credentials": len(h.orchestrator.Aliases()),
	})
}
