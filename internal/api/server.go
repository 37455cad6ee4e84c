package api

import (
	"database/sql"
	"net/http"

	"github.com/gin-gonic/gin"

	"certagent/internal/api/handlers"
	"certagent/internal/api/middleware"
	"certagent/internal/enroll"
	"certagent/internal/services"
	"certagent/internal/utils"
)

type Server struct {
	config       *utils.Config
	logger       *utils.Logger
	orchestrator *enroll.Orchestrator
	metrics      *services.MetricsService
	db           *sql.DB
	engine       *gin.Engine
}

func NewServer(config *utils.Config, logger *utils.Logger, orchestrator *enroll.Orchestrator,
	metrics *services.MetricsService, db *sql.DB) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	server := &Server{
		config:       config,
		logger:       logger,
		orchestrator: orchestrator,
		metrics:      metrics,
		db:           db,
		engine:       engine,
	}

	server.setupMiddleware()
	server.setupRoutes()

	return server
}

func (s *Server) setupMiddleware() {
	s.engine.Use(gin.Recovery())
	s.engine.Use(middleware.Logger(s.logger))
	s.engine.Use(middleware.CORS())
	s.engine.Use(middleware.RateLimit(middleware.NewRateLimiter(s.config.RateLimitPerMinute)))
}

func (s *Server) setupRoutes() {
	s.engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "certagent",
		})
	})

	if s.config.MetricsEnabled && s.metrics != nil {
		s.engine.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	}

	api := s.engine.Group("/api/v1")
	api.Use(middleware.JWTAuth(s.config.APIAuthSecret, s.logger))
	{
		certHandler := handlers.NewCertificateHandler(s.config, s.logger, s.orchestrator)
		api.POST("/certificates", certHandler.Enroll)
		api.GET("/certificates", certHandler.List)
		api.GET("/certificates/:alias", certHandler.Get)
		api.GET("/certificates/:alias/validity", certHandler.Validity)
		api.DELETE("/certificates/:alias", certHandler.Delete)

		eventHandler := handlers.NewEventHandler(s.db, s.logger)
		api.GET("/events", eventHandler.List)

		healthHandler := handlers.NewHealthHandler(s.config, s.logger, s.orchestrator)
		api.GET("/health", healthHandler.Check)
	}
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.engine.ServeHTTP(w, r)
}
