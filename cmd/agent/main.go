package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"certagent/internal/api"
	"certagent/internal/caclient"
	"certagent/internal/credstore"
	"certagent/internal/csr"
	"certagent/internal/enroll"
	"certagent/internal/services"
	"certagent/internal/storage"
	"certagent/internal/utils"
)

func main() {
	config, err := utils.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	logger := utils.NewLogger(config.LogLevel)

	db, err := storage.NewSQLiteDB(config.DatabasePath)
	if err != nil {
		logger.Fatal("Failed to open journal database:", err)
	}
	defer db.Close()

	if err := storage.RunMigrations(db); err != nil {
		logger.Fatal("Failed to run migrations:", err)
	}

	metrics := services.NewMetricsService(config, logger)

	caClient, err := caclient.NewClient(config, logger, metrics)
	if err != nil {
		logger.Fatal("Failed to build CA client:", err)
	}

	orchestrator := enroll.NewOrchestrator(config, logger, metrics,
		csr.NewManager(logger), caClient, credstore.NewStore(), db)

	server := api.NewServer(config, logger, orchestrator, metrics, db)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", config.APIPort),
		Handler:      server,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  config.IdleTimeout,
	}

	go func() {
		logger.Infof("Starting certagent API server on port %d", config.APIPort)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start:", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), config.GracefulShutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown:", err)
	}

	logger.Info("Server exited")
}
