package main

import (
	"fmt"
	"os"

	"github.com/konelease/leasing-workflow/internal/auth"
	"github.com/konelease/leasing-workflow/internal/config"
	"github.com/konelease/leasing-workflow/internal/db"
	"github.com/konelease/leasing-workflow/internal/document"
	"github.com/konelease/leasing-workflow/internal/excel"
	httphandler "github.com/konelease/leasing-workflow/internal/http"
	"github.com/konelease/leasing-workflow/internal/http/middleware"
	"github.com/konelease/leasing-workflow/internal/logger"
	"github.com/konelease/leasing-workflow/internal/notify"
	"github.com/konelease/leasing-workflow/internal/pdf"
	"github.com/konelease/leasing-workflow/internal/repository"
	"github.com/konelease/leasing-workflow/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Environment)

	database, err := db.New(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}

	workflowRepo := repository.NewWorkflowRepository(database)
	notificationRepo := repository.NewNotificationRepository(database)

	documents, err := document.NewFileStore(cfg.Documents.Dir)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init document store")
	}

	dispatcher := notify.NewDispatcher(notificationRepo, cfg.Notify.QueueSize, cfg.Notify.Timeout, log)
	defer dispatcher.Close()

	workflowService := service.NewWorkflowService(
		workflowRepo,
		dispatcher,
		documents,
		pdf.NewGenerator(),
		excel.NewGenerator(),
		cfg,
		log,
	)

	tokenParser := auth.NewParser(cfg.Auth.AccessSecret)
	handler := httphandler.NewHandler(workflowService, notificationRepo, log)
	authMiddleware := middleware.Auth(tokenParser)
	router := httphandler.NewRouter(handler, authMiddleware, cfg.Environment)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	log.Info().Str("addr", addr).Msg("starting leasing service")

	if err := router.Run(addr); err != nil {
		log.Error().Err(err).Msg("server stopped")
		os.Exit(1)
	}
}
