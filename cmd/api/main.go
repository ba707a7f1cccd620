package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"alfredoptarigan/interview-prep/internal/config"
	"alfredoptarigan/interview-prep/internal/handlers"
	"alfredoptarigan/interview-prep/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()
	log := config.NewLogger(cfg)
	if !cfg.EnvFileLoaded {
		log.Info("No .env file found. Using environment and default values.")
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	log.Info("Config loaded successfully")

	// Initialize the completion gateway
	gateway, err := services.NewGeminiGateway(context.Background(), services.GeminiOptions{
		APIKey:          cfg.Gemini.APIKey,
		Model:           cfg.Gemini.Model,
		MaxOutputTokens: int32(cfg.Gemini.MaxOutputTokens),
		Timeout:         cfg.Gemini.Timeout,
		BaseURL:         cfg.Gemini.BaseURL,
	}, log)
	if err != nil {
		log.Fatalf("Failed to initialize Gemini AI: %v", err)
	}
	log.WithField("model", cfg.Gemini.Model).Info("Gemini AI initialized successfully")

	// Initialize services
	interviewService := services.NewInterviewService(
		services.NewTextExtractor(cfg.Upload.MaxFileSize),
		gateway,
		services.NewResponseNormalizer(),
		services.NewPromptBuilder(cfg.Prompt.MaxResumeChars),
		log,
	)
	log.Info("Services initialized successfully")

	// Initialize handlers
	resumeHandler := handlers.NewResumeHandler(
		services.NewUploadReader(cfg.Upload.MaxFileSize),
		interviewService,
	)
	questionsHandler := handlers.NewQuestionsHandler(interviewService)

	app := handlers.NewApp(handlers.AppConfig{
		BodyLimit: cfg.Upload.BodyLimit,
		AccessLog: true,
	}, resumeHandler, questionsHandler)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Info("Shutting down server...")
		if err := app.Shutdown(); err != nil {
			log.WithError(err).Error("Server forced to shutdown")
		}
	}()

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.WithFields(logrus.Fields{
		"addr": addr,
		"env":  cfg.Server.Env,
	}).Info("Server starting")

	if err := app.Listen(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
