// File: frontline/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"frontline/config"
	"frontline/cron"
	"frontline/database"
	appointmentRepo "frontline/database/repository/appointment"
	chatRepo "frontline/database/repository/chat"
	facilityRepo "frontline/database/repository/facility"
	sessionRepo "frontline/database/repository/session"
	"frontline/handlers"
	"frontline/middleware"
	"frontline/routes"
	"frontline/services/conversation"
	ai "frontline/services/intelligence"
	"frontline/services/matching"
	"frontline/services/tasks"
	"frontline/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitCache()

	ctx := context.Background()
	geminiClient, err := ai.NewGeminiClient(ctx, config.AppConfig.GeminiAPIKey, config.AppConfig.GeminiModel)
	if err != nil {
		logger.Sugar().Fatalf("main: failed to initialize Gemini client: %v", err)
	}
	engine := ai.NewEngine(geminiClient)

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())

	// repositories.
	facilities := facilityRepo.NewCachedFacilityRepo(
		facilityRepo.NewMongoFacilityRepo(),
		utils.GetCacheClient(),
		10*time.Minute,
	)
	chats := chatRepo.NewMongoChatRepo()
	sessions := sessionRepo.NewMongoSessionRepo()
	appointments := appointmentRepo.NewMongoAppointmentRepo()

	// services.
	matchingServiceInstance := &matching.DefaultMatchingService{
		FacilityRepo: facilities,
	}

	reminderScheduler := tasks.NewAsynqReminderScheduler()
	defer reminderScheduler.Close()

	conversationService := &conversation.Service{
		Engine:          engine,
		Matching:        matchingServiceInstance,
		FacilityRepo:    facilities,
		ChatRepo:        chats,
		SessionRepo:     sessions,
		AppointmentRepo: appointments,
		Reminders:       reminderScheduler,
		DefaultDeadline: time.Duration(config.AppConfig.RequestDeadlineMs) * time.Millisecond,
		Logger:          logger,
	}

	// Assemble the handler bundle.
	handlerBundle := &routes.HandlerBundle{
		Frontline: handlers.NewFrontlineHandler(conversationService),
		Facility:  handlers.NewFacilityHandler(matchingServiceInstance, chats),
		Admin:     handlers.NewAdminHandler(appointments),
	}

	// Register routes with the assembled handler bundle.
	routes.RegisterRoutes(router, handlerBundle)

	// Background reminder worker and health monitor.
	cron.InitReminderWorker(logger)
	utils.StartHealthMonitor([]*redis.Client{utils.GetCacheClient()}, database.MongoClient)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
