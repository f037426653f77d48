package main

import (
	"context"
	"log"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"io.winapps.microjournal/internal/config"
	"io.winapps.microjournal/internal/db"
	firebaseutil "io.winapps.microjournal/internal/firebase"
	"io.winapps.microjournal/internal/handlers"
	"io.winapps.microjournal/internal/identity"
	"io.winapps.microjournal/internal/journal"
	"io.winapps.microjournal/internal/messaging"
	"io.winapps.microjournal/internal/middleware"
	"io.winapps.microjournal/internal/prompts"
	"io.winapps.microjournal/internal/scheduler"
	"io.winapps.microjournal/internal/store"
	"io.winapps.microjournal/internal/transcribe"
	"io.winapps.microjournal/internal/verification"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	zlog, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zlog.Sync()
	logger := zlog.Sugar()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalw("Failed to load configuration", "error", err)
	}

	// Initialize Firebase
	firebaseApp, err := firebaseutil.InitFirebase()
	if err != nil {
		logger.Fatalw("Failed to initialize Firebase", "error", err)
	}

	// Initialize PostgreSQL
	postgresDB, err := db.InitPostgres()
	if err != nil {
		logger.Fatalw("Failed to initialize PostgreSQL", "error", err)
	}
	defer postgresDB.Close()

	// Initialize Redis
	redisClient, err := db.InitRedis()
	if err != nil {
		logger.Fatalw("Failed to initialize Redis", "error", err)
	}
	defer redisClient.Close()

	// Stores
	users := store.NewUserStore(postgresDB)
	mappings := store.NewMappingStore(postgresDB)
	entries := store.NewEntryStore(postgresDB)
	sentPrompts := store.NewPromptStore(postgresDB)
	codes := store.NewVerificationStore(postgresDB)

	// Core components
	resolver := identity.NewResolver(mappings, redisClient, logger)
	catalog := prompts.NewCatalog(rand.New(rand.NewSource(time.Now().UnixNano())), logger)
	writer := journal.NewWriter(entries, sentPrompts, logger)
	pipeline := transcribe.NewPipeline(transcribe.Config{
		WhatsAppAPIURL:      cfg.WhatsAppAPIURL,
		WhatsAppAccessToken: cfg.WhatsAppAccessToken,
		OpenAIAPIKey:        cfg.OpenAIAPIKey,
	}, logger)
	transport := messaging.NewTwilioTransport(messaging.TwilioConfig{
		AccountSID:   cfg.TwilioAccountSID,
		AuthToken:    cfg.TwilioAuthToken,
		WhatsAppFrom: cfg.TwilioWhatsAppFrom,
		SMSFrom:      cfg.TwilioSMSFrom,
	})
	verifier := verification.NewService(codes, users, resolver, transport, logger)
	sched := scheduler.New(users, sentPrompts, catalog, transport, logger)

	// Internal prompt dispatch, driven by the per-minute cron
	cronDriver := scheduler.NewCronDriver(sched)
	if err := cronDriver.Start(); err != nil {
		logger.Fatalw("Failed to start prompt scheduler", "error", err)
	}
	defer cronDriver.Stop()

	// Hourly purge of expired verification codes
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for range ticker.C {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			if n, err := codes.DeleteExpired(ctx, time.Now()); err != nil {
				logger.Warnw("Failed to purge expired verification codes", "error", err)
			} else if n > 0 {
				logger.Infow("Purged expired verification codes", "count", n)
			}
			cancel()
		}
	}()

	// Initialize Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.RequestLoggingMiddleware(logger))
	router.Use(middleware.RecoveryMiddleware(logger))

	// Initialize handlers
	webhookHandler := handlers.NewWebhookHandler(resolver, writer, sentPrompts, pipeline,
		handlers.NewRedisDeduper(redisClient), cfg.WhatsAppVerifyToken, logger)
	entryHandler := handlers.NewEntryHandler(writer, logger)
	prefsHandler := handlers.NewPreferencesHandler(users, logger)
	verifyHandler := handlers.NewVerifyHandler(verifier, logger)
	cronHandler := handlers.NewCronHandler(sched, cfg.CronAPIKey, logger)

	// Define routes
	v1 := router.Group("/api/v1")
	{
		webhook := v1.Group("/webhook")
		{
			webhook.GET("/whatsapp", webhookHandler.VerifyWebhook)
			webhook.POST("/whatsapp", webhookHandler.ReceiveMessage)
		}

		cron := v1.Group("/cron")
		{
			cron.GET("/daily-prompts", cronHandler.TriggerDailyPrompts)
		}

		// Protected web surface
		authed := v1.Group("")
		authed.Use(middleware.AuthMiddleware(firebaseApp))
		{
			entriesGroup := authed.Group("/entries")
			{
				entriesGroup.POST("/create-entry", entryHandler.CreateEntry)
				entriesGroup.POST("/get-entry", entryHandler.GetEntry)
				entriesGroup.POST("/list-entries", entryHandler.ListEntries)
				entriesGroup.POST("/update-entry", entryHandler.UpdateEntry)
				entriesGroup.POST("/delete-entry", entryHandler.DeleteEntry)
			}

			account := authed.Group("/account")
			{
				account.POST("/update-preferences", prefsHandler.UpdatePreferences)
				account.POST("/verify-phone", verifyHandler.VerifyPhone)
			}
		}
	}

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		logger.Infow("Server starting", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalw("Failed to start server", "error", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Infow("Shutting down server")

	// Give a 5 second timeout for graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatalw("Server forced to shutdown", "error", err)
	}

	logger.Infow("Server exited")
}
