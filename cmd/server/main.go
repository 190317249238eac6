package main

import (
	"log"
	"time"

	"festival-bot-backend/internal/config"
	"festival-bot-backend/internal/database"
	"festival-bot-backend/internal/handlers"
	"festival-bot-backend/internal/middleware"
	"festival-bot-backend/internal/services"
	"festival-bot-backend/internal/sticker"
	"festival-bot-backend/internal/telegram"
	"festival-bot-backend/internal/ws"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           Festival Bot API
// @version         1.0
// @description     Admin backend for the festival Telegram bot: participants, slots, quest, sticker generation and broadcasts
// @host            localhost:8080
// @BasePath        /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Enter "Bearer {token}"

func main() {
	cfg := config.Load()

	db := database.Connect(cfg)
	database.AutoMigrate(db)

	store := database.NewStore(db)
	hub := ws.NewHub()

	configStore := services.NewConfigStore(store, 5*time.Minute)
	authService := services.NewAuthService(db, cfg.JWTSecret, time.Duration(cfg.JWTTTLHours)*time.Hour)
	participantService := services.NewParticipantService(store)
	bookingService := services.NewSlotBookingService(store, "dance")
	questTracker := services.NewQuestTracker(store, configStore.Int("QUEST_TOTAL_STEPS", 9))
	statsService := services.NewStatsService(db)
	queryService := services.NewAdminQueryService(db)

	if cfg.BotToken == "" {
		log.Fatal("BOT_TOKEN is required")
	}
	botClient := telegram.NewClient(cfg.BotToken)
	me, err := botClient.GetMe()
	if err != nil {
		log.Fatalf("failed to reach Bot API: %v", err)
	}
	log.Printf("bot authorized as @%s", me.Username)

	generator := sticker.NewGenerator(cfg.ReplicateAPIToken, cfg.ReplicateAPIURL, cfg.ComposeAPIURL, botClient, me.Username)
	notifier := telegram.NewNotifier(botClient, hub, configStore)
	pipeline := services.NewGenerationPipeline(store, generator, notifier, configStore, cfg.GenerationQueueCap)
	pipeline.Start(cfg.GenerationWorkers)
	defer pipeline.Stop()

	broadcastService := services.NewBroadcastService(store, botClient)
	broadcastStop := make(chan struct{})
	go broadcastService.RunSweeper(30*time.Second, broadcastStop)
	defer close(broadcastStop)

	stateManager := telegram.NewStateManager()
	updateHandler := telegram.NewUpdateHandler(
		botClient, stateManager, configStore,
		participantService, bookingService, questTracker, pipeline, hub,
	)
	botManager := telegram.NewBotManager(
		botClient, updateHandler, configStore,
		cfg.WebhookBaseURL, cfg.WebhookSecret,
		time.Duration(cfg.PollInterval)*time.Second,
	)
	botManager.Start()
	defer botManager.Stop()

	authHandler := handlers.NewAuthHandler(authService)
	participantsHandler := handlers.NewParticipantsHandler(queryService, participantService)
	slotsHandler := handlers.NewSlotsHandler(queryService)
	statsHandler := handlers.NewStatsHandler(statsService, queryService, configStore)
	configHandler := handlers.NewConfigHandler(store, configStore, queryService)
	broadcastsHandler := handlers.NewBroadcastsHandler(queryService)
	botHandler := handlers.NewBotHandler(participantService, questTracker)
	wsHandler := handlers.NewWSHandler(hub)

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Bot-API-Key"},
		AllowCredentials: true,
	}))

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.GET("/health", statsHandler.Health)
	r.GET("/ws/dashboard", wsHandler.HandleWebSocket)
	r.POST("/webhook/bot/:secret", botManager.HandleWebhook)

	api := r.Group("/api/v1")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
		}

		participants := api.Group("/participants")
		participants.Use(middleware.JWTAuth(authService))
		{
			participants.GET("", participantsHandler.List)
			participants.GET("/:id", participantsHandler.Get)
			participants.DELETE("/:id", participantsHandler.Delete)
			participants.POST("/:id/reset", participantsHandler.Reset)
		}

		slots := api.Group("/slots")
		slots.Use(middleware.JWTAuth(authService))
		{
			slots.GET("", slotsHandler.List)
			slots.POST("", slotsHandler.Create)
			slots.PUT("/:id", slotsHandler.Update)
			slots.DELETE("/:id", slotsHandler.Delete)
		}

		stats := api.Group("/stats")
		stats.Use(middleware.JWTAuth(authService))
		{
			stats.GET("/dashboard", statsHandler.Dashboard)
			stats.GET("/quest-winners", statsHandler.QuestWinners)
			stats.GET("/recent-jobs", statsHandler.RecentJobs)
			stats.GET("/admin-logs", statsHandler.AdminLogs)
		}

		configGroup := api.Group("/config")
		configGroup.Use(middleware.JWTAuth(authService))
		{
			configGroup.GET("", configHandler.List)
			configGroup.PUT("", configHandler.Upsert)
			configGroup.POST("/refresh", configHandler.Refresh)
		}

		broadcasts := api.Group("/broadcasts")
		broadcasts.Use(middleware.JWTAuth(authService))
		{
			broadcasts.GET("", broadcastsHandler.List)
			broadcasts.POST("", broadcastsHandler.Create)
			broadcasts.PUT("/:id", broadcastsHandler.Update)
			broadcasts.DELETE("/:id", broadcastsHandler.Delete)
		}

		bot := api.Group("/bot")
		bot.Use(middleware.BotAuth(cfg.BotAPIKey))
		{
			bot.POST("/quest-step", botHandler.RegisterQuestStep)
		}
	}

	log.Printf("server starting on :%s", cfg.ServerPort)
	if err := r.Run(":" + cfg.ServerPort); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}
