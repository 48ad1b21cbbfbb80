package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"itstore-assistant/internal/config"
	"itstore-assistant/internal/handler"
	"itstore-assistant/internal/repository"
	"itstore-assistant/internal/service"
	"itstore-assistant/internal/taxonomy"
	"itstore-assistant/pkg/logger"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.Format); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("IT Store Assistant starting",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("git_commit", GitCommit))

	// Set Gin mode
	gin.SetMode(cfg.Server.GinMode)

	// Product catalog (MongoDB)
	catalog, err := repository.NewCatalogRepository(&cfg.Mongo)
	if err != nil {
		logger.Fatal("Failed to connect to product catalog", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = catalog.Close(ctx)
	}()
	logger.Info("Connected to product catalog",
		zap.String("database", cfg.Mongo.Database),
		zap.String("collection", cfg.Mongo.Collection))

	// Search-log store (PostgreSQL, optional)
	var searchLog *repository.PostgresRepository
	if cfg.PostgreSQL.Enabled {
		searchLog, err = repository.NewPostgresRepository(
			cfg.GetPostgreSQLDSN(),
			cfg.PostgreSQL.MaxConnections,
			cfg.PostgreSQL.MaxIdleConnections,
		)
		if err != nil {
			logger.Fatal("Failed to connect to search-log database", zap.Error(err))
		}
		defer searchLog.Close()
		logger.Info("Connected to search-log database")
	} else {
		logger.Info("Search-log database not configured, analytics logging disabled")
	}

	// Completion model client
	completer := service.NewCompletionClient(&cfg.OpenAI)
	if cfg.OpenAI.Enabled {
		logger.Info("Completion client initialized",
			zap.String("api_base", cfg.OpenAI.APIBase),
			zap.String("model", cfg.OpenAI.Model))
	} else {
		logger.Warn("Completion API disabled, using deterministic extraction and templated responses")
	}

	// Services
	tax := taxonomy.Default()
	extractor := service.NewEntityExtractor(completer, tax)
	composer := service.NewResponseComposer(completer)

	var searchLogger service.SearchLogger
	if searchLog != nil {
		searchLogger = searchLog
	}
	chatService := service.NewChatService(catalog, extractor, composer, tax, searchLogger)

	// Handlers
	chatHandler := handler.NewChatHandler(chatService)
	productsHandler := handler.NewProductsHandler(chatService, cfg.Search.DefaultLimit, cfg.Search.MaxLimit)

	var feedbackStore handler.FeedbackStore
	if searchLog != nil {
		feedbackStore = searchLog
	}
	feedbackHandler := handler.NewFeedbackHandler(feedbackStore)

	// Setup Gin router
	router := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.Server.AllowedOrigins}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Content-Type", "Authorization"}
	router.Use(cors.New(corsConfig))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":     "healthy",
			"service":    "itstore-assistant",
			"version":    Version,
			"build_time": BuildTime,
			"git_commit": GitCommit,
		})
	})

	// Version endpoint
	router.GET("/version", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"version":    Version,
			"build_time": BuildTime,
			"git_commit": GitCommit,
		})
	})

	// API routes
	apiV1 := router.Group("/api/v1")
	{
		apiV1.POST("/chat", chatHandler.Chat)

		apiV1.GET("/products/trending", productsHandler.Trending)
		apiV1.GET("/products/:id/recommendations", productsHandler.Recommendations)
		apiV1.POST("/products/insights", productsHandler.Insights)

		apiV1.POST("/feedback", feedbackHandler.Submit)
	}

	// Start server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info("Starting server", zap.String("addr", addr))

	go func() {
		if err := router.Run(addr); err != nil {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server")
}
