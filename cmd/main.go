package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"rag-chatbot-platform/internal/ai"
	"rag-chatbot-platform/internal/config"
	"rag-chatbot-platform/internal/logger"
	"rag-chatbot-platform/internal/telemetry"
	"rag-chatbot-platform/middleware"
	"rag-chatbot-platform/routes"
	"rag-chatbot-platform/services"

	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	logger.InitLogger(cfg)

	// Telemetry is optional; the pipeline runs without it
	var metrics *telemetry.Metrics
	if cfg.TelemetryEnabled {
		shutdown, err := telemetry.InitTracer("rag-chatbot-platform", cfg.OTLPEndpoint)
		if err != nil {
			logger.Warn("Failed to initialize tracer", "error", err)
		} else {
			defer shutdown()
		}

		metrics, err = telemetry.InitMetrics()
		if err != nil {
			logger.Warn("Failed to initialize metrics", "error", err)
			metrics = nil
		}
	}

	// Redis backs API rate limiting; degrade gracefully when it is down
	rdb, err := config.NewRedisClient(cfg)
	if err != nil {
		logger.Warn("Redis unavailable, rate limiting disabled", "error", err)
		rdb = nil
	}

	ctx := context.Background()

	aiClient, err := ai.NewGeminiClient(ctx, cfg, metrics)
	if err != nil {
		log.Fatal("Failed to initialize Gemini client:", err)
	}
	defer aiClient.Close()

	// Assemble the pipeline
	loader := services.NewDocumentLoader(cfg.DataDir)
	index := services.NewIndexManager(aiClient, cfg.IndexDir, cfg.GeminiEmbeddingModel)
	retriever := services.NewRetriever(index)
	generator := services.NewGenerator(aiClient)
	evaluator := services.NewEvaluator(aiClient, metrics)
	rag := services.NewRAGService(loader, index, retriever, generator, evaluator, metrics)

	// Restore a persisted index so queries work across restarts
	if !index.Load() {
		logger.Info("No vector index found, waiting for ingestion")
	}

	if cfg.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.CORSMiddleware(cfg.CORSOrigins))

	if cfg.TelemetryEnabled {
		router.Use(middleware.TracingMiddleware())
		router.Use(middleware.EnrichTrace())
		if metrics != nil {
			router.Use(middleware.MetricsMiddleware(metrics))
		}
	}
	if cfg.RateLimitEnabled && rdb != nil {
		router.Use(middleware.RateLimitMiddleware(rdb, cfg))
	}

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":      "healthy",
			"index_ready": index.Ready(),
			"timestamp":   time.Now(),
		})
	})

	// Web UI
	router.GET("/", func(c *gin.Context) {
		c.File(filepath.Join(cfg.StaticDir, "index.html"))
	})
	router.Static("/static", cfg.StaticDir)

	// Setup routes
	routes.SetupChatRoutes(router, cfg, rag)
	routes.SetupDocumentRoutes(router, cfg, rag)

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server starting", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	logger.Info("Server exited")
}
