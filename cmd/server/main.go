package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/blociq/doc-intel-service/api"
	"github.com/blociq/doc-intel-service/internal/auth"
	"github.com/blociq/doc-intel-service/internal/db"
	"github.com/blociq/doc-intel-service/internal/models"
	"github.com/blociq/doc-intel-service/internal/storage"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	// Initialize JWT
	if err := auth.Init(); err != nil {
		logger.Fatal("failed to initialize auth", zap.Error(err))
	}
	logger.Info("JWT authentication initialized")

	// Initialize database connection pool
	if err := db.Init(); err != nil {
		logger.Warn("database not available, analyses will not be persisted", zap.Error(err))
	} else {
		defer db.Close()
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := db.EnsureSchema(ctx); err != nil {
			logger.Warn("failed to ensure database schema", zap.Error(err))
		}
		cancel()
		logger.Info("database connection pool initialized")
	}

	// Initialize MinIO storage
	if err := storage.Init(); err != nil {
		logger.Warn("storage not available, documents will not be stored", zap.Error(err))
	} else {
		logger.Info("MinIO storage initialized")
	}

	// Load configuration
	config, err := loadConfig("config.yaml")
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	// Create API handler
	handler := api.NewHandler(config, logger)
	router := handler.SetupRoutes()

	// Add login endpoint
	router.HandleFunc("/api/login", auth.LoginHandler).Methods("POST")

	// Wrap router with JWT middleware (skips /health and /api/login)
	protectedRouter := auth.JWTMiddleware(router)

	addr := fmt.Sprintf("%s:%d", config.Host, config.Port)
	logger.Info("starting document intelligence service",
		zap.String("version", api.Version),
		zap.String("addr", addr),
		zap.String("aiProvider", config.AI.DefaultProvider),
		zap.String("ocrEndpoint", config.OCR.Endpoint),
		zap.Bool("database", db.Pool != nil),
		zap.Bool("storage", storage.Client != nil))

	if err := http.ListenAndServe(addr, protectedRouter); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}
}

func loadConfig(path string) (*models.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config models.Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// Override with environment variables if present
	if port := os.Getenv("PORT"); port != "" {
		fmt.Sscanf(port, "%d", &config.Port)
	}
	if host := os.Getenv("HOST"); host != "" {
		config.Host = host
	}
	if endpoint := os.Getenv("OCR_ENDPOINT"); endpoint != "" {
		config.OCR.Endpoint = endpoint
	}
	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" {
		config.AI.OpenAI.APIKey = apiKey
	}
	if apiKey := os.Getenv("GEMINI_API_KEY"); apiKey != "" {
		config.AI.Gemini.APIKey = apiKey
	}
	if provider := os.Getenv("AI_PROVIDER"); provider != "" {
		config.AI.DefaultProvider = provider
	}
	if baseURL := os.Getenv("OPENAI_BASE_URL"); baseURL != "" {
		config.AI.OpenAI.BaseURL = baseURL
	}
	if model := os.Getenv("OPENAI_MODEL"); model != "" {
		config.AI.OpenAI.Model = model
	}
	if model := os.Getenv("OPENAI_VISION_MODEL"); model != "" {
		config.AI.OpenAI.VisionModel = model
	}
	if model := os.Getenv("GEMINI_MODEL"); model != "" {
		config.AI.Gemini.Model = model
	}

	return &config, nil
}
