package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	// Gemini
	GeminiAPIKey         string
	GeminiModel          string
	GeminiEmbeddingModel string
	GeminiTier           string

	// HTTP
	Port        string
	GinMode     string
	CORSOrigins []string
	MaxFileSize int64

	// Storage
	DataDir   string
	IndexDir  string
	StaticDir string

	// Retrieval pipeline
	ChunkSize    int
	ChunkOverlap int
	TopKResults  int

	// Rate limiting
	RateLimitEnabled bool
	RateLimitReqs    int
	RateLimitWindow  int

	// Redis (rate-limit backend)
	RedisURL      string
	RedisPassword string
	RedisDB       int

	// Telemetry
	TelemetryEnabled bool
	OTLPEndpoint     string
}

func LoadConfig() (*Config, error) {
	// Load .env file if it exists
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("error loading .env file: %v", err)
		}
	}

	cfg := &Config{
		GeminiAPIKey:         getEnv("GEMINI_API_KEY", ""),
		GeminiModel:          getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		GeminiEmbeddingModel: getEnv("GEMINI_EMBEDDING_MODEL", "text-embedding-004"),
		GeminiTier:           getEnv("GEMINI_TIER", "free"),

		Port:        getEnv("PORT", "8000"),
		GinMode:     getEnv("GIN_MODE", "debug"),
		CORSOrigins: strings.Split(getEnv("CORS_ORIGINS", "http://localhost:3000,http://localhost:8000"), ","),
		MaxFileSize: getEnvInt64("MAX_FILE_SIZE", 104857600), // 100MB

		DataDir:   getEnv("DATA_DIR", "data"),
		IndexDir:  getEnv("INDEX_DIR", "vector_index"),
		StaticDir: getEnv("STATIC_DIR", "static"),

		ChunkSize:    getEnvInt("CHUNK_SIZE", 1000),
		ChunkOverlap: getEnvInt("CHUNK_OVERLAP", 200),
		TopKResults:  getEnvInt("TOP_K_RESULTS", 5),

		RateLimitEnabled: getEnvBool("RATE_LIMIT_ENABLED", true),
		RateLimitReqs:    getEnvInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindow:  getEnvInt("RATE_LIMIT_WINDOW", 60),

		RedisURL:      getEnv("REDIS_URL", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		TelemetryEnabled: getEnvBool("TELEMETRY_ENABLED", false),
		OTLPEndpoint:     getEnv("OTLP_ENDPOINT", "localhost:4317"),
	}

	// Validate required fields
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required - set it in .env file")
	}

	if cfg.ChunkSize <= 0 {
		return nil, fmt.Errorf("CHUNK_SIZE must be positive, got %d", cfg.ChunkSize)
	}

	if cfg.ChunkOverlap >= cfg.ChunkSize {
		return nil, fmt.Errorf("CHUNK_OVERLAP (%d) must be less than CHUNK_SIZE (%d)", cfg.ChunkOverlap, cfg.ChunkSize)
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
