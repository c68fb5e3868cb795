package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// App
	Port string
	Env  string

	// Neo4j
	Neo4jURI      string
	Neo4jUser     string
	Neo4jPassword string

	// LLM gateway (OpenAI-compatible, e.g. LiteLLM)
	LLMBaseURL string
	LLMAPIKey  string
	ModelID    string

	// Chunking
	MaxChunkSize int // characters per chunk, ~2000 tokens
	ChunkOverlap int // trailing characters repeated in the next chunk

	// Extraction
	ExtractConcurrency int
	LLMTimeout         time.Duration
	LLMRequestsPerMin  int
	CacheTTL           time.Duration

	// Jobs
	JobWorkers int
	JobTimeout time.Duration

	// Graph
	GraphTimeout time.Duration
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file, but don't fail if it doesn't exist
	_ = godotenv.Load()

	cfg := &Config{
		Port:               getEnv("PORT", "8080"),
		Env:                getEnv("ENV", "development"),
		Neo4jURI:           getEnv("NEO4J_URI", "bolt://localhost:7687"),
		Neo4jUser:          getEnv("NEO4J_USER", "neo4j"),
		Neo4jPassword:      getEnv("NEO4J_PASSWORD", "password"),
		LLMBaseURL:         getEnv("LLM_BASE_URL", "http://localhost:4000"),
		LLMAPIKey:          getEnv("LLM_API_KEY", ""),
		ModelID:            getEnv("MODEL_ID", "openrouter/anthropic/claude-3.5-sonnet"),
		MaxChunkSize:       getEnvInt("MAX_CHUNK_SIZE", 8000),
		ChunkOverlap:       getEnvInt("CHUNK_OVERLAP", 500),
		ExtractConcurrency: getEnvInt("EXTRACT_CONCURRENCY", 4),
		LLMTimeout:         getEnvDuration("LLM_TIMEOUT", 120*time.Second),
		LLMRequestsPerMin:  getEnvInt("LLM_REQUESTS_PER_MIN", 60),
		CacheTTL:           getEnvDuration("EXTRACT_CACHE_TTL", 30*time.Minute),
		JobWorkers:         getEnvInt("JOB_WORKERS", 2),
		JobTimeout:         getEnvDuration("JOB_TIMEOUT", 30*time.Minute),
		GraphTimeout:       getEnvDuration("GRAPH_TIMEOUT", 30*time.Second),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration values are set
func (c *Config) Validate() error {
	if c.Neo4jURI == "" {
		return fmt.Errorf("NEO4J_URI is required")
	}
	if c.Neo4jUser == "" {
		return fmt.Errorf("NEO4J_USER is required")
	}
	if c.Neo4jPassword == "" {
		return fmt.Errorf("NEO4J_PASSWORD is required")
	}
	if c.LLMBaseURL == "" {
		return fmt.Errorf("LLM_BASE_URL is required")
	}
	if c.ModelID == "" {
		return fmt.Errorf("MODEL_ID is required")
	}
	if c.MaxChunkSize <= 0 {
		return fmt.Errorf("MAX_CHUNK_SIZE must be positive")
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.MaxChunkSize {
		return fmt.Errorf("CHUNK_OVERLAP must be non-negative and smaller than MAX_CHUNK_SIZE")
	}
	if c.ExtractConcurrency <= 0 {
		return fmt.Errorf("EXTRACT_CONCURRENCY must be positive")
	}
	if c.JobWorkers <= 0 {
		return fmt.Errorf("JOB_WORKERS must be positive")
	}
	// LLM API key is optional: a local gateway may not require one
	return nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if result, err := strconv.Atoi(value); err == nil {
			return result
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if result, err := time.ParseDuration(value); err == nil {
			return result
		}
	}
	return defaultValue
}
