package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	ServerAddress string
	Environment   string

	// AWS configuration
	AWSRegion     string
	DynamoDBTable string
	IndexName     string // GSI1 - user-level and query-level lookups
	EventBusName  string

	// Lambda configuration
	IsLambda bool

	// OpenAI configuration
	OpenAIAPIKey   string
	OpenAIBaseURL  string
	LLMModel       string
	EmbeddingModel string

	// Retrieval index configuration
	VectorDBPath string
	ChunkSize    int
	ChunkOverlap int

	// Caching
	GraphCacheTTL int // seconds

	// Logging
	LogLevel string

	// Feature flags
	EnableMetrics bool
	EnableCORS    bool
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		ServerAddress: getEnv("SERVER_ADDRESS", ":8080"),
		Environment:   getEnv("ENVIRONMENT", "development"),
		AWSRegion:     getEnv("AWS_REGION", "us-west-2"),
		DynamoDBTable: getEnv("TABLE_NAME", "stratgraph"),
		IndexName:     getEnv("INDEX_NAME", "GSI1"),
		EventBusName:  getEnv("EVENT_BUS_NAME", "stratgraph-events"),

		IsLambda: getEnvBool("IS_LAMBDA", false),

		OpenAIAPIKey:   getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL:  getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		LLMModel:       getEnv("LLM_MODEL", "gpt-4o"),
		EmbeddingModel: getEnv("EMBEDDING_MODEL", "text-embedding-3-large"),

		VectorDBPath: getEnv("VECTOR_DB_PATH", "stratgraph.db"),
		ChunkSize:    getEnvInt("CHUNK_SIZE", 1000),
		ChunkOverlap: getEnvInt("CHUNK_OVERLAP", 200),

		GraphCacheTTL: getEnvInt("GRAPH_CACHE_TTL", 300),

		LogLevel:      getEnv("LOG_LEVEL", "info"),
		EnableMetrics: getEnvBool("ENABLE_METRICS", false),
		EnableCORS:    getEnvBool("ENABLE_CORS", true),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if all required configuration is present
func (c *Config) Validate() error {
	if c.OpenAIAPIKey == "" && c.IsProduction() {
		return fmt.Errorf("OPENAI_API_KEY is required in production")
	}
	if c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("CHUNK_OVERLAP must be smaller than CHUNK_SIZE")
	}
	if c.IsProduction() {
		if c.DynamoDBTable == "" {
			return fmt.Errorf("TABLE_NAME is required")
		}
		if c.EventBusName == "" {
			return fmt.Errorf("EVENT_BUS_NAME is required")
		}
	}
	return nil
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getEnvInt gets an integer environment variable
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
