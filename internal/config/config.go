package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Llm       LlmConfig
	Embedding EmbeddingConfig
	Topics    TopicConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
}

type DatabaseConfig struct {
	Path string
}

type LlmConfig struct {
	DefaultProvider    string // "router" or "openai_compatible"
	DefaultModel       string
	DefaultEndpointURL string
}

type EmbeddingConfig struct {
	Provider string // "ollama" or "openai"
	BaseURL  string
	Model    string
	APIKey   string
}

type TopicConfig struct {
	EmbedDocument string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
		},
		Database: DatabaseConfig{
			Path: getEnv("DB_PATH", "writepad.db"),
		},
		Llm: LlmConfig{
			DefaultProvider:    getEnv("LLM_PROVIDER", "router"),
			DefaultModel:       getEnv("LLM_MODEL", "moonshotai/kimi-k2"),
			DefaultEndpointURL: getEnv("LLM_ENDPOINT_URL", ""),
		},
		Embedding: EmbeddingConfig{
			Provider: getEnv("EMBEDDING_PROVIDER", "ollama"),
			BaseURL:  getEnv("EMBEDDING_BASE_URL", "http://localhost:11434"),
			Model:    getEnv("EMBEDDING_MODEL", "nomic-embed-text"),
			APIKey:   getEnv("EMBEDDING_API_KEY", ""),
		},
		Topics: TopicConfig{
			EmbedDocument: getEnv("EMBED_DOCUMENT_TOPIC_NAME", "EMBED_DOCUMENT"),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}
