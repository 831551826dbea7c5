package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Keys     APIKeys
	Ai       AIConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	LLMLogFilePath     string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	EmbedChunkTopic    string
}

type DatabaseConfig struct {
	Connection string
}

type APIKeys struct {
	OpenAI string
}

type AIConfig struct {
	LLMProvider    string // "openai" or "ollama"
	MainModel      string // routing + synthesis, e.g. "gpt-4o"
	TextToSQLModel string // natural language -> SQL translation
	EmbeddingModel string
	OllamaBaseURL  string
	SearchTopK     int
	SearchMinScore float64
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "8000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/assistant.log"),
			LLMLogFilePath:     getEnv("LLM_LOG_FILE_PATH", "logs/llm.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			EmbedChunkTopic:    getEnv("EMBED_CHUNK_TOPIC_NAME", "EMBED_DOCUMENT_CHUNK"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Keys: APIKeys{
			OpenAI: getEnv("OPENAI_API_KEY", ""),
		},
		Ai: AIConfig{
			LLMProvider:    getEnv("LLM_PROVIDER", "openai"),
			MainModel:      getEnv("MAIN_LLM_MODEL", "gpt-4o"),
			TextToSQLModel: getEnv("TEXT_TO_SQL_MODEL", "gpt-4o"),
			EmbeddingModel: getEnv("EMBEDDING_MODEL", "text-embedding-3-large"),
			OllamaBaseURL:  getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			SearchTopK:     getEnvAsInt("SEARCH_TOP_K", 3),
			SearchMinScore: getEnvAsFloat("SEARCH_MIN_SCORE", 0.3),
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
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}
