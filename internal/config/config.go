// File: internal/config/config.go
package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort string

	// Counselor model. GeminiAPIKey may be empty: the chat then shows a
	// configuration error instead of replies.
	GeminiAPIKey   string
	LLMBaseURL     string
	LLMModel       string
	LLMTemperature float32
	EmbeddingModel string
	ReplyTimeout   time.Duration

	// Session history storage
	StorageDriver string
	StoragePath   string
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Knowledge-base grounding
	GroundingDriver   string
	QdrantURL         string
	QdrantAPIKey      string
	QdrantCollection  string
	PineconeAPIKey    string
	PineconeIndexHost string
	PineconeNamespace string
	GroundingTopK     int

	KnowledgeBasePath string
	HistoryWindow     int

	// Conversation turns per client IP per window; 0 disables the limit.
	MessageRateLimit  int
	MessageRateWindow time.Duration

	LogLevel    string
	Environment string
}

// Load reads configuration from environment variables or .env file.
func Load() *Config {
	env := os.Getenv("ENV")
	if strings.ToLower(env) != "production" {
		if err := godotenv.Load(); err != nil {
			log.Println("No .env file found; continuing with environment variables")
		}
	}

	cfg := FromEnv()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	return cfg
}

// FromEnv builds a Config from the process environment only.
func FromEnv() *Config {
	return &Config{
		ServerPort: getEnv("SERVER_PORT", "8080"),

		GeminiAPIKey:   apiKey(),
		LLMBaseURL:     getEnv("LLM_BASE_URL", "https://generativelanguage.googleapis.com/v1beta/openai/"),
		LLMModel:       getEnv("LLM_MODEL", "gemini-2.5-flash"),
		LLMTemperature: getEnvAsFloat32("LLM_TEMPERATURE", 0.7),
		EmbeddingModel: getEnv("EMBEDDING_MODEL", "text-embedding-004"),
		ReplyTimeout:   getEnvAsDuration("LLM_TIMEOUT", 90*time.Second),

		StorageDriver: strings.ToLower(getEnv("STORAGE_DRIVER", "sqlite")),
		StoragePath:   getEnv("STORAGE_PATH", "counselor.db"),
		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),

		GroundingDriver:   strings.ToLower(getEnv("GROUNDING_DRIVER", "none")),
		QdrantURL:         getEnv("QDRANT_URL", ""),
		QdrantAPIKey:      getEnv("QDRANT_API_KEY", ""),
		QdrantCollection:  getEnv("QDRANT_COLLECTION", "apostila"),
		PineconeAPIKey:    getEnv("PINECONE_API_KEY", ""),
		PineconeIndexHost: getEnv("PINECONE_INDEX_HOST", ""),
		PineconeNamespace: getEnv("PINECONE_NAMESPACE", ""),
		GroundingTopK:     getEnvAsInt("GROUNDING_TOP_K", 4),

		KnowledgeBasePath: getEnv("KNOWLEDGE_BASE_PATH", ""),
		HistoryWindow:     getEnvAsInt("HISTORY_WINDOW", 10),

		MessageRateLimit:  getEnvAsInt("RATE_LIMIT_MESSAGES", 0),
		MessageRateWindow: getEnvAsDuration("RATE_LIMIT_WINDOW", time.Minute),

		LogLevel:    getEnv("LOG_LEVEL", "INFO"),
		Environment: os.Getenv("ENV"),
	}
}

// apiKey prefers GEMINI_API_KEY and falls back to API_KEY.
func apiKey() string {
	if key := getEnv("GEMINI_API_KEY", ""); key != "" {
		return key
	}
	return getEnv("API_KEY", "")
}

// IsProduction reports whether ENV=production.
func (c *Config) IsProduction() bool {
	return strings.ToLower(c.Environment) == "production"
}

// Validate lists the variables a selected driver needs but did not get.
func (c *Config) Validate() error {
	missing := []string{}

	switch c.StorageDriver {
	case "", "sqlite", "file":
		if c.StoragePath == "" {
			missing = append(missing, "STORAGE_PATH")
		}
	case "redis":
		if c.RedisAddr == "" {
			missing = append(missing, "REDIS_ADDR")
		}
	case "memory":
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver)
	}

	switch c.GroundingDriver {
	case "", "none":
	case "qdrant":
		if c.QdrantURL == "" {
			missing = append(missing, "QDRANT_URL")
		}
	case "pinecone":
		if c.PineconeAPIKey == "" {
			missing = append(missing, "PINECONE_API_KEY")
		}
		if c.PineconeIndexHost == "" {
			missing = append(missing, "PINECONE_INDEX_HOST")
		}
	default:
		return fmt.Errorf("unknown GROUNDING_DRIVER %q", c.GroundingDriver)
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %v", missing)
	}
	return nil
}

// getEnv returns the value of an environment variable or a default.
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an env var as an integer, with a fallback.
func getEnvAsInt(key string, defaultValue int) int {
	strValue := getEnv(key, "")
	if strValue == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(strValue)
	if err != nil {
		log.Printf("Warning: could not parse env var %s as integer. Using default value.", key)
		return defaultValue
	}
	return intValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	strValue := getEnv(key, "")
	if strValue == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(strValue, 32)
	if err != nil {
		log.Printf("Warning: could not parse env var %s as float. Using default value.", key)
		return defaultValue
	}
	return float32(f)
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if strValue == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(strValue)
	if err != nil {
		log.Printf("Warning: could not parse env var %s as duration. Using default value.", key)
		return defaultValue
	}
	return d
}
