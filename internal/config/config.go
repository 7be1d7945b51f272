package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config is loaded once at startup from the environment, with an
// optional .env file for local development.
type Config struct {
	Port string

	// Postgres; when DBName is empty the server falls back to the
	// whole-document store (file-backed, or redis when available).
	DBUser     string
	DBPassword string
	DBHost     string
	DBPort     string
	DBName     string

	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// DataDir backs the file KV store in document mode.
	DataDir string

	GeminiAPIKey string
	OpenAIAPIKey string
	OllamaHost   string
	AITimeout    time.Duration
}

func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := Config{
		Port:          getEnv("PORT", "8080"),
		DBUser:        getEnv("DB_USER", ""),
		DBPassword:    getEnv("DB_PASSWORD", ""),
		DBHost:        getEnv("DB_HOST", "localhost"),
		DBPort:        getEnv("DB_PORT", "5432"),
		DBName:        getEnv("DB_NAME", ""),
		RedisHost:     getEnv("REDIS_HOST", ""),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		DataDir:       getEnv("DATA_DIR", "./data"),
		GeminiAPIKey:  getEnv("GEMINI_API_KEY", ""),
		OpenAIAPIKey:  getEnv("OPENAI_API_KEY", ""),
		OllamaHost:    getEnv("OLLAMA_HOST", ""),
		AITimeout:     time.Duration(getEnvInt("AI_TIMEOUT_SECONDS", 60)) * time.Second,
	}

	return cfg
}

// UsePostgres reports whether per-record postgres storage is
// configured; otherwise the server runs in document mode.
func (c Config) UsePostgres() bool {
	return c.DBName != ""
}

func (c Config) UseRedis() bool {
	return c.RedisHost != ""
}

func getEnv(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(name string, fallback int) int {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("Invalid integer for %s: %q, using %d", name, raw, fallback)
		return fallback
	}
	return v
}
