package config

import (
	"os"
)

type Config struct {
	Port        string
	Environment string
	CORSOrigins string
	// Persistence
	StorageBackend string // "redis", "postgres", or "memory"
	RedisURL       string
	DatabaseURL    string
	KeyPrefix      string
	// LLM Configuration
	AnthropicAPIKey string
	DefaultModel    string
	// Editorial categories
	CategoriesPath string // optional YAML override for category guidance
	// Debug flags
	Debug bool
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")

	return &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: env,
		CORSOrigins: getEnv("CORS_ORIGINS", "http://localhost:3000"),
		// Persistence
		StorageBackend: getEnv("STORAGE_BACKEND", "memory"),
		RedisURL:       getEnv("REDIS_URL", "redis://localhost:6379/0"),
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		KeyPrefix:      getKeyPrefix(env),
		// LLM Configuration
		AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),
		DefaultModel:    getEnv("DEFAULT_MODEL", "claude-haiku-4-5-20251001"),
		// Editorial categories
		CategoriesPath: getEnv("CATEGORIES_PATH", ""),
		// Debug flags - default to true in dev/test, false in production
		Debug: getEnv("DEBUG", getDefaultDebug(env)) == "true",
	}
}

// getDefaultDebug returns the default debug setting based on environment
func getDefaultDebug(env string) string {
	if env == "prod" {
		return "false"
	}
	return "true"
}

// getKeyPrefix returns the storage key prefix based on environment
func getKeyPrefix(env string) string {
	// Allow manual override via KEY_PREFIX env var
	if prefix := os.Getenv("KEY_PREFIX"); prefix != "" {
		return prefix
	}

	// Auto-generate based on environment
	switch env {
	case "prod":
		return "prod:"
	case "test":
		return "test:"
	default:
		return "dev:"
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
