package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"recipe-backend/pkg/logger"
)

func main() {
	// ========================================
	// LOAD ENVIRONMENT VARIABLES
	// ========================================
	// Load từ .env file (development/local)
	// Production sẽ dùng system environment variables
	envFileErr := godotenv.Load()

	// ========================================
	// LOGGER
	// ========================================
	env := getEnv("APP_ENV", "development")
	logger.Init(env)
	if envFileErr != nil {
		log.Warn().Msg("No .env file found, using system environment variables")
	}

	log.Info().Str("environment", env).Msg("starting recipe API")

	// ========================================
	// START SERVER
	// ========================================
	Serve()
}

// getEnv lấy environment variable với fallback default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
