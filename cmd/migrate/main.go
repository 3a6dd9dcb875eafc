package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"recipe-backend/pkg/logger"
)

func main() {
	envFileErr := godotenv.Load()

	logger.Init(getEnv("APP_ENV", "development"))
	if envFileErr != nil {
		log.Debug().Msg("No .env file found, using system environment variables")
	}

	if err := NewRootCommand().Execute(); err != nil {
		log.Error().Err(err).Msg("migrate failed")
		os.Exit(1)
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
