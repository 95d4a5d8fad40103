package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

// Config holds process-level settings. Repository-level settings (database
// driver and DSN, notification hours) are read from the environment by the
// packages that own them.
type Config struct {
	// Address the HTTP API listens on
	HTTPAddr string
	// Telegram bot token; the bot is disabled when empty
	TelegramBotToken string
}

// Load reads .env if present and builds the configuration from the
// environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Error loading .env file: %v", err)
		}
	}

	return &Config{
		HTTPAddr:         getEnv("HTTP_ADDR", ":8080"),
		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
	}
}

func getEnv(name, def string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return def
}
