// Owner: tom@tradecrew.au
package config

import (
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
)

type Config struct {
	CompletionsAPIURL string
	CompletionsAPIKey string
	CompletionsModel  string
	HTTPPort          string
	DBPath            string
	AppDataPath       string
	NatsPort          string
	BriefCronSpec     string
	LogLevel          string
}

func getEnv(key, defaultValue string, printEnv bool) string {
	logger := log.Default()
	value := os.Getenv(key)
	if printEnv {
		logger.Info("Env", "key", key, "value", value)
	}
	if value == "" {
		return defaultValue
	}
	return value
}

func LoadConfig(printEnv bool) (*Config, error) {
	_ = godotenv.Load()

	conf := &Config{
		CompletionsAPIURL: getEnv("COMPLETIONS_API_URL", "https://api.openai.com/v1", printEnv),
		CompletionsAPIKey: getEnv("COMPLETIONS_API_KEY", "", printEnv),
		CompletionsModel:  getEnv("COMPLETIONS_MODEL", "gpt-4.1-mini", printEnv),
		HTTPPort:          getEnv("HTTP_PORT", "44888", printEnv),
		AppDataPath:       getEnv("APP_DATA_PATH", "./output", printEnv),
		NatsPort:          getEnv("NATS_PORT", "4222", printEnv),
		BriefCronSpec:     getEnv("BRIEF_CRON_SPEC", "0 7 * * *", printEnv),
		LogLevel:          getEnv("LOG_LEVEL", "debug", printEnv),
	}

	// DB path defaults under AppDataPath so a single env var relocates all state
	conf.DBPath = getEnv("DB_PATH", filepath.Join(conf.AppDataPath, "sqlite", "tradecrew.db"), printEnv)

	return conf, nil
}
