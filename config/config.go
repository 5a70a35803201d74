package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

type Config struct {
	// Server
	Port         string
	ClientOrigin string

	// Media store
	UploadsDir     string
	MaxUploadBytes int64

	// Gemini
	GeminiAPIKey  string
	GeminiModel   string
	GeminiBaseURL string

	// Generation defaults, passed through to the provider verbatim.
	GenTemperature     float64
	GenTopK            int
	GenTopP            float64
	GenMaxOutputTokens int
}

func Load() (Config, error) {
	cfg := Config{}

	cfg.Port = getEnv("PORT", "5000")
	cfg.ClientOrigin = getEnv("CLIENT_ORIGIN", "http://localhost:5173")

	cfg.UploadsDir = getEnv("UPLOADS_DIR", "uploads")
	absDir, err := filepath.Abs(cfg.UploadsDir)
	if err != nil {
		return Config{}, fmt.Errorf("resolve uploads dir: %w", err)
	}
	cfg.UploadsDir = absDir

	maxUploadMB, err := getEnvAsInt64("MAX_UPLOAD_MB", 25)
	if err != nil {
		return Config{}, fmt.Errorf("parse MAX_UPLOAD_MB: %w", err)
	}
	cfg.MaxUploadBytes = maxUploadMB * 1024 * 1024

	cfg.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	cfg.GeminiModel = getEnv("GEMINI_MODEL", "gemini-1.5-flash")
	cfg.GeminiBaseURL = getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com")

	cfg.GenTemperature = getEnvAsFloat("GEMINI_TEMPERATURE", 0.7)
	cfg.GenTopK = getEnvAsInt("GEMINI_TOP_K", 40)
	cfg.GenTopP = getEnvAsFloat("GEMINI_TOP_P", 0.95)
	cfg.GenMaxOutputTokens = getEnvAsInt("GEMINI_MAX_OUTPUT_TOKENS", 2048)

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) (int64, error) {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue, nil
	}
	return strconv.ParseInt(valueStr, 10, 64)
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}
