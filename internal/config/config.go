package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// EnvFileLoaded reports whether a .env file was found by Load.
	EnvFileLoaded bool

	Server ServerConfig
	Gemini GeminiConfig
	Upload UploadConfig
	Prompt PromptConfig
	Log    LogConfig
}

type ServerConfig struct {
	Port string
	Env  string
}

type GeminiConfig struct {
	APIKey          string
	Model           string
	MaxOutputTokens int
	Timeout         time.Duration
	BaseURL         string
}

type UploadConfig struct {
	MaxFileSize int64
	// BodyLimit caps the whole request body. It leaves room for multipart
	// framing so an oversized file reaches the handler's own size check.
	BodyLimit int
}

type PromptConfig struct {
	MaxResumeChars int
}

type LogConfig struct {
	Level string
}

func Load() *Config {
	envFileLoaded := godotenv.Load() == nil

	return &Config{
		EnvFileLoaded: envFileLoaded,
		Server: ServerConfig{
			Port: getEnv("PORT", "8000"),
			Env:  getEnv("ENV", "development"),
		},
		Gemini: GeminiConfig{
			APIKey:          getEnv("GEMINI_API_KEY", ""),
			Model:           getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
			MaxOutputTokens: getEnvAsInt("GEMINI_MAX_OUTPUT_TOKENS", 8192),
			Timeout:         getEnvAsDuration("GEMINI_TIMEOUT", "60s"),
			BaseURL:         getEnv("GEMINI_BASE_URL", ""),
		},
		Upload: UploadConfig{
			MaxFileSize: getEnvAsInt64("MAX_UPLOAD_BYTES", 4*1024*1024),
			BodyLimit:   getEnvAsInt("BODY_LIMIT_BYTES", 8*1024*1024),
		},
		Prompt: PromptConfig{
			MaxResumeChars: getEnvAsInt("MAX_RESUME_CHARS", 30000),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}
}

// Validate reports configuration that must stop the process at startup.
func (c *Config) Validate() error {
	if c.Gemini.APIKey == "" {
		return errors.New("missing GEMINI_API_KEY in environment")
	}
	if c.Upload.MaxFileSize <= 0 {
		return errors.New("MAX_UPLOAD_BYTES must be positive")
	}
	if int64(c.Upload.BodyLimit) < c.Upload.MaxFileSize {
		return errors.New("BODY_LIMIT_BYTES must not be smaller than MAX_UPLOAD_BYTES")
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
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

func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseInt(valueStr, 10, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}
