// Package config loads flightchat configuration from the environment, with an
// optional YAML file overlay.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Provider identifies an LLM or embedding backend.
type Provider string

const (
	ProviderOpenAI    Provider = "openai"
	ProviderOllama    Provider = "ollama"
	ProviderAnthropic Provider = "anthropic"
	ProviderBedrock   Provider = "bedrock"
)

// Config holds all configuration values.
type Config struct {
	// HTTP server
	Host string
	Port int

	// Postgres connection
	PostgresDSN      string
	PostgresMaxConns int

	// LLM generation
	LLMProvider     Provider
	LLMModel        string
	OpenAIAPIKey    string
	AnthropicAPIKey string
	OllamaHost      string

	// Embeddings
	EmbedProvider  Provider
	EmbedModel     string
	EmbedDimension int

	// Vector store
	Collection     string
	RetrievalLimit int

	// Assistant behavior
	Timezone string

	// Logging
	LogFile  string
	LogLevel slog.Level
}

// fileConfig mirrors the YAML layout of an optional config file. Environment
// variables always win over file values.
type fileConfig struct {
	Host             string `yaml:"host"`
	Port             int    `yaml:"port"`
	PostgresDSN      string `yaml:"postgres_dsn"`
	PostgresMaxConns int    `yaml:"postgres_max_conns"`
	LLMProvider      string `yaml:"llm_provider"`
	LLMModel         string `yaml:"llm_model"`
	EmbedProvider    string `yaml:"embed_provider"`
	EmbedModel       string `yaml:"embed_model"`
	EmbedDimension   int    `yaml:"embed_dimension"`
	Collection       string `yaml:"collection"`
	RetrievalLimit   int    `yaml:"retrieval_limit"`
	Timezone         string `yaml:"timezone"`
	LogFile          string `yaml:"log_file"`
	LogLevel         string `yaml:"log_level"`
}

// Load reads configuration from the environment. When FLIGHTCHAT_CONFIG
// points at a YAML file, its values fill the gaps the environment leaves.
func Load() (Config, error) {
	var file fileConfig
	if path := os.Getenv("FLIGHTCHAT_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &file); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	cfg := Config{
		Host: getEnv("FLIGHTCHAT_HOST", or(file.Host, "0.0.0.0")),
		Port: getEnvInt("FLIGHTCHAT_PORT", orInt(file.Port, 8088)),

		PostgresDSN:      getEnv("FLIGHTCHAT_POSTGRES_DSN", file.PostgresDSN),
		PostgresMaxConns: getEnvInt("FLIGHTCHAT_POSTGRES_MAX_CONNS", orInt(file.PostgresMaxConns, 8)),

		LLMProvider:     Provider(getEnv("FLIGHTCHAT_LLM_PROVIDER", or(file.LLMProvider, string(ProviderOpenAI)))),
		LLMModel:        getEnv("FLIGHTCHAT_LLM_MODEL", or(file.LLMModel, "gpt-4o-mini")),
		OpenAIAPIKey:    getEnv("OPENAI_API_KEY", ""),
		AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),
		OllamaHost:      getEnv("OLLAMA_HOST", "http://localhost:11434"),

		EmbedProvider:  Provider(getEnv("FLIGHTCHAT_EMBED_PROVIDER", or(file.EmbedProvider, string(ProviderOpenAI)))),
		EmbedModel:     getEnv("FLIGHTCHAT_EMBED_MODEL", or(file.EmbedModel, "text-embedding-3-small")),
		EmbedDimension: getEnvInt("FLIGHTCHAT_EMBED_DIMENSION", orInt(file.EmbedDimension, 1536)),

		Collection:     getEnv("FLIGHTCHAT_COLLECTION", or(file.Collection, "ai_agent_gogo")),
		RetrievalLimit: getEnvInt("FLIGHTCHAT_RETRIEVAL_LIMIT", orInt(file.RetrievalLimit, 10)),

		Timezone: getEnv("FLIGHTCHAT_TIMEZONE", or(file.Timezone, "Asia/Jakarta")),

		LogFile:  getEnv("FLIGHTCHAT_LOG_FILE", file.LogFile),
		LogLevel: parseLogLevel(getEnv("FLIGHTCHAT_LOG_LEVEL", or(file.LogLevel, "INFO"))),
	}

	if cfg.PostgresDSN == "" {
		return Config{}, fmt.Errorf("FLIGHTCHAT_POSTGRES_DSN is required")
	}

	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return defaultVal
}

func or(val, defaultVal string) string {
	if val != "" {
		return val
	}
	return defaultVal
}

func orInt(val, defaultVal int) int {
	if val != 0 {
		return val
	}
	return defaultVal
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
