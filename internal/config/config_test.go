package config

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"DEBUG", slog.LevelDebug},
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"WARN", slog.LevelWarn},
		{"WARNING", slog.LevelWarn},
		{"ERROR", slog.LevelError},
		{"garbage", slog.LevelInfo},
		{"", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := parseLogLevel(tt.in); got != tt.want {
			t.Errorf("parseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLoadRequiresDSN(t *testing.T) {
	t.Setenv("FLIGHTCHAT_CONFIG", "")
	t.Setenv("FLIGHTCHAT_POSTGRES_DSN", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error when no DSN is configured")
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := strings.Join([]string{
		"postgres_dsn: postgres://file-dsn/flightchat",
		"llm_model: file-model",
		"retrieval_limit: 5",
		"timezone: UTC",
	}, "\n")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("FLIGHTCHAT_CONFIG", path)
	t.Setenv("FLIGHTCHAT_POSTGRES_DSN", "postgres://env-dsn/flightchat")
	t.Setenv("FLIGHTCHAT_LLM_MODEL", "")
	t.Setenv("FLIGHTCHAT_RETRIEVAL_LIMIT", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.PostgresDSN != "postgres://env-dsn/flightchat" {
		t.Errorf("PostgresDSN = %q, env should win over file", cfg.PostgresDSN)
	}
	if cfg.LLMModel != "file-model" {
		t.Errorf("LLMModel = %q, want file value", cfg.LLMModel)
	}
	if cfg.RetrievalLimit != 5 {
		t.Errorf("RetrievalLimit = %d, want 5", cfg.RetrievalLimit)
	}
	if cfg.Timezone != "UTC" {
		t.Errorf("Timezone = %q, want UTC", cfg.Timezone)
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("FLIGHTCHAT_CONFIG", "")
	t.Setenv("FLIGHTCHAT_POSTGRES_DSN", "postgres://localhost/flightchat")
	for _, key := range []string{
		"FLIGHTCHAT_PORT", "FLIGHTCHAT_LLM_PROVIDER", "FLIGHTCHAT_LLM_MODEL",
		"FLIGHTCHAT_COLLECTION", "FLIGHTCHAT_RETRIEVAL_LIMIT", "FLIGHTCHAT_TIMEZONE",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Port != 8088 {
		t.Errorf("Port = %d, want 8088", cfg.Port)
	}
	if cfg.LLMProvider != ProviderOpenAI {
		t.Errorf("LLMProvider = %q, want openai", cfg.LLMProvider)
	}
	if cfg.Collection != "ai_agent_gogo" {
		t.Errorf("Collection = %q, want ai_agent_gogo", cfg.Collection)
	}
	if cfg.RetrievalLimit != 10 {
		t.Errorf("RetrievalLimit = %d, want 10", cfg.RetrievalLimit)
	}
	if cfg.Timezone != "Asia/Jakarta" {
		t.Errorf("Timezone = %q, want Asia/Jakarta", cfg.Timezone)
	}
}

func TestSetupLoggerWithWriters(t *testing.T) {
	var stderr, file bytes.Buffer
	logger := SetupLoggerWithWriters(&stderr, &file, slog.LevelInfo)

	logger.Info("turn complete", "conversation", "abc")

	if !strings.Contains(stderr.String(), "turn complete") {
		t.Error("stderr output missing message")
	}

	var entry map[string]any
	if err := json.Unmarshal(file.Bytes(), &entry); err != nil {
		t.Fatalf("file output is not JSON: %v", err)
	}
	if entry["msg"] != "turn complete" {
		t.Errorf("file msg = %v", entry["msg"])
	}
}
