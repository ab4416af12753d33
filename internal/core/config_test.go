package core

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jo-hoe/styleai/internal/stylist"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile error: %v", err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
port: 8080
logLevel: debug
logFormat: json
uploadDir: /tmp/styleai
faceCascade: haarcascade_frontalface_default.xml
productLimit: 2
database:
  type: sqlite3
  connectionString: ":memory:"
commands:
  - name: NormalizeCommand
  - name: ScaleCommand
    maxWidth: 1024
    maxHeight: 1024
ai:
  xaiModel: grok-2
  adviceTimeout: 5s
cache:
  type: redis
  ttl: 1h
  redisDB: 2
`)

	config, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig error: %v", err)
	}

	if config.Port != 8080 {
		t.Errorf("Expected port 8080, got %d", config.Port)
	}
	if config.Database.Type != "sqlite3" || config.Database.ConnectionString != ":memory:" {
		t.Errorf("Unexpected database config: %+v", config.Database)
	}
	if len(config.Commands) != 2 {
		t.Fatalf("Expected 2 commands, got %d", len(config.Commands))
	}
	if config.Commands[1].Params["maxWidth"] != 1024 {
		t.Errorf("Expected maxWidth param 1024, got %v", config.Commands[1].Params["maxWidth"])
	}
	if config.AI.AdviceTimeout != 5*time.Second {
		t.Errorf("Expected advice timeout 5s, got %v", config.AI.AdviceTimeout)
	}
	if config.AI.ExplainTimeout != stylist.DefaultExplainTimeout {
		t.Errorf("Expected default explain timeout, got %v", config.AI.ExplainTimeout)
	}
	if config.Cache.Type != "redis" || config.Cache.TTL != time.Hour || config.Cache.RedisDB != 2 {
		t.Errorf("Unexpected cache config: %+v", config.Cache)
	}
	if config.ProductLimit != 2 {
		t.Errorf("Expected product limit 2, got %d", config.ProductLimit)
	}
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()
	if config.Port != DefaultPort {
		t.Errorf("Expected port %d, got %d", DefaultPort, config.Port)
	}
	if config.Database.Type != "sqlite" {
		t.Errorf("Expected sqlite database, got %s", config.Database.Type)
	}
	if config.UploadDir != DefaultUploadDir {
		t.Errorf("Expected upload dir %s, got %s", DefaultUploadDir, config.UploadDir)
	}
	if config.Cache.TTL != stylist.DefaultCacheTTL {
		t.Errorf("Expected default cache ttl, got %v", config.Cache.TTL)
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"empty command name", "commands:\n  - maxWidth: 10\n", "empty name"},
		{"duplicate command", "commands:\n  - name: NormalizeCommand\n  - name: NormalizeCommand\n", "duplicate command name"},
		{"unknown command", "commands:\n  - name: RotateCommand\n", "known: CropCommand, NormalizeCommand, ScaleCommand"},
		{"bad cache type", "cache:\n  type: memcached\n", "unsupported cache type"},
		{"bad log level", "logLevel: chatty\n", "unsupported log level"},
		{"bad log format", "logFormat: xml\n", "unsupported log format"},
		{"bad port", "port: 70000\n", "port out of range"},
		{"malformed yaml", "port: [\n", "failed to parse"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.content))
			if err == nil {
				t.Fatal("Expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("Expected error for missing file")
	}
}

func TestLoadSecrets(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("GEMINI_API_KEY", "g-key")
	t.Setenv("XAI_API_KEY", "x-key")
	t.Setenv("REDIS_ADDR", "localhost:6379")

	config := DefaultConfig()
	if err := config.LoadSecrets(); err != nil {
		t.Fatalf("LoadSecrets error: %v", err)
	}
	if config.Secrets.GeminiAPIKey != "g-key" || config.Secrets.XAIAPIKey != "x-key" || config.Secrets.RedisAddr != "localhost:6379" {
		t.Errorf("Unexpected secrets: %+v", config.Secrets)
	}
}

func TestLoadSecrets_DotEnv(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("REDIS_PASSWORD=from-dotenv\n"), 0o644); err != nil {
		t.Fatalf("WriteFile error: %v", err)
	}
	t.Chdir(dir)
	t.Setenv("REDIS_PASSWORD", "")
	os.Unsetenv("REDIS_PASSWORD")

	config := DefaultConfig()
	if err := config.LoadSecrets(); err != nil {
		t.Fatalf("LoadSecrets error: %v", err)
	}
	if config.Secrets.RedisPassword != "from-dotenv" {
		t.Errorf("Expected password from .env, got %q", config.Secrets.RedisPassword)
	}
	os.Unsetenv("REDIS_PASSWORD")
}
