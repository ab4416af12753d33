package core

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v9"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/jo-hoe/styleai/internal/imaging"
	"github.com/jo-hoe/styleai/internal/stylist"
)

const (
	DefaultPort      = 5000
	DefaultUploadDir = "uploads"
)

// CommandConfig represents a generic command configuration
type CommandConfig = imaging.CommandConfig

type Database struct {
	Type             string `yaml:"type"`
	ConnectionString string `yaml:"connectionString"`
}

type AIConfig struct {
	GeminiModel    string        `yaml:"geminiModel"`
	XAIModel       string        `yaml:"xaiModel"`
	XAIVisionModel string        `yaml:"xaiVisionModel"`
	XAIBaseURL     string        `yaml:"xaiBaseURL"`
	AdviceTimeout  time.Duration `yaml:"adviceTimeout"`
	ExplainTimeout time.Duration `yaml:"explainTimeout"`
}

type CacheConfig struct {
	// Type is "memory", "redis" or empty for no caching.
	Type    string        `yaml:"type"`
	TTL     time.Duration `yaml:"ttl"`
	RedisDB int           `yaml:"redisDB"`
}

// Secrets are read from the environment, never from the YAML file.
type Secrets struct {
	GeminiAPIKey  string `env:"GEMINI_API_KEY"`
	XAIAPIKey     string `env:"XAI_API_KEY"`
	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
}

type ServiceConfig struct {
	Port          int             `yaml:"port"`
	LogLevel      string          `yaml:"logLevel"`
	LogFormat     string          `yaml:"logFormat"`
	UploadDir     string          `yaml:"uploadDir"`
	FaceCascade   string          `yaml:"faceCascade"`
	StylistTables string          `yaml:"stylistTables"`
	ProductLimit  int             `yaml:"productLimit"`
	Database      Database        `yaml:"database"`
	Commands      []CommandConfig `yaml:"commands"`
	AI            AIConfig        `yaml:"ai"`
	Cache         CacheConfig     `yaml:"cache"`

	Secrets Secrets `yaml:"-"`
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *ServiceConfig {
	config := &ServiceConfig{}
	config.applyDefaults()
	return config
}

// LoadConfig loads configuration from the specified YAML file
func LoadConfig(configPath string) (*ServiceConfig, error) {
	// Read the config file
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	config, err := ParseConfig(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", configPath, err)
	}
	return config, nil
}

// ParseConfig parses YAML, applies defaults and validates the result.
func ParseConfig(data []byte) (*ServiceConfig, error) {
	var config ServiceConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, err
	}
	config.applyDefaults()

	// Validate commands
	if err := validateCommands(config.Commands); err != nil {
		return nil, fmt.Errorf("invalid command configuration: %w", err)
	}
	if err := config.validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// LoadSecrets fills Secrets from the environment after loading .env if present.
func (c *ServiceConfig) LoadSecrets() error {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to load .env file", "error", err)
	}
	if err := env.Parse(&c.Secrets); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

func (c *ServiceConfig) applyDefaults() {
	if c.Port == 0 {
		c.Port = DefaultPort
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogFormat == "" {
		c.LogFormat = "text"
	}
	if c.UploadDir == "" {
		c.UploadDir = DefaultUploadDir
	}
	if c.ProductLimit == 0 {
		c.ProductLimit = stylist.DefaultProductLimit
	}
	if c.Database.Type == "" {
		c.Database.Type = "sqlite"
	}
	if c.Database.ConnectionString == "" {
		c.Database.ConnectionString = "styleai.db"
	}
	if c.AI.AdviceTimeout == 0 {
		c.AI.AdviceTimeout = stylist.DefaultAdviceTimeout
	}
	if c.AI.ExplainTimeout == 0 {
		c.AI.ExplainTimeout = stylist.DefaultExplainTimeout
	}
	if c.Cache.TTL == 0 {
		c.Cache.TTL = stylist.DefaultCacheTTL
	}
}

func (c *ServiceConfig) validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("port out of range: %d", c.Port)
	}
	if c.ProductLimit < 0 {
		return fmt.Errorf("productLimit must not be negative: %d", c.ProductLimit)
	}
	switch strings.ToLower(c.Cache.Type) {
	case "", "memory", "redis":
	default:
		return fmt.Errorf("unsupported cache type: %s", c.Cache.Type)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("unsupported log format: %s", c.LogFormat)
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// ParseLogLevel maps debug, info, warn and error onto slog levels.
func ParseLogLevel(level string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return 0, fmt.Errorf("unsupported log level: %s", level)
	}
	return l, nil
}

// validateCommands ensures all command configurations have required fields
func validateCommands(commands []CommandConfig) error {
	seenNames := make(map[string]bool)

	for i, cmd := range commands {
		// Validate name is not empty
		if cmd.Name == "" {
			return fmt.Errorf("command at index %d has empty name", i)
		}

		if !imaging.DefaultRegistry.IsRegistered(cmd.Name) {
			return fmt.Errorf("unknown command at index %d: %s (known: %s)",
				i, cmd.Name, strings.Join(imaging.DefaultRegistry.RegisteredNames(), ", "))
		}

		// Validate name is unique
		if seenNames[cmd.Name] {
			return fmt.Errorf("duplicate command name: %s", cmd.Name)
		}
		seenNames[cmd.Name] = true
	}

	return nil
}
