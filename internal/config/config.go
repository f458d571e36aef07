// Package config builds the process configuration from the environment. It
// is the only place that reads environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	BackendFile     = "file"
	BackendDynamoDB = "dynamodb"
	BackendRedis    = "redis"
)

type Model struct {
	Endpoint    string
	Name        string
	Token       string
	ParamPrefix string
	Temperature float64
	TopP        float64
	MaxTokens   int
	Timeout     time.Duration
}

// HasCredential reports whether a token is configured directly or through
// the parameter store.
func (m Model) HasCredential() bool {
	return m.Token != "" || m.ParamPrefix != ""
}

// TokenParameter is the SSM parameter holding the upstream token.
func (m Model) TokenParameter() string {
	return m.ParamPrefix + "/github-token"
}

type Document struct {
	Backend   string
	Path      string
	Table     string
	Key       string
	RedisAddr string
	Seed      string
}

type Config struct {
	Port             int
	StaticDir        string
	MaxMessageLength int
	LogLevel         slog.Level
	LogFormat        string
	Model            Model
	Document         Document
}

// Load reads an optional .env file and then the environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("config: load .env: %w", err)
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from getenv.
func FromEnv(getenv func(string) string) (Config, error) {
	e := env{getenv: getenv}
	cfg := Config{
		Port:             e.int("PORT", 3000),
		StaticDir:        e.str("STATIC_DIR", "web"),
		MaxMessageLength: e.int("MAX_MESSAGE_LENGTH", 4000),
		LogFormat:        strings.ToLower(e.str("LOG_FORMAT", "json")),
		Model: Model{
			Endpoint:    e.str("MODEL_ENDPOINT", "https://models.github.ai/inference"),
			Name:        e.str("MODEL_NAME", "openai/gpt-4.1"),
			Token:       e.first("GITHUB_TOKEN", "AZURE_AI_KEY"),
			ParamPrefix: strings.TrimRight(e.str("PARAM_PREFIX", ""), "/"),
			Temperature: e.float("MODEL_TEMPERATURE", 0.7),
			TopP:        e.float("MODEL_TOP_P", 0.9),
			MaxTokens:   e.int("MODEL_MAX_TOKENS", 2000),
			Timeout:     e.duration("MODEL_TIMEOUT", 60*time.Second),
		},
		Document: Document{
			Backend:   strings.ToLower(e.str("DOCUMENT_BACKEND", BackendFile)),
			Path:      e.str("DOCUMENT_PATH", "web/training_plan.html"),
			Table:     e.str("DOCUMENT_TABLE", ""),
			Key:       e.str("DOCUMENT_KEY", "training_plan"),
			RedisAddr: e.str("REDIS_ADDR", ""),
			Seed:      e.str("DOCUMENT_SEED", ""),
		},
	}

	level, err := parseLevel(e.str("LOG_LEVEL", "info"))
	if err != nil {
		return Config{}, err
	}
	cfg.LogLevel = level

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("config: PORT out of range: %d", c.Port)
	}
	if c.MaxMessageLength <= 0 {
		return errors.New("config: MAX_MESSAGE_LENGTH must be positive")
	}
	if c.LogFormat != "json" && c.LogFormat != "text" {
		return fmt.Errorf("config: LOG_FORMAT must be json or text, got %q", c.LogFormat)
	}
	if c.Model.Name == "" {
		return errors.New("config: MODEL_NAME must not be empty")
	}
	switch c.Document.Backend {
	case BackendFile:
		if c.Document.Path == "" {
			return errors.New("config: DOCUMENT_PATH is required for the file backend")
		}
	case BackendDynamoDB:
		if c.Document.Table == "" {
			return errors.New("config: DOCUMENT_TABLE is required for the dynamodb backend")
		}
	case BackendRedis:
		if c.Document.RedisAddr == "" {
			return errors.New("config: REDIS_ADDR is required for the redis backend")
		}
	default:
		return fmt.Errorf("config: unknown DOCUMENT_BACKEND %q", c.Document.Backend)
	}
	return nil
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("config: LOG_LEVEL: %w", err)
	}
	return level, nil
}

type env struct {
	getenv func(string) string
}

func (e env) str(key, def string) string {
	v := strings.TrimSpace(e.getenv(key))
	if v == "" {
		return def
	}
	return v
}

func (e env) first(keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(e.getenv(k)); v != "" {
			return v
		}
	}
	return ""
}

func (e env) int(key string, def int) int {
	n, err := strconv.Atoi(e.str(key, ""))
	if err != nil {
		return def
	}
	return n
}

func (e env) float(key string, def float64) float64 {
	f, err := strconv.ParseFloat(e.str(key, ""), 64)
	if err != nil {
		return def
	}
	return f
}

func (e env) duration(key string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(e.str(key, ""))
	if err != nil || d <= 0 {
		return def
	}
	return d
}
