// Package config loads gmboard settings from an optional YAML file overlaid by
// GMBOARD_* environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/aretw0/gmboard/internal/logging"
	"github.com/aretw0/gmboard/pkg/domain"
	"github.com/aretw0/gmboard/pkg/segment"
	"github.com/aretw0/gmboard/pkg/turn"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "GMBOARD"

// Providers.
const (
	ProviderGemini   = "gemini"
	ProviderOpenAI   = "openai"
	ProviderScripted = "scripted"
)

// RetryBackoff is the first pause between generator retries; it doubles on
// each further attempt.
const RetryBackoff = time.Second

// defaultTimeout applies when Timeout is zero.
const defaultTimeout = 90 * time.Second

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the full runtime configuration.
type Config struct {
	Dir       string `yaml:"dir" envconfig:"DIR"`
	ExportDir string `yaml:"export_dir" envconfig:"EXPORT_DIR"`

	Provider    string        `yaml:"provider" envconfig:"PROVIDER"`
	Script      string        `yaml:"script" envconfig:"SCRIPT"`
	Model       string        `yaml:"model" envconfig:"MODEL"`
	APIKey      string        `yaml:"api_key" envconfig:"API_KEY"`
	BaseURL     string        `yaml:"base_url" envconfig:"BASE_URL"`
	Timeout     time.Duration `yaml:"timeout" envconfig:"TIMEOUT"`
	MaxRetries  int           `yaml:"max_retries" envconfig:"MAX_RETRIES"`
	Temperature float32       `yaml:"temperature" envconfig:"TEMPERATURE"`

	MaxDocumentChars int      `yaml:"max_document_chars" envconfig:"MAX_DOCUMENT_CHARS"`
	MaxInputSize     int      `yaml:"max_input_size" envconfig:"MAX_INPUT_SIZE"`
	StepKeyword      string   `yaml:"step_keyword" envconfig:"STEP_KEYWORD"`
	StepMarkers      []string `yaml:"step_markers" envconfig:"STEP_MARKERS"`

	Clocks []domain.Clock `yaml:"clocks" ignored:"true"`

	Port          int           `yaml:"port" envconfig:"PORT"`
	RedisAddr     string        `yaml:"redis_addr" envconfig:"REDIS_ADDR"`
	RedisPassword string        `yaml:"redis_password" envconfig:"REDIS_PASSWORD"`
	RedisDB       int           `yaml:"redis_db" envconfig:"REDIS_DB"`
	RedisPrefix   string        `yaml:"redis_prefix" envconfig:"REDIS_PREFIX"`
	LatchTTL      time.Duration `yaml:"latch_ttl" envconfig:"LATCH_TTL"`

	LogLevel   string `yaml:"log_level" envconfig:"LOG_LEVEL"`
	LogJSON    bool   `yaml:"log_json" envconfig:"LOG_JSON"`
	Debug      bool   `yaml:"debug" envconfig:"DEBUG"`
	PlayerView bool   `yaml:"player_view" envconfig:"PLAYER_VIEW"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Dir:              ".",
		ExportDir:        ".",
		Provider:         ProviderGemini,
		Timeout:          defaultTimeout,
		MaxRetries:       2,
		Temperature:      0.4,
		MaxDocumentChars: turn.DefaultMaxDocumentChars,
		MaxInputSize:     turn.DefaultMaxInputSize,
		StepKeyword:      segment.DefaultKeyword,
		StepMarkers:      append([]string(nil), segment.DefaultMarkers...),
		Clocks:           domain.DefaultClocks(),
		Port:             8080,
		RedisPrefix:      "gmboard:",
		LatchTTL:         5 * time.Minute,
		LogLevel:         "info",
	}
}

// Load builds the configuration: defaults, then the YAML file at path (when
// path is not empty), then the environment.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	if cfg.APIKey == "" {
		cfg.APIKey = providerKey(cfg.Provider)
	}
	return cfg, nil
}

// providerKey falls back to the provider's conventional variable.
func providerKey(provider string) string {
	var names []string
	switch provider {
	case ProviderGemini:
		names = []string{"GEMINI_API_KEY", "GOOGLE_API_KEY"}
	case ProviderOpenAI:
		names = []string{"OPENAI_API_KEY"}
	}
	for _, name := range names {
		if v := os.Getenv(name); v != "" {
			return v
		}
	}
	return ""
}

// Validate checks field ranges. It does not require an API key; the
// generator constructors report that.
func (c *Config) Validate() error {
	var errs []error
	switch c.Provider {
	case ProviderGemini, ProviderOpenAI:
	case ProviderScripted:
	default:
		errs = append(errs, fmt.Errorf("unknown provider %q", c.Provider))
	}
	if c.Timeout < 0 {
		errs = append(errs, errors.New("timeout must not be negative"))
	}
	if c.MaxRetries < 0 {
		errs = append(errs, errors.New("max_retries must not be negative"))
	}
	if c.MaxDocumentChars <= 0 {
		errs = append(errs, errors.New("max_document_chars must be positive"))
	}
	if c.MaxInputSize < 0 {
		errs = append(errs, errors.New("max_input_size must not be negative"))
	}
	if strings.TrimSpace(c.StepKeyword) == "" {
		errs = append(errs, errors.New("step_keyword must not be blank"))
	}
	if c.Port < 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range", c.Port))
	}
	if budget := c.GenerationBudget(); c.LatchTTL <= budget {
		errs = append(errs, fmt.Errorf("latch_ttl %s must exceed the worst-case generation time %s", c.LatchTTL, budget))
	}
	for _, clock := range c.Clocks {
		if err := clock.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// GenerationBudget is the longest a single generation can take: every
// attempt running to its timeout plus the backoff between them.
func (c *Config) GenerationBudget() time.Duration {
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	retries := max(c.MaxRetries, 0)
	budget := timeout * time.Duration(retries+1)
	for i := range retries {
		budget += RetryBackoff << i
	}
	return budget
}

// Level is the effective log level; Debug wins over LogLevel.
func (c *Config) Level() slog.Level {
	if c.Debug {
		return slog.LevelDebug
	}
	level, _ := logging.ParseLevel(c.LogLevel)
	return level
}

// Logger builds the application logger on stderr.
func (c *Config) Logger() *slog.Logger {
	return logging.NewWithWriter(os.Stderr, c.Level(), c.LogJSON)
}
