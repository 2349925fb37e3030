package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Default configuration values
const (
	DefaultMaxBodySize int64 = 2 * 1024 * 1024 // 2MB
	DefaultConfigPath        = "config.yaml"
)

// PlannerConfig holds configuration for the planning engines
type PlannerConfig struct {
	MaxModelAttempts int `yaml:"max_model_attempts"` // Retry budget for schema mismatches (default: 3)
	PromptMaxFiles   int `yaml:"prompt_max_files"`   // Max files rendered into the model prompt (default: 40)
	PromptMaxHunks   int `yaml:"prompt_max_hunks"`   // Max hunk IDs rendered per file (default: 6)
	BatchConcurrency int `yaml:"batch_concurrency"`  // Max concurrent plans in a batch request (default: 5)
	BatchMaxRequests int `yaml:"batch_max_requests"` // Max items accepted per batch request (default: 20)
}

// Config holds the configuration for the diff review planner service
type Config struct {
	Log struct {
		Level    string `yaml:"level"`  // DEBUG, INFO, WARN, ERROR
		Format   string `yaml:"format"` // text, json
		Output   string `yaml:"output"` // stdout, stderr, /path/to/file
		Rotation struct {
			MaxSize    int  `yaml:"max_size"`    // Megabytes
			MaxBackups int  `yaml:"max_backups"` // Number of old files to keep
			MaxAge     int  `yaml:"max_age"`     // Days to keep
			Compress   bool `yaml:"compress"`
		} `yaml:"rotation"`
	} `yaml:"log"`

	Server struct {
		Port             int           `yaml:"port"`
		ConcurrencyLimit int64         `yaml:"concurrency_limit"`
		ReadTimeout      time.Duration `yaml:"read_timeout"`
		WriteTimeout     time.Duration `yaml:"write_timeout"`
		MaxBodySize      int64         `yaml:"max_body_size"`
	} `yaml:"server"`

	LLM struct {
		Backend  string        `yaml:"backend"` // openai, gemini, langchain
		Model    string        `yaml:"model"`
		Endpoint string        `yaml:"endpoint"`
		APIKey   string        `yaml:"api_key"` // From YAML or Env
		Timeout  time.Duration `yaml:"timeout"`
	} `yaml:"llm"`

	Planner PlannerConfig `yaml:"planner"`
}

// GetLogLevel returns the slog.Level based on Log.Level string
func (c *Config) GetLogLevel() slog.Level {
	switch strings.ToUpper(c.Log.Level) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ModelEnabled reports whether a generation backend can be constructed.
// The heuristic endpoints work without one.
func (c *Config) ModelEnabled() bool {
	return c.LLM.APIKey != ""
}

// LoadConfig loads configuration from YAML file and supplements with environment variables
func LoadConfig() *Config {
	cfg := &Config{}

	// Set some defaults before loading
	cfg.Log.Level = "INFO"
	cfg.Log.Format = "text"
	cfg.Log.Output = "stdout"
	cfg.Server.Port = 8080
	cfg.Server.ConcurrencyLimit = 10
	cfg.Server.ReadTimeout = 10 * time.Second
	cfg.Server.WriteTimeout = 30 * time.Second
	cfg.Server.MaxBodySize = DefaultMaxBodySize
	cfg.LLM.Backend = BackendOpenAI
	cfg.LLM.Endpoint = "https://api.openai.com/v1"
	cfg.LLM.Model = "gpt-4o"
	cfg.LLM.Timeout = 60 * time.Second

	// Planner defaults
	cfg.Planner.MaxModelAttempts = DefaultMaxModelAttempts
	cfg.Planner.PromptMaxFiles = DefaultPromptMaxFiles
	cfg.Planner.PromptMaxHunks = DefaultPromptMaxHunks
	cfg.Planner.BatchConcurrency = DefaultBatchConcurrency
	cfg.Planner.BatchMaxRequests = DefaultBatchMaxRequests

	// Log Rotation defaults
	cfg.Log.Rotation.MaxSize = 100
	cfg.Log.Rotation.MaxBackups = 10
	cfg.Log.Rotation.MaxAge = 7
	cfg.Log.Rotation.Compress = true

	// Try to load from YAML
	configPath := getEnv("CONFIG_PATH", DefaultConfigPath)
	data, err := os.ReadFile(configPath)
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			slog.Error("unmarshal config failed", "error", err, "path", configPath)
			os.Exit(1)
		}
		slog.Info("config loaded", "path", configPath)
	} else {
		if !os.IsNotExist(err) {
			slog.Error("read config failed", "error", err, "path", configPath)
			os.Exit(1)
		}
		slog.Info("config not found, using defaults", "path", configPath)
	}

	// Always supplement/override with environment variables for secrets and critical items
	cfg.LLM.APIKey = getEnv("LLM_API_KEY", cfg.LLM.APIKey)

	if envBackend := os.Getenv("LLM_BACKEND"); envBackend != "" {
		cfg.LLM.Backend = envBackend
	}
	if envModel := os.Getenv("LLM_MODEL"); envModel != "" {
		cfg.LLM.Model = envModel
	}
	if envEndpoint := os.Getenv("LLM_ENDPOINT"); envEndpoint != "" {
		cfg.LLM.Endpoint = envEndpoint
	}
	if envPort := getEnvInt("PORT", 0); envPort != 0 {
		cfg.Server.Port = envPort
	}
	if envLogLevel := os.Getenv("LOG_LEVEL"); envLogLevel != "" {
		cfg.Log.Level = envLogLevel
	}
	if envLogFormat := os.Getenv("LOG_FORMAT"); envLogFormat != "" {
		cfg.Log.Format = envLogFormat
	}
	if envLogOutput := getEnv("LOG_OUTPUT", ""); envLogOutput != "" {
		cfg.Log.Output = envLogOutput
	}
	if envLogMaxSize := getEnvInt("LOG_MAX_SIZE", 0); envLogMaxSize != 0 {
		cfg.Log.Rotation.MaxSize = envLogMaxSize
	}
	if envLogMaxBackups := getEnvInt("LOG_MAX_BACKUPS", 0); envLogMaxBackups != 0 {
		cfg.Log.Rotation.MaxBackups = envLogMaxBackups
	}
	if envLogMaxAge := getEnvInt("LOG_MAX_AGE", 0); envLogMaxAge != 0 {
		cfg.Log.Rotation.MaxAge = envLogMaxAge
	}

	return cfg
}

// Validate validates the configuration
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("invalid server port: %d", c.Server.Port))
	}

	switch c.LLM.Backend {
	case BackendOpenAI, BackendGemini, BackendLangChain:
	default:
		errs = append(errs, fmt.Sprintf("unknown llm backend: %q", c.LLM.Backend))
	}

	if c.LLM.Timeout <= 0 {
		errs = append(errs, fmt.Sprintf("llm timeout must be positive: %v", c.LLM.Timeout))
	}

	if c.Planner.MaxModelAttempts < 1 {
		errs = append(errs, fmt.Sprintf("max_model_attempts must be at least 1: %d", c.Planner.MaxModelAttempts))
	}
	if c.Planner.PromptMaxFiles < 1 {
		errs = append(errs, fmt.Sprintf("prompt_max_files must be at least 1: %d", c.Planner.PromptMaxFiles))
	}
	if c.Planner.PromptMaxHunks < 1 {
		errs = append(errs, fmt.Sprintf("prompt_max_hunks must be at least 1: %d", c.Planner.PromptMaxHunks))
	}
	if c.Planner.BatchConcurrency < 1 {
		errs = append(errs, fmt.Sprintf("batch_concurrency must be at least 1: %d", c.Planner.BatchConcurrency))
	}
	if c.Planner.BatchMaxRequests < 1 {
		errs = append(errs, fmt.Sprintf("batch_max_requests must be at least 1: %d", c.Planner.BatchMaxRequests))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config invalid: %s", strings.Join(errs, "; "))
	}
	return nil
}

// Helper functions for reading environment variables

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return fallback
}
