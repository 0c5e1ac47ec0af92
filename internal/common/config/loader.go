// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

func Load() (*Config, error) {
	loadEnvFile()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath("../../configs")
	viper.AddConfigPath(".")

	// Enable ENV override like OPENAI_API_KEY
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	// Environment-specific overlay, ignored if not present.
	envConfigFile := fmt.Sprintf("config.%s", env)
	viper.SetConfigName(envConfigFile)
	_ = viper.MergeInConfig()

	expandEnvVars(viper.GetViper())

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	viper.SetConfigFile(path)
	viper.SetConfigType("yaml")

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	expandEnvVars(viper.GetViper())

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
	}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// Find project root by looking for go.mod
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

// expandEnvVars resolves ${VAR} placeholders in string config values.
func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		val := v.Get(key)

		if strVal, ok := val.(string); ok {
			if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
				expanded := os.ExpandEnv(strVal)
				if expanded != strVal && expanded != "" {
					v.Set(key, expanded)
				}
			}
		}
	}
}

// overrideEmptyConfig fills secrets from the environment when the config file
// left them empty.
func overrideEmptyConfig(cfg *Config) {
	if cfg.OpenAI.APIKey == "" {
		if val := os.Getenv("OPENAI_API_KEY"); val != "" {
			cfg.OpenAI.APIKey = val
		}
	}
	if cfg.Storage.Redis.Password == "" {
		if val := os.Getenv("REDIS_PASSWORD"); val != "" {
			cfg.Storage.Redis.Password = val
		}
	}
	if cfg.Storage.Postgres.User == "" {
		if val := os.Getenv("DB_USER"); val != "" {
			cfg.Storage.Postgres.User = val
		}
	}
	if cfg.Storage.Postgres.Password == "" {
		if val := os.Getenv("DB_PASSWORD"); val != "" {
			cfg.Storage.Postgres.Password = val
		}
	}
}

// applyDefaults sets default values for optional configuration fields
func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 30000
	}
	if cfg.Server.WriteTimeout == 0 {
		// Analysis requests wait on the upstream AI call plus retries.
		cfg.Server.WriteTimeout = 180000
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10000
	}

	if cfg.OpenAI.BaseURL == "" {
		cfg.OpenAI.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.OpenAI.Model == "" {
		cfg.OpenAI.Model = "gpt-4o-mini"
	}
	if cfg.OpenAI.Temperature == 0 {
		cfg.OpenAI.Temperature = 0.7
	}
	if cfg.OpenAI.Timeout == 0 {
		cfg.OpenAI.Timeout = 120000
	}
	if cfg.OpenAI.RetryMaxAttempts == 0 {
		cfg.OpenAI.RetryMaxAttempts = 3
	}
	if cfg.OpenAI.RetryInitialDelay == 0 {
		cfg.OpenAI.RetryInitialDelay = 1000
	}
	if cfg.OpenAI.RetryMaxBackoff == 0 {
		cfg.OpenAI.RetryMaxBackoff = 5000
	}
	if cfg.OpenAI.SchemaName == "" {
		cfg.OpenAI.SchemaName = "content_ideas_schema"
	}
	if cfg.OpenAI.IdeaMinItems == 0 {
		cfg.OpenAI.IdeaMinItems = 1
	}
	if cfg.OpenAI.IdeaMaxItems == 0 {
		cfg.OpenAI.IdeaMaxItems = 2
	}
	if cfg.OpenAI.BusinessContext == "" {
		cfg.OpenAI.BusinessContext = "I have a small startup that helps small business collect, manage and analyze their reviews"
	}
	if cfg.OpenAI.TargetAudience == "" {
		cfg.OpenAI.TargetAudience = "mostly small business owners"
	}

	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = "memory"
	}
	if cfg.Storage.MaxSessions == 0 {
		cfg.Storage.MaxSessions = 50
	}
	if cfg.Storage.Analysis.MaxContentLength == 0 {
		cfg.Storage.Analysis.MaxContentLength = 50000
	}
	if cfg.Storage.Analysis.TruncatedContentLength == 0 {
		cfg.Storage.Analysis.TruncatedContentLength = 30000
	}
	if cfg.Storage.Analysis.TruncationThreshold == 0 {
		cfg.Storage.Analysis.TruncationThreshold = 10000
	}
	if cfg.Storage.Postgres.MaxConnections == 0 {
		cfg.Storage.Postgres.MaxConnections = 25
	}
	if cfg.Storage.Postgres.MaxIdle == 0 {
		cfg.Storage.Postgres.MaxIdle = 5
	}
	if cfg.Storage.Postgres.SSLMode == "" {
		cfg.Storage.Postgres.SSLMode = "disable"
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}
}

// validateConfig validates critical configuration fields
func validateConfig(cfg *Config) error {
	if cfg.OpenAI.APIKey == "" {
		return fmt.Errorf("openai.api_key is required")
	}

	switch cfg.Storage.Backend {
	case "memory":
	case "redis":
		if cfg.Storage.Redis.Address == "" {
			return fmt.Errorf("storage.redis.address is required")
		}
	case "postgres":
		if cfg.Storage.Postgres.Host == "" {
			return fmt.Errorf("storage.postgres.host is required")
		}
		if cfg.Storage.Postgres.Database == "" {
			return fmt.Errorf("storage.postgres.database is required")
		}
		if cfg.Storage.Postgres.User == "" {
			return fmt.Errorf("storage.postgres.user is required")
		}
	default:
		return fmt.Errorf("storage.backend must be one of memory, redis, postgres")
	}

	if cfg.Storage.Analysis.TruncatedContentLength > cfg.Storage.Analysis.MaxContentLength {
		return fmt.Errorf("storage.analysis.truncated_content_length must not exceed max_content_length")
	}

	return nil
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}
