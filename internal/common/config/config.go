// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App     AppConfig     `mapstructure:"app"`
	Server  ServerConfig  `mapstructure:"server"`
	OpenAI  OpenAIConfig  `mapstructure:"openai"`
	Storage StorageConfig `mapstructure:"storage"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Port            int `mapstructure:"port"`
	ReadTimeout     int `mapstructure:"read_timeout"`     // milliseconds
	WriteTimeout    int `mapstructure:"write_timeout"`    // milliseconds
	ShutdownTimeout int `mapstructure:"shutdown_timeout"` // milliseconds
}

// OpenAIConfig holds settings for the OpenAI responses API integration.
type OpenAIConfig struct {
	BaseURL     string  `mapstructure:"base_url"`
	APIKey      string  `mapstructure:"api_key"`
	Model       string  `mapstructure:"model"`
	Temperature float64 `mapstructure:"temperature"`
	Timeout     int     `mapstructure:"timeout"` // milliseconds

	RetryMaxAttempts  int `mapstructure:"retry_max_attempts"`
	RetryInitialDelay int `mapstructure:"retry_initial_delay"` // milliseconds
	RetryMaxBackoff   int `mapstructure:"retry_max_backoff"`   // milliseconds

	SchemaName   string `mapstructure:"schema_name"`
	IdeaMinItems int    `mapstructure:"idea_min_items"`
	IdeaMaxItems int    `mapstructure:"idea_max_items"`

	BusinessContext string `mapstructure:"business_context"`
	TargetAudience  string `mapstructure:"target_audience"`
}

// AnalysisConfig holds content-handling bounds for the orchestrator.
type AnalysisConfig struct {
	MaxContentLength       int `mapstructure:"max_content_length"`
	TruncatedContentLength int `mapstructure:"truncated_content_length"`
	TruncationThreshold    int `mapstructure:"truncation_threshold"`
}

type StorageConfig struct {
	Backend     string         `mapstructure:"backend"` // memory | redis | postgres
	MaxSessions int            `mapstructure:"max_sessions"`
	SessionTTL  int            `mapstructure:"session_ttl"` // seconds, redis only, 0 = no expiry
	Redis       RedisConfig    `mapstructure:"redis"`
	Postgres    PostgresConfig `mapstructure:"postgres"`
	Analysis    AnalysisConfig `mapstructure:"analysis"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
