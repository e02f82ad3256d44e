package config

import (
	"fmt"
	"time"
)

type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Server     ServerConfig     `mapstructure:"server"`
	Generation GenerationConfig `mapstructure:"generation"`
	Breeds     BreedsConfig     `mapstructure:"breeds"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Lexicon    LexiconConfig    `mapstructure:"lexicon"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Tracing    TracingConfig    `mapstructure:"tracing"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Port              int      `mapstructure:"port"`
	APIPrefix         string   `mapstructure:"api_prefix"`
	AllowedOrigins    []string `mapstructure:"allowed_origins"`
	ReadHeaderTimeout int      `mapstructure:"read_header_timeout"` // milliseconds
	ShutdownTimeout   int      `mapstructure:"shutdown_timeout"`    // milliseconds
}

func (s ServerConfig) Addr() string {
	return fmt.Sprintf(":%d", s.Port)
}

// GenerationConfig selects and tunes the language model backend. A missing
// API key is allowed at startup; requests then fail with a configuration
// error.
type GenerationConfig struct {
	Provider                string `mapstructure:"provider"`
	APIKey                  string `mapstructure:"api_key"`
	Model                   string `mapstructure:"model"`
	BaseURL                 string `mapstructure:"base_url"`
	MaxTokens               int    `mapstructure:"max_tokens"`
	HeaderTimeout           int    `mapstructure:"header_timeout"` // milliseconds
	MaxAttempts             int    `mapstructure:"max_attempts"`
	BaseDelay               int    `mapstructure:"base_delay"` // milliseconds
	MaxJitter               int    `mapstructure:"max_jitter"` // milliseconds
	ReferenceCount          int    `mapstructure:"reference_count"`
	EmergencyReferenceCount int    `mapstructure:"emergency_reference_count"`
}

type BreedsConfig struct {
	BaseURL  string `mapstructure:"base_url"`
	APIKey   string `mapstructure:"api_key"`
	Timeout  int    `mapstructure:"timeout"`   // milliseconds
	CacheTTL int    `mapstructure:"cache_ttl"` // milliseconds
}

type DatabaseConfig struct {
	Redis RedisConfig `mapstructure:"redis"`
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type LexiconConfig struct {
	// Path to a lexicon JSON file. Empty uses the embedded tables.
	Path string `mapstructure:"path"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}

// TracingConfig selects where finished spans go. Exporter is "none" or "log".
type TracingConfig struct {
	Exporter    string  `mapstructure:"exporter"`
	SampleRatio float64 `mapstructure:"sample_ratio"`
}
