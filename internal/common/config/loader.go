package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var knownProviders = map[string]bool{
	"gemini":    true,
	"openai":    true,
	"anthropic": true,
	"ollama":    true,
}

// Load reads configs/config.yaml, overlays config.<APP_ENVIRONMENT>.yaml
// and environment variables, then applies defaults and validation.
func Load() (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}
	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig()

	return finish(v)
}

// LoadFromFile reads a single YAML file with env overrides.
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return finish(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	applyDefaults(v)
	return v
}

func finish(v *viper.Viper) (*Config, error) {
	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// loadEnvFile loads the first .env found near the working directory or the
// module root. Existing environment variables win.
func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
		"../../../.env",
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
			return ""
		}
		dir = parent
	}
}

// expandEnvVars resolves ${VAR} placeholders. Unset variables expand to "".
func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok || !strings.Contains(strVal, "$") {
			continue
		}
		if expanded := os.ExpandEnv(strVal); expanded != strVal {
			v.Set(key, expanded)
		}
	}
}

func applyDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "pawsense-api")
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.environment", "development")

	v.SetDefault("server.port", 8000)
	v.SetDefault("server.api_prefix", "/api/v1")
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.read_header_timeout", 10000)
	v.SetDefault("server.shutdown_timeout", 30000)

	v.SetDefault("generation.provider", "gemini")
	v.SetDefault("generation.api_key", "")
	v.SetDefault("generation.model", "")
	v.SetDefault("generation.base_url", "")
	v.SetDefault("generation.max_tokens", 2048)
	v.SetDefault("generation.header_timeout", 30000)
	v.SetDefault("generation.max_attempts", 3)
	v.SetDefault("generation.base_delay", 1000)
	v.SetDefault("generation.max_jitter", 500)
	v.SetDefault("generation.reference_count", 4)
	v.SetDefault("generation.emergency_reference_count", 3)

	v.SetDefault("breeds.base_url", "https://api.thedogapi.com/v1")
	v.SetDefault("breeds.api_key", "")
	v.SetDefault("breeds.timeout", 10000)
	v.SetDefault("breeds.cache_ttl", 86400000)

	v.SetDefault("database.redis.enabled", false)
	v.SetDefault("database.redis.address", "localhost:6379")
	v.SetDefault("database.redis.password", "")
	v.SetDefault("database.redis.db", 0)

	v.SetDefault("lexicon.path", "")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stdout")

	v.SetDefault("tracing.exporter", "none")
	v.SetDefault("tracing.sample_ratio", 1.0)
}

// overrideEmptyConfig falls back to the conventional variable names used by
// each vendor when the config file left a secret empty.
func overrideEmptyConfig(cfg *Config) {
	if cfg.Generation.APIKey == "" {
		for _, name := range providerKeyVars(cfg.Generation.Provider) {
			if val := os.Getenv(name); val != "" {
				cfg.Generation.APIKey = val
				break
			}
		}
	}

	if cfg.Breeds.APIKey == "" {
		if val := os.Getenv("THE_DOG_API_KEY"); val != "" {
			cfg.Breeds.APIKey = val
		}
	}

	if val := os.Getenv("PORT"); val != "" {
		var port int
		if _, err := fmt.Sscanf(val, "%d", &port); err == nil && port > 0 {
			cfg.Server.Port = port
		}
	}
}

func providerKeyVars(provider string) []string {
	switch provider {
	case "openai":
		return []string{"OPENAI_API_KEY"}
	case "anthropic":
		return []string{"ANTHROPIC_API_KEY"}
	case "ollama":
		return nil
	default:
		return []string{"GOOGLE_API_KEY", "GENAI_API_KEY", "GEMINI_API_KEY"}
	}
}

func validateConfig(cfg *Config) error {
	if !knownProviders[cfg.Generation.Provider] {
		return fmt.Errorf("generation.provider %q is not supported", cfg.Generation.Provider)
	}
	if cfg.Generation.MaxAttempts < 1 {
		return fmt.Errorf("generation.max_attempts must be at least 1")
	}
	if cfg.Generation.BaseDelay < 0 || cfg.Generation.MaxJitter < 0 {
		return fmt.Errorf("generation.base_delay and generation.max_jitter must not be negative")
	}
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server.port %d is out of range", cfg.Server.Port)
	}
	if cfg.Breeds.BaseURL == "" {
		return fmt.Errorf("breeds.base_url is required")
	}
	if cfg.Database.Redis.Enabled && cfg.Database.Redis.Address == "" {
		return fmt.Errorf("database.redis.address is required when redis is enabled")
	}
	switch cfg.Tracing.Exporter {
	case "", "none", "log":
	default:
		return fmt.Errorf("tracing.exporter %q is not supported", cfg.Tracing.Exporter)
	}
	if cfg.Tracing.SampleRatio < 0 || cfg.Tracing.SampleRatio > 1 {
		return fmt.Errorf("tracing.sample_ratio must be between 0 and 1")
	}
	return nil
}
