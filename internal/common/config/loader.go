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

	"dyemind/internal/common/errors"
	"dyemind/internal/common/validation"
)

func Load() (*Config, error) {
	loadEnvFile()

	// Base config
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath("../../configs")
	viper.AddConfigPath(".")

	// Enable ENV override like INFERENCE_API_KEY
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	// 1️⃣ LOAD BASE CONFIG
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	// 2️⃣ LOAD ENV CONFIG
	envConfigFile := fmt.Sprintf("config.%s", env)
	viper.SetConfigName(envConfigFile)
	_ = viper.MergeInConfig() // ignore error if not found

	// 3️⃣ EXPAND ENV PLACEHOLDERS
	expandEnvVars(viper.GetViper())

	// 4️⃣ Unmarshal final config
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)

	// 5️⃣ DIRECT OVERRIDE IF STILL EMPTY
	overrideEmptyConfig(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// loadEnvFile loads .env from multiple possible locations.
func loadEnvFile() {
	// Try multiple paths (for running from different directories)
	possiblePaths := []string{
		".env",          // Current directory
		"../.env",       // Parent directory
		"../../.env",    // Two levels up (for tests in test/e2e/)
		"../../../.env", // Three levels up
	}

	// Also try to find project root by looking for go.mod
	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				fmt.Printf("✅ Loaded .env from: %s\n", path)
				return
			}
		}
	}

	fmt.Printf("⚠️  .env file not found in any location, using system environment variables\n")
}

// Find project root by looking for go.mod
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	// Walk up directories looking for go.mod
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			break
		}
		dir = parent
	}

	return ""
}

// Improved environment variable expansion
func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		val := v.Get(key)

		// Only process string values
		if strVal, ok := val.(string); ok {
			// Check if it contains environment variable pattern
			if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
				expanded := os.ExpandEnv(strVal)
				if expanded != strVal && expanded != "" {
					v.Set(key, expanded)
				}
			}
		}
	}
}

// Direct override if config values are still empty after expansion
func overrideEmptyConfig(cfg *Config) {
	// Inference credential (HF_TOKEN is the conventional name)
	if cfg.Inference.APIKey == "" {
		if val := os.Getenv("HF_TOKEN"); val != "" {
			cfg.Inference.APIKey = val
		}
	}
	if cfg.Inference.APIKey == "" {
		if val := os.Getenv("HUGGINGFACE_TOKEN"); val != "" {
			cfg.Inference.APIKey = val
		}
	}

	if cfg.Inference.Model == "" {
		if val := os.Getenv("INFERENCE_MODEL"); val != "" {
			cfg.Inference.Model = val
		}
	}

	// Cache backend
	if cfg.Cache.Redis.Address == "" {
		if val := os.Getenv("REDIS_ADDRESS"); val != "" {
			cfg.Cache.Redis.Address = val
		}
	}
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile() // Load env file first

	viper.SetConfigFile(path)
	viper.SetConfigType("yaml")

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	// Expand environment variables before unmarshal
	expandEnvVars(viper.GetViper())

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for optional configuration fields
func applyDefaults(cfg *Config) {
	// App defaults
	if cfg.App.Name == "" {
		cfg.App.Name = "dyemind"
	}
	if cfg.App.Environment == "" {
		cfg.App.Environment = "development"
	}

	// Server defaults
	if cfg.Server.Address == "" {
		cfg.Server.Address = ":8080"
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 15000
	}
	if cfg.Server.WriteTimeout == 0 {
		// Must outlast the full inference retry budget
		cfg.Server.WriteTimeout = 240000
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 30000
	}

	// Lookup source defaults
	if cfg.Sources.PubChem.BaseURL == "" {
		cfg.Sources.PubChem.BaseURL = "https://pubchem.ncbi.nlm.nih.gov/rest/pug"
	}
	if cfg.Sources.PubChem.Timeout == 0 {
		cfg.Sources.PubChem.Timeout = 30000
	}
	if cfg.Sources.PubMed.BaseURL == "" {
		cfg.Sources.PubMed.BaseURL = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils"
	}
	if cfg.Sources.PubMed.Timeout == 0 {
		cfg.Sources.PubMed.Timeout = 30000
	}
	if cfg.Sources.PubMed.MaxResults == 0 {
		cfg.Sources.PubMed.MaxResults = 5
	}
	if cfg.Sources.Wikipedia.BaseURL == "" {
		cfg.Sources.Wikipedia.BaseURL = "https://en.wikipedia.org/api/rest_v1"
	}
	if cfg.Sources.Wikipedia.Timeout == 0 {
		cfg.Sources.Wikipedia.Timeout = 10000
	}

	// Inference defaults
	if cfg.Inference.BaseURL == "" {
		cfg.Inference.BaseURL = "https://api-inference.huggingface.co"
	}
	if cfg.Inference.Model == "" {
		cfg.Inference.Model = "EssentialAI/rnj-1-instruct"
	}
	if cfg.Inference.Timeout == 0 {
		cfg.Inference.Timeout = 60000
	}
	if cfg.Inference.MaxAttempts == 0 {
		cfg.Inference.MaxAttempts = 3
	}
	if cfg.Inference.RetryDelay == 0 {
		cfg.Inference.RetryDelay = 3000
	}
	if cfg.Inference.MaxNewTokens == 0 {
		cfg.Inference.MaxNewTokens = 600
	}
	if cfg.Inference.Temperature == 0 {
		cfg.Inference.Temperature = 0.3
	}
	if cfg.Inference.RequestsPerMinute == 0 {
		cfg.Inference.RequestsPerMinute = 30
	}
	if cfg.Inference.Burst == 0 {
		cfg.Inference.Burst = 2
	}

	// Cache defaults
	if cfg.Cache.Backend == "" {
		cfg.Cache.Backend = "memory"
	}
	if cfg.Cache.TTL == 0 {
		cfg.Cache.TTL = 900000 // 15 minutes
	}

	// Report defaults
	if cfg.Report.MaxAbstracts == 0 {
		cfg.Report.MaxAbstracts = 3
	}
	if cfg.Report.AbstractMaxChars == 0 {
		cfg.Report.AbstractMaxChars = 300
	}

	// Logging defaults
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

// Validate checks critical configuration fields. It runs once at startup,
// before any request is accepted.
func Validate(cfg *Config) error {
	if cfg.Inference.APIKey == "" {
		return errors.NewMissingCredentialError("inference.api_key")
	}
	if !validation.ValidateURL(cfg.Inference.BaseURL) {
		return fmt.Errorf("inference.base_url must be an http(s) URL")
	}
	if cfg.Inference.Model == "" {
		return fmt.Errorf("inference.model is required")
	}
	if cfg.Inference.MaxAttempts < 1 {
		return fmt.Errorf("inference.max_attempts must be at least 1")
	}

	if !validation.ValidateURL(cfg.Sources.PubChem.BaseURL) {
		return fmt.Errorf("sources.pubchem.base_url must be an http(s) URL")
	}
	if !validation.ValidateURL(cfg.Sources.PubMed.BaseURL) {
		return fmt.Errorf("sources.pubmed.base_url must be an http(s) URL")
	}
	if !validation.ValidateURL(cfg.Sources.Wikipedia.BaseURL) {
		return fmt.Errorf("sources.wikipedia.base_url must be an http(s) URL")
	}

	switch cfg.Cache.Backend {
	case "memory", "none":
	case "redis":
		if cfg.Cache.Redis.Address == "" {
			return fmt.Errorf("cache.redis.address is required when cache.backend is redis")
		}
	default:
		return fmt.Errorf("cache.backend must be one of memory, redis, none")
	}

	return nil
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}
