// internal/common/config/config.go
package config

import (
	"fmt"
	"strings"
)

// Config is the main application configuration struct.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Server    ServerConfig    `mapstructure:"server"`
	Sources   SourcesConfig   `mapstructure:"sources"`
	Inference InferenceConfig `mapstructure:"inference"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Report    ReportConfig    `mapstructure:"report"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Address         string `mapstructure:"address"`
	ReadTimeout     int    `mapstructure:"read_timeout"`     // milliseconds
	WriteTimeout    int    `mapstructure:"write_timeout"`    // milliseconds
	ShutdownTimeout int    `mapstructure:"shutdown_timeout"` // milliseconds
}

// --- Lookup Source Configuration ---

// SourcesConfig holds settings for the three upstream lookup sources.
type SourcesConfig struct {
	PubChem   SourceConfig `mapstructure:"pubchem"`
	PubMed    PubMedConfig `mapstructure:"pubmed"`
	Wikipedia SourceConfig `mapstructure:"wikipedia"`
}

// SourceConfig holds the core settings applicable to every lookup source.
type SourceConfig struct {
	BaseURL string `mapstructure:"base_url"`
	Timeout int    `mapstructure:"timeout"` // milliseconds
}

type PubMedConfig struct {
	BaseURL    string `mapstructure:"base_url"`
	Timeout    int    `mapstructure:"timeout"` // milliseconds
	MaxResults int    `mapstructure:"max_results"`
}

// --- Inference Backend Configuration ---

type InferenceConfig struct {
	BaseURL           string  `mapstructure:"base_url"`
	Model             string  `mapstructure:"model"`
	APIKey            string  `mapstructure:"api_key"`
	Timeout           int     `mapstructure:"timeout"` // milliseconds
	MaxAttempts       int     `mapstructure:"max_attempts"`
	RetryDelay        int     `mapstructure:"retry_delay"` // milliseconds
	MaxNewTokens      int     `mapstructure:"max_new_tokens"`
	Temperature       float64 `mapstructure:"temperature"`
	RequestsPerMinute int     `mapstructure:"requests_per_minute"`
	Burst             int     `mapstructure:"burst"`
}

// GetURL returns the full model endpoint URL.
func (i InferenceConfig) GetURL() string {
	return fmt.Sprintf("%s/models/%s", strings.TrimRight(i.BaseURL, "/"), i.Model)
}

// --- Cache Configuration ---

type CacheConfig struct {
	Backend string      `mapstructure:"backend"` // memory | redis | none
	TTL     int         `mapstructure:"ttl"`     // milliseconds
	Redis   RedisConfig `mapstructure:"redis"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// --- Report Assembly Configuration ---

// ReportConfig bounds the literature context fed to the model.
type ReportConfig struct {
	MaxAbstracts     int `mapstructure:"max_abstracts"`
	AbstractMaxChars int `mapstructure:"abstract_max_chars"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
