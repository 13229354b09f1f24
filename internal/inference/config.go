// internal/inference/config.go
package inference

import (
	"fmt"
	"os"
	"strings"
	"time"
)

type Config struct {
	BaseURL           string
	Model             string
	APIKey            string
	Timeout           time.Duration
	RequestsPerMinute int
	Burst             int
}

func LoadConfig() *Config {
	return &Config{
		BaseURL:           getEnv("INFERENCE_BASE_URL", "https://api-inference.huggingface.co"),
		Model:             getEnv("INFERENCE_MODEL", "EssentialAI/rnj-1-instruct"),
		APIKey:            getEnv("HF_TOKEN", ""),
		Timeout:           60 * time.Second,
		RequestsPerMinute: 30,
		Burst:             2,
	}
}

// URL returns the full model endpoint.
func (c *Config) URL() string {
	return fmt.Sprintf("%s/models/%s", strings.TrimRight(c.BaseURL, "/"), c.Model)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
