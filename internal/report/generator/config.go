// internal/report/generator/config.go
package generator

import "time"

type Config struct {
	MaxAttempts  int
	RetryDelay   time.Duration
	MaxNewTokens int
	Temperature  float64
}

func LoadConfig() *Config {
	return &Config{
		MaxAttempts:  3,
		RetryDelay:   3 * time.Second,
		MaxNewTokens: 600,
		Temperature:  0.3,
	}
}
