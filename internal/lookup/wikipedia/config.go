// internal/lookup/wikipedia/config.go
package wikipedia

import "time"

type Config struct {
	BaseURL  string
	Timeout  time.Duration
	CacheTTL time.Duration
}

func LoadConfig() *Config {
	return &Config{
		BaseURL:  "https://en.wikipedia.org/api/rest_v1",
		Timeout:  10 * time.Second,
		CacheTTL: 15 * time.Minute,
	}
}
