// internal/lookup/pubmed/config.go
package pubmed

import "time"

type Config struct {
	BaseURL    string
	Timeout    time.Duration
	MaxResults int
	CacheTTL   time.Duration
}

func LoadConfig() *Config {
	return &Config{
		BaseURL:    "https://eutils.ncbi.nlm.nih.gov/entrez/eutils",
		Timeout:    30 * time.Second,
		MaxResults: 5,
		CacheTTL:   15 * time.Minute,
	}
}
