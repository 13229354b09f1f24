// internal/lookup/pubchem/config.go
package pubchem

import "time"

type Config struct {
	BaseURL  string
	Timeout  time.Duration
	CacheTTL time.Duration
}

func LoadConfig() *Config {
	return &Config{
		BaseURL:  "https://pubchem.ncbi.nlm.nih.gov/rest/pug",
		Timeout:  30 * time.Second,
		CacheTTL: 15 * time.Minute,
	}
}
