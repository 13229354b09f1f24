// internal/inference/client.go

// Package inference is the stateless HTTP wrapper around the hosted model
// endpoint. It authenticates, serializes, and reads; interpreting the
// response shape stays with the report generator so schema drift is handled
// in one place.
package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/time/rate"
)

// Logger interface definition
type Logger interface {
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
	With(fields map[string]interface{}) Logger
}

// Request is the generation payload for the hosted text-generation API.
type Request struct {
	Inputs     string     `json:"inputs"`
	Parameters Parameters `json:"parameters"`
}

type Parameters struct {
	MaxNewTokens   int     `json:"max_new_tokens"`
	Temperature    float64 `json:"temperature"`
	ReturnFullText bool    `json:"return_full_text"`
}

// Response carries the raw endpoint reply. The body stays undecoded because
// the endpoint's schema is not contractually stable.
type Response struct {
	StatusCode int
	Body       []byte
}

type Client struct {
	config  *Config
	client  *http.Client
	limiter *rate.Limiter
	logger  Logger
}

// NewClient builds the model endpoint client. A non-positive
// RequestsPerMinute disables client-side throttling.
func NewClient(config *Config, log Logger) *Client {
	limit := rate.Inf
	burst := config.Burst
	if config.RequestsPerMinute > 0 {
		limit = rate.Limit(float64(config.RequestsPerMinute) / 60.0)
		if burst < 1 {
			burst = 1
		}
	}

	return &Client{
		config:  config,
		client:  &http.Client{Timeout: config.Timeout},
		limiter: rate.NewLimiter(limit, burst),
		logger: log.With(map[string]interface{}{
			"model": config.Model,
		}),
	}
}

// Generate posts the prompt with its generation parameters and returns the
// raw response. A non-2xx status is not an error here; only transport and
// serialization failures are.
func (c *Client) Generate(ctx context.Context, prompt string, params Parameters) (*Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait aborted: %w", err)
	}

	payload, err := json.Marshal(Request{
		Inputs:     prompt,
		Parameters: params,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal generation request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.config.URL(), bytes.NewBuffer(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create generation request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.config.APIKey))

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("generation request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read generation response: %w", err)
	}

	c.logger.Info("inference call completed", map[string]interface{}{
		"status": resp.StatusCode,
		"bytes":  len(body),
	})

	return &Response{
		StatusCode: resp.StatusCode,
		Body:       body,
	}, nil
}
