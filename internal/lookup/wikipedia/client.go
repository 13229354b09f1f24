// internal/lookup/wikipedia/client.go
package wikipedia

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"dyemind/internal/common/cache"
	"dyemind/internal/common/httpclient"
	"dyemind/internal/common/metrics"
	"dyemind/internal/models"
)

const (
	Source = "wikipedia"
)

var (
	ErrWikipediaTimeout     = errors.New("WIKIPEDIA_TIMEOUT")
	ErrWikipediaUnavailable = errors.New("WIKIPEDIA_UNAVAILABLE")
)

// Logger interface definition
type Logger interface {
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
	With(fields map[string]interface{}) Logger
}

type Client struct {
	config *Config
	client *httpclient.Client
	cache  cache.Cache
	logger Logger
}

// NewClient builds the encyclopedia lookup client. The cache may be nil, in
// which case every lookup goes upstream.
func NewClient(config *Config, c cache.Cache, log Logger) *Client {
	return &Client{
		config: config,
		client: httpclient.NewClient(config.Timeout),
		cache:  c,
		logger: log.With(map[string]interface{}{
			"source": Source,
		}),
	}
}

// Lookup fetches the page summary for a probe name. It never returns an
// error: any failure is logged and converted into an absent (nil) summary so
// downstream assembly always proceeds.
func (c *Client) Lookup(ctx context.Context, query string) *models.EncyclopediaSummary {
	metrics.LookupRequests.WithLabelValues(Source).Inc()
	metrics.LookupsActive.WithLabelValues(Source).Inc()
	defer metrics.LookupsActive.WithLabelValues(Source).Dec()

	if summary, ok := c.fromCache(ctx, query); ok {
		metrics.LookupCacheHits.WithLabelValues(Source).Inc()
		return summary
	}

	summary, err := c.lookup(ctx, query)
	if err != nil {
		metrics.LookupFailures.WithLabelValues(Source, errorCode(err)).Inc()
		c.logger.Warn("encyclopedia lookup failed, continuing without summary", map[string]interface{}{
			"query": query,
			"error": err.Error(),
		})
		return nil
	}

	c.storeCache(ctx, query, summary)
	return summary
}

func (c *Client) lookup(ctx context.Context, query string) (*models.EncyclopediaSummary, error) {
	title := strings.ReplaceAll(strings.TrimSpace(query), " ", "_")
	summaryURL := fmt.Sprintf("%s/page/summary/%s", c.config.BaseURL, url.PathEscape(title))

	var resp summaryResponse
	if err := c.client.GetJSON(ctx, summaryURL, &resp); err != nil {
		if isNotFound(err) {
			// No page with this title: definitive absence.
			return nil, nil
		}
		return nil, c.classify(ctx, err)
	}

	if strings.TrimSpace(resp.Extract) == "" {
		return nil, nil
	}

	summary := &models.EncyclopediaSummary{
		Title:   resp.Title,
		Extract: resp.Extract,
		Link:    resp.ContentURLs.Desktop.Page,
	}

	c.logger.Info("encyclopedia lookup completed", map[string]interface{}{
		"query": query,
		"title": resp.Title,
	})

	return summary, nil
}

func (c *Client) fromCache(ctx context.Context, query string) (*models.EncyclopediaSummary, bool) {
	if c.cache == nil {
		return nil, false
	}

	raw, found, err := c.cache.Get(ctx, cache.Key(Source, query))
	if err != nil || !found {
		return nil, false
	}

	var summary *models.EncyclopediaSummary
	if err := json.Unmarshal([]byte(raw), &summary); err != nil {
		return nil, false
	}
	return summary, true
}

// storeCache memoizes the lookup result, including definitive absence (a nil
// summary marshals as "null"). Transport failures are never cached.
func (c *Client) storeCache(ctx context.Context, query string, summary *models.EncyclopediaSummary) {
	if c.cache == nil {
		return
	}

	raw, err := json.Marshal(summary)
	if err != nil {
		return
	}
	if err := c.cache.Set(ctx, cache.Key(Source, query), string(raw), c.config.CacheTTL); err != nil {
		c.logger.Warn("cache write failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

func (c *Client) classify(ctx context.Context, err error) error {
	if ctx.Err() == context.DeadlineExceeded ||
		strings.Contains(err.Error(), "timeout") ||
		strings.Contains(err.Error(), "deadline") ||
		strings.Contains(err.Error(), "Client.Timeout") {
		return ErrWikipediaTimeout
	}
	return fmt.Errorf("%w: %v", ErrWikipediaUnavailable, err)
}

func isNotFound(err error) bool {
	var statusErr *httpclient.StatusError
	return errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound
}

func errorCode(err error) string {
	if errors.Is(err, ErrWikipediaTimeout) {
		return "WIKIPEDIA_TIMEOUT"
	}
	return "WIKIPEDIA_UNAVAILABLE"
}
