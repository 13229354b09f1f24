// internal/lookup/pubmed/client.go
package pubmed

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"dyemind/internal/common/cache"
	"dyemind/internal/common/httpclient"
	"dyemind/internal/common/metrics"
	"dyemind/internal/models"
)

const (
	Source = "pubmed"

	// searchFilter narrows literature hits to the probe domain.
	searchFilter = "(fluorescent OR probe OR sensor)"
)

var (
	ErrPubMedTimeout     = errors.New("PUBMED_TIMEOUT")
	ErrPubMedUnavailable = errors.New("PUBMED_UNAVAILABLE")
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

// NewClient builds the literature lookup client. The cache may be nil, in
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

// Lookup fetches relevant abstracts for a probe name from the E-utilities
// API. It never returns an error: any failure is logged and converted into an
// empty result so downstream assembly always proceeds.
func (c *Client) Lookup(ctx context.Context, query string) []models.Article {
	metrics.LookupRequests.WithLabelValues(Source).Inc()
	metrics.LookupsActive.WithLabelValues(Source).Inc()
	defer metrics.LookupsActive.WithLabelValues(Source).Dec()

	if articles, ok := c.fromCache(ctx, query); ok {
		metrics.LookupCacheHits.WithLabelValues(Source).Inc()
		return articles
	}

	articles, err := c.lookup(ctx, query)
	if err != nil {
		metrics.LookupFailures.WithLabelValues(Source, errorCode(err)).Inc()
		c.logger.Warn("literature lookup failed, continuing without abstracts", map[string]interface{}{
			"query": query,
			"error": err.Error(),
		})
		return nil
	}

	c.storeCache(ctx, query, articles)
	return articles
}

func (c *Client) lookup(ctx context.Context, query string) ([]models.Article, error) {
	searchURL, err := c.buildSearchURL(query)
	if err != nil {
		return nil, err
	}

	var search esearchResponse
	if err := c.client.GetJSON(ctx, searchURL, &search); err != nil {
		return nil, c.classify(ctx, err)
	}

	ids := search.EsearchResult.IDList
	if len(ids) == 0 {
		return nil, nil
	}

	fetchURL, err := c.buildFetchURL(ids)
	if err != nil {
		return nil, err
	}

	raw, err := c.client.GetBytes(ctx, fetchURL)
	if err != nil {
		return nil, c.classify(ctx, err)
	}

	var set articleSet
	if err := xml.Unmarshal(raw, &set); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPubMedUnavailable, err)
	}

	articles := make([]models.Article, 0, len(set.Articles))
	for _, fetched := range set.Articles {
		title := strings.TrimSpace(fetched.Title)
		abstract := joinAbstract(fetched.AbstractParts)
		if title == "" || abstract == "" {
			// Records without an abstract carry no signal for the report.
			continue
		}

		article := models.Article{
			PMID:     fetched.PMID,
			Title:    title,
			Abstract: abstract,
		}
		if fetched.PMID != "" {
			article.Link = fmt.Sprintf("https://pubmed.ncbi.nlm.nih.gov/%s/", fetched.PMID)
		}
		articles = append(articles, article)
	}

	c.logger.Info("literature lookup completed", map[string]interface{}{
		"query":    query,
		"articles": len(articles),
	})

	return articles, nil
}

func (c *Client) buildSearchURL(query string) (string, error) {
	baseURL, err := url.Parse(fmt.Sprintf("%s/esearch.fcgi", c.config.BaseURL))
	if err != nil {
		return "", fmt.Errorf("invalid search URL: %w", err)
	}

	params := url.Values{}
	params.Set("db", "pubmed")
	params.Set("term", fmt.Sprintf("%s AND %s", query, searchFilter))
	params.Set("retmode", "json")
	params.Set("retmax", strconv.Itoa(c.config.MaxResults))
	params.Set("sort", "relevance")
	baseURL.RawQuery = params.Encode()

	return baseURL.String(), nil
}

func (c *Client) buildFetchURL(ids []string) (string, error) {
	baseURL, err := url.Parse(fmt.Sprintf("%s/efetch.fcgi", c.config.BaseURL))
	if err != nil {
		return "", fmt.Errorf("invalid fetch URL: %w", err)
	}

	params := url.Values{}
	params.Set("db", "pubmed")
	params.Set("id", strings.Join(ids, ","))
	params.Set("retmode", "xml")
	baseURL.RawQuery = params.Encode()

	return baseURL.String(), nil
}

func (c *Client) fromCache(ctx context.Context, query string) ([]models.Article, bool) {
	if c.cache == nil {
		return nil, false
	}

	raw, found, err := c.cache.Get(ctx, cache.Key(Source, query))
	if err != nil || !found {
		return nil, false
	}

	var articles []models.Article
	if err := json.Unmarshal([]byte(raw), &articles); err != nil {
		return nil, false
	}
	return articles, true
}

// storeCache memoizes the lookup result, including an empty result set.
// Transport failures are never cached.
func (c *Client) storeCache(ctx context.Context, query string, articles []models.Article) {
	if c.cache == nil {
		return
	}

	raw, err := json.Marshal(articles)
	if err != nil {
		return
	}
	if err := c.cache.Set(ctx, cache.Key(Source, query), string(raw), c.config.CacheTTL); err != nil {
		c.logger.Warn("cache write failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

// joinAbstract flattens a structured abstract into one paragraph.
func joinAbstract(parts []string) string {
	cleaned := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	return strings.Join(cleaned, " ")
}

func (c *Client) classify(ctx context.Context, err error) error {
	if ctx.Err() == context.DeadlineExceeded ||
		strings.Contains(err.Error(), "timeout") ||
		strings.Contains(err.Error(), "deadline") ||
		strings.Contains(err.Error(), "Client.Timeout") {
		return ErrPubMedTimeout
	}
	return fmt.Errorf("%w: %v", ErrPubMedUnavailable, err)
}

func errorCode(err error) string {
	if errors.Is(err, ErrPubMedTimeout) {
		return "PUBMED_TIMEOUT"
	}
	return "PUBMED_UNAVAILABLE"
}
