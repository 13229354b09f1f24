// internal/lookup/pubchem/client.go
package pubchem

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
	Source = "pubchem"
)

var (
	ErrPubChemTimeout     = errors.New("PUBCHEM_TIMEOUT")
	ErrPubChemUnavailable = errors.New("PUBCHEM_UNAVAILABLE")
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

// NewClient builds the chemistry lookup client. The cache may be nil, in
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

// Lookup resolves a probe name to a chemical record. It never returns an
// error: any failure is logged and converted into an absent (nil) record so
// downstream assembly always proceeds.
func (c *Client) Lookup(ctx context.Context, query string) *models.ChemicalRecord {
	metrics.LookupRequests.WithLabelValues(Source).Inc()
	metrics.LookupsActive.WithLabelValues(Source).Inc()
	defer metrics.LookupsActive.WithLabelValues(Source).Dec()

	if record, ok := c.fromCache(ctx, query); ok {
		metrics.LookupCacheHits.WithLabelValues(Source).Inc()
		return record
	}

	record, err := c.lookup(ctx, query)
	if err != nil {
		metrics.LookupFailures.WithLabelValues(Source, errorCode(err)).Inc()
		c.logger.Warn("chemistry lookup failed, continuing without structure data", map[string]interface{}{
			"query": query,
			"error": err.Error(),
		})
		return nil
	}

	c.storeCache(ctx, query, record)
	return record
}

func (c *Client) lookup(ctx context.Context, query string) (*models.ChemicalRecord, error) {
	cidURL := fmt.Sprintf("%s/compound/name/%s/cids/JSON", c.config.BaseURL, url.PathEscape(query))

	var cids cidsResponse
	if err := c.client.GetJSON(ctx, cidURL, &cids); err != nil {
		if isNotFound(err) {
			// The name resolved to zero compounds: definitive absence.
			return nil, nil
		}
		return nil, c.classify(ctx, err)
	}

	if len(cids.IdentifierList.CID) == 0 {
		return nil, nil
	}
	cid := cids.IdentifierList.CID[0]

	propURL := fmt.Sprintf(
		"%s/compound/cid/%d/property/CanonicalSMILES,MolecularFormula,MolecularWeight/JSON",
		c.config.BaseURL, cid,
	)

	var props propertiesResponse
	if err := c.client.GetJSON(ctx, propURL, &props); err != nil {
		return nil, c.classify(ctx, err)
	}
	if len(props.PropertyTable.Properties) == 0 {
		return nil, fmt.Errorf("%w: empty property table for cid %d", ErrPubChemUnavailable, cid)
	}
	row := props.PropertyTable.Properties[0]

	record := &models.ChemicalRecord{
		CID:             cid,
		SMILES:          valueOrNA(row.CanonicalSMILES),
		Formula:         valueOrNA(row.MolecularFormula),
		MolecularWeight: row.MolecularWeight,
		ImageURL:        fmt.Sprintf("%s/compound/cid/%d/PNG?record_type=2d&image_size=large", c.config.BaseURL, cid),
		Link:            fmt.Sprintf("https://pubchem.ncbi.nlm.nih.gov/compound/%d", cid),
	}

	c.logger.Info("chemistry lookup completed", map[string]interface{}{
		"query": query,
		"cid":   cid,
	})

	return record, nil
}

func (c *Client) fromCache(ctx context.Context, query string) (*models.ChemicalRecord, bool) {
	if c.cache == nil {
		return nil, false
	}

	raw, found, err := c.cache.Get(ctx, cache.Key(Source, query))
	if err != nil || !found {
		return nil, false
	}

	var record *models.ChemicalRecord
	if err := json.Unmarshal([]byte(raw), &record); err != nil {
		return nil, false
	}
	return record, true
}

// storeCache memoizes the lookup result, including definitive absence (a nil
// record marshals as "null"). Transport failures are never cached.
func (c *Client) storeCache(ctx context.Context, query string, record *models.ChemicalRecord) {
	if c.cache == nil {
		return
	}

	raw, err := json.Marshal(record)
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
		return ErrPubChemTimeout
	}
	return fmt.Errorf("%w: %v", ErrPubChemUnavailable, err)
}

func isNotFound(err error) bool {
	var statusErr *httpclient.StatusError
	return errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound
}

func valueOrNA(v string) string {
	if v == "" {
		return "N/A"
	}
	return v
}

func errorCode(err error) string {
	if errors.Is(err, ErrPubChemTimeout) {
		return "PUBCHEM_TIMEOUT"
	}
	return "PUBCHEM_UNAVAILABLE"
}
