// cmd/tools/lookup-generator/main.go
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"
	"time"

	"dyemind/pkg/catalog"
)

// SourceData holds data for templates
type SourceData struct {
	Name        string // e.g. "ChEMBL"
	PackageID   string // catalog ID and directory name, e.g. "chembl"
	PackageName string // Go package name, dashes stripped
	TypeName    string // exported identifier prefix, e.g. "Chembl"
	ErrPrefix   string // sentinel error prefix, e.g. "CHEMBL"
	Kind        string
	BaseURL     string
	DocsURL     string
	Description string
	TimeoutLit  string // Go literal, e.g. "30 * time.Second"
}

// upperFirst makes the first character uppercase
func upperFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// durationLiteral renders a parsed duration as idiomatic Go source.
func durationLiteral(raw string) string {
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return "30 * time.Second"
	}
	switch {
	case d%time.Minute == 0:
		return fmt.Sprintf("%d * time.Minute", d/time.Minute)
	case d%time.Second == 0:
		return fmt.Sprintf("%d * time.Second", d/time.Second)
	default:
		return fmt.Sprintf("%d * time.Millisecond", d/time.Millisecond)
	}
}

const configTemplate = `// internal/lookup/{{ .PackageID }}/config.go
package {{ .PackageName }}

import "time"

// Config holds the settings for the {{ .Name }} lookup client.
type Config struct {
	BaseURL  string
	Timeout  time.Duration
	CacheTTL time.Duration
}

func LoadConfig() *Config {
	return &Config{
		BaseURL:  "{{ .BaseURL }}",
		Timeout:  {{ .TimeoutLit }},
		CacheTTL: 15 * time.Minute,
	}
}
`

const modelsTemplate = `// internal/lookup/{{ .PackageID }}/models.go
package {{ .PackageName }}

// Record is the result of one {{ .Name }} lookup. A nil record means the
// query matched nothing or the source was unavailable.
type Record struct {
	// TODO: replace with the fields the {{ .Name }} API returns
	ID string ` + "`json:\"id\"`" + `
}

// TODO: add the wire types for the {{ .Name }} response payloads here.
`

const clientTemplate = `// internal/lookup/{{ .PackageID }}/client.go
package {{ .PackageName }}

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"dyemind/internal/common/cache"
	"dyemind/internal/common/httpclient"
	"dyemind/internal/common/metrics"
)

const (
	Source = "{{ .PackageID }}"
)

var (
	Err{{ .TypeName }}Timeout     = errors.New("{{ .ErrPrefix }}_TIMEOUT")
	Err{{ .TypeName }}Unavailable = errors.New("{{ .ErrPrefix }}_UNAVAILABLE")
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

// NewClient builds the {{ .Kind }} lookup client. The cache may be nil, in
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

// Lookup resolves a probe query against {{ .Name }}. It never returns an
// error: any failure is logged and converted into an absent (nil) record so
// downstream assembly always proceeds.
func (c *Client) Lookup(ctx context.Context, query string) *Record {
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
		c.logger.Warn("{{ .Kind }} lookup failed, continuing without it", map[string]interface{}{
			"query": query,
			"error": err.Error(),
		})
		return nil
	}

	c.storeCache(ctx, query, record)
	return record
}

func (c *Client) lookup(ctx context.Context, query string) (*Record, error) {
	// TODO: build the {{ .Name }} request URL from c.config.BaseURL and query,
	// fetch it with c.client.GetJSON, and map the response into a Record.
	// See {{ .DocsURL }} for the API reference.
	return nil, fmt.Errorf("%w: lookup not implemented", Err{{ .TypeName }}Unavailable)
}

func (c *Client) fromCache(ctx context.Context, query string) (*Record, bool) {
	if c.cache == nil {
		return nil, false
	}

	raw, found, err := c.cache.Get(ctx, cache.Key(Source, query))
	if err != nil || !found {
		return nil, false
	}

	var record *Record
	if err := json.Unmarshal([]byte(raw), &record); err != nil {
		return nil, false
	}
	return record, true
}

// storeCache memoizes the lookup result, including definitive absence (a nil
// record marshals as "null"). Transport failures are never cached.
func (c *Client) storeCache(ctx context.Context, query string, record *Record) {
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
		return Err{{ .TypeName }}Timeout
	}
	return fmt.Errorf("%w: %v", Err{{ .TypeName }}Unavailable, err)
}

func errorCode(err error) string {
	if errors.Is(err, Err{{ .TypeName }}Timeout) {
		return "{{ .ErrPrefix }}_TIMEOUT"
	}
	return "{{ .ErrPrefix }}_UNAVAILABLE"
}
`

const testTemplate = `// internal/lookup/{{ .PackageID }}/client_test.go
package {{ .PackageName }}

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// ==========================
// Test Logger
// ==========================

type TestLogger struct {
	t *testing.T
}

func (l *TestLogger) Info(msg string, fields map[string]interface{}) {
	l.t.Logf("INFO: %s %v", msg, fields)
}

func (l *TestLogger) Warn(msg string, fields map[string]interface{}) {
	l.t.Logf("WARN: %s %v", msg, fields)
}

func (l *TestLogger) Error(msg string, fields map[string]interface{}) {
	l.t.Logf("ERROR: %s %v", msg, fields)
}

func (l *TestLogger) With(fields map[string]interface{}) Logger {
	return l
}

func createTestConfig(baseURL string) *Config {
	return &Config{
		BaseURL:  baseURL,
		Timeout:  5 * time.Second,
		CacheTTL: time.Minute,
	}
}

// ==========================
// Lookup Tests
// ==========================

func TestClient_Lookup(t *testing.T) {
	// TODO: spin up an httptest server that mimics the {{ .Name }} API and
	// assert the mapped Record fields, the soft-fail paths, and caching.
	client := NewClient(createTestConfig("http://127.0.0.1:0"), nil, &TestLogger{t: t})
	assert.NotNil(t, client)

	record := client.Lookup(context.Background(), "Fura-2")
	assert.Nil(t, record, "unimplemented lookup soft-fails to an absent record")
}
`

const readmeTemplate = `# {{ .Name }} Lookup Client

## Description
{{ .Description }}

## Kind
{{ .Kind }}

## Base URL
{{ .BaseURL }}

## API Reference
{{ .DocsURL }}

## Wiring

The client follows the shape shared by the lookup packages: a package-local
Logger interface, an optional cache, and a Lookup method that soft-fails to
an absent record instead of returning errors.

### Construct it in the server binary

` + "```go" + `
import "dyemind/internal/lookup/{{ .PackageName }}"

{{ .PackageName }}Client := {{ .PackageName }}.NewClient(&{{ .PackageName }}.Config{
    BaseURL:  cfg.Sources.{{ .TypeName }}.BaseURL,
    Timeout:  config.GetDuration(cfg.Sources.{{ .TypeName }}.Timeout),
    CacheTTL: config.GetDuration(cfg.Cache.TTL),
}, cacheStore, &{{ .PackageName }}LoggerAdapter{log})
` + "```" + `

### Next steps

1. Fill in the wire types in models.go
2. Implement the request building and response mapping in client.go
3. Extend client_test.go with httptest coverage for the success, absence,
   failure, and caching paths
4. Register the source in the catalog: catalog-updater add -id {{ .PackageID }} ...
`

func main() {
	sourceID := flag.String("source", "", "Source ID from the catalog (e.g., chembl)")
	outputDir := flag.String("output", "./internal/lookup/", "Output directory for the generated client")
	path := flag.String("catalog", "configs/source-catalog.json", "Path to the source catalog JSON file")
	flag.Parse()

	if *sourceID == "" {
		fmt.Println("Usage: lookup-generator --source <id> --output <dir> [--catalog <path>]")
		fmt.Println("\nExample:")
		fmt.Println("  go run cmd/tools/lookup-generator/main.go --source chembl")
		os.Exit(1)
	}

	// Load the catalog; fall back to the built-in defaults
	cat, err := catalog.LoadCatalog(*path)
	if err != nil {
		if !os.IsNotExist(err) {
			fmt.Printf("Error loading catalog from %s: %v\n", *path, err)
			os.Exit(1)
		}
		cat = catalog.Default()
	}

	var found *catalog.Source
	for _, s := range cat.Sources {
		if s.ID == *sourceID {
			found = &s
			break
		}
	}

	if found == nil {
		fmt.Printf("Source '%s' not found in catalog %s\n", *sourceID, *path)
		os.Exit(1)
	}

	packageName := strings.ReplaceAll(found.ID, "-", "")
	data := SourceData{
		Name:        found.DisplayName,
		PackageID:   found.ID,
		PackageName: packageName,
		TypeName:    upperFirst(packageName),
		ErrPrefix:   strings.ToUpper(packageName),
		Kind:        found.Kind,
		BaseURL:     found.BaseURL,
		DocsURL:     found.DocsURL,
		Description: found.Description,
		TimeoutLit:  durationLiteral(found.Timeout),
	}

	clientDir := filepath.Join(*outputDir, found.ID)
	if err := os.MkdirAll(clientDir, 0755); err != nil {
		fmt.Printf("Error creating directory: %v\n", err)
		os.Exit(1)
	}

	templates := map[string]string{
		"config.go":      configTemplate,
		"models.go":      modelsTemplate,
		"client.go":      clientTemplate,
		"client_test.go": testTemplate,
		"README.md":      readmeTemplate,
	}

	for filename, tmplStr := range templates {
		tmpl, err := template.New(filename).Parse(tmplStr)
		if err != nil {
			fmt.Printf("Error parsing template %s: %v\n", filename, err)
			continue
		}

		filePath := filepath.Join(clientDir, filename)
		file, err := os.Create(filePath)
		if err != nil {
			fmt.Printf("Error creating file %s: %v\n", filePath, err)
			continue
		}

		if err := tmpl.Execute(file, data); err != nil {
			fmt.Printf("Error executing template for %s: %v\n", filename, err)
		}
		file.Close()

		fmt.Printf("✓ Generated %s\n", filePath)
	}

	fmt.Printf("\n✅ Lookup client scaffold generated at: %s\n", clientDir)
	fmt.Printf("\nNext steps:\n")
	fmt.Printf("  1. Fill in the wire types in models.go\n")
	fmt.Printf("  2. Implement request building and response mapping in client.go\n")
	fmt.Printf("  3. Extend client_test.go with httptest coverage\n")
	fmt.Printf("  4. Wire the client into cmd/dyemind-server/main.go\n")
}
