// internal/lookup/pubchem/client_test.go
package pubchem

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dyemind/internal/common/cache"
)

// ==========================
// Test Helpers
// ==========================

// TestLogger implements the Logger interface for testing
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

func cidsBody(cids ...int) string {
	if len(cids) == 0 {
		return `{"IdentifierList":{"CID":[]}}`
	}
	body := `{"IdentifierList":{"CID":[`
	for i, cid := range cids {
		if i > 0 {
			body += ","
		}
		body += fmt.Sprintf("%d", cid)
	}
	return body + `]}}`
}

func propertiesBody(cid int, smiles, formula, weight string) string {
	return fmt.Sprintf(
		`{"PropertyTable":{"Properties":[{"CID":%d,"CanonicalSMILES":"%s","MolecularFormula":"%s","MolecularWeight":"%s"}]}}`,
		cid, smiles, formula, weight,
	)
}

// ==========================
// Client Tests
// ==========================

func TestNewClient(t *testing.T) {
	config := createTestConfig("http://localhost")
	client := NewClient(config, nil, &TestLogger{t})

	assert.NotNil(t, client)
	assert.Equal(t, config, client.config)
}

func TestClient_Lookup_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "GET", r.Method)

		switch r.URL.Path {
		case "/compound/name/Fura-2/cids/JSON":
			fmt.Fprint(w, cidsBody(5))
		case "/compound/cid/5/property/CanonicalSMILES,MolecularFormula,MolecularWeight/JSON":
			fmt.Fprint(w, propertiesBody(5, "CCO", "C29H22N2O14", "832.8"))
		default:
			t.Errorf("unexpected path: %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client := NewClient(createTestConfig(server.URL), nil, &TestLogger{t})

	record := client.Lookup(context.Background(), "Fura-2")

	require.NotNil(t, record)
	assert.Equal(t, 5, record.CID)
	assert.Equal(t, "CCO", record.SMILES)
	assert.Equal(t, "C29H22N2O14", record.Formula)
	assert.Equal(t, "832.8", record.MolecularWeight)
	assert.Equal(t, server.URL+"/compound/cid/5/PNG?record_type=2d&image_size=large", record.ImageURL)
	assert.Equal(t, "https://pubchem.ncbi.nlm.nih.gov/compound/5", record.Link)
}

func TestClient_Lookup_QueryEscaping(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/compound/name/Rhodamine B/cids/JSON":
			fmt.Fprint(w, cidsBody(6694))
		case "/compound/cid/6694/property/CanonicalSMILES,MolecularFormula,MolecularWeight/JSON":
			fmt.Fprint(w, propertiesBody(6694, "CCN(CC)...", "C28H31ClN2O3", "479.0"))
		default:
			t.Errorf("unexpected path: %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client := NewClient(createTestConfig(server.URL), nil, &TestLogger{t})

	record := client.Lookup(context.Background(), "Rhodamine B")

	require.NotNil(t, record)
	assert.Equal(t, 6694, record.CID)
}

func TestClient_Lookup_AbsentRecord(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "zero matches",
			handler: func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, cidsBody())
			},
		},
		{
			name: "name not found",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
				fmt.Fprint(w, `{"Fault":{"Code":"PUGREST.NotFound"}}`)
			},
		},
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
		},
		{
			name: "malformed response",
			handler: func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, `{{{not json`)
			},
		},
		{
			name: "empty property table",
			handler: func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path == "/compound/name/XYZ-nonexistent-dye-123/cids/JSON" {
					fmt.Fprint(w, cidsBody(999))
					return
				}
				fmt.Fprint(w, `{"PropertyTable":{"Properties":[]}}`)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			client := NewClient(createTestConfig(server.URL), nil, &TestLogger{t})

			record := client.Lookup(context.Background(), "XYZ-nonexistent-dye-123")
			assert.Nil(t, record)
		})
	}
}

func TestClient_Lookup_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
			return
		case <-time.After(10 * time.Second):
			fmt.Fprint(w, cidsBody(5))
		}
	}))
	defer server.Close()

	config := createTestConfig(server.URL)
	config.Timeout = 50 * time.Millisecond
	client := NewClient(config, nil, &TestLogger{t})

	start := time.Now()
	record := client.Lookup(context.Background(), "Fura-2")
	elapsed := time.Since(start)

	assert.Nil(t, record)
	assert.Less(t, elapsed, 5*time.Second, "lookup should fail fast on timeout")
}

// ==========================
// Cache Tests
// ==========================

func TestClient_Lookup_CacheHit(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		switch r.URL.Path {
		case "/compound/name/Fura-2/cids/JSON":
			fmt.Fprint(w, cidsBody(5))
		default:
			fmt.Fprint(w, propertiesBody(5, "CCO", "C29H22N2O14", "832.8"))
		}
	}))
	defer server.Close()

	mem := cache.NewMemory()
	defer mem.Close()

	client := NewClient(createTestConfig(server.URL), mem, &TestLogger{t})

	first := client.Lookup(context.Background(), "Fura-2")
	require.NotNil(t, first)
	assert.Equal(t, 2, requests)

	// Normalized key: different casing and padding must hit the same entry
	second := client.Lookup(context.Background(), "  fura-2 ")
	require.NotNil(t, second)
	assert.Equal(t, 2, requests, "second lookup should be served from cache")
	assert.Equal(t, first.CID, second.CID)
}

func TestClient_Lookup_CachesAbsence(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		fmt.Fprint(w, cidsBody())
	}))
	defer server.Close()

	mem := cache.NewMemory()
	defer mem.Close()

	client := NewClient(createTestConfig(server.URL), mem, &TestLogger{t})

	assert.Nil(t, client.Lookup(context.Background(), "XYZ-nonexistent-dye-123"))
	assert.Nil(t, client.Lookup(context.Background(), "XYZ-nonexistent-dye-123"))
	assert.Equal(t, 1, requests, "definitive absence should be memoized")
}

func TestClient_Lookup_DoesNotCacheFailures(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	mem := cache.NewMemory()
	defer mem.Close()

	client := NewClient(createTestConfig(server.URL), mem, &TestLogger{t})

	assert.Nil(t, client.Lookup(context.Background(), "Fura-2"))
	assert.Nil(t, client.Lookup(context.Background(), "Fura-2"))
	assert.Equal(t, 2, requests, "transport failures must not be memoized")
}

// ==========================
// Benchmarks
// ==========================

type BenchmarkLogger struct{}

func (l *BenchmarkLogger) Info(msg string, fields map[string]interface{})  {}
func (l *BenchmarkLogger) Warn(msg string, fields map[string]interface{})  {}
func (l *BenchmarkLogger) Error(msg string, fields map[string]interface{}) {}
func (l *BenchmarkLogger) With(fields map[string]interface{}) Logger       { return l }

func BenchmarkClient_Lookup(b *testing.B) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/compound/name/Fura-2/cids/JSON":
			fmt.Fprint(w, cidsBody(5))
		default:
			fmt.Fprint(w, propertiesBody(5, "CCO", "C29H22N2O14", "832.8"))
		}
	}))
	defer server.Close()

	client := NewClient(createTestConfig(server.URL), nil, &BenchmarkLogger{})
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		client.Lookup(ctx, "Fura-2")
	}
}
