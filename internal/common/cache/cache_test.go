// internal/common/cache/cache_test.go
package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"dyemind/internal/common/config"
)

// ==========================
// Key Normalization Tests
// ==========================

func TestNormalizeQuery(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "already normalized",
			input:    "fura-2",
			expected: "fura-2",
		},
		{
			name:     "mixed case and padding",
			input:    "  Fura-2  ",
			expected: "fura-2",
		},
		{
			name:     "inner whitespace collapsed",
			input:    "Rhodamine   B",
			expected: "rhodamine b",
		},
		{
			name:     "tabs and newlines",
			input:    "\tFITC\n",
			expected: "fitc",
		},
		{
			name:     "empty",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeQuery(tt.input))
		})
	}
}

func TestKey(t *testing.T) {
	assert.Equal(t, "lookup:pubchem:fura-2", Key("pubchem", " Fura-2 "))
	assert.Equal(t, "lookup:pubmed:rhodamine b", Key("pubmed", "Rhodamine  B"))
}

// ==========================
// Memory Backend Tests
// ==========================

func TestMemory_SetGet(t *testing.T) {
	defer goleak.VerifyNone(t)

	m := NewMemory()
	defer m.Close()

	ctx := context.Background()

	val, found, err := m.Get(ctx, "lookup:pubchem:fura-2")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Empty(t, val)

	err = m.Set(ctx, "lookup:pubchem:fura-2", `{"cid":5}`, time.Minute)
	require.NoError(t, err)

	val, found, err = m.Get(ctx, "lookup:pubchem:fura-2")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `{"cid":5}`, val)
}

func TestMemory_Expiry(t *testing.T) {
	m := NewMemory()
	defer m.Close()

	ctx := context.Background()

	err := m.Set(ctx, "lookup:wikipedia:fitc", "extract", 10*time.Millisecond)
	require.NoError(t, err)

	time.Sleep(30 * time.Millisecond)

	_, found, err := m.Get(ctx, "lookup:wikipedia:fitc")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemory_ZeroTTLNotStored(t *testing.T) {
	m := NewMemory()
	defer m.Close()

	ctx := context.Background()

	err := m.Set(ctx, "key", "value", 0)
	require.NoError(t, err)

	_, found, err := m.Get(ctx, "key")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemory_CanceledContext(t *testing.T) {
	m := NewMemory()
	defer m.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := m.Get(ctx, "key")
	assert.Error(t, err)

	err = m.Set(ctx, "key", "value", time.Minute)
	assert.Error(t, err)
}

func TestMemory_CloseIdempotent(t *testing.T) {
	m := NewMemory()
	assert.NoError(t, m.Close())
	assert.NoError(t, m.Close())
}

// ==========================
// Redis Backend Tests
// ==========================

func TestRedis_SetGet(t *testing.T) {
	srv := miniredis.RunT(t)

	r, err := NewRedis(config.RedisConfig{Address: srv.Addr()})
	require.NoError(t, err)
	defer r.Close()

	ctx := context.Background()

	require.NoError(t, r.Ping(ctx))

	_, found, err := r.Get(ctx, "lookup:pubmed:fura-2")
	require.NoError(t, err)
	assert.False(t, found)

	err = r.Set(ctx, "lookup:pubmed:fura-2", `[{"pmid":"101"}]`, time.Minute)
	require.NoError(t, err)

	val, found, err := r.Get(ctx, "lookup:pubmed:fura-2")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `[{"pmid":"101"}]`, val)
}

func TestRedis_Expiry(t *testing.T) {
	srv := miniredis.RunT(t)

	r, err := NewRedis(config.RedisConfig{Address: srv.Addr()})
	require.NoError(t, err)
	defer r.Close()

	ctx := context.Background()

	err = r.Set(ctx, "lookup:wikipedia:bimane", "extract", time.Minute)
	require.NoError(t, err)

	// Advance past the TTL
	srv.FastForward(2 * time.Minute)

	_, found, err := r.Get(ctx, "lookup:wikipedia:bimane")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRedis_GetError(t *testing.T) {
	client, mock := redismock.NewClientMock()
	mock.ExpectGet("broken").SetErr(errors.New("connection refused"))

	r := NewRedisWithClient(client)

	_, found, err := r.Get(context.Background(), "broken")
	assert.Error(t, err)
	assert.False(t, found)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ==========================
// Factory Tests
// ==========================

func TestNew_Backends(t *testing.T) {
	tests := []struct {
		name      string
		cfg       config.CacheConfig
		expectNil bool
		expectErr bool
	}{
		{
			name:      "memory backend",
			cfg:       config.CacheConfig{Backend: "memory"},
			expectNil: false,
		},
		{
			name:      "none backend",
			cfg:       config.CacheConfig{Backend: "none"},
			expectNil: true,
		},
		{
			name:      "unknown backend",
			cfg:       config.CacheConfig{Backend: "memcached"},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New(tt.cfg)
			if tt.expectErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.expectNil {
				assert.Nil(t, c)
			} else {
				require.NotNil(t, c)
				assert.NoError(t, c.Close())
			}
		})
	}
}
