// internal/orchestrator/orchestrator_test.go
package orchestrator

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	cerrors "dyemind/internal/common/errors"
	"dyemind/internal/models"
	"dyemind/internal/report/assembler"
	"dyemind/internal/report/generator"
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

type stubChemistry struct {
	record *models.ChemicalRecord
	delay  time.Duration
	calls  int
}

func (s *stubChemistry) Lookup(ctx context.Context, query string) *models.ChemicalRecord {
	s.calls++
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	return s.record
}

type stubLiterature struct {
	articles []models.Article
	delay    time.Duration
	calls    int
}

func (s *stubLiterature) Lookup(ctx context.Context, query string) []models.Article {
	s.calls++
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	return s.articles
}

type stubEncyclopedia struct {
	summary *models.EncyclopediaSummary
	delay   time.Duration
	calls   int
}

func (s *stubEncyclopedia) Lookup(ctx context.Context, query string) *models.EncyclopediaSummary {
	s.calls++
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	return s.summary
}

type stubGenerator struct {
	result   *generator.Result
	captured *models.AssembledContext
	calls    int
}

func (s *stubGenerator) Generate(ctx context.Context, assembled models.AssembledContext) *generator.Result {
	s.calls++
	s.captured = &assembled
	if s.result != nil {
		return s.result
	}
	return &generator.Result{Text: "generated report", FromInference: true, Attempts: 1}
}

func newTestOrchestrator(t *testing.T, chem *stubChemistry, lit *stubLiterature, enc *stubEncyclopedia, gen *stubGenerator) *Orchestrator {
	return NewOrchestrator(chem, lit, enc, gen, assembler.LoadConfig(), nil, &TestLogger{t})
}

func fullSources() (*stubChemistry, *stubLiterature, *stubEncyclopedia) {
	chem := &stubChemistry{record: &models.ChemicalRecord{CID: 5, SMILES: "CCO", Formula: "C29H22N2O14"}}
	lit := &stubLiterature{articles: []models.Article{
		{PMID: "11111", Title: "A ratiometric calcium indicator", Abstract: "Calcium imaging."},
		{PMID: "22222", Title: "Photostability of xanthene dyes", Abstract: "Dyes bleach."},
	}}
	enc := &stubEncyclopedia{summary: &models.EncyclopediaSummary{Title: "Fura-2", Extract: "A ratiometric dye."}}
	return chem, lit, enc
}

// ==========================
// Orchestrator Tests
// ==========================

func TestNewOrchestrator(t *testing.T) {
	chem, lit, enc := fullSources()
	o := newTestOrchestrator(t, chem, lit, enc, &stubGenerator{})
	assert.NotNil(t, o)
}

func TestOrchestrator_GenerateReport_AllSources(t *testing.T) {
	defer goleak.VerifyNone(t)

	chem, lit, enc := fullSources()
	gen := &stubGenerator{}
	o := newTestOrchestrator(t, chem, lit, enc, gen)

	report, err := o.GenerateReport(context.Background(), "Fura-2")

	require.NoError(t, err)
	require.NotNil(t, report)

	_, parseErr := uuid.Parse(report.ID)
	assert.NoError(t, parseErr, "report id should be a uuid")

	assert.Equal(t, "Fura-2", report.Query)
	assert.Equal(t, "generated report", report.Text)
	assert.True(t, report.FromInference)
	assert.False(t, report.NoData)
	assert.False(t, report.GeneratedAt.IsZero())

	assert.Equal(t, chem.record, report.Chemistry)
	assert.Equal(t, lit.articles, report.Articles)
	assert.Equal(t, enc.summary, report.Encyclopedia)

	require.NotNil(t, gen.captured)
	assert.Equal(t, "SMILES: CCO", gen.captured.Chemistry)
	assert.Contains(t, gen.captured.Literature, "A ratiometric calcium indicator")
	assert.Equal(t, "A ratiometric dye.", gen.captured.Encyclopedia)
}

func TestOrchestrator_GenerateReport_AbsentChemistry(t *testing.T) {
	defer goleak.VerifyNone(t)

	_, lit, enc := fullSources()
	gen := &stubGenerator{}
	o := newTestOrchestrator(t, &stubChemistry{}, lit, enc, gen)

	report, err := o.GenerateReport(context.Background(), "XYZ-nonexistent-dye-123")

	require.NoError(t, err)
	assert.False(t, report.NoData)
	assert.Nil(t, report.Chemistry)
	assert.Equal(t, 1, gen.calls, "generation proceeds on the remaining sources")

	require.NotNil(t, gen.captured)
	assert.Equal(t, "Structure unavailable.", gen.captured.Chemistry)
	assert.Contains(t, gen.captured.Literature, "A ratiometric calcium indicator")
}

func TestOrchestrator_GenerateReport_NoDataAtAll(t *testing.T) {
	defer goleak.VerifyNone(t)

	gen := &stubGenerator{}
	o := newTestOrchestrator(t, &stubChemistry{}, &stubLiterature{}, &stubEncyclopedia{}, gen)

	report, err := o.GenerateReport(context.Background(), "XYZ-nonexistent-dye-123")

	require.NoError(t, err)
	assert.True(t, report.NoData)
	assert.Equal(t, "No data found. Check spelling or try a different dye.", report.Text)
	assert.False(t, report.FromInference)
	assert.Equal(t, 0, gen.calls, "generation is skipped without source data")
}

func TestOrchestrator_GenerateReport_RejectsEmptyQuery(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{name: "empty", query: ""},
		{name: "whitespace only", query: "   \t"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chem, lit, enc := fullSources()
			gen := &stubGenerator{}
			o := newTestOrchestrator(t, chem, lit, enc, gen)

			report, err := o.GenerateReport(context.Background(), tt.query)

			assert.Nil(t, report)
			require.Error(t, err)

			var stdErr *cerrors.StandardError
			require.ErrorAs(t, err, &stdErr)
			assert.Equal(t, cerrors.ErrCodeInvalidQuery, stdErr.Code)

			assert.Equal(t, 0, chem.calls)
			assert.Equal(t, 0, gen.calls)
		})
	}
}

func TestOrchestrator_GenerateReport_TrimsQuery(t *testing.T) {
	chem, lit, enc := fullSources()
	o := newTestOrchestrator(t, chem, lit, enc, &stubGenerator{})

	report, err := o.GenerateReport(context.Background(), "  Fura-2  ")

	require.NoError(t, err)
	assert.Equal(t, "Fura-2", report.Query)
}

func TestOrchestrator_GenerateReport_LookupsRunConcurrently(t *testing.T) {
	defer goleak.VerifyNone(t)

	chem, lit, enc := fullSources()
	chem.delay = 100 * time.Millisecond
	lit.delay = 100 * time.Millisecond
	enc.delay = 100 * time.Millisecond

	o := newTestOrchestrator(t, chem, lit, enc, &stubGenerator{})

	start := time.Now()
	_, err := o.GenerateReport(context.Background(), "Fura-2")
	elapsed := time.Since(start)

	require.NoError(t, err)
	assert.Less(t, elapsed, 250*time.Millisecond, "lookups should overlap, not run back to back")
	assert.Equal(t, 1, chem.calls)
	assert.Equal(t, 1, lit.calls)
	assert.Equal(t, 1, enc.calls)
}

func TestOrchestrator_GenerateReport_DegradedStatusOnSentinelText(t *testing.T) {
	chem, lit, enc := fullSources()
	gen := &stubGenerator{result: &generator.Result{
		Text:          "⚠️ AI Service Busy or unexpected response format. Please try again in 30 seconds.",
		FromInference: false,
		Attempts:      3,
	}}
	o := newTestOrchestrator(t, chem, lit, enc, gen)

	report, err := o.GenerateReport(context.Background(), "Fura-2")

	require.NoError(t, err)
	assert.False(t, report.FromInference)
	assert.Contains(t, report.Text, "AI Service Busy")
}

func TestOrchestrator_GenerateReport_CanceledContext(t *testing.T) {
	defer goleak.VerifyNone(t)

	chem, lit, enc := fullSources()
	gen := &stubGenerator{}
	o := newTestOrchestrator(t, chem, lit, enc, gen)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := o.GenerateReport(ctx, "Fura-2")

	assert.Nil(t, report, "a canceled caller gets no half-built report")
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, gen.calls, "generation never starts for a canceled request")
}

// ==========================
// Benchmarks
// ==========================

type BenchmarkLogger struct{}

func (l *BenchmarkLogger) Info(msg string, fields map[string]interface{})  {}
func (l *BenchmarkLogger) Warn(msg string, fields map[string]interface{})  {}
func (l *BenchmarkLogger) Error(msg string, fields map[string]interface{}) {}
func (l *BenchmarkLogger) With(fields map[string]interface{}) Logger       { return l }

func BenchmarkOrchestrator_GenerateReport(b *testing.B) {
	chem := &stubChemistry{record: &models.ChemicalRecord{CID: 5, SMILES: "CCO"}}
	lit := &stubLiterature{articles: []models.Article{{Title: "T", Abstract: "A"}}}
	enc := &stubEncyclopedia{summary: &models.EncyclopediaSummary{Title: "T", Extract: "E"}}

	o := NewOrchestrator(chem, lit, enc, &stubGenerator{}, assembler.LoadConfig(), nil, &BenchmarkLogger{})
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		o.GenerateReport(ctx, "Fura-2")
	}
}
