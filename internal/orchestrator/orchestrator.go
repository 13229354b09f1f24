// internal/orchestrator/orchestrator.go

// Package orchestrator runs one probe query end to end: the three source
// lookups in parallel, context assembly, report generation, and the final
// report envelope.
package orchestrator

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"dyemind/internal/common/errors"
	"dyemind/internal/common/metrics"
	"dyemind/internal/common/observability"
	"dyemind/internal/models"
	"dyemind/internal/report/assembler"
	"dyemind/internal/report/generator"
)

const noDataMessage = "No data found. Check spelling or try a different dye."

// Logger interface definition
type Logger interface {
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
	With(fields map[string]interface{}) Logger
}

// ChemistryLookup resolves a probe name to a structure record, nil when
// absent.
type ChemistryLookup interface {
	Lookup(ctx context.Context, query string) *models.ChemicalRecord
}

// LiteratureLookup fetches abstracts for a probe name, empty when absent.
type LiteratureLookup interface {
	Lookup(ctx context.Context, query string) []models.Article
}

// EncyclopediaLookup fetches the page summary for a probe name, nil when
// absent.
type EncyclopediaLookup interface {
	Lookup(ctx context.Context, query string) *models.EncyclopediaSummary
}

// ReportGenerator synthesizes report text from an assembled context.
type ReportGenerator interface {
	Generate(ctx context.Context, assembled models.AssembledContext) *generator.Result
}

type Orchestrator struct {
	chemistry     ChemistryLookup
	literature    LiteratureLookup
	encyclopedia  EncyclopediaLookup
	generator     ReportGenerator
	assemblerConf *assembler.Config
	obs           *observability.Observability
	logger        Logger
}

// NewOrchestrator wires the pipeline. The observability handle may be nil.
func NewOrchestrator(
	chemistry ChemistryLookup,
	literature LiteratureLookup,
	encyclopedia EncyclopediaLookup,
	gen ReportGenerator,
	assemblerConf *assembler.Config,
	obs *observability.Observability,
	log Logger,
) *Orchestrator {
	return &Orchestrator{
		chemistry:     chemistry,
		literature:    literature,
		encyclopedia:  encyclopedia,
		generator:     gen,
		assemblerConf: assemblerConf,
		obs:           obs,
		logger: log.With(map[string]interface{}{
			"component": "orchestrator",
		}),
	}
}

// GenerateReport resolves a free-text probe query into a report. The three
// lookups run concurrently and individually soft-fail; the only errors this
// returns are a rejected query and a canceled context. Every other path
// yields a report whose text is model output, a marked inference sentinel,
// or the no-data warning.
func (o *Orchestrator) GenerateReport(ctx context.Context, query string) (*models.Report, error) {
	startTime := time.Now()

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.NewInvalidQueryError("query must not be empty")
	}

	o.logger.Info("searching sources", map[string]interface{}{
		"query":   query,
		"sources": []string{"pubchem", "pubmed", "wikipedia"},
	})

	var (
		chem     *models.ChemicalRecord
		articles []models.Article
		summary  *models.EncyclopediaSummary
	)

	// Lookups have no data dependency on each other. Each converts its own
	// failures into absence, so the group never returns an error.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		chem = o.chemistry.Lookup(gctx, query)
		return nil
	})
	g.Go(func() error {
		articles = o.literature.Lookup(gctx, query)
		return nil
	})
	g.Go(func() error {
		summary = o.encyclopedia.Lookup(gctx, query)
		return nil
	})
	_ = g.Wait()

	// A canceled caller gets the cancellation back, not a report built from
	// lookups that were cut short.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report := &models.Report{
		ID:           uuid.New().String(),
		Query:        query,
		Chemistry:    chem,
		Articles:     articles,
		Encyclopedia: summary,
		GeneratedAt:  time.Now().UTC(),
	}

	if chem == nil && len(articles) == 0 && summary == nil {
		report.NoData = true
		report.Text = noDataMessage
		o.logger.Warn("no source data found", map[string]interface{}{
			"query":    query,
			"reportId": report.ID,
		})
		o.record(ctx, "no_data", startTime)
		return report, nil
	}

	assembled := assembler.Assemble(query, chem, articles, summary, o.assemblerConf)

	o.logger.Info("synthesizing report", map[string]interface{}{
		"query":    query,
		"reportId": report.ID,
	})
	result := o.generator.Generate(ctx, assembled)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report.Text = result.Text
	report.FromInference = result.FromInference

	status := "ok"
	if !result.FromInference {
		status = "degraded"
	}
	o.record(ctx, status, startTime)

	o.logger.Info("probe query completed", map[string]interface{}{
		"query":         query,
		"reportId":      report.ID,
		"attempts":      result.Attempts,
		"fromInference": result.FromInference,
		"durationMs":    time.Since(startTime).Milliseconds(),
	})

	return report, nil
}

func (o *Orchestrator) record(ctx context.Context, status string, startTime time.Time) {
	metrics.ReportRequests.WithLabelValues(status).Inc()
	metrics.ReportDuration.WithLabelValues(status).Observe(time.Since(startTime).Seconds())

	if o.obs != nil {
		o.obs.RecordReportProcessed(ctx, status)
		o.obs.RecordReportDuration(ctx, time.Since(startTime), status)
	}
}
