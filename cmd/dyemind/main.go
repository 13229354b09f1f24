// cmd/dyemind/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"dyemind/internal/common/cache"
	"dyemind/internal/common/config"
	"dyemind/internal/common/logger"
	"dyemind/internal/inference"
	"dyemind/internal/lookup/pubchem"
	"dyemind/internal/lookup/pubmed"
	"dyemind/internal/lookup/wikipedia"
	"dyemind/internal/orchestrator"
	"dyemind/internal/report/assembler"
	"dyemind/internal/report/generator"
	"dyemind/pkg/catalog"
)

var (
	verbose     bool
	logLevel    string
	configPath  string
	outputPath  string
	timeout     time.Duration
	catalogPath string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "dyemind",
	Short: "DyeMind - AI-powered fluorescent probe discovery",
	Long: `DyeMind resolves a free-text fluorescent probe query against PubChem,
PubMed and Wikipedia, then asks a hosted language model to synthesize a
structured scientific report from the retrieved facts.

Try queries like "Bimane", "Fura-2" or "Rhodamine B".`,
	SilenceUsage: true,
}

// reportCmd runs one query through the full pipeline
var reportCmd = &cobra.Command{
	Use:   "report <query>",
	Short: "Generate a probe report and save it as markdown",
	Long: `Generate a probe report for the given query.

The chemistry, literature and encyclopedia lookups run concurrently and
any of them may come back empty; the report notes missing sections. The
result is written to <query>_report.md unless --output is given. Use
--output - to print the report to stdout instead.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runReport,
}

// sourcesCmd lists the configured upstream sources
var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List the upstream data sources",
	Args:  cobra.NoArgs,
	RunE:  runSources,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a config YAML file")

	reportCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file or directory (- for stdout)")
	reportCmd.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "Overall query timeout")

	sourcesCmd.Flags().StringVar(&catalogPath, "catalog", "", "Load the source catalog from a JSON file")

	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(sourcesCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runReport(cmd *cobra.Command, args []string) error {
	query := strings.TrimSpace(strings.Join(args, " "))

	var (
		cfg *config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.LoadFromFile(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	level := "info"
	if verbose {
		level = "debug"
	}
	if logLevel != "" {
		level = logLevel
	}
	zapLog := logger.New(level, "console")
	defer func() {
		_ = zapLog.Sync()
	}()
	log := logger.NewZapAdapter(zapLog)

	// A one-shot run still honors the configured cache backend so repeated
	// CLI invocations against Redis reuse earlier lookups.
	cacheStore, err := cache.New(cfg.Cache)
	if err != nil {
		log.Warn("lookup cache unavailable, continuing without it", map[string]interface{}{
			"error": err.Error(),
		})
		cacheStore = nil
	}
	if cacheStore != nil {
		defer cacheStore.Close()
	}

	orch := buildPipeline(cfg, cacheStore, log)

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	report, err := orch.GenerateReport(ctx, query)
	if err != nil {
		return err
	}

	log.Info("source availability", map[string]interface{}{
		"chemistry":    report.Chemistry != nil,
		"articles":     len(report.Articles),
		"encyclopedia": report.Encyclopedia != nil,
	})

	if report.NoData {
		fmt.Println(report.Text)
		return nil
	}

	path := outputPath
	if path == "" {
		path = report.Filename()
	}
	if path == "-" {
		fmt.Println(report.Text)
		return nil
	}
	if info, statErr := os.Stat(path); statErr == nil && info.IsDir() {
		path = filepath.Join(path, report.Filename())
	}

	if err := os.WriteFile(path, []byte(report.Text), 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	fmt.Printf("Report for %q written to %s\n", report.Query, path)
	if !report.FromInference {
		fmt.Println("Note: the AI service did not return a summary; the report contains the error it reported.")
	}
	return nil
}

func runSources(cmd *cobra.Command, args []string) error {
	cat := catalog.Default()
	if catalogPath != "" {
		var err error
		cat, err = catalog.LoadCatalog(catalogPath)
		if err != nil {
			return fmt.Errorf("load catalog: %w", err)
		}
	}

	fmt.Printf("Source catalog v%s (updated %s)\n\n", cat.Version, cat.LastUpdated)
	for _, s := range cat.Sources {
		fmt.Printf("  %-12s %-14s %s\n", s.ID, s.Kind, s.DisplayName)
		fmt.Printf("  %-12s %-14s %s\n", "", "", s.BaseURL)
		if s.Attribution != "" {
			fmt.Printf("  %-12s %-14s %s\n", "", "", s.Attribution)
		}
		fmt.Println()
	}
	return nil
}

// buildPipeline wires the lookup clients and the generator the same way the
// server does, minus the HTTP and metrics layers.
func buildPipeline(cfg *config.Config, cacheStore cache.Cache, log logger.Logger) *orchestrator.Orchestrator {
	chemistry := pubchem.NewClient(&pubchem.Config{
		BaseURL:  cfg.Sources.PubChem.BaseURL,
		Timeout:  config.GetDuration(cfg.Sources.PubChem.Timeout),
		CacheTTL: config.GetDuration(cfg.Cache.TTL),
	}, cacheStore, &pubchemLoggerAdapter{log})

	literature := pubmed.NewClient(&pubmed.Config{
		BaseURL:    cfg.Sources.PubMed.BaseURL,
		Timeout:    config.GetDuration(cfg.Sources.PubMed.Timeout),
		MaxResults: cfg.Sources.PubMed.MaxResults,
		CacheTTL:   config.GetDuration(cfg.Cache.TTL),
	}, cacheStore, &pubmedLoggerAdapter{log})

	encyclopedia := wikipedia.NewClient(&wikipedia.Config{
		BaseURL:  cfg.Sources.Wikipedia.BaseURL,
		Timeout:  config.GetDuration(cfg.Sources.Wikipedia.Timeout),
		CacheTTL: config.GetDuration(cfg.Cache.TTL),
	}, cacheStore, &wikipediaLoggerAdapter{log})

	inferenceClient := inference.NewClient(&inference.Config{
		BaseURL:           cfg.Inference.BaseURL,
		Model:             cfg.Inference.Model,
		APIKey:            cfg.Inference.APIKey,
		Timeout:           config.GetDuration(cfg.Inference.Timeout),
		RequestsPerMinute: cfg.Inference.RequestsPerMinute,
		Burst:             cfg.Inference.Burst,
	}, &inferenceLoggerAdapter{log})

	reportGenerator := generator.NewGenerator(&generator.Config{
		MaxAttempts:  cfg.Inference.MaxAttempts,
		RetryDelay:   config.GetDuration(cfg.Inference.RetryDelay),
		MaxNewTokens: cfg.Inference.MaxNewTokens,
		Temperature:  cfg.Inference.Temperature,
	}, inferenceClient, &generatorLoggerAdapter{log})

	return orchestrator.NewOrchestrator(
		chemistry,
		literature,
		encyclopedia,
		reportGenerator,
		&assembler.Config{
			MaxAbstracts:     cfg.Report.MaxAbstracts,
			AbstractMaxChars: cfg.Report.AbstractMaxChars,
		},
		nil,
		&orchestratorLoggerAdapter{log},
	)
}

// Logger adapters for pipeline packages that declare their own Logger interfaces

type pubchemLoggerAdapter struct {
	logger.Logger
}

func (a *pubchemLoggerAdapter) With(fields map[string]interface{}) pubchem.Logger {
	return &pubchemLoggerAdapter{a.Logger.With(fields)}
}

type pubmedLoggerAdapter struct {
	logger.Logger
}

func (a *pubmedLoggerAdapter) With(fields map[string]interface{}) pubmed.Logger {
	return &pubmedLoggerAdapter{a.Logger.With(fields)}
}

type wikipediaLoggerAdapter struct {
	logger.Logger
}

func (a *wikipediaLoggerAdapter) With(fields map[string]interface{}) wikipedia.Logger {
	return &wikipediaLoggerAdapter{a.Logger.With(fields)}
}

type inferenceLoggerAdapter struct {
	logger.Logger
}

func (a *inferenceLoggerAdapter) With(fields map[string]interface{}) inference.Logger {
	return &inferenceLoggerAdapter{a.Logger.With(fields)}
}

type generatorLoggerAdapter struct {
	logger.Logger
}

func (a *generatorLoggerAdapter) With(fields map[string]interface{}) generator.Logger {
	return &generatorLoggerAdapter{a.Logger.With(fields)}
}

type orchestratorLoggerAdapter struct {
	logger.Logger
}

func (a *orchestratorLoggerAdapter) With(fields map[string]interface{}) orchestrator.Logger {
	return &orchestratorLoggerAdapter{a.Logger.With(fields)}
}
