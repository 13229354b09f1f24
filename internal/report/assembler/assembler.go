// internal/report/assembler/assembler.go

// Package assembler renders lookup results into the bounded, labeled text
// context handed to the model. Absent sources render an explicit placeholder
// so the model is never given a silent gap.
package assembler

import (
	"fmt"
	"strings"

	"dyemind/internal/models"
)

const (
	chemistryUnavailable    = "Structure unavailable."
	literatureUnavailable   = "No specific literature abstracts found in PubMed."
	encyclopediaUnavailable = "No encyclopedia entry found."
)

type Config struct {
	MaxAbstracts     int
	AbstractMaxChars int
}

func LoadConfig() *Config {
	return &Config{
		MaxAbstracts:     3,
		AbstractMaxChars: 300,
	}
}

// Assemble is a pure function of the lookup results: identical inputs yield
// an identical context.
func Assemble(query string, chem *models.ChemicalRecord, articles []models.Article, summary *models.EncyclopediaSummary, config *Config) models.AssembledContext {
	return models.AssembledContext{
		Query:        query,
		Chemistry:    chemistryBlock(chem),
		Literature:   literatureBlock(articles, config),
		Encyclopedia: encyclopediaBlock(summary),
	}
}

func chemistryBlock(chem *models.ChemicalRecord) string {
	if chem == nil {
		return chemistryUnavailable
	}
	return fmt.Sprintf("SMILES: %s", chem.SMILES)
}

// literatureBlock keeps at most MaxAbstracts items in source order and trims
// each abstract to the character budget. The cap is a token budget control,
// not a relevance filter.
func literatureBlock(articles []models.Article, config *Config) string {
	if len(articles) == 0 {
		return literatureUnavailable
	}

	var b strings.Builder
	for i, article := range articles {
		if i >= config.MaxAbstracts {
			break
		}
		fmt.Fprintf(&b, "- Title: %s\n  Abstract: %s...\n", article.Title, truncate(article.Abstract, config.AbstractMaxChars))
	}
	return b.String()
}

func encyclopediaBlock(summary *models.EncyclopediaSummary) string {
	if summary == nil || strings.TrimSpace(summary.Extract) == "" {
		return encyclopediaUnavailable
	}
	return summary.Extract
}

// truncate cuts at a rune boundary so multi-byte characters survive.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
