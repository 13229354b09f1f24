// internal/models/report.go
package models

import (
	"strings"
	"time"
)

// Report is the final result of one probe query. Text carries the model
// output or a user-facing sentinel string; it is never empty.
type Report struct {
	ID            string               `json:"id"`
	Query         string               `json:"query"`
	Text          string               `json:"text"`
	Chemistry     *ChemicalRecord      `json:"chemistry,omitempty"`
	Articles      []Article            `json:"articles,omitempty"`
	Encyclopedia  *EncyclopediaSummary `json:"encyclopedia,omitempty"`
	NoData        bool                 `json:"noData"`
	FromInference bool                 `json:"fromInference"`
	GeneratedAt   time.Time            `json:"generatedAt"`
}

// Filename returns the download name for the report, named after the query.
// Path separators and control characters are replaced so the name is safe as
// both an attachment filename and a file on disk.
func (r *Report) Filename() string {
	name := strings.TrimSpace(r.Query)
	if name == "" {
		name = "probe"
	}

	var b strings.Builder
	for _, c := range name {
		switch {
		case c == '/' || c == '\\' || c == ':' || c == '"':
			b.WriteRune('-')
		case c < 0x20 || c == 0x7f:
			b.WriteRune('-')
		default:
			b.WriteRune(c)
		}
	}
	return b.String() + "_report.md"
}
