// internal/models/probe.go
package models

// ChemicalRecord holds the structure data resolved for a compound name.
// A nil record means the name matched nothing or the source was unavailable.
type ChemicalRecord struct {
	CID             int    `json:"cid"`
	SMILES          string `json:"smiles"`
	Formula         string `json:"formula"`
	MolecularWeight string `json:"molecularWeight,omitempty"`
	ImageURL        string `json:"imageUrl"`
	Link            string `json:"link"`
}

// Article is one literature record. Entries without an abstract are dropped
// at lookup time; order is source-reported relevance.
type Article struct {
	PMID     string `json:"pmid,omitempty"`
	Title    string `json:"title"`
	Abstract string `json:"abstract"`
	Link     string `json:"link,omitempty"`
}

// EncyclopediaSummary is the introductory extract of an encyclopedia page.
type EncyclopediaSummary struct {
	Title   string `json:"title"`
	Extract string `json:"extract"`
	Link    string `json:"link,omitempty"`
}

// AssembledContext is the bounded, labeled text context fed to the model.
// Derived and ephemeral; identical lookup results produce identical blocks.
type AssembledContext struct {
	Query        string `json:"query"`
	Chemistry    string `json:"chemistry"`
	Literature   string `json:"literature"`
	Encyclopedia string `json:"encyclopedia"`
}
