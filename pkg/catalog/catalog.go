// pkg/catalog/catalog.go
package catalog

import (
	"encoding/json"
	"os"
)

// LoadCatalog reads a catalog override from disk. Deployments that proxy the
// upstream services can point the API at their own descriptor file.
func LoadCatalog(path string) (*SourceCatalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cat SourceCatalog
	err = json.Unmarshal(data, &cat)
	return &cat, err
}

// Default returns the built-in descriptors for the upstream services the
// pipeline consults.
func Default() *SourceCatalog {
	return &SourceCatalog{
		Version:     "1.0.0",
		LastUpdated: "2026-08-12",
		Sources: []Source{
			{
				ID:          "pubchem",
				DisplayName: "PubChem",
				Description: "Chemical structure and property lookup by compound name.",
				Kind:        "chemistry",
				BaseURL:     "https://pubchem.ncbi.nlm.nih.gov/rest/pug",
				DocsURL:     "https://pubchem.ncbi.nlm.nih.gov/docs/pug-rest",
				Attribution: "PubChem, National Library of Medicine",
				ErrorCodes:  []string{"PUBCHEM_TIMEOUT", "PUBCHEM_UNAVAILABLE"},
				Timeout:     "30s",
				Tags:        []string{"smiles", "structure", "cid"},
			},
			{
				ID:          "pubmed",
				DisplayName: "PubMed",
				Description: "Relevance-sorted literature abstracts via the E-utilities API.",
				Kind:        "literature",
				BaseURL:     "https://eutils.ncbi.nlm.nih.gov/entrez/eutils",
				DocsURL:     "https://www.ncbi.nlm.nih.gov/books/NBK25501/",
				Attribution: "PubMed, National Library of Medicine",
				ErrorCodes:  []string{"PUBMED_TIMEOUT", "PUBMED_UNAVAILABLE"},
				Timeout:     "30s",
				Tags:        []string{"abstracts", "esearch", "efetch"},
			},
			{
				ID:          "wikipedia",
				DisplayName: "Wikipedia",
				Description: "Encyclopedia page summaries via the REST v1 API.",
				Kind:        "encyclopedia",
				BaseURL:     "https://en.wikipedia.org/api/rest_v1",
				DocsURL:     "https://en.wikipedia.org/api/rest_v1/",
				Attribution: "Wikipedia, CC BY-SA",
				ErrorCodes:  []string{"WIKIPEDIA_TIMEOUT", "WIKIPEDIA_UNAVAILABLE"},
				Timeout:     "10s",
				Tags:        []string{"summary", "extract"},
			},
			{
				ID:          "huggingface",
				DisplayName: "Hugging Face Inference",
				Description: "Hosted text-generation endpoint that synthesizes the report.",
				Kind:        "inference",
				BaseURL:     "https://api-inference.huggingface.co",
				DocsURL:     "https://huggingface.co/docs/api-inference/",
				Attribution: "Hugging Face",
				ErrorCodes:  []string{"MODEL_LOADING", "INFERENCE_TIMEOUT", "INFERENCE_FAILED"},
				Timeout:     "60s",
				Tags:        []string{"text-generation", "bearer-auth"},
			},
		},
	}
}
