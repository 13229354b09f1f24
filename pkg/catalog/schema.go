// pkg/catalog/schema.go
package catalog

type SourceCatalog struct {
	Version     string   `json:"version"`
	LastUpdated string   `json:"lastUpdated"`
	Sources     []Source `json:"sources"`
}

type Source struct {
	ID          string   `json:"id"`
	DisplayName string   `json:"displayName"`
	Description string   `json:"description"`
	Kind        string   `json:"kind"`
	BaseURL     string   `json:"baseUrl"`
	DocsURL     string   `json:"docsUrl,omitempty"`
	Attribution string   `json:"attribution,omitempty"`
	ErrorCodes  []string `json:"errorCodes,omitempty"`
	Timeout     string   `json:"timeout"`
	Tags        []string `json:"tags,omitempty"`
}
