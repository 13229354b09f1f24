// internal/lookup/wikipedia/models.go
package wikipedia

// summaryResponse is the REST v1 page summary payload.
type summaryResponse struct {
	Title       string `json:"title"`
	Extract     string `json:"extract"`
	ContentURLs struct {
		Desktop struct {
			Page string `json:"page"`
		} `json:"desktop"`
	} `json:"content_urls"`
}
