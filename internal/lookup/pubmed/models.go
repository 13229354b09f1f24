// internal/lookup/pubmed/models.go
package pubmed

import "encoding/xml"

// esearchResponse is the ESearch identifier list envelope.
type esearchResponse struct {
	EsearchResult struct {
		IDList []string `json:"idlist"`
	} `json:"esearchresult"`
}

// articleSet mirrors the EFetch XML payload. Only the fields the report
// pipeline consumes are mapped; structured abstracts arrive as multiple
// AbstractText elements.
type articleSet struct {
	XMLName  xml.Name         `xml:"PubmedArticleSet"`
	Articles []fetchedArticle `xml:"PubmedArticle"`
}

type fetchedArticle struct {
	PMID          string   `xml:"MedlineCitation>PMID"`
	Title         string   `xml:"MedlineCitation>Article>ArticleTitle"`
	AbstractParts []string `xml:"MedlineCitation>Article>Abstract>AbstractText"`
}
