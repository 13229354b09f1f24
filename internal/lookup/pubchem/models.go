// internal/lookup/pubchem/models.go
package pubchem

// cidsResponse is the PUG REST name-to-identifier search result.
type cidsResponse struct {
	IdentifierList struct {
		CID []int `json:"CID"`
	} `json:"IdentifierList"`
}

// propertiesResponse is the PUG REST property table for one identifier.
type propertiesResponse struct {
	PropertyTable struct {
		Properties []propertyRow `json:"Properties"`
	} `json:"PropertyTable"`
}

type propertyRow struct {
	CID              int    `json:"CID"`
	CanonicalSMILES  string `json:"CanonicalSMILES"`
	MolecularFormula string `json:"MolecularFormula"`
	MolecularWeight  string `json:"MolecularWeight"`
}
