// cmd/tools/catalog-updater/main.go
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"dyemind/internal/common/validation"
	"dyemind/pkg/catalog"
)

var catalogPath string

func main() {
	initCmd := flag.NewFlagSet("init", flag.ExitOnError)
	addCmd := flag.NewFlagSet("add", flag.ExitOnError)
	updateCmd := flag.NewFlagSet("update", flag.ExitOnError)
	validateCmd := flag.NewFlagSet("validate", flag.ExitOnError)

	// Init command flags
	initCmd.StringVar(&catalogPath, "path", "configs/source-catalog.json", "Path to catalog file")

	// Add command flags
	idAdd := addCmd.String("id", "", "Source ID (e.g., pubchem)")
	displayName := addCmd.String("displayName", "", "Display Name (e.g., PubChem)")
	description := addCmd.String("description", "", "Description")
	kind := addCmd.String("kind", "", "Source kind (chemistry, literature, encyclopedia, inference)")
	baseURL := addCmd.String("baseUrl", "", "Base URL of the source API")
	docsURL := addCmd.String("docsUrl", "", "API documentation URL")
	attribution := addCmd.String("attribution", "", "Attribution line for the source")
	timeout := addCmd.String("timeout", "30s", "Per-request timeout")
	addCmd.StringVar(&catalogPath, "path", "configs/source-catalog.json", "Path to catalog file")

	// Update command flags
	idUpdate := updateCmd.String("id", "", "Source ID to update")
	field := updateCmd.String("field", "", "Field to update (displayName, description, kind, baseUrl, docsUrl, attribution, timeout)")
	value := updateCmd.String("value", "", "New value for the field")
	updateCmd.StringVar(&catalogPath, "path", "configs/source-catalog.json", "Path to catalog file")

	// Validate command flags
	validateCmd.StringVar(&catalogPath, "path", "configs/source-catalog.json", "Path to catalog file")

	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "init":
		initCmd.Parse(os.Args[2:])
		if err := saveCatalog(catalog.Default(), catalogPath); err != nil {
			fmt.Printf("Error writing catalog: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote default catalog to %s\n", catalogPath)

	case "add":
		addCmd.Parse(os.Args[2:])
		if *idAdd == "" || *displayName == "" || *kind == "" || *baseURL == "" {
			fmt.Println("Error: id, displayName, kind, and baseUrl are required for add.")
			addCmd.Usage()
			os.Exit(1)
		}
		source := catalog.Source{
			ID:          *idAdd,
			DisplayName: *displayName,
			Description: *description,
			Kind:        *kind,
			BaseURL:     *baseURL,
			DocsURL:     *docsURL,
			Attribution: *attribution,
			ErrorCodes:  []string{},
			Timeout:     *timeout,
			Tags:        []string{},
		}
		if err := addSource(&source); err != nil {
			fmt.Printf("Error adding source: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Added source: %s\n", *idAdd)

	case "update":
		updateCmd.Parse(os.Args[2:])
		if *idUpdate == "" || *field == "" || *value == "" {
			fmt.Println("Error: id, field, and value are required for update.")
			updateCmd.Usage()
			os.Exit(1)
		}
		if err := updateSource(*idUpdate, *field, *value); err != nil {
			fmt.Printf("Error updating source: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Updated source %s, field %s to %s\n", *idUpdate, *field, *value)

	case "validate":
		validateCmd.Parse(os.Args[2:])
		if err := validateCatalog(); err != nil {
			fmt.Printf("Catalog validation failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Catalog validation passed.")

	case "help":
		fallthrough
	default:
		help()
	}
}

func addSource(source *catalog.Source) error {
	cat, err := catalog.LoadCatalog(catalogPath)
	if err != nil {
		// If file doesn't exist, start a fresh catalog
		if os.IsNotExist(err) {
			cat = &catalog.SourceCatalog{
				Version:     "1.0.0",
				LastUpdated: time.Now().Format(time.RFC3339),
				Sources:     []catalog.Source{},
			}
		} else {
			return fmt.Errorf("failed to load catalog: %w", err)
		}
	}

	for _, existing := range cat.Sources {
		if existing.ID == source.ID {
			return fmt.Errorf("source with ID %s already exists", source.ID)
		}
	}

	cat.Sources = append(cat.Sources, *source)
	cat.LastUpdated = time.Now().Format(time.RFC3339)

	return saveCatalog(cat, catalogPath)
}

func updateSource(id, field, value string) error {
	cat, err := catalog.LoadCatalog(catalogPath)
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}

	found := false
	for i := range cat.Sources {
		if cat.Sources[i].ID == id {
			found = true
			switch field {
			case "displayName":
				cat.Sources[i].DisplayName = value
			case "description":
				cat.Sources[i].Description = value
			case "kind":
				cat.Sources[i].Kind = value
			case "baseUrl":
				cat.Sources[i].BaseURL = value
			case "docsUrl":
				cat.Sources[i].DocsURL = value
			case "attribution":
				cat.Sources[i].Attribution = value
			case "timeout":
				cat.Sources[i].Timeout = value
			default:
				return fmt.Errorf("unknown field: %s", field)
			}
			break
		}
	}

	if !found {
		return fmt.Errorf("source with ID %s not found", id)
	}

	cat.LastUpdated = time.Now().Format(time.RFC3339)
	return saveCatalog(cat, catalogPath)
}

func validateCatalog() error {
	cat, err := catalog.LoadCatalog(catalogPath)
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}

	if len(cat.Sources) == 0 {
		return fmt.Errorf("catalog contains no sources")
	}

	ids := make(map[string]bool)
	for _, source := range cat.Sources {
		if ids[source.ID] {
			return fmt.Errorf("duplicate source ID: %s", source.ID)
		}
		ids[source.ID] = true

		if source.ID == "" {
			return fmt.Errorf("source missing required field: ID")
		}
		if source.DisplayName == "" {
			return fmt.Errorf("source %s missing required field: DisplayName", source.ID)
		}
		if source.Kind == "" {
			return fmt.Errorf("source %s missing required field: Kind", source.ID)
		}
		if !validation.ValidateURL(source.BaseURL) {
			return fmt.Errorf("source %s has a malformed BaseURL: %s", source.ID, source.BaseURL)
		}
	}

	fmt.Printf("Catalog validation passed. Found %d sources.\n", len(cat.Sources))
	return nil
}

// saveCatalog handles saving the catalog to file
func saveCatalog(cat *catalog.SourceCatalog, path string) error {
	data, err := json.MarshalIndent(cat, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal catalog: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write catalog file: %w", err)
	}

	return nil
}

func help() {
	fmt.Println(`
Usage: catalog-updater <command> [flags]

Commands:
  init     Write the built-in default catalog to a file
  add      Add a new source to the catalog
  update   Update an existing source's field
  validate Validate the catalog file
  help     Show this help message

Examples:
  catalog-updater init -path configs/source-catalog.json
  catalog-updater add -id chembl -displayName "ChEMBL" -kind chemistry -baseUrl https://www.ebi.ac.uk/chembl/api/data
  catalog-updater update -id chembl -field timeout -value 20s
  catalog-updater validate -path configs/source-catalog.json

Use 'catalog-updater <command> -h' for more information about a command.
`)
}
