package services

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"rag-chatbot-platform/internal/logger"
	"rag-chatbot-platform/models"
)

// Loader extracts document units from one file format.
type Loader interface {
	// Load reads the file and returns its units (pages, paragraphs or
	// worksheets) in document order.
	Load(path string) ([]models.DocumentUnit, error)

	// Extensions lists the file extensions this loader handles,
	// lowercase with leading dot.
	Extensions() []string
}

// typeLabels maps file extensions to the display labels used in ingest
// summaries.
var typeLabels = map[string]string{
	".pdf":  "PDF",
	".docx": "Word",
	".xlsx": "Excel",
	".txt":  "Text",
	".md":   "Text",
	".html": "HTML",
	".htm":  "HTML",
}

// breakdownOrder fixes the label order in ingest summaries.
var breakdownOrder = []string{"PDF", "Word", "Excel", "Text", "HTML"}

// DocumentLoader walks the data directory and dispatches each supported
// file to its format loader. Files that fail to load are logged and
// skipped so one corrupt upload cannot block ingestion.
type DocumentLoader struct {
	dataDir string
	loaders map[string]Loader
}

// LoadResult aggregates the units and per-type file counts of one
// directory scan.
type LoadResult struct {
	Units  []models.DocumentUnit
	Counts map[string]int
	Files  int
}

// Breakdown renders the per-type file counts, e.g. "2 PDF, 1 Text".
func (r LoadResult) Breakdown() string {
	parts := make([]string, 0, len(r.Counts))
	for _, label := range breakdownOrder {
		if n := r.Counts[label]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, label))
		}
	}
	return strings.Join(parts, ", ")
}

func NewDocumentLoader(dataDir string) *DocumentLoader {
	dl := &DocumentLoader{
		dataDir: dataDir,
		loaders: make(map[string]Loader),
	}

	for _, loader := range []Loader{
		NewPDFLoader(),
		NewDocxLoader(),
		NewXlsxLoader(),
		NewTextLoader(),
		NewHTMLLoader(),
	} {
		for _, ext := range loader.Extensions() {
			dl.loaders[ext] = loader
		}
	}

	return dl
}

// SupportedExtensions returns the extensions accepted by the registered
// loaders.
func (dl *DocumentLoader) SupportedExtensions() []string {
	exts := make([]string, 0, len(dl.loaders))
	for ext := range dl.loaders {
		exts = append(exts, ext)
	}
	return exts
}

// LoadDir loads every supported file under the data directory. An empty
// or missing directory yields an empty result, not an error.
func (dl *DocumentLoader) LoadDir() (LoadResult, error) {
	result := LoadResult{Counts: make(map[string]int)}

	err := filepath.WalkDir(dl.dataDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), ".") {
			return nil
		}

		ext := strings.ToLower(filepath.Ext(d.Name()))
		loader, ok := dl.loaders[ext]
		if !ok {
			return nil
		}

		units, loadErr := loader.Load(path)
		if loadErr != nil {
			logger.Warn("Failed to load document", "file", d.Name(), "error", loadErr)
			return nil
		}

		result.Units = append(result.Units, units...)
		result.Counts[typeLabels[ext]]++
		result.Files++
		return nil
	})
	if err != nil {
		// A missing data directory means nothing has been uploaded yet.
		if errors.Is(err, fs.ErrNotExist) {
			return LoadResult{Counts: make(map[string]int)}, nil
		}
		return LoadResult{}, fmt.Errorf("scanning data directory: %w", err)
	}

	return result, nil
}
