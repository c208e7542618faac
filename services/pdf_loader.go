package services

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"rag-chatbot-platform/internal/logger"
	"rag-chatbot-platform/models"

	"github.com/ledongthuc/pdf"
)

// PDFLoader extracts one document unit per PDF page so chunks keep their
// true page number.
type PDFLoader struct{}

func NewPDFLoader() *PDFLoader {
	return &PDFLoader{}
}

func (l *PDFLoader) Extensions() []string {
	return []string{".pdf"}
}

func (l *PDFLoader) Load(path string) ([]models.DocumentUnit, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF file: %w", err)
	}

	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("failed to create PDF reader: %w", err)
	}

	source := filepath.Base(path)
	var units []models.DocumentUnit

	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		fonts := make(map[string]*pdf.Font)
		text, err := page.GetPlainText(fonts)
		if err != nil {
			logger.Warn("Failed to extract PDF page", "file", source, "page", i, "error", err)
			continue
		}
		if strings.TrimSpace(text) == "" {
			continue
		}

		units = append(units, models.DocumentUnit{
			Source: source,
			Page:   strconv.Itoa(i),
			Text:   text,
		})
	}

	return units, nil
}
