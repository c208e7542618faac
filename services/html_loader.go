package services

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"rag-chatbot-platform/models"

	"github.com/PuerkitoBio/goquery"
)

// HTMLLoader extracts readable text from HTML files. Boilerplate elements
// are removed, then each block-level element becomes a "Para-N" unit; a
// page without recognizable blocks falls back to the whole body text.
type HTMLLoader struct{}

func NewHTMLLoader() *HTMLLoader {
	return &HTMLLoader{}
}

func (l *HTMLLoader) Extensions() []string {
	return []string{".html", ".htm"}
}

func (l *HTMLLoader) Load(path string) ([]models.DocumentUnit, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open HTML file: %w", err)
	}
	defer f.Close()

	doc, err := goquery.NewDocumentFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	// Remove unwanted elements
	doc.Find("script, style, nav, header, footer, aside").Remove()

	const blockSelector = "p, h1, h2, h3, h4, h5, h6, li, td, th, pre, blockquote"

	var paragraphs []string
	doc.Find(blockSelector).Each(func(_ int, s *goquery.Selection) {
		// Skip wrappers whose text is covered by a nested block
		if s.Find(blockSelector).Length() > 0 {
			return
		}
		if text := strings.TrimSpace(s.Text()); text != "" {
			paragraphs = append(paragraphs, text)
		}
	})

	if len(paragraphs) == 0 {
		if text := collapseLines(doc.Find("body").Text()); text != "" {
			paragraphs = append(paragraphs, text)
		}
	}

	source := filepath.Base(path)
	units := make([]models.DocumentUnit, 0, len(paragraphs))
	for i, text := range paragraphs {
		units = append(units, models.DocumentUnit{
			Source: source,
			Page:   fmt.Sprintf("Para-%d", i+1),
			Text:   text,
		})
	}

	return units, nil
}

// collapseLines trims each line and drops empty ones.
func collapseLines(text string) string {
	lines := strings.Split(text, "\n")
	var cleaned []string
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			cleaned = append(cleaned, line)
		}
	}
	return strings.Join(cleaned, "\n")
}
