package services

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"rag-chatbot-platform/models"
)

// TextLoader reads plain text and markdown files, splitting on blank
// lines into "Para-N" units.
type TextLoader struct{}

func NewTextLoader() *TextLoader {
	return &TextLoader{}
}

func (l *TextLoader) Extensions() []string {
	return []string{".txt", ".md"}
}

func (l *TextLoader) Load(path string) ([]models.DocumentUnit, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read text file: %w", err)
	}

	text := strings.ReplaceAll(string(content), "\r\n", "\n")
	source := filepath.Base(path)

	var units []models.DocumentUnit
	for _, paragraph := range strings.Split(text, "\n\n") {
		if strings.TrimSpace(paragraph) == "" {
			continue
		}
		units = append(units, models.DocumentUnit{
			Source: source,
			Page:   fmt.Sprintf("Para-%d", len(units)+1),
			Text:   paragraph,
		})
	}

	return units, nil
}
