package services

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"rag-chatbot-platform/models"
)

// DocxLoader reads the WordprocessingML body of a .docx archive and emits
// one document unit per non-empty paragraph, marked "Para-N".
type DocxLoader struct{}

func NewDocxLoader() *DocxLoader {
	return &DocxLoader{}
}

func (l *DocxLoader) Extensions() []string {
	return []string{".docx"}
}

func (l *DocxLoader) Load(path string) ([]models.DocumentUnit, error) {
	archive, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open DOCX archive: %w", err)
	}
	defer archive.Close()

	var document *zip.File
	for _, f := range archive.File {
		if f.Name == "word/document.xml" {
			document = f
			break
		}
	}
	if document == nil {
		return nil, errors.New("word/document.xml missing from DOCX archive")
	}

	rc, err := document.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open document body: %w", err)
	}
	defer rc.Close()

	paragraphs, err := parseDocxParagraphs(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to parse document body: %w", err)
	}

	source := filepath.Base(path)
	var units []models.DocumentUnit
	for _, text := range paragraphs {
		if strings.TrimSpace(text) == "" {
			continue
		}
		units = append(units, models.DocumentUnit{
			Source: source,
			Page:   fmt.Sprintf("Para-%d", len(units)+1),
			Text:   text,
		})
	}

	return units, nil
}

// parseDocxParagraphs walks the XML token stream collecting text runs.
// Tabs and line breaks inside a run are preserved as whitespace.
func parseDocxParagraphs(r io.Reader) ([]string, error) {
	decoder := xml.NewDecoder(r)

	var paragraphs []string
	var current strings.Builder
	inParagraph := false
	inText := false

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				inParagraph = true
				current.Reset()
			case "t":
				inText = inParagraph
			case "tab":
				if inParagraph {
					current.WriteByte('\t')
				}
			case "br", "cr":
				if inParagraph {
					current.WriteByte('\n')
				}
			}
		case xml.CharData:
			if inText {
				current.Write(t)
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				if inParagraph {
					paragraphs = append(paragraphs, current.String())
				}
				inParagraph = false
			}
		}
	}

	return paragraphs, nil
}
