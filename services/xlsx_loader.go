package services

import (
	"fmt"
	"path/filepath"
	"strings"

	"rag-chatbot-platform/internal/logger"
	"rag-chatbot-platform/models"

	"github.com/xuri/excelize/v2"
)

// XlsxLoader emits one document unit per worksheet, marked "Sheet-N" by
// workbook position. Rows are rendered as " | " separated cell values
// under a "Sheet: <name>" header.
type XlsxLoader struct{}

func NewXlsxLoader() *XlsxLoader {
	return &XlsxLoader{}
}

func (l *XlsxLoader) Extensions() []string {
	return []string{".xlsx"}
}

func (l *XlsxLoader) Load(path string) ([]models.DocumentUnit, error) {
	workbook, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer workbook.Close()

	source := filepath.Base(path)
	var units []models.DocumentUnit

	for i, sheet := range workbook.GetSheetList() {
		rows, err := workbook.GetRows(sheet)
		if err != nil {
			logger.Warn("Failed to read worksheet", "file", source, "sheet", sheet, "error", err)
			continue
		}

		lines := []string{fmt.Sprintf("Sheet: %s", sheet)}
		for _, row := range rows {
			if rowEmpty(row) {
				continue
			}
			lines = append(lines, strings.Join(row, " | "))
		}
		if len(lines) == 1 {
			continue
		}

		units = append(units, models.DocumentUnit{
			Source: source,
			Page:   fmt.Sprintf("Sheet-%d", i+1),
			Text:   strings.Join(lines, "\n"),
		})
	}

	return units, nil
}

func rowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
