package services

import (
	"fmt"
	"strings"

	"rag-chatbot-platform/models"
)

// ComposeContext renders retrieved chunks as numbered source blocks and
// returns the deduplicated citation list. The block numbers follow the
// reranked order, which is the numbering the generator is told to cite,
// so blocks and citations must stay aligned.
func ComposeContext(chunks []models.Chunk) (string, []models.SourceCitation) {
	blocks := make([]string, 0, len(chunks))
	citations := make([]models.SourceCitation, 0, len(chunks))
	seen := make(map[string]struct{})

	for i, chunk := range chunks {
		name := shortFileName(chunk.Source)
		blocks = append(blocks, fmt.Sprintf("[Source %d: %s, Page %s]\n%s\n", i+1, name, chunk.Page, chunk.Content))

		key := name + "\x00" + chunk.Page
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		citations = append(citations, models.SourceCitation{
			File:    name,
			Page:    chunk.Page,
			Preview: chunk.Preview,
		})
	}

	return strings.Join(blocks, "\n"), citations
}

// shortFileName strips any directory prefix, handling both path
// separator conventions.
func shortFileName(path string) string {
	if idx := strings.LastIndexAny(path, `/\`); idx >= 0 {
		return path[idx+1:]
	}
	return path
}
