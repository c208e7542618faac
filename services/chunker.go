package services

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"rag-chatbot-platform/models"
)

// defaultSeparators is the split priority order: paragraph break, line
// break, sentence end, clause break, word boundary, then hard character
// cut.
var defaultSeparators = []string{"\n\n", "\n", ". ", ", ", " ", ""}

// Splitter cuts document text into overlapping chunks along a prioritized
// separator list. Chunks are literal substrings of the input text, so
// every chunk can be located verbatim in its source document.
type Splitter struct {
	chunkSize    int
	chunkOverlap int
	separators   []string
}

// NewSplitter validates the chunking parameters. chunkOverlap must be
// strictly less than chunkSize.
func NewSplitter(chunkSize, chunkOverlap int) (*Splitter, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("%w: chunk size must be positive, got %d", ErrConfiguration, chunkSize)
	}
	if chunkOverlap < 0 {
		return nil, fmt.Errorf("%w: chunk overlap must not be negative, got %d", ErrConfiguration, chunkOverlap)
	}
	if chunkOverlap >= chunkSize {
		return nil, fmt.Errorf("%w: chunk overlap %d must be smaller than chunk size %d", ErrConfiguration, chunkOverlap, chunkSize)
	}

	return &Splitter{
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
		separators:   defaultSeparators,
	}, nil
}

// span is a half-open byte range into the text being split.
type span struct {
	start int
	end   int
}

// Split chunks one loaded document unit and attaches provenance metadata.
// Whitespace-only text yields no chunks.
func (s *Splitter) Split(text, source, page string) []models.Chunk {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	pieces := s.splitSpan(text, 0, len(text), s.separators)
	merged := s.mergeSpans(text, pieces)

	// Positions are fractions of the unit's character count, not its
	// byte count.
	totalRunes := utf8.RuneCountInString(text)

	chunks := make([]models.Chunk, 0, len(merged))
	for _, sp := range merged {
		content := text[sp.start:sp.end]
		if strings.TrimSpace(content) == "" {
			continue
		}

		chunks = append(chunks, models.Chunk{
			Content:          content,
			Source:           source,
			Page:             page,
			RelativePosition: float64(utf8.RuneCountInString(text[:sp.start])) / float64(totalRunes),
			Preview:          preview(content),
		})
	}

	for i := range chunks {
		chunks[i].ChunkOrdinal = i
		chunks[i].ChunkCount = len(chunks)
	}

	return chunks
}

// splitSpan recursively cuts [lo, hi) into contiguous spans no longer
// than chunkSize, trying each separator in priority order. Cuts land
// after the separator so no characters are lost between spans.
func (s *Splitter) splitSpan(text string, lo, hi int, separators []string) []span {
	if hi-lo <= s.chunkSize {
		return []span{{lo, hi}}
	}
	if len(separators) == 0 || separators[0] == "" {
		return runeSpans(text, lo, hi)
	}

	pieces := splitAfter(text, lo, hi, separators[0])
	if len(pieces) == 1 {
		return s.splitSpan(text, lo, hi, separators[1:])
	}

	var out []span
	for _, p := range pieces {
		if p.end-p.start > s.chunkSize {
			out = append(out, s.splitSpan(text, p.start, p.end, separators[1:])...)
		} else {
			out = append(out, p)
		}
	}
	return out
}

// mergeSpans greedily concatenates adjacent spans into chunks up to
// chunkSize. Each chunk after the first starts chunkOverlap bytes before
// the previous chunk's end; the overlap shrinks only when the next span
// would not fit alongside it.
func (s *Splitter) mergeSpans(text string, pieces []span) []span {
	if len(pieces) == 0 {
		return nil
	}

	var merged []span
	cur := pieces[0]
	for _, p := range pieces[1:] {
		if p.end-cur.start <= s.chunkSize {
			cur.end = p.end
			continue
		}

		merged = append(merged, cur)

		start := cur.end - s.chunkOverlap
		if limit := p.end - s.chunkSize; start < limit {
			start = limit
		}
		// Keep the overlap start on a rune boundary
		for start < p.start && !utf8.RuneStart(text[start]) {
			start++
		}
		cur = span{start: start, end: p.end}
	}

	return append(merged, cur)
}

// splitAfter cuts [lo, hi) at every occurrence of sep, keeping the
// separator at the end of the preceding piece.
func splitAfter(text string, lo, hi int, sep string) []span {
	var pieces []span
	start := lo
	for start < hi {
		idx := strings.Index(text[start:hi], sep)
		if idx < 0 {
			pieces = append(pieces, span{start, hi})
			break
		}
		end := start + idx + len(sep)
		pieces = append(pieces, span{start, end})
		start = end
	}
	return pieces
}

// runeSpans is the character-boundary fallback: one span per rune, so the
// merge step builds fixed-size sliding windows without ever splitting a
// rune.
func runeSpans(text string, lo, hi int) []span {
	pieces := make([]span, 0, hi-lo)
	for i := lo; i < hi; {
		_, size := utf8.DecodeRuneInString(text[i:hi])
		pieces = append(pieces, span{i, i + size})
		i += size
	}
	return pieces
}

func preview(content string) string {
	const previewLen = 100
	if len(content) <= previewLen {
		return content
	}

	cut := previewLen
	for cut > 0 && !utf8.RuneStart(content[cut]) {
		cut--
	}
	return content[:cut]
}
