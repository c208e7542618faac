package models

// PageNotApplicable is the page marker for sources without any pagination unit.
const PageNotApplicable = "N/A"

// DocumentUnit is one loadable piece of a source file: a PDF page, a DOCX
// paragraph, a worksheet, or a text paragraph. Loaders emit units; the
// chunker splits each unit independently.
type DocumentUnit struct {
	Source string `json:"source"` // path of the originating file
	Page   string `json:"page"`   // "3", "Para-2", "Sheet-1" or PageNotApplicable
	Text   string `json:"text"`
}

// Chunk is the atomic retrievable unit produced by the chunker and stored in
// the vector index together with its embedding.
type Chunk struct {
	Content          string  `json:"content"`
	Source           string  `json:"source"`
	Page             string  `json:"page"`
	ChunkOrdinal     int     `json:"chunk_ordinal"`     // zero-based within the unit
	ChunkCount       int     `json:"chunk_count"`       // total chunks from the unit
	RelativePosition float64 `json:"relative_position"` // character offset / unit character count
	Preview          string  `json:"preview"`
}

// SourceCitation is the display-facing projection of a chunk's provenance.
// Within one query result citations are unique per (file, page) key.
type SourceCitation struct {
	File    string `json:"file"`
	Page    string `json:"page"`
	Preview string `json:"preview,omitempty"`
}
