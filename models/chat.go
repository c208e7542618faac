package models

// ChatRequest is the body of POST /chat. Temperature is a pointer so the
// caller can ask for 0 explicitly; nil means the 0.7 default.
type ChatRequest struct {
	Message     string   `json:"message" binding:"required"`
	TopK        int      `json:"top_k"`
	Temperature *float64 `json:"temperature"`
	Evaluate    bool     `json:"evaluate"`
}

// ChatResponse is the body returned by POST /chat. Evaluation is null unless
// the request asked for it.
type ChatResponse struct {
	Response   string            `json:"response"`
	Sources    []SourceCitation  `json:"sources"`
	Evaluation *EvaluationReport `json:"evaluation"`
}

// QueryResult is the pipeline-level result a query produces before the HTTP
// layer reshapes it.
type QueryResult struct {
	Answer     string            `json:"answer"`
	Sources    []SourceCitation  `json:"sources"`
	Contexts   []string          `json:"contexts,omitempty"`
	Evaluation *EvaluationReport `json:"evaluation,omitempty"`
}

// IngestRequest is the body of POST /ingest. Zero values fall back to the
// configured chunk settings.
type IngestRequest struct {
	ChunkSize    int `json:"chunk_size"`
	ChunkOverlap int `json:"chunk_overlap"`
}

// UploadResponse is returned by POST /upload.
type UploadResponse struct {
	Message string   `json:"message"`
	Files   []string `json:"files"`
}

// FileListResponse is returned by GET /files.
type FileListResponse struct {
	Files []string `json:"files"`
}

// DeleteResponse is returned by DELETE /files/:filename. The recommendation
// reminds the caller that deleting a file does not retract its chunks from a
// previously built index.
type DeleteResponse struct {
	Message        string `json:"message"`
	Recommendation string `json:"recommendation"`
}
