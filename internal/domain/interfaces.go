package domain

import "strings"

// Document is a named piece of raw text submitted for indexing.
type Document struct {
	Filename string `json:"filename"`
	Content  string `json:"content"`
}

// Validate checks the fields required to index a document.
func (d Document) Validate() error {
	if strings.TrimSpace(d.Filename) == "" {
		return ErrEmptyFilename
	}
	if d.Content == "" {
		return ErrEmptyContent
	}
	return nil
}

// Chunk is a contiguous fragment of a document, ordered by Index.
type Chunk struct {
	ID       string
	Filename string
	Index    int
	Text     string
}

// SearchQuery describes a similarity search. Filters are exact matches on
// result metadata; results scoring below ScoreThreshold are dropped.
type SearchQuery struct {
	Text           string            `json:"query"`
	Limit          int               `json:"limit,omitempty"`
	Filters        map[string]string `json:"filters,omitempty"`
	ScoreThreshold *float64          `json:"score_threshold,omitempty"`
}

// SearchResult represents a matching chunk with a relevance score.
type SearchResult struct {
	Content  string            `json:"content"`
	Metadata map[string]string `json:"metadata"`
	Score    float64           `json:"score"`
}

// Metadata keys stored alongside every chunk.
const (
	MetaFilename = "filename"
	MetaIndex    = "index"
	MetaChunkID  = "chunk_id"
)

// Chunker splits documents into chunks suitable for retrieval indexing.
type Chunker interface {
	Chunk(document Document) ([]Chunk, error)
}

// Summarizer produces a brief summary of the provided text.
type Summarizer interface {
	Summarize(text string, maxSentences int) (string, error)
}
