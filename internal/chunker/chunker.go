// Package chunker splits document text into chunks for embedding.
//
// The splitting functions (SplitDelimited, ParseSemantic,
// SplitMarkdownSections) are pure and safe for concurrent use. The Chunker
// implementations wrap them and attach filename, position and a stable ID to
// every fragment.
package chunker

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"semsearch/internal/domain"
)

// Strategy names accepted by New.
const (
	StrategySemantic   = "semantic"
	StrategySections   = "sections"
	StrategySentence   = "sentence"
	StrategyGrammar    = "grammar"
	StrategyCodeBlock  = "codeblock"
	StrategySummarized = "summarized"
)

var (
	ErrUnknownStrategy        = errors.New("unknown chunking strategy")
	ErrStrategyNotImplemented = errors.New("chunking strategy not implemented")
)

// Options selects and tunes a chunking strategy.
type Options struct {
	Strategy          string
	SentencesPerChunk int
	OverlapSentences  int
}

// New returns the chunker for opts.Strategy. An empty strategy selects
// StrategySemantic.
func New(opts Options) (domain.Chunker, error) {
	switch opts.Strategy {
	case StrategySemantic, "":
		return NewDelimiterChunker(SemanticDelimiters), nil
	case StrategySections:
		return NewSectionChunker(), nil
	case StrategySentence:
		return NewSentenceChunker(opts.SentencesPerChunk, opts.OverlapSentences), nil
	case StrategyGrammar, StrategyCodeBlock, StrategySummarized:
		return nil, fmt.Errorf("%w: %s", ErrStrategyNotImplemented, opts.Strategy)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownStrategy, opts.Strategy)
	}
}

// DelimiterChunker emits one chunk per delimited fragment.
type DelimiterChunker struct {
	delimiters []rune
}

func NewDelimiterChunker(delimiters []rune) *DelimiterChunker {
	if len(delimiters) == 0 {
		delimiters = SemanticDelimiters
	}
	return &DelimiterChunker{delimiters: delimiters}
}

func (c *DelimiterChunker) Chunk(document domain.Document) ([]domain.Chunk, error) {
	return fromFragments(document.Filename, SplitDelimited(document.Content, c.delimiters)), nil
}

// SectionChunker emits one chunk per markdown section.
type SectionChunker struct{}

func NewSectionChunker() *SectionChunker { return &SectionChunker{} }

func (c *SectionChunker) Chunk(document domain.Document) ([]domain.Chunk, error) {
	return fromFragments(document.Filename, SplitMarkdownSections(document.Content)), nil
}

// ChunkID derives a stable UUID from a filename and chunk position, so
// re-indexing a document overwrites its previous points.
func ChunkID(filename string, index int) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(filename+"#"+strconv.Itoa(index))).String()
}

func newChunk(filename string, index int, text string) domain.Chunk {
	return domain.Chunk{
		ID:       ChunkID(filename, index),
		Filename: filename,
		Index:    index,
		Text:     text,
	}
}

// fromFragments drops whitespace-only fragments; they carry nothing to embed.
func fromFragments(filename string, fragments []string) []domain.Chunk {
	chunks := make([]domain.Chunk, 0, len(fragments))
	for _, f := range fragments {
		if strings.TrimSpace(f) == "" {
			continue
		}
		chunks = append(chunks, newChunk(filename, len(chunks), f))
	}
	return chunks
}
